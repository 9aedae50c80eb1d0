package totals

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/invoscan/invoscan/model"
	"github.com/invoscan/invoscan/patterns"
)

// PostprocessConfig holds configuration for item post-processing and
// warning generation.
type PostprocessConfig struct {
	// Patterns supplies the noise regex and HSN pattern. Nil means
	// patterns.Default().
	Patterns *patterns.Set

	// LineConfThreshold flags line items below this confidence (default: 0.6).
	LineConfThreshold float64

	// NumberConfThreshold flags the invoice number below this confidence
	// (default: 0.7).
	NumberConfThreshold float64

	// SwapRatio triggers the unit-price/taxable-value swap correction when
	// unitPrice > SwapRatio × taxableValue (default: 2).
	SwapRatio float64
}

// DefaultPostprocessConfig returns sensible default configuration.
func DefaultPostprocessConfig() PostprocessConfig {
	return PostprocessConfig{
		LineConfThreshold:   0.6,
		NumberConfThreshold: 0.7,
		SwapRatio:           2,
	}
}

// Postprocessor repairs common OCR mapping errors on parsed items and
// generates field-confidence warnings.
type Postprocessor struct {
	post       PostprocessConfig
	pats       *patterns.Set
	invoiceNo  *regexp.Regexp
	multiSpace *regexp.Regexp
}

// NewPostprocessor creates a postprocessor with default configuration.
func NewPostprocessor() *Postprocessor {
	return NewPostprocessorWithConfig(DefaultPostprocessConfig())
}

// NewPostprocessorWithConfig creates a postprocessor with custom
// configuration.
func NewPostprocessorWithConfig(config PostprocessConfig) *Postprocessor {
	if config.Patterns == nil {
		config.Patterns = patterns.Default()
	}
	if config.LineConfThreshold <= 0 {
		config.LineConfThreshold = 0.6
	}
	if config.NumberConfThreshold <= 0 {
		config.NumberConfThreshold = 0.7
	}
	if config.SwapRatio <= 0 {
		config.SwapRatio = 2
	}
	return &Postprocessor{
		post:       config,
		pats:       config.Patterns,
		invoiceNo:  regexp.MustCompile(`(?i)invoice\s+no\.?\s*[:\-]?\s*\w+`),
		multiSpace: regexp.MustCompile(`\s{2,}`),
	}
}

// CleanItems cleans descriptions, repairs swapped amounts, re-validates HSN
// codes, and drops items left without evidence. The input slice is not
// modified.
func (p *Postprocessor) CleanItems(items []model.LineItem) []model.LineItem {
	out := make([]model.LineItem, 0, len(items))
	for _, item := range items {
		item.Description = p.CleanDescription(item.Description)
		p.fixSwappedAmounts(&item)

		if item.HSN != "" {
			if m := p.pats.HSN.FindStringSubmatch(item.HSN); m != nil {
				item.HSN = m[1]
			} else {
				item.HSN = ""
			}
		}

		if item.HasEvidence() {
			out = append(out, item)
		}
	}
	return out
}

// CleanDescription strips header/footer bleed from a description and
// collapses runs of whitespace.
func (p *Postprocessor) CleanDescription(s string) string {
	if s == "" {
		return ""
	}
	s = p.pats.DescriptionNoise.ReplaceAllString(s, "")
	s = p.invoiceNo.ReplaceAllString(s, "")
	return strings.TrimSpace(p.multiSpace.ReplaceAllString(s, " "))
}

// fixSwappedAmounts repairs unit-price/taxable-value mix-ups: fills a
// missing unit price from taxable/quantity, and swaps the two when the unit
// price dwarfs the taxable value despite a known quantity.
func (p *Postprocessor) fixSwappedAmounts(item *model.LineItem) {
	var qty float64
	if item.Quantity != nil {
		qty = item.Quantity.Value
	}

	if item.UnitPrice == nil && item.TaxableValue != nil && qty > 0 {
		v := model.Round2(*item.TaxableValue / qty)
		item.UnitPrice = &v
		return
	}
	if item.UnitPrice == nil || item.TaxableValue == nil || qty <= 0 {
		return
	}

	up, tv := *item.UnitPrice, *item.TaxableValue
	if tv > 0 && math.Abs(up*qty-tv)/tv < 0.05 {
		return
	}
	if up > tv*p.post.SwapRatio {
		item.UnitPrice, item.TaxableValue = item.TaxableValue, item.UnitPrice
	}
}

// Warnings flags low-confidence extracted fields and a failed
// reconciliation on the assembled invoice.
func (p *Postprocessor) Warnings(inv *model.Invoice) []model.Warning {
	var warnings []model.Warning

	if inv.Details.Number != "" && inv.Details.NumberConfidence < p.post.NumberConfThreshold {
		warnings = append(warnings, model.Warning{
			Code:  model.WarnLowConfField,
			Field: "invoice.number",
			Score: inv.Details.NumberConfidence,
		})
	}
	for i := range inv.Lines {
		if inv.Lines[i].Confidence < p.post.LineConfThreshold {
			warnings = append(warnings, model.Warning{
				Code:  model.WarnLowConfField,
				Field: fmt.Sprintf("lines[%d]", i),
				Score: inv.Lines[i].Confidence,
			})
		}
	}
	if !inv.Totals.Reconciled {
		warnings = append(warnings, model.Warning{
			Code:  model.WarnNotReconciled,
			Score: inv.Totals.RoundOffDelta,
		})
	}
	return warnings
}

// AverageConfidence is the mean confidence over the fields that carried
// one, rounded to three decimals.
func AverageConfidence(inv *model.Invoice) float64 {
	var sum float64
	var n int

	add := func(v float64) {
		if v > 0 {
			sum += v
			n++
		}
	}
	if inv.Seller != nil {
		add(inv.Seller.Confidence)
	}
	if inv.Buyer != nil {
		add(inv.Buyer.Confidence)
	}
	add(inv.Details.NumberConfidence)
	for i := range inv.Lines {
		add(inv.Lines[i].Confidence)
	}
	if n == 0 {
		return 0
	}
	return math.Round(sum/float64(n)*1000) / 1000
}
