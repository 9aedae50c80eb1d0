// Package totals reads the totals block printed at the bottom of an
// invoice, reconciles it against totals recomputed from the parsed line
// items, and post-processes items to undo common OCR column mix-ups.
package totals

import (
	"regexp"
	"strings"

	"github.com/invoscan/invoscan/internal/numeric"
	"github.com/invoscan/invoscan/layout"
	"github.com/invoscan/invoscan/patterns"
)

// Printed holds totals as read off the document. Nil means the document did
// not print that value.
type Printed struct {
	SubTotal     *float64
	CGST         *float64
	SGST         *float64
	IGST         *float64
	GrandTotal   *float64
	TaxableValue *float64

	// RoundOff is the printed round-off adjustment, zero when absent.
	RoundOff float64

	TotalQuantity string
	AmountInWords string
}

// Config holds configuration for totals extraction.
type Config struct {
	// Patterns supplies the regex anchors. Nil means patterns.Default().
	Patterns *patterns.Set

	// BottomRows is how many rows at the end of the document are searched
	// (default: 14).
	BottomRows int
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{BottomRows: 14}
}

// Extractor reads the printed totals block.
type Extractor struct {
	config Config
	pats   *patterns.Set
}

// NewExtractor creates a totals extractor with default configuration.
func NewExtractor() *Extractor {
	return NewExtractorWithConfig(DefaultConfig())
}

// NewExtractorWithConfig creates a totals extractor with custom configuration.
func NewExtractorWithConfig(config Config) *Extractor {
	if config.Patterns == nil {
		config.Patterns = patterns.Default()
	}
	if config.BottomRows <= 0 {
		config.BottomRows = 14
	}
	return &Extractor{config: config, pats: config.Patterns}
}

// Extract scans the bottom rows for the totals block.
func (e *Extractor) Extract(rows []layout.Row) Printed {
	start := max(0, len(rows)-e.config.BottomRows)
	lines := make([]string, 0, len(rows)-start)
	for _, r := range rows[start:] {
		lines = append(lines, r.Text())
	}
	text := strings.Join(lines, "\n")

	p := Printed{
		SubTotal:     e.amount(e.pats.SubTotal, text),
		CGST:         e.amount(e.pats.CGST, text),
		SGST:         e.amount(e.pats.SGST, text),
		IGST:         e.amount(e.pats.IGST, text),
		TaxableValue: e.amount(e.pats.TaxableValue, text),
		GrandTotal:   e.grandTotal(text),
	}
	if m := e.pats.RoundOff.FindStringSubmatch(text); m != nil {
		if v, ok := numeric.NormalizeAmount(m[1]); ok {
			p.RoundOff = v
		}
	}
	if m := e.pats.TotalQty.FindStringSubmatch(text); m != nil {
		p.TotalQuantity = strings.TrimSpace(m[1])
	}
	if m := e.pats.AmountInWords.FindStringSubmatch(text); m != nil {
		p.AmountInWords = strings.TrimSpace(m[1])
	}
	return p
}

// grandTotal finds the first "Total" amount not preceded by "Sub". The
// pattern captures an optional "sub " prefix; a match carrying it is the
// sub-total line, not the grand total.
func (e *Extractor) grandTotal(text string) *float64 {
	for _, m := range e.pats.GrandTotal.FindAllStringSubmatch(text, -1) {
		if m[1] != "" {
			continue
		}
		if v, ok := numeric.NormalizeAmount(m[2]); ok {
			return &v
		}
	}
	return nil
}

func (e *Extractor) amount(re *regexp.Regexp, text string) *float64 {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	if v, ok := numeric.NormalizeAmount(m[1]); ok {
		return &v
	}
	return nil
}
