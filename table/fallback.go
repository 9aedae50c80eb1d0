package table

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/invoscan/invoscan/internal/numeric"
	"github.com/invoscan/invoscan/layout"
	"github.com/invoscan/invoscan/model"
	"github.com/invoscan/invoscan/patterns"
)

// LineParser extracts items from flattened row text when no reliable table
// anchor exists. It requires a decimal amount and a quantity pattern on a
// line before accepting it as an item, merging up to two following lines to
// handle descriptions wrapped across OCR lines.
type LineParser struct {
	pats       *patterns.Set
	multiSpace *regexp.Regexp
}

// NewLineParser creates a fallback line parser.
func NewLineParser(pats *patterns.Set) *LineParser {
	if pats == nil {
		pats = patterns.Default()
	}
	return &LineParser{
		pats:       pats,
		multiSpace: regexp.MustCompile(`\s{2,}`),
	}
}

// Parse walks the rows as text lines, stopping at the first totals marker.
func (p *LineParser) Parse(rows []layout.Row) []model.LineItem {
	type line struct {
		text string
		id   string
		conf float64
	}
	var lines []line
	for _, r := range rows {
		text := r.Text()
		if len(text) > 1 {
			lines = append(lines, line{text: text, id: r.ID, conf: rowConfidence(r)})
		}
	}

	var items []model.LineItem
	for i := 0; i < len(lines); {
		ln := lines[i]
		if p.pats.TotalsMarker.MatchString(ln.text) {
			break
		}

		if item, ok := p.parseLine(ln.text); ok {
			item.RowID = ln.id
			item.Confidence = ln.conf
			items = append(items, item)
			i++
			continue
		}

		// Merge with the next 1-2 lines: wrapped descriptions put the
		// numbers on a later line than the text.
		merged := ln.text
		consumed := 0
		for j := 1; j <= 2 && i+j < len(lines); j++ {
			merged += " " + lines[i+j].text
			if item, ok := p.parseLine(merged); ok {
				item.RowID = ln.id
				item.Confidence = ln.conf
				items = append(items, item)
				consumed = j
				break
			}
		}
		if consumed > 0 {
			i += consumed + 1
			continue
		}
		i++
	}
	return items
}

// parseLine attempts a single-line extraction. It needs at least one
// two-decimal amount and a quantity pattern; the last amount is the taxable
// value and the one before it, if any, the unit price.
func (p *LineParser) parseLine(s string) (model.LineItem, bool) {
	s = strings.ReplaceAll(s, "₹", " ")
	s = strings.ReplaceAll(s, ",", "")

	amounts := p.pats.TwoDecimal.FindAllString(s, -1)
	qty := p.bestQuantity(s)
	if len(amounts) == 0 || qty == nil {
		return model.LineItem{}, false
	}

	item := model.LineItem{Quantity: qty}

	taxable := amounts[len(amounts)-1]
	if v, ok := numeric.NormalizeAmount(taxable); ok {
		item.TaxableValue = &v
	}
	var unitPrice string
	if len(amounts) >= 2 {
		unitPrice = amounts[len(amounts)-2]
		if v, ok := numeric.NormalizeAmount(unitPrice); ok {
			item.UnitPrice = &v
		}
	}

	if m := p.pats.HSN.FindStringSubmatch(s); m != nil {
		item.HSN = m[1]
	}
	if strings.ContainsRune(s, '%') {
		if m := p.pats.GSTRate.FindStringSubmatch(s); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				item.GSTRatePct = &v
			}
		}
	}

	item.Description = p.stripFieldText(s, taxable, unitPrice, item)
	return item, true
}

// bestQuantity returns the line's quantity, preferring matches with an
// explicit unit token over bare numbers.
func (p *LineParser) bestQuantity(s string) *model.Quantity {
	var bare *model.Quantity
	for _, idx := range p.pats.Quantity.FindAllStringSubmatchIndex(s, -1) {
		num := s[idx[2]:idx[3]]
		var unit string
		if idx[4] >= 0 {
			unit = s[idx[4]:idx[5]]
		}
		v, err := strconv.ParseFloat(num, 64)
		if err != nil {
			continue
		}
		if unit != "" {
			return &model.Quantity{Value: v, Unit: strings.ToUpper(unit)}
		}
		if bare == nil && !decimalAdjacent(s, idx[2], idx[3]) {
			bare = &model.Quantity{Value: v}
		}
	}
	return bare
}

// stripFieldText removes the extracted numeric fields from the line to leave
// a cleaner description.
func (p *LineParser) stripFieldText(s, taxable, unitPrice string, item model.LineItem) string {
	s = strings.Replace(s, taxable, "", 1)
	if unitPrice != "" {
		s = strings.Replace(s, unitPrice, "", 1)
	}
	if item.Quantity != nil {
		qtyText := strconv.FormatFloat(item.Quantity.Value, 'f', -1, 64)
		if item.Quantity.Unit != "" {
			// Match the unit as printed, any case.
			re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(qtyText) + `\s*` + regexp.QuoteMeta(item.Quantity.Unit))
			if err == nil {
				s = re.ReplaceAllString(s, "")
			}
		} else {
			s = strings.Replace(s, qtyText, "", 1)
		}
	}
	if item.HSN != "" {
		s = strings.Replace(s, item.HSN, "", 1)
	}
	return strings.TrimSpace(p.multiSpace.ReplaceAllString(s, " "))
}
