package table

import (
	"strconv"
	"strings"

	"github.com/invoscan/invoscan/internal/numeric"
	"github.com/invoscan/invoscan/layout"
	"github.com/invoscan/invoscan/model"
)

// Transposed tables lay items out as columns and fields as rows: one row of
// quantities, one of rates, one of amounts, with item names somewhere above.
// Small shop invoices with two or three items often print this way.

// isTransposed samples up to 5 multi-token rows in [start, end) and checks
// their token left-edge positions against the first sample. Two or more rows
// agreeing on 80% of positions (within 20px) means the columns repeat
// row after row, the signature of a transposed layout.
func (p *Parser) isTransposed(rows []layout.Row, start, end int) bool {
	if end-start < 3 {
		return false
	}

	var samples [][]float64
	limit := min(start+15, end)
	for _, row := range rows[start:limit] {
		if len(row.Tokens) < 3 {
			continue
		}
		lefts := make([]float64, len(row.Tokens))
		for i, t := range row.Tokens {
			lefts[i] = t.Left()
		}
		samples = append(samples, lefts)
		if len(samples) >= 5 {
			break
		}
	}
	if len(samples) < 2 {
		return false
	}

	first := samples[0]
	agreeing := 0
	for _, lefts := range samples[1:] {
		if len(lefts) != len(first) {
			continue
		}
		matches := 0
		for i := range lefts {
			if absFloat(lefts[i]-first[i]) < 20 {
				matches++
			}
		}
		if float64(matches) >= float64(len(first))*0.8 {
			agreeing++
		}
	}
	return agreeing >= 2
}

// transposedFields maps field names to the row carrying that field's values.
type transposedFields map[string]layout.Row

// parseTransposed reads one item per column index across the identified
// field rows. Field rows are found by keyword; keyword-less numeric rows are
// classified by magnitude, values under 100 being rates and the rest
// amounts. Descriptions come from candidate rows preceding the anchor.
func (p *Parser) parseTransposed(rows []layout.Row, start int) []model.LineItem {
	fields := transposedFields{}
	var descCandidates []layout.Row

	// Look back up to 10 rows for the HSN row and description candidates.
	for _, row := range rows[max(0, start-10):start] {
		text := row.LowerText()
		switch {
		case strings.Contains(text, "hsn") && len(row.Tokens) >= 3:
			fields["hsn"] = row
		case len(row.Tokens) >= 3:
			if _, have := fields["hsn"]; have {
				continue
			}
			if containsAny(text, "invoice", "buyer", "seller", "gstin", "state name", "bill to") {
				continue
			}
			descCandidates = append(descCandidates, row)
		}
	}

	// Walk forward classifying field rows until the totals block.
	limit := min(start+30, len(rows))
	for _, row := range rows[start:limit] {
		text := row.LowerText()
		if p.pats.TotalsMarker.MatchString(text) {
			break
		}
		if len(row.Tokens) < 3 {
			continue
		}
		switch {
		case strings.Contains(text, "quantity") || strings.Contains(text, "qty"):
			fields["quantity"] = row
		case strings.Contains(text, "rate"):
			if _, have := fields["rate"]; !have {
				fields["rate"] = row
			}
		case strings.Contains(text, "amount"):
			fields["amount"] = row
		case strings.Contains(text, "hsn"):
			fields["hsn"] = row
		default:
			p.classifyByValues(row, fields)
		}
	}

	count := 0
	for _, key := range []string{"quantity", "rate", "amount"} {
		if row, ok := fields[key]; ok {
			count = len(row.Tokens)
			break
		}
	}
	if count == 0 {
		return nil
	}

	var items []model.LineItem
	for col := 0; col < count; col++ {
		item := model.LineItem{}

		if row, ok := fields["quantity"]; ok && col < len(row.Tokens) {
			item.RowID = row.ID
			item.Confidence = rowConfidence(row)
			if m := p.pats.Quantity.FindStringSubmatch(row.Tokens[col].Text); m != nil {
				if v, err := strconv.ParseFloat(m[1], 64); err == nil {
					item.Quantity = &model.Quantity{Value: v, Unit: strings.ToUpper(m[2])}
				}
			}
		}
		if row, ok := fields["rate"]; ok && col < len(row.Tokens) {
			if item.RowID == "" {
				item.RowID = row.ID
				item.Confidence = rowConfidence(row)
			}
			if v, ok := numeric.NormalizeAmount(row.Tokens[col].Text); ok {
				item.UnitPrice = &v
			}
		}
		if row, ok := fields["amount"]; ok && col < len(row.Tokens) {
			if v, ok := numeric.NormalizeAmount(row.Tokens[col].Text); ok {
				item.TaxableValue = &v
			}
		}
		if row, ok := fields["hsn"]; ok && col < len(row.Tokens) {
			if m := p.pats.HSN.FindStringSubmatch(row.Tokens[col].Text); m != nil {
				item.HSN = m[1]
			}
		}
		if col < len(descCandidates) {
			row := descCandidates[col]
			if col < len(row.Tokens) {
				item.Description = strings.TrimSpace(row.Tokens[col].Text)
			} else {
				item.Description = row.Text()
			}
		}

		if item.TaxableValue != nil || item.UnitPrice != nil {
			items = append(items, item)
		}
	}
	return items
}

// classifyByValues assigns a keyword-less numeric row to the rate or amount
// slot by the magnitude of its values.
func (p *Parser) classifyByValues(row layout.Row, fields transposedFields) {
	text := row.Text()

	if _, have := fields["quantity"]; !have {
		qtyMatches := 0
		for _, m := range p.pats.Quantity.FindAllStringSubmatch(text, -1) {
			if m[2] != "" {
				qtyMatches++
			}
		}
		if qtyMatches >= 2 {
			fields["quantity"] = row
			return
		}
	}

	amounts := p.pats.TwoDecimal.FindAllString(text, -1)
	if len(amounts) < 2 {
		return
	}
	var sum float64
	for _, a := range amounts {
		if v, ok := numeric.NormalizeAmount(a); ok {
			sum += v
		}
	}
	avg := sum / float64(len(amounts))
	if avg >= 100 {
		if _, have := fields["amount"]; !have {
			fields["amount"] = row
		}
	} else if _, have := fields["rate"]; !have {
		fields["rate"] = row
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
