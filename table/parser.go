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

// Config holds configuration for table parsing.
type Config struct {
	// Patterns supplies the regex anchors and vocabularies. Nil means
	// patterns.Default().
	Patterns *patterns.Set

	// Columns configures column inference from the anchor row.
	Columns layout.ColumnConfig

	// ScanWindow is how many rows past the parse start are sampled for
	// transposed-table detection (default: 20).
	ScanWindow int
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Columns:    layout.DefaultColumnConfig(),
		ScanWindow: 20,
	}
}

// Parser converts rows below a table anchor into line items.
type Parser struct {
	config Config
	pats   *patterns.Set

	pureNumber *regexp.Regexp
	leadingIdx *regexp.Regexp
}

// NewParser creates a table parser with default configuration.
func NewParser() *Parser {
	return NewParserWithConfig(DefaultConfig())
}

// NewParserWithConfig creates a table parser with custom configuration.
func NewParserWithConfig(config Config) *Parser {
	if config.Patterns == nil {
		config.Patterns = patterns.Default()
	}
	if config.ScanWindow <= 0 {
		config.ScanWindow = 20
	}
	return &Parser{
		config:     config,
		pats:       config.Patterns,
		pureNumber: regexp.MustCompile(`^\d+$`),
		leadingIdx: regexp.MustCompile(`^\d+\s+`),
	}
}

// Parse reads line items from the rows at and after anchor.ParseStart,
// stopping at the first totals-marker row. Column geometry comes from
// anchor.BoundsRow. Rows with text but no extractable amount are buffered
// and prepended to the next completed item's description, which reassembles
// descriptions wrapped across OCR rows.
func (p *Parser) Parse(rows []layout.Row, anchor layout.Anchor) []model.LineItem {
	if anchor.BoundsRow >= len(rows) || anchor.ParseStart > len(rows) {
		return nil
	}
	cm := layout.NewColumnModel(rows[anchor.BoundsRow], p.config.Columns)

	end := min(anchor.ParseStart+p.config.ScanWindow, len(rows))
	if p.isTransposed(rows, anchor.ParseStart, end) {
		return p.parseTransposed(rows, anchor.ParseStart)
	}

	var items []model.LineItem
	var pending []layout.Row

	for _, row := range rows[anchor.ParseStart:] {
		if p.pats.TotalsMarker.MatchString(row.Text()) {
			break
		}
		cols := cm.Assign(row)

		amount, amountIdx, ok := p.lastAmountColumn(cols)
		if !ok {
			// No amount: hold the row as a wrapped-description candidate
			// unless it is blank or a bare row number.
			text := row.Text()
			if text != "" && !p.pureNumber.MatchString(text) {
				pending = append(pending, row)
			}
			continue
		}

		item := model.LineItem{
			RowID:        row.ID,
			TaxableValue: &amount,
			Confidence:   rowConfidence(row),
		}

		if amountIdx > 0 {
			if up, ok := p.colAmount(cols[amountIdx-1]); ok {
				item.UnitPrice = &up
			}
		}

		item.HSN = p.findHSN(cols)
		item.Quantity = p.findQuantity(cols, item.HSN)
		if rate, ok := p.findGSTRate(cols); ok {
			item.GSTRatePct = &rate
		}
		item.Description = p.buildDescription(cols, pending)
		pending = pending[:0]

		items = append(items, item)
	}

	return items
}

// lastAmountColumn scans columns right to left for the first one yielding a
// valid amount. That column holds the taxable/amount value.
func (p *Parser) lastAmountColumn(cols [][]model.Token) (float64, int, bool) {
	for i := len(cols) - 1; i >= 0; i-- {
		if v, ok := p.colAmount(cols[i]); ok {
			return v, i, true
		}
	}
	return 0, 0, false
}

// colAmount extracts an amount from a column's tokens. Percentage tokens are
// skipped individually rather than poisoning the whole column: a GST rate
// printed beside the amount must not hide it.
func (p *Parser) colAmount(col []model.Token) (float64, bool) {
	var parts []string
	for _, t := range col {
		if strings.ContainsRune(t.Text, '%') {
			continue
		}
		parts = append(parts, t.Text)
	}
	return numeric.LastAmount(strings.Join(parts, " "), p.pats.Amount, p.pats.Decimal)
}

// findHSN returns the first column's 4-8 digit run, if any.
func (p *Parser) findHSN(cols [][]model.Token) string {
	for _, c := range cols {
		if m := p.pats.HSN.FindStringSubmatch(colText(c)); m != nil {
			return m[1]
		}
	}
	return ""
}

// findQuantity searches every column for a quantity pattern, preferring
// matches with an explicit unit token. A bare number identical to the HSN
// code is never a quantity.
func (p *Parser) findQuantity(cols [][]model.Token, hsn string) *model.Quantity {
	var bare *model.Quantity
	for _, c := range cols {
		text := colText(c)
		for _, idx := range p.pats.Quantity.FindAllStringSubmatchIndex(text, -1) {
			num := text[idx[2]:idx[3]]
			var unit string
			if idx[4] >= 0 {
				unit = text[idx[4]:idx[5]]
			}
			if unit != "" {
				v, err := strconv.ParseFloat(num, 64)
				if err != nil {
					continue
				}
				return &model.Quantity{Value: v, Unit: strings.ToUpper(unit)}
			}
			if bare != nil || num == hsn || decimalAdjacent(text, idx[2], idx[3]) {
				continue
			}
			if v, err := strconv.ParseFloat(num, 64); err == nil {
				bare = &model.Quantity{Value: v}
			}
		}
	}
	return bare
}

// decimalAdjacent reports whether s[start:end] abuts a decimal point or
// thousands separator. A digit run inside "39,187.00" is part of an amount,
// never a bare quantity.
func decimalAdjacent(s string, start, end int) bool {
	if start > 0 && (s[start-1] == '.' || s[start-1] == ',') {
		return true
	}
	if end < len(s) && (s[end] == '.' || s[end] == ',') {
		return true
	}
	return false
}

func (p *Parser) findGSTRate(cols [][]model.Token) (float64, bool) {
	for _, c := range cols {
		text := colText(c)
		if !strings.ContainsRune(text, '%') {
			continue
		}
		if m := p.pats.GSTRate.FindStringSubmatch(text); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				return v, true
			}
		}
	}
	return 0, false
}

// buildDescription concatenates buffered wrapped rows with the current row's
// columns left of the first numeric or HSN-bearing column.
func (p *Parser) buildDescription(cols [][]model.Token, pending []layout.Row) string {
	var parts []string

	for _, row := range pending {
		text := p.leadingIdx.ReplaceAllString(row.Text(), "")
		if text != "" {
			parts = append(parts, text)
		}
	}

	stop := len(cols)
	for i, c := range cols {
		if _, isAmount := p.colAmount(c); isAmount || p.pats.HSN.MatchString(colText(c)) {
			stop = i
			break
		}
	}
	for i := 0; i < stop; i++ {
		text := colText(cols[i])
		if text != "" && !p.pureNumber.MatchString(text) {
			parts = append(parts, text)
		}
	}

	joined := strings.TrimSpace(strings.Join(parts, " "))
	return p.leadingIdx.ReplaceAllString(joined, "")
}

func colText(col []model.Token) string {
	parts := make([]string, len(col))
	for i, t := range col {
		parts[i] = t.Text
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func rowConfidence(row layout.Row) float64 {
	if len(row.Tokens) == 0 {
		return 0
	}
	var sum float64
	for _, t := range row.Tokens {
		sum += t.Confidence
	}
	return sum / float64(len(row.Tokens))
}
