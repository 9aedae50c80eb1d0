package layout

import (
	"fmt"
	"sort"
	"strings"

	"github.com/invoscan/invoscan/model"
)

// Row is an ordered sequence of tokens sharing a page and a vertical band.
// Tokens are ordered by left edge ascending.
type Row struct {
	// Tokens are the member tokens, left to right.
	Tokens []model.Token

	// Page is the zero-based page index shared by all member tokens.
	Page int

	// ID is a page-qualified row identifier, e.g. "p0-r12". Row numbering
	// restarts on each page so identifiers never collide across pages.
	ID string
}

// Text returns the row's tokens joined with single spaces.
func (r Row) Text() string {
	parts := make([]string, len(r.Tokens))
	for i, t := range r.Tokens {
		parts[i] = t.Text
	}
	return strings.Join(parts, " ")
}

// LowerText returns Text lowercased, the form the keyword matchers use.
func (r Row) LowerText() string {
	return strings.ToLower(r.Text())
}

// MedianY returns the median centerY of the row's tokens.
func (r Row) MedianY() float64 {
	if len(r.Tokens) == 0 {
		return 0
	}
	ys := make([]float64, len(r.Tokens))
	for i, t := range r.Tokens {
		ys[i] = t.CenterY()
	}
	sort.Float64s(ys)
	mid := len(ys) / 2
	if len(ys)%2 == 1 {
		return ys[mid]
	}
	return (ys[mid-1] + ys[mid]) / 2
}

// RowConfig holds configuration for row grouping.
type RowConfig struct {
	// YTolerance is the vertical distance (pixels) within which a token
	// joins the open row (default: 14). Raise toward 20 for low-resolution
	// or skewed captures, lower toward 12 for dense print.
	YTolerance float64
}

// DefaultRowConfig returns sensible default configuration.
func DefaultRowConfig() RowConfig {
	return RowConfig{
		YTolerance: 14.0,
	}
}

// RowGrouper clusters tokens into text rows by vertical proximity.
type RowGrouper struct {
	config RowConfig
}

// NewRowGrouper creates a row grouper with default configuration.
func NewRowGrouper() *RowGrouper {
	return &RowGrouper{config: DefaultRowConfig()}
}

// NewRowGrouperWithConfig creates a row grouper with custom configuration.
func NewRowGrouperWithConfig(config RowConfig) *RowGrouper {
	return &RowGrouper{config: config}
}

// Group clusters tokens into rows. The input must already be sorted by
// (page, centerY, leftX), as the Tokenizer produces. A token joins the open
// row when its centerY is within YTolerance of the row's running median;
// otherwise it starts a new row. A page change always starts a new row.
func (g *RowGrouper) Group(tokens []model.Token) []Row {
	var rows []Row
	for _, tok := range tokens {
		if len(rows) > 0 {
			open := &rows[len(rows)-1]
			if open.Page == tok.Page && absFloat(tok.CenterY()-open.MedianY()) <= g.config.YTolerance {
				open.Tokens = append(open.Tokens, tok)
				continue
			}
		}
		rows = append(rows, Row{Tokens: []model.Token{tok}, Page: tok.Page})
	}

	rowOnPage := 0
	lastPage := -1
	for i := range rows {
		sort.SliceStable(rows[i].Tokens, func(a, b int) bool {
			return rows[i].Tokens[a].Left() < rows[i].Tokens[b].Left()
		})
		if rows[i].Page != lastPage {
			rowOnPage = 0
			lastPage = rows[i].Page
		}
		rows[i].ID = fmt.Sprintf("p%d-r%d", rows[i].Page, rowOnPage)
		rowOnPage++
	}
	return rows
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
