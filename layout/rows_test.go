package layout

import (
	"testing"

	"github.com/invoscan/invoscan/model"
)

// makeToken creates a normalized token for layout tests.
func makeToken(text string, x, y float64) model.Token {
	return model.Token{
		Text:       text,
		Confidence: 1.0,
		Quad:       model.QuadFromRect(x, y-10, 50, 20), // centerY == y
	}
}

func makeTokenOnPage(text string, x, y float64, page int) model.Token {
	tok := makeToken(text, x, y)
	tok.Page = page
	return tok
}

func TestRowGrouper_Empty(t *testing.T) {
	rows := NewRowGrouper().Group(nil)
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}

func TestRowGrouper_GroupsByProximity(t *testing.T) {
	tokens := []model.Token{
		makeToken("a", 10, 100),
		makeToken("b", 200, 104), // within tolerance of row median
		makeToken("c", 10, 140),  // new row
	}

	rows := NewRowGrouper().Group(tokens)

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Text() != "a b" {
		t.Errorf("row 0 = %q, want %q", rows[0].Text(), "a b")
	}
	if rows[1].Text() != "c" {
		t.Errorf("row 1 = %q, want %q", rows[1].Text(), "c")
	}
}

func TestRowGrouper_TokensOrderedByLeft(t *testing.T) {
	tokens := []model.Token{
		makeToken("second", 300, 100),
		makeToken("first", 10, 102),
		makeToken("third", 500, 101),
	}

	rows := NewRowGrouper().Group(tokens)

	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Text() != "first second third" {
		t.Errorf("row text = %q", rows[0].Text())
	}
	// Strict left ordering invariant.
	for i := 1; i < len(rows[0].Tokens); i++ {
		if rows[0].Tokens[i].Left() < rows[0].Tokens[i-1].Left() {
			t.Error("tokens not ordered by left edge")
		}
	}
}

func TestRowGrouper_ToleranceIsTunable(t *testing.T) {
	tokens := []model.Token{
		makeToken("a", 10, 100),
		makeToken("b", 100, 117),
	}

	tight := NewRowGrouperWithConfig(RowConfig{YTolerance: 12})
	if got := len(tight.Group(tokens)); got != 2 {
		t.Errorf("tight tolerance: expected 2 rows, got %d", got)
	}

	loose := NewRowGrouperWithConfig(RowConfig{YTolerance: 20})
	if got := len(loose.Group(tokens)); got != 1 {
		t.Errorf("loose tolerance: expected 1 row, got %d", got)
	}
}

func TestRowGrouper_PageBoundaryStartsNewRow(t *testing.T) {
	tokens := []model.Token{
		makeTokenOnPage("a", 10, 100, 0),
		makeTokenOnPage("b", 10, 102, 1), // same band, different page
	}

	rows := NewRowGrouper().Group(tokens)

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows across pages, got %d", len(rows))
	}
	if rows[0].ID != "p0-r0" || rows[1].ID != "p1-r0" {
		t.Errorf("row IDs not page-qualified: %q, %q", rows[0].ID, rows[1].ID)
	}
}

func TestRowGrouper_RowNumberingRestartsPerPage(t *testing.T) {
	tokens := []model.Token{
		makeTokenOnPage("a", 10, 100, 0),
		makeTokenOnPage("b", 10, 200, 0),
		makeTokenOnPage("c", 10, 100, 1),
	}

	rows := NewRowGrouper().Group(tokens)

	want := []string{"p0-r0", "p0-r1", "p1-r0"}
	for i, id := range want {
		if rows[i].ID != id {
			t.Errorf("row %d ID = %q, want %q", i, rows[i].ID, id)
		}
	}
}

func TestRowMedianY(t *testing.T) {
	r := Row{Tokens: []model.Token{
		makeToken("a", 0, 100),
		makeToken("b", 0, 104),
		makeToken("c", 0, 120),
	}}
	if got := r.MedianY(); got != 104 {
		t.Errorf("MedianY = %v, want 104", got)
	}
}
