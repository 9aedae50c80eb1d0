package layout

import (
	"fmt"
	"testing"

	"github.com/invoscan/invoscan/model"
)

// makeRow builds a row from texts laid out left to right at the given y.
func makeRow(y float64, texts ...string) Row {
	toks := make([]model.Token, len(texts))
	for i, txt := range texts {
		toks[i] = makeToken(txt, float64(10+i*150), y)
	}
	return Row{Tokens: toks}
}

// fillerRows produces n single-token rows of unremarkable text.
func fillerRows(n int, startY float64) []Row {
	rows := make([]Row, n)
	for i := range rows {
		rows[i] = makeRow(startY+float64(i*40), fmt.Sprintf("note%d", i))
	}
	return rows
}

func TestAnchorDetector_KeywordScore(t *testing.T) {
	rows := []Row{
		makeRow(40, "Sharma", "Traders"),
		makeRow(100, "Description of Goods", "HSN/SAC", "Quantity", "Rate", "Amount"),
		makeRow(140, "GYPSUM", "2520", "149 Bag", "263.00", "39187.00"),
	}

	a, ok := NewAnchorDetector().Detect(rows)

	if !ok {
		t.Fatal("expected anchor")
	}
	if a.Strategy != AnchorKeywordScore {
		t.Errorf("strategy = %v, want keyword-score", a.Strategy)
	}
	if a.BoundsRow != 1 || a.ParseStart != 2 {
		t.Errorf("anchor = (%d, %d), want (1, 2)", a.BoundsRow, a.ParseStart)
	}
}

func TestAnchorDetector_KeywordScoreNeedsThreeTokens(t *testing.T) {
	// Two header keywords but only 2 tokens: strategy 1 must not fire.
	rows := append([]Row{
		makeRow(40, "Quantity Rate", "Amount"),
	}, fillerRows(12, 100)...)

	a, ok := NewAnchorDetector().Detect(rows)
	if ok && a.Strategy == AnchorKeywordScore {
		t.Errorf("keyword-score fired on a 2-token row")
	}
}

func TestAnchorDetector_StrongKeywordUsesDataRowForBounds(t *testing.T) {
	rows := []Row{
		makeRow(40, "Tax Invoice"),
		makeRow(100, "HSN/SAC"), // lone label, not enough for strategy 1
		makeRow(140, "CALCINED", "PLASTER"),
		makeRow(180, "2520", "149 Bag", "263.00", "39187.00"),
	}

	a, ok := NewAnchorDetector().Detect(rows)

	if !ok {
		t.Fatal("expected anchor")
	}
	if a.Strategy != AnchorStrongKeyword {
		t.Errorf("strategy = %v, want strong-keyword", a.Strategy)
	}
	// Column geometry from the data row, but parsing resumes after the
	// label so the wrapped description row is not lost.
	if a.BoundsRow != 3 {
		t.Errorf("BoundsRow = %d, want 3", a.BoundsRow)
	}
	if a.ParseStart != 2 {
		t.Errorf("ParseStart = %d, want 2", a.ParseStart)
	}
}

func TestAnchorDetector_LabelKeyword(t *testing.T) {
	rows := []Row{
		makeRow(40, "Tax Invoice"),
		makeRow(100, "Item name"),
		makeRow(140, "SOAP", "1001", "12 PCS", "40.00"),
	}

	a, ok := NewAnchorDetector().Detect(rows)

	if !ok {
		t.Fatal("expected anchor")
	}
	if a.Strategy != AnchorLabelKeyword {
		t.Errorf("strategy = %v, want label-keyword", a.Strategy)
	}
	if a.ParseStart != 2 {
		t.Errorf("ParseStart = %d, want 2", a.ParseStart)
	}
}

func TestAnchorDetector_DataRowHeuristic(t *testing.T) {
	rows := fillerRows(12, 40)
	data := makeRow(600, "WIDGET", "100.00", "200.00", "300.00")
	rows = append(rows, data)

	a, ok := NewAnchorDetector().Detect(rows)

	if !ok {
		t.Fatal("expected anchor")
	}
	if a.Strategy != AnchorDataRow {
		t.Errorf("strategy = %v, want data-row", a.Strategy)
	}
	if a.BoundsRow != 12 || a.ParseStart != 12 {
		t.Errorf("anchor = (%d, %d), want (12, 12)", a.BoundsRow, a.ParseStart)
	}
}

func TestAnchorDetector_FailSoft(t *testing.T) {
	rows := fillerRows(10, 40)
	rows = append(rows, makeRow(600, "alpha", "beta", "gamma", "delta"))

	a, ok := NewAnchorDetector().Detect(rows)

	if !ok {
		t.Fatal("expected fail-soft anchor")
	}
	if a.Strategy != AnchorFailSoft {
		t.Errorf("strategy = %v, want fail-soft", a.Strategy)
	}
}

func TestAnchorDetector_NoAnchor(t *testing.T) {
	rows := fillerRows(6, 40)

	_, ok := NewAnchorDetector().Detect(rows)

	if ok {
		t.Error("expected no anchor on sparse single-token rows")
	}
}
