package layout

import (
	"math"
	"testing"

	"github.com/invoscan/invoscan/model"
)

func TestColumnModel_BoundsFromAnchor(t *testing.T) {
	anchor := makeRow(100, "Description", "HSN", "Qty", "Rate", "Amount")

	m := NewColumnModel(anchor, DefaultColumnConfig())

	if m.Degenerate {
		t.Fatal("unexpected degenerate model")
	}
	if m.ColumnCount() != 5 {
		t.Fatalf("expected 5 columns, got %d", m.ColumnCount())
	}
	if !math.IsInf(m.Bounds[0].Left, -1) {
		t.Error("first bound must extend to -infinity")
	}
	if !math.IsInf(m.Bounds[len(m.Bounds)-1].Right, 1) {
		t.Error("last bound must extend to +infinity")
	}
}

func TestColumnModel_CoverageInvariant(t *testing.T) {
	anchor := makeRow(100, "a", "b", "c", "d")
	m := NewColumnModel(anchor, DefaultColumnConfig())

	// Every x maps to exactly one column via BoundFor.
	for x := -500.0; x <= 2000; x += 7 {
		i := m.BoundFor(x)
		if i < 0 || i >= m.ColumnCount() {
			t.Fatalf("BoundFor(%v) = %d out of range", x, i)
		}
	}
}

func TestColumnModel_DegenerateFallback(t *testing.T) {
	anchor := makeRow(100, "only", "two")

	m := NewColumnModel(anchor, DefaultColumnConfig())

	if !m.Degenerate {
		t.Error("2-token anchor should produce degenerate model")
	}
	if m.ColumnCount() != 1 {
		t.Fatalf("expected single column, got %d", m.ColumnCount())
	}
	if m.BoundFor(-1e9) != 0 || m.BoundFor(1e9) != 0 {
		t.Error("single bound must cover the whole axis")
	}
}

func TestColumnModel_NarrowBoundsMergeLeft(t *testing.T) {
	// Tokens packed tightly on the right produce an internal bound narrower
	// than the 60px minimum; it must merge into its left neighbor.
	anchor := Row{Tokens: []model.Token{
		makeToken("a", 10, 100),
		makeToken("b", 500, 100),
		makeToken("c", 520, 100),
		makeToken("d", 540, 100),
	}}

	m := NewColumnModel(anchor, DefaultColumnConfig())

	if m.ColumnCount() >= 4 {
		t.Errorf("narrow bound not merged: %d columns", m.ColumnCount())
	}
	for i := 1; i < m.ColumnCount()-1; i++ {
		b := m.Bounds[i]
		if b.Right-b.Left < DefaultColumnConfig().MinWidth {
			t.Errorf("bound %d narrower than minimum: %+v", i, b)
		}
	}
}

func TestColumnModel_Assign(t *testing.T) {
	anchor := makeRow(100, "Description", "HSN", "Qty", "Rate", "Amount")
	m := NewColumnModel(anchor, DefaultColumnConfig())

	data := makeRow(140, "GYPSUM", "2520", "149 Bag", "263.00", "39187.00")
	cols := m.Assign(data)

	if len(cols) != m.ColumnCount() {
		t.Fatalf("Assign returned %d columns, want %d", len(cols), m.ColumnCount())
	}
	// Data tokens share x-positions with the anchor, so each lands in its
	// own column.
	for i, col := range cols {
		if len(col) != 1 {
			t.Errorf("column %d has %d tokens, want 1", i, len(col))
		}
	}
}

func TestColumnModel_DriftRescue(t *testing.T) {
	anchor := makeRow(100, "a", "b", "c")
	m := NewColumnModel(anchor, DefaultColumnConfig())

	// A token far outside every interval still maps to the nearest column.
	i := m.BoundFor(1e7)
	if i != m.ColumnCount()-1 {
		t.Errorf("far-right token mapped to column %d, want last", i)
	}
}
