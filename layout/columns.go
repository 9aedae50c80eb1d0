package layout

import (
	"math"
	"sort"

	"github.com/invoscan/invoscan/model"
)

// ColumnBound is a closed interval [Left, Right] in image x-coordinates.
// The first and last bounds of a model extend to ±infinity.
type ColumnBound struct {
	Left  float64
	Right float64
}

// Contains reports whether x falls inside the bound.
func (b ColumnBound) Contains(x float64) bool {
	return b.Left <= x && x <= b.Right
}

// Mid returns the midpoint of the bound. Infinite edges are clamped so the
// midpoint stays finite for nearest-bound rescue.
func (b ColumnBound) Mid() float64 {
	l, r := b.Left, b.Right
	if math.IsInf(l, -1) {
		l = r - 1
	}
	if math.IsInf(r, 1) {
		r = l + 1
	}
	return (l + r) / 2
}

// ColumnConfig holds configuration for column inference.
type ColumnConfig struct {
	// ExpandMargin widens each boundary by this many pixels on each side
	// (default: 12), absorbing slight horizontal drift between header and
	// data rows.
	ExpandMargin float64

	// MinWidth is the minimum column width in pixels (default: 60). Bounds
	// narrower than this are merged into their left neighbor.
	MinWidth float64
}

// DefaultColumnConfig returns sensible default configuration.
func DefaultColumnConfig() ColumnConfig {
	return ColumnConfig{
		ExpandMargin: 12.0,
		MinWidth:     60.0,
	}
}

// ColumnModel maps x-coordinates to table columns. Bounds are ordered left
// to right and jointly cover the whole axis, so every token center maps to
// exactly one column.
type ColumnModel struct {
	Bounds []ColumnBound

	// Degenerate is set when the anchor row had fewer than 3 tokens and the
	// model collapsed to a single all-inclusive bound. It signals that the
	// anchor was unreliable.
	Degenerate bool
}

// NewColumnModel derives column bounds from an anchor row. Boundaries sit at
// the midpoints between consecutive token left edges, widened by the expand
// margin; the outermost bounds extend to ±infinity. Bounds narrower than
// MinWidth merge leftward. An anchor row with fewer than 3 tokens yields the
// degenerate single-column model.
func NewColumnModel(anchor Row, config ColumnConfig) *ColumnModel {
	if config.ExpandMargin == 0 && config.MinWidth == 0 {
		config = DefaultColumnConfig()
	}
	if len(anchor.Tokens) < 3 {
		return &ColumnModel{
			Bounds:     []ColumnBound{{Left: math.Inf(-1), Right: math.Inf(1)}},
			Degenerate: true,
		}
	}

	xs := make([]float64, len(anchor.Tokens))
	for i, t := range anchor.Tokens {
		xs[i] = t.Left()
	}
	sort.Float64s(xs)

	mids := make([]float64, 0, len(xs)-1)
	for i := 1; i < len(xs); i++ {
		mids = append(mids, (xs[i-1]+xs[i])/2)
	}

	bounds := make([]ColumnBound, 0, len(mids)+1)
	left := math.Inf(-1)
	for _, m := range mids {
		bounds = append(bounds, ColumnBound{Left: left - config.ExpandMargin, Right: m + config.ExpandMargin})
		left = m
	}
	bounds = append(bounds, ColumnBound{Left: left - config.ExpandMargin, Right: math.Inf(1)})

	merged := bounds[:0]
	for _, b := range bounds {
		if len(merged) > 0 && b.Right-b.Left < config.MinWidth {
			merged[len(merged)-1].Right = b.Right
			continue
		}
		merged = append(merged, b)
	}

	return &ColumnModel{Bounds: merged}
}

// ColumnCount returns the number of columns in the model.
func (m *ColumnModel) ColumnCount() int {
	return len(m.Bounds)
}

// BoundFor returns the index of the column owning x: the first bound that
// contains it, or the bound with the nearest midpoint when geometry drift
// leaves x outside every interval. The result is always a valid index.
func (m *ColumnModel) BoundFor(x float64) int {
	for i, b := range m.Bounds {
		if b.Contains(x) {
			return i
		}
	}
	best := 0
	bestDist := math.Inf(1)
	for i, b := range m.Bounds {
		if d := math.Abs(x - b.Mid()); d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// Assign distributes a row's tokens into per-column slices by token center.
func (m *ColumnModel) Assign(row Row) [][]model.Token {
	cols := make([][]model.Token, len(m.Bounds))
	for _, t := range row.Tokens {
		i := m.BoundFor(t.CenterX())
		cols[i] = append(cols[i], t)
	}
	return cols
}
