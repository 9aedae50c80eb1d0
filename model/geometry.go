package model

// Point is a 2D coordinate in image space. The origin is the top-left corner
// of the page, with Y increasing downward (scanner/OCR convention).
type Point struct {
	X float64
	Y float64
}

// Quad is a four-point bounding quadrilateral as reported by OCR engines.
// Points are conventionally ordered clockwise from the top-left corner, but
// none of the derived accessors depend on the ordering.
type Quad [4]Point

// CenterX returns the mean X coordinate of the four corners.
func (q Quad) CenterX() float64 {
	return (q[0].X + q[1].X + q[2].X + q[3].X) / 4
}

// CenterY returns the mean Y coordinate of the four corners.
func (q Quad) CenterY() float64 {
	return (q[0].Y + q[1].Y + q[2].Y + q[3].Y) / 4
}

// Left returns the minimum X coordinate of the four corners.
func (q Quad) Left() float64 {
	min := q[0].X
	for _, p := range q[1:] {
		if p.X < min {
			min = p.X
		}
	}
	return min
}

// Right returns the maximum X coordinate of the four corners.
func (q Quad) Right() float64 {
	max := q[0].X
	for _, p := range q[1:] {
		if p.X > max {
			max = p.X
		}
	}
	return max
}

// Top returns the minimum Y coordinate of the four corners.
func (q Quad) Top() float64 {
	min := q[0].Y
	for _, p := range q[1:] {
		if p.Y < min {
			min = p.Y
		}
	}
	return min
}

// IsZero reports whether the quad carries no geometry at all. OCR tokens
// without a bounding quad are dropped during tokenization.
func (q Quad) IsZero() bool {
	for _, p := range q {
		if p.X != 0 || p.Y != 0 {
			return false
		}
	}
	return true
}

// QuadFromRect builds an axis-aligned quad from a top-left corner and a size.
// Useful for OCR backends that report rectangles rather than quadrilaterals.
func QuadFromRect(x, y, w, h float64) Quad {
	return Quad{
		{X: x, Y: y},
		{X: x + w, Y: y},
		{X: x + w, Y: y + h},
		{X: x, Y: y + h},
	}
}
