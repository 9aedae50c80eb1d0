package model

// RawToken is a single recognized token as delivered by an OCR backend,
// before normalization. Page is an optional hint: backends that process one
// image at a time leave it zero and the tokenizer infers page breaks from
// vertical jumps in the token stream.
type RawToken struct {
	Text       string
	Confidence float64
	Quad       Quad
	Page       int
}

// Token is a normalized OCR token. Tokens are immutable once created; the
// geometric accessors delegate to the quad so derived coordinates always
// reflect the current geometry.
type Token struct {
	// Text is the recognized text, whitespace-trimmed and Unicode-normalized.
	Text string

	// Confidence is the recognizer's confidence in [0, 1].
	Confidence float64

	// Quad is the bounding quadrilateral in image coordinates.
	Quad Quad

	// Page is the zero-based page index.
	Page int
}

// CenterX returns the horizontal center of the token's quad.
func (t Token) CenterX() float64 { return t.Quad.CenterX() }

// CenterY returns the vertical center of the token's quad.
func (t Token) CenterY() float64 { return t.Quad.CenterY() }

// Left returns the left edge of the token's quad.
func (t Token) Left() float64 { return t.Quad.Left() }

// Top returns the top edge of the token's quad.
func (t Token) Top() float64 { return t.Quad.Top() }
