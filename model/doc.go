// Package model provides the data model for extracted invoice content.
//
// This package defines the user-facing data structures that the extraction
// engine produces. All parsing operations ultimately yield these types,
// making them the primary API for consuming extracted invoices.
//
// # Tokens and Geometry
//
// The [Token] type is the engine's unit of input: a piece of recognized text
// with a confidence score and a four-point bounding quadrilateral. Geometric
// attributes (center, left edge) are derived from the quad on every read so
// they can never drift from the underlying geometry:
//
//	tok := model.Token{Text: "₹263.00", Quad: quad}
//	x := tok.CenterX()
//
// # Invoice Structure
//
// An [Invoice] aggregates everything extracted from one document:
//
//   - Seller and Buyer as [EntityInfo]
//   - [InvoiceDetails] - number, date, place of supply
//   - [LineItem] values with computed per-line totals
//   - A [TotalsRecord] reconciling computed against printed totals
//   - [Warning] values for fields the caller should treat with suspicion
//
// Optional fields are modeled as pointers; a nil pointer means the value was
// not found on the document.
package model
