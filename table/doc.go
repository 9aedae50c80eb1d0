// Package table converts column-assigned rows into invoice line items.
//
// The [Parser] handles the conventional layout (items down rows, fields
// across columns) driven by a layout.Anchor and the column model derived
// from it. Before parsing it samples the scan window for the degenerate
// transposed layout, where items run across columns and fields down rows,
// and switches to the transposed reader when detected.
//
// The [LineParser] is the last resort used when anchor detection fails or
// the anchor path yields nothing: it works on flattened row text with regex
// heuristics, merging up to three OCR lines to reassemble items whose
// descriptions wrapped.
package table
