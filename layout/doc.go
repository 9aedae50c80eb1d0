// Package layout provides the geometric analysis stages of the extraction
// pipeline: token normalization, row grouping, table-anchor detection, and
// column inference.
//
// # Pipeline
//
// Raw OCR tokens pass through the [Tokenizer], which drops empty or
// geometry-less tokens, normalizes text, infers page breaks, and sorts by
// (page, centerY, leftX). The [RowGrouper] then clusters tokens into [Row]
// values by vertical proximity:
//
//	tokens := layout.NewTokenizer().Normalize(raw)
//	rows := layout.NewRowGrouper().Group(tokens)
//
// The [AnchorDetector] searches the rows for the one that anchors the item
// table, trying a ladder of strategies from printed header keywords down to
// bare data-row heuristics. The anchor row's horizontal token positions feed
// the [ColumnModel], which assigns any row's tokens to columns.
//
// # Tuning
//
// Each stage takes a Config struct with a DefaultXxxConfig constructor. The
// row tolerance in particular must be re-tuned for low-resolution or skewed
// captures; it is a parameter, not a constant.
package layout
