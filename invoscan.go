// Package invoscan turns a positioned OCR token stream from an Indian GST
// invoice into a structured record: seller and buyer, invoice details, line
// items, and reconciled totals.
//
// Basic usage:
//
//	inv, err := invoscan.Parse(tokens)
//	if err != nil {
//	    // handle error
//	}
//	for _, w := range inv.Warnings {
//	    log.Println("warning:", w.Code, w.Field)
//	}
//
// With options:
//
//	inv, err := invoscan.Parse(tokens,
//	    invoscan.WithRowTolerance(18), // low-resolution scan
//	    invoscan.WithReconcileTolerance(2))
//
// A reusable Engine avoids recompiling configuration per document:
//
//	e := invoscan.NewEngine(invoscan.WithPatterns(pats))
//	inv, err := e.Parse(tokens)
//
// The lower-level layout, table, header, and totals packages are also
// available for callers that want individual pipeline stages.
package invoscan

import (
	"errors"

	"github.com/invoscan/invoscan/header"
	"github.com/invoscan/invoscan/layout"
	"github.com/invoscan/invoscan/model"
	"github.com/invoscan/invoscan/patterns"
	"github.com/invoscan/invoscan/table"
	"github.com/invoscan/invoscan/totals"
)

// ErrEmptyDocument is returned when the token stream carries no usable text.
var ErrEmptyDocument = errors.New("invoscan: no usable OCR tokens")

// EngineConfig holds tuning knobs for the whole pipeline. Zero values fall
// back to the per-stage defaults.
type EngineConfig struct {
	// Patterns supplies the regex vocabularies shared by every stage. Nil
	// means patterns.Default().
	Patterns *patterns.Set

	// RowTolerance is the vertical distance (pixels) within which tokens
	// group into one row (default: 14).
	RowTolerance float64

	// PageBreakJump is the upward centerY jump that signals a page boundary
	// when tokens carry no page hints (default: 1000).
	PageBreakJump float64

	// ColumnMinWidth is the narrowest column the column model will keep
	// before merging it leftward (default: 60).
	ColumnMinWidth float64

	// ReconcileTolerance is the allowed gap between printed and computed
	// gross totals (default: 1.0).
	ReconcileTolerance float64

	// DefaultGSTRatePct is assumed for items with no printed rate
	// (default: 18).
	DefaultGSTRatePct float64
}

// DefaultEngineConfig returns sensible default configuration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		RowTolerance:       14.0,
		PageBreakJump:      1000.0,
		ColumnMinWidth:     60.0,
		ReconcileTolerance: 1.0,
		DefaultGSTRatePct:  18.0,
	}
}

// Engine runs the full extraction pipeline. It is stateless across calls and
// safe for concurrent use.
type Engine struct {
	tokenizer *layout.Tokenizer
	grouper   *layout.RowGrouper
	anchors   *layout.AnchorDetector
	parser    *table.Parser
	lines     *table.LineParser
	header    *header.Extractor
	extractor *totals.Extractor
	reconcile *totals.Reconciler
	post      *totals.Postprocessor
}

// Option adjusts one engine setting on top of the defaults.
type Option func(*EngineConfig)

// WithPatterns replaces the regex vocabularies, e.g. for a locale variant.
func WithPatterns(p *patterns.Set) Option {
	return func(c *EngineConfig) { c.Patterns = p }
}

// WithRowTolerance sets the row-grouping vertical tolerance in pixels.
func WithRowTolerance(px float64) Option {
	return func(c *EngineConfig) { c.RowTolerance = px }
}

// WithReconcileTolerance sets the allowed printed-vs-computed totals gap.
func WithReconcileTolerance(v float64) Option {
	return func(c *EngineConfig) { c.ReconcileTolerance = v }
}

// WithDefaultGSTRate sets the GST percentage assumed for unrated items.
func WithDefaultGSTRate(pct float64) Option {
	return func(c *EngineConfig) { c.DefaultGSTRatePct = pct }
}

// NewEngine creates an engine with default configuration, adjusted by any
// options given.
func NewEngine(opts ...Option) *Engine {
	config := DefaultEngineConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return NewEngineWithConfig(config)
}

// NewEngineWithConfig creates an engine with custom configuration.
func NewEngineWithConfig(config EngineConfig) *Engine {
	if config.Patterns == nil {
		config.Patterns = patterns.Default()
	}

	tableConfig := table.DefaultConfig()
	tableConfig.Patterns = config.Patterns
	if config.ColumnMinWidth > 0 {
		tableConfig.Columns.MinWidth = config.ColumnMinWidth
	}

	headerConfig := header.DefaultConfig()
	headerConfig.Patterns = config.Patterns

	totalsConfig := totals.DefaultConfig()
	totalsConfig.Patterns = config.Patterns

	reconcileConfig := totals.DefaultReconcileConfig()
	if config.ReconcileTolerance > 0 {
		reconcileConfig.Tolerance = config.ReconcileTolerance
	}
	if config.DefaultGSTRatePct > 0 {
		reconcileConfig.DefaultGSTRatePct = config.DefaultGSTRatePct
	}

	postConfig := totals.DefaultPostprocessConfig()
	postConfig.Patterns = config.Patterns

	return &Engine{
		tokenizer: layout.NewTokenizerWithConfig(layout.TokenizerConfig{
			PageBreakJump: config.PageBreakJump,
		}),
		grouper: layout.NewRowGrouperWithConfig(layout.RowConfig{
			YTolerance: config.RowTolerance,
		}),
		anchors: layout.NewAnchorDetectorWithConfig(layout.AnchorConfig{
			Patterns: config.Patterns,
		}),
		parser:    table.NewParserWithConfig(tableConfig),
		lines:     table.NewLineParser(config.Patterns),
		header:    header.NewExtractorWithConfig(headerConfig),
		extractor: totals.NewExtractorWithConfig(totalsConfig),
		reconcile: totals.NewReconcilerWithConfig(reconcileConfig),
		post:      totals.NewPostprocessorWithConfig(postConfig),
	}
}

// Parse runs a default engine, adjusted by any options given, over raw OCR
// tokens.
func Parse(raw []model.RawToken, opts ...Option) (*model.Invoice, error) {
	return NewEngine(opts...).Parse(raw)
}

// Parse converts raw OCR tokens into a structured invoice. It returns
// ErrEmptyDocument when normalization leaves no tokens; every other outcome
// is a best-effort invoice whose Warnings list what could not be extracted
// or reconciled.
func (e *Engine) Parse(raw []model.RawToken) (*model.Invoice, error) {
	tokens := e.tokenizer.Normalize(raw)
	if len(tokens) == 0 {
		return nil, ErrEmptyDocument
	}
	rows := e.grouper.Group(tokens)

	// The header band ends where the first page's item table begins. When no
	// anchor is found the whole document is searched for header fields.
	bandEnd := len(rows)

	var items []model.LineItem
	for _, pg := range splitPages(rows) {
		anchor, ok := e.anchors.Detect(pg.rows)
		if !ok {
			// Continuation pages often repeat no header. Fall back to
			// line-wise parsing for this page alone.
			items = append(items, e.lines.Parse(pg.rows)...)
			continue
		}
		if pg.start == 0 && anchor.BoundsRow < bandEnd {
			bandEnd = anchor.BoundsRow
		}
		items = append(items, e.parser.Parse(pg.rows, anchor)...)
	}
	if len(items) == 0 {
		items = e.lines.Parse(rows)
	}

	fields := e.header.Extract(rows, bandEnd)
	printed := e.extractor.Extract(rows)

	items = e.post.CleanItems(items)

	sellerState := ""
	if fields.Seller != nil {
		sellerState = fields.Seller.StateCode
	}
	record := e.reconcile.Reconcile(items, printed, sellerState, fields.Details.PlaceOfSupply)

	inv := &model.Invoice{
		Seller:            fields.Seller,
		Buyer:             fields.Buyer,
		Details:           fields.Details,
		Lines:             items,
		Totals:            record,
		DocumentType:      fields.DocumentType,
		ComputerGenerated: fields.ComputerGenerated,
	}
	inv.OCRConfidence = totals.AverageConfidence(inv)
	inv.Warnings = e.post.Warnings(inv)
	return inv, nil
}

// page is a contiguous run of rows sharing one page number. start is the
// run's offset into the full row slice.
type page struct {
	start int
	rows  []layout.Row
}

func splitPages(rows []layout.Row) []page {
	var pages []page
	start := 0
	for i := 1; i <= len(rows); i++ {
		if i == len(rows) || rows[i].Page != rows[start].Page {
			pages = append(pages, page{start: start, rows: rows[start:i]})
			start = i
		}
	}
	return pages
}
