package layout

import (
	"regexp"
	"strings"

	"github.com/invoscan/invoscan/patterns"
)

// AnchorStrategy identifies which detection strategy produced an anchor.
type AnchorStrategy int

const (
	AnchorNone AnchorStrategy = iota
	AnchorKeywordScore
	AnchorStrongKeyword
	AnchorLabelKeyword
	AnchorDataRow
	AnchorFailSoft
)

// String returns a string representation of the strategy.
func (s AnchorStrategy) String() string {
	switch s {
	case AnchorKeywordScore:
		return "keyword-score"
	case AnchorStrongKeyword:
		return "strong-keyword"
	case AnchorLabelKeyword:
		return "label-keyword"
	case AnchorDataRow:
		return "data-row"
	case AnchorFailSoft:
		return "fail-soft"
	default:
		return "none"
	}
}

// Anchor is the result of table-anchor detection. BoundsRow is the row whose
// horizontal token positions define the column geometry; ParseStart is the
// row the table parser resumes from. The two differ when a header label sits
// several rows above the first data row: column geometry comes from the data
// row, but parsing restarts right after the label so wrapped descriptions in
// between are not lost.
type Anchor struct {
	BoundsRow  int
	ParseStart int
	Strategy   AnchorStrategy
}

// AnchorConfig holds configuration for anchor detection.
type AnchorConfig struct {
	// MaxHeaderScan is how many rows from the top are considered for keyword
	// headers (default: 30).
	MaxHeaderScan int

	// ForwardScan is how far past a header label to look for the first data
	// row (default: 10).
	ForwardScan int

	// Patterns supplies the keyword vocabularies. Nil means patterns.Default().
	Patterns *patterns.Set
}

// DefaultAnchorConfig returns sensible default configuration.
func DefaultAnchorConfig() AnchorConfig {
	return AnchorConfig{
		MaxHeaderScan: 30,
		ForwardScan:   10,
	}
}

// AnchorDetector finds the row that anchors the item table. Printed headers
// are unreliable on scanned invoices (merged cells, missing labels, OCR
// drop-outs), so detection is a ladder of strategies tried in order, each
// trading a little precision for recall. The first strategy that matches
// wins.
type AnchorDetector struct {
	config  AnchorConfig
	pats    *patterns.Set
	numeric *regexp.Regexp
}

// NewAnchorDetector creates an anchor detector with default configuration.
func NewAnchorDetector() *AnchorDetector {
	return NewAnchorDetectorWithConfig(DefaultAnchorConfig())
}

// NewAnchorDetectorWithConfig creates an anchor detector with custom
// configuration.
func NewAnchorDetectorWithConfig(config AnchorConfig) *AnchorDetector {
	if config.Patterns == nil {
		config.Patterns = patterns.Default()
	}
	if config.MaxHeaderScan <= 0 {
		config.MaxHeaderScan = 30
	}
	if config.ForwardScan <= 0 {
		config.ForwardScan = 10
	}
	return &AnchorDetector{
		config: config,
		pats:   config.Patterns,
		// Numeric-looking tokens: decimal amounts or counts with a unit.
		numeric: regexp.MustCompile(`(?i)\d+\.\d{2}|\d+\s*(?:pcs|bag|kg|nos)`),
	}
}

// Detect runs the strategy ladder over rows. ok is false when no strategy
// fires, which sends the caller to the fallback line parser.
func (d *AnchorDetector) Detect(rows []Row) (Anchor, bool) {
	if a, ok := d.byKeywordScore(rows); ok {
		return a, true
	}
	if a, ok := d.byAnchorKeywords(rows, d.pats.StrongAnchorKeywords, AnchorStrongKeyword); ok {
		return a, true
	}
	if a, ok := d.byAnchorKeywords(rows, d.pats.LabelAnchorKeywords, AnchorLabelKeyword); ok {
		return a, true
	}
	if a, ok := d.byDataRow(rows); ok {
		return a, true
	}
	if a, ok := d.byFailSoft(rows); ok {
		return a, true
	}
	return Anchor{Strategy: AnchorNone}, false
}

// byKeywordScore scores each row one point per header keyword in its
// lowercase text. A score of 2 with at least 3 tokens is a header; parsing
// resumes on the next row.
func (d *AnchorDetector) byKeywordScore(rows []Row) (Anchor, bool) {
	limit := min(d.config.MaxHeaderScan, len(rows))
	for i := 0; i < limit; i++ {
		text := rows[i].LowerText()
		score := 0
		for _, kw := range d.pats.HeaderKeywords {
			if strings.Contains(text, kw) {
				score++
			}
		}
		if score >= 2 && len(rows[i].Tokens) >= 3 {
			return Anchor{BoundsRow: i, ParseStart: i + 1, Strategy: AnchorKeywordScore}, true
		}
	}
	return Anchor{}, false
}

// byAnchorKeywords finds a row containing one of the given keywords, then
// scans forward for the first real data row (2+ numeric-looking tokens, 3+
// tokens total). The data row supplies column geometry, but parsing resumes
// right after the keyword row so wrapped descriptions between label and data
// are kept.
func (d *AnchorDetector) byAnchorKeywords(rows []Row, keywords []string, strategy AnchorStrategy) (Anchor, bool) {
	limit := min(d.config.MaxHeaderScan+20, len(rows))
	for i := 0; i < limit; i++ {
		text := rows[i].LowerText()
		matched := false
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		end := min(i+d.config.ForwardScan, len(rows))
		for j := i + 1; j < end; j++ {
			numericCount := len(d.numeric.FindAllString(rows[j].Text(), -1))
			if numericCount >= 2 && len(rows[j].Tokens) >= 3 {
				return Anchor{BoundsRow: j, ParseStart: i + 1, Strategy: strategy}, true
			}
		}
		// No usable data row ahead; fall back to the keyword row itself.
		if len(rows[i].Tokens) >= 3 {
			return Anchor{BoundsRow: i, ParseStart: i + 1, Strategy: strategy}, true
		}
	}
	return Anchor{}, false
}

// byDataRow takes the first row past row 10 carrying 3+ two-decimal amounts
// and 3+ tokens: almost certainly an item row in a headerless table. The row
// anchors itself and parsing starts on it.
func (d *AnchorDetector) byDataRow(rows []Row) (Anchor, bool) {
	limit := min(d.config.MaxHeaderScan+20, len(rows))
	for i := 10; i < limit; i++ {
		amounts := d.pats.TwoDecimal.FindAllString(rows[i].Text(), -1)
		if len(amounts) >= 3 && len(rows[i].Tokens) >= 3 {
			return Anchor{BoundsRow: i, ParseStart: i, Strategy: AnchorDataRow}, true
		}
	}
	return Anchor{}, false
}

// byFailSoft takes the first row past row 8 with 4+ tokens. The weakest
// signal available; when even this misses, the caller uses the line parser.
func (d *AnchorDetector) byFailSoft(rows []Row) (Anchor, bool) {
	limit := min(d.config.MaxHeaderScan+20, len(rows))
	for i := 8; i < limit; i++ {
		if len(rows[i].Tokens) >= 4 {
			return Anchor{BoundsRow: i, ParseStart: i, Strategy: AnchorFailSoft}, true
		}
	}
	return Anchor{}, false
}
