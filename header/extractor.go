// Package header extracts document-level invoice fields: seller and buyer
// identity, invoice number and date, place of supply and the e-invoice
// acknowledgement block. Seller and buyer blocks are separated spatially, by
// density clustering of token centers in the rows above the item table,
// rather than by label matching.
package header

import (
	"regexp"
	"strings"
	"time"

	"github.com/invoscan/invoscan/layout"
	"github.com/invoscan/invoscan/model"
	"github.com/invoscan/invoscan/patterns"
)

// Config holds configuration for header extraction.
type Config struct {
	// Patterns supplies the regex anchors. Nil means patterns.Default().
	Patterns *patterns.Set

	// ClusterEps is the neighbor radius in pixels for entity clustering
	// (default: 200).
	ClusterEps float64

	// ClusterMinPoints is the density threshold for entity clustering
	// (default: 2).
	ClusterMinPoints int

	// MaxAddressTokens caps how many tokens after the name feed an entity's
	// address (default: 6).
	MaxAddressTokens int
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		ClusterEps:       200,
		ClusterMinPoints: 2,
		MaxAddressTokens: 6,
	}
}

// Fields is the extracted document header.
type Fields struct {
	Seller  *model.EntityInfo
	Buyer   *model.EntityInfo
	Details model.InvoiceDetails

	DocumentType      string
	ComputerGenerated bool
}

// Extractor reads header fields from grouped rows.
type Extractor struct {
	config Config
	pats   *patterns.Set

	hasDigit *regexp.Regexp

	// Candidate invoice numbers that are really stray label words.
	stopWords map[string]bool
}

// NewExtractor creates a header extractor with default configuration.
func NewExtractor() *Extractor {
	return NewExtractorWithConfig(DefaultConfig())
}

// NewExtractorWithConfig creates a header extractor with custom configuration.
func NewExtractorWithConfig(config Config) *Extractor {
	if config.Patterns == nil {
		config.Patterns = patterns.Default()
	}
	if config.ClusterEps <= 0 {
		config.ClusterEps = 200
	}
	if config.ClusterMinPoints <= 0 {
		config.ClusterMinPoints = 2
	}
	if config.MaxAddressTokens <= 0 {
		config.MaxAddressTokens = 6
	}
	return &Extractor{
		config:   config,
		pats:     config.Patterns,
		hasDigit: regexp.MustCompile(`\d`),
		stopWords: map[string]bool{
			"dated": true, "date": true, "no": true, "number": true, "delivery": true,
		},
	}
}

// Extract reads the document header from rows. bandEnd bounds the rows
// searched for the seller/buyer blocks, normally the table anchor row;
// values out of range mean the whole document.
func (e *Extractor) Extract(rows []layout.Row, bandEnd int) Fields {
	if bandEnd <= 0 || bandEnd > len(rows) {
		bandEnd = len(rows)
	}

	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = r.Text()
	}
	fullText := strings.Join(lines, "\n")
	lower := strings.ToLower(fullText)

	f := Fields{
		Details:           e.extractDetails(fullText, rows),
		DocumentType:      "Invoice",
		ComputerGenerated: strings.Contains(lower, "computer generated"),
	}
	if strings.Contains(lower, "tax invoice") {
		f.DocumentType = "Tax Invoice"
	}

	f.Seller, f.Buyer = e.extractEntities(rows, bandEnd, fullText)
	return f
}

func (e *Extractor) extractDetails(fullText string, rows []layout.Row) model.InvoiceDetails {
	var d model.InvoiceDetails

	for _, m := range e.pats.InvoiceNumber.FindAllStringSubmatch(fullText, -1) {
		candidate := strings.TrimSpace(m[1])
		if len(candidate) <= 2 || !e.hasDigit.MatchString(candidate) {
			continue
		}
		if e.stopWords[strings.ToLower(candidate)] {
			continue
		}
		d.Number = candidate
		d.NumberConfidence = tokenConfidence(rows, candidate, 0.7)
		break
	}

	if m := e.pats.InvoiceDate.FindStringSubmatch(fullText); m != nil {
		d.DateRaw = strings.TrimSpace(m[1])
	} else if m := e.pats.Date.FindStringSubmatch(fullText); m != nil {
		d.DateRaw = strings.TrimSpace(m[1])
	}
	if d.DateRaw != "" {
		d.Date = e.normalizeDate(d.DateRaw)
	}

	if m := e.pats.PlaceOfSupply.FindStringSubmatch(fullText); m != nil {
		d.PlaceOfSupply = strings.TrimSpace(m[1])
	}
	if m := e.pats.ReferenceNo.FindStringSubmatch(fullText); m != nil {
		d.ReferenceNo = m[1]
	}
	if m := e.pats.IRN.FindStringSubmatch(fullText); m != nil {
		d.IRN = m[1]
	}
	if m := e.pats.AckNo.FindStringSubmatch(fullText); m != nil {
		d.AckNo = m[1]
	}
	if m := e.pats.AckDate.FindStringSubmatch(fullText); m != nil {
		d.AckDate = strings.TrimSpace(m[1])
	}
	return d
}

// normalizeDate converts a printed date to ISO-8601, returning "" when no
// known layout parses it. The raw string stays on the record either way.
func (e *Extractor) normalizeDate(raw string) string {
	for _, layout := range e.pats.DateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// extractEntities separates the seller and buyer blocks by density
// clustering over token centers in rows[:bandEnd]. The first cluster in
// reading order is the seller, the second the buyer. GSTINs are assigned
// positionally over the whole document: first found to the seller, second
// to the buyer.
func (e *Extractor) extractEntities(rows []layout.Row, bandEnd int, fullText string) (*model.EntityInfo, *model.EntityInfo) {
	var band []model.Token
	for _, r := range rows[:bandEnd] {
		band = append(band, r.Tokens...)
	}

	labels := clusterLabels(band, e.config.ClusterEps, e.config.ClusterMinPoints)

	seller := e.entityFromCluster(band, labels, 0)
	buyer := e.entityFromCluster(band, labels, 1)

	gstins := e.findGSTINs(rows)
	if len(gstins) > 0 {
		if seller == nil {
			seller = &model.EntityInfo{Confidence: gstins[0].conf, Source: gstins[0].quad}
		}
		seller.GSTIN = gstins[0].value
	}
	if len(gstins) > 1 {
		if buyer == nil {
			buyer = &model.EntityInfo{Confidence: gstins[1].conf, Source: gstins[1].quad}
		}
		buyer.GSTIN = gstins[1].value
	}

	states := e.pats.StateNameCode.FindAllStringSubmatch(fullText, -1)
	if len(states) > 0 && seller != nil {
		seller.State = strings.TrimSpace(states[0][1])
		seller.StateCode = states[0][2]
	}
	if len(states) > 1 && buyer != nil {
		buyer.State = strings.TrimSpace(states[1][1])
		buyer.StateCode = states[1][2]
	}
	return seller, buyer
}

// entityFromCluster builds an entity from the tokens carrying the given
// cluster label: the first non-GSTIN text is the name, the following tokens
// up to the next GSTIN feed the address.
func (e *Extractor) entityFromCluster(band []model.Token, labels []int, label int) *model.EntityInfo {
	var entity *model.EntityInfo
	var address []string

	for i, t := range band {
		if labels[i] != label {
			continue
		}
		text := strings.TrimSpace(t.Text)
		if text == "" {
			continue
		}
		if e.pats.GSTIN.MatchString(strings.ToUpper(text)) {
			if entity != nil {
				break
			}
			continue
		}
		if entity == nil {
			quad := t.Quad
			entity = &model.EntityInfo{
				Name:       text,
				Confidence: t.Confidence,
				Source:     &quad,
			}
			continue
		}
		if len(address) < e.config.MaxAddressTokens {
			address = append(address, text)
		}
	}
	if entity != nil {
		entity.Address = strings.Join(address, " ")
	}
	return entity
}

type gstinHit struct {
	value string
	conf  float64
	quad  *model.Quad
}

func (e *Extractor) findGSTINs(rows []layout.Row) []gstinHit {
	var hits []gstinHit
	seen := map[string]bool{}
	for _, r := range rows {
		for _, t := range r.Tokens {
			v := e.pats.GSTIN.FindString(strings.ToUpper(t.Text))
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			quad := t.Quad
			hits = append(hits, gstinHit{value: v, conf: t.Confidence, quad: &quad})
		}
	}
	return hits
}

// tokenConfidence returns the confidence of the first token whose text
// contains value, or fallback when no token carries it (the value may have
// been assembled across tokens).
func tokenConfidence(rows []layout.Row, value string, fallback float64) float64 {
	upper := strings.ToUpper(value)
	for _, r := range rows {
		for _, t := range r.Tokens {
			if strings.Contains(strings.ToUpper(t.Text), upper) {
				return t.Confidence
			}
		}
	}
	return fallback
}
