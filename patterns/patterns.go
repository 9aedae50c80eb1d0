// Package patterns holds the keyword vocabularies and regular-expression
// anchors the extraction engine matches against. They are data, not code:
// locale or format variants (new unit names, new date layouts, translated
// table headers) are added by constructing a modified [Set], without touching
// the engine.
package patterns

import (
	"fmt"
	"regexp"
	"strings"
)

// Set is one complete pattern vocabulary. The zero value is not usable;
// start from Default and replace fields as needed.
type Set struct {
	// HeaderKeywords score candidate table-header rows: one point per
	// keyword found in the row's lowercase text.
	HeaderKeywords []string

	// StrongAnchorKeywords identify a header row even when the keyword score
	// is too low, e.g. a lone "Quantity" cell above the item table.
	StrongAnchorKeywords []string

	// LabelAnchorKeywords are weaker header labels tried after the strong
	// anchors.
	LabelAnchorKeywords []string

	// Units is the quantity unit vocabulary, lowercase.
	Units []string

	// DateLayouts are Go time layouts tried in order when normalizing a
	// printed date to ISO-8601.
	DateLayouts []string

	// TotalsMarker matches a row that terminates the item table.
	TotalsMarker *regexp.Regexp

	// Amount matches a two-decimal amount, with optional thousands
	// grouping.
	Amount *regexp.Regexp

	// Decimal matches any decimal number, the fallback when Amount
	// finds nothing.
	Decimal *regexp.Regexp

	// TwoDecimal matches a plain two-decimal number, used when counting
	// amount-bearing tokens in candidate data rows.
	TwoDecimal *regexp.Regexp

	// GSTIN matches the fixed 15-character GST identification number.
	GSTIN *regexp.Regexp

	// HSN matches a 4-8 digit HSN code.
	HSN *regexp.Regexp

	// GSTRate matches a GST percentage like "(5.0%)" or "@18%".
	GSTRate *regexp.Regexp

	// Quantity matches "<count> <unit>" with the unit optional.
	Quantity *regexp.Regexp

	// Date matches the printed date formats the engine recognizes.
	Date *regexp.Regexp

	// InvoiceDate matches a date preceded by a "Dated"/"Date"/"Dt." label.
	InvoiceDate *regexp.Regexp

	// AckDate matches the e-invoice acknowledgement date.
	AckDate *regexp.Regexp

	// InvoiceNumber, PlaceOfSupply, ReferenceNo, IRN, AckNo anchor the
	// corresponding header fields.
	InvoiceNumber *regexp.Regexp
	PlaceOfSupply *regexp.Regexp
	ReferenceNo   *regexp.Regexp
	IRN           *regexp.Regexp
	AckNo         *regexp.Regexp

	// StateNameCode matches "State Name : Bihar, Code : 10".
	StateNameCode *regexp.Regexp

	// SubTotal, CGST, SGST, IGST, RoundOff, GrandTotal, TotalQty,
	// AmountInWords anchor the totals block at the bottom of the page.
	SubTotal      *regexp.Regexp
	CGST          *regexp.Regexp
	SGST          *regexp.Regexp
	IGST          *regexp.Regexp
	RoundOff      *regexp.Regexp
	GrandTotal    *regexp.Regexp
	TaxableValue  *regexp.Regexp
	TotalQty      *regexp.Regexp
	AmountInWords *regexp.Regexp

	// DescriptionNoise strips header/footer bleed from item descriptions.
	DescriptionNoise *regexp.Regexp
}

// Default returns the pattern vocabulary for Indian GST tax invoices in
// English, matching the formats produced by common billing software.
func Default() *Set {
	units := []string{"pcs", "bag", "kg", "nos", "pieces", "units", "unit", "box", "set", "ltr", "mtr"}
	datePat := `([0-9]{1,2}[/\- ][0-9]{1,2}[/\- ][0-9]{2,4}|[0-9]{1,2}[\- ](?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*[\- ]\d{2,4}|(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{1,2},?\s+\d{4})`
	return &Set{
		HeaderKeywords: []string{
			"description", "hsn", "quantity", "qty", "rate", "amount", "unit price", "taxable",
		},
		StrongAnchorKeywords: []string{"quantity", "hsn/sac", "hsn code"},
		LabelAnchorKeywords:  []string{"description of goods", "item name"},
		Units:                units,
		DateLayouts: []string{
			"2/1/2006", "2-1-2006", "2/1/06", "2-1-06",
			"2-Jan-2006", "2-Jan-06", "2 Jan 2006", "2 January 2006",
			"Jan 2, 2006", "January 2, 2006", "2006-01-02",
		},
		TotalsMarker: regexp.MustCompile(`(?i)\b(total|sub\s*total|amount\s+chargeable|round\s*off|tax\s+amount|invoice\s+amount\s+in\s+words)\b`),
		Amount:       regexp.MustCompile(`\b[0-9]+(?:,[0-9]{3})*\.[0-9]{2}\b`),
		Decimal:      regexp.MustCompile(`\d+\.\d+`),
		TwoDecimal:   regexp.MustCompile(`\d+\.\d{2}`),
		GSTIN:        regexp.MustCompile(`\b\d{2}[A-Z]{5}\d{4}[A-Z][1-9A-Z]Z[0-9A-Z]\b`),
		HSN:          regexp.MustCompile(`\b(\d{4,8})\b`),
		GSTRate:      regexp.MustCompile(`@?\s*\(?([0-9]{1,2}(?:\.[0-9])?)\s*%\)?`),
		Quantity: regexp.MustCompile(
			fmt.Sprintf(`(?i)\b(\d{1,6})\s*(%s)?\b`, strings.Join(units, "|"))),
		Date:        regexp.MustCompile(`(?i)` + datePat),
		InvoiceDate: regexp.MustCompile(`(?i)(?:dated|date|dt\.?)\s*[:.\-]?\s*` + datePat),
		AckDate:     regexp.MustCompile(`(?i)ack\s*date\s*[:.\-]?\s*` + datePat),
		InvoiceNumber: regexp.MustCompile(`(?i)\b(?:inv|invoice)\s*(?:no\.?|number|#)?\s*[:\-]?\s*([A-Za-z0-9][A-Za-z0-9/\-]+)`),
		PlaceOfSupply: regexp.MustCompile(`(?i)place\s+of\s+supply\s*[:.\-]?\s*([^\n\r]+)`),
		ReferenceNo:   regexp.MustCompile(`(?i)reference\s*no\.?\s*[:.\-]?\s*([A-Za-z0-9/\-]+)`),
		IRN:           regexp.MustCompile(`(?i)\bIRN\s*[:.\-]?\s*([a-f0-9\-]{10,})`),
		AckNo:         regexp.MustCompile(`(?i)\back(?:nowledge)?(?:ment)?\s*(?:no\.?)?\s*[:.\-]?\s*([0-9]+)`),
		StateNameCode: regexp.MustCompile(`(?i)state\s+name\s*[:\-]?\s*([A-Za-z ]+?),?\s*code\s*[:\-]?\s*([0-9]{2})`),
		SubTotal:      regexp.MustCompile(`(?i)sub\s*total\s*[:\s]*₹?\s*([0-9.,\-]+)`),
		CGST:          regexp.MustCompile(`(?i)CGST@?[\d.]*%?\s*[:\s]*₹?\s*([0-9.,]+)`),
		SGST:          regexp.MustCompile(`(?i)SGST@?[\d.]*%?\s*[:\s]*₹?\s*([0-9.,]+)`),
		IGST:          regexp.MustCompile(`(?i)IGST@?[\d.]*%?\s*[:\s]*₹?\s*([0-9.,]+)`),
		RoundOff:      regexp.MustCompile(`(?i)round\s*off\s*[:\s\-]*₹?\s*(-?[0-9.]+)`),
		GrandTotal:    regexp.MustCompile(`(?i)\b(sub\s+)?total\s*[:\s]*₹?\s*([0-9][0-9.,]*)`),
		TaxableValue:  regexp.MustCompile(`(?i)taxable\s*value\s*[:\s]*₹?\s*([0-9.,]+)`),
		TotalQty:      regexp.MustCompile(`(?i)total\s+([0-9]+\s*(?:pcs|bag|kg|nos)?)\b`),
		AmountInWords: regexp.MustCompile(`(?i)(?:amount\s+chargeable\s*\(in\s+words\)|invoice\s+amount\s+in\s+words)[:\s\-]*(.+)`),
		DescriptionNoise: regexp.MustCompile(`(?i)\b(HSN/SAC|Invoice\s+No\.?|Tax\s+Invoice|This\s+is\s+a\s+Computer\s+Generated\s+Invoice|continued\s+to\s+page\s+number|E\.\s*&\s*O\.E|GSTIN|Amount\s+Chargeable)\b.*`),
	}
}

// HasUnit reports whether unit (any case) is in the vocabulary.
func (s *Set) HasUnit(unit string) bool {
	u := strings.ToLower(unit)
	for _, known := range s.Units {
		if u == known {
			return true
		}
	}
	return false
}
