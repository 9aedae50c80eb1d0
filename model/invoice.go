package model

import "math"

// Warning codes emitted by the engine. Quality-relay codes produced by
// upstream image analysis (LOW_FOCUS, HIGH_GLARE) pass through untouched.
const (
	WarnLowConfField  = "LOW_CONF_FIELD"
	WarnNotReconciled = "TOTALS_NOT_RECONCILED"
)

// Warning flags a field or document condition the caller should verify.
type Warning struct {
	Code  string  `json:"code"`
	Field string  `json:"field,omitempty"`
	Score float64 `json:"score,omitempty"`
}

// Quantity is a parsed quantity with an optional unit of measure.
type Quantity struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

// ComputedTotals holds per-line (or summed) totals derived from quantity,
// unit price and GST rate, each rounded to two decimals.
type ComputedTotals struct {
	Net   float64 `json:"net"`
	Tax   float64 `json:"tax"`
	Gross float64 `json:"gross"`
}

// LineItem is one row of the invoice item table. Optional fields are nil
// when the document did not yield them. A line item is retained only if it
// carries at least one of taxable value, unit price, or HSN code.
type LineItem struct {
	// RowID is a page-qualified identifier for the source row, e.g. "p0-r12".
	RowID string `json:"rowId"`

	Description  string    `json:"description,omitempty"`
	HSN          string    `json:"hsn,omitempty"`
	Quantity     *Quantity `json:"quantity,omitempty"`
	UnitPrice    *float64  `json:"unitPrice,omitempty"`
	TaxableValue *float64  `json:"taxableValue,omitempty"`
	GSTRatePct   *float64  `json:"gstRatePct,omitempty"`

	// Confidence is the mean OCR confidence of the tokens the item was
	// assembled from.
	Confidence float64 `json:"confidence"`

	// Computed holds net/tax/gross derived from the fields above.
	Computed ComputedTotals `json:"computed"`
}

// HasEvidence reports whether the item satisfies the retention rule:
// at least one of taxable value, unit price, or HSN must be present.
func (li *LineItem) HasEvidence() bool {
	return li.TaxableValue != nil || li.UnitPrice != nil || li.HSN != ""
}

// Compute fills in the derived net/tax/gross for the line. The GST rate is
// taken from the item, falling back to defaultRatePct when absent. When the
// taxable value is printed on the document it takes precedence over
// quantity × unit price for the net.
func (li *LineItem) Compute(defaultRatePct float64) {
	var net float64
	switch {
	case li.TaxableValue != nil:
		net = *li.TaxableValue
	case li.Quantity != nil && li.UnitPrice != nil:
		net = li.Quantity.Value * *li.UnitPrice
	}
	rate := defaultRatePct
	if li.GSTRatePct != nil {
		rate = *li.GSTRatePct
	}
	net = Round2(net)
	tax := Round2(net * rate / 100)
	li.Computed = ComputedTotals{
		Net:   net,
		Tax:   tax,
		Gross: Round2(net + tax),
	}
}

// EntityInfo describes the seller or buyer identified on the document.
type EntityInfo struct {
	Name       string  `json:"name,omitempty"`
	GSTIN      string  `json:"gstin,omitempty"`
	Address    string  `json:"address,omitempty"`
	State      string  `json:"state,omitempty"`
	StateCode  string  `json:"stateCode,omitempty"`
	Confidence float64 `json:"confidence"`

	// Source is the bounding quad of the token the name (or failing that,
	// the GSTIN) was read from.
	Source *Quad `json:"sourceBoundingBox,omitempty"`
}

// InvoiceDetails holds document-level header fields.
type InvoiceDetails struct {
	Number           string  `json:"number,omitempty"`
	NumberConfidence float64 `json:"numberConfidence,omitempty"`

	// Date is ISO-8601 (YYYY-MM-DD) when the printed date parsed; DateRaw
	// always retains the string as printed.
	Date    string `json:"date,omitempty"`
	DateRaw string `json:"dateRaw,omitempty"`

	PlaceOfSupply string `json:"placeOfSupply,omitempty"`
	ReferenceNo   string `json:"referenceNo,omitempty"`
	IRN           string `json:"irn,omitempty"`
	AckNo         string `json:"ackNo,omitempty"`
	AckDate       string `json:"ackDate,omitempty"`
}

// TotalsRecord reconciles totals computed from line items against totals
// printed on the document.
type TotalsRecord struct {
	Net   float64 `json:"net"`
	Tax   float64 `json:"tax"`
	Gross float64 `json:"gross"`
	CGST  float64 `json:"cgst"`
	SGST  float64 `json:"sgst"`
	IGST  float64 `json:"igst"`

	// RoundOffDelta is the signed difference between the printed gross and
	// the gross computed from line items.
	RoundOffDelta float64 `json:"roundOffDelta"`

	// Reconciled is true iff |printed gross − computed gross| is within the
	// engine's reconciliation tolerance.
	Reconciled bool `json:"reconciled"`

	// TotalQuantity and AmountInWords are captured verbatim when printed.
	TotalQuantity string `json:"totalQuantity,omitempty"`
	AmountInWords string `json:"amountInWords,omitempty"`
}

// Invoice is the structured result of parsing one document.
type Invoice struct {
	Seller  *EntityInfo    `json:"seller,omitempty"`
	Buyer   *EntityInfo    `json:"buyer,omitempty"`
	Details InvoiceDetails `json:"invoice"`
	Lines   []LineItem     `json:"lines"`
	Totals  TotalsRecord   `json:"totals"`

	// DocumentType is "Tax Invoice" when the document says so, else "Invoice".
	DocumentType string `json:"documentType"`

	// ComputerGenerated is set when the document declares itself
	// computer-generated.
	ComputerGenerated bool `json:"isComputerGenerated"`

	// OCRConfidence is the mean confidence over tokens that contributed to
	// extracted fields.
	OCRConfidence float64 `json:"ocrConfidence"`

	Warnings []Warning `json:"warnings"`
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
