package totals

import (
	"math"
	"testing"

	"github.com/invoscan/invoscan/layout"
	"github.com/invoscan/invoscan/model"
)

func textRow(id string, y float64, text string) layout.Row {
	return layout.Row{ID: id, Tokens: []model.Token{{
		Text:       text,
		Confidence: 1.0,
		Quad:       model.QuadFromRect(10, y-10, 400, 20),
	}}}
}

func fptr(v float64) *float64 { return &v }

func gypsumItem() model.LineItem {
	return model.LineItem{
		RowID:        "p0-r1",
		Description:  "NATURAL GYPSUM CALCINED PLASTER",
		HSN:          "2520",
		Quantity:     &model.Quantity{Value: 149, Unit: "BAG"},
		UnitPrice:    fptr(263.00),
		TaxableValue: fptr(39187.00),
		GSTRatePct:   fptr(5.0),
		Confidence:   0.95,
	}
}

func TestExtractor_TotalsBlock(t *testing.T) {
	rows := []layout.Row{
		textRow("p0-r10", 800, "Sub Total : ₹39,187.00"),
		textRow("p0-r11", 830, "CGST@2.5% : 979.68"),
		textRow("p0-r12", 860, "SGST@2.5% : 979.68"),
		textRow("p0-r13", 890, "Round Off : 0.64"),
		textRow("p0-r14", 920, "Total : ₹41,146.00"),
		textRow("p0-r15", 950, "Total 149 Bag"),
		textRow("p0-r16", 980, "Amount Chargeable (in words) : INR Forty One Thousand One Hundred Forty Six Only"),
	}

	p := NewExtractor().Extract(rows)

	if p.SubTotal == nil || *p.SubTotal != 39187.00 {
		t.Errorf("SubTotal = %v, want 39187.00", p.SubTotal)
	}
	if p.CGST == nil || *p.CGST != 979.68 {
		t.Errorf("CGST = %v, want 979.68", p.CGST)
	}
	if p.SGST == nil || *p.SGST != 979.68 {
		t.Errorf("SGST = %v, want 979.68", p.SGST)
	}
	if p.RoundOff != 0.64 {
		t.Errorf("RoundOff = %v, want 0.64", p.RoundOff)
	}
	if p.GrandTotal == nil || *p.GrandTotal != 41146.00 {
		t.Errorf("GrandTotal = %v, want 41146.00 (sub total must not win)", p.GrandTotal)
	}
	if p.TotalQuantity != "149 Bag" {
		t.Errorf("TotalQuantity = %q, want %q", p.TotalQuantity, "149 Bag")
	}
	if p.AmountInWords != "INR Forty One Thousand One Hundred Forty Six Only" {
		t.Errorf("AmountInWords = %q", p.AmountInWords)
	}
}

func TestExtractor_SubTotalAloneIsNotGrandTotal(t *testing.T) {
	rows := []layout.Row{
		textRow("p0-r0", 800, "Sub Total : 1200.00"),
	}

	p := NewExtractor().Extract(rows)

	if p.GrandTotal != nil {
		t.Errorf("GrandTotal = %v, want nil", p.GrandTotal)
	}
	if p.SubTotal == nil || *p.SubTotal != 1200.00 {
		t.Errorf("SubTotal = %v, want 1200.00", p.SubTotal)
	}
}

func TestSummarize(t *testing.T) {
	items := []model.LineItem{gypsumItem()}

	sum := Summarize(items, 18)

	if sum.Net != 39187.00 {
		t.Errorf("Net = %v, want 39187.00", sum.Net)
	}
	if sum.Tax != 1959.35 {
		t.Errorf("Tax = %v, want 1959.35", sum.Tax)
	}
	if sum.Gross != 41146.35 {
		t.Errorf("Gross = %v, want 41146.35", sum.Gross)
	}
	if items[0].Computed.Gross != 41146.35 {
		t.Errorf("item computed gross = %v, want 41146.35", items[0].Computed.Gross)
	}
}

func TestReconciler_PrintedTotalsWin(t *testing.T) {
	items := []model.LineItem{gypsumItem()}
	printed := Printed{
		SubTotal:   fptr(39187.00),
		CGST:       fptr(979.68),
		SGST:       fptr(979.68),
		GrandTotal: fptr(41146.00),
	}

	rec := NewReconciler().Reconcile(items, printed, "10", "Bihar")

	if rec.Net != 39187.00 {
		t.Errorf("Net = %v, want 39187.00", rec.Net)
	}
	if rec.CGST != 979.68 || rec.SGST != 979.68 {
		t.Errorf("CGST/SGST = %v/%v, want 979.68 each", rec.CGST, rec.SGST)
	}
	if rec.Tax != 1959.36 {
		t.Errorf("Tax = %v, want 1959.36", rec.Tax)
	}
	if rec.Gross != 41146.00 {
		t.Errorf("Gross = %v, want 41146.00", rec.Gross)
	}
	if rec.RoundOffDelta != -0.35 {
		t.Errorf("RoundOffDelta = %v, want -0.35", rec.RoundOffDelta)
	}
	if !rec.Reconciled {
		t.Error("expected reconciled within tolerance 1.0")
	}
}

func TestReconciler_TaxSplit(t *testing.T) {
	item := model.LineItem{
		RowID:        "p0-r1",
		TaxableValue: fptr(40000.00),
		GSTRatePct:   fptr(5.0),
	}

	intra := NewReconciler().Reconcile([]model.LineItem{item}, Printed{}, "10", "Bihar")
	if intra.CGST != 1000.00 || intra.SGST != 1000.00 || intra.IGST != 0 {
		t.Errorf("intra-state split = %v/%v/%v, want 1000/1000/0", intra.CGST, intra.SGST, intra.IGST)
	}

	inter := NewReconciler().Reconcile([]model.LineItem{item}, Printed{}, "10", "20-Jharkhand")
	if inter.IGST != 2000.00 || inter.CGST != 0 || inter.SGST != 0 {
		t.Errorf("inter-state split = %v/%v/%v, want 0/0/2000", inter.CGST, inter.SGST, inter.IGST)
	}
}

func TestReconciler_MismatchBeyondTolerance(t *testing.T) {
	item := model.LineItem{TaxableValue: fptr(40000.00), GSTRatePct: fptr(5.0)}
	printed := Printed{GrandTotal: fptr(45000.00)}

	rec := NewReconciler().Reconcile([]model.LineItem{item}, printed, "", "")

	if rec.Reconciled {
		t.Error("expected reconciliation failure")
	}
	if math.Abs(rec.RoundOffDelta-3000.00) > 0.001 {
		t.Errorf("RoundOffDelta = %v, want 3000.00", rec.RoundOffDelta)
	}
}

func TestReconciler_ImplausiblePrintedTotal(t *testing.T) {
	// "17" misread from "17 PCS" must not replace a substantial computed
	// gross.
	item := model.LineItem{TaxableValue: fptr(40000.00), GSTRatePct: fptr(5.0)}
	printed := Printed{GrandTotal: fptr(17.00)}

	rec := NewReconciler().Reconcile([]model.LineItem{item}, printed, "", "")

	if rec.Gross != 42000.00 {
		t.Errorf("Gross = %v, want computed 42000.00", rec.Gross)
	}
	if !rec.Reconciled {
		t.Error("expected reconciled when the printed total is discarded")
	}
}

func TestReconciler_TotalQuantityFallback(t *testing.T) {
	items := []model.LineItem{
		{TaxableValue: fptr(100.00), Quantity: &model.Quantity{Value: 3}},
		{TaxableValue: fptr(200.00), Quantity: &model.Quantity{Value: 2}},
	}

	rec := NewReconciler().Reconcile(items, Printed{}, "", "")

	if rec.TotalQuantity != "5 PCS" {
		t.Errorf("TotalQuantity = %q, want %q", rec.TotalQuantity, "5 PCS")
	}
}

func TestPostprocessor_SwapCorrection(t *testing.T) {
	item := model.LineItem{
		Quantity:     &model.Quantity{Value: 149, Unit: "BAG"},
		UnitPrice:    fptr(39187.00),
		TaxableValue: fptr(263.00),
	}

	out := NewPostprocessor().CleanItems([]model.LineItem{item})

	if len(out) != 1 {
		t.Fatalf("expected 1 item, got %d", len(out))
	}
	if *out[0].UnitPrice != 263.00 || *out[0].TaxableValue != 39187.00 {
		t.Errorf("after swap: up=%v tv=%v, want 263.00/39187.00", *out[0].UnitPrice, *out[0].TaxableValue)
	}
}

func TestPostprocessor_FillsMissingUnitPrice(t *testing.T) {
	item := model.LineItem{
		Quantity:     &model.Quantity{Value: 4},
		TaxableValue: fptr(1000.00),
	}

	out := NewPostprocessor().CleanItems([]model.LineItem{item})

	if len(out) != 1 || out[0].UnitPrice == nil || *out[0].UnitPrice != 250.00 {
		t.Fatalf("UnitPrice not derived from taxable/qty: %+v", out)
	}
}

func TestPostprocessor_CleanDescription(t *testing.T) {
	p := NewPostprocessor()
	cases := []struct {
		in   string
		want string
	}{
		{"NATURAL GYPSUM HSN/SAC Quantity Rate", "NATURAL GYPSUM"},
		{"CEMENT This is a Computer Generated Invoice", "CEMENT"},
		{"BRICKS   RED    CLASS A", "BRICKS RED CLASS A"},
		{"", ""},
	}
	for _, c := range cases {
		if got := p.CleanDescription(c.in); got != c.want {
			t.Errorf("CleanDescription(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestPostprocessor_DropsItemsWithoutEvidence(t *testing.T) {
	items := []model.LineItem{
		{Description: "continued to page number 2"},
		{Description: "REAL ITEM", HSN: "badhsn"},
		{Description: "KEPT", TaxableValue: fptr(10.00)},
	}

	out := NewPostprocessor().CleanItems(items)

	if len(out) != 1 || out[0].Description != "KEPT" {
		t.Fatalf("expected only the evidenced item, got %+v", out)
	}
}

func TestPostprocessor_Warnings(t *testing.T) {
	inv := &model.Invoice{
		Details: model.InvoiceDetails{Number: "INV-01", NumberConfidence: 0.5},
		Lines: []model.LineItem{
			{RowID: "p0-r1", Confidence: 0.4},
			{RowID: "p0-r2", Confidence: 0.9},
		},
		Totals: model.TotalsRecord{Reconciled: false, RoundOffDelta: 12.5},
	}

	warnings := NewPostprocessor().Warnings(inv)

	if len(warnings) != 3 {
		t.Fatalf("expected 3 warnings, got %d: %+v", len(warnings), warnings)
	}
	if warnings[0].Field != "invoice.number" || warnings[0].Code != model.WarnLowConfField {
		t.Errorf("warning 0 = %+v", warnings[0])
	}
	if warnings[1].Field != "lines[0]" {
		t.Errorf("warning 1 = %+v", warnings[1])
	}
	if warnings[2].Code != model.WarnNotReconciled {
		t.Errorf("warning 2 = %+v", warnings[2])
	}
}
