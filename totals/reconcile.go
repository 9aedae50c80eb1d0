package totals

import (
	"fmt"
	"math"
	"regexp"

	"github.com/invoscan/invoscan/model"
)

// ReconcileConfig holds configuration for totals reconciliation.
type ReconcileConfig struct {
	// Tolerance is the largest |printed − computed| gross difference still
	// considered reconciled (default: 1.0).
	Tolerance float64

	// DefaultGSTRatePct applies to line items without a printed rate
	// (default: 18).
	DefaultGSTRatePct float64
}

// DefaultReconcileConfig returns sensible default configuration.
func DefaultReconcileConfig() ReconcileConfig {
	return ReconcileConfig{
		Tolerance:         1.0,
		DefaultGSTRatePct: 18,
	}
}

// Reconciler builds the final TotalsRecord from printed and computed totals.
type Reconciler struct {
	config ReconcileConfig
}

// NewReconciler creates a reconciler with default configuration.
func NewReconciler() *Reconciler {
	return NewReconcilerWithConfig(DefaultReconcileConfig())
}

// NewReconcilerWithConfig creates a reconciler with custom configuration.
func NewReconcilerWithConfig(config ReconcileConfig) *Reconciler {
	if config.Tolerance <= 0 {
		config.Tolerance = 1.0
	}
	if config.DefaultGSTRatePct <= 0 {
		config.DefaultGSTRatePct = 18
	}
	return &Reconciler{config: config}
}

// Summarize fills each item's computed totals in place and returns their
// sums, rounded to two decimals after summation.
func Summarize(items []model.LineItem, defaultRatePct float64) model.ComputedTotals {
	var sum model.ComputedTotals
	for i := range items {
		items[i].Compute(defaultRatePct)
		sum.Net += items[i].Computed.Net
		sum.Tax += items[i].Computed.Tax
		sum.Gross += items[i].Computed.Gross
	}
	sum.Net = model.Round2(sum.Net)
	sum.Tax = model.Round2(sum.Tax)
	sum.Gross = model.Round2(sum.Gross)
	return sum
}

// Reconcile compares the printed totals against totals recomputed from
// items. Printed values win where present; the signed gross difference
// becomes RoundOffDelta, and the record is reconciled iff that difference is
// within tolerance. The tax is split CGST/SGST for intra-state supplies and
// charged as IGST when the seller's state code and the place of supply
// disagree.
func (r *Reconciler) Reconcile(items []model.LineItem, printed Printed, sellerStateCode, placeOfSupply string) model.TotalsRecord {
	computed := Summarize(items, r.config.DefaultGSTRatePct)

	rec := model.TotalsRecord{
		Net:           computed.Net,
		Tax:           computed.Tax,
		Gross:         computed.Gross,
		Reconciled:    true,
		TotalQuantity: printed.TotalQuantity,
		AmountInWords: printed.AmountInWords,
	}

	switch {
	case printed.SubTotal != nil:
		rec.Net = *printed.SubTotal
	case printed.TaxableValue != nil:
		rec.Net = *printed.TaxableValue
	}

	if printed.CGST != nil || printed.SGST != nil || printed.IGST != nil {
		rec.CGST = deref(printed.CGST)
		rec.SGST = deref(printed.SGST)
		rec.IGST = deref(printed.IGST)
		rec.Tax = model.Round2(rec.CGST + rec.SGST + rec.IGST)
	} else if interState(sellerStateCode, placeOfSupply) {
		rec.IGST = rec.Tax
	} else {
		rec.CGST = model.Round2(rec.Tax / 2)
		rec.SGST = rec.CGST
	}

	gross := printed.GrandTotal
	if gross != nil && *gross < 50 && computed.Gross >= 50 {
		// A tiny printed total next to substantial items is a misread,
		// typically a quantity captured as the total.
		gross = nil
	}
	if gross != nil {
		rec.Gross = *gross
		rec.RoundOffDelta = model.Round2(*gross - computed.Gross)
		rec.Reconciled = math.Abs(rec.RoundOffDelta) <= r.config.Tolerance
	} else if printed.RoundOff != 0 {
		rec.RoundOffDelta = printed.RoundOff
	}

	if rec.TotalQuantity == "" {
		if qty := sumQuantities(items); qty > 0 {
			rec.TotalQuantity = fmt.Sprintf("%d PCS", qty)
		}
	}
	return rec
}

var leadingCode = regexp.MustCompile(`\b(\d{2})\b`)

// interState reports whether the supply crosses state lines. It compares
// the seller's state code to a two-digit code in the place of supply; with
// either side unknown the supply is treated as intra-state.
func interState(sellerStateCode, placeOfSupply string) bool {
	if sellerStateCode == "" {
		return false
	}
	m := leadingCode.FindStringSubmatch(placeOfSupply)
	if m == nil {
		return false
	}
	return m[1] != sellerStateCode
}

func sumQuantities(items []model.LineItem) int {
	total := 0
	for i := range items {
		if q := items[i].Quantity; q != nil {
			total += int(q.Value)
		}
	}
	return total
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
