// Package pricing computes bill totals. It is pure: no I/O, no clock access,
// deterministic for identical inputs, which is what lets the preview, the
// document, and the email agree on every figure.
package pricing

import (
	"math"
	"time"

	"dine24/backend/internal/domain"
)

const (
	TaxRatePercent       = 18.0
	LateSurchargePercent = 15.0

	// DiningWindow is how long a party may dine from service start before
	// the late surcharge applies.
	DiningWindow = time.Hour
)

// ComputeTotals derives subtotal, tax, and the conditional late-dining
// surcharge from the given line items. Each component is rounded
// independently; the total is the exact sum of the three, never re-derived
// by subtraction.
func ComputeTotals(items []domain.LineItem, taxRatePercent float64, now time.Time, serviceStartedAt *time.Time) domain.Totals {
	var subtotal int64
	for _, item := range items {
		if item.Quantity < 1 {
			continue
		}
		subtotal += item.LineTotal()
	}

	taxAmount := roundAmount(float64(subtotal) * taxRatePercent / 100)

	var surcharge int64
	if surchargeApplies(now, serviceStartedAt) {
		surcharge = roundAmount(float64(subtotal+taxAmount) * LateSurchargePercent / 100)
	}

	return domain.Totals{
		Subtotal:      subtotal,
		TaxAmount:     taxAmount,
		LateSurcharge: surcharge,
		Total:         subtotal + taxAmount + surcharge,
	}
}

func surchargeApplies(now time.Time, serviceStartedAt *time.Time) bool {
	if serviceStartedAt == nil {
		return false
	}
	return now.Sub(*serviceStartedAt) > DiningWindow
}

func roundAmount(v float64) int64 {
	return int64(math.Round(v))
}
