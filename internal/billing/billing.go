// Package billing composes immutable Bill snapshots from a cart selection
// plus reservation and table context.
package billing

import (
	"errors"
	"time"

	"dine24/backend/internal/domain"
	"dine24/backend/internal/pricing"
	"dine24/backend/internal/xid"
)

var ErrEmptyCart = errors.New("cart has no items")

// Compose freezes the given line items into a Bill. The items are copied so
// later cart mutation cannot reach into an already-composed bill. The
// late-dining surcharge is measured against the reservation's service start.
func Compose(items []domain.LineItem, reservation domain.Reservation, table domain.Table, now time.Time) (*domain.Bill, error) {
	kept := make([]domain.LineItem, 0, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			continue
		}
		kept = append(kept, item)
	}
	if len(kept) == 0 {
		return nil, ErrEmptyCart
	}

	totals := pricing.ComputeTotals(kept, pricing.TaxRatePercent, now, reservation.ServiceStartedAt)

	return &domain.Bill{
		BillID:         xid.Bill(now),
		GeneratedAt:    now,
		Reservation:    reservation,
		Table:          table,
		LineItems:      kept,
		TaxRatePercent: pricing.TaxRatePercent,
		Subtotal:       totals.Subtotal,
		TaxAmount:      totals.TaxAmount,
		LateSurcharge:  totals.LateSurcharge,
		Total:          totals.Total,
	}, nil
}
