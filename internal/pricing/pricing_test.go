package pricing

import (
	"testing"
	"time"

	"dine24/backend/internal/domain"
)

func sampleItems() []domain.LineItem {
	return []domain.LineItem{
		{ItemID: "item-biryani", Name: "Hyderabadi Biryani", UnitPrice: 280, OfferPrice: 250, Quantity: 2},
		{ItemID: "item-dosa", Name: "Masala Dosa", UnitPrice: 90, Quantity: 1},
	}
}

func TestComputeTotalsWithoutSurcharge(t *testing.T) {
	now := time.Date(2026, 8, 30, 20, 0, 0, 0, time.UTC)

	totals := ComputeTotals(sampleItems(), TaxRatePercent, now, nil)

	if totals.Subtotal != 590 {
		t.Fatalf("expected subtotal 590, got %d", totals.Subtotal)
	}
	if totals.TaxAmount != 106 {
		t.Fatalf("expected tax 106, got %d", totals.TaxAmount)
	}
	if totals.LateSurcharge != 0 {
		t.Fatalf("expected no surcharge, got %d", totals.LateSurcharge)
	}
	if totals.Total != 696 {
		t.Fatalf("expected total 696, got %d", totals.Total)
	}
}

func TestComputeTotalsAppliesLateSurcharge(t *testing.T) {
	now := time.Date(2026, 8, 30, 21, 30, 0, 0, time.UTC)
	start := now.Add(-90 * time.Minute)

	totals := ComputeTotals(sampleItems(), TaxRatePercent, now, &start)

	if totals.LateSurcharge != 104 {
		t.Fatalf("expected surcharge 104, got %d", totals.LateSurcharge)
	}
	if totals.Total != 800 {
		t.Fatalf("expected total 800, got %d", totals.Total)
	}
}

func TestComputeTotalsNoSurchargeAtExactlyOneHour(t *testing.T) {
	now := time.Date(2026, 8, 30, 21, 0, 0, 0, time.UTC)
	start := now.Add(-DiningWindow)

	totals := ComputeTotals(sampleItems(), TaxRatePercent, now, &start)

	if totals.LateSurcharge != 0 {
		t.Fatalf("expected no surcharge at exactly the dining window, got %d", totals.LateSurcharge)
	}
	if totals.Total != 696 {
		t.Fatalf("expected total 696, got %d", totals.Total)
	}
}

func TestComputeTotalsIdentityHolds(t *testing.T) {
	now := time.Now().UTC()
	start := now.Add(-2 * time.Hour)

	totals := ComputeTotals(sampleItems(), TaxRatePercent, now, &start)
	if totals.Total != totals.Subtotal+totals.TaxAmount+totals.LateSurcharge {
		t.Fatalf("total %d does not equal subtotal+tax+surcharge %d",
			totals.Total, totals.Subtotal+totals.TaxAmount+totals.LateSurcharge)
	}
}

func TestComputeTotalsSkipsZeroQuantityAndUsesListPriceWithoutOffer(t *testing.T) {
	now := time.Now().UTC()
	items := []domain.LineItem{
		{ItemID: "item-a", Name: "Paneer Tikka", UnitPrice: 320, Quantity: 1},
		{ItemID: "item-b", Name: "Gone", UnitPrice: 500, Quantity: 0},
	}

	totals := ComputeTotals(items, TaxRatePercent, now, nil)
	if totals.Subtotal != 320 {
		t.Fatalf("expected subtotal 320, got %d", totals.Subtotal)
	}
}

func TestComputeTotalsDeterministic(t *testing.T) {
	now := time.Date(2026, 8, 30, 22, 0, 0, 0, time.UTC)
	start := now.Add(-3 * time.Hour)

	first := ComputeTotals(sampleItems(), TaxRatePercent, now, &start)
	second := ComputeTotals(sampleItems(), TaxRatePercent, now, &start)
	if first != second {
		t.Fatalf("expected identical totals, got %+v and %+v", first, second)
	}
}

func TestComputeTotalsEmptyItems(t *testing.T) {
	totals := ComputeTotals(nil, TaxRatePercent, time.Now(), nil)
	if totals != (domain.Totals{}) {
		t.Fatalf("expected zero totals for empty items, got %+v", totals)
	}
}
