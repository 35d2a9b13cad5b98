package preview

import (
	"strings"
	"testing"
	"time"

	"dine24/backend/internal/domain"
)

func TestRenderMirrorsBillFields(t *testing.T) {
	bill := domain.Bill{
		BillID:      "BILL-00000042-beef",
		GeneratedAt: time.Date(2026, 8, 30, 21, 0, 0, 0, time.UTC),
		Reservation: domain.Reservation{FullName: "Ananya Sharma", PartySize: 2},
		Table:       domain.Table{TableNumber: 4},
		LineItems: []domain.LineItem{
			{ItemID: "item-dosa", Name: "Masala Dosa", UnitPrice: 90, Quantity: 1},
		},
		TaxRatePercent: 18,
		Subtotal:       90,
		TaxAmount:      16,
		LateSurcharge:  0,
		Total:          106,
	}

	p := Render(bill)

	if p.BillID != bill.BillID {
		t.Fatalf("expected bill id %q, got %q", bill.BillID, p.BillID)
	}
	if p.Subtotal != 90 || p.TaxAmount != 16 || p.LateSurcharge != 0 || p.Total != 106 {
		t.Fatalf("preview totals diverge from bill: %+v", p)
	}
	if p.Disclaimer != domain.DisclaimerText {
		t.Fatalf("disclaimer must always be present")
	}
	joined := strings.Join(p.Lines, "\n")
	if !strings.Contains(joined, "Masala Dosa") || !strings.Contains(joined, bill.BillID) {
		t.Fatalf("preview lines missing content:\n%s", joined)
	}
}
