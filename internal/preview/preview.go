// Package preview builds the on-screen rendering of a bill. It only reads
// an already-valid Bill, so it has no failure mode.
package preview

import (
	"dine24/backend/internal/document"
	"dine24/backend/internal/domain"
)

// Render produces the interactive view of a bill. The receipt lines are the
// same ones the text artifact uses, and every figure comes straight off the
// Bill, so the preview can never drift from the document or the email.
func Render(bill domain.Bill) domain.BillPreview {
	return domain.BillPreview{
		BillID:        bill.BillID,
		Lines:         document.BuildReceiptLines(bill),
		Subtotal:      bill.Subtotal,
		TaxAmount:     bill.TaxAmount,
		LateSurcharge: bill.LateSurcharge,
		Total:         bill.Total,
		Disclaimer:    domain.DisclaimerText,
	}
}
