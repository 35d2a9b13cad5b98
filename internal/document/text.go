package document

import (
	"fmt"
	"strings"

	"dine24/backend/internal/domain"
)

const receiptWidth = 42

// TextRenderer produces a plain-text artifact with the same content order as
// the PDF. It has no external engine, so it cannot fail; callers use it as
// the fallback when the PDF engine is unavailable.
type TextRenderer struct{}

func NewTextRenderer() *TextRenderer {
	return &TextRenderer{}
}

func (TextRenderer) Render(bill domain.Bill) (domain.DocumentArtifact, error) {
	return domain.DocumentArtifact{
		FileName:    FileName(bill, "txt"),
		ContentType: "text/plain; charset=utf-8",
		Content:     []byte(strings.Join(BuildReceiptLines(bill), "\n") + "\n"),
	}, nil
}

// BuildReceiptLines renders the bill as fixed-width receipt lines. The
// preview surface reuses these lines so the on-screen text and the fallback
// artifact are literally the same rendering.
func BuildReceiptLines(bill domain.Bill) []string {
	lines := []string{
		centerLine(domain.BrandName),
		centerLine(domain.BrandTagline),
		dividerLine(),
		fmt.Sprintf("Bill No : %s", bill.BillID),
		fmt.Sprintf("Date    : %s", bill.GeneratedAt.Format("02 Jan 2006 15:04")),
		fmt.Sprintf("Guest   : %s", bill.Reservation.FullName),
		fmt.Sprintf("Table   : %d  Guests: %d", bill.Table.TableNumber, bill.Reservation.PartySize),
		dividerLine(),
	}

	for _, item := range bill.LineItems {
		lines = append(lines, truncateName(item.Name))
		lines = append(lines, amountLine(
			fmt.Sprintf("  %d x %s", item.Quantity, money(item.EffectivePrice())),
			money(item.LineTotal()),
		))
	}

	lines = append(lines, dividerLine())
	lines = append(lines, amountLine("Subtotal", money(bill.Subtotal)))
	lines = append(lines, amountLine(fmt.Sprintf("GST (%.0f%%)", bill.TaxRatePercent), money(bill.TaxAmount)))
	if bill.LateSurcharge > 0 {
		lines = append(lines, amountLine("Late Dining Surcharge (15%)", money(bill.LateSurcharge)))
	}
	lines = append(lines, amountLine("GRAND TOTAL", money(bill.Total)))
	lines = append(lines, dividerLine())
	lines = append(lines, domain.DisclaimerText)
	lines = append(lines, dividerLine())
	lines = append(lines, centerLine(domain.ThankYouLine))
	lines = append(lines, centerLine(domain.BrandContact))

	return lines
}

func dividerLine() string {
	return strings.Repeat("-", receiptWidth)
}

func centerLine(text string) string {
	if len(text) >= receiptWidth {
		return text
	}
	pad := (receiptWidth - len(text)) / 2
	return strings.Repeat(" ", pad) + text
}

func amountLine(label string, amount string) string {
	gap := receiptWidth - len(label) - len(amount)
	if gap < 1 {
		gap = 1
	}
	return label + strings.Repeat(" ", gap) + amount
}
