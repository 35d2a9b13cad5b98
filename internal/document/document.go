// Package document renders a composed bill into a downloadable artifact.
// Both renderers print the figures already computed on the Bill; neither
// recomputes money.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"dine24/backend/internal/domain"
)

var ErrRendererUnavailable = errors.New("document renderer unavailable")

// itemNameBudget caps dish names in the items table so long names never
// collide with the quantity column.
const itemNameBudget = 30

type Renderer interface {
	Render(bill domain.Bill) (domain.DocumentArtifact, error)
}

// FileName derives the download name from the brand prefix and the customer
// name, with every non-alphanumeric run collapsed to an underscore.
func FileName(bill domain.Bill, extension string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range bill.Reservation.FullName {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		name = "Guest"
	}
	return fmt.Sprintf("Dine24_Bill_%s.%s", name, extension)
}

func truncateName(name string) string {
	if len(name) <= itemNameBudget {
		return name
	}
	return name[:itemNameBudget-3] + "..."
}

func money(amount int64) string {
	return fmt.Sprintf("%s %d", domain.CurrencySymbol, amount)
}

// PDFRenderer draws the bill with an fpdf engine. The engine factory is
// injectable so environments without PDF support can be simulated.
type PDFRenderer struct {
	newEngine func() *fpdf.Fpdf
}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{
		newEngine: func() *fpdf.Fpdf {
			return fpdf.New("P", "mm", "A4", "")
		},
	}
}

// NewPDFRendererWithEngine exists for tests and for callers that need to
// swap the engine factory.
func NewPDFRendererWithEngine(factory func() *fpdf.Fpdf) *PDFRenderer {
	return &PDFRenderer{newEngine: factory}
}

func (r *PDFRenderer) Render(bill domain.Bill) (domain.DocumentArtifact, error) {
	if r.newEngine == nil {
		return domain.DocumentArtifact{}, fmt.Errorf("no engine factory: %w", ErrRendererUnavailable)
	}
	pdf := r.newEngine()
	if pdf == nil {
		return domain.DocumentArtifact{}, fmt.Errorf("engine factory returned nil: %w", ErrRendererUnavailable)
	}

	pdf.SetAutoPageBreak(true, 18)
	pdf.AddPage()

	drawHeader(pdf, bill)
	drawIdentifierPattern(pdf, bill.BillID, 168, 12)
	drawDetailColumns(pdf, bill)
	y := drawItemsTable(pdf, bill)
	y = drawTotals(pdf, bill, y)
	y = drawDisclaimer(pdf, y)
	drawFooter(pdf, y)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return domain.DocumentArtifact{}, fmt.Errorf("pdf output: %w", ErrRendererUnavailable)
	}
	if err := pdf.Error(); err != nil {
		return domain.DocumentArtifact{}, fmt.Errorf("pdf engine error: %w", ErrRendererUnavailable)
	}

	return domain.DocumentArtifact{
		FileName:    FileName(bill, "pdf"),
		ContentType: "application/pdf",
		Content:     buf.Bytes(),
	}, nil
}

func drawHeader(pdf *fpdf.Fpdf, bill domain.Bill) {
	// Gold brand block.
	pdf.SetFillColor(212, 175, 55)
	pdf.Rect(0, 0, 210, 26, "F")

	pdf.SetTextColor(40, 26, 13)
	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetXY(14, 6)
	pdf.CellFormat(100, 10, domain.BrandName, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "I", 10)
	pdf.SetXY(14, 16)
	pdf.CellFormat(100, 6, domain.BrandTagline, "", 0, "L", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetXY(14, 30)
	pdf.CellFormat(120, 5, fmt.Sprintf("Bill No: %s", bill.BillID), "", 2, "L", false, 0, "")
	pdf.CellFormat(120, 5, fmt.Sprintf("Generated: %s", bill.GeneratedAt.Format("02 Jan 2006 15:04")), "", 0, "L", false, 0, "")
}

// drawIdentifierPattern paints the decorative QR-like square keyed by the
// bill id. It is deterministic so the same bill always carries the same
// pattern, but it is not a scannable code.
func drawIdentifierPattern(pdf *fpdf.Fpdf, billID string, x, y float64) {
	const cells = 25
	const cell = 1.1

	if billID == "" {
		return
	}

	pdf.SetFillColor(40, 26, 13)
	for i := 0; i < cells; i++ {
		for j := 0; j < cells; j++ {
			if !patternCellFilled(billID, i, j) {
				continue
			}
			pdf.Rect(x+float64(i)*cell, y+float64(j)*cell, cell, cell, "F")
		}
	}

	// Corner squares, like a finder pattern.
	corner := cell * 5
	for _, pos := range [][2]float64{{0, 0}, {float64(cells-5) * cell, 0}, {0, float64(cells-5) * cell}} {
		pdf.Rect(x+pos[0], y+pos[1], corner, corner, "F")
	}
}

func patternCellFilled(id string, i, j int) bool {
	return (int(id[i%len(id)])+i+j)%3 == 0
}

func drawDetailColumns(pdf *fpdf.Fpdf, bill domain.Bill) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetXY(14, 46)
	pdf.CellFormat(90, 6, "Customer Details", "", 0, "L", false, 0, "")
	pdf.SetXY(110, 46)
	pdf.CellFormat(90, 6, "Reservation Details", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	left := []string{
		fmt.Sprintf("Name: %s", bill.Reservation.FullName),
		fmt.Sprintf("Email: %s", bill.Reservation.Email),
		fmt.Sprintf("Phone: %s", bill.Reservation.Phone),
	}
	if bill.Reservation.Purpose != "" {
		left = append(left, fmt.Sprintf("Occasion: %s", bill.Reservation.Purpose))
	}
	right := []string{
		fmt.Sprintf("Date: %s", bill.Reservation.ArrivalDate),
		fmt.Sprintf("Time: %s", bill.Reservation.ArrivalTime),
		fmt.Sprintf("Table: %d", bill.Table.TableNumber),
		fmt.Sprintf("Guests: %d", bill.Reservation.PartySize),
	}

	y := 53.0
	for _, line := range left {
		pdf.SetXY(14, y)
		pdf.CellFormat(90, 5, line, "", 0, "L", false, 0, "")
		y += 5
	}
	y = 53.0
	for _, line := range right {
		pdf.SetXY(110, y)
		pdf.CellFormat(90, 5, line, "", 0, "L", false, 0, "")
		y += 5
	}
}

func drawItemsTable(pdf *fpdf.Fpdf, bill domain.Bill) float64 {
	y := 80.0

	pdf.SetFillColor(212, 175, 55)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetXY(14, y)
	pdf.CellFormat(92, 7, "Item", "1", 0, "L", true, 0, "")
	pdf.CellFormat(20, 7, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 7, "Price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 7, "Total", "1", 0, "R", true, 0, "")
	y += 7

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range bill.LineItems {
		pdf.SetXY(14, y)
		pdf.CellFormat(92, 6, truncateName(item.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%d", item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, money(item.EffectivePrice()), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, money(item.LineTotal()), "1", 0, "R", false, 0, "")
		y += 6
	}

	return y + 4
}

func drawTotals(pdf *fpdf.Fpdf, bill domain.Bill, y float64) float64 {
	rows := []struct {
		label  string
		amount int64
		bold   bool
	}{
		{"Subtotal", bill.Subtotal, false},
		{fmt.Sprintf("GST (%.0f%%)", bill.TaxRatePercent), bill.TaxAmount, false},
	}
	if bill.LateSurcharge > 0 {
		rows = append(rows, struct {
			label  string
			amount int64
			bold   bool
		}{"Late Dining Surcharge (15%)", bill.LateSurcharge, false})
	}
	rows = append(rows, struct {
		label  string
		amount int64
		bold   bool
	}{"Grand Total", bill.Total, true})

	for _, row := range rows {
		style := ""
		if row.bold {
			style = "B"
			pdf.SetDrawColor(40, 26, 13)
			pdf.Line(110, y, 196, y)
			y += 1.5
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.SetXY(110, y)
		pdf.CellFormat(51, 6, row.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, money(row.amount), "", 0, "R", false, 0, "")
		y += 6
	}

	return y + 4
}

func drawDisclaimer(pdf *fpdf.Fpdf, y float64) float64 {
	pdf.SetTextColor(200, 30, 30)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetXY(14, y)
	pdf.CellFormat(182, 5, "Dining Time Policy", "", 2, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetX(14)
	pdf.MultiCell(182, 4, domain.DisclaimerText, "", "L", false)
	pdf.SetTextColor(0, 0, 0)
	return pdf.GetY() + 6
}

func drawFooter(pdf *fpdf.Fpdf, y float64) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(14, y)
	pdf.CellFormat(182, 6, domain.ThankYouLine, "", 2, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetX(14)
	pdf.CellFormat(182, 5, domain.BrandContact, "", 0, "C", false, 0, "")
}
