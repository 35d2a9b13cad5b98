// Package notify turns a composed bill into an outbound email and hands it
// to a mail transport. The HTML body is a second rendering of the same Bill:
// it reads only Bill fields, never the live cart.
package notify

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"dine24/backend/internal/domain"
)

var ErrInvalidRecipient = errors.New("invalid recipient email")

type ErrorKind string

const (
	// KindConfiguration covers operator-fixable failures: missing
	// credentials, endpoint misconfiguration, provider rejecting the
	// request as malformed. Not worth retrying from the UI.
	KindConfiguration ErrorKind = "configuration"
	// KindTransient covers network failures and provider 5xx. Safe to retry.
	KindTransient ErrorKind = "transient"
)

type NotificationError struct {
	Kind ErrorKind
	Err  error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notification %s error: %v", e.Kind, e.Err)
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}

// Transport delivers a fully-formed email request. Implementations own the
// wire mechanics; the dispatcher owns validation and body construction.
type Transport interface {
	Send(ctx context.Context, req domain.EmailRequest) (domain.NotificationReceipt, error)
}

type Dispatcher struct {
	transport Transport
	from      string
}

func NewDispatcher(transport Transport, from string) *Dispatcher {
	if from == "" {
		from = "billing@dine24.com"
	}
	return &Dispatcher{transport: transport, from: from}
}

// Dispatch validates the recipient, renders the HTML body from the bill, and
// delegates to the transport. The attachment, when present, is passed through
// verbatim (base64 on the wire, no re-encoding of the artifact bytes).
// Dispatch never retries; retry policy belongs to the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, bill domain.Bill, recipient string, attachment *domain.DocumentArtifact) (domain.NotificationReceipt, error) {
	recipient = strings.TrimSpace(recipient)
	if !validRecipient(recipient) {
		return domain.NotificationReceipt{}, ErrInvalidRecipient
	}

	html, err := renderHTML(bill)
	if err != nil {
		return domain.NotificationReceipt{}, &NotificationError{Kind: KindConfiguration, Err: err}
	}

	req := domain.EmailRequest{
		From:    d.from,
		To:      recipient,
		Subject: fmt.Sprintf("Your %s Bill - %s", domain.BrandName, bill.BillID),
		HTML:    html,
	}
	if attachment != nil {
		req.Attachment = &domain.EmailAttachment{
			Filename:      attachment.FileName,
			Base64Content: base64.StdEncoding.EncodeToString(attachment.Content),
		}
	}

	return d.transport.Send(ctx, req)
}

// validRecipient checks the minimal local-part/domain shape. Full RFC 5322
// validation is the mail provider's job.
func validRecipient(email string) bool {
	local, domainPart, ok := strings.Cut(email, "@")
	if !ok || local == "" || domainPart == "" {
		return false
	}
	if strings.ContainsAny(email, " \t\n") {
		return false
	}
	if !strings.Contains(domainPart, ".") {
		return false
	}
	return !strings.HasPrefix(domainPart, ".") && !strings.HasSuffix(domainPart, ".")
}

type emailViewModel struct {
	Bill       domain.Bill
	Currency   string
	Brand      string
	Tagline    string
	Contact    string
	ThankYou   string
	Disclaimer string
	TaxLabel   string
	SentAt     string
}

// billHTMLTmpl mirrors the document layout: customer and reservation
// details, the items table, the totals, the unconditional disclaimer, and
// the footer. html/template escapes all customer-controlled fields.
var billHTMLTmpl = template.Must(template.New("bill-email").Parse(`<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <title>{{.Brand}} Bill {{.Bill.BillID}}</title>
  <style>
    body { font-family: Georgia, serif; margin: 24px; color: #281a0d; }
    .header { background: #d4af37; padding: 16px; }
    .header h1 { margin: 0; }
    table { width: 100%; border-collapse: collapse; margin-top: 12px; }
    th, td { border: 1px solid #d4af37; padding: 6px; font-size: 13px; }
    .amount { text-align: right; }
    .disclaimer { color: #c81e1e; font-size: 12px; margin-top: 16px; }
    .footer { text-align: center; margin-top: 20px; font-size: 12px; }
  </style>
</head>
<body>
  <div class="header">
    <h1>{{.Brand}}</h1>
    <p><em>{{.Tagline}}</em></p>
  </div>

  <p>Bill No: <strong>{{.Bill.BillID}}</strong><br />Generated: {{.SentAt}}</p>

  <table>
    <tr>
      <td>
        <strong>Customer Details</strong><br />
        Name: {{.Bill.Reservation.FullName}}<br />
        Email: {{.Bill.Reservation.Email}}<br />
        Phone: {{.Bill.Reservation.Phone}}{{if .Bill.Reservation.Purpose}}<br />
        Occasion: {{.Bill.Reservation.Purpose}}{{end}}
      </td>
      <td>
        <strong>Reservation Details</strong><br />
        Date: {{.Bill.Reservation.ArrivalDate}}<br />
        Time: {{.Bill.Reservation.ArrivalTime}}<br />
        Table: {{.Bill.Table.TableNumber}}<br />
        Guests: {{.Bill.Reservation.PartySize}}
      </td>
    </tr>
  </table>

  <table>
    <thead><tr><th>Item</th><th>Qty</th><th>Price</th><th>Total</th></tr></thead>
    <tbody>
      {{$c := .Currency}}{{range .Bill.LineItems}}<tr><td>{{.Name}}</td><td class="amount">{{.Quantity}}</td><td class="amount">{{$c}} {{.EffectivePrice}}</td><td class="amount">{{$c}} {{.LineTotal}}</td></tr>
      {{end}}
    </tbody>
    <tfoot>
      <tr><td colspan="3">Subtotal</td><td class="amount">{{.Currency}} {{.Bill.Subtotal}}</td></tr>
      <tr><td colspan="3">{{.TaxLabel}}</td><td class="amount">{{.Currency}} {{.Bill.TaxAmount}}</td></tr>
      {{if gt .Bill.LateSurcharge 0}}<tr><td colspan="3">Late Dining Surcharge (15%)</td><td class="amount">{{.Currency}} {{.Bill.LateSurcharge}}</td></tr>
      {{end}}<tr><td colspan="3"><strong>Grand Total</strong></td><td class="amount"><strong>{{.Currency}} {{.Bill.Total}}</strong></td></tr>
    </tfoot>
  </table>

  <p class="disclaimer">{{.Disclaimer}}</p>

  <div class="footer">
    <p><strong>{{.ThankYou}}</strong><br />{{.Contact}}</p>
  </div>
</body>
</html>
`))

func renderHTML(bill domain.Bill) (string, error) {
	var buf bytes.Buffer
	err := billHTMLTmpl.Execute(&buf, emailViewModel{
		Bill:       bill,
		Currency:   domain.CurrencySymbol,
		Brand:      domain.BrandName,
		Tagline:    domain.BrandTagline,
		Contact:    domain.BrandContact,
		ThankYou:   domain.ThankYouLine,
		Disclaimer: domain.DisclaimerText,
		TaxLabel:   fmt.Sprintf("GST (%.0f%%)", bill.TaxRatePercent),
		SentAt:     bill.GeneratedAt.Format(time.RFC1123),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
