package domain

import "time"

// MenuItem is a dish on the published menu. Prices are whole rupees.
// OfferPrice is zero when no offer is running.
type MenuItem struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Price        int64   `json:"price"`
	OfferPrice   int64   `json:"offer_price,omitempty"`
	PortionSize  string  `json:"portion_size,omitempty"`
	Rating       float64 `json:"rating,omitempty"`
	IsVegetarian bool    `json:"is_vegetarian"`
	OrdersPlaced int64   `json:"orders_placed"`
	Active       bool    `json:"active"`
}

// EffectivePrice is the offer price when one is set, else the list price.
func (m MenuItem) EffectivePrice() int64 {
	if m.OfferPrice > 0 {
		return m.OfferPrice
	}
	return m.Price
}

// LineItem is one menu item with a selected quantity inside a cart or a bill.
type LineItem struct {
	ItemID       string `json:"item_id"`
	Name         string `json:"name"`
	UnitPrice    int64  `json:"unit_price"`
	OfferPrice   int64  `json:"offer_price,omitempty"`
	Quantity     int    `json:"quantity"`
	IsVegetarian bool   `json:"is_vegetarian"`
}

func (l LineItem) EffectivePrice() int64 {
	if l.OfferPrice > 0 {
		return l.OfferPrice
	}
	return l.UnitPrice
}

func (l LineItem) LineTotal() int64 {
	return l.EffectivePrice() * int64(l.Quantity)
}

// Totals holds the computed monetary breakdown of a cart or bill.
type Totals struct {
	Subtotal      int64 `json:"subtotal"`
	TaxAmount     int64 `json:"tax_amount"`
	LateSurcharge int64 `json:"late_dining_surcharge_amount"`
	Total         int64 `json:"total"`
}

// Reservation is a confirmed table booking. ServiceStartedAt is set when the
// first course is served and drives the late-dining surcharge.
type Reservation struct {
	ID               string     `json:"id"`
	FullName         string     `json:"full_name"`
	Email            string     `json:"email"`
	Phone            string     `json:"phone"`
	PartySize        int        `json:"party_size"`
	ArrivalDate      string     `json:"arrival_date"`
	ArrivalTime      string     `json:"arrival_time"`
	Purpose          string     `json:"purpose,omitempty"`
	TableNumber      int        `json:"table_number"`
	Status           string     `json:"status"`
	ServiceStartedAt *time.Time `json:"service_started_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

type Table struct {
	TableNumber     int `json:"table_number"`
	SeatingCapacity int `json:"seating_capacity"`
}

// Bill is an immutable snapshot of a checkout: the items and totals frozen at
// composition time. Cart changes after composition never touch an existing Bill.
type Bill struct {
	BillID         string      `json:"bill_id"`
	GeneratedAt    time.Time   `json:"generated_at"`
	Reservation    Reservation `json:"reservation"`
	Table          Table       `json:"table"`
	LineItems      []LineItem  `json:"line_items"`
	TaxRatePercent float64     `json:"tax_rate_percent"`
	Subtotal       int64       `json:"subtotal"`
	TaxAmount      int64       `json:"tax_amount"`
	LateSurcharge  int64       `json:"late_dining_surcharge_amount"`
	Total          int64       `json:"total"`
}

// DocumentArtifact is a rendered bill ready for download or attachment.
type DocumentArtifact struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"content"`
}

// BillPreview is the on-screen rendering of a bill: the same figures as the
// document and the email, plus receipt-style text lines.
type BillPreview struct {
	BillID        string   `json:"bill_id"`
	Lines         []string `json:"lines"`
	Subtotal      int64    `json:"subtotal"`
	TaxAmount     int64    `json:"tax_amount"`
	LateSurcharge int64    `json:"late_dining_surcharge_amount"`
	Total         int64    `json:"total"`
	Disclaimer    string   `json:"disclaimer"`
}

type EmailAttachment struct {
	Filename      string `json:"filename"`
	Base64Content string `json:"content"`
}

// EmailRequest is the payload handed to the mail transport.
type EmailRequest struct {
	From       string           `json:"from,omitempty"`
	To         string           `json:"to"`
	Subject    string           `json:"subject"`
	HTML       string           `json:"html"`
	Attachment *EmailAttachment `json:"pdfAttachment,omitempty"`
}

// NotificationReceipt reports a dispatched email back to the caller.
type NotificationReceipt struct {
	MessageID string    `json:"message_id"`
	Transport string    `json:"transport"`
	SentAt    time.Time `json:"sent_at"`
}

type MenuItemCreateRequest struct {
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Price        int64   `json:"price"`
	OfferPrice   int64   `json:"offer_price,omitempty"`
	PortionSize  string  `json:"portion_size,omitempty"`
	Rating       float64 `json:"rating,omitempty"`
	IsVegetarian bool    `json:"is_vegetarian"`
}

type ReservationCreateRequest struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	PartySize   int    `json:"party_size"`
	ArrivalDate string `json:"arrival_date"`
	ArrivalTime string `json:"arrival_time"`
	Purpose     string `json:"purpose,omitempty"`
	TableNumber int    `json:"table_number,omitempty"`
}

type CartAddRequest struct {
	ItemID string `json:"item_id"`
}

type CartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type CartView struct {
	SessionID string     `json:"session_id"`
	Items     []LineItem `json:"items"`
	Totals    Totals     `json:"totals"`
}

type BillComposeRequest struct {
	SessionID     string `json:"session_id"`
	ReservationID string `json:"reservation_id"`
}

type EmailBillRequest struct {
	Recipient      string `json:"recipient"`
	AttachDocument bool   `json:"attach_document"`
}

type CheckoutResponse struct {
	Bill    Bill        `json:"bill"`
	Preview BillPreview `json:"preview"`
}

const (
	ReservationStatusConfirmed = "confirmed"
	ReservationStatusSeated    = "seated"

	BrandName    = "DINE24"
	BrandTagline = "Premium Dining Experience"
	BrandContact = "Contact: +91 98765 43210 | Email: info@dine24.com"
	ThankYouLine = "Thank you for choosing DINE24!"

	CurrencySymbol = "Rs."

	// DisclaimerText is shown on every bill surface whether or not the
	// late-dining surcharge was applied to the totals.
	DisclaimerText = "You are allowed to have your meal within 1 hour from service start. " +
		"Extended dining beyond this limit will incur an additional 15% charge of the " +
		"total bill amount. Thank you for your understanding."
)
