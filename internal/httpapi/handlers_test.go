package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dine24/backend/internal/cache"
	"dine24/backend/internal/document"
	"dine24/backend/internal/domain"
	"dine24/backend/internal/notify"
	"dine24/backend/internal/service"
	"dine24/backend/internal/store/memory"
)

type recordingTransport struct {
	sent []domain.EmailRequest
}

func (r *recordingTransport) Send(_ context.Context, req domain.EmailRequest) (domain.NotificationReceipt, error) {
	r.sent = append(r.sent, req)
	return domain.NotificationReceipt{MessageID: "msg-api", Transport: "fake", SentAt: time.Now()}, nil
}

func newTestAPI(t *testing.T) (*API, *recordingTransport) {
	t.Helper()

	transport := &recordingTransport{}
	svc := service.New(
		memory.NewSeeded(),
		cache.NoopMenuCache{},
		30*time.Second,
		document.NewPDFRenderer(),
		document.NewTextRenderer(),
		notify.NewDispatcher(transport, "billing@dine24.com"),
	)
	return New(svc, "http://127.0.0.1:3000"), transport
}

func doJSON(t *testing.T, handler http.Handler, method string, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dest); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func createSession(t *testing.T, handler http.Handler) string {
	t.Helper()

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/sessions", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session: status %d body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		SessionID string `json:"session_id"`
	}
	decodeBody(t, rec, &resp)
	if resp.SessionID == "" {
		t.Fatalf("expected session id")
	}
	return resp.SessionID
}

func createReservation(t *testing.T, handler http.Handler) string {
	t.Helper()

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/reservations", domain.ReservationCreateRequest{
		FullName:    "Ananya Sharma",
		Email:       "ananya@example.com",
		Phone:       "+91 90000 00001",
		PartySize:   2,
		ArrivalDate: "2026-08-30",
		ArrivalTime: "19:30",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create reservation: status %d body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Reservation domain.Reservation `json:"reservation"`
	}
	decodeBody(t, rec, &resp)
	return resp.Reservation.ID
}

func fillCart(t *testing.T, handler http.Handler, sid string) {
	t.Helper()

	itemsPath := fmt.Sprintf("/api/v1/carts/%s/items", sid)
	for i := 0; i < 2; i++ {
		rec := doJSON(t, handler, http.MethodPost, itemsPath, domain.CartAddRequest{ItemID: "item-biryani"})
		if rec.Code != http.StatusOK {
			t.Fatalf("add biryani: status %d body %s", rec.Code, rec.Body.String())
		}
	}
	rec := doJSON(t, handler, http.MethodPost, itemsPath, domain.CartAddRequest{ItemID: "item-dosa"})
	if rec.Code != http.StatusOK {
		t.Fatalf("add dosa: status %d body %s", rec.Code, rec.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	api, _ := newTestAPI(t)
	rec := doJSON(t, api.Handler(), http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestMenuListing(t *testing.T) {
	api, _ := newTestAPI(t)
	rec := doJSON(t, api.Handler(), http.MethodGet, "/api/v1/menu", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var resp struct {
		Items []domain.MenuItem `json:"items"`
	}
	decodeBody(t, rec, &resp)
	if len(resp.Items) == 0 {
		t.Fatalf("expected seeded menu")
	}
}

func TestOptionsPreflightAnsweredIndependently(t *testing.T) {
	api, _ := newTestAPI(t)
	handler := api.Handler()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/bills/whatever/email", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "http://127.0.0.1:3000" {
		t.Fatalf("missing CORS origin header")
	}
	if !strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), "POST") {
		t.Fatalf("missing CORS methods header")
	}
}

func TestCartMutationAndDisplayTotals(t *testing.T) {
	api, _ := newTestAPI(t)
	handler := api.Handler()
	sid := createSession(t, handler)
	fillCart(t, handler, sid)

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/carts/"+sid, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get cart: status %d", rec.Code)
	}
	var view domain.CartView
	decodeBody(t, rec, &view)
	if view.Totals.Subtotal != 590 || view.Totals.Total != 696 {
		t.Fatalf("unexpected totals %+v", view.Totals)
	}

	rec = doJSON(t, handler, http.MethodPut, fmt.Sprintf("/api/v1/carts/%s/items/item-dosa", sid), domain.CartQuantityRequest{Quantity: 0})
	if rec.Code != http.StatusOK {
		t.Fatalf("set quantity: status %d", rec.Code)
	}
	decodeBody(t, rec, &view)
	if len(view.Items) != 1 {
		t.Fatalf("expected dosa removed, got %+v", view.Items)
	}

	rec = doJSON(t, handler, http.MethodDelete, fmt.Sprintf("/api/v1/carts/%s/items/item-dosa", sid), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected idempotent remove, status %d", rec.Code)
	}
}

func TestBillPreviewDocumentAndEmailAgree(t *testing.T) {
	api, transport := newTestAPI(t)
	handler := api.Handler()
	sid := createSession(t, handler)
	reservationID := createReservation(t, handler)
	fillCart(t, handler, sid)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/bills/preview", domain.BillComposeRequest{
		SessionID:     sid,
		ReservationID: reservationID,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("preview: status %d body %s", rec.Code, rec.Body.String())
	}
	var resp domain.CheckoutResponse
	decodeBody(t, rec, &resp)
	if resp.Bill.Total != 696 || resp.Preview.Total != 696 {
		t.Fatalf("preview and bill must agree: %+v", resp)
	}

	rec = doJSON(t, handler, http.MethodGet, fmt.Sprintf("/api/v1/bills/%s/document", resp.Bill.BillID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("document: status %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("expected pdf, got %q", rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "Dine24_Bill_Ananya_Sharma.pdf") {
		t.Fatalf("unexpected disposition %q", rec.Header().Get("Content-Disposition"))
	}

	rec = doJSON(t, handler, http.MethodPost, fmt.Sprintf("/api/v1/bills/%s/email", resp.Bill.BillID), domain.EmailBillRequest{
		Recipient: "ananya@example.com",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("email: status %d body %s", rec.Code, rec.Body.String())
	}
	if len(transport.sent) != 1 || !strings.Contains(transport.sent[0].HTML, resp.Bill.BillID) {
		t.Fatalf("email body must carry the same bill id")
	}
}

func TestBillPreviewEmptyCartIsBadRequest(t *testing.T) {
	api, _ := newTestAPI(t)
	handler := api.Handler()
	sid := createSession(t, handler)
	reservationID := createReservation(t, handler)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/bills/preview", domain.BillComposeRequest{
		SessionID:     sid,
		ReservationID: reservationID,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty cart, got %d", rec.Code)
	}
}

func TestEmailInvalidRecipientIsBadRequest(t *testing.T) {
	api, transport := newTestAPI(t)
	handler := api.Handler()
	sid := createSession(t, handler)
	reservationID := createReservation(t, handler)
	fillCart(t, handler, sid)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/bills/preview", domain.BillComposeRequest{
		SessionID: sid, ReservationID: reservationID,
	})
	var resp domain.CheckoutResponse
	decodeBody(t, rec, &resp)

	rec = doJSON(t, handler, http.MethodPost, fmt.Sprintf("/api/v1/bills/%s/email", resp.Bill.BillID), domain.EmailBillRequest{
		Recipient: "not-an-email",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body %s", rec.Code, rec.Body.String())
	}
	if len(transport.sent) != 0 {
		t.Fatalf("no email must be sent for an invalid recipient")
	}
}

func TestEmailRateLimited(t *testing.T) {
	api, _ := newTestAPI(t)
	handler := api.Handler()
	sid := createSession(t, handler)
	reservationID := createReservation(t, handler)
	fillCart(t, handler, sid)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/bills/preview", domain.BillComposeRequest{
		SessionID: sid, ReservationID: reservationID,
	})
	var resp domain.CheckoutResponse
	decodeBody(t, rec, &resp)

	path := fmt.Sprintf("/api/v1/bills/%s/email", resp.Bill.BillID)
	var last int
	for i := 0; i < 6; i++ {
		rec = doJSON(t, handler, http.MethodPost, path, domain.EmailBillRequest{Recipient: "ananya@example.com"})
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after repeated attempts, got %d", last)
	}
}

func TestUnknownBillIsNotFound(t *testing.T) {
	api, _ := newTestAPI(t)
	rec := doJSON(t, api.Handler(), http.MethodGet, "/api/v1/bills/BILL-00000000-dead", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestServiceStartFlowChangesBillTotals(t *testing.T) {
	api, _ := newTestAPI(t)
	handler := api.Handler()
	sid := createSession(t, handler)
	reservationID := createReservation(t, handler)
	fillCart(t, handler, sid)

	rec := doJSON(t, handler, http.MethodPost, fmt.Sprintf("/api/v1/reservations/%s/service-start", reservationID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("service start: status %d body %s", rec.Code, rec.Body.String())
	}
	var startResp struct {
		Reservation domain.Reservation `json:"reservation"`
	}
	decodeBody(t, rec, &startResp)
	if startResp.Reservation.ServiceStartedAt == nil {
		t.Fatalf("expected service start timestamp")
	}

	// Service just started: within the window, so no surcharge yet.
	rec = doJSON(t, handler, http.MethodPost, "/api/v1/bills/preview", domain.BillComposeRequest{
		SessionID: sid, ReservationID: reservationID,
	})
	var resp domain.CheckoutResponse
	decodeBody(t, rec, &resp)
	if resp.Bill.LateSurcharge != 0 || resp.Bill.Total != 696 {
		t.Fatalf("expected no surcharge inside the window, got %+v", resp.Bill)
	}
}

func TestCheckoutEndpointClearsCart(t *testing.T) {
	api, _ := newTestAPI(t)
	handler := api.Handler()
	sid := createSession(t, handler)
	reservationID := createReservation(t, handler)
	fillCart(t, handler, sid)

	rec := doJSON(t, handler, http.MethodPost, fmt.Sprintf("/api/v1/carts/%s/checkout", sid), map[string]any{
		"reservation_id": reservationID,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("checkout: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/carts/"+sid, nil)
	var view domain.CartView
	decodeBody(t, rec, &view)
	if len(view.Items) != 0 {
		t.Fatalf("expected cleared cart, got %+v", view.Items)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	api, _ := newTestAPI(t)
	rec := doJSON(t, api.Handler(), http.MethodDelete, "/api/v1/menu", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestUnknownSessionIsNotFound(t *testing.T) {
	api, _ := newTestAPI(t)
	rec := doJSON(t, api.Handler(), http.MethodGet, "/api/v1/carts/not-a-session", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
