package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"dine24/backend/internal/billing"
	"dine24/backend/internal/cache"
	"dine24/backend/internal/cart"
	"dine24/backend/internal/document"
	"dine24/backend/internal/domain"
	"dine24/backend/internal/notify"
	"dine24/backend/internal/preview"
	"dine24/backend/internal/pricing"
	"dine24/backend/internal/store"
	"dine24/backend/internal/xid"
)

const menuCacheKey = "menu:active"

// Service wires the cart registry, the pricing/billing core, and the three
// bill renderings behind one API. Frozen bills live in memory only; a new
// compose for the same session supersedes the previous bill.
type Service struct {
	repo       store.Repository
	menuCache  cache.MenuCache
	menuTTL    time.Duration
	carts      *cart.Registry
	renderer   document.Renderer
	fallback   document.Renderer
	dispatcher *notify.Dispatcher

	mu            sync.Mutex
	billsByID     map[string]domain.Bill
	billBySession map[string]string

	now func() time.Time
}

func New(repo store.Repository, menuCache cache.MenuCache, menuTTL time.Duration, renderer document.Renderer, fallback document.Renderer, dispatcher *notify.Dispatcher) *Service {
	if menuTTL < time.Second {
		menuTTL = 30 * time.Second
	}
	return &Service{
		repo:          repo,
		menuCache:     menuCache,
		menuTTL:       menuTTL,
		carts:         cart.NewRegistry(),
		renderer:      renderer,
		fallback:      fallback,
		dispatcher:    dispatcher,
		billsByID:     make(map[string]domain.Bill),
		billBySession: make(map[string]string),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) ListMenu(ctx context.Context) ([]domain.MenuItem, error) {
	if cached, ok, err := s.menuCache.Get(ctx, menuCacheKey); err == nil && ok {
		return cached, nil
	} else if err != nil {
		log.Printf("[service] WARN: menu cache read failed: %v", err)
	}

	items, err := s.repo.ListMenuItems(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.menuCache.Set(ctx, menuCacheKey, items, s.menuTTL); err != nil {
		log.Printf("[service] WARN: menu cache write failed: %v", err)
	}
	return items, nil
}

func (s *Service) AddMenuItem(ctx context.Context, req domain.MenuItemCreateRequest) (domain.MenuItem, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	if req.Name == "" || req.Category == "" || req.Price < 1 {
		return domain.MenuItem{}, store.ErrInvalidInput
	}
	if req.OfferPrice < 0 || req.OfferPrice > req.Price {
		return domain.MenuItem{}, store.ErrInvalidInput
	}

	item := domain.MenuItem{
		ID:           xid.New("item"),
		Name:         req.Name,
		Category:     req.Category,
		Price:        req.Price,
		OfferPrice:   req.OfferPrice,
		PortionSize:  strings.TrimSpace(req.PortionSize),
		Rating:       req.Rating,
		IsVegetarian: req.IsVegetarian,
		Active:       true,
	}

	created, err := s.repo.CreateMenuItem(ctx, item)
	if err != nil {
		return domain.MenuItem{}, err
	}

	if err := s.menuCache.Invalidate(ctx, menuCacheKey); err != nil {
		log.Printf("[service] WARN: menu cache invalidate failed: %v", err)
	}
	return *created, nil
}

func (s *Service) ListTables(ctx context.Context) ([]domain.Table, error) {
	return s.repo.ListTables(ctx)
}

func (s *Service) CreateReservation(ctx context.Context, req domain.ReservationCreateRequest) (domain.Reservation, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
	if req.FullName == "" || req.PartySize < 1 || req.ArrivalDate == "" || req.ArrivalTime == "" {
		return domain.Reservation{}, store.ErrInvalidInput
	}
	if !strings.Contains(req.Email, "@") {
		return domain.Reservation{}, store.ErrInvalidInput
	}

	tableNumber := req.TableNumber
	if tableNumber != 0 {
		table, err := s.repo.GetTableByNumber(ctx, tableNumber)
		if err != nil {
			return domain.Reservation{}, err
		}
		if table.SeatingCapacity < req.PartySize {
			return domain.Reservation{}, fmt.Errorf("table %d seats %d: %w", tableNumber, table.SeatingCapacity, store.ErrInvalidInput)
		}
	} else {
		table, err := s.smallestFittingTable(ctx, req.PartySize)
		if err != nil {
			return domain.Reservation{}, err
		}
		tableNumber = table.TableNumber
	}

	created, err := s.repo.CreateReservation(ctx, domain.Reservation{
		FullName:    req.FullName,
		Email:       req.Email,
		Phone:       strings.TrimSpace(req.Phone),
		PartySize:   req.PartySize,
		ArrivalDate: req.ArrivalDate,
		ArrivalTime: req.ArrivalTime,
		Purpose:     strings.TrimSpace(req.Purpose),
		TableNumber: tableNumber,
	})
	if err != nil {
		return domain.Reservation{}, err
	}
	return *created, nil
}

func (s *Service) smallestFittingTable(ctx context.Context, partySize int) (domain.Table, error) {
	tables, err := s.repo.ListTables(ctx)
	if err != nil {
		return domain.Table{}, err
	}
	best := domain.Table{}
	for _, table := range tables {
		if table.SeatingCapacity < partySize {
			continue
		}
		if best.TableNumber == 0 || table.SeatingCapacity < best.SeatingCapacity {
			best = table
		}
	}
	if best.TableNumber == 0 {
		return domain.Table{}, fmt.Errorf("no table seats a party of %d: %w", partySize, store.ErrInvalidInput)
	}
	return best, nil
}

func (s *Service) GetReservation(ctx context.Context, id string) (domain.Reservation, error) {
	reservation, err := s.repo.GetReservationByID(ctx, id)
	if err != nil {
		return domain.Reservation{}, err
	}
	return *reservation, nil
}

func (s *Service) ListReservations(ctx context.Context, limit int) ([]domain.Reservation, error) {
	return s.repo.ListReservations(ctx, limit)
}

// StartService records the moment the first course reached the table. The
// late-dining surcharge window is measured from this timestamp.
func (s *Service) StartService(ctx context.Context, reservationID string) (domain.Reservation, error) {
	reservation, err := s.repo.MarkServiceStarted(ctx, reservationID, s.now())
	if err != nil {
		return domain.Reservation{}, err
	}
	return *reservation, nil
}

func (s *Service) StartSession() string {
	return s.carts.StartSession()
}

func (s *Service) AddToCart(ctx context.Context, sessionID string, itemID string) (domain.CartView, error) {
	c, err := s.carts.Get(sessionID)
	if err != nil {
		return domain.CartView{}, err
	}

	items, err := s.repo.GetMenuItemsByIDs(ctx, []string{itemID})
	if err != nil {
		return domain.CartView{}, err
	}
	item, ok := items[itemID]
	if !ok {
		return domain.CartView{}, store.ErrNotFound
	}

	c.AddOrIncrement(item)
	return s.cartView(sessionID, c), nil
}

func (s *Service) SetCartQuantity(sessionID string, itemID string, qty int) (domain.CartView, error) {
	c, err := s.carts.Get(sessionID)
	if err != nil {
		return domain.CartView{}, err
	}
	c.SetQuantity(itemID, qty)
	return s.cartView(sessionID, c), nil
}

func (s *Service) RemoveFromCart(sessionID string, itemID string) (domain.CartView, error) {
	c, err := s.carts.Get(sessionID)
	if err != nil {
		return domain.CartView{}, err
	}
	c.Remove(itemID)
	return s.cartView(sessionID, c), nil
}

func (s *Service) GetCart(sessionID string) (domain.CartView, error) {
	c, err := s.carts.Get(sessionID)
	if err != nil {
		return domain.CartView{}, err
	}
	return s.cartView(sessionID, c), nil
}

// CancelCart empties the session's cart and forgets any frozen bill tied to
// the session.
func (s *Service) CancelCart(sessionID string) error {
	c, err := s.carts.Get(sessionID)
	if err != nil {
		return err
	}
	c.Clear()

	s.mu.Lock()
	defer s.mu.Unlock()
	if billID, ok := s.billBySession[sessionID]; ok {
		delete(s.billsByID, billID)
		delete(s.billBySession, sessionID)
	}
	return nil
}

func (s *Service) cartView(sessionID string, c *cart.Cart) domain.CartView {
	return domain.CartView{
		SessionID: sessionID,
		Items:     c.Items(),
		Totals:    c.Totals(pricing.TaxRatePercent, s.now()),
	}
}

// PreviewBill composes and freezes a bill for the session. A previous bill
// for the same session is superseded, never mutated.
func (s *Service) PreviewBill(ctx context.Context, sessionID string, reservationID string) (domain.CheckoutResponse, error) {
	c, err := s.carts.Get(sessionID)
	if err != nil {
		return domain.CheckoutResponse{}, err
	}

	reservation, err := s.repo.GetReservationByID(ctx, reservationID)
	if err != nil {
		return domain.CheckoutResponse{}, err
	}

	// A missing table row falls back to a bare table number; any other
	// repo failure must surface rather than compose a bill with it.
	table := domain.Table{TableNumber: reservation.TableNumber}
	if found, err := s.repo.GetTableByNumber(ctx, reservation.TableNumber); err == nil {
		table = *found
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.CheckoutResponse{}, err
	}

	bill, err := billing.Compose(c.Items(), *reservation, table, s.now())
	if err != nil {
		return domain.CheckoutResponse{}, err
	}

	s.mu.Lock()
	if previous, ok := s.billBySession[sessionID]; ok {
		delete(s.billsByID, previous)
	}
	s.billsByID[bill.BillID] = *bill
	s.billBySession[sessionID] = bill.BillID
	s.mu.Unlock()

	log.Printf("[service] bill composed id=%s session=%s total=%d", bill.BillID, sessionID, bill.Total)
	return domain.CheckoutResponse{Bill: *bill, Preview: preview.Render(*bill)}, nil
}

func (s *Service) GetBill(billID string) (domain.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bill, ok := s.billsByID[billID]
	if !ok {
		return domain.Bill{}, store.ErrNotFound
	}
	return bill, nil
}

// RenderBillDocument renders the PDF artifact, falling back to the text
// renderer when the PDF engine is unavailable. Any other failure surfaces.
func (s *Service) RenderBillDocument(billID string) (domain.DocumentArtifact, error) {
	bill, err := s.GetBill(billID)
	if err != nil {
		return domain.DocumentArtifact{}, err
	}

	artifact, err := s.renderer.Render(bill)
	if err == nil {
		return artifact, nil
	}
	if errors.Is(err, document.ErrRendererUnavailable) && s.fallback != nil {
		log.Printf("[service] WARN: pdf renderer unavailable for bill=%s, using text fallback: %v", billID, err)
		return s.fallback.Render(bill)
	}
	return domain.DocumentArtifact{}, err
}

// EmailBill dispatches the bill to the recipient, optionally attaching the
// rendered document. Attachment rendering failure downgrades to a body-only
// email rather than blocking the send.
func (s *Service) EmailBill(ctx context.Context, billID string, recipient string, attachDocument bool) (domain.NotificationReceipt, error) {
	bill, err := s.GetBill(billID)
	if err != nil {
		return domain.NotificationReceipt{}, err
	}

	var attachment *domain.DocumentArtifact
	if attachDocument {
		artifact, err := s.RenderBillDocument(billID)
		if err != nil {
			log.Printf("[service] WARN: could not render attachment for bill=%s: %v", billID, err)
		} else {
			attachment = &artifact
		}
	}

	receipt, err := s.dispatcher.Dispatch(ctx, bill, recipient, attachment)
	if err != nil {
		return domain.NotificationReceipt{}, err
	}
	log.Printf("[service] bill emailed id=%s message=%s transport=%s", billID, receipt.MessageID, receipt.Transport)
	return receipt, nil
}

// Checkout freezes the bill (composing one if no preview happened), bumps
// popularity counters for the ordered dishes, and clears the cart.
func (s *Service) Checkout(ctx context.Context, sessionID string, reservationID string) (domain.CheckoutResponse, error) {
	resp, err := s.PreviewBill(ctx, sessionID, reservationID)
	if err != nil {
		return domain.CheckoutResponse{}, err
	}

	for _, item := range resp.Bill.LineItems {
		if err := s.repo.IncrementOrdersPlaced(ctx, item.ItemID, int64(item.Quantity)); err != nil {
			log.Printf("[service] WARN: failed to bump orders placed item=%s: %v", item.ItemID, err)
		}
	}
	if err := s.menuCache.Invalidate(ctx, menuCacheKey); err != nil {
		log.Printf("[service] WARN: menu cache invalidate failed: %v", err)
	}

	if c, err := s.carts.Get(sessionID); err == nil {
		c.Clear()
	}

	log.Printf("[service] checkout complete bill=%s session=%s total=%d", resp.Bill.BillID, sessionID, resp.Bill.Total)
	return resp, nil
}
