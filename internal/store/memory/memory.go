package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"dine24/backend/internal/domain"
	"dine24/backend/internal/store"
	"dine24/backend/internal/xid"
)

type Store struct {
	mu             sync.RWMutex
	menuItems      map[string]domain.MenuItem
	tables         map[int]domain.Table
	reservations   map[string]domain.Reservation
	reservationIDs []string
}

func New() *Store {
	return &Store{
		menuItems:    make(map[string]domain.MenuItem),
		tables:       make(map[int]domain.Table),
		reservations: make(map[string]domain.Reservation),
	}
}

// NewSeeded returns a store preloaded with the standard menu and the fixed
// table layout, for dev/demo mode when no database is configured.
func NewSeeded() *Store {
	items := []domain.MenuItem{
		{ID: "item-butter-chicken", Name: "Butter Chicken", Category: "Main Course", Price: 450, PortionSize: "Full", Rating: 4.8, Active: true},
		{ID: "item-paneer-tikka", Name: "Paneer Tikka", Category: "Starters", Price: 320, PortionSize: "8 pcs", Rating: 4.6, IsVegetarian: true, Active: true},
		{ID: "item-biryani", Name: "Hyderabadi Biryani", Category: "Main Course", Price: 280, OfferPrice: 250, PortionSize: "Full", Rating: 4.7, Active: true},
		{ID: "item-dosa", Name: "Masala Dosa", Category: "South Indian", Price: 90, PortionSize: "1 pc", Rating: 4.5, IsVegetarian: true, Active: true},
		{ID: "item-dal-makhani", Name: "Dal Makhani", Category: "Main Course", Price: 260, PortionSize: "Full", Rating: 4.4, IsVegetarian: true, Active: true},
		{ID: "item-tandoori-roti", Name: "Tandoori Roti", Category: "Breads", Price: 30, PortionSize: "1 pc", Rating: 4.2, IsVegetarian: true, Active: true},
		{ID: "item-gulab-jamun", Name: "Gulab Jamun", Category: "Desserts", Price: 120, OfferPrice: 100, PortionSize: "2 pcs", Rating: 4.6, IsVegetarian: true, Active: true},
		{ID: "item-mango-lassi", Name: "Mango Lassi", Category: "Beverages", Price: 110, PortionSize: "300 ml", Rating: 4.5, IsVegetarian: true, Active: true},
	}

	s := New()
	for _, item := range items {
		s.menuItems[item.ID] = item
	}

	number := 1
	for _, capacity := range []int{2, 2, 4, 4, 4, 6, 6, 8} {
		s.tables[number] = domain.Table{TableNumber: number, SeatingCapacity: capacity}
		number++
	}

	return s
}

func (s *Store) ListMenuItems(_ context.Context) ([]domain.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.MenuItem, 0, len(s.menuItems))
	for _, item := range s.menuItems {
		if !item.Active {
			continue
		}
		items = append(items, item)
	}

	slices.SortFunc(items, func(a, b domain.MenuItem) int {
		if a.Category == b.Category {
			return cmpString(a.Name, b.Name)
		}
		return cmpString(a.Category, b.Category)
	})

	return items, nil
}

func (s *Store) GetMenuItemsByIDs(_ context.Context, ids []string) (map[string]domain.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]domain.MenuItem, len(ids))
	for _, id := range ids {
		if item, ok := s.menuItems[id]; ok && item.Active {
			result[id] = item
		}
	}
	return result, nil
}

func (s *Store) CreateMenuItem(_ context.Context, item domain.MenuItem) (*domain.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item.ID == "" || item.Name == "" || item.Category == "" || item.Price < 1 {
		return nil, store.ErrInvalidInput
	}
	if item.OfferPrice < 0 || item.OfferPrice > item.Price {
		return nil, store.ErrInvalidInput
	}
	if _, exists := s.menuItems[item.ID]; exists {
		return nil, store.ErrInvalidInput
	}

	item.Active = true
	s.menuItems[item.ID] = item
	created := item
	return &created, nil
}

func (s *Store) IncrementOrdersPlaced(_ context.Context, itemID string, by int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.menuItems[itemID]
	if !ok {
		return store.ErrNotFound
	}
	item.OrdersPlaced += by
	s.menuItems[itemID] = item
	return nil
}

func (s *Store) ListTables(_ context.Context) ([]domain.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tables := make([]domain.Table, 0, len(s.tables))
	for _, table := range s.tables {
		tables = append(tables, table)
	}
	slices.SortFunc(tables, func(a, b domain.Table) int {
		return a.TableNumber - b.TableNumber
	})
	return tables, nil
}

func (s *Store) GetTableByNumber(_ context.Context, number int) (*domain.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	table, ok := s.tables[number]
	if !ok {
		return nil, store.ErrNotFound
	}
	found := table
	return &found, nil
}

func (s *Store) CreateReservation(_ context.Context, reservation domain.Reservation) (*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if reservation.FullName == "" || reservation.Email == "" || reservation.PartySize < 1 {
		return nil, store.ErrInvalidInput
	}
	if reservation.ID == "" {
		reservation.ID = xid.Reservation(time.Now())
	}
	if reservation.CreatedAt.IsZero() {
		reservation.CreatedAt = time.Now().UTC()
	}
	if reservation.Status == "" {
		reservation.Status = domain.ReservationStatusConfirmed
	}
	if _, exists := s.reservations[reservation.ID]; exists {
		return nil, store.ErrInvalidInput
	}

	s.reservations[reservation.ID] = cloneReservation(reservation)
	s.reservationIDs = append(s.reservationIDs, reservation.ID)
	created := cloneReservation(reservation)
	return &created, nil
}

func (s *Store) GetReservationByID(_ context.Context, id string) (*domain.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reservation, ok := s.reservations[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	found := cloneReservation(reservation)
	return &found, nil
}

func (s *Store) ListReservations(_ context.Context, limit int) ([]domain.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit < 1 || limit > len(s.reservationIDs) {
		limit = len(s.reservationIDs)
	}

	reservations := make([]domain.Reservation, 0, limit)
	// Newest first.
	for i := len(s.reservationIDs) - 1; i >= 0 && len(reservations) < limit; i-- {
		reservations = append(reservations, cloneReservation(s.reservations[s.reservationIDs[i]]))
	}
	return reservations, nil
}

func (s *Store) MarkServiceStarted(_ context.Context, id string, at time.Time) (*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reservation, ok := s.reservations[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if reservation.ServiceStartedAt == nil {
		startedAt := at.UTC()
		reservation.ServiceStartedAt = &startedAt
		reservation.Status = domain.ReservationStatusSeated
		s.reservations[id] = reservation
	}
	updated := cloneReservation(reservation)
	return &updated, nil
}

func cloneReservation(r domain.Reservation) domain.Reservation {
	clone := r
	if r.ServiceStartedAt != nil {
		startedAt := *r.ServiceStartedAt
		clone.ServiceStartedAt = &startedAt
	}
	return clone
}

func cmpString(a, b string) int {
	return strings.Compare(a, b)
}
