// Package cart holds the per-session selection of menu items. A cart has a
// single logical writer (the owning session), so the cart itself is not
// locked; the Registry that maps sessions to carts is.
package cart

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"dine24/backend/internal/domain"
	"dine24/backend/internal/pricing"
	"dine24/backend/internal/store"
)

// Cart is an insertion-ordered collection of line items. Display order is
// encounter order.
type Cart struct {
	items []domain.LineItem
	index map[string]int
}

func New() *Cart {
	return &Cart{index: make(map[string]int)}
}

// AddOrIncrement bumps the quantity of an already-selected item by one, or
// appends the item with quantity one.
func (c *Cart) AddOrIncrement(item domain.MenuItem) {
	if pos, ok := c.index[item.ID]; ok {
		c.items[pos].Quantity++
		return
	}
	c.index[item.ID] = len(c.items)
	c.items = append(c.items, domain.LineItem{
		ItemID:       item.ID,
		Name:         item.Name,
		UnitPrice:    item.Price,
		OfferPrice:   item.OfferPrice,
		Quantity:     1,
		IsVegetarian: item.IsVegetarian,
	})
}

// SetQuantity clamps negative quantities to zero; zero removes the entry.
func (c *Cart) SetQuantity(itemID string, qty int) {
	pos, ok := c.index[itemID]
	if !ok {
		return
	}
	if qty < 0 {
		qty = 0
	}
	if qty == 0 {
		c.removeAt(pos)
		return
	}
	c.items[pos].Quantity = qty
}

// Remove is idempotent: removing an absent id is a no-op.
func (c *Cart) Remove(itemID string) {
	pos, ok := c.index[itemID]
	if !ok {
		return
	}
	c.removeAt(pos)
}

func (c *Cart) removeAt(pos int) {
	delete(c.index, c.items[pos].ItemID)
	c.items = append(c.items[:pos], c.items[pos+1:]...)
	for i := pos; i < len(c.items); i++ {
		c.index[c.items[i].ItemID] = i
	}
}

func (c *Cart) Clear() {
	c.items = nil
	c.index = make(map[string]int)
}

func (c *Cart) Len() int {
	return len(c.items)
}

// Items returns a copy; callers never see the backing slice.
func (c *Cart) Items() []domain.LineItem {
	items := make([]domain.LineItem, len(c.items))
	copy(items, c.items)
	return items
}

// Totals computes display totals for the current selection without composing
// a bill. The surcharge never applies here: it is a property of a served
// reservation, not of a cart being browsed.
func (c *Cart) Totals(taxRatePercent float64, now time.Time) domain.Totals {
	return pricing.ComputeTotals(c.items, taxRatePercent, now, nil)
}

// Registry owns the carts of all active sessions.
type Registry struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

func NewRegistry() *Registry {
	return &Registry{carts: make(map[string]*Cart)}
}

// StartSession creates an empty cart and returns its session id.
func (r *Registry) StartSession() string {
	sessionID := uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts[sessionID] = New()
	return sessionID
}

func (r *Registry) Get(sessionID string) (*Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.carts[sessionID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return c, nil
}

func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, sessionID)
}
