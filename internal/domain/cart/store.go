package cart

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Store owns all active carts, keyed by session ID. Every mutation and read
// is guarded so concurrent requests for the same session never observe a
// torn cart. Carts are created lazily on first use and live for the process
// lifetime; there is no eviction.
type Store struct {
	mu          sync.RWMutex
	carts       map[string]*cart
	deliveryFee decimal.Decimal
}

// NewStore creates a Store with the given fixed per-order delivery fee.
func NewStore(deliveryFee decimal.Decimal) *Store {
	return &Store{
		carts:       make(map[string]*cart),
		deliveryFee: deliveryFee,
	}
}

// get returns the session's cart, creating it if needed. Caller holds mu.
func (s *Store) get(sessionID string) *cart {
	c, ok := s.carts[sessionID]
	if !ok {
		c = &cart{}
		s.carts[sessionID] = c
	}
	return c
}

// AddLine adds the candidate to the session's cart. If a line with the same
// item and customization list already exists its quantity increments by one;
// otherwise a new line is appended with quantity 1. AddLine cannot fail.
func (s *Store) AddLine(sessionID string, cand Candidate) Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.get(sessionID).add(cand)
	out := *l
	out.Customizations = append([]string(nil), l.Customizations...)
	return out
}

// RemoveLine removes the line with the given key. Removing an absent key is
// a no-op, not an error.
func (s *Store) RemoveLine(sessionID, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.get(sessionID).remove(key)
}

// SetQuantity sets the quantity of the line with the given key. A quantity
// of zero or less removes the line. Setting an absent key is a no-op.
func (s *Store) SetQuantity(sessionID, key string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.get(sessionID).setQuantity(key, quantity)
}

// Checkout atomically freezes the session's cart: it returns value copies of
// the lines and the totals computed from those exact lines, then empties the
// cart, all under a single lock acquisition. Concurrent mutations can never
// tear the snapshot, and only one of two concurrent checkouts can win. ok is
// false when the cart is empty, which leaves the cart untouched.
func (s *Store) Checkout(sessionID string) (lines []Line, totals Totals, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, found := s.carts[sessionID]
	if !found || len(c.lines) == 0 {
		return nil, Totals{}, false
	}
	lines = c.snapshot()
	totals = c.totals(s.deliveryFee)
	delete(s.carts, sessionID)
	return lines, totals, true
}

// Clear empties the session's cart unconditionally, dropping any applied
// promo along with the lines.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, sessionID)
}

// ApplyDiscount attaches a discount computation to the session's cart. The
// function runs on every subsequent totals read; pass nil to detach.
func (s *Store) ApplyDiscount(sessionID string, fn DiscountFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.get(sessionID).discount = fn
}

// Lines returns value copies of the session's lines in insertion order.
func (s *Store) Lines(sessionID string) []Line {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.carts[sessionID]
	if !ok {
		return nil
	}
	return c.snapshot()
}

// Totals recomputes the session's derived totals from the current lines.
// It is a pure query with no side effects and is never memoized.
func (s *Store) Totals(sessionID string) Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.carts[sessionID]
	if !ok {
		// GrandTotal = Subtotal + DeliveryFee - Discount holds for every
		// cart state, including an empty one.
		return (&cart{}).totals(s.deliveryFee)
	}
	return c.totals(s.deliveryFee)
}
