// Package cart implements the session-scoped shopping cart: line items keyed
// by (menu item, customization set), quantity semantics, and derived totals.
package cart

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Line is one purchasable unit in a cart. Two adds of the same menu item with
// an identical customization list merge into a single line; a different
// customization list produces a distinct line even for the same item.
type Line struct {
	// Key uniquely identifies the line within its cart. It is derived from
	// the item ID and the ordered customization list (see LineKey).
	Key            string
	ItemID         string
	Name           string
	UnitPrice      decimal.Decimal
	Quantity       int
	RestaurantID   string
	RestaurantName string
	Image          string
	Customizations []string
	// Note is free-text prep instructions ("sem cebola, por favor").
	Note string
}

// Subtotal returns UnitPrice * Quantity for this line.
func (l *Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// LineKey derives the cart line identity for a menu item and its ordered
// customization list. Customizations are selected in fixed menu order, so
// order-sensitive equality is intentional. Each customization segment is
// length-prefixed, so a label containing the separator cannot collide with a
// differently split list.
func LineKey(itemID string, customizations []string) string {
	if len(customizations) == 0 {
		return itemID
	}
	var b strings.Builder
	b.WriteString(itemID)
	for _, c := range customizations {
		b.WriteByte('|')
		b.WriteString(strconv.Itoa(len(c)))
		b.WriteByte(':')
		b.WriteString(c)
	}
	return b.String()
}

// Candidate describes an item being added to a cart. UnitPrice is assumed
// non-negative; callers resolve it from the catalog before adding.
type Candidate struct {
	ItemID         string
	Name           string
	UnitPrice      decimal.Decimal
	RestaurantID   string
	RestaurantName string
	Image          string
	Customizations []string
	Note           string
}

// Totals holds the derived values for a cart. They are recomputed from the
// current lines on every read and never cached.
type Totals struct {
	// ItemCount is the sum of all line quantities.
	ItemCount int
	// Subtotal is the sum of UnitPrice * Quantity across all lines.
	Subtotal decimal.Decimal
	// DeliveryFee is the fixed per-order fee.
	DeliveryFee decimal.Decimal
	// Discount is the promo discount applied to the current lines, clamped
	// to Subtotal. Zero when no promo is active.
	Discount decimal.Decimal
	// GrandTotal = Subtotal + DeliveryFee - Discount, floored at zero.
	GrandTotal decimal.Decimal
}

// DiscountFunc computes a discount amount for the given lines. It is invoked
// on every totals read so the discount always reflects the current cart
// contents. Implementations must not retain or mutate the lines.
type DiscountFunc func(lines []Line) decimal.Decimal

// cart is the per-session line collection. All access goes through Store,
// which holds the lock.
type cart struct {
	lines    []*Line
	discount DiscountFunc
}

func (c *cart) find(key string) (int, *Line) {
	for i, l := range c.lines {
		if l.Key == key {
			return i, l
		}
	}
	return -1, nil
}

// add merges the candidate into an existing line or appends a new one with
// quantity 1.
func (c *cart) add(cand Candidate) *Line {
	key := LineKey(cand.ItemID, cand.Customizations)
	if _, l := c.find(key); l != nil {
		l.Quantity++
		return l
	}
	l := &Line{
		Key:            key,
		ItemID:         cand.ItemID,
		Name:           cand.Name,
		UnitPrice:      cand.UnitPrice,
		Quantity:       1,
		RestaurantID:   cand.RestaurantID,
		RestaurantName: cand.RestaurantName,
		Image:          cand.Image,
		Customizations: append([]string(nil), cand.Customizations...),
		Note:           cand.Note,
	}
	c.lines = append(c.lines, l)
	return l
}

func (c *cart) remove(key string) {
	if i, _ := c.find(key); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

// setQuantity sets the line's quantity. A quantity <= 0 removes the line, so
// a zero or negative quantity is never stored.
func (c *cart) setQuantity(key string, quantity int) {
	if quantity <= 0 {
		c.remove(key)
		return
	}
	if _, l := c.find(key); l != nil {
		l.Quantity = quantity
	}
}

// snapshot returns value copies of the lines in insertion order.
func (c *cart) snapshot() []Line {
	out := make([]Line, len(c.lines))
	for i, l := range c.lines {
		out[i] = *l
		out[i].Customizations = append([]string(nil), l.Customizations...)
	}
	return out
}

// totals recomputes all derived values from the current lines.
func (c *cart) totals(deliveryFee decimal.Decimal) Totals {
	t := Totals{
		Subtotal:    decimal.Zero,
		DeliveryFee: deliveryFee,
		Discount:    decimal.Zero,
	}
	for _, l := range c.lines {
		t.ItemCount += l.Quantity
		t.Subtotal = t.Subtotal.Add(l.Subtotal())
	}
	if c.discount != nil {
		t.Discount = c.discount(c.snapshot())
		if t.Discount.IsNegative() {
			t.Discount = decimal.Zero
		}
		if t.Discount.GreaterThan(t.Subtotal) {
			t.Discount = t.Subtotal
		}
		t.Discount = t.Discount.Round(2)
	}
	t.GrandTotal = t.Subtotal.Add(t.DeliveryFee).Sub(t.Discount)
	if t.GrandTotal.IsNegative() {
		t.GrandTotal = decimal.Zero
	}
	return t
}
