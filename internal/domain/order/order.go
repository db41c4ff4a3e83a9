// Package order implements the order ledger: immutable-after-creation order
// snapshots and a timer-driven delivery status simulation.
package order

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/entrega-app/entrega/internal/domain/cart"
)

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

// Status is the delivery state of an order. The sequence is forward-only:
// confirmed -> preparing -> on_way -> delivered. No state is ever skipped
// or revisited.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusOnWay     Status = "on_way"
	StatusDelivered Status = "delivered"
)

var statusSequence = []Status{
	StatusConfirmed,
	StatusPreparing,
	StatusOnWay,
	StatusDelivered,
}

// index returns the position of s in the status sequence, or -1.
func (s Status) index() int {
	for i, st := range statusSequence {
		if st == s {
			return i
		}
	}
	return -1
}

// Next returns the status following s. ok is false when s is terminal or
// unknown.
func (s Status) Next() (next Status, ok bool) {
	i := s.index()
	if i < 0 || i == len(statusSequence)-1 {
		return s, false
	}
	return statusSequence[i+1], true
}

// Terminal reports whether s is the final delivery state.
func (s Status) Terminal() bool {
	return s == StatusDelivered
}

// Progress returns the tracking progress for s as a percentage in [0, 100].
// Each reached step contributes an equal share, so confirmed is 25 and
// delivered is 100.
func (s Status) Progress() int {
	i := s.index()
	if i < 0 {
		return 0
	}
	return (i + 1) * 100 / len(statusSequence)
}

// Courier is the delivery person assigned to an order once it transitions
// into on_way. The record is fixed from assignment onward.
type Courier struct {
	Name   string
	Photo  string
	Rating float64
}

// Order is a finalized purchase. Items and pricing are frozen at creation;
// only Status, Courier, and UpdatedAt change afterwards, and only via the
// ledger's simulation.
type Order struct {
	ID              string
	Items           []cart.Line
	Status          Status
	Subtotal        decimal.Decimal
	DeliveryFee     decimal.Decimal
	Discount        decimal.Decimal
	Total           decimal.Decimal
	DeliveryAddress string
	PaymentMethod   string
	EtaMinutes      int
	Courier         *Courier
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// clone returns a value snapshot safe to hand to readers.
func (o *Order) clone() Order {
	out := *o
	out.Items = append([]cart.Line(nil), o.Items...)
	if o.Courier != nil {
		c := *o.Courier
		out.Courier = &c
	}
	return out
}
