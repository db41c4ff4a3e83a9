// Package promo implements promotional discount codes: a membership index
// over the shipped code list and the discount math applied at totals time.
package promo

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported discount strategies.
type DiscountType string

const (
	// DiscountPercentage takes a percentage off the cart subtotal.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixed takes a fixed amount off, capped at the subtotal.
	DiscountFixed DiscountType = "fixed"
	// DiscountFreeLowest makes the cheapest unit in the cart free.
	DiscountFreeLowest DiscountType = "free_lowest"
)

// ErrInvalidCode is returned when a promo code is not in the code list or
// the cart does not meet the code's minimum item requirement.
var ErrInvalidCode = errors.New("invalid promo code")

// Rule defines a promo code's discount behaviour and eligibility.
type Rule struct {
	Code         string
	DiscountType DiscountType
	Value        decimal.Decimal
	MinItems     int
	Description  string
}

// Item is a cart line reduced to what discount math needs.
type Item struct {
	ItemID   string
	Price    decimal.Decimal
	Quantity int
}

var hundred = decimal.NewFromInt(100)

// Apply computes the discount the rule grants over the given items. It
// returns ErrInvalidCode when the cart does not meet the rule's minimum
// item count.
func Apply(rule *Rule, items []Item) (decimal.Decimal, error) {
	if rule.MinItems > 0 && totalQuantity(items) < rule.MinItems {
		return decimal.Zero, ErrInvalidCode
	}

	switch rule.DiscountType {
	case DiscountPercentage:
		amount := subtotal(items).Mul(rule.Value).Div(hundred)
		return clampRound(amount), nil
	case DiscountFixed:
		return clampRound(decimal.Min(rule.Value, subtotal(items))), nil
	case DiscountFreeLowest:
		return clampRound(lowestUnitPrice(items)), nil
	default:
		return decimal.Zero, errors.Errorf("unsupported discount type: %q", rule.DiscountType)
	}
}

func subtotal(items []Item) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum
}

func totalQuantity(items []Item) int {
	total := 0
	for _, it := range items {
		total += it.Quantity
	}
	return total
}

// lowestUnitPrice returns the cheapest unit price, or zero for no items.
func lowestUnitPrice(items []Item) decimal.Decimal {
	if len(items) == 0 {
		return decimal.Zero
	}
	lowest := items[0].Price
	for _, it := range items[1:] {
		if it.Price.LessThan(lowest) {
			lowest = it.Price
		}
	}
	return lowest
}

// clampRound floors negative amounts at zero and rounds to cents.
func clampRound(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d.Round(2)
}
