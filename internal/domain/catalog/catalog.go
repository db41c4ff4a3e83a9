// Package catalog provides the restaurant and menu data the storefront
// browses. The demo catalog is static: loaded once at startup and read-only
// afterwards.
package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested restaurant or menu item does not
// exist.
var ErrNotFound = errors.New("catalog entry not found")

// Restaurant is a storefront a shopper can order from.
type Restaurant struct {
	ID              string
	Name            string
	Category        string
	Rating          float64
	DeliveryMinutes string
	DeliveryFee     decimal.Decimal
	DistanceKm      float64
	Image           string
	Description     string
}

// MenuItem is one orderable entry on a restaurant's menu.
type MenuItem struct {
	ID           string
	RestaurantID string
	Section      string
	Name         string
	Description  string
	Price        decimal.Decimal
	Image        string
	// Customizations are the selectable options for this item, in fixed
	// menu order ("Borda recheada (+R$ 5)", "Sem cebola", ...).
	Customizations []string
}

// Repository defines read operations over the catalog.
type Repository interface {
	ListRestaurants(ctx context.Context) ([]Restaurant, error)
	GetRestaurant(ctx context.Context, id string) (*Restaurant, error)
	ListMenu(ctx context.Context, restaurantID string) ([]MenuItem, error)
	GetItem(ctx context.Context, id string) (*MenuItem, error)
	Search(ctx context.Context, query string) ([]Restaurant, error)
}
