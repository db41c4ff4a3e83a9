// Package handler exposes the storefront over HTTP: catalog browsing,
// session-scoped cart operations, checkout, and order tracking. JSON bodies
// are encoded and decoded with go-faster/jx.
package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/entrega-app/entrega/internal/domain/cart"
	"github.com/entrega-app/entrega/internal/domain/catalog"
	"github.com/entrega-app/entrega/internal/domain/order"
	"github.com/entrega-app/entrega/internal/domain/promo"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// DefaultEtaMinutes is the estimated delivery time stamped on new orders.
	DefaultEtaMinutes int

	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

// Handler serves the storefront API, delegating to the injected catalog,
// cart store, promo index, and order ledger.
type Handler struct {
	catalog catalog.Repository
	carts   *cart.Store
	promos  *promo.Index
	ledger  *order.Ledger

	etaMinutes   int
	tracer       trace.Tracer
	ordersPlaced metric.Int64Counter
}

// New constructs a Handler with the required domain dependencies.
func New(
	cfg Config,
	cat catalog.Repository,
	carts *cart.Store,
	promos *promo.Index,
	ledger *order.Ledger,
) (*Handler, error) {
	if cfg.DefaultEtaMinutes <= 0 {
		cfg.DefaultEtaMinutes = 35
	}

	h := &Handler{
		catalog:    cat,
		carts:      carts,
		promos:     promos,
		ledger:     ledger,
		etaMinutes: cfg.DefaultEtaMinutes,
		tracer:     cfg.TracerProvider.Tracer("entrega/handler"),
	}

	meter := cfg.MeterProvider.Meter("entrega/handler")
	ordersPlaced, err := meter.Int64Counter("entrega.orders.placed",
		metric.WithDescription("Orders placed through checkout"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create orders counter")
	}
	h.ordersPlaced = ordersPlaced

	return h, nil
}

// Register installs all API routes on the given mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/restaurants", h.listRestaurants)
	mux.HandleFunc("GET /api/restaurants/{id}", h.getRestaurant)
	mux.HandleFunc("GET /api/restaurants/{id}/menu", h.listMenu)

	mux.HandleFunc("GET /api/cart", h.getCart)
	mux.HandleFunc("POST /api/cart/items", h.addCartItem)
	mux.HandleFunc("PATCH /api/cart/items/{key}", h.updateCartItem)
	mux.HandleFunc("DELETE /api/cart/items/{key}", h.removeCartItem)
	mux.HandleFunc("DELETE /api/cart", h.clearCart)
	mux.HandleFunc("POST /api/cart/promo", h.applyPromo)

	mux.HandleFunc("POST /api/checkout", h.checkout)
	mux.HandleFunc("GET /api/orders/{id}", h.getOrder)
}
