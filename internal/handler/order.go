package handler

import (
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/entrega-app/entrega/internal/domain/order"
)

// checkout freezes the session cart into a new order, clears the cart, and
// returns the order identifier. Payment is simulated: the method is stored
// as a plain label and never charged.
func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "checkout")
	defer span.End()

	sessionID := session(w, r)

	body, ok := readBody(w, r)
	if !ok {
		return
	}
	req, err := decodeCheckoutRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if strings.TrimSpace(req.DeliveryAddress) == "" {
		writeError(w, http.StatusBadRequest, "deliveryAddress required")
		return
	}
	if strings.TrimSpace(req.PaymentMethod) == "" {
		writeError(w, http.StatusBadRequest, "paymentMethod required")
		return
	}

	// Freeze and clear in one step so the stored totals always match the
	// frozen items and a cart can be checked out at most once.
	lines, totals, ok := h.carts.Checkout(sessionID)
	if !ok {
		writeError(w, http.StatusBadRequest, "cart is empty")
		return
	}

	o := h.ledger.Create(order.CreateRequest{
		Items:           lines,
		Totals:          totals,
		DeliveryAddress: req.DeliveryAddress,
		PaymentMethod:   req.PaymentMethod,
		EtaMinutes:      h.etaMinutes,
	})

	h.ordersPlaced.Add(ctx, 1, metric.WithAttributes(
		attribute.String("payment_method", req.PaymentMethod),
	))
	zctx.From(ctx).Info("Checkout completed",
		zap.String("order_id", o.ID),
		zap.Int("items", len(o.Items)),
	)

	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("orderId", func(e *jx.Encoder) { e.Str(o.ID) })
		e.Field("status", func(e *jx.Encoder) { e.Str(string(o.Status)) })
		e.Field("etaMinutes", func(e *jx.Encoder) { e.Int(o.EtaMinutes) })
		e.Field("total", func(e *jx.Encoder) { e.Float64(o.Total.InexactFloat64()) })
	})
	writeJSON(w, http.StatusCreated, &e)
}

// getOrder returns the order's current snapshot, reflecting the latest
// simulated status at call time. Tracking views poll this endpoint.
func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.ledger.Get(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		zctx.From(r.Context()).Error("Get order", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	var e jx.Encoder
	encodeOrder(&e, o)
	writeJSON(w, http.StatusOK, &e)
}
