package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/entrega-app/entrega/internal/domain/cart"
	"github.com/entrega-app/entrega/internal/domain/catalog"
	"github.com/entrega-app/entrega/internal/domain/promo"
)

// writeCart renders the session's current lines and freshly computed totals.
func (h *Handler) writeCart(w http.ResponseWriter, sessionID string, status int) {
	var e jx.Encoder
	encodeCartView(&e, h.carts.Lines(sessionID), h.carts.Totals(sessionID))
	writeJSON(w, status, &e)
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w, session(w, r), http.StatusOK)
}

// addCartItem resolves the item from the catalog and adds it to the session
// cart. Name, price, and restaurant identity always come from the catalog,
// never from the client.
func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := session(w, r)

	body, ok := readBody(w, r)
	if !ok {
		return
	}
	req, err := decodeAddItemRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.ItemID == "" {
		writeError(w, http.StatusBadRequest, "itemId required")
		return
	}

	item, err := h.catalog.GetItem(ctx, req.ItemID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusUnprocessableEntity, "menu item "+req.ItemID+" not found")
			return
		}
		zctx.From(ctx).Error("Get menu item", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	rest, err := h.catalog.GetRestaurant(ctx, item.RestaurantID)
	if err != nil {
		zctx.From(ctx).Error("Get restaurant for item", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.carts.AddLine(sessionID, cart.Candidate{
		ItemID:         item.ID,
		Name:           item.Name,
		UnitPrice:      item.Price,
		RestaurantID:   rest.ID,
		RestaurantName: rest.Name,
		Image:          item.Image,
		Customizations: req.Customizations,
		Note:           req.Note,
	})

	h.writeCart(w, sessionID, http.StatusOK)
}

// updateCartItem sets a line's quantity. A quantity of zero or less removes
// the line; an unknown key is a no-op.
func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	sessionID := session(w, r)

	body, ok := readBody(w, r)
	if !ok {
		return
	}
	req, err := decodeQuantityRequest(body)
	if err != nil || !req.Set {
		writeError(w, http.StatusBadRequest, "quantity required")
		return
	}

	h.carts.SetQuantity(sessionID, r.PathValue("key"), req.Quantity)
	h.writeCart(w, sessionID, http.StatusOK)
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	sessionID := session(w, r)
	h.carts.RemoveLine(sessionID, r.PathValue("key"))
	h.writeCart(w, sessionID, http.StatusOK)
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	sessionID := session(w, r)
	h.carts.Clear(sessionID)
	h.writeCart(w, sessionID, http.StatusOK)
}

// applyPromo validates the code against the promo index and attaches its
// discount to the session cart. The discount is recomputed from the live
// lines on every totals read, so later cart edits are always reflected.
func (h *Handler) applyPromo(w http.ResponseWriter, r *http.Request) {
	sessionID := session(w, r)

	body, ok := readBody(w, r)
	if !ok {
		return
	}
	req, err := decodePromoRequest(body)
	if err != nil || req.Code == "" {
		writeError(w, http.StatusBadRequest, "code required")
		return
	}

	rule, err := h.promos.Lookup(req.Code)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid promo code")
		return
	}

	h.carts.ApplyDiscount(sessionID, discountFor(rule))
	h.writeCart(w, sessionID, http.StatusOK)
}

// discountFor adapts a promo rule into the cart's DiscountFunc. Ineligible
// carts (e.g. below the rule's minimum item count) get a zero discount
// rather than an error; eligibility is re-checked on every recompute.
func discountFor(rule *promo.Rule) cart.DiscountFunc {
	return func(lines []cart.Line) decimal.Decimal {
		items := make([]promo.Item, len(lines))
		for i, l := range lines {
			items[i] = promo.Item{
				ItemID:   l.ItemID,
				Price:    l.UnitPrice,
				Quantity: l.Quantity,
			}
		}
		amount, err := promo.Apply(rule, items)
		if err != nil {
			return decimal.Zero
		}
		return amount
	}
}
