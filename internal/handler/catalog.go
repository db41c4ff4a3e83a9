package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/entrega-app/entrega/internal/domain/catalog"
)

// listRestaurants returns all restaurants, optionally filtered by the `q`
// query parameter (case-insensitive name/category search).
func (h *Handler) listRestaurants(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	restaurants, err := h.catalog.Search(ctx, r.URL.Query().Get("q"))
	if err != nil {
		zctx.From(ctx).Error("List restaurants", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("restaurants", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, rest := range restaurants {
					encodeRestaurant(e, rest)
				}
			})
		})
	})
	writeJSON(w, http.StatusOK, &e)
}

func (h *Handler) getRestaurant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rest, err := h.catalog.GetRestaurant(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "restaurant not found")
			return
		}
		zctx.From(ctx).Error("Get restaurant", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	var e jx.Encoder
	encodeRestaurant(&e, *rest)
	writeJSON(w, http.StatusOK, &e)
}

// listMenu returns the restaurant's menu in seed order. Sections repeat per
// item; grouping is a view concern.
func (h *Handler) listMenu(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	items, err := h.catalog.ListMenu(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "restaurant not found")
			return
		}
		zctx.From(ctx).Error("List menu", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, it := range items {
					encodeMenuItem(e, it)
				}
			})
		})
	})
	writeJSON(w, http.StatusOK, &e)
}
