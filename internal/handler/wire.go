package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/go-faster/jx"

	"github.com/entrega-app/entrega/internal/domain/cart"
	"github.com/entrega-app/entrega/internal/domain/catalog"
	"github.com/entrega-app/entrega/internal/domain/order"
)

// maxBodyBytes caps request bodies; no legitimate storefront request comes
// close to this.
const maxBodyBytes = 1 << 20

// writeJSON writes the encoder's buffer with the given status code.
func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError writes the {"code": ..., "message": ...} error body used across
// the API.
func writeError(w http.ResponseWriter, status int, message string) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("code", func(e *jx.Encoder) { e.Int(status) })
		e.Field("message", func(e *jx.Encoder) { e.Str(message) })
	})
	writeJSON(w, status, &e)
}

// readBody reads and returns the request body, bounded by maxBodyBytes.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "cannot read request body")
		return nil, false
	}
	return body, true
}

// --- Response encoding ---

func encodeRestaurant(e *jx.Encoder, r catalog.Restaurant) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(r.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(r.Name) })
		e.Field("category", func(e *jx.Encoder) { e.Str(r.Category) })
		e.Field("rating", func(e *jx.Encoder) { e.Float64(r.Rating) })
		e.Field("deliveryMinutes", func(e *jx.Encoder) { e.Str(r.DeliveryMinutes) })
		e.Field("deliveryFee", func(e *jx.Encoder) { e.Float64(r.DeliveryFee.InexactFloat64()) })
		e.Field("distanceKm", func(e *jx.Encoder) { e.Float64(r.DistanceKm) })
		e.Field("image", func(e *jx.Encoder) { e.Str(r.Image) })
		e.Field("description", func(e *jx.Encoder) { e.Str(r.Description) })
	})
}

func encodeMenuItem(e *jx.Encoder, it catalog.MenuItem) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(it.ID) })
		e.Field("restaurantId", func(e *jx.Encoder) { e.Str(it.RestaurantID) })
		e.Field("section", func(e *jx.Encoder) { e.Str(it.Section) })
		e.Field("name", func(e *jx.Encoder) { e.Str(it.Name) })
		e.Field("description", func(e *jx.Encoder) { e.Str(it.Description) })
		e.Field("price", func(e *jx.Encoder) { e.Float64(it.Price.InexactFloat64()) })
		e.Field("image", func(e *jx.Encoder) { e.Str(it.Image) })
		e.Field("customizations", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, c := range it.Customizations {
					e.Str(c)
				}
			})
		})
	})
}

func encodeLine(e *jx.Encoder, l cart.Line) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("key", func(e *jx.Encoder) { e.Str(l.Key) })
		e.Field("itemId", func(e *jx.Encoder) { e.Str(l.ItemID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(l.Name) })
		e.Field("unitPrice", func(e *jx.Encoder) { e.Float64(l.UnitPrice.InexactFloat64()) })
		e.Field("quantity", func(e *jx.Encoder) { e.Int(l.Quantity) })
		e.Field("restaurantId", func(e *jx.Encoder) { e.Str(l.RestaurantID) })
		e.Field("restaurantName", func(e *jx.Encoder) { e.Str(l.RestaurantName) })
		e.Field("image", func(e *jx.Encoder) { e.Str(l.Image) })
		e.Field("customizations", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, c := range l.Customizations {
					e.Str(c)
				}
			})
		})
		if l.Note != "" {
			e.Field("note", func(e *jx.Encoder) { e.Str(l.Note) })
		}
		e.Field("subtotal", func(e *jx.Encoder) { e.Float64(l.Subtotal().InexactFloat64()) })
	})
}

func encodeTotals(e *jx.Encoder, t cart.Totals) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("itemCount", func(e *jx.Encoder) { e.Int(t.ItemCount) })
		e.Field("subtotal", func(e *jx.Encoder) { e.Float64(t.Subtotal.InexactFloat64()) })
		e.Field("deliveryFee", func(e *jx.Encoder) { e.Float64(t.DeliveryFee.InexactFloat64()) })
		e.Field("discount", func(e *jx.Encoder) { e.Float64(t.Discount.InexactFloat64()) })
		e.Field("grandTotal", func(e *jx.Encoder) { e.Float64(t.GrandTotal.InexactFloat64()) })
	})
}

func encodeCartView(e *jx.Encoder, lines []cart.Line, t cart.Totals) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, l := range lines {
					encodeLine(e, l)
				}
			})
		})
		e.Field("totals", func(e *jx.Encoder) { encodeTotals(e, t) })
	})
}

func encodeOrder(e *jx.Encoder, o order.Order) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(o.ID) })
		e.Field("status", func(e *jx.Encoder) { e.Str(string(o.Status)) })
		e.Field("progress", func(e *jx.Encoder) { e.Int(o.Status.Progress()) })
		e.Field("etaMinutes", func(e *jx.Encoder) { e.Int(o.EtaMinutes) })
		e.Field("deliveryAddress", func(e *jx.Encoder) { e.Str(o.DeliveryAddress) })
		e.Field("paymentMethod", func(e *jx.Encoder) { e.Str(o.PaymentMethod) })
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, l := range o.Items {
					encodeLine(e, l)
				}
			})
		})
		e.Field("subtotal", func(e *jx.Encoder) { e.Float64(o.Subtotal.InexactFloat64()) })
		e.Field("deliveryFee", func(e *jx.Encoder) { e.Float64(o.DeliveryFee.InexactFloat64()) })
		e.Field("discount", func(e *jx.Encoder) { e.Float64(o.Discount.InexactFloat64()) })
		e.Field("total", func(e *jx.Encoder) { e.Float64(o.Total.InexactFloat64()) })
		if o.Courier != nil {
			e.Field("courier", func(e *jx.Encoder) {
				e.Obj(func(e *jx.Encoder) {
					e.Field("name", func(e *jx.Encoder) { e.Str(o.Courier.Name) })
					e.Field("photo", func(e *jx.Encoder) { e.Str(o.Courier.Photo) })
					e.Field("rating", func(e *jx.Encoder) { e.Float64(o.Courier.Rating) })
				})
			})
		}
		e.Field("createdAt", func(e *jx.Encoder) { e.Str(o.CreatedAt.UTC().Format(time.RFC3339)) })
		e.Field("updatedAt", func(e *jx.Encoder) { e.Str(o.UpdatedAt.UTC().Format(time.RFC3339)) })
	})
}

// --- Request decoding ---

type addItemRequest struct {
	ItemID         string
	Customizations []string
	Note           string
}

func decodeAddItemRequest(body []byte) (addItemRequest, error) {
	var req addItemRequest
	d := jx.DecodeBytes(body)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "itemId":
			v, err := d.Str()
			req.ItemID = v
			return err
		case "customizations":
			return d.Arr(func(d *jx.Decoder) error {
				v, err := d.Str()
				if err != nil {
					return err
				}
				req.Customizations = append(req.Customizations, v)
				return nil
			})
		case "note":
			v, err := d.Str()
			req.Note = v
			return err
		default:
			return d.Skip()
		}
	})
	return req, err
}

type quantityRequest struct {
	Quantity int
	Set      bool
}

func decodeQuantityRequest(body []byte) (quantityRequest, error) {
	var req quantityRequest
	d := jx.DecodeBytes(body)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "quantity":
			v, err := d.Int()
			req.Quantity = v
			req.Set = err == nil
			return err
		default:
			return d.Skip()
		}
	})
	return req, err
}

type promoRequest struct {
	Code string
}

func decodePromoRequest(body []byte) (promoRequest, error) {
	var req promoRequest
	d := jx.DecodeBytes(body)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "code":
			v, err := d.Str()
			req.Code = v
			return err
		default:
			return d.Skip()
		}
	})
	return req, err
}

type checkoutRequest struct {
	DeliveryAddress string
	PaymentMethod   string
}

func decodeCheckoutRequest(body []byte) (checkoutRequest, error) {
	var req checkoutRequest
	d := jx.DecodeBytes(body)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "deliveryAddress":
			v, err := d.Str()
			req.DeliveryAddress = v
			return err
		case "paymentMethod":
			v, err := d.Str()
			req.PaymentMethod = v
			return err
		default:
			return d.Skip()
		}
	})
	return req, err
}
