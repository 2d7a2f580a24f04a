package handler

import (
	"context"
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/shop-api/internal/domain/cart"
)

// AddToCart appends items to the user's cart.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	h.modifyCart(w, r, h.carts.Add)
}

// RemoveFromCart removes items from the user's cart.
func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	h.modifyCart(w, r, h.carts.Remove)
}

func (h *Handler) modifyCart(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, req cart.ModifyRequest) (*cart.Cart, error),
) {
	var req cart.ModifyRequest
	err := decodeBody(w, r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "username":
			req.Username, err = d.Str()
		case "itemId":
			req.ItemID, err = d.Int64()
		case "quantity":
			req.Quantity, err = d.Int()
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	c, err := op(r.Context(), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeCart(e, c) })
}
