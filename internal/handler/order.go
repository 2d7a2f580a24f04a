package handler

import (
	"net/http"

	"github.com/go-faster/jx"
	"github.com/gorilla/mux"
)

// SubmitOrder snapshots the user's cart into a new order.
func (h *Handler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Submit(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeOrder(e, o) })
}

// OrderHistory lists the user's orders in submission order.
func (h *Handler) OrderHistory(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.History(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for i := range orders {
			encodeOrder(e, &orders[i])
		}
		e.ArrEnd()
	})
}
