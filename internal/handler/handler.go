// Package handler implements the HTTP API on top of the domain services.
package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/xenking/shop-api/internal/domain/cart"
	"github.com/xenking/shop-api/internal/domain/item"
	"github.com/xenking/shop-api/internal/domain/order"
	"github.com/xenking/shop-api/internal/domain/user"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Handler serves the /api routes, delegating to the domain services.
type Handler struct {
	users  *user.Service
	items  *item.Service
	carts  *cart.Service
	orders *order.Service
}

// NewHandler constructs a Handler with the required domain services.
func NewHandler(
	users *user.Service,
	items *item.Service,
	carts *cart.Service,
	orders *order.Service,
) *Handler {
	return &Handler{
		users:  users,
		items:  items,
		carts:  carts,
		orders: orders,
	}
}

// Register mounts all API routes under /api on r.
func (h *Handler) Register(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/user/create", h.CreateUser).Methods(http.MethodPost)
	api.HandleFunc("/user/id/{id}", h.GetUserByID).Methods(http.MethodGet)
	api.HandleFunc("/user/{username}", h.GetUserByUsername).Methods(http.MethodGet)

	api.HandleFunc("/item", h.ListItems).Methods(http.MethodGet)
	api.HandleFunc("/item/name/{name}", h.GetItemsByName).Methods(http.MethodGet)
	api.HandleFunc("/item/{id}", h.GetItem).Methods(http.MethodGet)

	api.HandleFunc("/cart/addToCart", h.AddToCart).Methods(http.MethodPost)
	api.HandleFunc("/cart/removeFromCart", h.RemoveFromCart).Methods(http.MethodPost)

	api.HandleFunc("/order/submit/{username}", h.SubmitOrder).Methods(http.MethodPost)
	api.HandleFunc("/order/history/{username}", h.OrderHistory).Methods(http.MethodGet)

	api.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	api.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
}
