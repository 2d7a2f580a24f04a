package handler

import (
	"net/http"

	"github.com/go-faster/jx"
	"github.com/gorilla/mux"

	"github.com/xenking/shop-api/internal/domain/user"
)

// CreateUser registers a new account with an empty cart.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req user.CreateRequest
	err := decodeBody(w, r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "username":
			req.Username, err = d.Str()
		case "password":
			req.Password, err = d.Str()
		case "confirmPassword":
			req.ConfirmPassword, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	u, err := h.users.Create(r.Context(), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeUser(e, u) })
}

// GetUserByID returns a user by numeric ID.
func (h *Handler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	u, err := h.users.Get(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeUser(e, u) })
}

// GetUserByUsername returns a user by username.
func (h *Handler) GetUserByUsername(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.ByUsername(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeUser(e, u) })
}
