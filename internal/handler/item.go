package handler

import (
	"net/http"

	"github.com/go-faster/jx"
	"github.com/gorilla/mux"
)

// ListItems returns the whole catalog.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.items.List(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeItems(e, items) })
}

// GetItem returns a single item by ID.
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	it, err := h.items.Get(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeItem(e, *it) })
}

// GetItemsByName returns all items with the given name, or 404 when none match.
func (h *Handler) GetItemsByName(w http.ResponseWriter, r *http.Request) {
	items, err := h.items.ByName(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeItems(e, items) })
}
