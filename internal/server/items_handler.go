package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/goliatone/go-personal-budget/budget"
	"github.com/goliatone/go-personal-budget/storecache"
)

// ItemsHandler serves the item endpoints. Items are shared reference data,
// so the whole surface is public.
type ItemsHandler struct {
	items *storecache.Items
	log   *zap.Logger
}

// NewItemsHandler builds the item endpoint handler.
func NewItemsHandler(items *storecache.Items, log *zap.Logger) *ItemsHandler {
	return &ItemsHandler{items: items, log: log}
}

// GetByID handles GET /api/items/{id}.
func (h *ItemsHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	item, err := h.items.FetchByID(r.Context(), id)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// List returns a GET handler serving the items matching filter.
func (h *ItemsHandler) List(filter budget.TypeFilter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := h.items.FetchAll(r.Context(), filter)
		if err != nil {
			respondError(w, h.log, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

// Create returns a POST handler creating an item of the given type.
func (h *ItemsHandler) Create(typ budget.OperationType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input ItemInput
		if !decodeBody(w, r, &input) {
			return
		}
		if err := input.Validate(); err != nil {
			writeValidationError(w, err)
			return
		}

		created, err := h.items.Create(r.Context(), input.Name, typ)
		if err != nil {
			respondError(w, h.log, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

// Rename returns a PUT handler renaming an item of the given type.
func (h *ItemsHandler) Rename(typ budget.OperationType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		var input ItemInput
		if !decodeBody(w, r, &input) {
			return
		}
		if err := input.Validate(); err != nil {
			writeValidationError(w, err)
			return
		}

		updated, err := h.items.Update(r.Context(), id, input.Name, typ)
		if err != nil {
			respondError(w, h.log, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.items.Delete(r.Context(), id); err != nil {
		respondError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// pathID parses the {id} route parameter, writing a 400 on malformed input.
func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}
