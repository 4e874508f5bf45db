package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-personal-budget/budget"
	"github.com/goliatone/go-personal-budget/pkg/auth"
	"github.com/goliatone/go-personal-budget/storecache"
)

// OperationsHandler serves the operation endpoints. Every route sits behind
// the authentication middleware; reads and mutations of a single operation
// are additionally gated to its author or an admin.
type OperationsHandler struct {
	ops *storecache.Operations
	log *zap.Logger
}

// NewOperationsHandler builds the operation endpoint handler.
func NewOperationsHandler(ops *storecache.Operations, log *zap.Logger) *OperationsHandler {
	return &OperationsHandler{ops: ops, log: log}
}

// GetByID handles GET /api/operations/{id}.
func (h *OperationsHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	ident, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	op, ok := h.authorizedOperation(w, r, ident, id)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, op)
}

// List returns a GET handler serving the caller's operations matching
// filter inside the dateFrom..dateTo query range.
func (h *OperationsHandler) List(filter budget.TypeFilter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, ok := requireIdentity(w, r)
		if !ok {
			return
		}
		from, to, ok := queryRange(w, r)
		if !ok {
			return
		}

		ops, err := h.ops.FetchRange(r.Context(), callerFrom(ident), filter, from, to)
		if err != nil {
			respondError(w, h.log, err)
			return
		}
		writeJSON(w, http.StatusOK, ops)
	}
}

// Create returns a POST handler creating an operation of the given type
// authored by the caller.
func (h *OperationsHandler) Create(typ budget.OperationType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, ok := requireIdentity(w, r)
		if !ok {
			return
		}

		var input OperationInput
		if !decodeBody(w, r, &input) {
			return
		}
		if err := input.Validate(); err != nil {
			writeValidationError(w, err)
			return
		}

		created, err := h.ops.Create(r.Context(), callerFrom(ident), typ, input.Date, input.Sum, input.ItemID)
		if err != nil {
			respondError(w, h.log, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

// Update returns a PUT handler rewriting an operation of the given type.
// Only the author or an admin may update it.
func (h *OperationsHandler) Update(typ budget.OperationType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, ok := requireIdentity(w, r)
		if !ok {
			return
		}
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		var input OperationInput
		if !decodeBody(w, r, &input) {
			return
		}
		if err := input.Validate(); err != nil {
			writeValidationError(w, err)
			return
		}

		if _, ok := h.authorizedOperation(w, r, ident, id); !ok {
			return
		}

		updated, err := h.ops.Update(r.Context(), callerFrom(ident), id, typ, input.Date, input.Sum, input.ItemID)
		if err != nil {
			respondError(w, h.log, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

// Delete handles DELETE /api/operations/{id}. Only the author or an admin
// may delete an operation.
func (h *OperationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ident, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if _, ok := h.authorizedOperation(w, r, ident, id); !ok {
		return
	}

	if err := h.ops.Delete(r.Context(), callerFrom(ident), id); err != nil {
		respondError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// authorizedOperation fetches the operation and enforces the author-or-admin
// gate, writing the error response itself on failure.
func (h *OperationsHandler) authorizedOperation(w http.ResponseWriter, r *http.Request, ident auth.Identity, id int) (budget.Operation, bool) {
	op, err := h.ops.FetchByID(r.Context(), id)
	if err != nil {
		respondError(w, h.log, err)
		return budget.Operation{}, false
	}
	if !ident.Admin && op.AuthorID != ident.UserID {
		writeError(w, http.StatusForbidden, "operation belongs to another user")
		return budget.Operation{}, false
	}
	return op, true
}

func callerFrom(ident auth.Identity) storecache.Caller {
	return storecache.Caller{UserID: ident.UserID, Admin: ident.Admin}
}

func requireIdentity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	ident, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return auth.Identity{}, false
	}
	return ident, true
}

// queryRange parses the mandatory dateFrom and dateTo query parameters.
func queryRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	from, err := time.Parse(time.RFC3339, r.URL.Query().Get("dateFrom"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid dateFrom, expected RFC 3339")
		return time.Time{}, time.Time{}, false
	}
	to, err := time.Parse(time.RFC3339, r.URL.Query().Get("dateTo"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid dateTo, expected RFC 3339")
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}
