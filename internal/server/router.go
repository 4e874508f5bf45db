// Package server wires the cached access layers behind the HTTP surface:
// public item and identity endpoints, and authenticated operation endpoints.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/goliatone/go-personal-budget/budget"
)

// NewRouter assembles the full route tree.
func NewRouter(
	items *ItemsHandler,
	operations *OperationsHandler,
	identity *IdentityHandler,
	authn *Authenticator,
	log *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()
	r.Use(Recovery(log))
	r.Use(RequestLogger(log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/identity", func(r chi.Router) {
			r.Post("/signup", identity.Signup)
			r.Post("/signin", identity.Signin)
		})

		r.Route("/items", func(r chi.Router) {
			r.Get("/", items.List(budget.FilterAll))
			r.Get("/incomes", items.List(budget.FilterIncome))
			r.Get("/expenses", items.List(budget.FilterExpense))
			r.Get("/{id}", items.GetByID)
			r.Post("/incomes", items.Create(budget.Income))
			r.Post("/expenses", items.Create(budget.Expense))
			r.Put("/incomes/{id}", items.Rename(budget.Income))
			r.Put("/expenses/{id}", items.Rename(budget.Expense))
			r.Delete("/{id}", items.Delete)
		})

		r.Route("/operations", func(r chi.Router) {
			r.Use(authn.Middleware)
			r.Get("/", operations.List(budget.FilterAll))
			r.Get("/incomes", operations.List(budget.FilterIncome))
			r.Get("/expenses", operations.List(budget.FilterExpense))
			r.Get("/{id}", operations.GetByID)
			r.Post("/incomes", operations.Create(budget.Income))
			r.Post("/expenses", operations.Create(budget.Expense))
			r.Put("/incomes/{id}", operations.Update(budget.Income))
			r.Put("/expenses/{id}", operations.Update(budget.Expense))
			r.Delete("/{id}", operations.Delete)
		})
	})

	return r
}
