package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-personal-budget/budget"
	"github.com/goliatone/go-personal-budget/internal/cacheinfra"
	"github.com/goliatone/go-personal-budget/pkg/auth"
)

// UsersStore is the account persistence the HTTP layer needs, implemented
// by the bun-backed user store.
type UsersStore interface {
	FindByID(ctx context.Context, id string) (*budget.User, error)
	FindByEmail(ctx context.Context, email string) (*budget.User, error)
	Insert(ctx context.Context, user budget.User) error
}

// Authenticator resolves bearer tokens into request identities. User
// records are read through the user cache so a burst of requests from one
// session costs a single store round trip.
type Authenticator struct {
	tokens *auth.Tokens
	users  UsersStore
	cache  *cacheinfra.UserCache
	log    *zap.Logger
}

// NewAuthenticator builds the authentication middleware.
func NewAuthenticator(tokens *auth.Tokens, users UsersStore, cache *cacheinfra.UserCache, log *zap.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, users: users, cache: cache, log: log}
}

// Middleware validates the Authorization header, resolves the user and
// attaches the identity to the request context. Requests without a valid
// token for an existing account get a 401.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := a.tokens.Validate(r.Header.Get("Authorization"))
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}

		user, err := a.cache.GetOrFetch(r.Context(), claims.Subject, func(ctx context.Context) (budget.User, error) {
			found, err := a.users.FindByID(ctx, claims.Subject)
			if err != nil {
				return budget.User{}, err
			}
			if found == nil {
				return budget.User{}, errUnknownUser
			}
			return *found, nil
		})
		if err != nil {
			if errors.Is(err, errUnknownUser) {
				writeError(w, http.StatusUnauthorized, "unknown user")
				return
			}
			a.log.Error("user lookup failed", zap.String("user_id", claims.Subject), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		ident := auth.Identity{UserID: user.ID, Email: user.Email, Admin: user.IsAdmin()}
		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), ident)))
	})
}

var errUnknownUser = &unknownUserError{}

type unknownUserError struct{}

func (*unknownUserError) Error() string { return "unknown user" }

// RequestLogger logs each request with method, path, status and latency.
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

// Recovery converts panics into 500 responses and logs the panic value.
func Recovery(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error("panic recovered",
						zap.Any("panic", rec),
						zap.String("path", r.URL.Path),
						zap.Stack("stack"),
					)
					writeError(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
