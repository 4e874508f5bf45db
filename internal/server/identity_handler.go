package server

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-personal-budget/budget"
	"github.com/goliatone/go-personal-budget/pkg/auth"
)

// IdentityHandler serves account creation and sign-in.
type IdentityHandler struct {
	users  UsersStore
	tokens *auth.Tokens
	log    *zap.Logger
}

// NewIdentityHandler builds the identity endpoint handler.
func NewIdentityHandler(users UsersStore, tokens *auth.Tokens, log *zap.Logger) *IdentityHandler {
	return &IdentityHandler{users: users, tokens: tokens, log: log}
}

// Signup handles POST /api/identity/signup. A successful signup returns a
// token immediately, so the client does not need a follow-up signin.
func (h *IdentityHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var input SignupInput
	if !decodeBody(w, r, &input) {
		return
	}
	if err := input.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	existing, err := h.users.FindByEmail(r.Context(), input.Email)
	if err != nil {
		h.log.Error("user lookup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if existing != nil {
		writeError(w, http.StatusBadRequest, "an account with this email already exists")
		return
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		h.log.Error("password hashing failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	user := budget.User{
		ID:           uuid.NewString(),
		Email:        input.Email,
		PasswordHash: hash,
		Role:         budget.RoleUser,
	}
	if err := h.users.Insert(r.Context(), user); err != nil {
		h.log.Error("user insert failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.respondToken(w, user)
}

// Signin handles POST /api/identity/signin. Wrong email and wrong password
// produce the same response, so the endpoint does not leak which accounts
// exist.
func (h *IdentityHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var input SigninInput
	if !decodeBody(w, r, &input) {
		return
	}
	if err := input.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	user, err := h.users.FindByEmail(r.Context(), input.Email)
	if err != nil {
		h.log.Error("user lookup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, input.Password) {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	h.respondToken(w, *user)
}

func (h *IdentityHandler) respondToken(w http.ResponseWriter, user budget.User) {
	token, err := h.tokens.Issue(user)
	if err != nil {
		h.log.Error("token issuance failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{Token: token, UserName: user.Email})
}
