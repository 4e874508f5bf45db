package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-personal-budget/budget"
)

// UsersStore is the bun-backed account store. Users always live here,
// regardless of which flavor serves items and operations.
type UsersStore struct {
	db *bun.DB
}

// NewUsersStore wraps the given database handle.
func NewUsersStore(db *bun.DB) *UsersStore {
	return &UsersStore{db: db}
}

// FindByID returns the user with the given id, or nil when it does not
// exist.
func (s *UsersStore) FindByID(ctx context.Context, id string) (*budget.User, error) {
	model := &userModel{}
	err := s.db.NewSelect().Model(model).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select user: %w", err)
	}
	return model.toDomain(), nil
}

// FindByEmail returns the user with the given email, or nil when it does
// not exist.
func (s *UsersStore) FindByEmail(ctx context.Context, email string) (*budget.User, error) {
	model := &userModel{}
	err := s.db.NewSelect().Model(model).Where("email = ?", email).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select user: %w", err)
	}
	return model.toDomain(), nil
}

// Insert stores a new account record.
func (s *UsersStore) Insert(ctx context.Context, user budget.User) error {
	model := &userModel{
		ID:           user.ID,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Role:         user.Role,
	}
	if _, err := s.db.NewInsert().Model(model).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// SeedAdmin creates the admin account from configuration when no user
// with that email exists yet. Called once at startup.
func (s *UsersStore) SeedAdmin(ctx context.Context, id, email, passwordHash string) error {
	existing, err := s.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	return s.Insert(ctx, budget.User{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         budget.RoleAdmin,
	})
}
