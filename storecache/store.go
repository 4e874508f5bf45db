package storecache

import (
	"context"
	"time"

	"github.com/goliatone/go-personal-budget/budget"
)

// ItemsStore is the durable repository the cached item layer reads through
// to. A nil entity with a nil error means the id does not exist; a false
// result from Delete means the same. Any non-nil error is a store failure
// and is propagated to callers untouched.
type ItemsStore interface {
	GetByID(ctx context.Context, id int) (*budget.Item, error)
	GetAllByTypes(ctx context.Context, types []budget.OperationType) ([]budget.Item, error)
	Insert(ctx context.Context, item budget.Item) (budget.Item, error)
	Update(ctx context.Context, id int, name string) (*budget.Item, error)
	Delete(ctx context.Context, id int) (bool, error)
	EqualExists(ctx context.Context, typ budget.OperationType, name string, excludeID int) (bool, error)
}

// OperationChanges carries the mutable fields of an operation for updates.
// AuthorID is deliberately absent: authorship never changes.
type OperationChanges struct {
	Date time.Time
	Type budget.OperationType
	Sum  float64
	Item *budget.Item
}

// OperationsStore is the durable repository behind the cached operation
// layer. Range queries apply the author filter in the store: non-admin
// callers only receive their own operations.
type OperationsStore interface {
	GetByID(ctx context.Context, id int) (*budget.Operation, error)
	GetAllByTypesInPeriod(ctx context.Context, userID string, isAdmin bool, types []budget.OperationType, from, to time.Time) ([]budget.Operation, error)
	Insert(ctx context.Context, op budget.Operation) (budget.Operation, error)
	Update(ctx context.Context, id int, changes OperationChanges) (*budget.Operation, error)
	Delete(ctx context.Context, id int) (bool, error)
}

// Caller identifies the authenticated user an operation is performed for.
// The access layer bakes the caller into collection scope keys so that two
// users never share a cached range query.
type Caller struct {
	UserID string
	Admin  bool
}
