package storecache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/goliatone/go-personal-budget/budget"
	"github.com/goliatone/go-personal-budget/cache"
)

// Operations composes the operation cache, the operation store and the
// cached item layer. Range queries are scoped to the calling user inside
// the cache key, so two users can issue the identical filter and never
// observe each other's cached collection.
type Operations struct {
	store  OperationsStore
	items  *Items
	cache  *cache.Store[budget.Operation]
	scopes *xsync.MapOf[cache.Scope, struct{}]
}

// NewOperations builds the cached operation access layer. The item layer
// is used to resolve and type-check referenced categories; populating the
// item cache as a side effect of operation writes is expected.
func NewOperations(store OperationsStore, items *Items, c *cache.Store[budget.Operation]) *Operations {
	return &Operations{
		store:  store,
		items:  items,
		cache:  c,
		scopes: xsync.NewMapOf[cache.Scope, struct{}](),
	}
}

// FetchByID returns the operation with the given id, reading through the
// cache. Authorization (author or admin) is the caller's concern; handlers
// build their ownership gate on top of this.
func (o *Operations) FetchByID(ctx context.Context, id int) (budget.Operation, error) {
	if op, ok := o.cache.GetEntity(id); ok {
		return op, nil
	}

	op, err := o.store.GetByID(ctx, id)
	if err != nil {
		return budget.Operation{}, err
	}
	if op == nil {
		return budget.Operation{}, ErrNotFound
	}

	o.cache.SetEntity(op.ID, *op)
	return *op, nil
}

// FetchRange returns the caller's operations inside [from, to] matching
// filter. Admin callers see everyone's operations, but the result is still
// cached under the admin's own id.
func (o *Operations) FetchRange(ctx context.Context, caller Caller, filter budget.TypeFilter, from, to time.Time) ([]budget.Operation, error) {
	scope := cache.RangeScope(filter, caller.UserID, from, to)
	o.scopes.Store(scope, struct{}{})

	if ops, ok := o.cache.GetCollection(scope); ok {
		return ops, nil
	}

	ops, err := o.store.GetAllByTypesInPeriod(ctx, caller.UserID, caller.Admin, filter.Types(), from, to)
	if err != nil {
		return nil, err
	}

	o.cache.SetCollection(scope, ops)
	return ops, nil
}

// Create inserts a new operation authored by the caller. The referenced
// item must exist and match typ; the lookup goes through the cached item
// layer. On success the caller's cached collections are invalidated and
// the new operation is cached.
func (o *Operations) Create(ctx context.Context, caller Caller, typ budget.OperationType, date time.Time, sum float64, itemID int) (budget.Operation, error) {
	item, err := o.resolveItem(ctx, itemID, typ)
	if err != nil {
		return budget.Operation{}, err
	}

	created, err := o.store.Insert(ctx, budget.Operation{
		Date:     date.UTC(),
		Type:     typ,
		Sum:      sum,
		Item:     &item,
		AuthorID: caller.UserID,
	})
	if err != nil {
		return budget.Operation{}, err
	}

	o.invalidateCollectionsFor(caller.UserID)
	o.cache.SetEntity(created.ID, created)
	return created, nil
}

// Update rewrites the mutable fields of an existing operation. AuthorID is
// never touched. The item gate is the same as for Create.
func (o *Operations) Update(ctx context.Context, caller Caller, id int, typ budget.OperationType, date time.Time, sum float64, itemID int) (budget.Operation, error) {
	item, err := o.resolveItem(ctx, itemID, typ)
	if err != nil {
		return budget.Operation{}, err
	}

	updated, err := o.store.Update(ctx, id, OperationChanges{
		Date: date.UTC(),
		Type: typ,
		Sum:  sum,
		Item: &item,
	})
	if err != nil {
		return budget.Operation{}, err
	}
	if updated == nil {
		return budget.Operation{}, ErrNotFound
	}

	o.cache.RemoveEntity(id)
	o.invalidateCollectionsFor(caller.UserID)
	o.cache.SetEntity(updated.ID, *updated)
	return *updated, nil
}

// Delete removes the operation with the given id. The caller's cached
// collections are invalidated; other users' collections are left to the
// engine's TTL, mirroring the scoping of writes.
func (o *Operations) Delete(ctx context.Context, caller Caller, id int) error {
	deleted, err := o.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("operation %d: %w", id, ErrNotFound)
	}

	o.cache.RemoveEntity(id)
	o.invalidateCollectionsFor(caller.UserID)
	return nil
}

// resolveItem fetches the referenced item through the cached item layer
// and verifies its type matches the operation's.
func (o *Operations) resolveItem(ctx context.Context, itemID int, typ budget.OperationType) (budget.Item, error) {
	item, err := o.items.FetchByID(ctx, itemID)
	if errors.Is(err, ErrNotFound) {
		return budget.Item{}, fmt.Errorf("no %s with id %d: %w", typ, itemID, ErrNotFound)
	}
	if err != nil {
		return budget.Item{}, err
	}
	if item.Type != typ {
		return budget.Item{}, fmt.Errorf("no %s with id %d: %w", typ, itemID, ErrNotFound)
	}
	return item, nil
}

// invalidateCollectionsFor removes every tracked collection scope owned by
// the given user. Scopes of other users are left alone; stale entries
// elsewhere age out within the engine's TTL.
func (o *Operations) invalidateCollectionsFor(owner string) {
	o.scopes.Range(func(scope cache.Scope, _ struct{}) bool {
		if scope.Owner == owner {
			o.cache.RemoveCollection(scope)
			o.scopes.Delete(scope)
		}
		return true
	})
}
