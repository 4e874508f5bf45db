package storecache

import (
	"context"
	"fmt"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/goliatone/go-personal-budget/budget"
	"github.com/goliatone/go-personal-budget/cache"
)

// Items composes the item cache and the item store into a read-through,
// write-invalidate view. Reads populate the cache on miss; writes go to
// the store first and touch the cache only on success, so a failed write
// leaves cached state exactly as it was.
type Items struct {
	store  ItemsStore
	cache  *cache.Store[budget.Item]
	scopes *xsync.MapOf[cache.Scope, struct{}] // every collection scope ever served
}

// NewItems builds the cached item access layer.
func NewItems(store ItemsStore, c *cache.Store[budget.Item]) *Items {
	return &Items{
		store:  store,
		cache:  c,
		scopes: xsync.NewMapOf[cache.Scope, struct{}](),
	}
}

// FetchByID returns the item with the given id, reading through the cache.
// At most one store round trip happens per call; concurrent misses for the
// same id may each hit the store, which is safe because SetEntity is
// idempotent for a given id.
func (i *Items) FetchByID(ctx context.Context, id int) (budget.Item, error) {
	if item, ok := i.cache.GetEntity(id); ok {
		return item, nil
	}

	item, err := i.store.GetByID(ctx, id)
	if err != nil {
		return budget.Item{}, err
	}
	if item == nil {
		return budget.Item{}, ErrNotFound
	}

	i.cache.SetEntity(item.ID, *item)
	return *item, nil
}

// FetchAll returns the items matching filter, reading through the cache.
// Collection entries expire on their own shortly after population, so a
// hit here is never more than the engine's TTL stale.
func (i *Items) FetchAll(ctx context.Context, filter budget.TypeFilter) ([]budget.Item, error) {
	scope := cache.CollectionScope(filter)
	i.scopes.Store(scope, struct{}{})

	if items, ok := i.cache.GetCollection(scope); ok {
		return items, nil
	}

	items, err := i.store.GetAllByTypes(ctx, filter.Types())
	if err != nil {
		return nil, err
	}

	i.cache.SetCollection(scope, items)
	return items, nil
}

// Create inserts a new item after checking that no item of the same type
// carries the same name, then invalidates every known collection scope and
// caches the new entity.
func (i *Items) Create(ctx context.Context, name string, typ budget.OperationType) (budget.Item, error) {
	taken, err := i.store.EqualExists(ctx, typ, name, 0)
	if err != nil {
		return budget.Item{}, err
	}
	if taken {
		return budget.Item{}, conflictf("%s with name %q already exists", typ, name)
	}

	created, err := i.store.Insert(ctx, budget.Item{Name: name, Type: typ})
	if err != nil {
		return budget.Item{}, err
	}

	i.invalidateCollections()
	i.cache.SetEntity(created.ID, created)
	return created, nil
}

// Update renames the item with the given id. The same-name check excludes
// the item itself so renaming to the current name stays legal.
func (i *Items) Update(ctx context.Context, id int, name string, typ budget.OperationType) (budget.Item, error) {
	taken, err := i.store.EqualExists(ctx, typ, name, id)
	if err != nil {
		return budget.Item{}, err
	}
	if taken {
		return budget.Item{}, conflictf("%s with name %q already exists", typ, name)
	}

	updated, err := i.store.Update(ctx, id, name)
	if err != nil {
		return budget.Item{}, err
	}
	if updated == nil {
		return budget.Item{}, ErrNotFound
	}

	i.cache.RemoveEntity(id)
	i.invalidateCollections()
	i.cache.SetEntity(updated.ID, *updated)
	return *updated, nil
}

// Delete removes the item with the given id from the store and drops it,
// and every collection that could have contained it, from the cache.
func (i *Items) Delete(ctx context.Context, id int) error {
	deleted, err := i.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("item %d: %w", id, ErrNotFound)
	}

	i.cache.RemoveEntity(id)
	i.invalidateCollections()
	return nil
}

// invalidateCollections removes every collection scope this layer has ever
// served, plus the three canonical variants in case they have not been
// read yet in this process.
func (i *Items) invalidateCollections() {
	i.scopes.Range(func(scope cache.Scope, _ struct{}) bool {
		i.cache.RemoveCollection(scope)
		i.scopes.Delete(scope)
		return true
	})
	for _, f := range []budget.TypeFilter{budget.FilterAll, budget.FilterIncome, budget.FilterExpense} {
		i.cache.RemoveCollection(cache.CollectionScope(f))
	}
}
