package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-personal-budget/budget"
)

// ItemsStore is the bun-backed implementation of storecache.ItemsStore.
type ItemsStore struct {
	db *bun.DB
}

// NewItemsStore wraps the given database handle.
func NewItemsStore(db *bun.DB) *ItemsStore {
	return &ItemsStore{db: db}
}

// GetByID returns the item with the given id, or nil when it does not
// exist.
func (s *ItemsStore) GetByID(ctx context.Context, id int) (*budget.Item, error) {
	model := &itemModel{}
	err := s.db.NewSelect().Model(model).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select item %d: %w", id, err)
	}
	return model.toDomain(), nil
}

// GetAllByTypes returns every item whose type is in types, ordered by id.
func (s *ItemsStore) GetAllByTypes(ctx context.Context, types []budget.OperationType) ([]budget.Item, error) {
	var models []itemModel
	err := s.db.NewSelect().
		Model(&models).
		Where("type IN (?)", bun.In(typeInts(types))).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to select items: %w", err)
	}

	items := make([]budget.Item, len(models))
	for i := range models {
		items[i] = *models[i].toDomain()
	}
	return items, nil
}

// Insert stores a new item and returns it with the assigned id.
func (s *ItemsStore) Insert(ctx context.Context, item budget.Item) (budget.Item, error) {
	model := &itemModel{Name: item.Name, Type: int(item.Type)}
	if _, err := s.db.NewInsert().Model(model).Exec(ctx); err != nil {
		return budget.Item{}, fmt.Errorf("failed to insert item: %w", err)
	}
	return *model.toDomain(), nil
}

// Update renames the item with the given id and returns the updated row,
// or nil when the id does not exist.
func (s *ItemsStore) Update(ctx context.Context, id int, name string) (*budget.Item, error) {
	res, err := s.db.NewUpdate().
		Model((*itemModel)(nil)).
		Set("name = ?", name).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update item %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}
	return s.GetByID(ctx, id)
}

// Delete removes the item with the given id and reports whether a row was
// deleted.
func (s *ItemsStore) Delete(ctx context.Context, id int) (bool, error) {
	res, err := s.db.NewDelete().
		Model((*itemModel)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to delete item %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}
	return affected > 0, nil
}

// EqualExists reports whether another item of the same type already
// carries the given name. excludeID makes renames to the current name
// legal.
func (s *ItemsStore) EqualExists(ctx context.Context, typ budget.OperationType, name string, excludeID int) (bool, error) {
	exists, err := s.db.NewSelect().
		Model((*itemModel)(nil)).
		Where("id != ?", excludeID).
		Where("type = ?", int(typ)).
		Where("name = ?", name).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check item name: %w", err)
	}
	return exists, nil
}

func typeInts(types []budget.OperationType) []int {
	ints := make([]int, len(types))
	for i, t := range types {
		ints[i] = int(t)
	}
	return ints
}
