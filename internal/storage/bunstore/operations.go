package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-personal-budget/budget"
	"github.com/goliatone/go-personal-budget/storecache"
)

// OperationsStore is the bun-backed implementation of
// storecache.OperationsStore.
type OperationsStore struct {
	db *bun.DB
}

// NewOperationsStore wraps the given database handle.
func NewOperationsStore(db *bun.DB) *OperationsStore {
	return &OperationsStore{db: db}
}

// GetByID returns the operation with its item relation loaded, or nil
// when the id does not exist.
func (s *OperationsStore) GetByID(ctx context.Context, id int) (*budget.Operation, error) {
	model := &operationModel{}
	err := s.db.NewSelect().
		Model(model).
		Relation("Item").
		Where("operation_model.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select operation %d: %w", id, err)
	}
	return model.toDomain(), nil
}

// GetAllByTypesInPeriod returns operations inside [from, to] matching the
// type set. Non-admin callers only receive operations they authored; the
// bounds are inclusive on both ends.
func (s *OperationsStore) GetAllByTypesInPeriod(ctx context.Context, userID string, isAdmin bool, types []budget.OperationType, from, to time.Time) ([]budget.Operation, error) {
	var models []operationModel
	q := s.db.NewSelect().
		Model(&models).
		Relation("Item").
		Where("operation_model.type IN (?)", bun.In(typeInts(types))).
		Where("operation_model.date >= ?", from).
		Where("operation_model.date <= ?", to).
		Order("operation_model.date ASC")
	if !isAdmin {
		q = q.Where("operation_model.author_id = ?", userID)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to select operations: %w", err)
	}

	ops := make([]budget.Operation, len(models))
	for i := range models {
		ops[i] = *models[i].toDomain()
	}
	return ops, nil
}

// Insert stores a new operation and returns it with the assigned id and
// its item reference intact.
func (s *OperationsStore) Insert(ctx context.Context, op budget.Operation) (budget.Operation, error) {
	model := &operationModel{
		Date:     op.Date,
		Type:     int(op.Type),
		Sum:      op.Sum,
		AuthorID: op.AuthorID,
	}
	if op.Item != nil {
		itemID := op.Item.ID
		model.ItemID = &itemID
	}
	if _, err := s.db.NewInsert().Model(model).Exec(ctx); err != nil {
		return budget.Operation{}, fmt.Errorf("failed to insert operation: %w", err)
	}

	created := model.toDomain()
	created.Item = op.Item
	return *created, nil
}

// Update rewrites the mutable fields of the operation and returns the
// updated row, or nil when the id does not exist. author_id is never part
// of the update set.
func (s *OperationsStore) Update(ctx context.Context, id int, changes storecache.OperationChanges) (*budget.Operation, error) {
	var itemID *int
	if changes.Item != nil {
		v := changes.Item.ID
		itemID = &v
	}

	res, err := s.db.NewUpdate().
		Model((*operationModel)(nil)).
		Set("date = ?", changes.Date).
		Set("type = ?", int(changes.Type)).
		Set("sum = ?", changes.Sum).
		Set("item_id = ?", itemID).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update operation %d: %w", id, err)
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

// Delete removes the operation with the given id and reports whether a
// row was deleted.
func (s *OperationsStore) Delete(ctx context.Context, id int) (bool, error) {
	res, err := s.db.NewDelete().
		Model((*operationModel)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to delete operation %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}
	return affected > 0, nil
}
