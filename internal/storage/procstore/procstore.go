// Package procstore implements the item and operation stores against the
// PostgreSQL stored functions (budget_items_*, budget_operations_*) that
// back the stored-procedure deployment flavor. It talks to the database
// through database/sql and lib/pq directly; no ORM is involved.
package procstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/goliatone/go-personal-budget/budget"
	"github.com/goliatone/go-personal-budget/storecache"
)

// ItemsStore calls the budget_items_* functions.
type ItemsStore struct {
	db *sql.DB
}

// NewItemsStore wraps the given connection pool.
func NewItemsStore(db *sql.DB) *ItemsStore {
	return &ItemsStore{db: db}
}

// GetByID returns the item with the given id, or nil when it does not
// exist.
func (s *ItemsStore) GetByID(ctx context.Context, id int) (*budget.Item, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, name, type FROM budget_items_getbyid($1)", id)

	var item budget.Item
	var typ int
	if err := row.Scan(&item.ID, &item.Name, &typ); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("budget_items_getbyid: %w", err)
	}
	item.Type = budget.OperationType(typ)
	return &item, nil
}

// GetAllByTypes returns every item whose type is in types.
func (s *ItemsStore) GetAllByTypes(ctx context.Context, types []budget.OperationType) ([]budget.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, type FROM budget_items_getallbytypes($1)", pq.Array(typeInts(types)))
	if err != nil {
		return nil, fmt.Errorf("budget_items_getallbytypes: %w", err)
	}
	defer rows.Close()

	var items []budget.Item
	for rows.Next() {
		var item budget.Item
		var typ int
		if err := rows.Scan(&item.ID, &item.Name, &typ); err != nil {
			return nil, fmt.Errorf("budget_items_getallbytypes scan: %w", err)
		}
		item.Type = budget.OperationType(typ)
		items = append(items, item)
	}
	return items, rows.Err()
}

// Insert stores a new item through budget_items_post.
func (s *ItemsStore) Insert(ctx context.Context, item budget.Item) (budget.Item, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, type FROM budget_items_post($1, $2)", item.Name, int(item.Type))

	var created budget.Item
	var typ int
	if err := row.Scan(&created.ID, &created.Name, &typ); err != nil {
		return budget.Item{}, fmt.Errorf("budget_items_post: %w", err)
	}
	created.Type = budget.OperationType(typ)
	return created, nil
}

// Update renames the item and returns the updated row, or nil when the id
// does not exist.
func (s *ItemsStore) Update(ctx context.Context, id int, name string) (*budget.Item, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, type FROM budget_items_put($1, $2)", id, name)

	var item budget.Item
	var typ int
	if err := row.Scan(&item.ID, &item.Name, &typ); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("budget_items_put: %w", err)
	}
	item.Type = budget.OperationType(typ)
	return &item, nil
}

// Delete removes the item and reports whether a row was deleted.
func (s *ItemsStore) Delete(ctx context.Context, id int) (bool, error) {
	var deleted bool
	if err := s.db.QueryRowContext(ctx,
		"SELECT budget_items_delete($1)", id).Scan(&deleted); err != nil {
		return false, fmt.Errorf("budget_items_delete: %w", err)
	}
	return deleted, nil
}

// EqualExists reports whether another item of the same type already
// carries the given name.
func (s *ItemsStore) EqualExists(ctx context.Context, typ budget.OperationType, name string, excludeID int) (bool, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx,
		"SELECT budget_items_equalexists($1, $2, $3)", int(typ), excludeID, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("budget_items_equalexists: %w", err)
	}
	return exists, nil
}

// OperationsStore calls the budget_operations_* functions.
type OperationsStore struct {
	db *sql.DB
}

// NewOperationsStore wraps the given connection pool.
func NewOperationsStore(db *sql.DB) *OperationsStore {
	return &OperationsStore{db: db}
}

// operationRow is the flat shape the stored functions return; the item
// columns are null when the operation has no item reference.
type operationRow struct {
	id       int
	date     time.Time
	typ      int
	sum      float64
	authorID string
	itemID   sql.NullInt64
	itemName sql.NullString
	itemType sql.NullInt64
}

func (r operationRow) toDomain() *budget.Operation {
	op := &budget.Operation{
		ID:       r.id,
		Date:     r.date.UTC(),
		Type:     budget.OperationType(r.typ),
		Sum:      r.sum,
		AuthorID: r.authorID,
	}
	if r.itemID.Valid {
		op.Item = &budget.Item{
			ID:   int(r.itemID.Int64),
			Name: r.itemName.String,
			Type: budget.OperationType(r.itemType.Int64),
		}
	}
	return op
}

func scanOperation(scan func(...any) error) (*budget.Operation, error) {
	var r operationRow
	if err := scan(&r.id, &r.date, &r.typ, &r.sum, &r.authorID, &r.itemID, &r.itemName, &r.itemType); err != nil {
		return nil, err
	}
	return r.toDomain(), nil
}

const operationColumns = "id, date, type, sum, author_id, item_id, item_name, item_type"

// GetByID returns the operation with the given id, or nil when it does
// not exist.
func (s *OperationsStore) GetByID(ctx context.Context, id int) (*budget.Operation, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+operationColumns+" FROM budget_operations_getbyid($1)", id)

	op, err := scanOperation(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("budget_operations_getbyid: %w", err)
	}
	return op, nil
}

// GetAllByTypesInPeriod returns operations in [from, to] matching the
// type set, author-filtered for non-admin callers.
func (s *OperationsStore) GetAllByTypesInPeriod(ctx context.Context, userID string, isAdmin bool, types []budget.OperationType, from, to time.Time) ([]budget.Operation, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+operationColumns+" FROM budget_operations_getallbytypesovertimeperiod($1, $2, $3, $4, $5)",
		userID, isAdmin, pq.Array(typeInts(types)), from, to)
	if err != nil {
		return nil, fmt.Errorf("budget_operations_getallbytypesovertimeperiod: %w", err)
	}
	defer rows.Close()

	var ops []budget.Operation
	for rows.Next() {
		op, err := scanOperation(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("budget_operations scan: %w", err)
		}
		ops = append(ops, *op)
	}
	return ops, rows.Err()
}

// Insert stores a new operation through budget_operations_post.
func (s *OperationsStore) Insert(ctx context.Context, op budget.Operation) (budget.Operation, error) {
	var itemID any
	if op.Item != nil {
		itemID = op.Item.ID
	}
	row := s.db.QueryRowContext(ctx,
		"SELECT "+operationColumns+" FROM budget_operations_post($1, $2, $3, $4, $5)",
		op.Date, int(op.Type), op.Sum, itemID, op.AuthorID)

	created, err := scanOperation(row.Scan)
	if err != nil {
		return budget.Operation{}, fmt.Errorf("budget_operations_post: %w", err)
	}
	return *created, nil
}

// Update rewrites the mutable fields and returns the updated row, or nil
// when the id does not exist.
func (s *OperationsStore) Update(ctx context.Context, id int, changes storecache.OperationChanges) (*budget.Operation, error) {
	var itemID any
	if changes.Item != nil {
		itemID = changes.Item.ID
	}
	row := s.db.QueryRowContext(ctx,
		"SELECT "+operationColumns+" FROM budget_operations_put($1, $2, $3, $4, $5)",
		id, changes.Date, int(changes.Type), changes.Sum, itemID)

	op, err := scanOperation(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("budget_operations_put: %w", err)
	}
	return op, nil
}

// Delete removes the operation and reports whether a row was deleted.
func (s *OperationsStore) Delete(ctx context.Context, id int) (bool, error) {
	var deleted bool
	if err := s.db.QueryRowContext(ctx,
		"SELECT budget_operations_delete($1)", id).Scan(&deleted); err != nil {
		return false, fmt.Errorf("budget_operations_delete: %w", err)
	}
	return deleted, nil
}

func typeInts(types []budget.OperationType) []int {
	ints := make([]int, len(types))
	for i, t := range types {
		ints[i] = int(t)
	}
	return ints
}
