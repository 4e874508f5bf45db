package bunstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-personal-budget/budget"
	"github.com/goliatone/go-personal-budget/storecache"
)

func openTestDB(t *testing.T) *bun.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?cache=shared&_fk=1"
	db, err := Open(DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	return db
}

func TestItemsStoreRoundTrip(t *testing.T) {
	store := NewItemsStore(openTestDB(t))
	ctx := context.Background()

	created, err := store.Insert(ctx, budget.Item{Name: "Groceries", Type: budget.Expense})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected an assigned id")
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if got == nil || got.Name != "Groceries" || got.Type != budget.Expense {
		t.Fatalf("unexpected item: %+v", got)
	}

	missing, err := store.GetByID(ctx, created.ID+100)
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for a missing id, got %+v", missing)
	}
}

func TestItemsStoreGetAllByTypes(t *testing.T) {
	store := NewItemsStore(openTestDB(t))
	ctx := context.Background()

	for _, seed := range []budget.Item{
		{Name: "Salary", Type: budget.Income},
		{Name: "Groceries", Type: budget.Expense},
		{Name: "Transport", Type: budget.Expense},
	} {
		if _, err := store.Insert(ctx, seed); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	expenses, err := store.GetAllByTypes(ctx, []budget.OperationType{budget.Expense})
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if len(expenses) != 2 {
		t.Fatalf("expected 2 expenses, got %d", len(expenses))
	}
	if expenses[0].ID > expenses[1].ID {
		t.Error("expected id order")
	}

	all, err := store.GetAllByTypes(ctx, []budget.OperationType{budget.Income, budget.Expense})
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 items, got %d", len(all))
	}
}

func TestItemsStoreUpdate(t *testing.T) {
	store := NewItemsStore(openTestDB(t))
	ctx := context.Background()

	created, err := store.Insert(ctx, budget.Item{Name: "Groceries", Type: budget.Expense})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	updated, err := store.Update(ctx, created.ID, "Food")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated == nil || updated.Name != "Food" {
		t.Fatalf("unexpected result: %+v", updated)
	}

	missing, err := store.Update(ctx, created.ID+100, "Nope")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for a missing id, got %+v", missing)
	}
}

func TestItemsStoreDelete(t *testing.T) {
	store := NewItemsStore(openTestDB(t))
	ctx := context.Background()

	created, err := store.Insert(ctx, budget.Item{Name: "Groceries", Type: budget.Expense})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	deleted, err := store.Delete(ctx, created.ID)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if !deleted {
		t.Fatal("expected the row to be deleted")
	}

	again, err := store.Delete(ctx, created.ID)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if again {
		t.Fatal("expected false for an already-deleted id")
	}
}

func TestItemsStoreEqualExists(t *testing.T) {
	store := NewItemsStore(openTestDB(t))
	ctx := context.Background()

	created, err := store.Insert(ctx, budget.Item{Name: "Groceries", Type: budget.Expense})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	exists, err := store.EqualExists(ctx, budget.Expense, "Groceries", 0)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !exists {
		t.Error("expected the name to be taken")
	}

	// Excluding the row itself frees the name, as renames require.
	exists, err = store.EqualExists(ctx, budget.Expense, "Groceries", created.ID)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if exists {
		t.Error("expected the name to be free when excluding its own row")
	}

	// The other type does not collide.
	exists, err = store.EqualExists(ctx, budget.Income, "Groceries", 0)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if exists {
		t.Error("expected no collision across types")
	}
}

func seedOperation(t *testing.T, store *OperationsStore, item *budget.Item, author string, date time.Time, typ budget.OperationType, sum float64) budget.Operation {
	t.Helper()
	created, err := store.Insert(context.Background(), budget.Operation{
		Date:     date,
		Type:     typ,
		Sum:      sum,
		Item:     item,
		AuthorID: author,
	})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	return created
}

func TestOperationsStoreRoundTripWithItem(t *testing.T) {
	db := openTestDB(t)
	items := NewItemsStore(db)
	store := NewOperationsStore(db)
	ctx := context.Background()

	item, err := items.Insert(ctx, budget.Item{Name: "Groceries", Type: budget.Expense})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	created := seedOperation(t, store, &item, "alice", date, budget.Expense, 25.50)

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected the operation")
	}
	if got.AuthorID != "alice" || got.Sum != 25.50 {
		t.Errorf("unexpected operation: %+v", got)
	}
	if got.Item == nil || got.Item.Name != "Groceries" {
		t.Errorf("expected the item relation to be loaded, got %+v", got.Item)
	}

	missing, err := store.GetByID(ctx, created.ID+100)
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for a missing id, got %+v", missing)
	}
}

func TestOperationsStoreRangeQuery(t *testing.T) {
	db := openTestDB(t)
	items := NewItemsStore(db)
	store := NewOperationsStore(db)
	ctx := context.Background()

	item, err := items.Insert(ctx, budget.Item{Name: "Groceries", Type: budget.Expense})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	jan10 := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	jan20 := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	feb1 := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	seedOperation(t, store, &item, "alice", jan10, budget.Expense, 10)
	seedOperation(t, store, &item, "alice", jan20, budget.Expense, 20)
	seedOperation(t, store, &item, "bob", jan20, budget.Expense, 99)
	seedOperation(t, store, &item, "alice", feb1, budget.Expense, 30)

	both := []budget.OperationType{budget.Income, budget.Expense}

	// The bounds are inclusive.
	got, err := store.GetAllByTypesInPeriod(ctx, "alice", false, both, jan10, jan20)
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected alice's 2 january operations, got %d", len(got))
	}
	for _, op := range got {
		if op.AuthorID != "alice" {
			t.Errorf("author filter leaked: %+v", op)
		}
		if op.Item == nil {
			t.Error("expected the item relation on range results")
		}
	}

	// Admins see every author.
	got, err = store.GetAllByTypesInPeriod(ctx, "admin", true, both, jan10, jan20)
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 operations for the admin, got %d", len(got))
	}

	// Type filtering.
	got, err = store.GetAllByTypesInPeriod(ctx, "alice", false, []budget.OperationType{budget.Income}, jan10, feb1)
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no incomes, got %d", len(got))
	}
}

func TestOperationsStoreUpdateKeepsAuthor(t *testing.T) {
	db := openTestDB(t)
	items := NewItemsStore(db)
	store := NewOperationsStore(db)
	ctx := context.Background()

	item, err := items.Insert(ctx, budget.Item{Name: "Groceries", Type: budget.Expense})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	created := seedOperation(t, store, &item, "alice", date, budget.Expense, 25)

	updated, err := store.Update(ctx, created.ID, storecache.OperationChanges{
		Date: date.AddDate(0, 0, 1),
		Type: budget.Expense,
		Sum:  40,
		Item: &item,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated == nil {
		t.Fatal("expected the updated row")
	}
	if updated.Sum != 40 {
		t.Errorf("expected the new sum, got %v", updated.Sum)
	}
	if updated.AuthorID != "alice" {
		t.Errorf("author must never change, got %q", updated.AuthorID)
	}

	missing, err := store.Update(ctx, created.ID+100, storecache.OperationChanges{Date: date, Type: budget.Expense})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for a missing id, got %+v", missing)
	}
}

func TestOperationsStoreDelete(t *testing.T) {
	db := openTestDB(t)
	items := NewItemsStore(db)
	store := NewOperationsStore(db)
	ctx := context.Background()

	item, err := items.Insert(ctx, budget.Item{Name: "Groceries", Type: budget.Expense})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	created := seedOperation(t, store, &item, "alice", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), budget.Expense, 25)

	deleted, err := store.Delete(ctx, created.ID)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if !deleted {
		t.Fatal("expected the row to be deleted")
	}

	again, err := store.Delete(ctx, created.ID)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if again {
		t.Fatal("expected false for an already-deleted id")
	}
}

func TestUsersStore(t *testing.T) {
	store := NewUsersStore(openTestDB(t))
	ctx := context.Background()

	user := budget.User{ID: "user-1", Email: "alice@example.com", PasswordHash: "hash", Role: budget.RoleUser}
	if err := store.Insert(ctx, user); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	byID, err := store.FindByID(ctx, "user-1")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if byID == nil || byID.Email != "alice@example.com" {
		t.Fatalf("unexpected user: %+v", byID)
	}

	byEmail, err := store.FindByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if byEmail == nil || byEmail.ID != "user-1" {
		t.Fatalf("unexpected user: %+v", byEmail)
	}

	missing, err := store.FindByEmail(ctx, "nobody@example.com")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for an unknown email, got %+v", missing)
	}
}

func TestUsersStoreSeedAdminIdempotent(t *testing.T) {
	store := NewUsersStore(openTestDB(t))
	ctx := context.Background()

	if err := store.SeedAdmin(ctx, "admin-1", "admin@example.com", "hash"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	// A second seed with a different id must not create or replace anything.
	if err := store.SeedAdmin(ctx, "admin-2", "admin@example.com", "other"); err != nil {
		t.Fatalf("second seed failed: %v", err)
	}

	admin, err := store.FindByEmail(ctx, "admin@example.com")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if admin == nil || admin.ID != "admin-1" {
		t.Fatalf("expected the original admin to survive, got %+v", admin)
	}
	if !admin.IsAdmin() {
		t.Errorf("expected the admin role, got %q", admin.Role)
	}
}
