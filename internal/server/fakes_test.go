package server

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-personal-budget/budget"
	"github.com/goliatone/go-personal-budget/storecache"
)

// In-memory stores backing the handler tests. Behaviour mirrors the SQL
// stores: nil-with-nil-error for absent rows, author filtering for
// non-admin range queries.

type fakeItemsStore struct {
	mu     sync.Mutex
	nextID int
	items  map[int]budget.Item
}

func newFakeItemsStore() *fakeItemsStore {
	return &fakeItemsStore{nextID: 1, items: map[int]budget.Item{}}
}

func (s *fakeItemsStore) GetByID(ctx context.Context, id int) (*budget.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item, ok := s.items[id]; ok {
		return &item, nil
	}
	return nil, nil
}

func (s *fakeItemsStore) GetAllByTypes(ctx context.Context, types []budget.OperationType) ([]budget.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []budget.Item{}
	for id := 1; id < s.nextID; id++ {
		item, ok := s.items[id]
		if !ok {
			continue
		}
		for _, t := range types {
			if item.Type == t {
				out = append(out, item)
			}
		}
	}
	return out, nil
}

func (s *fakeItemsStore) Insert(ctx context.Context, item budget.Item) (budget.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item.ID = s.nextID
	s.nextID++
	s.items[item.ID] = item
	return item, nil
}

func (s *fakeItemsStore) Update(ctx context.Context, id int, name string) (*budget.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	item.Name = name
	s.items[id] = item
	return &item, nil
}

func (s *fakeItemsStore) Delete(ctx context.Context, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return false, nil
	}
	delete(s.items, id)
	return true, nil
}

func (s *fakeItemsStore) EqualExists(ctx context.Context, typ budget.OperationType, name string, excludeID int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.ID != excludeID && item.Type == typ && item.Name == name {
			return true, nil
		}
	}
	return false, nil
}

type fakeOperationsStore struct {
	mu     sync.Mutex
	nextID int
	ops    map[int]budget.Operation
}

func newFakeOperationsStore() *fakeOperationsStore {
	return &fakeOperationsStore{nextID: 1, ops: map[int]budget.Operation{}}
}

func (s *fakeOperationsStore) GetByID(ctx context.Context, id int) (*budget.Operation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if op, ok := s.ops[id]; ok {
		return &op, nil
	}
	return nil, nil
}

func (s *fakeOperationsStore) GetAllByTypesInPeriod(ctx context.Context, userID string, isAdmin bool, types []budget.OperationType, from, to time.Time) ([]budget.Operation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []budget.Operation{}
	for id := 1; id < s.nextID; id++ {
		op, ok := s.ops[id]
		if !ok {
			continue
		}
		if !isAdmin && op.AuthorID != userID {
			continue
		}
		if op.Date.Before(from) || op.Date.After(to) {
			continue
		}
		for _, t := range types {
			if op.Type == t {
				out = append(out, op)
			}
		}
	}
	return out, nil
}

func (s *fakeOperationsStore) Insert(ctx context.Context, op budget.Operation) (budget.Operation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	op.ID = s.nextID
	s.nextID++
	s.ops[op.ID] = op
	return op, nil
}

func (s *fakeOperationsStore) Update(ctx context.Context, id int, changes storecache.OperationChanges) (*budget.Operation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	op, ok := s.ops[id]
	if !ok {
		return nil, nil
	}
	op.Date = changes.Date
	op.Type = changes.Type
	op.Sum = changes.Sum
	op.Item = changes.Item
	s.ops[id] = op
	return &op, nil
}

func (s *fakeOperationsStore) Delete(ctx context.Context, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ops[id]; !ok {
		return false, nil
	}
	delete(s.ops, id)
	return true, nil
}

type fakeUsersStore struct {
	mu    sync.Mutex
	users map[string]budget.User
}

func newFakeUsersStore() *fakeUsersStore {
	return &fakeUsersStore{users: map[string]budget.User{}}
}

func (s *fakeUsersStore) FindByID(ctx context.Context, id string) (*budget.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[id]; ok {
		return &user, nil
	}
	return nil, nil
}

func (s *fakeUsersStore) FindByEmail(ctx context.Context, email string) (*budget.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, nil
}

func (s *fakeUsersStore) Insert(ctx context.Context, user budget.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return nil
}
