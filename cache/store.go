package cache

import (
	"container/list"
	"sync"
	"time"
)

// entryKind tags the two classes of cache entries.
type entryKind int

const (
	entityEntry entryKind = iota
	collectionEntry
)

// entryKey addresses a single entry. Exactly one of id/scope is
// meaningful, selected by kind; keeping both in one comparable struct lets
// entities and collections share the same weight budget and LRU order.
type entryKey struct {
	kind  entryKind
	id    int
	scope Scope
}

type entry[T any] struct {
	key       entryKey
	weight    int
	expiresAt time.Time // zero for entity entries
	value     T
	values    []T
}

// Store is a size-bounded in-memory cache for one entity kind. It holds
// single-entity entries (weight 1, no expiry) and collection entries
// (weight = number of elements, fixed absolute TTL). When the combined
// weight would exceed the configured cap, least-recently-used entries are
// evicted until the new entry fits.
//
// All methods are safe for concurrent use. Reads and writes never block
// on anything but the internal mutex and never return errors.
type Store[T any] struct {
	mu        sync.Mutex
	maxWeight int
	ttl       time.Duration
	entries   map[entryKey]*list.Element
	lru       *list.List // front = most recently used
	weight    int
	now       func() time.Time
}

// NewStore builds a Store from cfg, falling back to defaults for zero
// values.
func NewStore[T any](cfg Config) *Store[T] {
	if cfg.MaxWeight <= 0 {
		cfg.MaxWeight = DefaultMaxWeight
	}
	if cfg.CollectionTTL <= 0 {
		cfg.CollectionTTL = DefaultCollectionTTL
	}
	return &Store[T]{
		maxWeight: cfg.MaxWeight,
		ttl:       cfg.CollectionTTL,
		entries:   make(map[entryKey]*list.Element),
		lru:       list.New(),
		now:       time.Now,
	}
}

// GetEntity returns the cached entity for id. Entity entries never expire
// on their own; they disappear only through RemoveEntity or eviction.
func (s *Store[T]) GetEntity(id int) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.entries[entryKey{kind: entityEntry, id: id}]
	if !ok {
		var zero T
		return zero, false
	}
	s.lru.MoveToFront(el)
	return el.Value.(*entry[T]).value, true
}

// SetEntity inserts or replaces the single-entity entry for id at weight 1.
func (s *Store[T]) SetEntity(id int, v T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.insert(&entry[T]{
		key:    entryKey{kind: entityEntry, id: id},
		weight: 1,
		value:  v,
	})
}

// RemoveEntity deletes the single-entity entry for id. Absent ids are a
// no-op.
func (s *Store[T]) RemoveEntity(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.remove(entryKey{kind: entityEntry, id: id})
}

// GetCollection returns the cached collection for scope. Expiry is checked
// here, at read time; there is no background sweep. An expired entry is
// dropped and reported as a miss.
func (s *Store[T]) GetCollection(scope Scope) ([]T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := entryKey{kind: collectionEntry, scope: scope}
	el, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	ent := el.Value.(*entry[T])
	if !s.now().Before(ent.expiresAt) {
		s.remove(key)
		return nil, false
	}
	s.lru.MoveToFront(el)
	return ent.values, true
}

// SetCollection installs a collection entry for scope. The entry weighs
// len(items) (at least 1) and carries an absolute TTL stamped now; repeated
// reads do not extend it.
func (s *Store[T]) SetCollection(scope Scope, items []T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	weight := len(items)
	if weight < 1 {
		weight = 1
	}
	s.insert(&entry[T]{
		key:       entryKey{kind: collectionEntry, scope: scope},
		weight:    weight,
		expiresAt: s.now().Add(s.ttl),
		values:    items,
	})
}

// RemoveCollection deletes the collection entry for exactly this scope.
// Callers invalidating after a write are responsible for removing every
// scope variant they know about; there is no wildcard removal.
func (s *Store[T]) RemoveCollection(scope Scope) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.remove(entryKey{kind: collectionEntry, scope: scope})
}

// Len reports the number of live entries.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Weight reports the combined weight of live entries. Never exceeds the
// configured cap.
func (s *Store[T]) Weight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.weight
}

// insert admits ent, replacing any entry under the same key and evicting
// from the LRU tail until the weight cap holds. Entries heavier than the
// cap itself are not admitted. Caller holds the lock.
func (s *Store[T]) insert(ent *entry[T]) {
	s.remove(ent.key)

	if ent.weight > s.maxWeight {
		return
	}
	for s.weight+ent.weight > s.maxWeight {
		oldest := s.lru.Back()
		if oldest == nil {
			break
		}
		s.remove(oldest.Value.(*entry[T]).key)
	}

	el := s.lru.PushFront(ent)
	s.entries[ent.key] = el
	s.weight += ent.weight
}

// remove drops the entry under key, if any. Caller holds the lock.
func (s *Store[T]) remove(key entryKey) {
	el, ok := s.entries[key]
	if !ok {
		return
	}
	s.weight -= el.Value.(*entry[T]).weight
	s.lru.Remove(el)
	delete(s.entries, key)
}
