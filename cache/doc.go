// Package cache implements the in-process cache engine behind the budget
// service's read paths.
//
// # Overview
//
// Each entity kind (items, operations) gets its own Store instance. A
// Store holds two classes of entries:
//
//   - Single-entity entries, keyed by id. They weigh 1 and never expire;
//     the access layer removes or replaces them explicitly on writes.
//   - Collection entries, keyed by a Scope (type filter, optional owner,
//     optional date range). They weigh as much as the number of elements
//     they hold and carry a short absolute TTL stamped at insertion;
//     reads never extend it.
//
// Expiry is evaluated at read time; there is no background sweeper. The
// combined weight of all entries is capped, and least-recently-used
// entries are evicted to admit new ones. Callers should treat eviction
// order as unspecified beyond the cap being respected.
//
// # Usage
//
//	items := cache.NewStore[budget.Item](cache.DefaultConfig())
//	items.SetEntity(1, item)
//	if cached, ok := items.GetEntity(1); ok { ... }
//
//	scope := cache.CollectionScope(budget.FilterIncome)
//	items.SetCollection(scope, list)
//
// Scope is an explicit tagged struct rather than a concatenated string so
// that differently-shaped queries can never collide on a key, and so that
// two users' ranged collections always key separately.
//
// # Concurrency
//
// Store methods are mutex-guarded and safe for concurrent use. There are
// no cross-operation transactions: a read-miss-then-populate sequence in
// the access layer is not atomic against a concurrent removal, which is an
// accepted, self-healing staleness window.
package cache
