package cache

import (
	"time"

	"github.com/goliatone/go-personal-budget/budget"
)

// Scope identifies a cached collection. It is an explicit tagged struct
// rather than a concatenated string so that differently-shaped queries can
// never collide on a key: an unranged scope and a ranged scope with zero
// times are distinct values, and scopes differing only in owner never
// share an entry.
//
// Scope is comparable and used directly as a map key.
type Scope struct {
	// Filter narrows the collection to one operation type.
	Filter budget.TypeFilter

	// Owner is the user id the collection was queried for. Empty for
	// collections that are not user-scoped (item collections).
	Owner string

	// Ranged reports whether From/To participate in the key. Item
	// collections have no date range; operation collections always do.
	Ranged   bool
	From, To time.Time
}

// CollectionScope builds the key for an unranged, unowned collection.
func CollectionScope(filter budget.TypeFilter) Scope {
	return Scope{Filter: filter}
}

// RangeScope builds the key for a user-scoped, date-ranged collection.
// Times are normalised to UTC and stripped of monotonic readings so that
// equal instants produce equal keys.
func RangeScope(filter budget.TypeFilter, owner string, from, to time.Time) Scope {
	return Scope{
		Filter: filter,
		Owner:  owner,
		Ranged: true,
		From:   from.UTC().Round(0),
		To:     to.UTC().Round(0),
	}
}
