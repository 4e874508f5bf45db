package cache

import (
	"testing"
	"time"

	"github.com/goliatone/go-personal-budget/budget"
)

func TestCollectionScopeDistinctPerFilter(t *testing.T) {
	if CollectionScope(budget.FilterAll) == CollectionScope(budget.FilterIncome) {
		t.Fatal("filters must produce distinct scopes")
	}
}

func TestRangeScopeEquality(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	a := RangeScope(budget.FilterAll, "user-1", from, to)
	b := RangeScope(budget.FilterAll, "user-1", from, to)
	if a != b {
		t.Fatal("identical queries must produce equal scopes")
	}
}

func TestRangeScopeNormalisesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	utc := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	local := utc.In(loc)

	a := RangeScope(budget.FilterAll, "user-1", utc, utc)
	b := RangeScope(budget.FilterAll, "user-1", local, local)
	if a != b {
		t.Fatal("equal instants in different locations must produce equal scopes")
	}
}

func TestRangeScopeStripsMonotonicReading(t *testing.T) {
	now := time.Now() // carries a monotonic reading
	wall := now.Round(0)

	a := RangeScope(budget.FilterAll, "user-1", now, now)
	b := RangeScope(budget.FilterAll, "user-1", wall, wall)
	if a != b {
		t.Fatal("monotonic readings must not leak into scope keys")
	}
}

func TestScopesDifferingInOwnerAreDistinct(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	a := RangeScope(budget.FilterAll, "user-1", from, to)
	b := RangeScope(budget.FilterAll, "user-2", from, to)
	if a == b {
		t.Fatal("scopes of different owners must never collide")
	}
}

func TestUnrangedAndRangedScopesAreDistinct(t *testing.T) {
	unranged := CollectionScope(budget.FilterAll)
	ranged := RangeScope(budget.FilterAll, "", time.Time{}, time.Time{})
	if unranged == ranged {
		t.Fatal("an unranged scope must differ from a ranged scope with zero times")
	}
}
