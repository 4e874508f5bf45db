package budget

import (
	"encoding/json"
	"fmt"
	"time"
)

// OperationType classifies items and operations as money coming in or
// going out.
type OperationType int

const (
	Income OperationType = iota
	Expense
)

// String returns the wire representation used in JSON payloads and URLs.
func (t OperationType) String() string {
	switch t {
	case Income:
		return "Income"
	case Expense:
		return "Expense"
	default:
		return fmt.Sprintf("OperationType(%d)", int(t))
	}
}

// ParseOperationType converts the wire representation back into a type.
func ParseOperationType(s string) (OperationType, error) {
	switch s {
	case "Income":
		return Income, nil
	case "Expense":
		return Expense, nil
	default:
		return 0, fmt.Errorf("unknown operation type %q", s)
	}
}

// MarshalJSON encodes the type as its string name.
func (t OperationType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts the string names "Income" and "Expense".
func (t *OperationType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseOperationType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// TypeFilter narrows a collection query to one operation type, or leaves
// it open. It is part of the cache scope key, so it must stay comparable.
type TypeFilter int

const (
	FilterAll TypeFilter = iota
	FilterIncome
	FilterExpense
)

// FilterFor returns the filter matching a single operation type.
func FilterFor(t OperationType) TypeFilter {
	if t == Income {
		return FilterIncome
	}
	return FilterExpense
}

// Types expands the filter into the set of operation types a store query
// should match.
func (f TypeFilter) Types() []OperationType {
	switch f {
	case FilterIncome:
		return []OperationType{Income}
	case FilterExpense:
		return []OperationType{Expense}
	default:
		return []OperationType{Income, Expense}
	}
}

// Item is a named category of operations, tagged Income or Expense.
// Names are unique per type; uniqueness is enforced by the access layer,
// not here.
type Item struct {
	ID   int           `json:"id"`
	Name string        `json:"name"`
	Type OperationType `json:"type"`
}

// Operation is a dated monetary entry referencing an Item. AuthorID is
// set at creation time and never changes afterwards.
type Operation struct {
	ID       int           `json:"id"`
	Date     time.Time     `json:"date"`
	Type     OperationType `json:"type"`
	Sum      float64       `json:"sum"`
	Item     *Item         `json:"item,omitempty"`
	AuthorID string        `json:"authorId"`
}

// Roles recognised by the authorization policy.
const (
	RoleUser  = "User"
	RoleAdmin = "Admin"
)

// User is an account record. PasswordHash is a bcrypt digest and never
// leaves the storage/auth boundary.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
}

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
