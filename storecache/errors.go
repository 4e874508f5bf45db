package storecache

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that the requested id does not exist in the store.
// The cache is never mutated on this path.
var ErrNotFound = errors.New("entity not found")

// ConflictError reports caller-level validation failures such as duplicate
// names. Store failures are never wrapped in it.
type ConflictError struct {
	Message string
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return e.Message
}

func conflictf(format string, args ...any) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// IsConflict reports whether err is a validation conflict.
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}
