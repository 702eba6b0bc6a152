package domain

import (
	"errors"
	"fmt"
)

// Common domain errors
var ErrNotFound = errors.New("resource not found")

// ConflictError reports a uniqueness violation in the store.
type ConflictError struct {
	Field string
	Err   error
}

func (e *ConflictError) Error() string {
	if e.Field == "" {
		return "unique constraint violated"
	}
	return fmt.Sprintf("a record with this %s already exists", e.Field)
}

func (e *ConflictError) Unwrap() error { return e.Err }
