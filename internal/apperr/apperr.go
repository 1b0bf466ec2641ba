package apperr

import (
	"errors"
	"fmt"
)

// ErrNotFound marks the "no row" outcome. Lookup paths are allowed to treat
// it as a normal negative result instead of a failure.
var ErrNotFound = errors.New("not found")

// ValidationError reports caller input that fails a build/update rule.
// It is surfaced directly and never retried.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return e.Field + ": " + e.Msg
}

func Validation(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

// InvalidOperation reports structural misuse of an API (a programmer error,
// e.g. adding a child to a leaf node). It is always returned, never suppressed.
type InvalidOperation struct {
	Op  string
	Msg string
}

func (e *InvalidOperation) Error() string {
	return e.Op + ": " + e.Msg
}

// PersistenceError wraps an underlying store failure with the entity and
// operation that triggered it.
type PersistenceError struct {
	Entity string
	Op     string
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func Persistence(entity, op string, err error) error {
	return &PersistenceError{Entity: entity, Op: op, Err: err}
}

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
