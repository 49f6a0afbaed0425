package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Update and Delete operations targeting a record
// that does not exist. Get operations return nil without an error instead.
var ErrNotFound = errors.New("record not found")

// ErrReadOnly is returned by write operations while the application is in
// read-only mode.
var ErrReadOnly = errors.New("store is in read-only mode")

// StoreError wraps a transport or constraint failure from a backend. The
// gateway performs no retries; callers decide whether to surface, retry, or
// compensate.
type StoreError struct {
	Op     string // operation, e.g. "create task"
	Entity string // entity kind, e.g. "task"
	Err    error  // underlying cause
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError wraps err with operation context. Returns nil if err is nil.
func NewStoreError(op, entity string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Entity: entity, Err: err}
}

// ValidationError reports a required field missing or malformed. It is
// raised before any store call is made, so a validation failure never
// reaches the network.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
