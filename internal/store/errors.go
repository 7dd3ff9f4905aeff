package store

import "fmt"

// SchemaErrorKind distinguishes why a mirror database failed to initialize.
type SchemaErrorKind string

const (
	SchemaOpen    SchemaErrorKind = "open"
	SchemaMigrate SchemaErrorKind = "migrate"
)

// SchemaError is fatal: the mirror cannot be used at all.
type SchemaError struct {
	Kind  SchemaErrorKind
	Cause error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error (%s): %v", e.Kind, e.Cause)
}

func (e *SchemaError) Unwrap() error { return e.Cause }

// StoreErrorKind enumerates spec.md §4.C's error kinds.
type StoreErrorKind string

const (
	ErrBusy       StoreErrorKind = "busy"
	ErrCorrupt    StoreErrorKind = "corrupt"
	ErrConstraint StoreErrorKind = "constraint"
	ErrNotFound   StoreErrorKind = "not_found"
	ErrIO         StoreErrorKind = "io"
)

// StoreError is returned by every Mirror Store operation on failure. Busy is
// retried by the sync engines under backoff (see internal/retry); the rest
// are fatal to the current sync attempt.
type StoreError struct {
	Kind  StoreErrorKind
	Cause error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error (%s): %v", e.Kind, e.Cause)
}

func (e *StoreError) Unwrap() error { return e.Cause }

// NotFound reports whether err is a StoreError{Kind: ErrNotFound}.
func NotFound(err error) bool {
	se, ok := err.(*StoreError)
	return ok && se.Kind == ErrNotFound
}
