package directory

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a record or identity does not exist.
	// It is a normal negative result, not a fault.
	ErrNotFound = errors.New("record not found")

	// ErrUserExists is returned when registration hits an email that is
	// already taken.
	ErrUserExists = errors.New("user already exists")

	// ErrBadCredentials is returned when authentication fails password
	// verification.
	ErrBadCredentials = errors.New("bad credentials")

	// ErrInvalidRecord is returned when a write is missing required
	// attributes. No persistence is attempted.
	ErrInvalidRecord = errors.New("required attributes missing")

	// ErrNotPublisher is returned when a caller tries to publish or update
	// an application on behalf of a company they do not administer.
	ErrNotPublisher = errors.New("caller is not the publisher administrator")

	// ErrNotSupported is returned by operations that are deliberately
	// stubbed out, such as user deletion.
	ErrNotSupported = errors.New("operation not supported")
)

// PersistError signals that a durable write did not happen. The record is
// not considered saved and the in-memory state is unchanged.
type PersistError struct {
	Key string // record key that failed to persist
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persisting record %q: %v", e.Key, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }
