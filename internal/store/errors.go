package store

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested item does not exist in the store.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would make two items share a
	// normalized source or target text.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an item fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrCorruptPayload is returned by the codec when a persisted collection
	// cannot be decoded as a whole.
	ErrCorruptPayload = errors.New("corrupt collection payload")

	// ErrNoPayload is returned by a Backend when nothing has been persisted yet.
	ErrNoPayload = errors.New("no persisted collection")

	// ErrItemNotFound indicates that the requested vocabulary item does not exist.
	ErrItemNotFound = fmt.Errorf("%w: vocabulary item", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// DuplicateItemError reports which existing item blocked an insert or update.
// It matches ErrDuplicate with errors.Is.
type DuplicateItemError struct {
	Field      string    // "source_text" or "target_text"
	Value      string    // the normalized text that collided
	ExistingID uuid.UUID // the item already holding Value
}

// Error implements the error interface for DuplicateItemError.
func (e *DuplicateItemError) Error() string {
	return fmt.Sprintf("%s: %s %q is already used by item %s", ErrDuplicate, e.Field, e.Value, e.ExistingID)
}

// Is makes errors.Is(err, ErrDuplicate) succeed.
func (e *DuplicateItemError) Is(target error) bool {
	return target == ErrDuplicate
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "collection", "item")
	Operation string // The operation that failed (e.g., "load", "save")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
