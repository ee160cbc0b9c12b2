package vocabulary

import (
	"errors"
	"fmt"
)

var (
	// ErrGeneratorUnavailable is returned by operations that need the Content
	// Generator when none is configured.
	ErrGeneratorUnavailable = errors.New("content generator is not configured")

	// ErrBackfillInProgress is returned when a hint backfill is already running.
	ErrBackfillInProgress = errors.New("hint backfill already in progress")
)

// ServiceError is a custom error type for vocabulary service errors.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("vocabulary service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("vocabulary service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
