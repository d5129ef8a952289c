package errors

import (
	"errors"
	"fmt"
)

// Application-specific errors
var (
	// ErrModelUnavailable means the forecast provider has not finished
	// training or initialization. Retryable precondition.
	ErrModelUnavailable = errors.New("forecast model not available")

	// ErrNoData means neither authoritative inventory nor historical
	// sales exist for the requested scope.
	ErrNoData = errors.New("no inventory or sales data available")

	// ErrUnknownItem means a single-item query matched nothing in the
	// inventory table and nothing in sales history.
	ErrUnknownItem = errors.New("unknown item")

	// ErrInvalidRange means a range query asked for a day count
	// outside [1, 365].
	ErrInvalidRange = errors.New("days must be between 1 and 365")

	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("resource conflict")
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// ForecastError wraps a failure of the upstream forecast call. The
// upstream message is carried through, not swallowed, and the engine
// never substitutes default predictions for a failed batch.
type ForecastError struct {
	Stage string
	Err   error
}

func (e ForecastError) Error() string {
	return fmt.Sprintf("forecast error at stage %s: %v", e.Stage, e.Err)
}

func (e ForecastError) Unwrap() error {
	return e.Err
}

// DatabaseError represents a database-related error
type DatabaseError struct {
	Operation string
	Err       error
}

func (e DatabaseError) Error() string {
	return fmt.Sprintf("database error during %s: %v", e.Operation, e.Err)
}

func (e DatabaseError) Unwrap() error {
	return e.Err
}
