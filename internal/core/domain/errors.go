package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a lookup matches nothing or the id is malformed.
	ErrNotFound = errors.New("not found")

	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
)

// ValidationError reports malformed or out-of-range input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

// DataSourceError reports a failed round trip to the upstream interpreter.
// Status is zero when no HTTP response was received.
type DataSourceError struct {
	Status  int
	Message string
	Err     error
}

func (e *DataSourceError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("data source: status %d: %s", e.Status, e.Message)
	}
	return "data source: " + e.Message
}

func (e *DataSourceError) Unwrap() error { return e.Err }
