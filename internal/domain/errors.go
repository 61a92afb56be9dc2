package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidField        = errors.New("invalid field")
	ErrDuplicateKey        = errors.New("duplicate key")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrStoreUnavailable    = errors.New("store unavailable")
	ErrUploadTooLarge      = errors.New("upload too large")
	ErrUploadTypeRejected  = errors.New("upload type rejected")
	ErrInvalidTransition   = errors.New("invalid status transition")
)

// FieldError reports which input field failed validation.
// It matches ErrInvalidField with errors.Is.
type FieldError struct {
	Field   string
	Message string
}

// NewFieldError returns a *FieldError for field.
func NewFieldError(field, message string) *FieldError {
	return &FieldError{Field: field, Message: message}
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidField
}

// FieldOf returns the name of the failing field when err carries a *FieldError.
func FieldOf(err error) string {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe.Field
	}
	return ""
}
