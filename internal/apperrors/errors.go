package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the partner account domain. Handlers map these to
// HTTP status codes; services return them (optionally wrapped).
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account is temporarily locked")
	ErrAccountBlocked     = errors.New("account is blocked")
	ErrNotFound           = errors.New("not found")
	ErrRateLimited        = errors.New("too many requests")
)

// ValidationError carries one message per failed field. The messages are
// joined for display at the boundary.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Fields, "; ")
}

// NewValidation builds a ValidationError from field-level messages.
func NewValidation(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// DuplicateKeyError reports a unique-constraint violation on a named field.
type DuplicateKeyError struct {
	Field string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s already exists", e.Field)
}

// NewDuplicate builds a DuplicateKeyError for the given field.
func NewDuplicate(field string) *DuplicateKeyError {
	return &DuplicateKeyError{Field: field}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsDuplicate reports whether err is (or wraps) a DuplicateKeyError.
func IsDuplicate(err error) bool {
	var de *DuplicateKeyError
	return errors.As(err, &de)
}

// StatusCode maps a domain error to its HTTP status code.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return 200
	case IsValidation(err):
		return 400
	case IsDuplicate(err):
		return 409
	case errors.Is(err, ErrInvalidCredentials):
		return 401
	case errors.Is(err, ErrAccountBlocked):
		return 403
	case errors.Is(err, ErrNotFound):
		return 404
	case errors.Is(err, ErrAccountLocked):
		return 423
	case errors.Is(err, ErrRateLimited):
		return 429
	default:
		return 500
	}
}
