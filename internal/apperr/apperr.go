package apperr

import (
	"errors"
	"fmt"
)

// ValidationError carries per-field messages for a rejected write.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Fields)
}

// NewValidation builds a ValidationError for a single field.
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// PermissionError distinguishes "not authenticated" from
// "authenticated but not allowed".
type PermissionError struct {
	Authenticated bool
	Reason        string
}

func (e *PermissionError) Error() string {
	if !e.Authenticated {
		return "authentication required"
	}
	return e.Reason
}

func NotAuthenticated() *PermissionError {
	return &PermissionError{Authenticated: false}
}

func Forbidden(reason string) *PermissionError {
	return &PermissionError{Authenticated: true, Reason: reason}
}

// NotFoundError covers both a missing row and a row the requester
// is not allowed to see; callers cannot tell the two apart.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

func NotFound(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
