// Package apperr defines the error kinds shared by the service layer.
// Services wrap these with fmt.Errorf("%w: ...") and the RPC error
// interceptor translates them into client-facing codes.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrAlreadyExists    = errors.New("already exists")
	ErrInvalidSignature = errors.New("invalid payment signature")
)

// Validation returns an ErrValidation with a formatted message.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFound returns an ErrNotFound naming the missing entity.
func NotFound(entity, id string) error {
	if id == "" {
		return fmt.Errorf("%w: %s", ErrNotFound, entity)
	}
	return fmt.Errorf("%w: %s %s", ErrNotFound, entity, id)
}

// PermissionDenied returns an ErrPermissionDenied with a formatted message.
func PermissionDenied(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPermissionDenied, fmt.Sprintf(format, args...))
}

// IsClientError reports whether err belongs to a kind the caller caused.
func IsClientError(err error) bool {
	for _, kind := range []error{
		ErrValidation, ErrNotFound, ErrPermissionDenied,
		ErrUnauthenticated, ErrAlreadyExists, ErrInvalidSignature,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
