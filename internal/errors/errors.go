package errors

import (
	"errors"
	"fmt"
)

// Common error types for the study group client
var (
	// Credential errors
	ErrNoRefreshToken = errors.New("no refresh token stored")
	ErrRefreshFailed  = errors.New("token refresh failed")
	ErrCorruptCache   = errors.New("corrupt cached value")

	// Transport errors
	ErrNetwork         = errors.New("Network error. Please check your connection.")
	ErrUnexpected      = errors.New("An unexpected error occurred")
	ErrInvalidResponse = errors.New("invalid response body")

	// Input errors
	ErrInvalidInput = errors.New("invalid input")

	// General errors
	ErrNotFound = errors.New("not found")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
