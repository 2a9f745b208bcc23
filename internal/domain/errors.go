package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness constraint was violated.
	ErrAlreadyExists = errors.New("already exists")
	// ErrEmptyCart indicates checkout was attempted with no cart lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidTransition indicates a disallowed order status transition.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError marks a malformed request. Surfaced to the caller as-is,
// never retried.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

// Validation builds a ValidationError from a format string.
func Validation(format string, args ...interface{}) error {
	return ValidationError(fmt.Sprintf(format, args...))
}

// InsufficientStockError carries the remaining quantity so clients can offer
// to adjust. Advisory on cart mutations, authoritative at checkout.
type InsufficientStockError struct {
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock available, only %d items left", e.Available)
}
