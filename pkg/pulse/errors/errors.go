// Package errors provides error classification and backoff scheduling for
// event delivery.
//
// The package implements a layered approach:
//   - Typed errors: distinguish envelope, handler, timeout, and gate failures
//   - Categorization: classify delivery errors for retry decisions
//   - Backoff: compute dead-letter retry schedules
package errors

import (
	"errors"
	"fmt"
)

// Category represents how a delivery error should be handled.
type Category int

const (
	// CategoryTransient indicates a retry will likely help.
	// Examples: handler timeouts, downstream hiccups.
	CategoryTransient Category = iota

	// CategoryPermanent indicates retry won't help.
	// Examples: malformed envelopes, invalid subscription configuration.
	CategoryPermanent

	// CategoryExhausted indicates the retry budget has been spent.
	CategoryExhausted
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryTransient:
		return "transient"
	case CategoryPermanent:
		return "permanent"
	case CategoryExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// CategorizedError wraps an error with its category and context.
type CategorizedError struct {
	// Err is the underlying error.
	Err error

	// Category indicates how this error should be handled.
	Category Category

	// Attempts is the number of delivery attempts that have been made.
	Attempts int

	// Context describes what operation was being attempted.
	Context string
}

// Error implements the error interface.
func (e *CategorizedError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s (category: %s, attempts: %d)",
			e.Context, e.Err, e.Category, e.Attempts)
	}
	return fmt.Sprintf("%s (category: %s, attempts: %d)",
		e.Err, e.Category, e.Attempts)
}

// Unwrap returns the underlying error.
func (e *CategorizedError) Unwrap() error {
	return e.Err
}

// NewCategorized creates a new categorized error.
func NewCategorized(err error, category Category, context string) *CategorizedError {
	return &CategorizedError{
		Err:      err,
		Category: category,
		Context:  context,
	}
}

// Transient creates a transient error.
func Transient(err error, context string) *CategorizedError {
	return NewCategorized(err, CategoryTransient, context)
}

// Permanent creates a permanent error.
func Permanent(err error, context string) *CategorizedError {
	return NewCategorized(err, CategoryPermanent, context)
}

// Categorize determines how a delivery error should be handled.
func Categorize(err error) Category {
	if err == nil {
		return CategoryPermanent // shouldn't happen, fail safe
	}

	// Check for already-categorized errors
	var catErr *CategorizedError
	if errors.As(err, &catErr) {
		return catErr.Category
	}

	// Malformed envelopes are never retried
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return CategoryPermanent
	}

	// Timeouts are worth retrying
	var timeoutErr *TimeoutError
	if errors.As(err, &timeoutErr) {
		return CategoryTransient
	}

	// Spent retry budgets stay spent
	var exhErr *RetryExhaustedError
	if errors.As(err, &exhErr) {
		return CategoryExhausted
	}

	// Unknown handler failures default to transient so the dead-letter
	// queue gets a chance to recover them.
	return CategoryTransient
}

// IsRetryable reports whether the error should be retried.
func IsRetryable(err error) bool {
	return Categorize(err) == CategoryTransient
}
