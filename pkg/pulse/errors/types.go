package errors

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError indicates a malformed event envelope.
// It is returned synchronously from publish and is never retried.
type ValidationError struct {
	// Fields lists the envelope fields that failed validation.
	Fields []string

	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("invalid event envelope (%s): %s",
			strings.Join(e.Fields, ", "), e.Message)
	}
	return fmt.Sprintf("invalid event envelope: %s", e.Message)
}

// HandlerError indicates a subscriber failed to process an event.
// It is captured in the processing result, never raised to the publisher.
type HandlerError struct {
	SubscriptionID string
	Message        string
	Err            error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("handler %s: %s: %v", e.SubscriptionID, e.Message, e.Err)
	}
	return fmt.Sprintf("handler %s: %s", e.SubscriptionID, e.Message)
}

// Unwrap returns the underlying error.
func (e *HandlerError) Unwrap() error {
	return e.Err
}

// TimeoutError indicates a handler exceeded its delivery budget.
// The handler may still be running; the bus has stopped waiting for it.
type TimeoutError struct {
	SubscriptionID string
	Timeout        time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("handler %s timed out after %s", e.SubscriptionID, e.Timeout)
}

// GateError indicates the gating collaborator could not be evaluated.
// The bus swallows it and proceeds (fail-open).
type GateError struct {
	FlagKey string
	Err     error
}

// Error implements the error interface.
func (e *GateError) Error() string {
	return fmt.Sprintf("gate evaluation for %q failed: %v", e.FlagKey, e.Err)
}

// Unwrap returns the underlying error.
func (e *GateError) Unwrap() error {
	return e.Err
}

// RetryExhaustedError indicates a dead-letter entry outlived its retry
// budget. Logged at warning level and dropped, never escalated.
type RetryExhaustedError struct {
	EventID        string
	SubscriptionID string
	Attempts       int
	LastError      string
}

// Error implements the error interface.
func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("event %s exhausted %d delivery attempts to %s: %s",
		e.EventID, e.Attempts, e.SubscriptionID, e.LastError)
}
