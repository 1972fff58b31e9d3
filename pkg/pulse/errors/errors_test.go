package errors

import (
	"errors"
	"testing"
	"time"
)

func TestCategoryString(t *testing.T) {
	tests := []struct {
		category Category
		expected string
	}{
		{CategoryTransient, "transient"},
		{CategoryPermanent, "permanent"},
		{CategoryExhausted, "exhausted"},
		{Category(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.category.String(); got != tt.expected {
				t.Errorf("Category(%d).String() = %s, want %s", tt.category, got, tt.expected)
			}
		})
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Category
	}{
		{"nil error", nil, CategoryPermanent},
		{"validation error", &ValidationError{Fields: []string{"type"}}, CategoryPermanent},
		{"timeout error", &TimeoutError{SubscriptionID: "s1", Timeout: time.Second}, CategoryTransient},
		{"retry exhausted", &RetryExhaustedError{EventID: "e1"}, CategoryExhausted},
		{"categorized error", &CategorizedError{Category: CategoryPermanent}, CategoryPermanent},
		{"plain handler failure", errors.New("boom"), CategoryTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Categorize(tt.err); got != tt.expected {
				t.Errorf("Categorize() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestCategorizedError(t *testing.T) {
	t.Run("error message with context", func(t *testing.T) {
		err := NewCategorized(errors.New("failed"), CategoryTransient, "deliver")
		expected := "deliver: failed (category: transient, attempts: 0)"
		if got := err.Error(); got != expected {
			t.Errorf("Error() = %q, want %q", got, expected)
		}
	})

	t.Run("unwrap", func(t *testing.T) {
		inner := errors.New("inner error")
		err := NewCategorized(inner, CategoryPermanent, "test")
		if !errors.Is(err, inner) {
			t.Error("Unwrap should return inner error")
		}
	})
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Fields: []string{"type", "source"}, Message: "missing required fields"}
	want := "invalid event envelope (type, source): missing required fields"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestHandlerErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &HandlerError{SubscriptionID: "s1", Message: "delivery failed", Err: inner}
	if !errors.Is(err, inner) {
		t.Error("Unwrap should return inner error")
	}
}

func TestBackoffDelay(t *testing.T) {
	b := Backoff{Base: 60 * time.Second}

	tests := []struct {
		attempts int
		want     time.Duration
	}{
		{0, 60 * time.Second},
		{1, 60 * time.Second},
		{2, 120 * time.Second},
		{3, 180 * time.Second},
	}

	for _, tt := range tests {
		if got := b.Delay(tt.attempts); got != tt.want {
			t.Errorf("Delay(%d) = %s, want %s", tt.attempts, got, tt.want)
		}
	}
}

func TestBackoffCap(t *testing.T) {
	b := Backoff{Base: 60 * time.Second, Max: 90 * time.Second}
	if got := b.Delay(5); got != 90*time.Second {
		t.Errorf("Delay(5) = %s, want capped 90s", got)
	}
}

func TestBackoffNextRetry(t *testing.T) {
	b := DefaultBackoff
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if got := b.NextRetry(now, 2); !got.Equal(now.Add(120 * time.Second)) {
		t.Errorf("NextRetry = %s", got)
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(&ValidationError{}) {
		t.Error("validation errors must not be retryable")
	}
	if !IsRetryable(errors.New("boom")) {
		t.Error("plain handler failures should be retryable")
	}
}
