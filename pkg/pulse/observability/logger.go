// Package observability provides production-grade observability features
// for the pulse event bus: structured logging, metrics, and distributed
// tracing.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds event context to a logger.
// Returns a new logger with event_id, event_type, and source fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "evt-123", "leave.request_submitted", "leave-api")
//	enriched.Info("dispatching") // includes event_id, event_type, source
func EnrichLogger(logger *slog.Logger, eventID, eventType, source string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("event_id", eventID),
		slog.String("event_type", eventType),
		slog.String("source", source),
	)
}

// LogPublishComplete logs the outcome of a publish call.
func LogPublishComplete(logger *slog.Logger, eventID, eventType string, success bool, handlers int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("event published",
		slog.String("event_id", eventID),
		slog.String("event_type", eventType),
		slog.Bool("success", success),
		slog.Int("handlers", handlers),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogNoSubscribers logs a publish that found no subscriptions.
// A legal no-op, logged at debug level.
func LogNoSubscribers(logger *slog.Logger, eventID, eventType string) {
	if logger == nil {
		return
	}
	logger.Debug("no subscribers for event type",
		slog.String("event_id", eventID),
		slog.String("event_type", eventType),
	)
}

// LogHandlerError logs a failed handler invocation.
func LogHandlerError(logger *slog.Logger, eventID, subscriptionID string, err error, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Error("handler failed",
		slog.String("event_id", eventID),
		slog.String("subscription_id", subscriptionID),
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogGateBypass logs an event skipped by the gating collaborator.
func LogGateBypass(logger *slog.Logger, eventID, eventType, reason string) {
	if logger == nil {
		return
	}
	logger.Info("event processing gated off",
		slog.String("event_id", eventID),
		slog.String("event_type", eventType),
		slog.String("reason", reason),
	)
}

// LogGateError logs a gate evaluation failure (non-fatal, fail-open).
func LogGateError(logger *slog.Logger, eventID string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("gate evaluation failed, proceeding",
		slog.String("event_id", eventID),
		slog.String("error", err.Error()),
	)
}

// LogDeadLetter logs a failed delivery entering the dead-letter queue.
func LogDeadLetter(logger *slog.Logger, eventID, subscriptionID string, attempts int, nextRetry time.Time) {
	if logger == nil {
		return
	}
	logger.Warn("delivery dead-lettered",
		slog.String("event_id", eventID),
		slog.String("subscription_id", subscriptionID),
		slog.Int("attempts", attempts),
		slog.Time("next_retry", nextRetry),
	)
}

// LogDeadLetterEvicted logs an entry evicted to make room in a full queue.
func LogDeadLetterEvicted(logger *slog.Logger, eventID, subscriptionID string, attempts int) {
	if logger == nil {
		return
	}
	logger.Warn("dead-letter queue full, oldest entry evicted",
		slog.String("event_id", eventID),
		slog.String("subscription_id", subscriptionID),
		slog.Int("attempts", attempts),
	)
}

// LogRetryOutcome logs a dead-letter retry attempt.
func LogRetryOutcome(logger *slog.Logger, eventID, subscriptionID string, attempts int, err error) {
	if logger == nil {
		return
	}
	if err != nil {
		logger.Warn("dead-letter retry failed",
			slog.String("event_id", eventID),
			slog.String("subscription_id", subscriptionID),
			slog.Int("attempts", attempts),
			slog.String("error", err.Error()),
		)
		return
	}
	logger.Info("dead-letter retry succeeded",
		slog.String("event_id", eventID),
		slog.String("subscription_id", subscriptionID),
		slog.Int("attempts", attempts),
	)
}

// LogRetryExhausted logs an entry dropped after outliving its retry budget.
// There is no escalation beyond this log line.
func LogRetryExhausted(logger *slog.Logger, eventID, subscriptionID string, attempts int, lastError string) {
	if logger == nil {
		return
	}
	logger.Warn("delivery permanently failed, dropping dead-letter entry",
		slog.String("event_id", eventID),
		slog.String("subscription_id", subscriptionID),
		slog.Int("attempts", attempts),
		slog.String("last_error", lastError),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
