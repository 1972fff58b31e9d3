// Package event provides the in-process event bus that decouples the
// platform's business features from one another.
//
// The package implements:
//   - Event envelope with stamping and structural validation
//   - Subscription registry with priority-ordered delivery
//   - Sequential dispatch with per-handler timeouts
//   - Dead-letter queue with scheduled backoff retries
//   - Rolling per-type metrics and a bounded event history
//
// Producers persist their domain facts first, then publish an event
// describing what happened. Publish never raises for subscriber
// misbehavior; the returned ProcessingResult carries per-handler
// outcomes. Delivery is at-most-once per publish with dead-letter
// recovery; there is no cross-process delivery and no durable queue
// state.
package event
