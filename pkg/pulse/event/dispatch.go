package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	perrors "github.com/elevatehq/pulse/pkg/pulse/errors"
	"github.com/elevatehq/pulse/pkg/pulse/observability"
)

// HandlerResult is the outcome of one delivery attempt.
type HandlerResult struct {
	SubscriptionID string
	Success        bool
	Err            error
	ExecutionTime  time.Duration
}

// ProcessingResult is the aggregate outcome of one publish call.
type ProcessingResult struct {
	// Event is the stamped envelope as delivered.
	Event *Event

	// Success is true when every handler succeeded. A publish with no
	// subscribers is a success.
	Success bool

	// HandlerResults holds per-delivery outcomes, in delivery order.
	HandlerResults []HandlerResult

	// TotalTime is the wall-clock time for the whole publish call.
	TotalTime time.Duration
}

// Publish stamps the input into an envelope and delivers it to every
// subscription for its type, sequentially, highest priority first.
//
// Handler failures never surface as an error; they are captured in the
// result and, for dead-letter-enabled subscriptions, queued for retry.
// The only error returned is a *errors.ValidationError for a malformed
// envelope.
func (b *Bus) Publish(ctx context.Context, in Input) (*ProcessingResult, error) {
	start := time.Now()
	evt := stamp(in, start)

	if verr := validate(evt); verr != nil {
		return nil, verr
	}

	ctx, span := b.spans.StartPublishSpan(ctx, evt.Type, evt.ID)

	if skipped, reason := b.gated(ctx, evt); skipped {
		observability.LogGateBypass(b.logger, evt.ID, evt.Type, reason)
		b.spans.AddSpanEvent(ctx, "pulse.gated")
		b.spans.EndSpanWithError(span, nil)
		return &ProcessingResult{
			Event:     evt,
			Success:   true,
			TotalTime: time.Since(start),
		}, nil
	}

	b.history.append(evt)

	subs := b.subscriptionsFor(evt.Type)
	if len(subs) == 0 {
		observability.LogNoSubscribers(b.logger, evt.ID, evt.Type)
		total := time.Since(start)
		b.metrics.record(evt.Type, true, total)
		b.recorder.RecordPublish(ctx, evt.Type, true, total)
		b.spans.EndSpanWithError(span, nil)
		return &ProcessingResult{
			Event:     evt,
			Success:   true,
			TotalTime: total,
		}, nil
	}

	results := make([]HandlerResult, 0, len(subs))
	success := true

	for _, sub := range subs {
		hctx, hspan := b.spans.StartHandlerSpan(ctx, sub.ID)
		hstart := time.Now()
		err := b.invoke(hctx, sub, evt)
		elapsed := time.Since(hstart)
		b.spans.EndSpanWithError(hspan, err)
		b.recorder.RecordHandler(ctx, evt.Type, sub.ID, elapsed, err)

		results = append(results, HandlerResult{
			SubscriptionID: sub.ID,
			Success:        err == nil,
			Err:            err,
			ExecutionTime:  elapsed,
		})

		if err == nil {
			continue
		}
		success = false
		observability.LogHandlerError(b.logger, evt.ID, sub.ID, err, float64(elapsed.Milliseconds()))

		if !sub.Options.DeadLetter {
			continue
		}
		entry, evicted := b.dlq.record(evt, sub, err, time.Now())
		if evicted != nil {
			observability.LogDeadLetterEvicted(b.logger, evicted.Event.ID, evicted.SubscriptionID, evicted.Attempts)
		}
		observability.LogDeadLetter(b.logger, evt.ID, sub.ID, entry.Attempts, entry.NextRetry)
		b.recorder.RecordDeadLetter(ctx, evt.Type)
	}

	total := time.Since(start)
	b.metrics.record(evt.Type, success, total)
	b.recorder.RecordPublish(ctx, evt.Type, success, total)
	observability.LogPublishComplete(b.logger, evt.ID, evt.Type, success, len(results), float64(total.Milliseconds()))
	b.spans.EndSpanWithError(span, nil)

	return &ProcessingResult{
		Event:          evt,
		Success:        success,
		HandlerResults: results,
		TotalTime:      total,
	}, nil
}

// gated consults the gate evaluator, if any. Fail-open: an evaluation
// error is logged and processing proceeds.
func (b *Bus) gated(ctx context.Context, evt *Event) (skipped bool, reason string) {
	if b.cfg.Gate == nil {
		return false, ""
	}

	decision, err := b.cfg.Gate.Evaluate(ctx, b.cfg.GateFlag, GateContext{
		UserID:         evt.UserID,
		OrganizationID: evt.OrganizationID,
	})
	if err != nil {
		gerr := &perrors.GateError{FlagKey: b.cfg.GateFlag, Err: err}
		observability.LogGateError(b.logger, evt.ID, gerr)
		return false, ""
	}
	if decision.Allows() {
		return false, ""
	}
	return true, decision.Reason
}

// invoke runs one handler with the subscription's timeout. The handler
// runs in its own goroutine and is raced against a timer; on timeout
// the bus stops waiting but does not cancel the handler's context, and
// a late completion is discarded. Panics are recovered and reported as
// handler errors.
func (b *Bus) invoke(ctx context.Context, sub *Subscription, evt *Event) error {
	done := make(chan error, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- &perrors.HandlerError{
					SubscriptionID: sub.ID,
					Message:        "handler panicked",
					Err:            fmt.Errorf("%v", r),
				}
			}
		}()
		done <- sub.handler.Handle(ctx, evt)
	}()

	timer := time.NewTimer(sub.Options.Timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		if err == nil {
			return nil
		}
		var herr *perrors.HandlerError
		if !errors.As(err, &herr) {
			err = &perrors.HandlerError{
				SubscriptionID: sub.ID,
				Message:        "handler failed",
				Err:            err,
			}
		}
		return err
	case <-timer.C:
		return &perrors.TimeoutError{
			SubscriptionID: sub.ID,
			Timeout:        sub.Options.Timeout,
		}
	}
}
