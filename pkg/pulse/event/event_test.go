package event_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/elevatehq/pulse/pkg/pulse/event"
	perrors "github.com/elevatehq/pulse/pkg/pulse/errors"
)

func TestPublishStampsEnvelope(t *testing.T) {
	bus := event.NewBus(event.BusConfig{})

	before := time.Now()
	res, err := bus.Publish(context.Background(), event.NewInput(
		"leave.request_submitted", "leave-api", map[string]any{"days": 3},
		event.WithActor("user-1", "org-1"),
		event.WithCorrelationID("corr-9"),
		event.WithMetadata("region", "eu"),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	evt := res.Event
	if evt.ID == "" {
		t.Error("expected bus-assigned id")
	}
	if evt.Timestamp.Before(before) {
		t.Errorf("timestamp %v before publish call", evt.Timestamp)
	}
	if evt.Version != event.DefaultVersion {
		t.Errorf("expected default version, got %q", evt.Version)
	}
	if evt.UserID != "user-1" || evt.OrganizationID != "org-1" {
		t.Errorf("actor not stamped: %q/%q", evt.UserID, evt.OrganizationID)
	}
	if evt.CorrelationID != "corr-9" {
		t.Errorf("correlation id not stamped: %q", evt.CorrelationID)
	}
	if evt.Metadata["region"] != "eu" {
		t.Errorf("metadata not stamped: %v", evt.Metadata)
	}
}

func TestPublishUniqueIDs(t *testing.T) {
	bus := event.NewBus(event.BusConfig{})

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		res, err := bus.Publish(context.Background(), event.NewInput("a.b", "test", nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seen[res.Event.ID] {
			t.Fatalf("duplicate event id %q", res.Event.ID)
		}
		seen[res.Event.ID] = true
	}
}

func TestPublishValidation(t *testing.T) {
	bus := event.NewBus(event.BusConfig{})

	tests := []struct {
		name   string
		input  event.Input
		fields []string
	}{
		{
			name:   "missing type",
			input:  event.NewInput("", "test", nil),
			fields: []string{"type"},
		},
		{
			name:   "type without namespace",
			input:  event.NewInput("submitted", "test", nil),
			fields: []string{"type"},
		},
		{
			name:   "type with whitespace",
			input:  event.NewInput("leave. submitted", "test", nil),
			fields: []string{"type"},
		},
		{
			name:   "type with empty segment",
			input:  event.NewInput("leave.", "test", nil),
			fields: []string{"type"},
		},
		{
			name:   "missing source",
			input:  event.NewInput("leave.submitted", "", nil),
			fields: []string{"source"},
		},
		{
			name:   "missing type and source",
			input:  event.NewInput("", "", nil),
			fields: []string{"type", "source"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := bus.Publish(context.Background(), tt.input)
			if res != nil {
				t.Error("expected nil result on validation failure")
			}
			var verr *perrors.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %T: %v", err, err)
			}
			if len(verr.Fields) != len(tt.fields) {
				t.Fatalf("expected fields %v, got %v", tt.fields, verr.Fields)
			}
			for i, f := range tt.fields {
				if verr.Fields[i] != f {
					t.Errorf("expected field %q at %d, got %q", f, i, verr.Fields[i])
				}
			}
		})
	}
}

func TestInvalidEventNotRecorded(t *testing.T) {
	bus := event.NewBus(event.BusConfig{})

	if _, err := bus.Publish(context.Background(), event.NewInput("nodot", "test", nil)); err == nil {
		t.Fatal("expected validation error")
	}

	if n := len(bus.EventHistory(0)); n != 0 {
		t.Errorf("expected empty history, got %d entries", n)
	}
	if n := len(bus.Metrics()); n != 0 {
		t.Errorf("expected no metrics, got %d types", n)
	}
}
