package benchmarks

import (
	"context"
	"fmt"
	"testing"

	"github.com/elevatehq/pulse/pkg/pulse/event"
)

func noop(ctx context.Context, evt *event.Event) error { return nil }

func busWithSubscribers(n int) *event.Bus {
	bus := event.NewBus(event.BusConfig{})
	for i := 0; i < n; i++ {
		bus.Subscribe("bench.event", event.HandlerFunc(noop),
			fmt.Sprintf("svc-%d", i), event.WithPriority(i%5))
	}
	return bus
}

// BenchmarkPublish_1 publishes to a single subscriber.
func BenchmarkPublish_1(b *testing.B) {
	bus := busWithSubscribers(1)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = bus.Publish(ctx, event.NewInput("bench.event", "bench", nil))
	}
}

// BenchmarkPublish_10 publishes to 10 subscribers.
func BenchmarkPublish_10(b *testing.B) {
	bus := busWithSubscribers(10)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = bus.Publish(ctx, event.NewInput("bench.event", "bench", nil))
	}
}

// BenchmarkPublish_100 publishes to 100 subscribers.
func BenchmarkPublish_100(b *testing.B) {
	bus := busWithSubscribers(100)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = bus.Publish(ctx, event.NewInput("bench.event", "bench", nil))
	}
}

// BenchmarkPublish_NoSubscribers measures the no-op path.
func BenchmarkPublish_NoSubscribers(b *testing.B) {
	bus := event.NewBus(event.BusConfig{})
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = bus.Publish(ctx, event.NewInput("bench.event", "bench", nil))
	}
}

// BenchmarkSubscribe measures registration with priority insertion.
func BenchmarkSubscribe(b *testing.B) {
	bus := event.NewBus(event.BusConfig{})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bus.Subscribe("bench.event", event.HandlerFunc(noop), "bench", event.WithPriority(i%10))
	}
}
