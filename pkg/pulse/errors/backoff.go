package errors

import "time"

// Backoff computes retry delays for dead-lettered deliveries.
// The schedule is linear: Base × attempt (60s, 120s, 180s, ...).
type Backoff struct {
	// Base is the delay after the first failure.
	Base time.Duration

	// Max caps the computed delay. Zero means no cap.
	Max time.Duration
}

// DefaultBackoff is the standard dead-letter retry schedule.
var DefaultBackoff = Backoff{
	Base: 60 * time.Second,
}

// Delay returns the wait before the next retry given the number of
// attempts already made. Attempts below one are treated as one.
func (b Backoff) Delay(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	d := b.Base * time.Duration(attempts)
	if b.Max > 0 && d > b.Max {
		d = b.Max
	}
	return d
}

// NextRetry returns the absolute time of the next retry.
func (b Backoff) NextRetry(now time.Time, attempts int) time.Time {
	return now.Add(b.Delay(attempts))
}
