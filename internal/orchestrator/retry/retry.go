// Package retry implements the bounded retry policy of spec.md §4.9: up to
// 3 attempts with 10ms and then 40ms backoff between them, for transient
// storage errors encountered while saving or loading a document. Grounded
// on internal/sim/loop.go's escalating backpressure bookkeeping
// (perActorCount/dropCounts track repeated failures per actor), generalized
// here into a single retry helper instead of a persistent counter map.
package retry

import (
	"context"
	"time"
)

// MaxAttempts is the maximum number of times Do calls fn before giving up.
const MaxAttempts = 3

// Backoff is the delay schedule between attempts: 10ms before the 2nd try,
// 40ms before the 3rd. The 160ms entry is never reached while MaxAttempts
// is 3.
var Backoff = []time.Duration{10 * time.Millisecond, 40 * time.Millisecond, 160 * time.Millisecond}

// Retryable distinguishes a transient failure (worth retrying) from a
// permanent one. Callers that don't care about the distinction can pass a
// function that always returns true.
type Retryable func(error) bool

// Do calls fn until it succeeds, a non-retryable error is returned, ctx is
// cancelled, or MaxAttempts is exhausted, sleeping according to Backoff
// between attempts. The final error is returned verbatim (not wrapped), so
// callers can still engineerr.KindOf it.
func Do(ctx context.Context, retryable Retryable, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) {
			return lastErr
		}
		if attempt == MaxAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(Backoff[attempt]):
		}
	}
	return lastErr
}
