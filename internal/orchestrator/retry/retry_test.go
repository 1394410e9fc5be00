package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errTransient = errors.New("transient")
var errPermanent = errors.New("permanent")

func alwaysRetryable(error) bool { return true }

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), alwaysRetryable, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestDoRetriesUpToMaxAttempts(t *testing.T) {
	calls := 0
	start := time.Now()
	err := Do(context.Background(), alwaysRetryable, func() error {
		calls++
		return errTransient
	})
	elapsed := time.Since(start)
	if !errors.Is(err, errTransient) {
		t.Fatalf("expected final error to be errTransient, got %v", err)
	}
	if calls != MaxAttempts {
		t.Fatalf("expected %d calls, got %d", MaxAttempts, calls)
	}
	minElapsed := Backoff[0] + Backoff[1]
	if elapsed < minElapsed {
		t.Fatalf("expected at least %v elapsed, got %v", minElapsed, elapsed)
	}
}

func TestDoStopsOnNonRetryableError(t *testing.T) {
	calls := 0
	retryable := func(err error) bool { return !errors.Is(err, errPermanent) }
	err := Do(context.Background(), retryable, func() error {
		calls++
		return errPermanent
	})
	if !errors.Is(err, errPermanent) {
		t.Fatalf("expected errPermanent, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call for non-retryable error, got %d", calls)
	}
}

func TestDoRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, alwaysRetryable, func() error {
		calls++
		if calls == 1 {
			cancel()
		}
		return errTransient
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call before cancellation observed, got %d", calls)
	}
}
