package orchestrator

import (
	"context"

	"wiretuner/engine/internal/docmodel"
	"wiretuner/engine/logging"
)

// StateProvider returns the current in-memory document state for a
// snapshot. The scheduler does not own document state itself; it is
// supplied by whatever holds the live replayed document (internal/engine).
type StateProvider func() docmodel.Document

// SnapshotScheduler watches a Handle's store notifications and triggers a
// snapshot write once SnapshotInterval events have committed since the
// last one, without blocking the writer. Grounded on the teacher's
// internal/sim.Loop.Run dedicated goroutine, redesigned per spec.md §9's
// "replace listener/change-notifier with bounded channels" note: instead
// of a wall-clock ticker, this goroutine blocks on the store's
// notification channel and reacts to committed-sequence events.
type SnapshotScheduler struct {
	handle    *Handle
	state     StateProvider
	clock     logging.Clock
	publisher logging.Publisher

	stop chan struct{}
	done chan struct{}
}

// NewSnapshotScheduler constructs a scheduler for handle. Call Run to start
// it in its own goroutine and Stop to shut it down.
func NewSnapshotScheduler(handle *Handle, state StateProvider, clock logging.Clock, publisher logging.Publisher) *SnapshotScheduler {
	if clock == nil {
		clock = logging.SystemClock{}
	}
	if publisher == nil {
		publisher = logging.NopPublisher{}
	}
	return &SnapshotScheduler{
		handle:    handle,
		state:     state,
		clock:     clock,
		publisher: publisher,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Run blocks, consuming the handle's store notifications, until Stop is
// called. Intended to be launched with `go scheduler.Run(ctx)`.
func (s *SnapshotScheduler) Run(ctx context.Context) {
	defer close(s.done)
	notifications := s.handle.store.Notifications(s.handle.DocumentID)
	for {
		select {
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		case seq, ok := <-notifications:
			if !ok {
				return
			}
			s.maybeSnapshot(ctx, seq)
		}
	}
}

func (s *SnapshotScheduler) maybeSnapshot(ctx context.Context, committedSeq int64) {
	s.handle.mu.Lock()
	last := s.handle.lastSnapshotSequence
	due := committedSeq-last >= SnapshotInterval
	s.handle.mu.Unlock()
	if !due {
		return
	}

	doc := s.state()
	if err := writeSnapshot(ctx, s.handle.store, s.handle.DocumentID, doc, committedSeq, s.clock); err != nil {
		s.publisher.Publish(ctx, logging.Event{
			Type:     "orchestrator.snapshot_failed",
			Time:     s.clock.Now(),
			Severity: logging.SeverityError,
			Category: "orchestrator",
			Extra: map[string]any{
				"documentId": string(s.handle.DocumentID),
				"sequence":   committedSeq,
				"error":      err.Error(),
			},
		})
		return
	}

	s.handle.mu.Lock()
	s.handle.lastSnapshotSequence = committedSeq
	s.handle.mu.Unlock()
}

// Stop signals Run to exit and waits for it to return.
func (s *SnapshotScheduler) Stop() {
	close(s.stop)
	<-s.done
}
