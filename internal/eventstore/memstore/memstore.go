// Package memstore is an in-process, single-writer reference Store
// implementation used by engine unit tests and the undo navigator's test
// suite. It is grounded on the mutex-guarded slice-of-patches pattern in
// the teacher's internal/journal.Journal: one mutex per document guards a
// growable slice of committed events.
package memstore

import (
	"context"
	"sync"
	"time"

	"wiretuner/engine/internal/engineerr"
	"wiretuner/engine/internal/eventstore"
	"wiretuner/engine/internal/events"
	"wiretuner/engine/internal/ids"
	"wiretuner/engine/logging"
)

type documentLog struct {
	mu         sync.Mutex
	events     []events.Event
	abandoned  map[int64]bool
	nextSeq    int64
	prunedUpTo int64
	notifyCh   chan int64
}

func newDocumentLog() *documentLog {
	return &documentLog{
		abandoned:  make(map[int64]bool),
		prunedUpTo: -1,
		notifyCh:   make(chan int64, 1),
	}
}

func (d *documentLog) notify(seq int64) {
	select {
	case d.notifyCh <- seq:
	default:
		select {
		case <-d.notifyCh:
		default:
		}
		select {
		case d.notifyCh <- seq:
		default:
		}
	}
}

// Store is the in-memory reference implementation of eventstore.Store.
type Store struct {
	mu        sync.Mutex
	docs      map[ids.DocumentID]*documentLog
	publisher logging.Publisher
	clock     logging.Clock
}

// Option configures a Store.
type Option func(*Store)

// WithPublisher attaches a telemetry publisher used for slow-append
// warnings, mirroring internal/sim/loop.go's backpressure-warning wiring.
func WithPublisher(pub logging.Publisher) Option {
	return func(s *Store) { s.publisher = pub }
}

// WithClock overrides the clock used for slow-append timing (tests).
func WithClock(clock logging.Clock) Option {
	return func(s *Store) { s.clock = clock }
}

// New constructs an empty in-memory event store.
func New(opts ...Option) *Store {
	s := &Store{
		docs:      make(map[ids.DocumentID]*documentLog),
		publisher: logging.NopPublisher{},
		clock:     logging.SystemClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) logFor(documentID ids.DocumentID) *documentLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[documentID]
	if !ok {
		d = newDocumentLog()
		s.docs[documentID] = d
	}
	return d
}

// Append implements eventstore.Store.
func (s *Store) Append(ctx context.Context, documentID ids.DocumentID, event events.Event) (int64, error) {
	seqs, err := s.AppendBatch(ctx, documentID, []events.Event{event})
	if err != nil {
		return -1, err
	}
	return seqs[0], nil
}

// AppendBatch implements eventstore.Store.
func (s *Store) AppendBatch(ctx context.Context, documentID ids.DocumentID, batch []events.Event) ([]int64, error) {
	if len(batch) == 0 {
		return nil, nil
	}
	d := s.logFor(documentID)
	start := time.Now()

	d.mu.Lock()
	base := d.nextSeq
	seqs := make([]int64, len(batch))
	for i, e := range batch {
		e.EventSequence = base + int64(i)
		d.events = append(d.events, e)
		seqs[i] = e.EventSequence
	}
	d.nextSeq = base + int64(len(batch))
	latest := seqs[len(seqs)-1]
	d.mu.Unlock()

	d.notify(latest)

	if elapsed := time.Since(start); elapsed.Nanoseconds() > eventstore.SlowAppendThreshold {
		s.publisher.Publish(ctx, logging.Event{
			Type:     "eventstore.slow_append",
			Time:     s.clock.Now(),
			Severity: logging.SeverityWarn,
			Category: "eventstore",
			Extra: map[string]any{
				"documentId": string(documentID),
				"elapsedMs":  elapsed.Milliseconds(),
			},
		})
	}

	return seqs, nil
}

// Range implements eventstore.Store.
func (s *Store) Range(ctx context.Context, documentID ids.DocumentID, fromSeq, toSeq int64, fn func(events.Event) error) error {
	d := s.logFor(documentID)
	d.mu.Lock()
	snapshot := make([]events.Event, len(d.events))
	copy(snapshot, d.events)
	prunedUpTo := d.prunedUpTo
	d.mu.Unlock()

	for _, e := range snapshot {
		if e.EventSequence < fromSeq {
			continue
		}
		if toSeq >= 0 && e.EventSequence > toSeq {
			break
		}
		if e.EventSequence <= prunedUpTo {
			continue
		}
		select {
		case <-ctx.Done():
			return engineerr.Wrap("memstore.Range", engineerr.Cancelled, ctx.Err())
		default:
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}

// MaxSequence implements eventstore.Store.
func (s *Store) MaxSequence(ctx context.Context, documentID ids.DocumentID) (int64, error) {
	d := s.logFor(documentID)
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.nextSeq - 1, nil
}

// PruneBefore implements eventstore.Store.
func (s *Store) PruneBefore(ctx context.Context, documentID ids.DocumentID, seq int64, hasSnapshotAtOrAfter bool) error {
	if !hasSnapshotAtOrAfter {
		return engineerr.New("memstore.PruneBefore", engineerr.InvariantViolated)
	}
	d := s.logFor(documentID)
	d.mu.Lock()
	defer d.mu.Unlock()
	kept := d.events[:0:0]
	for _, e := range d.events {
		if e.EventSequence >= seq {
			kept = append(kept, e)
		}
	}
	d.events = kept
	if seq-1 > d.prunedUpTo {
		d.prunedUpTo = seq - 1
	}
	return nil
}

// MarkAbandoned implements eventstore.Store.
func (s *Store) MarkAbandoned(ctx context.Context, documentID ids.DocumentID, fromSeq, toSeq int64) error {
	d := s.logFor(documentID)
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.events {
		seq := d.events[i].EventSequence
		if seq >= fromSeq && seq <= toSeq {
			d.events[i].Abandoned = true
			d.abandoned[seq] = true
		}
	}
	return nil
}

// Notifications implements eventstore.Store.
func (s *Store) Notifications(documentID ids.DocumentID) <-chan int64 {
	return s.logFor(documentID).notifyCh
}
