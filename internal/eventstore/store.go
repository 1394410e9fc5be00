// Package eventstore defines the durable, append-only event log contract
// (spec.md §4.2): per-document sequence invariants, batch commit, ranged
// reads, and pruning gated on snapshot coverage.
package eventstore

import (
	"context"

	"wiretuner/engine/internal/events"
	"wiretuner/engine/internal/ids"
)

// Store is the event log contract. Implementations must serialize Append
// and AppendBatch per document (spec.md §5 single-writer discipline);
// Range, MaxSequence, and PruneBefore may run concurrently with a writer
// and observe a consistent view up to some committed sequence.
type Store interface {
	// Append assigns the next sequence for documentId, persists event
	// durably, and returns the assigned sequence.
	Append(ctx context.Context, documentID ids.DocumentID, event events.Event) (int64, error)

	// AppendBatch persists every event in batch atomically (all-or-nothing)
	// with contiguous sequences, returning the assigned sequence of each.
	AppendBatch(ctx context.Context, documentID ids.DocumentID, batch []events.Event) ([]int64, error)

	// Range streams events in [fromSeq, toSeq] (inclusive) in strict
	// sequence order via fn. toSeq < 0 means "through the latest sequence".
	// fn's error aborts the range and is returned to the caller.
	Range(ctx context.Context, documentID ids.DocumentID, fromSeq, toSeq int64, fn func(events.Event) error) error

	// MaxSequence returns the highest committed sequence for documentID, or
	// -1 if the document has no events.
	MaxSequence(ctx context.Context, documentID ids.DocumentID) (int64, error)

	// PruneBefore deletes every event with sequence < seq. It fails with
	// engineerr.InvariantViolated if no snapshot covers at least seq.
	PruneBefore(ctx context.Context, documentID ids.DocumentID, seq int64, hasSnapshotAtOrAfter bool) error

	// MarkAbandoned tombstones events in [fromSeq, toSeq] (inclusive)
	// without deleting them, used by the undo navigator when a new branch
	// truncates an existing redo tail (spec.md §4.8, §9 open question
	// resolved conservatively toward tombstoning).
	MarkAbandoned(ctx context.Context, documentID ids.DocumentID, fromSeq, toSeq int64) error

	// Notifications returns a bounded, non-blocking channel of
	// post-commit MaxSequence values for documentID (spec.md §9 "replace
	// listener/change-notifier with bounded channels"). The channel is
	// capacity 1; a pending value is overwritten by a newer one rather
	// than blocking the writer.
	Notifications(documentID ids.DocumentID) <-chan int64
}

// RangeAll collects every event yielded by Range into a slice, a
// convenience wrapper for callers (tests, replay) that don't need
// incremental streaming.
func RangeAll(ctx context.Context, s Store, documentID ids.DocumentID, fromSeq, toSeq int64) ([]events.Event, error) {
	var out []events.Event
	err := s.Range(ctx, documentID, fromSeq, toSeq, func(e events.Event) error {
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SlowAppendThreshold is the append latency above which implementations
// must emit a structured warning (spec.md §4.2 policy).
const SlowAppendThreshold = 50_000_000 // nanoseconds (50ms)
