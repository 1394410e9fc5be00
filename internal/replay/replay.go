// Package replay implements the deterministic state-reconstruction
// algorithm of spec.md §4.6: find the nearest usable snapshot, fall back
// through progressively older ones on corruption, then stream the event
// tail through the applier with corruption-tolerant skip-or-abort
// semantics. Grounded on the teacher's internal/journal.Journal keyframe
// buffer (snapshot fallback walk) and internal/sim/loop.go's cooperative
// stop-channel check between ticks (cancellation).
package replay

import (
	"context"

	"wiretuner/engine/internal/applier"
	"wiretuner/engine/internal/docmodel"
	"wiretuner/engine/internal/engineerr"
	"wiretuner/engine/internal/events"
	"wiretuner/engine/internal/eventstore"
	"wiretuner/engine/internal/ids"
	"wiretuner/engine/internal/snapshot"
)

// Warning records a single non-fatal issue encountered during replay,
// following the §9 "Ok | Warn | Err" redesign note made visible as a field
// on Result rather than three distinct return types.
type Warning struct {
	Kind     engineerr.Kind
	Sequence int64
	Message  string
}

// Result is the outcome of a replay: either Ok (len(Warnings) == 0 and
// FatalErr == nil), Warn (Warnings non-empty, FatalErr == nil), or Err
// (FatalErr != nil, State is the partial state at the point of failure).
type Result struct {
	State            docmodel.Document
	SkippedSequences []int64
	Warnings         []Warning
	SnapshotSequence int64 // -1 if no snapshot was used
	EventsReplayed   int
	FatalErr         error
	Cancelled        bool
}

// baseState is the result of locating and deserializing the starting point
// for a replay, before any event is applied.
type baseState struct {
	doc      docmodel.Document
	sequence int64
}

// loadBaseState finds the highest-sequence snapshot at or before target and
// deserializes it, walking to progressively older snapshots on corruption
// (spec.md §4.5). If none survive, it falls back to the empty document at
// sequence -1 and appends a warning recording the exhaustion.
func loadBaseState(snapStore snapshot.Storage, documentID ids.DocumentID, target int64) (baseState, []Warning) {
	var warnings []Warning
	if snapStore == nil {
		return baseState{doc: docmodel.New(documentID, ""), sequence: -1}, warnings
	}

	data, seq, ok, err := snapStore.LatestSnapshotAtOrBefore(documentID, target)
	for ok && err == nil {
		doc, decodeErr := snapshot.Decode(data)
		if decodeErr == nil {
			return baseState{doc: doc, sequence: seq}, warnings
		}
		warnings = append(warnings, Warning{
			Kind:     engineerr.CorruptSnapshot,
			Sequence: seq,
			Message:  decodeErr.Error(),
		})
		data, seq, ok, err = snapStore.OlderSnapshotBefore(documentID, seq)
	}
	if err != nil {
		warnings = append(warnings, Warning{Kind: engineerr.CorruptStore, Sequence: -1, Message: err.Error()})
	}

	return baseState{doc: docmodel.New(documentID, ""), sequence: -1}, warnings
}

// ReplayToSequence reconstructs document state at target by replaying from
// the nearest usable snapshot at or before target. When continueOnError is
// true, an applier failure records the sequence in SkippedSequences and a
// Warning and replay continues; when false, the first failure aborts with
// FatalErr = engineerr.ReplayFailed(atSequence).
func ReplayToSequence(ctx context.Context, store eventstore.Store, snapStore snapshot.Storage, documentID ids.DocumentID, target int64, continueOnError bool) Result {
	base, warnings := loadBaseState(snapStore, documentID, target)
	result := Result{
		State:            base.doc,
		Warnings:         warnings,
		SnapshotSequence: base.sequence,
	}

	fromSeq := base.sequence + 1
	if target >= 0 && fromSeq > target {
		return result
	}

	state := result.State
	rangeErr := store.Range(ctx, documentID, fromSeq, target, func(e events.Event) error {
		select {
		case <-ctx.Done():
			result.Cancelled = true
			return engineerr.Wrap("replay.ReplayToSequence", engineerr.Cancelled, ctx.Err())
		default:
		}

		if e.Abandoned {
			return nil
		}

		next, applyErr := applier.Apply(state, e, applier.Replay)
		if applyErr != nil {
			if !continueOnError {
				return engineerr.AtSequence("replay.ReplayToSequence", engineerr.ReplayFailed, uint64(e.EventSequence))
			}
			kind, _ := engineerr.KindOf(applyErr)
			result.SkippedSequences = append(result.SkippedSequences, e.EventSequence)
			result.Warnings = append(result.Warnings, Warning{
				Kind:     kind,
				Sequence: e.EventSequence,
				Message:  applyErr.Error(),
			})
			return nil
		}
		state = next
		result.EventsReplayed++
		return nil
	})

	result.State = state
	if rangeErr != nil {
		if result.Cancelled {
			return result
		}
		result.FatalErr = rangeErr
	}
	return result
}
