// Package debugexport implements the bounded-range export/import format of
// spec.md §6.3: a developer-facing JSON snapshot of a sequence window, used
// to reproduce bugs without shipping an entire document file.
package debugexport

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"wiretuner/engine/internal/engineerr"
	"wiretuner/engine/internal/events"
	"wiretuner/engine/internal/eventstore"
	"wiretuner/engine/internal/ids"
	"wiretuner/engine/internal/snapshot"
)

// MaxRange is the largest inclusive [start, end] window an export may cover
// (spec.md §6.3: "end − start + 1 ≤ 10 000").
const MaxRange = 10_000

// ExportVersion is the format version stamped into every export's metadata.
const ExportVersion = 1

// EventRange is the inclusive sequence window an export covers.
type EventRange struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// Metadata describes an export's provenance and bounds.
type Metadata struct {
	DocumentID       ids.DocumentID `json:"documentId"`
	ExportVersion    int            `json:"exportVersion"`
	ExportedAt       int64          `json:"exportedAt"`
	EventRange       EventRange     `json:"eventRange"`
	EventCount       int            `json:"eventCount"`
	SnapshotSequence *int64         `json:"snapshotSequence,omitempty"`
}

// SnapshotSection carries a document snapshot, decoded to plain JSON so the
// export file is human-readable without this module's binary codec.
type SnapshotSection struct {
	EventSequence int64           `json:"eventSequence"`
	Data          json.RawMessage `json:"data"`
}

// Document is the full export file shape (spec.md §6.3).
type Document struct {
	Metadata Metadata         `json:"metadata"`
	Snapshot *SnapshotSection `json:"snapshot,omitempty"`
	Events   []events.Event   `json:"events"`
}

// Clock abstracts the export timestamp for testability, matching the
// teacher's logging.Clock convention used throughout the ambient stack.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Export reads events in [start, end] (inclusive) from store, and the
// nearest snapshot at or before start if snapStore is non-nil, into a
// Document. It fails with engineerr.Validation if the range is invalid or
// exceeds MaxRange.
func Export(ctx context.Context, store eventstore.Store, snapStore snapshot.Storage, documentID ids.DocumentID, start, end int64, clock Clock) (Document, error) {
	if clock == nil {
		clock = systemClock{}
	}
	if start < 0 || end < start {
		return Document{}, engineerr.Validation("debugexport.Export", "eventRange", fmt.Sprintf("invalid range [%d, %d]", start, end))
	}
	if end-start+1 > MaxRange {
		return Document{}, engineerr.Validation("debugexport.Export", "eventRange", fmt.Sprintf("range exceeds %d events", MaxRange))
	}

	evs, err := eventstore.RangeAll(ctx, store, documentID, start, end)
	if err != nil {
		return Document{}, err
	}

	doc := Document{
		Metadata: Metadata{
			DocumentID:    documentID,
			ExportVersion: ExportVersion,
			ExportedAt:    clock.Now().UnixMilli(),
			EventRange:    EventRange{Start: start, End: end},
			EventCount:    len(evs),
		},
		Events: evs,
	}

	if snapStore != nil {
		data, seq, ok, err := snapStore.LatestSnapshotAtOrBefore(documentID, start)
		if err != nil {
			return Document{}, err
		}
		if ok {
			decoded, err := snapshot.Decode(data)
			if err != nil {
				return Document{}, engineerr.Wrap("debugexport.Export", engineerr.CorruptSnapshot, err)
			}
			docJSON, err := json.Marshal(decoded)
			if err != nil {
				return Document{}, err
			}
			doc.Snapshot = &SnapshotSection{EventSequence: seq, Data: docJSON}
			doc.Metadata.SnapshotSequence = &seq
		}
	}

	return doc, nil
}

// Import validates doc and appends its events into store under
// targetDocumentID, remapping every event's DocumentID field so an export
// can be replayed into a fresh document without colliding with the
// original. The export's snapshot section is not imported: only the
// events reach the target store.
func Import(ctx context.Context, store eventstore.Store, doc Document, targetDocumentID ids.DocumentID, skipValidation bool) error {
	if !skipValidation {
		if err := Validate(doc); err != nil {
			return err
		}
	}

	batch := make([]events.Event, len(doc.Events))
	for i, e := range doc.Events {
		e.DocumentID = targetDocumentID
		batch[i] = e
	}
	if len(batch) == 0 {
		return nil
	}
	_, err := store.AppendBatch(ctx, targetDocumentID, batch)
	return err
}

// Validate checks the structural constraints spec.md §6.3 requires:
// EventCount matches len(Events), EventRange respects MaxRange, and every
// event's sequence falls within the declared range. This is deliberately
// self-contained (not driven through a general-purpose JSON Schema
// validator, which the retrieval pack carries no dependency for); it is
// written by hand and does not consult the reflected schema in schema.go.
func Validate(doc Document) error {
	r := doc.Metadata.EventRange
	if r.End-r.Start+1 > MaxRange {
		return engineerr.Validation("debugexport.Validate", "eventRange", fmt.Sprintf("range exceeds %d events", MaxRange))
	}
	if doc.Metadata.EventCount != len(doc.Events) {
		return engineerr.Validation("debugexport.Validate", "eventCount", "metadata.eventCount does not match len(events)")
	}
	for _, e := range doc.Events {
		if e.EventSequence < r.Start || e.EventSequence > r.End {
			return engineerr.Validation("debugexport.Validate", "events", fmt.Sprintf("event at sequence %d falls outside declared range [%d, %d]", e.EventSequence, r.Start, r.End))
		}
	}
	return nil
}
