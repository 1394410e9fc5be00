package recorder

import (
	"context"
	"testing"

	"wiretuner/engine/internal/events"
	"wiretuner/engine/internal/eventstore/memstore"
	"wiretuner/engine/internal/geometry"
	"wiretuner/engine/internal/ids"
)

func TestRecordDiscreteAppendsImmediately(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	r := New(store, "doc-1")
	defer r.Close()

	stamped, err := r.Record(ctx, events.Event{
		Envelope:     events.Envelope{EventType: events.TypeSelectObjects},
		SelectObjects: &events.SelectObjectsPayload{ArtboardID: "ab-1"},
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if stamped.EventSequence != 0 {
		t.Fatalf("expected sequence 0, got %d", stamped.EventSequence)
	}
	max, err := store.MaxSequence(ctx, "doc-1")
	if err != nil || max != 0 {
		t.Fatalf("expected maxSequence 0, got %d err %v", max, err)
	}
}

func TestRecordContinuousCoalescesUntilFlush(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	r := New(store, "doc-1")
	defer r.Close()

	for i := 0; i < 5; i++ {
		_, err := r.Record(ctx, events.Event{
			Envelope:   events.Envelope{EventType: events.TypeMoveAnchor},
			MoveAnchor: &events.MoveAnchorPayload{PathID: "path-1", AnchorIndex: 0, Position: geometry.Point{X: float64(i), Y: 0}},
		})
		if err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	max, err := store.MaxSequence(ctx, "doc-1")
	if err != nil {
		t.Fatalf("maxSequence: %v", err)
	}
	if max != -1 {
		t.Fatalf("expected no durable events before flush, got maxSequence %d", max)
	}

	seqs, err := r.Flush(ctx)
	if err != nil {
		t.Fatalf("flush: %v", err)
	}
	if len(seqs) != 2 {
		t.Fatalf("expected first+last sample (2 events), got %d", len(seqs))
	}

	all, err := collectAll(ctx, store, "doc-1")
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 durable events, got %d", len(all))
	}
	if all[0].MoveAnchor.Position.X != 0 {
		t.Fatalf("expected first sample X=0, got %v", all[0].MoveAnchor.Position)
	}
	if all[1].MoveAnchor.Position.X != 4 {
		t.Fatalf("expected last sample X=4, got %v", all[1].MoveAnchor.Position)
	}
}

func TestBeginEndGroupTagsUndoGroupID(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	r := New(store, "doc-1")
	defer r.Close()

	groupID, err := r.BeginGroup(ctx, "drag", "select-tool")
	if err != nil {
		t.Fatalf("beginGroup: %v", err)
	}

	stamped, err := r.Record(ctx, events.Event{
		Envelope:   events.Envelope{EventType: events.TypeMoveObject},
		MoveObject: &events.MoveObjectPayload{ObjectID: "obj-1", Delta: geometry.Point{X: 1}},
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if stamped.UndoGroupID == nil || *stamped.UndoGroupID != groupID {
		t.Fatalf("expected event tagged with group %s, got %+v", groupID, stamped.UndoGroupID)
	}

	if err := r.EndGroup(ctx, groupID, "drag"); err != nil {
		t.Fatalf("endGroup: %v", err)
	}

	all, err := collectAll(ctx, store, "doc-1")
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected StartGroup, MoveObject, EndGroup, got %d", len(all))
	}
	if all[0].EventType != events.TypeStartGroup || all[2].EventType != events.TypeEndGroup {
		t.Fatalf("unexpected event ordering: %+v", all)
	}
	if all[0].UndoGroupID == nil || *all[0].UndoGroupID != groupID {
		t.Fatalf("expected StartGroup itself tagged with its own group %s, got %+v", groupID, all[0].UndoGroupID)
	}
	if all[2].UndoGroupID == nil || *all[2].UndoGroupID != groupID {
		t.Fatalf("expected EndGroup tagged with group %s, got %+v", groupID, all[2].UndoGroupID)
	}
}

func collectAll(ctx context.Context, store *memstore.Store, documentID ids.DocumentID) ([]events.Event, error) {
	var out []events.Event
	err := store.Range(ctx, documentID, 0, -1, func(e events.Event) error {
		out = append(out, e)
		return nil
	})
	return out, err
}
