package orchestrator

import (
	"context"
	"testing"
	"time"

	"wiretuner/engine/internal/docmodel"
	"wiretuner/engine/internal/events"
	"wiretuner/engine/internal/ids"
	"wiretuner/engine/logging"
)

func TestSchedulerTriggersSnapshotOnNotification(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := fixedClock{t: time.UnixMilli(1)}
	path := tempDocPath(t)
	docID := ids.DocumentID("doc-1")

	h, err := NewDocument(ctx, docID, path, logging.NopPublisher{}, clock)
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	defer h.Close()

	state := docmodel.New(docID, "Untitled")
	scheduler := NewSnapshotScheduler(h, func() docmodel.Document { return state }, clock, logging.NopPublisher{})
	done := make(chan struct{})
	go func() {
		scheduler.Run(ctx)
		close(done)
	}()
	defer scheduler.Stop()

	for i := 0; i < SnapshotInterval+1; i++ {
		if _, err := h.Recorder.Record(ctx, events.Event{
			Envelope:      events.Envelope{EventType: events.TypeSelectObjects, DocumentID: docID},
			SelectObjects: &events.SelectObjectsPayload{ArtboardID: "ab-1"},
		}); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	deadline := time.After(2 * time.Second)
	for {
		h.mu.Lock()
		last := h.lastSnapshotSequence
		h.mu.Unlock()
		if last >= 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for scheduled snapshot")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
