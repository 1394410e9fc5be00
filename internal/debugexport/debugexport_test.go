package debugexport

import (
	"context"
	"testing"
	"time"

	"wiretuner/engine/internal/events"
	"wiretuner/engine/internal/eventstore/memstore"
	"wiretuner/engine/internal/geometry"
	"wiretuner/engine/internal/ids"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func seedEvents(ctx context.Context, t *testing.T, store *memstore.Store, docID ids.DocumentID, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		_, err := store.Append(ctx, docID, events.Event{
			Envelope:   events.Envelope{EventType: events.TypeCreatePath, DocumentID: docID},
			CreatePath: &events.CreatePathPayload{PathID: ids.ObjectID("path"), LayerID: "layer-1", Start: geometry.Point{X: float64(i)}},
		})
		if err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}
}

func TestExportBasicRange(t *testing.T) {
	ctx := context.Background()
	docID := ids.DocumentID("doc-1")
	store := memstore.New()
	seedEvents(ctx, t, store, docID, 5)

	doc, err := Export(ctx, store, nil, docID, 0, 4, fixedClock{t: time.UnixMilli(1730000000000)})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if doc.Metadata.EventCount != 5 {
		t.Fatalf("expected 5 events, got %d", doc.Metadata.EventCount)
	}
	if doc.Metadata.ExportVersion != ExportVersion {
		t.Fatalf("unexpected export version: %d", doc.Metadata.ExportVersion)
	}
	if err := Validate(doc); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestExportRejectsRangeTooLarge(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	_, err := Export(ctx, store, nil, "doc-1", 0, MaxRange, nil)
	if err == nil {
		t.Fatalf("expected range-too-large error")
	}
}

func TestExportRejectsInvertedRange(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	_, err := Export(ctx, store, nil, "doc-1", 10, 5, nil)
	if err == nil {
		t.Fatalf("expected inverted-range error")
	}
}

func TestImportRemapsDocumentID(t *testing.T) {
	ctx := context.Background()
	srcID := ids.DocumentID("doc-src")
	store := memstore.New()
	seedEvents(ctx, t, store, srcID, 3)

	doc, err := Export(ctx, store, nil, srcID, 0, 2, fixedClock{t: time.UnixMilli(1)})
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	destID := ids.DocumentID("doc-dest")
	destStore := memstore.New()
	if err := Import(ctx, destStore, doc, destID, false); err != nil {
		t.Fatalf("import: %v", err)
	}

	var imported []events.Event
	if err := destStore.Range(ctx, destID, 0, -1, func(e events.Event) error {
		imported = append(imported, e)
		return nil
	}); err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(imported) != 3 {
		t.Fatalf("expected 3 imported events, got %d", len(imported))
	}
	for _, e := range imported {
		if e.DocumentID != destID {
			t.Fatalf("expected remapped documentId %s, got %s", destID, e.DocumentID)
		}
	}
}

func TestValidateRejectsEventOutsideRange(t *testing.T) {
	doc := Document{
		Metadata: Metadata{EventRange: EventRange{Start: 0, End: 0}, EventCount: 1},
		Events: []events.Event{
			{Envelope: events.Envelope{EventSequence: 5}},
		},
	}
	if err := Validate(doc); err == nil {
		t.Fatalf("expected validation error for out-of-range event")
	}
}

func TestSchemaJSONIsStableAcrossCalls(t *testing.T) {
	a, err := SchemaJSON()
	if err != nil {
		t.Fatalf("schemaJSON: %v", err)
	}
	b, err := SchemaJSON()
	if err != nil {
		t.Fatalf("schemaJSON: %v", err)
	}
	if string(a) != string(b) {
		t.Fatalf("expected deterministic schema output")
	}
}
