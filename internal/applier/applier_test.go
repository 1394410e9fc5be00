package applier

import (
	"testing"

	"wiretuner/engine/internal/docmodel"
	"wiretuner/engine/internal/engineerr"
	"wiretuner/engine/internal/events"
	"wiretuner/engine/internal/geometry"
	"wiretuner/engine/internal/ids"
)

func baseDocument() docmodel.Document {
	doc := docmodel.New("doc-1", "Untitled")
	artboard := docmodel.NewArtboard("ab-1", "Board 1", geometry.Rectangle{W: 200, H: 200})
	artboard = artboard.WithAppendedLayer(docmodel.NewLayer("layer-1", "Layer 1"))
	return doc.WithAppendedArtboard(artboard)
}

func envelope(t events.Type, seq int64) events.Envelope {
	return events.Envelope{
		EventID:       "evt",
		EventType:     t,
		EventSequence: seq,
		DocumentID:    "doc-1",
	}
}

func TestRegistryIsExhaustive(t *testing.T) {
	if missing := MissingHandlers(); len(missing) != 0 {
		t.Fatalf("expected every event type to have a registered handler, missing: %v", missing)
	}
}

func TestApplyRejectsInvalidEvent(t *testing.T) {
	doc := baseDocument()
	e := events.Event{Envelope: envelope(events.TypeCreatePath, 1)}
	if _, err := Apply(doc, e, Live); !engineerr.IsKind(err, engineerr.CorruptEvent) {
		t.Fatalf("expected CorruptEvent for event with no payload, got %v", err)
	}
}

func TestCreatePathAddAnchorFinishPath(t *testing.T) {
	doc := baseDocument()

	create := events.Event{
		Envelope:   envelope(events.TypeCreatePath, 1),
		CreatePath: &events.CreatePathPayload{PathID: "path-1", LayerID: "layer-1", Start: geometry.Point{X: 0, Y: 0}},
	}
	doc, err := Apply(doc, create, Live)
	if err != nil {
		t.Fatalf("create path: %v", err)
	}

	add := events.Event{
		Envelope:  envelope(events.TypeAddAnchor, 2),
		AddAnchor: &events.AddAnchorPayload{PathID: "path-1", Position: geometry.Point{X: 10, Y: 10}, AnchorType: geometry.AnchorCorner},
	}
	doc, err = Apply(doc, add, Live)
	if err != nil {
		t.Fatalf("add anchor: %v", err)
	}

	obj, ok := doc.Object("path-1")
	if !ok || obj.Path == nil {
		t.Fatal("expected path-1 to exist after create+add")
	}
	if len(obj.Path.Anchors) != 2 {
		t.Fatalf("expected 2 anchors, got %d", len(obj.Path.Anchors))
	}
	if len(obj.Path.Segments) != 1 || obj.Path.Segments[0].Kind != geometry.SegmentLine {
		t.Fatalf("unexpected segments: %+v", obj.Path.Segments)
	}

	finish := events.Event{
		Envelope:   envelope(events.TypeFinishPath, 3),
		FinishPath: &events.FinishPathPayload{PathID: "path-1", Closed: true},
	}
	doc, err = Apply(doc, finish, Live)
	if err != nil {
		t.Fatalf("finish path: %v", err)
	}
	obj, _ = doc.Object("path-1")
	if !obj.Path.Closed {
		t.Fatal("expected path to be closed")
	}
	if obj.Path.Segments[len(obj.Path.Segments)-1].EndAnchorIndex != 0 {
		t.Fatal("expected closing segment to return to anchor 0")
	}
}

func TestAddAnchorRejectsInconsistentSmoothHandles(t *testing.T) {
	doc := baseDocument()
	create := events.Event{
		Envelope:   envelope(events.TypeCreatePath, 1),
		CreatePath: &events.CreatePathPayload{PathID: "path-1", LayerID: "layer-1"},
	}
	doc, err := Apply(doc, create, Live)
	if err != nil {
		t.Fatalf("create path: %v", err)
	}

	badIn := geometry.Point{X: 1, Y: 0}
	badOut := geometry.Point{X: 1, Y: 0} // same direction, not opposite: invalid for smooth
	add := events.Event{
		Envelope: envelope(events.TypeAddAnchor, 2),
		AddAnchor: &events.AddAnchorPayload{
			PathID:     "path-1",
			Position:   geometry.Point{X: 5, Y: 5},
			AnchorType: geometry.AnchorSmooth,
			HandleIn:   &badIn,
			HandleOut:  &badOut,
		},
	}
	if _, err := Apply(doc, add, Live); !engineerr.IsKind(err, engineerr.InvariantViolated) {
		t.Fatalf("expected InvariantViolated for inconsistent smooth handles, got %v", err)
	}
}

func TestMoveAnchorTranslatesHandles(t *testing.T) {
	doc := baseDocument()
	create := events.Event{
		Envelope:   envelope(events.TypeCreatePath, 1),
		CreatePath: &events.CreatePathPayload{PathID: "path-1", LayerID: "layer-1"},
	}
	doc, _ = Apply(doc, create, Live)

	handleIn := geometry.Point{X: -5, Y: 0}
	handleOut := geometry.Point{X: 5, Y: 0}
	add := events.Event{
		Envelope: envelope(events.TypeAddAnchor, 2),
		AddAnchor: &events.AddAnchorPayload{
			PathID:     "path-1",
			Position:   geometry.Point{X: 0, Y: 0},
			AnchorType: geometry.AnchorSmooth,
			HandleIn:   &handleIn,
			HandleOut:  &handleOut,
		},
	}
	doc, err := Apply(doc, add, Live)
	if err != nil {
		t.Fatalf("add anchor: %v", err)
	}

	move := events.Event{
		Envelope:   envelope(events.TypeMoveAnchor, 3),
		MoveAnchor: &events.MoveAnchorPayload{PathID: "path-1", AnchorIndex: 1, Position: geometry.Point{X: 10, Y: 10}},
	}
	doc, err = Apply(doc, move, Live)
	if err != nil {
		t.Fatalf("move anchor: %v", err)
	}
	obj, _ := doc.Object("path-1")
	anchor := obj.Path.Anchors[1]
	if anchor.Position != (geometry.Point{X: 10, Y: 10}) {
		t.Fatalf("expected anchor moved to (10,10), got %+v", anchor.Position)
	}
	if anchor.HandleIn.X != 5 || anchor.HandleOut.X != 15 {
		t.Fatalf("expected handles translated along with anchor, got in=%+v out=%+v", anchor.HandleIn, anchor.HandleOut)
	}
}

func TestDeleteAnchorRewritesSegments(t *testing.T) {
	doc := baseDocument()
	create := events.Event{
		Envelope:   envelope(events.TypeCreatePath, 1),
		CreatePath: &events.CreatePathPayload{PathID: "path-1", LayerID: "layer-1"},
	}
	doc, _ = Apply(doc, create, Live)
	for i, pt := range []geometry.Point{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}} {
		add := events.Event{
			Envelope:  envelope(events.TypeAddAnchor, int64(2+i)),
			AddAnchor: &events.AddAnchorPayload{PathID: "path-1", Position: pt, AnchorType: geometry.AnchorCorner},
		}
		var err error
		doc, err = Apply(doc, add, Live)
		if err != nil {
			t.Fatalf("add anchor %d: %v", i, err)
		}
	}

	del := events.Event{
		Envelope:     envelope(events.TypeDeleteAnchor, 10),
		DeleteAnchor: &events.DeleteAnchorPayload{PathID: "path-1", AnchorIndex: 1},
	}
	doc, err := Apply(doc, del, Live)
	if err != nil {
		t.Fatalf("delete anchor: %v", err)
	}
	obj, _ := doc.Object("path-1")
	if len(obj.Path.Anchors) != 3 {
		t.Fatalf("expected 3 anchors remaining, got %d", len(obj.Path.Anchors))
	}
	// Segments 0-1 and 1-2 touched the deleted anchor and are dropped; 2-3 is
	// renumbered to 1-2 so it still points at the same two anchors.
	if len(obj.Path.Segments) != 1 {
		t.Fatalf("expected 1 segment remaining, got %+v", obj.Path.Segments)
	}
	if seg := obj.Path.Segments[0]; seg.StartAnchorIndex != 1 || seg.EndAnchorIndex != 2 {
		t.Fatalf("expected the surviving segment renumbered to 1-2, got %+v", seg)
	}
}

func TestDeleteObjectUnknownIDIsInvariantViolation(t *testing.T) {
	doc := baseDocument()
	e := events.Event{
		Envelope:     envelope(events.TypeDeleteObject, 1),
		DeleteObject: &events.DeleteObjectPayload{ObjectID: "missing"},
	}
	if _, err := Apply(doc, e, Live); !engineerr.IsKind(err, engineerr.InvariantViolated) {
		t.Fatalf("expected InvariantViolated for unknown object id, got %v", err)
	}
}

func TestMoveRotateScaleObjectAccumulateIntoTransform(t *testing.T) {
	doc := baseDocument()
	create := events.Event{
		Envelope:    envelope(events.TypeCreateShape, 1),
		CreateShape: &events.CreateShapePayload{ShapeID: "shape-1", LayerID: "layer-1", Shape: geometry.Shape{Kind: geometry.ShapeRect, Parameters: geometry.ShapeParameters{Bounds: geometry.Rectangle{W: 10, H: 10}}}},
	}
	doc, err := Apply(doc, create, Live)
	if err != nil {
		t.Fatalf("create shape: %v", err)
	}

	move := events.Event{
		Envelope:   envelope(events.TypeMoveObject, 2),
		MoveObject: &events.MoveObjectPayload{ObjectID: "shape-1", Delta: geometry.Point{X: 5, Y: 5}},
	}
	doc, err = Apply(doc, move, Live)
	if err != nil {
		t.Fatalf("move object: %v", err)
	}

	rotate := events.Event{
		Envelope:     envelope(events.TypeRotateObject, 3),
		RotateObject: &events.RotateObjectPayload{ObjectID: "shape-1", DeltaDeg: 45},
	}
	doc, err = Apply(doc, rotate, Live)
	if err != nil {
		t.Fatalf("rotate object: %v", err)
	}

	scale := events.Event{
		Envelope:    envelope(events.TypeScaleObject, 4),
		ScaleObject: &events.ScaleObjectPayload{ObjectID: "shape-1", ScaleX: 2, ScaleY: 3},
	}
	doc, err = Apply(doc, scale, Live)
	if err != nil {
		t.Fatalf("scale object: %v", err)
	}

	obj, _ := doc.Object("shape-1")
	if obj.Transform.Translate != (geometry.Point{X: 5, Y: 5}) {
		t.Fatalf("unexpected translate: %+v", obj.Transform.Translate)
	}
	if obj.Transform.RotateDeg != 45 {
		t.Fatalf("unexpected rotation: %v", obj.Transform.RotateDeg)
	}
	if obj.Transform.ScaleX != 2 || obj.Transform.ScaleY != 3 {
		t.Fatalf("unexpected scale: %v,%v", obj.Transform.ScaleX, obj.Transform.ScaleY)
	}
}

func TestSelectObjectsModes(t *testing.T) {
	doc := baseDocument()
	sel := events.Event{
		Envelope:      envelope(events.TypeSelectObjects, 1),
		SelectObjects: &events.SelectObjectsPayload{ArtboardID: "ab-1", ObjectIDs: idList("a", "b"), Mode: docmodel.SelectReplace},
	}
	doc, err := Apply(doc, sel, Live)
	if err != nil {
		t.Fatalf("select objects: %v", err)
	}
	if !doc.Artboards[0].Selection.Contains("a") || !doc.Artboards[0].Selection.Contains("b") {
		t.Fatal("expected a and b selected after replace")
	}

	clear := events.Event{
		Envelope:       envelope(events.TypeClearSelection, 2),
		ClearSelection: &events.ClearSelectionPayload{ArtboardID: "ab-1"},
	}
	doc, err = Apply(doc, clear, Live)
	if err != nil {
		t.Fatalf("clear selection: %v", err)
	}
	if len(doc.Artboards[0].Selection.ObjectIDList()) != 0 {
		t.Fatal("expected empty selection after clear")
	}
}

func TestCreateLayerReorderLayersSetProperties(t *testing.T) {
	doc := baseDocument()
	create := events.Event{
		Envelope:    envelope(events.TypeCreateLayer, 1),
		CreateLayer: &events.CreateLayerPayload{ArtboardID: "ab-1", LayerID: "layer-2", Name: "Layer 2"},
	}
	doc, err := Apply(doc, create, Live)
	if err != nil {
		t.Fatalf("create layer: %v", err)
	}
	if doc.Artboards[0].IndexOfLayer("layer-2") < 0 {
		t.Fatal("expected layer-2 to exist")
	}

	reorder := events.Event{
		Envelope:      envelope(events.TypeReorderLayers, 2),
		ReorderLayers: &events.ReorderLayersPayload{ArtboardID: "ab-1", Order: layerIDList("layer-2", "layer-1")},
	}
	doc, err = Apply(doc, reorder, Live)
	if err != nil {
		t.Fatalf("reorder layers: %v", err)
	}
	if doc.Artboards[0].Layers[0].ID != "layer-2" {
		t.Fatalf("expected layer-2 first, got %+v", doc.Artboards[0].Layers)
	}

	newName := "Renamed"
	hidden := false
	props := events.Event{
		Envelope: envelope(events.TypeSetLayerProperties, 3),
		SetLayerProperties: &events.SetLayerPropertiesPayload{
			LayerID: "layer-1",
			Name:    &newName,
			Visible: &hidden,
		},
	}
	doc, err = Apply(doc, props, Live)
	if err != nil {
		t.Fatalf("set layer properties: %v", err)
	}
	idx := doc.Artboards[0].IndexOfLayer("layer-1")
	if doc.Artboards[0].Layers[idx].Name != "Renamed" || doc.Artboards[0].Layers[idx].Visible {
		t.Fatalf("unexpected layer state after set properties: %+v", doc.Artboards[0].Layers[idx])
	}
}

func TestCreateArtboardAndUpdateBounds(t *testing.T) {
	doc := baseDocument()
	create := events.Event{
		Envelope:       envelope(events.TypeCreateArtboard, 1),
		CreateArtboard: &events.CreateArtboardPayload{ArtboardID: "ab-2", Name: "Board 2", Bounds: geometry.Rectangle{W: 50, H: 50}},
	}
	doc, err := Apply(doc, create, Live)
	if err != nil {
		t.Fatalf("create artboard: %v", err)
	}
	if doc.IndexOfArtboard("ab-2") < 0 {
		t.Fatal("expected ab-2 to exist")
	}

	update := events.Event{
		Envelope:             envelope(events.TypeUpdateArtboardBounds, 2),
		UpdateArtboardBounds: &events.UpdateArtboardBoundsPayload{ArtboardID: "ab-2", Bounds: geometry.Rectangle{W: 80, H: 80}},
	}
	doc, err = Apply(doc, update, Live)
	if err != nil {
		t.Fatalf("update bounds: %v", err)
	}
	if doc.Artboards[doc.IndexOfArtboard("ab-2")].Bounds.W != 80 {
		t.Fatal("expected bounds updated to width 80")
	}
}

func TestGroupBoundariesAreNoops(t *testing.T) {
	doc := baseDocument()
	start := events.Event{
		Envelope:   envelope(events.TypeStartGroup, 1),
		StartGroup: &events.StartGroupPayload{GroupID: "g1", Label: "Drag"},
	}
	next, err := Apply(doc, start, Live)
	if err != nil {
		t.Fatalf("start group: %v", err)
	}
	if next.IndexOfArtboard("ab-1") != doc.IndexOfArtboard("ab-1") {
		t.Fatal("expected StartGroup to leave the document structurally unchanged")
	}
}

func idList(values ...ids.ObjectID) []ids.ObjectID {
	return values
}

func layerIDList(values ...ids.LayerID) []ids.LayerID {
	return values
}
