package docmodel

import (
	"testing"

	"wiretuner/engine/internal/geometry"
	"wiretuner/engine/internal/ids"
)

func sampleDocument() Document {
	doc := New("doc-1", "Untitled")
	artboard := NewArtboard("ab-1", "Board 1", geometry.Rectangle{W: 100, H: 100})
	layer := NewLayer("layer-1", "Layer 1")
	obj := NewPathObject("obj-1", geometry.Path{
		Anchors: []geometry.AnchorPoint{
			{Position: geometry.Point{X: 0, Y: 0}, Type: geometry.AnchorCorner},
			{Position: geometry.Point{X: 10, Y: 10}, Type: geometry.AnchorCorner},
		},
		Segments: []geometry.Segment{{StartAnchorIndex: 0, EndAnchorIndex: 1, Kind: geometry.SegmentLine}},
	})
	layer = layer.WithAppendedObject(obj)
	artboard = artboard.WithAppendedLayer(layer)
	doc = doc.WithAppendedArtboard(artboard)
	return doc
}

func TestDocumentCloneIsIndependent(t *testing.T) {
	doc := sampleDocument()
	cloned := doc.Clone()
	cloned.Artboards[0].Layers[0].Objects[0].Path.Anchors[0].Position.X = 999

	orig, ok := doc.Object("obj-1")
	if !ok {
		t.Fatal("expected to find object in original document")
	}
	if orig.Path.Anchors[0].Position.X == 999 {
		t.Fatal("expected clone mutation not to affect original document")
	}
}

func TestDocumentWithArtboardStructuralUpdate(t *testing.T) {
	doc := sampleDocument()
	next := doc.WithArtboard("ab-1", func(a Artboard) Artboard {
		return a.WithSelection(a.Selection.Apply(SelectReplace, []ids.ObjectID{"obj-1"}))
	})
	if next.Artboards[0].Selection.Contains("obj-1") != true {
		t.Fatal("expected selection to contain obj-1 after WithArtboard update")
	}
	if doc.Artboards[0].Selection.Contains("obj-1") {
		t.Fatal("expected original document selection to be unaffected")
	}
}

func TestDocumentUniqueObjectIDs(t *testing.T) {
	doc := sampleDocument()
	if !doc.UniqueObjectIDs() {
		t.Fatal("expected unique object ids in sample document")
	}
	dup := doc.WithArtboard("ab-1", func(a Artboard) Artboard {
		return a.WithLayer("layer-1", func(l Layer) Layer {
			return l.WithAppendedObject(NewPathObject("obj-1", geometry.Path{}))
		})
	})
	if dup.UniqueObjectIDs() {
		t.Fatal("expected duplicate object id to be detected")
	}
}

func TestSelectionModes(t *testing.T) {
	sel := NewSelection()
	sel = sel.Apply(SelectReplace, []ids.ObjectID{"a", "b"})
	if !sel.Contains("a") || !sel.Contains("b") {
		t.Fatal("expected replace mode to select both objects")
	}
	sel = sel.Apply(SelectToggle, []ids.ObjectID{"a"})
	if sel.Contains("a") {
		t.Fatal("expected toggle to deselect already-selected object")
	}
	sel = sel.Apply(SelectAdd, []ids.ObjectID{"c"})
	if !sel.Contains("b") || !sel.Contains("c") {
		t.Fatal("expected add mode to preserve existing selection and add new")
	}
}

func TestArtboardReorderLayers(t *testing.T) {
	ab := NewArtboard("ab-1", "Board", geometry.Rectangle{W: 10, H: 10})
	ab = ab.WithAppendedLayer(NewLayer("l1", "One"))
	ab = ab.WithAppendedLayer(NewLayer("l2", "Two"))
	ab = ab.WithAppendedLayer(NewLayer("l3", "Three"))

	reordered := ab.WithReorderedLayers([]ids.LayerID{"l3", "l1"})
	if len(reordered.Layers) != 3 {
		t.Fatalf("expected 3 layers, got %d", len(reordered.Layers))
	}
	if reordered.Layers[0].ID != "l3" || reordered.Layers[1].ID != "l1" || reordered.Layers[2].ID != "l2" {
		t.Fatalf("unexpected reorder result: %+v", reordered.Layers)
	}
}
