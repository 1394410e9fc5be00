package hittest

import (
	"testing"

	"wiretuner/engine/internal/docmodel"
	"wiretuner/engine/internal/geometry"
	"wiretuner/engine/internal/ids"
)

func squarePath(x, y, size float64) geometry.Path {
	return geometry.Path{
		Anchors: []geometry.AnchorPoint{
			{Position: geometry.Point{X: x, Y: y}, Type: geometry.AnchorCorner},
			{Position: geometry.Point{X: x + size, Y: y}, Type: geometry.AnchorCorner},
			{Position: geometry.Point{X: x + size, Y: y + size}, Type: geometry.AnchorCorner},
			{Position: geometry.Point{X: x, Y: y + size}, Type: geometry.AnchorCorner},
		},
		Segments: []geometry.Segment{
			{StartAnchorIndex: 0, EndAnchorIndex: 1, Kind: geometry.SegmentLine},
			{StartAnchorIndex: 1, EndAnchorIndex: 2, Kind: geometry.SegmentLine},
			{StartAnchorIndex: 2, EndAnchorIndex: 3, Kind: geometry.SegmentLine},
			{StartAnchorIndex: 3, EndAnchorIndex: 0, Kind: geometry.SegmentLine},
		},
		Closed: true,
	}
}

func TestHitTestAnchorBeatsFillAtEqualDistance(t *testing.T) {
	objects := []docmodel.VectorObject{
		docmodel.NewPathObject("obj-1", squarePath(0, 0, 10)),
	}
	idx := Build(objects)

	results := HitTest(idx, geometry.Point{X: 0, Y: 0}, DefaultConfig())
	if len(results) == 0 {
		t.Fatalf("expected at least one hit")
	}
	if results[0].Kind != KindAnchor {
		t.Fatalf("expected anchor hit to sort first, got %+v", results[0])
	}
}

func TestHitTestFillInsideClosedPath(t *testing.T) {
	objects := []docmodel.VectorObject{
		docmodel.NewPathObject("obj-1", squarePath(0, 0, 10)),
	}
	idx := Build(objects)

	results := HitTest(idx, geometry.Point{X: 5, Y: 5}, DefaultConfig())
	found := false
	for _, r := range results {
		if r.Kind == KindFill && r.ObjectID == "obj-1" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected fill hit at center, got %+v", results)
	}
}

func TestHitTestMissReturnsNoResults(t *testing.T) {
	objects := []docmodel.VectorObject{
		docmodel.NewPathObject("obj-1", squarePath(0, 0, 10)),
	}
	idx := Build(objects)

	results := HitTest(idx, geometry.Point{X: 1000, Y: 1000}, DefaultConfig())
	if len(results) != 0 {
		t.Fatalf("expected no hits far from geometry, got %+v", results)
	}
}

func TestHitTestBoundsMarquee(t *testing.T) {
	objects := []docmodel.VectorObject{
		docmodel.NewPathObject("obj-near", squarePath(0, 0, 10)),
		docmodel.NewPathObject("obj-far", squarePath(1000, 1000, 10)),
	}
	idx := Build(objects)

	hits := HitTestBounds(idx, geometry.Rectangle{X: -5, Y: -5, W: 20, H: 20})
	if _, ok := hits[ids.ObjectID("obj-near")]; !ok {
		t.Fatalf("expected obj-near in marquee, got %+v", hits)
	}
	if _, ok := hits[ids.ObjectID("obj-far")]; ok {
		t.Fatalf("did not expect obj-far in marquee, got %+v", hits)
	}
}

func TestHitTestRespectsTransformTranslation(t *testing.T) {
	obj := docmodel.NewPathObject("obj-1", squarePath(0, 0, 10))
	obj = obj.WithTransform(docmodel.Transform{Translate: geometry.Point{X: 100, Y: 100}, ScaleX: 1, ScaleY: 1})
	idx := Build([]docmodel.VectorObject{obj})

	results := HitTest(idx, geometry.Point{X: 100, Y: 100}, DefaultConfig())
	if len(results) == 0 {
		t.Fatalf("expected a hit at the translated anchor position")
	}

	missed := HitTest(idx, geometry.Point{X: 0, Y: 0}, DefaultConfig())
	if len(missed) != 0 {
		t.Fatalf("expected no hit at the untranslated local position, got %+v", missed)
	}
}

func TestBuildEmptyIndex(t *testing.T) {
	idx := Build(nil)
	if idx.Count() != 0 {
		t.Fatalf("expected empty index, got count %d", idx.Count())
	}
	if results := HitTest(idx, geometry.Point{}, DefaultConfig()); len(results) != 0 {
		t.Fatalf("expected no hits on empty index, got %+v", results)
	}
}
