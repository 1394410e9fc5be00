package geometry

import "testing"

func TestShapeRectToPath(t *testing.T) {
	s := Shape{Kind: ShapeRect, Parameters: ShapeParameters{Bounds: Rectangle{X: 0, Y: 0, W: 10, H: 20}}}
	p := s.ToPath()
	if len(p.Anchors) != 4 {
		t.Fatalf("expected 4 anchors, got %d", len(p.Anchors))
	}
	if !p.Closed {
		t.Fatal("expected rect path to be closed")
	}
	if !p.Valid() {
		t.Fatal("expected rect path to be structurally valid")
	}
}

func TestShapePolygonDeterministic(t *testing.T) {
	s := Shape{Kind: ShapePolygon, Parameters: ShapeParameters{Center: Point{X: 0, Y: 0}, OuterRadius: 5, Sides: 6}}
	a := s.ToPath()
	b := s.ToPath()
	if len(a.Anchors) != len(b.Anchors) {
		t.Fatal("expected deterministic anchor count")
	}
	for i := range a.Anchors {
		if a.Anchors[i].Position != b.Anchors[i].Position {
			t.Fatalf("expected deterministic anchor positions at %d", i)
		}
	}
}

func TestRectangleBasics(t *testing.T) {
	r := Rectangle{X: 0, Y: 0, W: 10, H: 10}
	if !r.Valid() {
		t.Fatal("expected valid rectangle")
	}
	if !r.Contains(Point{X: 5, Y: 5}) {
		t.Fatal("expected rect to contain interior point")
	}
	other := Rectangle{X: 5, Y: 5, W: 10, H: 10}
	if !r.Intersects(other) {
		t.Fatal("expected overlapping rectangles to intersect")
	}
	union := r.Union(other)
	if union.W != 15 || union.H != 15 {
		t.Fatalf("unexpected union dimensions: %+v", union)
	}
}

func TestRectangleCircleOverlap(t *testing.T) {
	r := Rectangle{X: 0, Y: 0, W: 10, H: 10}
	if !r.CircleOverlap(Point{X: 15, Y: 5}, 6) {
		t.Fatal("expected circle overlapping rect edge to report true")
	}
	if r.CircleOverlap(Point{X: 100, Y: 100}, 1) {
		t.Fatal("expected distant circle to not overlap")
	}
}
