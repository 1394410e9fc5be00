package geometry

import "testing"

func TestPathFlattenLine(t *testing.T) {
	p := Path{
		Anchors: []AnchorPoint{
			{Position: Point{X: 0, Y: 0}, Type: AnchorCorner},
			{Position: Point{X: 10, Y: 0}, Type: AnchorCorner},
		},
		Segments: []Segment{{StartAnchorIndex: 0, EndAnchorIndex: 1, Kind: SegmentLine}},
	}
	poly := p.Flatten(0)
	if len(poly) != 2 {
		t.Fatalf("expected 2 points, got %d", len(poly))
	}
	if poly[0] != (Point{X: 0, Y: 0}) || poly[1] != (Point{X: 10, Y: 0}) {
		t.Fatalf("unexpected flattened points: %v", poly)
	}
}

func TestPathValidSegmentRange(t *testing.T) {
	p := Path{
		Anchors:  []AnchorPoint{{Position: Point{X: 0, Y: 0}}},
		Segments: []Segment{{StartAnchorIndex: 0, EndAnchorIndex: 5, Kind: SegmentLine}},
	}
	if p.Valid() {
		t.Fatal("expected invalid path due to out-of-range segment")
	}
}

func TestPathValidClosedReturnsToZero(t *testing.T) {
	p := Path{
		Anchors: []AnchorPoint{
			{Position: Point{X: 0, Y: 0}},
			{Position: Point{X: 1, Y: 1}},
		},
		Segments: []Segment{
			{StartAnchorIndex: 0, EndAnchorIndex: 1, Kind: SegmentLine},
			{StartAnchorIndex: 1, EndAnchorIndex: 1, Kind: SegmentLine},
		},
		Closed: true,
	}
	if p.Valid() {
		t.Fatal("expected invalid closed path: last segment must return to anchor 0")
	}
}

func TestAnchorSmoothConstraint(t *testing.T) {
	position := Point{X: 0, Y: 0}
	in := Point{X: -10, Y: 0}
	out := Point{X: 10, Y: 0}
	a := AnchorPoint{Position: position, HandleIn: &in, HandleOut: &out, Type: AnchorSmooth}
	if !a.ValidateConstraint() {
		t.Fatal("expected smooth anchor with opposite handles to be valid")
	}

	badOut := Point{X: 5, Y: 5}
	a.HandleOut = &badOut
	if a.ValidateConstraint() {
		t.Fatal("expected smooth anchor with non-opposite handles to be invalid")
	}
}

func TestAnchorSymmetricConstraint(t *testing.T) {
	position := Point{X: 0, Y: 0}
	in := Point{X: -4, Y: -4}
	out := Point{X: 8, Y: 8}
	a := AnchorPoint{Position: position, HandleIn: &in, HandleOut: &out, Type: AnchorSymmetric}
	if !a.ValidateConstraint() {
		t.Fatal("expected collinear handles to satisfy symmetric constraint")
	}
}

func TestDistanceToPath(t *testing.T) {
	p := Path{
		Anchors: []AnchorPoint{
			{Position: Point{X: 0, Y: 0}},
			{Position: Point{X: 10, Y: 0}},
		},
		Segments: []Segment{{StartAnchorIndex: 0, EndAnchorIndex: 1, Kind: SegmentLine}},
	}
	d := p.DistanceToPath(Point{X: 5, Y: 5}, 0)
	if d != 5 {
		t.Fatalf("expected distance 5, got %v", d)
	}
}

func TestContainsPointRequiresClosed(t *testing.T) {
	p := rectPath(Rectangle{X: 0, Y: 0, W: 10, H: 10})
	if !p.ContainsPoint(Point{X: 5, Y: 5}, 0) {
		t.Fatal("expected point inside closed rect path")
	}
	if p.ContainsPoint(Point{X: 50, Y: 50}, 0) {
		t.Fatal("expected point outside rect path to be rejected")
	}
	p.Closed = false
	if p.ContainsPoint(Point{X: 5, Y: 5}, 0) {
		t.Fatal("expected open path to never contain a point")
	}
}
