package geometry

import "math"

// ShapeKind enumerates the parametric shapes that convert deterministically
// to a Path.
type ShapeKind string

const (
	ShapeRect    ShapeKind = "rect"
	ShapeEllipse ShapeKind = "ellipse"
	ShapePolygon ShapeKind = "polygon"
	ShapeStar    ShapeKind = "star"
)

// ShapeParameters carries the parametric description of a Shape. Only the
// fields relevant to Kind are populated; the rest are zero.
type ShapeParameters struct {
	Bounds      Rectangle `json:"bounds"`
	CornerRadii float64   `json:"cornerRadii,omitempty"`
	Sides       int       `json:"sides,omitempty"`
	InnerRadius float64   `json:"innerRadius,omitempty"`
	OuterRadius float64   `json:"outerRadius,omitempty"`
	Center      Point     `json:"center,omitempty"`
}

// Shape is a parametric primitive convertible to a Path.
type Shape struct {
	Kind       ShapeKind       `json:"kind"`
	Parameters ShapeParameters `json:"parameters"`
}

// Clone returns a deep copy of the shape.
func (s Shape) Clone() Shape {
	return Shape{Kind: s.Kind, Parameters: s.Parameters}
}

// bezierCircleFactor approximates a quarter circle with a cubic Bezier.
const bezierCircleFactor = 0.5522847498

// ToPath deterministically expands the shape into an equivalent Path.
func (s Shape) ToPath() Path {
	switch s.Kind {
	case ShapeRect:
		return rectPath(s.Parameters.Bounds)
	case ShapeEllipse:
		return ellipsePath(s.Parameters.Bounds)
	case ShapePolygon:
		return polygonPath(s.Parameters.Center, s.Parameters.OuterRadius, s.Parameters.Sides)
	case ShapeStar:
		return starPath(s.Parameters.Center, s.Parameters.InnerRadius, s.Parameters.OuterRadius, s.Parameters.Sides)
	default:
		return Path{}
	}
}

func rectPath(b Rectangle) Path {
	corners := []Point{
		{X: b.MinX(), Y: b.MinY()},
		{X: b.MaxX(), Y: b.MinY()},
		{X: b.MaxX(), Y: b.MaxY()},
		{X: b.MinX(), Y: b.MaxY()},
	}
	anchors := make([]AnchorPoint, len(corners))
	for i, c := range corners {
		anchors[i] = AnchorPoint{Position: c, Type: AnchorCorner}
	}
	return closedLinePath(anchors)
}

func ellipsePath(b Rectangle) Path {
	cx, cy := b.Center().X, b.Center().Y
	rx, ry := b.W/2, b.H/2
	positions := []Point{
		{X: cx + rx, Y: cy},
		{X: cx, Y: cy + ry},
		{X: cx - rx, Y: cy},
		{X: cx, Y: cy - ry},
	}
	handleOffsets := []Point{
		{X: 0, Y: ry * bezierCircleFactor},
		{X: -rx * bezierCircleFactor, Y: 0},
		{X: 0, Y: -ry * bezierCircleFactor},
		{X: rx * bezierCircleFactor, Y: 0},
	}
	anchors := make([]AnchorPoint, 4)
	for i := range positions {
		in := positions[i].Sub(handleOffsets[i])
		out := positions[i].Add(handleOffsets[i])
		anchors[i] = AnchorPoint{
			Position:  positions[i],
			HandleIn:  &in,
			HandleOut: &out,
			Type:      AnchorSymmetric,
		}
	}
	segments := make([]Segment, 4)
	for i := 0; i < 4; i++ {
		segments[i] = Segment{StartAnchorIndex: i, EndAnchorIndex: (i + 1) % 4, Kind: SegmentBezier}
	}
	return Path{Anchors: anchors, Segments: segments, Closed: true}
}

func polygonPath(center Point, radius float64, sides int) Path {
	if sides < 3 {
		sides = 3
	}
	anchors := make([]AnchorPoint, sides)
	for i := 0; i < sides; i++ {
		angle := -math.Pi/2 + float64(i)*2*math.Pi/float64(sides)
		pos := Point{X: center.X + radius*math.Cos(angle), Y: center.Y + radius*math.Sin(angle)}
		anchors[i] = AnchorPoint{Position: pos, Type: AnchorCorner}
	}
	return closedLinePath(anchors)
}

func starPath(center Point, innerRadius, outerRadius float64, points int) Path {
	if points < 2 {
		points = 2
	}
	count := points * 2
	anchors := make([]AnchorPoint, count)
	for i := 0; i < count; i++ {
		angle := -math.Pi/2 + float64(i)*math.Pi/float64(points)
		radius := outerRadius
		if i%2 == 1 {
			radius = innerRadius
		}
		pos := Point{X: center.X + radius*math.Cos(angle), Y: center.Y + radius*math.Sin(angle)}
		anchors[i] = AnchorPoint{Position: pos, Type: AnchorCorner}
	}
	return closedLinePath(anchors)
}

func closedLinePath(anchors []AnchorPoint) Path {
	segments := make([]Segment, len(anchors))
	for i := range anchors {
		segments[i] = Segment{StartAnchorIndex: i, EndAnchorIndex: (i + 1) % len(anchors), Kind: SegmentLine}
	}
	return Path{Anchors: anchors, Segments: segments, Closed: true}
}
