package geometry

// Path is an ordered sequence of anchors connected by segments. Segment
// indices must be in range; when Closed, the last segment returns to
// anchor index 0.
type Path struct {
	Anchors  []AnchorPoint `json:"anchors"`
	Segments []Segment     `json:"segments"`
	Closed   bool          `json:"closed"`
}

// Clone returns a deep copy of the path.
func (p Path) Clone() Path {
	anchors := make([]AnchorPoint, len(p.Anchors))
	for i, a := range p.Anchors {
		anchors[i] = a.Clone()
	}
	segments := make([]Segment, len(p.Segments))
	copy(segments, p.Segments)
	return Path{Anchors: anchors, Segments: segments, Closed: p.Closed}
}

// Valid reports whether every segment references anchors in range and, for
// closed paths, the final segment returns to anchor 0.
func (p Path) Valid() bool {
	for _, seg := range p.Segments {
		if !seg.InRange(len(p.Anchors)) {
			return false
		}
	}
	if p.Closed && len(p.Segments) > 0 {
		last := p.Segments[len(p.Segments)-1]
		if last.EndAnchorIndex != 0 {
			return false
		}
	}
	return true
}

// Bounds returns the bounding rectangle of the path's anchors and handles.
func (p Path) Bounds() Rectangle {
	if len(p.Anchors) == 0 {
		return Rectangle{}
	}
	points := make([]Point, 0, len(p.Anchors)*3)
	for _, a := range p.Anchors {
		points = append(points, a.Position)
		if a.HandleIn != nil {
			points = append(points, *a.HandleIn)
		}
		if a.HandleOut != nil {
			points = append(points, *a.HandleOut)
		}
	}
	return RectFromPoints(points)
}

// DefaultFlattenSubdivisions is the default Bezier flattening resolution
// used by distance-to-path queries (spec.md §4.10).
const DefaultFlattenSubdivisions = 20

// Flatten converts the path into a polyline approximation, subdividing each
// Bezier segment into the given number of straight-line steps. A
// subdivisions value <= 0 uses DefaultFlattenSubdivisions.
func (p Path) Flatten(subdivisions int) []Point {
	if subdivisions <= 0 {
		subdivisions = DefaultFlattenSubdivisions
	}
	if len(p.Anchors) == 0 {
		return nil
	}
	var out []Point
	appendPoint := func(pt Point) {
		if len(out) > 0 && out[len(out)-1] == pt {
			return
		}
		out = append(out, pt)
	}
	for _, seg := range p.Segments {
		if !seg.InRange(len(p.Anchors)) {
			continue
		}
		start := p.Anchors[seg.StartAnchorIndex]
		end := p.Anchors[seg.EndAnchorIndex]
		switch seg.Kind {
		case SegmentBezier:
			c1 := start.Position
			if start.HandleOut != nil {
				c1 = *start.HandleOut
			}
			c2 := end.Position
			if end.HandleIn != nil {
				c2 = *end.HandleIn
			}
			for i := 0; i <= subdivisions; i++ {
				t := float64(i) / float64(subdivisions)
				appendPoint(cubicBezier(start.Position, c1, c2, end.Position, t))
			}
		default:
			appendPoint(start.Position)
			appendPoint(end.Position)
		}
	}
	if len(out) == 0 {
		for _, a := range p.Anchors {
			appendPoint(a.Position)
		}
	}
	return out
}

func cubicBezier(p0, p1, p2, p3 Point, t float64) Point {
	mt := 1 - t
	a := mt * mt * mt
	b := 3 * mt * mt * t
	c := 3 * mt * t * t
	d := t * t * t
	return Point{
		X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
	}
}

// DistanceToPath returns the minimum distance from p to the path's flattened
// outline, using the given subdivision resolution.
func (path Path) DistanceToPath(p Point, subdivisions int) float64 {
	poly := path.Flatten(subdivisions)
	if len(poly) == 0 {
		return -1
	}
	if len(poly) == 1 {
		return p.Dist(poly[0])
	}
	best := -1.0
	segCount := len(poly) - 1
	if path.Closed {
		segCount = len(poly)
	}
	for i := 0; i < segCount; i++ {
		a := poly[i]
		b := poly[(i+1)%len(poly)]
		d := distancePointSegment(p, a, b)
		if best < 0 || d < best {
			best = d
		}
	}
	return best
}

func distancePointSegment(p, a, b Point) float64 {
	ab := b.Sub(a)
	abLenSq := ab.X*ab.X + ab.Y*ab.Y
	if abLenSq == 0 {
		return p.Dist(a)
	}
	t := ((p.X-a.X)*ab.X + (p.Y-a.Y)*ab.Y) / abLenSq
	t = clamp(t, 0, 1)
	closest := a.Lerp(b, t)
	return p.Dist(closest)
}

// ContainsPoint performs an even-odd winding test against the flattened
// outline. Only meaningful for closed paths.
func (path Path) ContainsPoint(p Point, subdivisions int) bool {
	if !path.Closed {
		return false
	}
	poly := path.Flatten(subdivisions)
	if len(poly) < 3 {
		return false
	}
	inside := false
	n := len(poly)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := poly[i], poly[j]
		intersects := (pi.Y > p.Y) != (pj.Y > p.Y)
		if !intersects {
			continue
		}
		xCross := (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y) + pi.X
		if p.X < xCross {
			inside = !inside
		}
	}
	return inside
}
