package geometry

import "math"

// Rectangle is an axis-aligned box anchored at its top-left corner.
// W and H are always non-negative.
type Rectangle struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Valid reports whether the rectangle satisfies w, h >= 0.
func (r Rectangle) Valid() bool {
	return r.W >= 0 && r.H >= 0
}

// MinX, MaxX, MinY, MaxY return the rectangle's bounding edges.
func (r Rectangle) MinX() float64 { return r.X }
func (r Rectangle) MaxX() float64 { return r.X + r.W }
func (r Rectangle) MinY() float64 { return r.Y }
func (r Rectangle) MaxY() float64 { return r.Y + r.H }

// Center returns the rectangle's centroid.
func (r Rectangle) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Contains reports whether p lies within the rectangle, inclusive of edges.
func (r Rectangle) Contains(p Point) bool {
	return p.X >= r.MinX() && p.X <= r.MaxX() && p.Y >= r.MinY() && p.Y <= r.MaxY()
}

// Intersects reports whether r and other overlap or touch.
func (r Rectangle) Intersects(other Rectangle) bool {
	return r.MinX() <= other.MaxX() && r.MaxX() >= other.MinX() &&
		r.MinY() <= other.MaxY() && r.MaxY() >= other.MinY()
}

// Union returns the smallest rectangle containing both r and other.
func (r Rectangle) Union(other Rectangle) Rectangle {
	minX := math.Min(r.MinX(), other.MinX())
	minY := math.Min(r.MinY(), other.MinY())
	maxX := math.Max(r.MaxX(), other.MaxX())
	maxY := math.Max(r.MaxY(), other.MaxY())
	return Rectangle{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Expand returns r grown outward by margin on every side.
func (r Rectangle) Expand(margin float64) Rectangle {
	return Rectangle{
		X: r.X - margin,
		Y: r.Y - margin,
		W: r.W + 2*margin,
		H: r.H + 2*margin,
	}
}

// RectFromPoints returns the bounding rectangle of the given points. The
// zero-value Rectangle is returned for an empty slice.
func RectFromPoints(points []Point) Rectangle {
	if len(points) == 0 {
		return Rectangle{}
	}
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	return Rectangle{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// clamp restricts v to the closed interval [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClosestPoint returns the point on (or inside) the rectangle closest to p.
func (r Rectangle) ClosestPoint(p Point) Point {
	return Point{
		X: clamp(p.X, r.MinX(), r.MaxX()),
		Y: clamp(p.Y, r.MinY(), r.MaxY()),
	}
}

// CircleOverlap reports whether a circle centered at c with the given
// radius overlaps the rectangle.
func (r Rectangle) CircleOverlap(c Point, radius float64) bool {
	closest := r.ClosestPoint(c)
	return c.Dist(closest) <= radius
}
