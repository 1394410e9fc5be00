package hittest

import (
	"math"
	"sort"

	"wiretuner/engine/internal/docmodel"
	"wiretuner/engine/internal/geometry"
	"wiretuner/engine/internal/ids"
)

// Kind identifies which part of an object a hit test result matched.
type Kind string

const (
	KindAnchor Kind = "anchor"
	KindStroke Kind = "path-stroke"
	KindFill   Kind = "path-fill"
	KindShape  Kind = "shape"
)

// priority orders hits of equal distance: anchor first, then stroke, then
// fill/shape (spec.md §4.10: "Anchor hits have priority 1, stroke priority
// 2, fill priority 3 at equal distance").
func (k Kind) priority() int {
	switch k {
	case KindAnchor:
		return 1
	case KindStroke:
		return 2
	default:
		return 3
	}
}

// Config bounds a hitTest query. Tolerance and AnchorTolerance are
// world-space distances; screen-space callers must pre-divide by zoom
// before calling (spec.md §4.10).
type Config struct {
	Tolerance          float64
	AnchorTolerance    float64
	FlattenSubdivisions int
}

// DefaultConfig returns reasonable world-space tolerances for a zoom-1 view.
func DefaultConfig() Config {
	return Config{Tolerance: 4, AnchorTolerance: 6, FlattenSubdivisions: geometry.DefaultFlattenSubdivisions}
}

// Result is a single hit, as returned by HitTest in ascending-distance
// order with Kind.priority() as a tie-break.
type Result struct {
	ObjectID ids.ObjectID
	Kind     Kind
	Distance float64
	AnchorIndex int // valid only when Kind == KindAnchor
}

// worldPoint maps a point in an object's local geometry space into world
// space via its Transform, applied scale then rotate then translate (the
// conventional local-to-world composition underlying docmodel.Transform's
// documented translate/rotate/scale field ordering).
func worldPoint(t docmodel.Transform, p geometry.Point) geometry.Point {
	x := p.X * t.ScaleX
	y := p.Y * t.ScaleY
	if t.RotateDeg != 0 {
		rad := t.RotateDeg * math.Pi / 180
		sin, cos := math.Sin(rad), math.Cos(rad)
		x, y = x*cos-y*sin, x*sin+y*cos
	}
	return geometry.Point{X: x + t.Translate.X, Y: y + t.Translate.Y}
}

func worldPath(obj docmodel.VectorObject, subdivisions int) geometry.Path {
	local := obj.ResolvedPath()
	if obj.Transform.IsIdentity() {
		return local
	}
	out := local.Clone()
	for i, a := range out.Anchors {
		out.Anchors[i].Position = worldPoint(obj.Transform, a.Position)
		if a.HandleIn != nil {
			h := worldPoint(obj.Transform, *a.HandleIn)
			out.Anchors[i].HandleIn = &h
		}
		if a.HandleOut != nil {
			h := worldPoint(obj.Transform, *a.HandleOut)
			out.Anchors[i].HandleOut = &h
		}
	}
	return out
}

// HitTest returns every hit within cfg's tolerances, sorted by ascending
// distance with anchor/stroke/fill priority breaking exact ties (spec.md
// §4.10).
func HitTest(idx *Index, point geometry.Point, cfg Config) []Result {
	if idx == nil {
		return nil
	}
	maxTolerance := math.Max(cfg.Tolerance, cfg.AnchorTolerance)
	candidates := idx.candidatesNear(point, maxTolerance)

	var results []Result
	for _, c := range candidates {
		path := worldPath(c.object, cfg.FlattenSubdivisions)
		if len(path.Anchors) == 0 {
			continue
		}

		for ai, a := range path.Anchors {
			d := point.Dist(a.Position)
			if d <= cfg.AnchorTolerance {
				results = append(results, Result{ObjectID: c.id, Kind: KindAnchor, Distance: d, AnchorIndex: ai})
			}
		}

		strokeDist := path.DistanceToPath(point, cfg.FlattenSubdivisions)
		if strokeDist >= 0 && strokeDist <= cfg.Tolerance {
			results = append(results, Result{ObjectID: c.id, Kind: KindStroke, Distance: strokeDist})
		}

		if path.Closed && path.ContainsPoint(point, cfg.FlattenSubdivisions) {
			fillKind := KindFill
			if c.object.Kind == docmodel.ObjectKindShape {
				fillKind = KindShape
			}
			results = append(results, Result{ObjectID: c.id, Kind: fillKind, Distance: 0})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].Kind.priority() < results[j].Kind.priority()
	})
	return results
}

// HitTestBounds returns the set of object ids whose bounds intersect rect, a
// broad-phase query for marquee selection (spec.md §4.10). It consults the
// uniform grid first to shrink the BVH candidate set, then confirms with an
// exact bounds intersection.
func HitTestBounds(idx *Index, rect geometry.Rectangle) map[ids.ObjectID]struct{} {
	out := make(map[ids.ObjectID]struct{})
	if idx == nil {
		return out
	}
	gridCandidates := idx.grid.query(rect)
	for _, e := range idx.candidatesOverlapping(rect) {
		if _, ok := gridCandidates[e.id]; !ok {
			continue
		}
		if e.bounds.Intersects(rect) {
			out[e.id] = struct{}{}
		}
	}
	return out
}
