// Package hittest implements the spatial index of spec.md §4.10: a BVH over
// object bounds for ordered point/distance queries, plus a uniform grid for
// broad-phase marquee (hitTestBounds) queries. Grounded on the teacher's
// internal/effects.SpatialIndex (grid occupancy bookkeeping, generalized
// from effect instances to arbitrary vector objects in grid.go) and
// internal/combat/geometry.go's circle/rectangle overlap primitives, which
// informed geometry.Rectangle.CircleOverlap/ClosestPoint.
package hittest

import (
	"sort"

	"wiretuner/engine/internal/docmodel"
	"wiretuner/engine/internal/geometry"
	"wiretuner/engine/internal/ids"
)

// entry is one leaf of the BVH: an object's id, its world-space bounds, and
// the resolved geometry needed for exact distance/contains tests.
type entry struct {
	id     ids.ObjectID
	bounds geometry.Rectangle
	object docmodel.VectorObject
}

// node is a BVH tree node. Leaves hold 1..maxLeafSize entries and nil
// children; interior nodes have exactly two children.
type node struct {
	bounds   geometry.Rectangle
	entries  []entry
	children [2]*node
}

// Index is the built spatial index over a fixed snapshot of objects. It does
// not observe further mutation; callers rebuild it whenever the underlying
// layer/object set changes (spec.md §4.10 treats build as a pure snapshot
// operation, not an incrementally-maintained structure).
type Index struct {
	root *node
	grid *grid
	all  []entry
}

// maxLeafSize caps how many objects a BVH leaf holds before it is split
// further; small enough to keep query pruning effective, large enough to
// avoid excess tree depth for small documents.
const maxLeafSize = 4

// Build constructs a BVH over objects' world-space bounds, O(n log n) via a
// top-down median split on the longer axis at each level (spec.md §4.10).
// It also builds a uniform grid over the same objects for hitTestBounds.
func Build(objects []docmodel.VectorObject) *Index {
	entries := make([]entry, 0, len(objects))
	for _, obj := range objects {
		entries = append(entries, entry{id: obj.ID, bounds: obj.Bounds(), object: obj})
	}
	return &Index{
		root: buildNode(entries),
		grid: buildGrid(entries),
		all:  entries,
	}
}

func buildNode(entries []entry) *node {
	if len(entries) == 0 {
		return nil
	}
	bounds := entries[0].bounds
	for _, e := range entries[1:] {
		bounds = bounds.Union(e.bounds)
	}
	if len(entries) <= maxLeafSize {
		return &node{bounds: bounds, entries: entries}
	}

	longerAxisX := bounds.W >= bounds.H
	sorted := make([]entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		ci, cj := sorted[i].bounds.Center(), sorted[j].bounds.Center()
		if longerAxisX {
			return ci.X < cj.X
		}
		return ci.Y < cj.Y
	})

	mid := len(sorted) / 2
	left := buildNode(sorted[:mid])
	right := buildNode(sorted[mid:])
	return &node{bounds: bounds, children: [2]*node{left, right}}
}

// Count returns the number of objects indexed.
func (idx *Index) Count() int {
	if idx == nil {
		return 0
	}
	return len(idx.all)
}

// candidatesNear collects every leaf entry whose expanded bounds could
// contain a point within tolerance of query, pruning subtrees whose bounds
// (expanded by tolerance) don't overlap query at all.
func (idx *Index) candidatesNear(query geometry.Point, tolerance float64) []entry {
	if idx == nil || idx.root == nil {
		return nil
	}
	var out []entry
	var walk func(n *node)
	walk = func(n *node) {
		if n == nil {
			return
		}
		if !n.bounds.Expand(tolerance).Contains(query) {
			return
		}
		if n.entries != nil {
			out = append(out, n.entries...)
			return
		}
		walk(n.children[0])
		walk(n.children[1])
	}
	walk(idx.root)
	return out
}

// candidatesOverlapping collects every leaf entry whose bounds intersect
// rect, pruning subtrees whose bounds don't overlap rect at all.
func (idx *Index) candidatesOverlapping(rect geometry.Rectangle) []entry {
	if idx == nil || idx.root == nil {
		return nil
	}
	var out []entry
	var walk func(n *node)
	walk = func(n *node) {
		if n == nil {
			return
		}
		if !n.bounds.Intersects(rect) {
			return
		}
		if n.entries != nil {
			out = append(out, n.entries...)
			return
		}
		walk(n.children[0])
		walk(n.children[1])
	}
	walk(idx.root)
	return out
}
