package hittest

import (
	"math"

	"wiretuner/engine/internal/geometry"
	"wiretuner/engine/internal/ids"
)

// cellKey identifies a grid cell, mirroring the teacher's SpatialCellKey.
type cellKey struct {
	x int
	y int
}

// defaultCellSize mirrors the teacher's DefaultSpatialCellSize: a tile size
// chosen so a typical object's bounds touch a small, bounded number of
// cells. Document-space coordinates here are already in the same rough
// scale as the teacher's world units, so the value carries over unchanged.
const defaultCellSize = 64.0

// grid is a uniform-cell broad-phase index over object bounds, a direct
// generalization of internal/effects.SpatialIndex from effect instances to
// arbitrary VectorObjects: one bucket of object ids per occupied cell,
// queried by enumerating the cells a rect overlaps.
type grid struct {
	cellSize    float64
	invCellSize float64
	cells       map[cellKey][]ids.ObjectID
}

func buildGrid(entries []entry) *grid {
	g := &grid{
		cellSize:    defaultCellSize,
		invCellSize: 1.0 / defaultCellSize,
		cells:       make(map[cellKey][]ids.ObjectID),
	}
	for _, e := range entries {
		for _, key := range g.cellsForBounds(e.bounds) {
			g.cells[key] = append(g.cells[key], e.id)
		}
	}
	return g
}

func (g *grid) coordToCell(v float64) int {
	return int(math.Floor(v * g.invCellSize))
}

func (g *grid) cellsForBounds(b geometry.Rectangle) []cellKey {
	minX, minY := g.coordToCell(b.MinX()), g.coordToCell(b.MinY())
	maxX, maxY := g.coordToCell(b.MaxX()), g.coordToCell(b.MaxY())
	keys := make([]cellKey, 0, (maxX-minX+1)*(maxY-minY+1))
	for row := minY; row <= maxY; row++ {
		for col := minX; col <= maxX; col++ {
			keys = append(keys, cellKey{x: col, y: row})
		}
	}
	return keys
}

// query returns the set of object ids occupying any cell rect overlaps. The
// caller still confirms exact bounds intersection; this only shrinks the
// candidate set.
func (g *grid) query(rect geometry.Rectangle) map[ids.ObjectID]struct{} {
	out := make(map[ids.ObjectID]struct{})
	if g == nil {
		return out
	}
	for _, key := range g.cellsForBounds(rect) {
		for _, id := range g.cells[key] {
			out[id] = struct{}{}
		}
	}
	return out
}
