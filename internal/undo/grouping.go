// Package undo implements spec.md §4.7 operation grouping and §4.8 the
// undo/redo navigator. Grouping is a small state machine that decides when
// an implicit operation boundary opens, grounded on internal/sim/loop.go's
// per-actor bookkeeping maps (lastEventAt, dropCounts) repurposed here to
// per-document lastEventAt/lastToolID tracking. The navigator is grounded
// on the LRU-cached replay pattern described in spec.md §4.8, implemented
// with github.com/hashicorp/golang-lru/v2, the same dependency family
// carried in the reference pack (hashicorp/golang-lru).
package undo

import (
	"sync"
	"time"
)

// IdleThreshold is the maximum gap between events before the grouper opens
// a new implicit operation boundary (spec.md §4.7).
const IdleThreshold = 200 * time.Millisecond

// BoundaryReason identifies why Grouper.Observe opened a new boundary.
type BoundaryReason string

const (
	BoundaryNone       BoundaryReason = ""
	BoundaryIdle       BoundaryReason = "idle"
	BoundaryToolSwitch BoundaryReason = "toolSwitch"
	BoundaryForced     BoundaryReason = "forced"
)

// Grouper tracks idle-gap and tool-switch boundaries between explicit
// StartGroup/EndGroup pairs. It does not itself emit events; callers
// (internal/engine) use Observe's result to decide whether to open a new
// implicit group via internal/recorder before recording the event.
type Grouper struct {
	mu            sync.Mutex
	idleThreshold time.Duration
	haveLast      bool
	lastEventAt   time.Time
	lastToolID    string
	explicitDepth int
}

// NewGrouper constructs a Grouper using the standard 200ms idle threshold.
func NewGrouper() *Grouper {
	return &Grouper{idleThreshold: IdleThreshold}
}

// ObserveExplicitStart records an explicit StartGroup boundary. Nested
// StartGroup/EndGroup pairs (explicitDepth already > 0) are flattened into
// the outer group, per spec.md §4.7.
func (g *Grouper) ObserveExplicitStart(now time.Time, toolID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.explicitDepth++
	g.lastEventAt = now
	g.lastToolID = toolID
	g.haveLast = true
}

// ObserveExplicitEnd records an explicit EndGroup boundary.
func (g *Grouper) ObserveExplicitEnd(now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.explicitDepth > 0 {
		g.explicitDepth--
	}
	g.lastEventAt = now
}

// Observe reports whether a non-grouping event arriving at now from toolID
// should open a new implicit group before being recorded, and why. Inside
// an explicit group (explicitDepth > 0), no implicit boundary is ever
// opened — explicit pairs take precedence over idle/tool-switch detection.
func (g *Grouper) Observe(now time.Time, toolID string) (bool, BoundaryReason) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var boundary bool
	var reason BoundaryReason
	if g.explicitDepth == 0 {
		switch {
		case !g.haveLast:
			boundary, reason = true, BoundaryIdle
		case toolID != "" && toolID != g.lastToolID:
			boundary, reason = true, BoundaryToolSwitch
		case now.Sub(g.lastEventAt) > g.idleThreshold:
			boundary, reason = true, BoundaryIdle
		}
	}
	g.haveLast = true
	g.lastEventAt = now
	g.lastToolID = toolID
	return boundary, reason
}

// ForceBoundary unconditionally resets idle/tool-switch tracking so the
// very next event opens a fresh implicit group, regardless of elapsed time
// or tool (spec.md §4.7 forceBoundary(reason)).
func (g *Grouper) ForceBoundary() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.haveLast = false
}
