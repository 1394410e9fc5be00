// Package ot implements the operational-transform rules of spec.md §4.11:
// a pure function that rebases one client operation against another
// already-applied operation on the same pre-image, so two concurrent edits
// converge to the same state regardless of application order. Grounded on
// the applier's (§4.4) registry-over-switch dispatch shape, itself grounded
// on the teacher's per-PatchKind switch in internal/sim/patches/apply.go.
package ot

import (
	"wiretuner/engine/internal/geometry"
	"wiretuner/engine/internal/ids"
)

// Kind identifies which edit an Operation represents.
type Kind string

const (
	KindInsert       Kind = "insert"
	KindDelete       Kind = "delete"
	KindMove         Kind = "move"
	KindModify       Kind = "modify"
	KindModifyAnchor Kind = "modifyAnchor"
	// KindNoOp is never submitted by a client; Transform produces it when an
	// operation is superseded by one already applied (spec.md §4.11: "A →
	// NoOp").
	KindNoOp Kind = "noop"
)

// Operation is a single collaboration edit, carrying the envelope fields
// spec.md §4.11 requires for ordering and tie-breaking.
type Operation struct {
	ID             string
	UserID         string
	SessionID      string
	LocalSequence  int64
	ServerSequence int64
	Timestamp      int64
	Kind           Kind

	// ObjectID is the target object for Delete, Move, Modify, and
	// ModifyAnchor. Insert has no target (it creates one).
	ObjectID ids.ObjectID

	// InsertIndex positions a KindInsert among siblings.
	InsertIndex int

	// Delta is the translation applied by a KindMove.
	Delta geometry.Point

	// PropertyPath and Value describe a KindModify's edit (e.g.
	// "fill.color" -> "#ff0000"). Value is compared only for logging; LWW
	// resolution never inspects it.
	PropertyPath string
	Value        any

	// AnchorIndex identifies the anchor a KindModifyAnchor edits.
	AnchorIndex int
}

// asNoOp returns a's fields with Kind forced to KindNoOp, used when b
// supersedes a entirely (spec.md §4.11's several "A → NoOp" rules).
func (a Operation) asNoOp() Operation {
	a.Kind = KindNoOp
	return a
}
