package ot

import (
	"testing"

	"wiretuner/engine/internal/geometry"
)

func TestTransformInsertInsertTieBreak(t *testing.T) {
	a := Operation{ID: "a", UserID: "alice", Kind: KindInsert, InsertIndex: 3}
	b := Operation{ID: "b", UserID: "bob", Kind: KindInsert, InsertIndex: 3}

	got := Transform(a, b)
	if got.InsertIndex != 3 {
		t.Fatalf("expected alice's insert to keep index 3, got %d", got.InsertIndex)
	}

	got = Transform(b, a)
	if got.InsertIndex != 4 {
		t.Fatalf("expected bob's insert to shift to index 4, got %d", got.InsertIndex)
	}
}

func TestTransformInsertDeleteUnrelatedUnchanged(t *testing.T) {
	a := Operation{Kind: KindInsert, InsertIndex: 2}
	b := Operation{Kind: KindDelete, ObjectID: "obj-1"}

	got := Transform(a, b)
	if got != a {
		t.Fatalf("expected a unchanged, got %+v", got)
	}
}

func TestTransformDeleteDeleteSameObjectIsNoOp(t *testing.T) {
	a := Operation{Kind: KindDelete, ObjectID: "obj-1"}
	b := Operation{Kind: KindDelete, ObjectID: "obj-1"}

	got := Transform(a, b)
	if got.Kind != KindNoOp {
		t.Fatalf("expected NoOp, got %+v", got)
	}
}

func TestTransformMoveDeleteSameObjectIsNoOp(t *testing.T) {
	a := Operation{Kind: KindMove, ObjectID: "obj-1", Delta: geometry.Point{X: 1, Y: 1}}
	b := Operation{Kind: KindDelete, ObjectID: "obj-1"}

	got := Transform(a, b)
	if got.Kind != KindNoOp {
		t.Fatalf("expected NoOp, got %+v", got)
	}
}

func TestTransformMoveMoveComposes(t *testing.T) {
	a := Operation{Kind: KindMove, ObjectID: "obj-1", Delta: geometry.Point{X: 1, Y: 0}}
	b := Operation{Kind: KindMove, ObjectID: "obj-1", Delta: geometry.Point{X: 0, Y: 1}}

	got := Transform(a, b)
	if got.Kind != KindMove || got.Delta != a.Delta {
		t.Fatalf("expected a's move delta unchanged (server order composes), got %+v", got)
	}
}

func TestTransformModifyModifyLastWriteWins(t *testing.T) {
	a := Operation{Kind: KindModify, ObjectID: "obj-1", PropertyPath: "fill.color", Timestamp: 100, UserID: "alice"}
	b := Operation{Kind: KindModify, ObjectID: "obj-1", PropertyPath: "fill.color", Timestamp: 200, UserID: "bob"}

	got := Transform(a, b)
	if got.Kind != KindNoOp {
		t.Fatalf("expected older modify to lose to newer timestamp, got %+v", got)
	}

	got = Transform(b, a)
	if got.Kind != KindModify {
		t.Fatalf("expected newer modify to survive, got %+v", got)
	}
}

func TestTransformModifyModifyTiesBreakByUserID(t *testing.T) {
	a := Operation{Kind: KindModify, ObjectID: "obj-1", PropertyPath: "fill.color", Timestamp: 100, UserID: "alice"}
	b := Operation{Kind: KindModify, ObjectID: "obj-1", PropertyPath: "fill.color", Timestamp: 100, UserID: "bob"}

	got := Transform(a, b)
	if got.Kind != KindModify {
		t.Fatalf("expected alice (lexicographically first) to win the tie, got %+v", got)
	}
	got = Transform(b, a)
	if got.Kind != KindNoOp {
		t.Fatalf("expected bob to lose the tie, got %+v", got)
	}
}

func TestTransformModifyAnchorDeleteSameObjectIsNoOp(t *testing.T) {
	a := Operation{Kind: KindModifyAnchor, ObjectID: "obj-1", AnchorIndex: 2}
	b := Operation{Kind: KindDelete, ObjectID: "obj-1"}

	got := Transform(a, b)
	if got.Kind != KindNoOp {
		t.Fatalf("expected NoOp, got %+v", got)
	}
}

// TestTransformConvergence is a property-style check of TP1 (spec.md
// §4.11): transforming each operation against the other and applying the
// transformed pair (conceptually, compose(transform(A,B), B)) must be
// symmetric in which operation "wins" regardless of arrival order, for the
// deterministic rules this package implements (LWW and delete-dominance are
// both order-independent by construction).
func TestTransformConvergence(t *testing.T) {
	a := Operation{Kind: KindModify, ObjectID: "obj-1", PropertyPath: "x", Timestamp: 50, UserID: "alice"}
	b := Operation{Kind: KindModify, ObjectID: "obj-1", PropertyPath: "x", Timestamp: 50, UserID: "bob"}

	abWins := Transform(a, b).Kind == KindModify
	baWins := Transform(b, a).Kind == KindModify
	if abWins == baWins {
		t.Fatalf("expected exactly one of a, b to survive the tie in both directions, got a-wins=%v b-wins=%v", abWins, baWins)
	}
}
