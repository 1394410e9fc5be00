package ot

import "cmp"

// transformFunc rebases incoming operation a against already-applied
// operation b, both operating on the same pre-image.
type transformFunc func(a, b Operation) Operation

// pairKey indexes the transform table by (a.Kind, b.Kind), the same
// registry-over-switch shape the applier (§4.4) uses for event dispatch.
type pairKey struct {
	a Kind
	b Kind
}

var transforms = map[pairKey]transformFunc{
	{KindInsert, KindInsert}:       transformInsertInsert,
	{KindDelete, KindDelete}:       transformDeleteDelete,
	{KindMove, KindDelete}:         transformTargetedDelete,
	{KindModify, KindDelete}:       transformTargetedDelete,
	{KindModifyAnchor, KindDelete}: transformTargetedDelete,
	{KindMove, KindMove}:           transformMoveMove,
	{KindModify, KindModify}:       transformModifyModify,
}

// Transform rebases a against b, which the server has already applied to
// the shared pre-image. Pairs with no table entry (including every
// Insert-vs-unrelated-edit combination) return a unchanged, matching
// spec.md §4.11's "Insert | Delete of unrelated | A unchanged" default.
func Transform(a, b Operation) Operation {
	if fn, ok := transforms[pairKey{a.Kind, b.Kind}]; ok {
		return fn(a, b)
	}
	return a
}

// transformInsertInsert resolves two concurrent inserts at (conceptually)
// the same position with a stable (userId, id) tie-break: the
// lexicographically later operation's index shifts right by one.
func transformInsertInsert(a, b Operation) Operation {
	if a.InsertIndex < b.InsertIndex {
		return a
	}
	if a.InsertIndex > b.InsertIndex {
		a.InsertIndex++
		return a
	}
	if insertWins(a, b) {
		return a
	}
	a.InsertIndex++
	return a
}

// insertWins reports whether a's (userId, id) pair sorts before b's,
// meaning a keeps its original index when both target the same position.
func insertWins(a, b Operation) bool {
	if c := cmp.Compare(a.UserID, b.UserID); c != 0 {
		return c < 0
	}
	return cmp.Compare(a.ID, b.ID) < 0
}

// transformDeleteDelete: deleting an object someone else already deleted is
// a no-op (spec.md §4.11: "Delete(X) | Delete(X) | A -> NoOp").
func transformDeleteDelete(a, b Operation) Operation {
	if a.ObjectID == b.ObjectID {
		return a.asNoOp()
	}
	return a
}

// transformTargetedDelete handles Move/Modify/ModifyAnchor rebased against a
// Delete of the same object: the edit no longer has a target, so it becomes
// a no-op. Edits targeting a different object are unaffected.
func transformTargetedDelete(a, b Operation) Operation {
	if a.ObjectID == b.ObjectID {
		return a.asNoOp()
	}
	return a
}

// transformMoveMove: concurrent moves of the same object compose by server
// order — b was already applied, so a's delta is rebased onto the
// post-move state and applied as-is (spec.md §4.11: "A -> Move(X, Δa)
// (server order wins; Δ composes)"). Moves of different objects don't
// interact.
func transformMoveMove(a, b Operation) Operation {
	return a
}

// transformModifyModify: concurrent modifications of the same property use
// last-write-wins by timestamp, tie-broken by userId (spec.md §4.11).
// Modifications to different properties, or different objects, don't
// interact and a passes through unchanged.
func transformModifyModify(a, b Operation) Operation {
	if a.ObjectID != b.ObjectID || a.PropertyPath != b.PropertyPath {
		return a
	}
	if a.Timestamp > b.Timestamp {
		return a
	}
	if a.Timestamp < b.Timestamp {
		return a.asNoOp()
	}
	if cmp.Compare(a.UserID, b.UserID) <= 0 {
		return a
	}
	return a.asNoOp()
}
