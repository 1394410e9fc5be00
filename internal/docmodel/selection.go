package docmodel

import (
	"sort"

	"wiretuner/engine/internal/ids"
)

// Selection tracks the selected objects and, per selected object, the set of
// selected anchor indices.
type Selection struct {
	ObjectIDs     map[ids.ObjectID]struct{}         `json:"objectIds"`
	AnchorIndices map[ids.ObjectID]map[int]struct{} `json:"anchorIndices"`
}

// NewSelection returns an empty selection.
func NewSelection() Selection {
	return Selection{
		ObjectIDs:     make(map[ids.ObjectID]struct{}),
		AnchorIndices: make(map[ids.ObjectID]map[int]struct{}),
	}
}

// Clone returns a deep copy of the selection.
func (s Selection) Clone() Selection {
	cloned := NewSelection()
	for id := range s.ObjectIDs {
		cloned.ObjectIDs[id] = struct{}{}
	}
	for id, set := range s.AnchorIndices {
		copied := make(map[int]struct{}, len(set))
		for idx := range set {
			copied[idx] = struct{}{}
		}
		cloned.AnchorIndices[id] = copied
	}
	return cloned
}

// ObjectIDList returns the selected object ids in a stable, deterministic
// order (caller must not rely on insertion order since the backing type is
// a map).
func (s Selection) ObjectIDList() []ids.ObjectID {
	out := make([]ids.ObjectID, 0, len(s.ObjectIDs))
	for id := range s.ObjectIDs {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Contains reports whether id is selected.
func (s Selection) Contains(id ids.ObjectID) bool {
	_, ok := s.ObjectIDs[id]
	return ok
}

// SelectionMode controls how SelectObjects combines with the existing
// selection.
type SelectionMode string

const (
	SelectReplace SelectionMode = "replace"
	SelectAdd     SelectionMode = "add"
	SelectToggle  SelectionMode = "toggle"
)

// Apply returns a new Selection reflecting objectIDs applied under mode.
func (s Selection) Apply(mode SelectionMode, objectIDs []ids.ObjectID) Selection {
	switch mode {
	case SelectReplace:
		next := NewSelection()
		for _, id := range objectIDs {
			next.ObjectIDs[id] = struct{}{}
		}
		return next
	case SelectAdd:
		next := s.Clone()
		for _, id := range objectIDs {
			next.ObjectIDs[id] = struct{}{}
		}
		return next
	case SelectToggle:
		next := s.Clone()
		for _, id := range objectIDs {
			if _, ok := next.ObjectIDs[id]; ok {
				delete(next.ObjectIDs, id)
				delete(next.AnchorIndices, id)
			} else {
				next.ObjectIDs[id] = struct{}{}
			}
		}
		return next
	default:
		return s
	}
}

// WithAnchorSelection returns a copy of s with the anchor index set for id
// replaced.
func (s Selection) WithAnchorSelection(id ids.ObjectID, indices []int) Selection {
	next := s.Clone()
	set := make(map[int]struct{}, len(indices))
	for _, idx := range indices {
		set[idx] = struct{}{}
	}
	next.AnchorIndices[id] = set
	return next
}

// Clear returns the empty selection.
func (s Selection) Clear() Selection {
	return NewSelection()
}
