package docmodel

import "wiretuner/engine/internal/ids"

// Layer holds an ordered sequence of VectorObjects. Rendering order follows
// insertion order: index 0 is the bottom of the stack.
type Layer struct {
	ID      ids.LayerID    `json:"id"`
	Name    string         `json:"name"`
	Visible bool           `json:"visible"`
	Locked  bool           `json:"locked"`
	Objects []VectorObject `json:"objects"`
}

// NewLayer constructs an empty, visible, unlocked layer.
func NewLayer(id ids.LayerID, name string) Layer {
	return Layer{ID: id, Name: name, Visible: true, Objects: nil}
}

// Clone returns a deep copy of the layer.
func (l Layer) Clone() Layer {
	cloned := l
	if l.Objects != nil {
		cloned.Objects = make([]VectorObject, len(l.Objects))
		for i, o := range l.Objects {
			cloned.Objects[i] = o.Clone()
		}
	}
	return cloned
}

// IndexOf returns the index of the object with the given id, or -1.
func (l Layer) IndexOf(id ids.ObjectID) int {
	for i, o := range l.Objects {
		if o.ID == id {
			return i
		}
	}
	return -1
}

// WithObject returns a copy of the layer with the object at id replaced by
// the result of fn. Every other object is carried over as a deep copy of
// the original, unchanged in value.
func (l Layer) WithObject(id ids.ObjectID, fn func(VectorObject) VectorObject) Layer {
	idx := l.IndexOf(id)
	if idx < 0 {
		return l
	}
	cloned := l.Clone()
	cloned.Objects[idx] = fn(cloned.Objects[idx])
	return cloned
}

// WithAppendedObject returns a copy of the layer with obj appended.
func (l Layer) WithAppendedObject(obj VectorObject) Layer {
	cloned := l.Clone()
	cloned.Objects = append(cloned.Objects, obj)
	return cloned
}

// WithoutObject returns a copy of the layer with the object at id removed.
func (l Layer) WithoutObject(id ids.ObjectID) Layer {
	idx := l.IndexOf(id)
	if idx < 0 {
		return l
	}
	cloned := l.Clone()
	cloned.Objects = append(cloned.Objects[:idx], cloned.Objects[idx+1:]...)
	return cloned
}
