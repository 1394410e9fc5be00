package docmodel

import (
	"wiretuner/engine/internal/geometry"
	"wiretuner/engine/internal/ids"
)

// Artboard is a named canvas within a Document, owning an ordered sequence
// of layers plus per-artboard selection and viewport state.
type Artboard struct {
	ID              ids.ArtboardID     `json:"id"`
	Name            string             `json:"name"`
	Bounds          geometry.Rectangle `json:"bounds"`
	BackgroundColor string             `json:"backgroundColor"`
	Layers          []Layer            `json:"layers"`
	Selection       Selection          `json:"selection"`
	Viewport        Viewport           `json:"viewport"`
}

// NewArtboard constructs an empty artboard with a default viewport and
// selection.
func NewArtboard(id ids.ArtboardID, name string, bounds geometry.Rectangle) Artboard {
	return Artboard{
		ID:        id,
		Name:      name,
		Bounds:    bounds,
		Layers:    nil,
		Selection: NewSelection(),
		Viewport:  DefaultViewport(),
	}
}

// Clone returns a deep copy of the artboard.
func (a Artboard) Clone() Artboard {
	cloned := a
	if a.Layers != nil {
		cloned.Layers = make([]Layer, len(a.Layers))
		for i, l := range a.Layers {
			cloned.Layers[i] = l.Clone()
		}
	}
	cloned.Selection = a.Selection.Clone()
	return cloned
}

// IndexOfLayer returns the index of the layer with the given id, or -1.
func (a Artboard) IndexOfLayer(id ids.LayerID) int {
	for i, l := range a.Layers {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// FindObject locates an object by id across all layers, returning the
// owning layer index, object index, and whether it was found.
func (a Artboard) FindObject(id ids.ObjectID) (layerIdx, objectIdx int, ok bool) {
	for li, l := range a.Layers {
		if oi := l.IndexOf(id); oi >= 0 {
			return li, oi, true
		}
	}
	return -1, -1, false
}

// WithLayer returns a copy of the artboard with the layer at id replaced by
// the result of fn.
func (a Artboard) WithLayer(id ids.LayerID, fn func(Layer) Layer) Artboard {
	idx := a.IndexOfLayer(id)
	if idx < 0 {
		return a
	}
	cloned := a.Clone()
	cloned.Layers[idx] = fn(cloned.Layers[idx])
	return cloned
}

// WithAppendedLayer returns a copy of the artboard with layer appended.
func (a Artboard) WithAppendedLayer(layer Layer) Artboard {
	cloned := a.Clone()
	cloned.Layers = append(cloned.Layers, layer)
	return cloned
}

// WithReorderedLayers returns a copy of the artboard with layers reordered
// to match the given id order. Ids not present in order are appended in
// their original relative order; unknown ids are ignored.
func (a Artboard) WithReorderedLayers(order []ids.LayerID) Artboard {
	cloned := a.Clone()
	byID := make(map[ids.LayerID]Layer, len(cloned.Layers))
	for _, l := range cloned.Layers {
		byID[l.ID] = l
	}
	seen := make(map[ids.LayerID]struct{}, len(order))
	next := make([]Layer, 0, len(cloned.Layers))
	for _, id := range order {
		if l, ok := byID[id]; ok {
			next = append(next, l)
			seen[id] = struct{}{}
		}
	}
	for _, l := range cloned.Layers {
		if _, ok := seen[l.ID]; !ok {
			next = append(next, l)
		}
	}
	cloned.Layers = next
	return cloned
}

// WithSelection returns a copy of the artboard with its selection replaced.
func (a Artboard) WithSelection(sel Selection) Artboard {
	cloned := a.Clone()
	cloned.Selection = sel
	return cloned
}

// WithBounds returns a copy of the artboard with its bounds replaced.
func (a Artboard) WithBounds(bounds geometry.Rectangle) Artboard {
	cloned := a.Clone()
	cloned.Bounds = bounds
	return cloned
}

// AllObjects returns every object across every layer, in rendering order.
func (a Artboard) AllObjects() []VectorObject {
	var out []VectorObject
	for _, l := range a.Layers {
		out = append(out, l.Objects...)
	}
	return out
}
