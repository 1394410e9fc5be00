package docmodel

import (
	"wiretuner/engine/internal/geometry"
	"wiretuner/engine/internal/ids"
)

// CurrentSchemaVersion is the engine's currently supported schema version.
// A loaded document with a higher version fails with VersionMismatch; a
// lower version is migrated upward before reads (spec.md §3 invariant 6,
// §4.9).
const CurrentSchemaVersion = 1

// Document is the root of the artboard/layer/object tree.
type Document struct {
	ID            ids.DocumentID `json:"id"`
	Title         string         `json:"title"`
	SchemaVersion int            `json:"schemaVersion"`
	Artboards     []Artboard     `json:"artboards"`
}

// New constructs an empty document at the current schema version.
func New(id ids.DocumentID, title string) Document {
	return Document{ID: id, Title: title, SchemaVersion: CurrentSchemaVersion}
}

// NewWithDefaultArtboard constructs a document pre-seeded with a single
// empty artboard and layer, the product convention used when a user
// creates a brand-new document (an editor always shows one canvas, even
// though the document itself is created "empty" per spec.md §3 Lifecycle).
func NewWithDefaultArtboard(id ids.DocumentID, title string, artboardID ids.ArtboardID, layerID ids.LayerID, bounds geometry.Rectangle) Document {
	doc := New(id, title)
	artboard := NewArtboard(artboardID, "Artboard 1", bounds)
	artboard = artboard.WithAppendedLayer(NewLayer(layerID, "Layer 1"))
	return doc.WithAppendedArtboard(artboard)
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	cloned := d
	if d.Artboards != nil {
		cloned.Artboards = make([]Artboard, len(d.Artboards))
		for i, a := range d.Artboards {
			cloned.Artboards[i] = a.Clone()
		}
	}
	return cloned
}

// IndexOfArtboard returns the index of the artboard with the given id, or -1.
func (d Document) IndexOfArtboard(id ids.ArtboardID) int {
	for i, a := range d.Artboards {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// FindObject locates an object anywhere in the document tree.
func (d Document) FindObject(id ids.ObjectID) (artboardIdx, layerIdx, objectIdx int, ok bool) {
	for ai, a := range d.Artboards {
		if li, oi, found := a.FindObject(id); found {
			return ai, li, oi, true
		}
	}
	return -1, -1, -1, false
}

// ArtboardOfLayer returns the index of the artboard owning the layer with
// the given id, or -1.
func (d Document) ArtboardOfLayer(id ids.LayerID) int {
	for ai, a := range d.Artboards {
		if a.IndexOfLayer(id) >= 0 {
			return ai
		}
	}
	return -1
}

// Object returns the object with the given id, if present.
func (d Document) Object(id ids.ObjectID) (VectorObject, bool) {
	ai, li, oi, ok := d.FindObject(id)
	if !ok {
		return VectorObject{}, false
	}
	return d.Artboards[ai].Layers[li].Objects[oi], true
}

// WithArtboard returns a copy of the document with the artboard at id
// replaced by the result of fn. The whole document is deep-copied first
// (every artboard, layer and object, through Clone), so the returned
// document never aliases mutable state with the original.
func (d Document) WithArtboard(id ids.ArtboardID, fn func(Artboard) Artboard) Document {
	idx := d.IndexOfArtboard(id)
	if idx < 0 {
		return d
	}
	cloned := d.Clone()
	cloned.Artboards[idx] = fn(cloned.Artboards[idx])
	return cloned
}

// WithAppendedArtboard returns a copy of the document with artboard appended.
func (d Document) WithAppendedArtboard(a Artboard) Document {
	cloned := d.Clone()
	cloned.Artboards = append(cloned.Artboards, a)
	return cloned
}

// UniqueObjectIDs reports whether every object id in the document is unique
// (spec.md §3 invariant 4).
func (d Document) UniqueObjectIDs() bool {
	seen := make(map[ids.ObjectID]struct{})
	for _, a := range d.Artboards {
		for _, l := range a.Layers {
			for _, o := range l.Objects {
				if _, dup := seen[o.ID]; dup {
					return false
				}
				seen[o.ID] = struct{}{}
			}
		}
	}
	return true
}
