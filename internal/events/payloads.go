package events

import (
	"wiretuner/engine/internal/docmodel"
	"wiretuner/engine/internal/geometry"
	"wiretuner/engine/internal/ids"
)

// CreatePathPayload starts a new, empty path object.
type CreatePathPayload struct {
	PathID ids.ObjectID   `json:"pathId"`
	LayerID ids.LayerID   `json:"layerId"`
	Start  geometry.Point `json:"start"`
}

// AddAnchorPayload appends an anchor to an existing path.
type AddAnchorPayload struct {
	PathID    ids.ObjectID        `json:"pathId"`
	Position  geometry.Point      `json:"position"`
	AnchorType geometry.AnchorKind `json:"anchorType"`
	HandleIn  *geometry.Point     `json:"handleIn,omitempty"`
	HandleOut *geometry.Point     `json:"handleOut,omitempty"`
}

// MoveAnchorPayload relocates an existing anchor.
type MoveAnchorPayload struct {
	PathID      ids.ObjectID   `json:"pathId"`
	AnchorIndex int            `json:"anchorIndex"`
	Position    geometry.Point `json:"position"`
}

// DeleteAnchorPayload removes an anchor from a path.
type DeleteAnchorPayload struct {
	PathID      ids.ObjectID `json:"pathId"`
	AnchorIndex int          `json:"anchorIndex"`
}

// UpdateHandlePayload updates one tangent handle of an anchor.
type UpdateHandlePayload struct {
	PathID      ids.ObjectID    `json:"pathId"`
	AnchorIndex int             `json:"anchorIndex"`
	Which       HandleSide      `json:"which"`
	Handle      *geometry.Point `json:"handle,omitempty"`
}

// HandleSide selects which tangent handle an UpdateHandle event targets.
type HandleSide string

const (
	HandleIn  HandleSide = "in"
	HandleOut HandleSide = "out"
)

// FinishPathPayload closes path authoring.
type FinishPathPayload struct {
	PathID ids.ObjectID `json:"pathId"`
	Closed bool         `json:"closed"`
}

// CreateShapePayload creates a parametric shape object.
type CreateShapePayload struct {
	ShapeID ids.ObjectID    `json:"shapeId"`
	LayerID ids.LayerID     `json:"layerId"`
	Shape   geometry.Shape  `json:"shape"`
}

// UpdateShapeParametersPayload mutates a shape's parameters in place.
type UpdateShapeParametersPayload struct {
	ShapeID    ids.ObjectID            `json:"shapeId"`
	Parameters geometry.ShapeParameters `json:"parameters"`
}

// DeleteObjectPayload removes an object (path or shape) from its layer.
type DeleteObjectPayload struct {
	ObjectID ids.ObjectID `json:"objectId"`
}

// MoveObjectPayload translates an object by a delta.
type MoveObjectPayload struct {
	ObjectID ids.ObjectID   `json:"objectId"`
	Delta    geometry.Point `json:"delta"`
}

// RotateObjectPayload rotates an object about its center by degrees.
type RotateObjectPayload struct {
	ObjectID  ids.ObjectID `json:"objectId"`
	DeltaDeg  float64      `json:"deltaDeg"`
}

// ScaleObjectPayload scales an object about its center.
type ScaleObjectPayload struct {
	ObjectID ids.ObjectID `json:"objectId"`
	ScaleX   float64      `json:"scaleX"`
	ScaleY   float64      `json:"scaleY"`
}

// SelectObjectsPayload replaces, adds to, or toggles the current selection.
type SelectObjectsPayload struct {
	ArtboardID ids.ArtboardID         `json:"artboardId"`
	ObjectIDs  []ids.ObjectID         `json:"objectIds"`
	Mode       docmodel.SelectionMode `json:"mode"`
}

// ClearSelectionPayload empties the artboard selection.
type ClearSelectionPayload struct {
	ArtboardID ids.ArtboardID `json:"artboardId"`
}

// SelectAnchorsPayload selects anchor indices on a single object.
type SelectAnchorsPayload struct {
	ObjectID      ids.ObjectID `json:"objectId"`
	AnchorIndices []int        `json:"anchorIndices"`
}

// CreateLayerPayload adds a new, empty layer to an artboard.
type CreateLayerPayload struct {
	ArtboardID ids.ArtboardID `json:"artboardId"`
	LayerID    ids.LayerID    `json:"layerId"`
	Name       string         `json:"name"`
}

// ReorderLayersPayload reorders an artboard's layer stack.
type ReorderLayersPayload struct {
	ArtboardID ids.ArtboardID `json:"artboardId"`
	Order      []ids.LayerID  `json:"order"`
}

// SetLayerPropertiesPayload updates a layer's name/visibility/lock state.
type SetLayerPropertiesPayload struct {
	LayerID ids.LayerID `json:"layerId"`
	Name    *string     `json:"name,omitempty"`
	Visible *bool       `json:"visible,omitempty"`
	Locked  *bool       `json:"locked,omitempty"`
}

// CreateArtboardPayload adds a new artboard to the document.
type CreateArtboardPayload struct {
	ArtboardID ids.ArtboardID     `json:"artboardId"`
	Name       string             `json:"name"`
	Bounds     geometry.Rectangle `json:"bounds"`
}

// UpdateArtboardBoundsPayload resizes/repositions an artboard.
type UpdateArtboardBoundsPayload struct {
	ArtboardID ids.ArtboardID     `json:"artboardId"`
	Bounds     geometry.Rectangle `json:"bounds"`
}

// StartGroupPayload opens an undo/redo operation group.
type StartGroupPayload struct {
	GroupID ids.GroupID `json:"groupId"`
	Label   string      `json:"label"`
	Reason  string      `json:"reason"`
}

// EndGroupPayload closes an undo/redo operation group.
type EndGroupPayload struct {
	GroupID ids.GroupID `json:"groupId"`
	Label   string      `json:"label"`
	Reason  string      `json:"reason"`
}
