package docmodel

import (
	"wiretuner/engine/internal/geometry"
	"wiretuner/engine/internal/ids"
)

// ObjectKind tags which variant a VectorObject carries.
type ObjectKind string

const (
	ObjectKindPath  ObjectKind = "path"
	ObjectKindShape ObjectKind = "shape"
)

// VectorObject is a tagged variant over a Path or a Shape, following the
// same discriminator-plus-pointer-field shape used for events (§4.1):
// exactly one of Path or Shape is non-nil, selected by Kind.
type VectorObject struct {
	ID        ids.ObjectID    `json:"id"`
	Kind      ObjectKind      `json:"kind"`
	Path      *geometry.Path  `json:"path,omitempty"`
	Shape     *geometry.Shape `json:"shape,omitempty"`
	Transform Transform       `json:"transform"`
}

// NewPathObject constructs a VectorObject carrying a Path.
func NewPathObject(id ids.ObjectID, path geometry.Path) VectorObject {
	p := path
	return VectorObject{ID: id, Kind: ObjectKindPath, Path: &p, Transform: IdentityTransform()}
}

// NewShapeObject constructs a VectorObject carrying a Shape.
func NewShapeObject(id ids.ObjectID, shape geometry.Shape) VectorObject {
	s := shape
	return VectorObject{ID: id, Kind: ObjectKindShape, Shape: &s, Transform: IdentityTransform()}
}

// Clone returns a deep copy of the object.
func (o VectorObject) Clone() VectorObject {
	cloned := o
	if o.Path != nil {
		p := o.Path.Clone()
		cloned.Path = &p
	}
	if o.Shape != nil {
		s := o.Shape.Clone()
		cloned.Shape = &s
	}
	return cloned
}

// ResolvedPath returns the object's geometry expressed as a Path, converting
// a Shape deterministically when necessary.
func (o VectorObject) ResolvedPath() geometry.Path {
	switch o.Kind {
	case ObjectKindPath:
		if o.Path != nil {
			return o.Path.Clone()
		}
	case ObjectKindShape:
		if o.Shape != nil {
			return o.Shape.ToPath()
		}
	}
	return geometry.Path{}
}

// Bounds returns the object's world-space bounding rectangle, after applying
// its Transform's translation (rotation/scale bounds inflation is left to
// the hit-test index, which works in flattened point space).
func (o VectorObject) Bounds() geometry.Rectangle {
	b := o.ResolvedPath().Bounds()
	b.X += o.Transform.Translate.X
	b.Y += o.Transform.Translate.Y
	return b
}

// WithTransform returns a copy of o with its Transform replaced.
func (o VectorObject) WithTransform(t Transform) VectorObject {
	cloned := o.Clone()
	cloned.Transform = t
	return cloned
}

// WithPath returns a copy of o with Path replaced and Kind forced to path.
func (o VectorObject) WithPath(path geometry.Path) VectorObject {
	cloned := o.Clone()
	cloned.Kind = ObjectKindPath
	p := path
	cloned.Path = &p
	cloned.Shape = nil
	return cloned
}
