package docmodel

import "wiretuner/engine/internal/geometry"

// Transform is an optional affine adjustment carried by a VectorObject on
// top of its raw geometry: points are scaled, then rotated about the local
// origin, then translated.
type Transform struct {
	Translate geometry.Point `json:"translate"`
	RotateDeg float64        `json:"rotateDeg"`
	ScaleX    float64        `json:"scaleX"`
	ScaleY    float64        `json:"scaleY"`
}

// IdentityTransform returns the transform that leaves geometry unchanged.
func IdentityTransform() Transform {
	return Transform{ScaleX: 1, ScaleY: 1}
}

// IsIdentity reports whether t has no effect on geometry.
func (t Transform) IsIdentity() bool {
	return t.Translate == (geometry.Point{}) && t.RotateDeg == 0 && t.ScaleX == 1 && t.ScaleY == 1
}
