package docmodel

import "wiretuner/engine/internal/geometry"

const (
	// MinZoom and MaxZoom bound the Viewport.Zoom invariant from spec.md §3.
	MinZoom = 0.05
	MaxZoom = 8.0
)

// Viewport is the per-artboard pan/zoom/canvas state.
type Viewport struct {
	Pan        geometry.Point `json:"pan"`
	Zoom       float64        `json:"zoom"`
	CanvasSize geometry.Point `json:"canvasSize"`
}

// DefaultViewport returns a centered, unzoomed viewport.
func DefaultViewport() Viewport {
	return Viewport{Zoom: 1}
}

// ClampZoom returns z clamped into [MinZoom, MaxZoom].
func ClampZoom(z float64) float64 {
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}
