package document

import "math"

const (
	ZoomStep = 0.1
	MinZoom  = 0.1
	MaxZoom  = 30.0
)

// Viewport is the visible window onto the board.
type Viewport struct {
	ScrollX float64 `json:"scrollX"`
	ScrollY float64 `json:"scrollY"`
	Zoom    float64 `json:"zoom"`
}

func DefaultViewport() Viewport {
	return Viewport{ScrollX: 0, ScrollY: 0, Zoom: 2}
}

// ClampZoom limits z to [MinZoom, MaxZoom].
func ClampZoom(z float64) float64 {
	if math.IsNaN(z) {
		return MinZoom
	}
	return math.Max(MinZoom, math.Min(z, MaxZoom))
}

// Clamped returns v with its zoom clamped.
func (v Viewport) Clamped() Viewport {
	v.Zoom = ClampZoom(v.Zoom)
	return v
}

// ToScene converts a client (screen) position into scene coordinates.
func (v Viewport) ToScene(clientX, clientY float64) Point {
	return Point{
		X: clientX/v.Zoom - v.ScrollX,
		Y: clientY/v.Zoom - v.ScrollY,
	}
}
