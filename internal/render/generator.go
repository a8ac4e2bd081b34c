package render

import "github.com/nineyards/whiteboard/backend-go/internal/document"

// Options is the style bag handed to a Generator.
type Options struct {
	Stroke       string
	StrokeWidth  float64
	Dash         []float64
	SingleStroke bool
	Fill         string
	FillStyle    document.FillStyle
	FillWeight   float64
	HachureGap   float64
	Seed         int64
	Roughness    float64
	Opacity      float64 // 0-1
}

// Generator turns geometric primitives into hand-drawn looking shapes.
// Results for the same seed and input must be identical.
type Generator interface {
	Rectangle(x, y, w, h float64, o Options) Shape
	Ellipse(cx, cy, w, h float64, o Options) Shape
	Path(p Path, o Options) Shape
}
