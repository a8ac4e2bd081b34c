// Package render draws a board onto a Surface. Element outlines come from
// a Generator and are cached per element until the scene invalidates them.
package render

// Surface is a 2D drawing context with a save/restore transform stack.
type Surface interface {
	Size() (width, height int)
	// Reset clears the surface and its transform stack.
	Reset()
	FillRect(x, y, w, h float64, color string)
	StrokeRect(x, y, w, h float64, color string, lineWidth float64)
	FillCircle(x, y, r float64, color string)
	Save()
	Restore()
	Translate(x, y float64)
	Rotate(radians float64)
	Scale(sx, sy float64)
	// Draw paints one generated primitive in the current transform.
	Draw(d Drawable)
}

// Resizable is implemented by surfaces whose backing store can change size.
type Resizable interface {
	Resize(width, height int) error
}

// Drawable is a single stroked and/or filled path.
type Drawable struct {
	Path        Path      `json:"path"`
	Fill        string    `json:"fill,omitempty"`
	Stroke      string    `json:"stroke,omitempty"`
	StrokeWidth float64   `json:"strokeWidth,omitempty"`
	Dash        []float64 `json:"dash,omitempty"`
	Opacity     float64   `json:"opacity"` // 0-1
}

// Shape is what a Generator produces for one element.
type Shape []Drawable
