package render

import (
	"github.com/nineyards/whiteboard/backend-go/internal/document"
	"github.com/nineyards/whiteboard/backend-go/internal/geometry"
)

const (
	SelectionColor = "#d2a8ff"
	MarqueeColor   = "#d2a8ffaa"
)

// Region is a marquee drag in scene coordinates.
type Region struct {
	Start document.Point
	End   document.Point
}

// Overlay is the interaction state drawn above the elements.
type Overlay struct {
	Selected []*document.Element
	Bounds   *document.Bounds
	Marquee  *Region
}

// Frame is everything needed to draw one frame.
type Frame struct {
	Elements   []*document.Element
	Viewport   document.Viewport
	Background string
	Overlay    Overlay
}

// Renderer draws frames onto a Surface, reusing cached shapes.
type Renderer struct {
	surface Surface
	gen     Generator
	cache   *ShapeCache
}

func NewRenderer(surface Surface, gen Generator) *Renderer {
	return &Renderer{
		surface: surface,
		gen:     gen,
		cache:   NewShapeCache(),
	}
}

func (r *Renderer) Surface() Surface   { return r.surface }
func (r *Renderer) Cache() *ShapeCache { return r.cache }

// Render draws f in painter's order followed by the overlay.
func (r *Renderer) Render(f Frame) {
	s := r.surface
	s.Reset()

	w, h := s.Size()
	s.FillRect(0, 0, float64(w), float64(h), f.Background)

	s.Save()
	s.Scale(f.Viewport.Zoom, f.Viewport.Zoom)

	for _, el := range f.Elements {
		r.drawElement(el, f.Viewport)
	}

	r.drawSelection(f.Overlay, f.Viewport)
	r.drawMarquee(f.Overlay.Marquee, f.Viewport)

	s.Restore()
}

func (r *Renderer) drawElement(el *document.Element, vp document.Viewport) {
	shape := r.cache.Shape(el, r.gen)
	if shape == nil {
		return
	}

	r.surface.Save()
	r.place(el.Box(), vp)
	for _, d := range shape {
		r.surface.Draw(d)
	}
	r.surface.Restore()
}

// place moves the origin to the top-left corner of b, rotated about its
// center.
func (r *Renderer) place(b document.Bounds, vp document.Viewport) {
	c := b.Center()
	r.surface.Translate(c.X+vp.ScrollX, c.Y+vp.ScrollY)
	r.surface.Rotate(b.Rotation)
	r.surface.Translate(-b.Width/2, -b.Height/2)
}

func (r *Renderer) drawSelection(o Overlay, vp document.Viewport) {
	if len(o.Selected) == 0 || o.Bounds == nil {
		return
	}
	s := r.surface

	for _, el := range o.Selected {
		s.Save()
		r.place(el.Box(), vp)
		s.StrokeRect(0, 0, el.Width, el.Height, SelectionColor, 1)
		s.Restore()
	}

	b := *o.Bounds
	s.Save()
	r.place(b, vp)
	s.StrokeRect(0, 0, b.Width, b.Height, SelectionColor, 1)

	s.FillCircle(0, 0, geometry.HandleRadius, SelectionColor)
	s.FillCircle(b.Width, 0, geometry.HandleRadius, SelectionColor)
	s.FillCircle(0, b.Height, geometry.HandleRadius, SelectionColor)
	s.FillCircle(b.Width, b.Height, geometry.HandleRadius, SelectionColor)
	s.FillCircle(b.Width/2, -geometry.RotationOffset, geometry.HandleRadius, SelectionColor)
	s.Restore()
}

func (r *Renderer) drawMarquee(m *Region, vp document.Viewport) {
	if m == nil {
		return
	}
	r.surface.FillRect(
		m.Start.X+vp.ScrollX,
		m.Start.Y+vp.ScrollY,
		m.End.X-m.Start.X,
		m.End.Y-m.Start.Y,
		MarqueeColor,
	)
}
