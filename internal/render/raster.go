package render

import (
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/gogpu/gg"
)

var ErrSurfaceSize = errors.New("surface size must be positive")

// RasterSurface draws into an in-memory RGBA image using gg.
type RasterSurface struct {
	ctx   *gg.Context
	depth int
	err   error
}

func NewRasterSurface(width, height int) (*RasterSurface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("raster surface %dx%d: %w", width, height, ErrSurfaceSize)
	}
	return &RasterSurface{ctx: gg.NewContext(width, height)}, nil
}

func (s *RasterSurface) Size() (int, int) {
	return s.ctx.Width(), s.ctx.Height()
}

func (s *RasterSurface) Reset() {
	for ; s.depth > 0; s.depth-- {
		s.ctx.Pop()
	}
	s.ctx.Identity()
	s.ctx.ClearPath()
	s.ctx.ClearDash()
	s.ctx.Clear()
	s.err = nil
}

func (s *RasterSurface) FillRect(x, y, w, h float64, color string) {
	s.ctx.DrawRectangle(x, y, w, h)
	s.ctx.SetColor(parseColor(color, 1).Color())
	s.check(s.ctx.Fill())
}

func (s *RasterSurface) StrokeRect(x, y, w, h float64, color string, lineWidth float64) {
	s.ctx.DrawRectangle(x, y, w, h)
	s.ctx.ClearDash()
	s.ctx.SetLineWidth(lineWidth)
	s.ctx.SetColor(parseColor(color, 1).Color())
	s.check(s.ctx.Stroke())
}

func (s *RasterSurface) FillCircle(x, y, r float64, color string) {
	s.ctx.DrawCircle(x, y, r)
	s.ctx.SetColor(parseColor(color, 1).Color())
	s.check(s.ctx.Fill())
}

func (s *RasterSurface) Save() {
	s.ctx.Push()
	s.depth++
}

func (s *RasterSurface) Restore() {
	if s.depth == 0 {
		return
	}
	s.ctx.Pop()
	s.depth--
}

func (s *RasterSurface) Translate(x, y float64) { s.ctx.Translate(x, y) }
func (s *RasterSurface) Rotate(radians float64) { s.ctx.Rotate(radians) }
func (s *RasterSurface) Scale(sx, sy float64)   { s.ctx.Scale(sx, sy) }

func (s *RasterSurface) Draw(d Drawable) {
	if len(d.Path) == 0 {
		return
	}

	if d.Fill != "" {
		s.tracePath(d.Path)
		s.ctx.SetColor(parseColor(d.Fill, d.Opacity).Color())
		s.check(s.ctx.Fill())
	}

	if d.Stroke != "" {
		s.tracePath(d.Path)
		if len(d.Dash) > 0 {
			s.ctx.SetDash(d.Dash...)
		} else {
			s.ctx.ClearDash()
		}
		s.ctx.SetLineWidth(d.StrokeWidth)
		s.ctx.SetColor(parseColor(d.Stroke, d.Opacity).Color())
		s.check(s.ctx.Stroke())
	}
}

func (s *RasterSurface) tracePath(p Path) {
	s.ctx.ClearPath()
	for _, seg := range p {
		a := seg.Args
		switch seg.Op {
		case OpMove:
			s.ctx.MoveTo(a[0], a[1])
		case OpLine:
			s.ctx.LineTo(a[0], a[1])
		case OpQuad:
			s.ctx.QuadraticTo(a[0], a[1], a[2], a[3])
		case OpCubic:
			s.ctx.CubicTo(a[0], a[1], a[2], a[3], a[4], a[5])
		case OpClose:
			s.ctx.ClosePath()
		}
	}
}

// Resize reallocates the backing image.
func (s *RasterSurface) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("resize raster surface %dx%d: %w", width, height, ErrSurfaceSize)
	}
	return s.ctx.Resize(width, height)
}

func (s *RasterSurface) Image() image.Image {
	return s.ctx.Image()
}

func (s *RasterSurface) EncodePNG(w io.Writer) error {
	return s.ctx.EncodePNG(w)
}

// Err returns the first drawing error since the last Reset.
func (s *RasterSurface) Err() error {
	return s.err
}

func (s *RasterSurface) Close() error {
	return s.ctx.Close()
}

func (s *RasterSurface) check(err error) {
	if err != nil && s.err == nil {
		s.err = err
	}
}

// parseColor reads a #rgb, #rgba, #rrggbb or #rrggbbaa color and scales
// its alpha by opacity.
func parseColor(hex string, opacity float64) gg.RGBA {
	c := gg.Hex(hex)
	c.A *= opacity
	return c
}
