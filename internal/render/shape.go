package render

import (
	"math"

	"github.com/nineyards/whiteboard/backend-go/internal/document"
)

const (
	DefaultFixedRadius        = 32.0
	DefaultProportionalRadius = 0.25
)

// GenerateShape builds the drawable for el in its local space (origin at
// the element's top-left corner). It returns nil for elements that have no
// outline, such as text.
func GenerateShape(el *document.Element, gen Generator) Shape {
	o := ShapeOptions(el)

	switch el.Type {
	case document.TypeRectangle:
		if el.Rounding == document.RoundingSharp {
			return gen.Rectangle(0, 0, el.Width, el.Height, o)
		}
		return gen.Path(roundedRectPath(el.Width, el.Height, CornerRadius(el)), o)
	case document.TypeEllipse:
		return gen.Ellipse(el.Width/2, el.Height/2, el.Width, el.Height, o)
	case document.TypeTriangle:
		return gen.Path(trianglePath(el), o)
	case document.TypeLine:
		if len(el.Points) < 2 {
			return nil
		}
		shape := gen.Path(linePath(el.Points), o)
		return append(shape, arrowheads(el, gen, o)...)
	}
	return nil
}

// ShapeOptions derives the generator style bag from an element.
func ShapeOptions(el *document.Element) Options {
	o := Options{
		StrokeWidth:  el.StrokeWidth,
		Dash:         StrokePattern(el),
		SingleStroke: el.StrokeType != document.StrokeSolid,
		FillWeight:   el.StrokeWidth / 2,
		HachureGap:   el.StrokeWidth * 4,
		Seed:         el.Seed,
		Roughness:    AdjustRoughness(el),
		Opacity:      el.Opacity / 100,
	}
	if el.StrokeType != document.StrokeNone {
		o.Stroke = el.StrokeColor
	}
	if el.StrokeType != document.StrokeSolid {
		o.StrokeWidth += 0.5
	}
	if el.Type != document.TypeLine || isLoop(el.Points) {
		o.Fill = el.BackgroundColor
		o.FillStyle = el.FillStyle
	}
	return o
}

// StrokePattern returns the dash lengths for the element's stroke type.
func StrokePattern(el *document.Element) []float64 {
	switch el.StrokeType {
	case document.StrokeDashed:
		return []float64{8, 8 + el.StrokeWidth}
	case document.StrokeDotted:
		return []float64{1.5, 6 + el.StrokeWidth}
	}
	return nil
}

// AdjustRoughness tones roughness down for small shapes so they stay legible.
func AdjustRoughness(el *document.Element) float64 {
	maxSize := math.Max(el.Width, el.Height)
	minSize := math.Min(el.Width, el.Height)

	if minSize >= 20 && maxSize >= 50 {
		return el.Roughness
	}

	minimizer := 2.0
	if maxSize < 10 {
		minimizer = 3
	}
	return math.Min(el.Roughness/minimizer, 2.5)
}

// CornerRadius returns the corner rounding radius for el.
func CornerRadius(el *document.Element) float64 {
	shortest := math.Min(el.Width, el.Height)

	switch el.Rounding {
	case document.RoundingProportional:
		return shortest * DefaultProportionalRadius
	case document.RoundingFixed:
		if shortest <= DefaultFixedRadius/DefaultProportionalRadius {
			return shortest * DefaultProportionalRadius
		}
		return DefaultFixedRadius
	}
	return 0
}

func roundedRectPath(w, h, r float64) Path {
	var p Path
	p.MoveTo(r, 0)
	p.LineTo(w-r, 0)
	p.QuadTo(w, 0, w, r)
	p.LineTo(w, h-r)
	p.QuadTo(w, h, w-r, h)
	p.LineTo(r, h)
	p.QuadTo(0, h, 0, h-r)
	p.LineTo(0, r)
	p.QuadTo(0, 0, r, 0)
	p.Close()
	return p
}

func trianglePath(el *document.Element) Path {
	w, h, shift := el.Width, el.Height, el.Shift
	var p Path

	if el.Rounding == document.RoundingSharp || w == 0 || h == 0 || shift <= 0 || shift >= 1 {
		p.MoveTo(w*shift, 0)
		p.LineTo(0, h)
		p.LineTo(w, h)
		p.Close()
		return p
	}

	r := CornerRadius(el)

	left := math.Atan(h / (shift * w))
	leftX, leftY := r*math.Cos(left), r*math.Sin(left)

	right := math.Atan(h / ((1 - shift) * w))
	rightX, rightY := r*math.Cos(right), r*math.Sin(right)

	topLeftX, topLeftY := r*math.Sin(math.Pi/2-left), r*math.Cos(math.Pi/2-left)
	topRightX, topRightY := r*math.Sin(math.Pi/2-right), r*math.Cos(math.Pi/2-right)

	p.MoveTo(r, h)
	p.QuadTo(0, h, leftX, h-leftY)
	p.LineTo(w*shift-topLeftX, topLeftY)
	p.QuadTo(w*shift, 0, w*shift+topRightX, topRightY)
	p.LineTo(w-rightX, h-rightY)
	p.QuadTo(w, h, w-rightX, h)
	p.Close()
	return p
}

func linePath(points []document.Point) Path {
	var p Path
	p.MoveTo(points[0].X, points[0].Y)
	for _, pt := range points[1:] {
		p.LineTo(pt.X, pt.Y)
	}
	if isLoop(points) {
		p.Close()
	}
	return p
}

// isLoop reports whether a polyline ends where it starts.
func isLoop(points []document.Point) bool {
	if len(points) < 3 {
		return false
	}
	first, last := points[0], points[len(points)-1]
	return math.Hypot(last.X-first.X, last.Y-first.Y) <= 8
}

func arrowheads(el *document.Element, gen Generator, o Options) Shape {
	n := len(el.Points)
	size := math.Max(10, el.StrokeWidth*4)
	o.Dash = nil
	o.SingleStroke = true

	var shape Shape
	if p := arrowhead(el.StartHead, el.Points[1], el.Points[0], size); p != nil {
		shape = append(shape, gen.Path(p, headOptions(el.StartHead, o))...)
	}
	if p := arrowhead(el.EndHead, el.Points[n-2], el.Points[n-1], size); p != nil {
		shape = append(shape, gen.Path(p, headOptions(el.EndHead, o))...)
	}
	return shape
}

func headOptions(h document.Arrowhead, o Options) Options {
	o.Fill = ""
	if h == document.ArrowheadTriangle {
		o.Fill = o.Stroke
		o.FillStyle = document.FillSolid
	}
	return o
}

// arrowhead returns the head outline at tip, pointing away from from.
func arrowhead(h document.Arrowhead, from, tip document.Point, size float64) Path {
	if h == "" || h == document.ArrowheadNone {
		return nil
	}
	angle := math.Atan2(tip.Y-from.Y, tip.X-from.X)
	const spread = math.Pi / 7
	ax, ay := tip.X-size*math.Cos(angle-spread), tip.Y-size*math.Sin(angle-spread)
	bx, by := tip.X-size*math.Cos(angle+spread), tip.Y-size*math.Sin(angle+spread)

	var p Path
	switch h {
	case document.ArrowheadTriangle:
		p.MoveTo(tip.X, tip.Y)
		p.LineTo(ax, ay)
		p.LineTo(bx, by)
		p.Close()
	default:
		p.MoveTo(ax, ay)
		p.LineTo(tip.X, tip.Y)
		p.LineTo(bx, by)
	}
	return p
}
