package render

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/nineyards/whiteboard/backend-go/internal/document"
)

const (
	hachureAngle      = -41 * math.Pi / 180
	defaultHachureGap = 8.0
	maxHachureLines   = 4096
)

// SketchGenerator is a seeded Generator that wobbles outlines by the
// roughness scalar and fills with solid paint or hachure lines.
type SketchGenerator struct{}

func NewSketchGenerator() *SketchGenerator {
	return &SketchGenerator{}
}

func (g *SketchGenerator) Rectangle(x, y, w, h float64, o Options) Shape {
	return g.Path(rectPath(x, y, w, h), o)
}

func (g *SketchGenerator) Ellipse(cx, cy, w, h float64, o Options) Shape {
	perimeter := math.Pi * (math.Abs(w) + math.Abs(h)) / 2
	n := int(math.Max(12, math.Min(perimeter/4, 96)))
	return g.Path(ellipsePath(cx, cy, w, h, n), o)
}

func (g *SketchGenerator) Path(p Path, o Options) Shape {
	rng := rand.New(rand.NewPCG(uint64(o.Seed), 0x9e3779b97f4a7c15))
	var shape Shape

	if o.Fill != "" && o.FillStyle != document.FillEmpty && p.Closed() {
		shape = append(shape, g.fill(p, o, rng)...)
	}

	if o.Stroke != "" {
		passes := 2
		if o.SingleStroke || o.Roughness == 0 {
			passes = 1
		}
		for range passes {
			shape = append(shape, Drawable{
				Path:        jitter(p, o.Roughness, rng),
				Stroke:      o.Stroke,
				StrokeWidth: o.StrokeWidth,
				Dash:        o.Dash,
				Opacity:     o.Opacity,
			})
		}
	}
	return shape
}

func (g *SketchGenerator) fill(p Path, o Options, rng *rand.Rand) Shape {
	switch o.FillStyle {
	case document.FillSolid:
		return Shape{{Path: jitter(p, o.Roughness, rng), Fill: o.Fill, Opacity: o.Opacity}}
	case document.FillHachure, document.FillCrossHatch:
		polys := p.Flatten()
		lines := hachure(polys, hachureAngle, o.HachureGap)
		if o.FillStyle == document.FillCrossHatch {
			lines = append(lines, hachure(polys, hachureAngle+math.Pi/2, o.HachureGap)...)
		}
		if len(lines) == 0 {
			return nil
		}
		width := o.FillWeight
		if width <= 0 {
			width = 1
		}
		return Shape{{Path: jitter(lines, o.Roughness/2, rng), Stroke: o.Fill, StrokeWidth: width, Opacity: o.Opacity}}
	}
	return nil
}

// jitter offsets every coordinate by up to 1.5*roughness.
func jitter(p Path, roughness float64, rng *rand.Rand) Path {
	out := make(Path, len(p))
	amp := 1.5 * roughness
	for i, s := range p {
		var args []float64
		if len(s.Args) > 0 {
			args = make([]float64, len(s.Args))
		}
		for j, a := range s.Args {
			if amp > 0 {
				a += (rng.Float64()*2 - 1) * amp
			}
			args[j] = a
		}
		out[i] = Segment{Op: s.Op, Args: args}
	}
	return out
}

// hachure returns parallel line segments at angle, spaced gap apart,
// clipped to the polygons with the even-odd rule.
func hachure(polys [][]document.Point, angle, gap float64) Path {
	if gap <= 0 {
		gap = defaultHachureGap
	}

	sin, cos := math.Sincos(-angle)
	rot := func(pt document.Point, s, c float64) document.Point {
		return document.Point{X: pt.X*c - pt.Y*s, Y: pt.X*s + pt.Y*c}
	}

	type edge struct{ a, b document.Point }
	var edges []edge
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, poly := range polys {
		for i := range poly {
			a := rot(poly[i], sin, cos)
			b := rot(poly[(i+1)%len(poly)], sin, cos)
			edges = append(edges, edge{a, b})
			minY = math.Min(minY, math.Min(a.Y, b.Y))
			maxY = math.Max(maxY, math.Max(a.Y, b.Y))
		}
	}
	if len(edges) == 0 || (maxY-minY)/gap > maxHachureLines {
		return nil
	}

	var out Path
	var xs []float64
	for y := minY + gap/2; y < maxY; y += gap {
		xs = xs[:0]
		for _, e := range edges {
			if (e.a.Y <= y && y < e.b.Y) || (e.b.Y <= y && y < e.a.Y) {
				t := (y - e.a.Y) / (e.b.Y - e.a.Y)
				xs = append(xs, e.a.X+t*(e.b.X-e.a.X))
			}
		}
		slices.Sort(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			p1 := rot(document.Point{X: xs[i], Y: y}, -sin, cos)
			p2 := rot(document.Point{X: xs[i+1], Y: y}, -sin, cos)
			out.MoveTo(p1.X, p1.Y)
			out.LineTo(p2.X, p2.Y)
		}
	}
	return out
}
