package render

import (
	"encoding/json"
	"math"

	"github.com/nineyards/whiteboard/backend-go/internal/document"
)

type SegmentOp byte

const (
	OpMove  SegmentOp = 'M'
	OpLine  SegmentOp = 'L'
	OpQuad  SegmentOp = 'Q'
	OpCubic SegmentOp = 'C'
	OpClose SegmentOp = 'Z'
)

// Segment is one path command with its absolute coordinates.
type Segment struct {
	Op   SegmentOp
	Args []float64
}

// MarshalJSON encodes a segment in Canvas2D form: ["M", x, y].
func (s Segment) MarshalJSON() ([]byte, error) {
	out := make([]any, 0, len(s.Args)+1)
	out = append(out, string(rune(s.Op)))
	for _, a := range s.Args {
		out = append(out, a)
	}
	return json.Marshal(out)
}

type Path []Segment

func (p *Path) MoveTo(x, y float64) { *p = append(*p, Segment{OpMove, []float64{x, y}}) }
func (p *Path) LineTo(x, y float64) { *p = append(*p, Segment{OpLine, []float64{x, y}}) }
func (p *Path) QuadTo(cx, cy, x, y float64) {
	*p = append(*p, Segment{OpQuad, []float64{cx, cy, x, y}})
}
func (p *Path) CubicTo(c1x, c1y, c2x, c2y, x, y float64) {
	*p = append(*p, Segment{OpCubic, []float64{c1x, c1y, c2x, c2y, x, y}})
}
func (p *Path) Close() { *p = append(*p, Segment{Op: OpClose}) }

// Closed reports whether every subpath ends with a close command.
func (p Path) Closed() bool {
	return len(p) > 0 && p[len(p)-1].Op == OpClose
}

// Flatten approximates the path as polygons, one per subpath.
func (p Path) Flatten() [][]document.Point {
	var polys [][]document.Point
	var cur []document.Point
	var last document.Point

	flush := func() {
		if len(cur) > 1 {
			polys = append(polys, cur)
		}
		cur = nil
	}

	for _, s := range p {
		switch s.Op {
		case OpMove:
			flush()
			last = document.Point{X: s.Args[0], Y: s.Args[1]}
			cur = append(cur, last)
		case OpLine:
			last = document.Point{X: s.Args[0], Y: s.Args[1]}
			cur = append(cur, last)
		case OpQuad:
			const steps = 8
			for i := 1; i <= steps; i++ {
				t := float64(i) / steps
				u := 1 - t
				cur = append(cur, document.Point{
					X: u*u*last.X + 2*u*t*s.Args[0] + t*t*s.Args[2],
					Y: u*u*last.Y + 2*u*t*s.Args[1] + t*t*s.Args[3],
				})
			}
			last = document.Point{X: s.Args[2], Y: s.Args[3]}
		case OpCubic:
			const steps = 12
			for i := 1; i <= steps; i++ {
				t := float64(i) / steps
				u := 1 - t
				cur = append(cur, document.Point{
					X: u*u*u*last.X + 3*u*u*t*s.Args[0] + 3*u*t*t*s.Args[2] + t*t*t*s.Args[4],
					Y: u*u*u*last.Y + 3*u*u*t*s.Args[1] + 3*u*t*t*s.Args[3] + t*t*t*s.Args[5],
				})
			}
			last = document.Point{X: s.Args[4], Y: s.Args[5]}
		case OpClose:
			flush()
		}
	}
	flush()
	return polys
}

// ellipsePath approximates an ellipse centered on (cx, cy) with n points.
func ellipsePath(cx, cy, w, h float64, n int) Path {
	var p Path
	rx, ry := w/2, h/2
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		x, y := cx+rx*math.Cos(a), cy+ry*math.Sin(a)
		if i == 0 {
			p.MoveTo(x, y)
			continue
		}
		p.LineTo(x, y)
	}
	p.Close()
	return p
}

func rectPath(x, y, w, h float64) Path {
	var p Path
	p.MoveTo(x, y)
	p.LineTo(x+w, y)
	p.LineTo(x+w, y+h)
	p.LineTo(x, y+h)
	p.Close()
	return p
}
