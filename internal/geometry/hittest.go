package geometry

import (
	"math"

	"github.com/nineyards/whiteboard/backend-go/internal/document"
)

const (
	// HandleRadius is the drawn radius of a transform handle marker.
	HandleRadius = 3.0
	// HandleThreshold is how close the pointer must be to a point handle.
	HandleThreshold = 5.0
	// EdgeThreshold is the half-width of the band around an edge handle.
	EdgeThreshold = 3.0
	// RotationOffset is the distance of the rotation handle above the top edge.
	RotationOffset = 10.0
)

// PointInElement reports whether p (scene coordinates) lies inside el.
func PointInElement(p Point, el *document.Element) bool {
	switch el.Type {
	case document.TypeRectangle, document.TypeText:
		return PointInBounds(p, el.Box())
	case document.TypeEllipse:
		return pointInEllipse(unrotate(p, el.Box()), el)
	case document.TypeTriangle:
		return pointInTriangle(unrotate(p, el.Box()), el)
	case document.TypeLine:
		return pointOnLine(unrotate(p, el.Box()), el)
	}
	return false
}

// PointInBounds is a strict containment test against a possibly rotated box.
func PointInBounds(p Point, b document.Bounds) bool {
	q := unrotate(p, b)
	return q.X > b.X && q.X < b.X+b.Width && q.Y > b.Y && q.Y < b.Y+b.Height
}

// unrotate maps p into the unrotated frame of b.
func unrotate(p Point, b document.Bounds) Point {
	if b.Rotation == 0 {
		return p
	}
	return RotateAround(p, -b.Rotation, b.Center())
}

func pointInEllipse(p Point, el *document.Element) bool {
	c := el.Center()
	rx := el.Width / 2
	ry := el.Height / 2
	dx := (p.X - c.X) / rx
	dy := (p.Y - c.Y) / ry
	return dx*dx+dy*dy <= 1
}

func pointInTriangle(p Point, el *document.Element) bool {
	x1, y1 := el.X+el.Width*el.Shift, el.Y
	x2, y2 := el.X, el.Y+el.Height
	x3, y3 := el.X+el.Width, el.Y+el.Height

	b1 := (x1-x3)*(p.Y-y3) - (y1-y3)*(p.X-x3)
	b2 := (x2-x1)*(p.Y-y1) - (y2-y1)*(p.X-x1)
	if (b1 < 0) != (b2 < 0) && b1 != 0 && b2 != 0 {
		return false
	}

	d := (x3-x2)*(p.Y-y2) - (y3-y2)*(p.X-x2)
	return d == 0 || (d < 0) == (b1+b2 <= 0)
}

func pointOnLine(p Point, el *document.Element) bool {
	threshold := math.Max(HandleThreshold, el.StrokeWidth)
	local := Point{X: p.X - el.X, Y: p.Y - el.Y}
	for i := 1; i < len(el.Points); i++ {
		if segmentDistance(local, el.Points[i-1], el.Points[i]) <= threshold {
			return true
		}
	}
	return false
}

func segmentDistance(p, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return Distance(p, a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return Distance(p, Point{X: a.X + t*dx, Y: a.Y + t*dy})
}

// ComputeBounds returns the bounds of a set of elements: nil for none, the
// element's own rotated box for one, and the axis-aligned envelope of the
// unrotated boxes (rotation 0) for several.
func ComputeBounds(elements []*document.Element) *document.Bounds {
	switch len(elements) {
	case 0:
		return nil
	case 1:
		b := elements[0].Box()
		return &b
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, el := range elements {
		minX = math.Min(minX, el.X)
		minY = math.Min(minY, el.Y)
		maxX = math.Max(maxX, el.X+el.Width)
		maxY = math.Max(maxY, el.Y+el.Height)
	}

	return &document.Bounds{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
