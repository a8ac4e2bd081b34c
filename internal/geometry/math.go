package geometry

import (
	"math"

	"github.com/nineyards/whiteboard/backend-go/internal/document"
)

type Point = document.Point

func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// RotateAround rotates p by radians about origin.
func RotateAround(p Point, radians float64, origin Point) Point {
	sin, cos := math.Sincos(radians)
	dx := p.X - origin.X
	dy := p.Y - origin.Y
	return Point{
		X: dx*cos - dy*sin + origin.X,
		Y: dx*sin + dy*cos + origin.Y,
	}
}

// NormalizeAngle maps an angle into [0, 2π).
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// SnapAngle rounds a to the nearest multiple of step.
func SnapAngle(a, step float64) float64 {
	if step <= 0 {
		return a
	}
	return math.Round(a/step) * step
}

// ContainsBox reports whether el's unrotated box lies strictly inside the
// region spanned by the two corners a and b.
func ContainsBox(a, b Point, el *document.Element) bool {
	rx1, rx2 := math.Min(a.X, b.X), math.Max(a.X, b.X)
	ry1, ry2 := math.Min(a.Y, b.Y), math.Max(a.Y, b.Y)

	xValid := el.X > rx1 && el.X+el.Width < rx2
	yValid := el.Y > ry1 && el.Y+el.Height < ry2
	return xValid && yValid
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Finite reports whether b has finite coordinates and non-zero size.
func Finite(b document.Bounds) bool {
	return b.Width != 0 && b.Height != 0 && finite(b.X, b.Y, b.Width, b.Height, b.Rotation)
}
