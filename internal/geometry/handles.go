package geometry

import (
	"math"
	"strings"

	"github.com/nineyards/whiteboard/backend-go/internal/document"
)

// Handle identifies a transform handle on a selection box.
type Handle string

const (
	HandleNone      Handle = ""
	HandleNorth     Handle = "n"
	HandleSouth     Handle = "s"
	HandleEast      Handle = "e"
	HandleWest      Handle = "w"
	HandleNorthEast Handle = "ne"
	HandleNorthWest Handle = "nw"
	HandleSouthEast Handle = "se"
	HandleSouthWest Handle = "sw"
	HandleRotation  Handle = "rotation"
)

func (h Handle) IsResize() bool {
	return h != HandleNone && h != HandleRotation
}

// Has reports whether the handle moves the given side ('n', 's', 'e', 'w').
func (h Handle) Has(side byte) bool {
	return h.IsResize() && strings.IndexByte(string(h), side) >= 0
}

// Cursor names.
const (
	CursorAuto       = "auto"
	CursorDefault    = "default"
	CursorGrab       = "grab"
	CursorGrabbing   = "grabbing"
	CursorCrosshair  = "crosshair"
	CursorMove       = "move"
	CursorNSResize   = "ns-resize"
	CursorEWResize   = "ew-resize"
	CursorNESWResize = "nesw-resize"
	CursorNWSEResize = "nwse-resize"
)

// resizeCursors is ordered by 45° steps.
var resizeCursors = [4]string{CursorNSResize, CursorNESWResize, CursorEWResize, CursorNWSEResize}

// HitTestHandles returns the transform handle of b under p. The rotation
// handle wins over corners, corners over edges.
func HitTestHandles(p Point, b document.Bounds) Handle {
	p = unrotate(p, b)

	rotation := Point{X: b.X + b.Width/2, Y: b.Y - RotationOffset}
	if Distance(p, rotation) <= HandleThreshold {
		return HandleRotation
	}

	if h := hitCorner(p, b); h != HandleNone {
		return h
	}
	return hitEdge(p, b)
}

func hitCorner(p Point, b document.Bounds) Handle {
	corners := []struct {
		h Handle
		p Point
	}{
		{HandleNorthWest, Point{X: b.X, Y: b.Y}},
		{HandleNorthEast, Point{X: b.X + b.Width, Y: b.Y}},
		{HandleSouthWest, Point{X: b.X, Y: b.Y + b.Height}},
		{HandleSouthEast, Point{X: b.X + b.Width, Y: b.Y + b.Height}},
	}
	for _, c := range corners {
		if Distance(p, c.p) <= HandleThreshold {
			return c.h
		}
	}
	return HandleNone
}

func hitEdge(p Point, b document.Bounds) Handle {
	x1, x2 := b.X, b.X+b.Width
	y1, y2 := b.Y, b.Y+b.Height

	near := func(v, edge float64) bool {
		return v > edge-EdgeThreshold && v < edge+EdgeThreshold
	}

	if p.X > x1 && p.X < x2 {
		if near(p.Y, y1) {
			return HandleNorth
		}
		if near(p.Y, y2) {
			return HandleSouth
		}
	}
	if p.Y > y1 && p.Y < y2 {
		if near(p.X, x1) {
			return HandleWest
		}
		if near(p.X, x2) {
			return HandleEast
		}
	}
	return HandleNone
}

// CursorForHandle returns the pointer cursor for h on a box rotated by
// rotation radians.
func CursorForHandle(h Handle, rotation float64) string {
	idx := -1
	switch h {
	case HandleNorth, HandleSouth:
		idx = 0
	case HandleNorthEast, HandleSouthWest:
		idx = 1
	case HandleEast, HandleWest:
		idx = 2
	case HandleNorthWest, HandleSouthEast:
		idx = 3
	case HandleRotation:
		return CursorGrab
	default:
		return CursorAuto
	}

	steps := int(math.Round(rotation / (math.Pi / 4)))
	n := len(resizeCursors)
	return resizeCursors[((idx+steps)%n+n)%n]
}
