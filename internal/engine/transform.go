package engine

import (
	"math"

	"github.com/nineyards/whiteboard/backend-go/internal/document"
	"github.com/nineyards/whiteboard/backend-go/internal/geometry"
)

// RotationSnap is the angle increment used while shift is held.
const RotationSnap = math.Pi / 12

// handleRestOffset turns atan2's "pointing right is zero" into "pointing up
// is zero", where the rotation handle sits.
const handleRestOffset = 5 * math.Pi / 2

// Placement is the new geometry of one element after a transform step.
type Placement struct {
	ID       string
	X, Y     float64
	Width    float64
	Height   float64
	Rotation float64
	Points   []document.Point
}

// Apply writes p onto el.
func (p Placement) Apply(el *document.Element) {
	el.X, el.Y = p.X, p.Y
	el.Width, el.Height = p.Width, p.Height
	el.Rotation = p.Rotation
	if p.Points != nil {
		el.Points = p.Points
	}
}

func (p Placement) bounds() document.Bounds {
	return document.Bounds{X: p.X, Y: p.Y, Width: p.Width, Height: p.Height, Rotation: p.Rotation}
}

// ResizeElement computes the placement of orig after its handle h has been
// dragged to p. The edge or corner opposite h stays fixed; crossing it
// flips the element on that axis. It reports false when the result would
// be empty or non-finite.
func ResizeElement(orig *document.Element, h geometry.Handle, p document.Point) (Placement, bool) {
	center := orig.Center()
	tl := document.Point{X: orig.X, Y: orig.Y}
	br := document.Point{X: orig.X + orig.Width, Y: orig.Y + orig.Height}
	q := geometry.RotateAround(p, -orig.Rotation, center)

	w, ht := orig.Width, orig.Height
	switch {
	case h.Has('e'):
		w = q.X - tl.X
	case h.Has('w'):
		w = br.X - q.X
	}
	switch {
	case h.Has('s'):
		ht = q.Y - tl.Y
	case h.Has('n'):
		ht = br.Y - q.Y
	}
	aw, ah := math.Abs(w), math.Abs(ht)

	next := tl
	if h.Has('w') {
		next.X = br.X - aw
	}
	if h.Has('n') {
		next.Y = br.Y - ah
	}

	flipX, flipY := w < 0, ht < 0
	if flipX {
		if h.Has('e') {
			next.X -= aw
		} else {
			next.X += aw
		}
	}
	if flipY {
		if h.Has('s') {
			next.Y -= ah
		} else {
			next.Y += ah
		}
	}

	// The pivot moves with the box, so the unrotated corner is rotated out
	// about the old center and back in about the new one.
	rotatedTL := geometry.RotateAround(next, orig.Rotation, center)
	nextCenter := document.Point{X: next.X + aw/2, Y: next.Y + ah/2}
	rotatedCenter := geometry.RotateAround(nextCenter, orig.Rotation, center)
	final := geometry.RotateAround(rotatedTL, -orig.Rotation, rotatedCenter)

	out := Placement{
		ID:       orig.ID,
		X:        final.X,
		Y:        final.Y,
		Width:    aw,
		Height:   ah,
		Rotation: orig.Rotation,
		Points:   scalePoints(orig, aw, ah, flipX, flipY),
	}
	return out, geometry.Finite(out.bounds())
}

// groupAnchor returns the point of b that stays fixed while h is dragged.
func groupAnchor(b document.Bounds, h geometry.Handle) document.Point {
	minX, maxX := b.X, b.X+b.Width
	minY, maxY := b.Y, b.Y+b.Height
	midX, midY := b.X+b.Width/2, b.Y+b.Height/2

	a := document.Point{X: midX, Y: midY}
	switch {
	case h.Has('e'):
		a.X = minX
	case h.Has('w'):
		a.X = maxX
	}
	switch {
	case h.Has('s'):
		a.Y = minY
	case h.Has('n'):
		a.Y = maxY
	}
	return a
}

// ResizeGroup scales every element of origs about the anchor opposite h in
// the group bounds b. Each placement is derived from the originals so
// repeated steps never drift.
func ResizeGroup(origs []*document.Element, b document.Bounds, h geometry.Handle, p document.Point) ([]Placement, bool) {
	if b.Width == 0 || b.Height == 0 {
		return nil, false
	}
	a := groupAnchor(b, h)

	sx, sy := 1.0, 1.0
	if h.Has('e') || h.Has('w') {
		sx = math.Abs(p.X-a.X) / b.Width
	}
	if h.Has('n') || h.Has('s') {
		sy = math.Abs(p.Y-a.Y) / b.Height
	}
	if sx == 0 || sy == 0 {
		return nil, false
	}

	flipX := h.Has('e') && p.X < a.X || h.Has('w') && p.X > a.X
	flipY := h.Has('s') && p.Y < a.Y || h.Has('n') && p.Y > a.Y
	fx, fy := 1.0, 1.0
	if flipX {
		fx = -1
	}
	if flipY {
		fy = -1
	}

	out := make([]Placement, 0, len(origs))
	for _, o := range origs {
		w := o.Width * sx
		ht := o.Height * sy

		ox := (o.X - a.X) * sx
		if flipX {
			ox += w
		}
		oy := (o.Y - a.Y) * sy
		if flipY {
			oy += ht
		}

		pl := Placement{
			ID:       o.ID,
			X:        a.X + fx*ox,
			Y:        a.Y + fy*oy,
			Width:    w,
			Height:   ht,
			Rotation: geometry.NormalizeAngle(o.Rotation * fx * fy),
			Points:   scalePoints(o, w, ht, flipX, flipY),
		}
		if !geometry.Finite(pl.bounds()) {
			return nil, false
		}
		out = append(out, pl)
	}
	return out, true
}

// HandleAngle is the rotation that points the rotation handle of a box
// centered on pivot at p.
func HandleAngle(p, pivot document.Point, snap bool) float64 {
	a := math.Atan2(p.Y-pivot.Y, p.X-pivot.X) + handleRestOffset
	if snap {
		a = geometry.SnapAngle(a, RotationSnap)
	}
	return geometry.NormalizeAngle(a)
}

// RotateElement turns orig to face p about its own captured center.
func RotateElement(orig *document.Element, p document.Point, snap bool) Placement {
	pl := placementOf(orig)
	pl.Rotation = HandleAngle(p, orig.Center(), snap)
	return pl
}

// RotateGroup turns origs about pivot so the group faces p. Each element
// keeps its angular offset from the group's starting rotation, and its
// center orbits the pivot by the same amount.
func RotateGroup(origs []*document.Element, pivot document.Point, startAngle float64, p document.Point, snap bool) ([]Placement, float64) {
	angle := HandleAngle(p, pivot, snap)
	delta := angle - startAngle

	out := make([]Placement, 0, len(origs))
	for _, o := range origs {
		c := geometry.RotateAround(o.Center(), delta, pivot)
		pl := placementOf(o)
		pl.X = c.X - o.Width/2
		pl.Y = c.Y - o.Height/2
		pl.Rotation = geometry.NormalizeAngle(o.Rotation + delta)
		out = append(out, pl)
	}
	return out, angle
}

func placementOf(el *document.Element) Placement {
	return Placement{
		ID:       el.ID,
		X:        el.X,
		Y:        el.Y,
		Width:    el.Width,
		Height:   el.Height,
		Rotation: el.Rotation,
	}
}

// scalePoints maps a line's points into a box of w×h, mirroring them on
// flipped axes. Elements without points return nil.
func scalePoints(orig *document.Element, w, h float64, flipX, flipY bool) []document.Point {
	if len(orig.Points) == 0 {
		return nil
	}
	kx, ky := 1.0, 1.0
	if orig.Width != 0 {
		kx = w / orig.Width
	}
	if orig.Height != 0 {
		ky = h / orig.Height
	}

	out := make([]document.Point, len(orig.Points))
	for i, pt := range orig.Points {
		x, y := pt.X*kx, pt.Y*ky
		if flipX {
			x = w - x
		}
		if flipY {
			y = h - y
		}
		out[i] = document.Point{X: x, Y: y}
	}
	return out
}
