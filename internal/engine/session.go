package engine

import (
	"slices"

	"github.com/nineyards/whiteboard/backend-go/internal/document"
	"github.com/nineyards/whiteboard/backend-go/internal/geometry"
	"github.com/nineyards/whiteboard/backend-go/internal/render"
)

// session is one pointer-down to pointer-up interaction. move runs on
// every pointer move; done runs once when the pointer is released or the
// window loses focus.
type session struct {
	move func(ev PointerEvent)
	done func()
}

func (e *Engine) begin(state State, move func(ev PointerEvent), done func()) {
	e.session = &session{move: move, done: done}
	e.state = state
}

func (e *Engine) finish() {
	s := e.session
	if s == nil {
		return
	}
	e.session = nil
	e.state = StateIdle
	if s.done != nil {
		s.done()
	}
	e.updateCursor(e.pointer)
}

func (e *Engine) scenePoint(ev PointerEvent) document.Point {
	return e.Viewport().ToScene(ev.ClientX, ev.ClientY)
}

// hitElement returns the topmost element under p.
func (e *Engine) hitElement(p document.Point) *document.Element {
	for i := len(e.elements) - 1; i >= 0; i-- {
		if geometry.PointInElement(p, e.elements[i]) {
			return e.elements[i]
		}
	}
	return nil
}

func (e *Engine) trySelectElement(ev PointerEvent, p document.Point) bool {
	el := e.hitElement(p)
	if el == nil {
		return false
	}
	id := el.ID

	if ev.Shift && e.selection.Includes(id) {
		// A shift-click on a selected element deselects it unless the
		// click turns into a drag.
		e.startDrag(ev, func(moved bool) {
			if !moved {
				e.selection.Remove(id)
				e.RequestFrame(true)
			}
		})
		e.RequestFrame(true)
		return true
	}

	switch {
	case ev.Shift:
		e.selection.Push(id)
	case !e.selection.Includes(id):
		e.selection.SetElements([]string{id})
	}
	e.selection.ClearBounds()
	e.startDrag(ev, nil)
	e.RequestFrame(true)
	return true
}

func (e *Engine) tryTransformSelection(ev PointerEvent, p document.Point) bool {
	b := e.selection.Bounds()
	if b == nil {
		return false
	}

	switch h := geometry.HitTestHandles(p, *b); {
	case h == geometry.HandleRotation:
		e.startRotate()
	case h.IsResize():
		e.startResize(StateResizing, h)
	case geometry.PointInBounds(p, *b):
		e.startDrag(ev, nil)
	default:
		return false
	}
	return true
}

func (e *Engine) startPan(ev PointerEvent) {
	lastX, lastY := ev.ClientX, ev.ClientY
	e.cursor = geometry.CursorGrabbing

	e.begin(StatePanning,
		func(ev PointerEvent) {
			dx, dy := ev.ClientX-lastX, ev.ClientY-lastY
			lastX, lastY = ev.ClientX, ev.ClientY
			e.UpdateViewport(func(v document.Viewport) document.Viewport {
				v.ScrollX += dx / v.Zoom
				v.ScrollY += dy / v.Zoom
				return v
			}, false)
		},
		func() {
			e.SetViewport(e.Viewport(), true)
		})
}

// startDrawing creates an element of type t at p and lets the same gesture
// size it from its south-east corner.
func (e *Engine) startDrawing(t document.ElementType, p document.Point) {
	opts := e.base.Merge(document.Options{X: document.Ptr(p.X), Y: document.Ptr(p.Y)})
	el := document.Setup(t, opts)
	if el == nil {
		return
	}
	el.Updated = e.Now().UnixMilli()

	e.AddElements([]*document.Element{el}, false)
	e.selection.SetElements([]string{el.ID})
	e.startResize(StateDrawing, geometry.HandleSouthEast)
}

// startDrag moves the selection by the pointer delta. onDone, when set,
// learns whether the pointer moved at all.
func (e *Engine) startDrag(ev PointerEvent, onDone func(moved bool)) {
	ids := e.selection.IDs()
	lastX, lastY := ev.ClientX, ev.ClientY
	moved := false

	e.begin(StateDragging,
		func(ev PointerEvent) {
			zoom := e.Viewport().Zoom
			dx := (ev.ClientX - lastX) / zoom
			dy := (ev.ClientY - lastY) / zoom
			lastX, lastY = ev.ClientX, ev.ClientY
			if dx == 0 && dy == 0 {
				return
			}
			moved = true

			e.selection.ClearBounds()
			e.MutateElements(ids, func(el *document.Element) {
				el.X += dx
				el.Y += dy
			}, false)
		},
		func() {
			e.CommitElements(ids)
			if onDone != nil {
				onDone(moved)
			}
		})
	e.cursor = geometry.CursorMove
}

func (e *Engine) startResize(state State, h geometry.Handle) {
	origs := document.CloneElements(e.selection.Elements())
	b := e.selection.Bounds()
	if len(origs) == 0 || b == nil {
		return
	}
	ids := elementIDs(origs)

	e.begin(state,
		func(ev PointerEvent) {
			p := e.scenePoint(ev)

			if len(origs) == 1 {
				pl, ok := ResizeElement(origs[0], h, p)
				if !ok {
					return
				}
				e.selection.ClearBounds()
				e.applyPlacements([]Placement{pl})
				return
			}

			pls, ok := ResizeGroup(origs, *b, h, p)
			if !ok {
				return
			}
			e.selection.ClearBounds()
			e.applyPlacements(pls)
		},
		func() {
			e.CommitElements(ids)
		})
}

func (e *Engine) startRotate() {
	origs := document.CloneElements(e.selection.Elements())
	b := e.selection.Bounds()
	if len(origs) == 0 || b == nil {
		return
	}
	ids := elementIDs(origs)
	pivot := b.Center()
	start := b.Rotation

	e.begin(StateRotating,
		func(ev PointerEvent) {
			p := e.scenePoint(ev)

			if len(origs) == 1 {
				pl := RotateElement(origs[0], p, ev.Shift)
				e.selection.ClearBounds()
				e.applyPlacements([]Placement{pl})
				return
			}

			pls, angle := RotateGroup(origs, pivot, start, p, ev.Shift)
			e.selection.Bounds()
			e.selection.SetRotation(angle)
			e.applyPlacements(pls)
		},
		func() {
			// Group bounds are axis-aligned again once the gesture ends.
			e.selection.ClearBounds()
			e.CommitElements(ids)
		})
}

// startMarquee selects the elements lying strictly inside the dragged
// region. With shift the region adds to the existing selection.
func (e *Engine) startMarquee(ev PointerEvent, p document.Point) {
	if !ev.Shift {
		e.selection.Clear()
	}
	initial := e.selection.IDs()
	e.marquee = &render.Region{Start: p, End: p}

	e.begin(StateMarquee,
		func(ev PointerEvent) {
			q := e.scenePoint(ev)
			e.marquee.End = q

			ids := slices.Clone(initial)
			for _, el := range e.elements {
				if geometry.ContainsBox(p, q, el) {
					ids = append(ids, el.ID)
				}
			}
			e.selection.SetElements(ids)
			e.RequestFrame(false)
		},
		func() {
			e.marquee = nil
			e.RequestFrame(true)
		})
}

// applyPlacements writes an uncommitted transform step.
func (e *Engine) applyPlacements(pls []Placement) {
	byID := make(map[string]Placement, len(pls))
	ids := make([]string, 0, len(pls))
	for _, pl := range pls {
		byID[pl.ID] = pl
		ids = append(ids, pl.ID)
	}
	e.MutateElements(ids, func(el *document.Element) {
		byID[el.ID].Apply(el)
	}, false)
}

func elementIDs(elements []*document.Element) []string {
	ids := make([]string, len(elements))
	for i, el := range elements {
		ids[i] = el.ID
	}
	return ids
}
