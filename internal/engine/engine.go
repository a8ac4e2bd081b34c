package engine

import (
	"math"

	"github.com/nineyards/whiteboard/backend-go/internal/document"
	"github.com/nineyards/whiteboard/backend-go/internal/geometry"
	"github.com/nineyards/whiteboard/backend-go/internal/render"
)

// Engine is the interactive editor. It wraps a Scene with the selection,
// the active tool, key bindings and the pointer state machine.
//
// An Engine is not safe for concurrent use; callers serialize access.
type Engine struct {
	*Scene

	selection *Group
	keys      *KeyMap
	tool      Tool
	state     State
	session   *session
	marquee   *render.Region
	clipboard []*document.Element
	base      document.Options
	pointer   document.Point
	cursor    string
	unsub     []func()
}

// New creates an engine drawing onto surface. It fails only when there is
// no surface to draw on.
func New(surface render.Surface, gen render.Generator, s Settings) (*Engine, error) {
	s = s.withDefaults()
	scene, err := NewScene(surface, gen, s)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		Scene:     scene,
		selection: NewGroup(scene),
		keys:      NewKeyMap(),
		tool:      s.Tool,
		state:     StateIdle,
		cursor:    geometry.CursorAuto,
	}
	scene.SetOverlay(e.overlay)

	e.unsub = append(e.unsub,
		scene.watch(EventElementsChanged, func(Event) { e.selection.Retain() }),
		e.selection.watch(EventSelectionUpdated, func(ev Event) { e.Scene.Fire(ev) }),
	)
	e.bindKeys()

	return e, nil
}

// Replace closes old, when set, and starts a new engine on surface. The old
// engine goes first so a gesture it ends cannot draw over the new frame.
func Replace(old *Engine, surface render.Surface, gen render.Generator, s Settings) (*Engine, error) {
	if old != nil {
		old.Close()
	}
	return New(surface, gen, s)
}

// Close ends any interaction in progress and releases the key bindings and
// subscriptions owned by the engine.
func (e *Engine) Close() {
	e.finish()
	e.keys.Clear()
	for _, off := range e.unsub {
		off()
	}
	e.unsub = nil
	e.Scene.reset()
	e.selection.reset()
}

// --- Queries ---

func (e *Engine) Selection() *Group       { return e.selection }
func (e *Engine) Keys() *KeyMap           { return e.keys }
func (e *Engine) Tool() Tool              { return e.tool }
func (e *Engine) State() State            { return e.state }
func (e *Engine) Cursor() string          { return e.cursor }
func (e *Engine) Pointer() document.Point { return e.pointer }

// BaseOptions are the style properties new elements are created with.
func (e *Engine) BaseOptions() document.Options { return e.base }

// ElementAt returns the topmost element under a client point, or nil.
func (e *Engine) ElementAt(clientX, clientY float64) *document.Element {
	return e.hitElement(e.Viewport().ToScene(clientX, clientY))
}

// --- Commands ---

// SetTool switches the active tool and clears the selection. Unknown tools
// are ignored.
func (e *Engine) SetTool(t Tool) bool {
	if !t.Valid() {
		return false
	}
	e.selection.Clear()
	e.tool = t
	e.updateCursor(e.pointer)
	e.RequestFrame(true)
	e.Scene.Fire(Event{Type: EventToolSelected, Tool: t})
	return true
}

// PointerDown starts at most one interaction, chosen in priority order:
// pan, draw, pick an element, grab a selection handle, drag the selection
// box, marquee.
func (e *Engine) PointerDown(ev PointerEvent) {
	if e.session != nil {
		return
	}
	p := e.Viewport().ToScene(ev.ClientX, ev.ClientY)
	e.pointer = p

	if ev.Button == ButtonWheel || ev.Button == ButtonMain && e.tool == ToolPan {
		e.startPan(ev)
		return
	}
	if ev.Button != ButtonMain {
		return
	}

	if t, ok := e.tool.Shape(); ok {
		e.startDrawing(t, p)
		return
	}
	if e.trySelectElement(ev, p) {
		return
	}
	if e.tryTransformSelection(ev, p) {
		return
	}
	if e.tool == ToolSelect {
		e.startMarquee(ev, p)
	}
}

func (e *Engine) PointerMove(ev PointerEvent) {
	e.pointer = e.Viewport().ToScene(ev.ClientX, ev.ClientY)
	if e.session != nil {
		e.session.move(ev)
		return
	}
	e.updateCursor(e.pointer)
}

func (e *Engine) PointerUp(ev PointerEvent) {
	e.pointer = e.Viewport().ToScene(ev.ClientX, ev.ClientY)
	e.finish()
}

// Blur ends the current interaction exactly as a pointer-up would.
func (e *Engine) Blur() {
	e.finish()
}

// KeyDown dispatches ev through the key bindings and reports whether it
// was handled.
func (e *Engine) KeyDown(ev KeyEvent) bool {
	return e.keys.Dispatch(ev)
}

// Wheel zooms with ctrl or meta held, scrolls horizontally with shift held
// and scrolls freely otherwise.
func (e *Engine) Wheel(ev WheelEvent) {
	if ev.DeltaX == 0 && ev.DeltaY == 0 {
		return
	}

	e.UpdateViewport(func(v document.Viewport) document.Viewport {
		switch {
		case ev.Ctrl || ev.Meta:
			v.Zoom = zoomBy(v.Zoom, ev.DeltaY)
		case ev.Shift:
			d := ev.DeltaY
			if d == 0 {
				d = ev.DeltaX
			}
			v.ScrollX -= d / v.Zoom
		default:
			v.ScrollX -= ev.DeltaX / v.Zoom
			v.ScrollY -= ev.DeltaY / v.Zoom
		}
		return v
	}, true)
}

// zoomBy applies one wheel step. Large deltas are clamped and zoom moves
// faster the further in it already is.
func zoomBy(zoom, delta float64) float64 {
	limit := document.ZoomStep * 100
	delta = math.Max(-limit, math.Min(delta, limit))

	amplification := math.Min(1, math.Abs(delta)/20)
	sign := math.Copysign(1, delta)
	next := zoom - delta/100 + math.Log10(math.Max(zoom, 1))*-sign*amplification
	return document.ClampZoom(next)
}

func (e *Engine) bindKeys() {
	bind := func(fn func(), combos ...string) {
		for _, c := range combos {
			e.keys.Register(c, fn)
		}
	}

	bind(func() { e.Undo() }, "C-z")
	bind(func() { e.Redo() }, "C-r", "C-S-z", "C-y")
	bind(e.DeleteSelected, "delete", "backspace", "d")
	bind(e.Copy, "C-c")
	bind(e.Cut, "C-x")
	bind(e.Paste, "C-v")
	bind(e.SelectAll, "C-a")
	bind(e.ClearSelection, "escape")
	bind(e.BringToFront, "[")
	bind(e.SendToBack, "]")

	tools := map[string]Tool{
		"p": ToolPan,
		"s": ToolSelect,
		"r": ToolRectangle,
		"e": ToolEllipse,
		"t": ToolTriangle,
	}
	for combo, t := range tools {
		bind(func() { e.SetTool(t) }, combo)
	}
}

func (e *Engine) overlay() render.Overlay {
	return render.Overlay{
		Selected: e.selection.Elements(),
		Bounds:   e.selection.Bounds(),
		Marquee:  e.marquee,
	}
}

func (e *Engine) updateCursor(p document.Point) {
	if b := e.selection.Bounds(); b != nil {
		if h := geometry.HitTestHandles(p, *b); h != geometry.HandleNone {
			e.cursor = geometry.CursorForHandle(h, b.Rotation)
			return
		}
	}

	switch {
	case e.tool == ToolPan:
		e.cursor = geometry.CursorGrab
	case e.tool != ToolSelect:
		e.cursor = geometry.CursorCrosshair
	default:
		e.cursor = geometry.CursorAuto
	}
}
