package engine

import (
	"errors"
	"slices"
	"time"

	"github.com/nineyards/whiteboard/backend-go/internal/document"
	"github.com/nineyards/whiteboard/backend-go/internal/render"
)

var (
	ErrNoSurface = errors.New("engine: no drawing surface")
	ErrFixedSize = errors.New("engine: surface cannot be resized")
)

// Scene owns the authoritative element array, the viewport and the
// renderer. Every mutation goes through its API so that cache
// invalidation, versioning and history stay consistent.
//
// A Scene is not safe for concurrent use.
type Scene struct {
	Observers

	renderer   *render.Renderer
	history    *History
	elements   []*document.Element
	viewport   document.Viewport
	background string
	overlay    func() render.Overlay

	clock       func() time.Time
	minInterval time.Duration
	lastFrame   time.Time
	frames      int
}

// NewScene binds a scene to surface. A nil generator selects the sketch
// generator. The scene draws its first frame before returning.
func NewScene(surface render.Surface, gen render.Generator, s Settings) (*Scene, error) {
	if surface == nil {
		return nil, ErrNoSurface
	}
	if gen == nil {
		gen = render.NewSketchGenerator()
	}
	s = s.withDefaults()

	sc := &Scene{
		renderer:    render.NewRenderer(surface, gen),
		elements:    slices.Clone(orEmpty(s.Elements)),
		viewport:    s.Viewport.Clamped(),
		background:  s.Background,
		clock:       s.Clock,
		minInterval: s.MinFrameInterval,
	}
	sc.history = NewHistory(sc.elements)

	if s.Width > 0 && s.Height > 0 {
		if err := sc.resizeSurface(s.Width, s.Height); err != nil && !errors.Is(err, ErrFixedSize) {
			return nil, err
		}
	}

	sc.RequestFrame(true)
	return sc, nil
}

// --- Queries ---

// Elements returns the current element array in paint order. The records
// are shared and must not be modified.
func (s *Scene) Elements() []*document.Element {
	return slices.Clone(s.elements)
}

// Element returns the element with id, or nil.
func (s *Scene) Element(id string) *document.Element {
	if i := s.IndexOf(id); i >= 0 {
		return s.elements[i]
	}
	return nil
}

func (s *Scene) IndexOf(id string) int {
	return slices.IndexFunc(s.elements, func(el *document.Element) bool { return el.ID == id })
}

func (s *Scene) Viewport() document.Viewport { return s.viewport }
func (s *Scene) Background() string          { return s.background }
func (s *Scene) Renderer() *render.Renderer  { return s.renderer }
func (s *Scene) Cache() *render.ShapeCache   { return s.renderer.Cache() }
func (s *Scene) Surface() render.Surface     { return s.renderer.Surface() }
func (s *Scene) History() *History           { return s.history }
func (s *Scene) Frames() int                 { return s.frames }
func (s *Scene) Now() time.Time              { return s.clock() }

// SetOverlay installs the source of the interaction layer drawn above
// the elements.
func (s *Scene) SetOverlay(fn func() render.Overlay) {
	s.overlay = fn
}

// --- Commands ---

// SetElements replaces the element array and records a checkpoint.
func (s *Scene) SetElements(elements []*document.Element) {
	s.replace(elements)
	s.notifyElements(true)
}

// AddElements appends elements on top of the paint order. Without commit
// the additions are drawn but neither announced nor recorded.
func (s *Scene) AddElements(elements []*document.Element, commit bool) {
	if len(elements) == 0 {
		return
	}
	next := slices.Clone(s.elements)
	for _, el := range elements {
		s.renderer.Cache().Delete(el.ID)
		next = append(next, el)
	}
	s.elements = next
	s.notifyElements(commit)
}

// RemoveElements drops the elements with the given ids and commits.
func (s *Scene) RemoveElements(ids ...string) {
	drop := idSet(ids)
	next := make([]*document.Element, 0, len(s.elements))
	for _, el := range s.elements {
		if drop[el.ID] {
			s.renderer.Cache().Delete(el.ID)
			continue
		}
		next = append(next, el)
	}
	if len(next) == len(s.elements) {
		return
	}
	s.elements = next
	s.notifyElements(true)
}

// MutateElements applies update to a copy of every element named in ids
// and swaps the copies in. Identity and version fields are restored after
// update runs; with commit they are then bumped once, a checkpoint is
// recorded and observers are notified.
func (s *Scene) MutateElements(ids []string, update func(el *document.Element), commit bool) {
	want := idSet(ids)
	if len(want) == 0 {
		return
	}

	now := s.clock().UnixMilli()
	next := slices.Clone(s.elements)
	touched := false
	for i, el := range next {
		if !want[el.ID] {
			continue
		}
		c := el.Clone()
		if update != nil {
			update(c)
		}
		c.ID, c.Type, c.Seed = el.ID, el.Type, el.Seed
		c.Version, c.VersionNonce, c.Updated = el.Version, el.VersionNonce, el.Updated
		if commit {
			c.Version++
			c.VersionNonce = document.RandomNonce()
			c.Updated = max(now, el.Updated)
		}
		next[i] = c
		s.renderer.Cache().Delete(c.ID)
		touched = true
	}
	if !touched {
		return
	}

	s.elements = next
	s.notifyElements(commit)
}

// MutateElement is MutateElements for a single id.
func (s *Scene) MutateElement(id string, update func(el *document.Element), commit bool) {
	s.MutateElements([]string{id}, update, commit)
}

// PatchElements applies a field-level patch to the elements in ids.
func (s *Scene) PatchElements(ids []string, patch document.Options, commit bool) {
	s.MutateElements(ids, patch.Apply, commit)
}

// CommitElements closes an interaction: it versions the elements in ids
// as they are now and records a checkpoint.
func (s *Scene) CommitElements(ids []string) {
	if len(ids) == 0 {
		s.notifyElements(true)
		return
	}
	s.MutateElements(ids, nil, true)
}

// Reorder moves the elements in ids to the top (front) or bottom of the
// paint order, keeping their relative order, and commits.
func (s *Scene) Reorder(ids []string, front bool) {
	move := idSet(ids)
	var picked, rest []*document.Element
	for _, el := range s.elements {
		if move[el.ID] {
			picked = append(picked, el)
		} else {
			rest = append(rest, el)
		}
	}
	if len(picked) == 0 {
		return
	}

	next := make([]*document.Element, 0, len(s.elements))
	if front {
		next = append(append(next, rest...), picked...)
	} else {
		next = append(append(next, picked...), rest...)
	}
	if slices.Equal(next, s.elements) {
		return
	}
	s.elements = next
	s.notifyElements(true)
}

// Undo restores the previous checkpoint. It reports false at the bottom of
// the stack.
func (s *Scene) Undo() bool {
	elements, ok := s.history.Undo()
	if !ok {
		return false
	}
	s.restore(elements)
	return true
}

// Redo re-applies the last undone checkpoint.
func (s *Scene) Redo() bool {
	elements, ok := s.history.Redo()
	if !ok {
		return false
	}
	s.restore(elements)
	return true
}

// SetViewport replaces the viewport. Observers are only notified when
// force is set; unforced changes just request a throttled frame.
func (s *Scene) SetViewport(v document.Viewport, force bool) {
	if v.Zoom == 0 {
		v.Zoom = s.viewport.Zoom
	}
	s.viewport = v.Clamped()
	s.notifyViewport(force)
}

// UpdateViewport derives the next viewport from the current one.
func (s *Scene) UpdateViewport(fn func(v document.Viewport) document.Viewport, force bool) {
	s.SetViewport(fn(s.viewport), force)
}

func (s *Scene) SetBackground(color string) {
	if color == "" {
		color = document.DefaultBackground
	}
	s.background = color
	s.RequestFrame(true)
}

// Resize changes the surface size and redraws.
func (s *Scene) Resize(width, height int) error {
	if err := s.resizeSurface(width, height); err != nil {
		return err
	}
	s.RequestFrame(true)
	return nil
}

// RequestFrame draws a frame. Unforced requests closer together than the
// minimum frame interval are dropped. It reports whether a frame was drawn.
func (s *Scene) RequestFrame(force bool) bool {
	now := s.clock()
	if !force && s.frames > 0 && now.Sub(s.lastFrame) < s.minInterval {
		return false
	}
	s.lastFrame = now
	s.frames++

	frame := render.Frame{
		Elements:   s.elements,
		Viewport:   s.viewport,
		Background: s.background,
	}
	if s.overlay != nil {
		frame.Overlay = s.overlay()
	}
	s.renderer.Render(frame)
	return true
}

// --- Internals ---

func (s *Scene) resizeSurface(width, height int) error {
	r, ok := s.renderer.Surface().(render.Resizable)
	if !ok {
		return ErrFixedSize
	}
	return r.Resize(width, height)
}

// replace swaps in a new element array, dropping cache entries of records
// that were removed or replaced.
func (s *Scene) replace(elements []*document.Element) {
	next := slices.Clone(orEmpty(elements))
	prev := make(map[string]*document.Element, len(s.elements))
	for _, el := range s.elements {
		prev[el.ID] = el
	}
	for _, el := range next {
		if prev[el.ID] != el {
			s.renderer.Cache().Delete(el.ID)
		}
		delete(prev, el.ID)
	}
	for id := range prev {
		s.renderer.Cache().Delete(id)
	}
	s.elements = next
}

func (s *Scene) restore(elements []*document.Element) {
	s.replace(elements)
	s.RequestFrame(true)
	s.Fire(Event{Type: EventElementsChanged, Elements: s.Elements()})
}

func (s *Scene) notifyElements(commit bool) {
	s.RequestFrame(commit)
	if !commit {
		return
	}
	s.history.Record(s.elements)
	s.Fire(Event{Type: EventElementsChanged, Elements: s.Elements()})
}

func (s *Scene) notifyViewport(force bool) {
	s.RequestFrame(force)
	if force {
		s.Fire(Event{Type: EventViewportChanged, Viewport: s.viewport})
	}
}

func idSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
