package engine

import (
	"slices"

	"github.com/nineyards/whiteboard/backend-go/internal/document"
	"github.com/nineyards/whiteboard/backend-go/internal/geometry"
)

// Lookup resolves element ids against the authoritative element array.
type Lookup interface {
	Element(id string) *document.Element
}

// Group is an ordered selection of element ids. It never owns elements:
// members are resolved through the scene on every read.
type Group struct {
	Observers

	scene  Lookup
	ids    []string
	bounds *document.Bounds
	cached bool
}

func NewGroup(scene Lookup) *Group {
	return &Group{scene: scene}
}

// --- Queries ---

func (g *Group) IDs() []string { return slices.Clone(g.ids) }
func (g *Group) Len() int      { return len(g.ids) }

func (g *Group) Includes(id string) bool {
	return slices.Contains(g.ids, id)
}

// Elements returns the members in selection order.
func (g *Group) Elements() []*document.Element {
	out := make([]*document.Element, 0, len(g.ids))
	for _, id := range g.ids {
		if el := g.scene.Element(id); el != nil {
			out = append(out, el)
		}
	}
	return out
}

// Bounds returns a copy of the memoized group bounds, computing them on the
// first call after invalidation. It is nil for an empty group.
func (g *Group) Bounds() *document.Bounds {
	if !g.cached {
		g.bounds = geometry.ComputeBounds(g.Elements())
		g.cached = true
	}
	if g.bounds == nil {
		return nil
	}
	b := *g.bounds
	return &b
}

// --- Commands ---

// SetElements replaces the membership. Unknown and duplicate ids are dropped.
func (g *Group) SetElements(ids []string) {
	g.ids = g.filter(nil, ids)
	g.changed()
}

// Push appends ids that are not already members.
func (g *Group) Push(ids ...string) {
	g.ids = g.filter(g.ids, ids)
	g.changed()
}

func (g *Group) Remove(ids ...string) {
	drop := idSet(ids)
	g.ids = slices.DeleteFunc(g.ids, func(id string) bool { return drop[id] })
	g.changed()
}

func (g *Group) Clear() {
	g.ids = nil
	g.changed()
}

// Retain drops members that no longer exist in the scene. It only fires
// when the membership actually shrank.
func (g *Group) Retain() {
	n := len(g.ids)
	g.ids = slices.DeleteFunc(g.ids, func(id string) bool { return g.scene.Element(id) == nil })
	if len(g.ids) != n {
		g.changed()
	}
}

// SetRotation rotates the memoized bounds in place. It does nothing when
// the bounds have not been computed or are empty.
func (g *Group) SetRotation(angle float64) {
	if g.cached && g.bounds != nil {
		g.bounds.Rotation = angle
	}
}

// ClearBounds invalidates the memoized bounds without notifying.
func (g *Group) ClearBounds() {
	g.bounds = nil
	g.cached = false
}

func (g *Group) filter(into, ids []string) []string {
	out := slices.Clone(into)
	for _, id := range ids {
		if slices.Contains(out, id) || g.scene.Element(id) == nil {
			continue
		}
		out = append(out, id)
	}
	return out
}

func (g *Group) changed() {
	g.ClearBounds()
	g.Fire(Event{Type: EventSelectionUpdated, Selected: g.Elements()})
}
