package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nineyards/whiteboard/backend-go/internal/document"
	"github.com/nineyards/whiteboard/backend-go/internal/render"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.UnixMilli(1_700_000_000_000)}
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// seedCounter counts generator calls per element seed.
type seedCounter struct {
	inner render.Generator
	calls map[int64]int
}

func newSeedCounter() *seedCounter {
	return &seedCounter{inner: render.NewSketchGenerator(), calls: make(map[int64]int)}
}

func (g *seedCounter) Rectangle(x, y, w, h float64, o render.Options) render.Shape {
	g.calls[o.Seed]++
	return g.inner.Rectangle(x, y, w, h, o)
}

func (g *seedCounter) Ellipse(cx, cy, w, h float64, o render.Options) render.Shape {
	g.calls[o.Seed]++
	return g.inner.Ellipse(cx, cy, w, h, o)
}

func (g *seedCounter) Path(p render.Path, o render.Options) render.Shape {
	g.calls[o.Seed]++
	return g.inner.Path(p, o)
}

func rect(id string, seed int64, x, y, w, h float64) *document.Element {
	return &document.Element{
		ID:              id,
		Type:            document.TypeRectangle,
		X:               x,
		Y:               y,
		Width:           w,
		Height:          h,
		StrokeColor:     "#000000",
		BackgroundColor: "#ffddaa",
		FillStyle:       document.FillSolid,
		StrokeWidth:     document.StrokeThin,
		StrokeType:      document.StrokeSolid,
		Roughness:       document.RoughnessLow,
		Rounding:        document.RoundingSharp,
		Opacity:         100,
		Seed:            seed,
		Version:         1,
		VersionNonce:    1,
	}
}

type harness struct {
	*Engine
	clock  *fakeClock
	gen    *seedCounter
	events map[EventType]int
	last   map[EventType]Event
}

// newHarness builds an engine at zoom 1 with no scroll, so client and
// scene coordinates coincide.
func newHarness(t *testing.T, elements ...*document.Element) *harness {
	t.Helper()

	clock := newFakeClock()
	gen := newSeedCounter()
	e, err := New(render.NewRecorder(800, 600), gen, Settings{
		Elements:         elements,
		Viewport:         document.Viewport{Zoom: 1},
		MinFrameInterval: DefaultMinFrameInterval,
		Clock:            clock.Now,
	})
	require.NoError(t, err)
	t.Cleanup(e.Close)

	h := &harness{
		Engine: e,
		clock:  clock,
		gen:    gen,
		events: make(map[EventType]int),
		last:   make(map[EventType]Event),
	}
	for _, et := range []EventType{EventElementsChanged, EventViewportChanged, EventToolSelected, EventSelectionUpdated} {
		e.On(et, func(ev Event) {
			h.events[ev.Type]++
			h.last[ev.Type] = ev
		})
	}
	return h
}

func (h *harness) down(x, y float64, mods ...Modifiers) {
	h.PointerDown(PointerEvent{ClientX: x, ClientY: y, Button: ButtonMain, Modifiers: firstMods(mods)})
}

func (h *harness) move(x, y float64, mods ...Modifiers) {
	h.PointerMove(PointerEvent{ClientX: x, ClientY: y, Modifiers: firstMods(mods)})
}

func (h *harness) up(x, y float64) {
	h.PointerUp(PointerEvent{ClientX: x, ClientY: y})
}

func (h *harness) click(x, y float64, mods ...Modifiers) {
	h.down(x, y, mods...)
	h.up(x, y)
}

func (h *harness) el(id string) *document.Element {
	return h.Element(id)
}

func firstMods(mods []Modifiers) Modifiers {
	if len(mods) == 0 {
		return Modifiers{}
	}
	return mods[0]
}

var shift = Modifiers{Shift: true}
