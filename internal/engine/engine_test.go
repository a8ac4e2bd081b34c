package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nineyards/whiteboard/backend-go/internal/document"
	"github.com/nineyards/whiteboard/backend-go/internal/geometry"
	"github.com/nineyards/whiteboard/backend-go/internal/render"
)

func TestDrawRectangleByDragging(t *testing.T) {
	h := newHarness(t)
	require.True(t, h.SetTool(ToolRectangle))

	h.down(100, 100)
	assert.Equal(t, StateDrawing, h.State())
	h.move(150, 130)
	h.up(150, 130)

	els := h.Elements()
	require.Len(t, els, 1)
	el := els[0]
	assert.Equal(t, document.TypeRectangle, el.Type)
	assert.Equal(t, 100.0, el.X)
	assert.Equal(t, 100.0, el.Y)
	assert.Equal(t, 50.0, el.Width)
	assert.Equal(t, 30.0, el.Height)
	assert.Equal(t, 2, el.Version)

	assert.Equal(t, StateIdle, h.State())
	assert.Equal(t, []string{el.ID}, h.Selection().IDs())
	assert.Equal(t, 1, h.events[EventElementsChanged], "drawing commits once")
}

func TestClickSelectsTopmost(t *testing.T) {
	h := newHarness(t, rect("a", 1, 0, 0, 50, 50), rect("b", 2, 25, 25, 50, 50))

	h.click(30, 30)
	assert.Equal(t, []string{"b"}, h.Selection().IDs())

	h.click(10, 10)
	assert.Equal(t, []string{"a"}, h.Selection().IDs())

	assert.Equal(t, "b", h.ElementAt(30, 30).ID)
	assert.Nil(t, h.ElementAt(90, 90))
}

func TestDragMovesSelectionAndCommitsOnce(t *testing.T) {
	h := newHarness(t, rect("a", 1, 10, 10, 20, 20))
	h.SetViewport(document.Viewport{Zoom: 2}, true)

	h.down(40, 40)
	assert.Equal(t, StateDragging, h.State())
	h.move(50, 60)
	assert.Equal(t, 1, h.el("a").Version, "in-flight moves are not versioned")
	h.move(60, 60)
	h.up(60, 60)

	a := h.el("a")
	assert.Equal(t, 20.0, a.X, "client deltas are divided by zoom")
	assert.Equal(t, 20.0, a.Y)
	assert.Equal(t, 2, a.Version)
	assert.Equal(t, 1, h.events[EventElementsChanged])

	undo, _ := h.History().Depth()
	assert.Equal(t, 2, undo)
}

func TestShiftClickTogglesSelection(t *testing.T) {
	h := newHarness(t, rect("a", 1, 0, 0, 10, 10), rect("b", 2, 20, 0, 10, 10))

	h.click(5, 5)
	h.click(25, 5, shift)
	assert.Equal(t, []string{"a", "b"}, h.Selection().IDs())

	h.click(5, 5, shift)
	assert.Equal(t, []string{"b"}, h.Selection().IDs(), "shift-click without movement deselects")

	h.down(25, 5, shift)
	h.move(30, 5, shift)
	h.up(30, 5)
	assert.Equal(t, []string{"b"}, h.Selection().IDs(), "shift-drag keeps the element selected")
	assert.Equal(t, 25.0, h.el("b").X)
}

func TestDragInsideSelectionMovesWholeGroup(t *testing.T) {
	h := newHarness(t, rect("a", 1, 0, 0, 10, 10), rect("b", 2, 20, 0, 10, 10))
	h.SelectAll()

	h.down(5, 5)
	h.move(5, 15)
	h.up(5, 15)

	assert.Equal(t, []string{"a", "b"}, h.Selection().IDs())
	assert.Equal(t, 10.0, h.el("a").Y)
	assert.Equal(t, 10.0, h.el("b").Y)
}

func TestDragEmptySpaceInsideSelectionBounds(t *testing.T) {
	h := newHarness(t, rect("a", 1, 0, 0, 10, 10), rect("b", 2, 20, 20, 10, 10))
	h.SelectAll()

	h.down(15, 15)
	assert.Equal(t, StateDragging, h.State())
	h.move(18, 15)
	h.up(18, 15)

	assert.Equal(t, 3.0, h.el("a").X)
	assert.Equal(t, 23.0, h.el("b").X)
}

func TestResizeViaHandle(t *testing.T) {
	h := newHarness(t, rect("a", 1, 100, 100, 50, 50))
	h.click(125, 125)

	h.move(150, 150)
	assert.Equal(t, geometry.CursorNWSEResize, h.Cursor())

	h.down(150, 150)
	assert.Equal(t, StateResizing, h.State())
	h.move(200, 200)
	h.up(200, 200)

	a := h.el("a")
	assert.Equal(t, 100.0, a.X)
	assert.Equal(t, 100.0, a.Y)
	assert.Equal(t, 100.0, a.Width)
	assert.Equal(t, 100.0, a.Height)
}

func TestRotateViaHandle(t *testing.T) {
	h := newHarness(t, rect("a", 1, 100, 100, 50, 50))
	h.click(125, 125)

	h.move(125, 90)
	assert.Equal(t, geometry.CursorGrab, h.Cursor())

	h.down(125, 90)
	assert.Equal(t, StateRotating, h.State())
	h.move(175, 125)
	h.up(175, 125)

	a := h.el("a")
	assert.InDelta(t, math.Pi/2, a.Rotation, 1e-9)
	assert.Equal(t, 100.0, a.X)
	assert.Equal(t, 100.0, a.Y)
}

func TestRotateGroupViaHandle(t *testing.T) {
	a := rect("a", 1, 0, 0, 10, 10)
	a.Rotation = 0.3
	b := rect("b", 2, 30, 20, 10, 10)
	b.Rotation = 1.1
	h := newHarness(t, a, b)
	h.SelectAll()

	h.down(20, -10)
	assert.Equal(t, StateRotating, h.State())
	h.move(40, 15)
	h.up(40, 15)

	bounds := h.Selection().Bounds()
	require.NotNil(t, bounds)
	assert.Zero(t, bounds.Rotation, "bounds are axis-aligned after the gesture")

	for _, orig := range []*document.Element{a, b} {
		got := h.el(orig.ID)
		assertAngle(t, orig.Rotation, got.Rotation-math.Pi/2)
	}
}

func TestResizeGroupAfterRotate(t *testing.T) {
	h := newHarness(t, rect("a", 1, 100, 100, 40, 40), rect("b", 2, 200, 100, 40, 40))
	h.SelectAll()

	h.down(170, 90)
	require.Equal(t, StateRotating, h.State())
	h.move(300, 120)
	h.up(300, 120)

	bounds := h.Selection().Bounds()
	require.NotNil(t, bounds)
	assert.InDelta(t, 150, bounds.X, 1e-9)
	assert.InDelta(t, 50, bounds.Y, 1e-9)
	assert.InDelta(t, 40, bounds.Width, 1e-9)
	assert.InDelta(t, 140, bounds.Height, 1e-9)
	assert.Zero(t, bounds.Rotation)

	h.down(170, 191)
	require.Equal(t, StateResizing, h.State())
	h.move(170, 192)
	h.up(170, 192)

	for _, id := range []string{"a", "b"} {
		got := h.el(id)
		assert.InDelta(t, 40, got.Width, 1e-9, id)
		assert.InDelta(t, 40*142.0/140, got.Height, 1e-9, id)
	}
}

func TestMarqueeSelectsContainedOnly(t *testing.T) {
	h := newHarness(t,
		rect("a", 1, 10, 10, 10, 10),
		rect("b", 2, 15, 15, 100, 100),
		rect("c", 3, 200, 200, 10, 10),
	)

	h.down(0, 0)
	assert.Equal(t, StateMarquee, h.State())
	h.move(50, 50)
	assert.NotNil(t, h.overlay().Marquee)
	h.up(50, 50)

	assert.Equal(t, []string{"a"}, h.Selection().IDs())
	assert.Nil(t, h.overlay().Marquee)

	h.click(205, 205)
	h.down(0, 0, shift)
	h.move(50, 50, shift)
	h.up(50, 50)
	assert.Equal(t, []string{"c", "a"}, h.Selection().IDs(), "shift extends the selection")
}

func TestPanning(t *testing.T) {
	h := newHarness(t)
	h.SetTool(ToolPan)

	h.down(0, 0)
	assert.Equal(t, StatePanning, h.State())
	assert.Equal(t, geometry.CursorGrabbing, h.Cursor())
	h.move(20, 10)
	assert.Zero(t, h.events[EventViewportChanged], "viewport is announced on release")
	h.up(20, 10)

	assert.Equal(t, 20.0, h.Viewport().ScrollX)
	assert.Equal(t, 10.0, h.Viewport().ScrollY)
	assert.Equal(t, 1, h.events[EventViewportChanged])
	assert.Equal(t, geometry.CursorGrab, h.Cursor())

	h.SetTool(ToolSelect)
	h.PointerDown(PointerEvent{ClientX: 0, ClientY: 0, Button: ButtonWheel})
	assert.Equal(t, StatePanning, h.State(), "middle button pans with any tool")
	h.move(-10, 0)
	h.up(-10, 0)
	assert.Equal(t, 10.0, h.Viewport().ScrollX)
}

func TestSecondaryButtonIsIgnored(t *testing.T) {
	h := newHarness(t, rect("a", 1, 0, 0, 10, 10))
	h.PointerDown(PointerEvent{ClientX: 5, ClientY: 5, Button: ButtonSecondary})
	assert.Equal(t, StateIdle, h.State())
	assert.Zero(t, h.Selection().Len())
}

func TestPointerDownIgnoredDuringSession(t *testing.T) {
	h := newHarness(t, rect("a", 1, 0, 0, 10, 10), rect("b", 2, 20, 0, 10, 10))
	h.down(5, 5)
	h.down(25, 5)
	assert.Equal(t, []string{"a"}, h.Selection().IDs())
	h.up(25, 5)
}

func TestBlurEndsInteraction(t *testing.T) {
	h := newHarness(t, rect("a", 1, 0, 0, 10, 10))

	h.down(5, 5)
	h.move(10, 5)
	assert.Equal(t, 1, h.el("a").Version)

	h.Blur()
	assert.Equal(t, StateIdle, h.State())
	assert.Equal(t, 5.0, h.el("a").X)
	assert.Equal(t, 2, h.el("a").Version)

	h.move(50, 5)
	assert.Equal(t, 5.0, h.el("a").X, "no session outlives the blur")
}

func TestWheel(t *testing.T) {
	h := newHarness(t)

	h.Wheel(WheelEvent{})
	assert.Zero(t, h.events[EventViewportChanged])

	h.Wheel(WheelEvent{DeltaX: 10, DeltaY: 20})
	assert.Equal(t, document.Viewport{ScrollX: -10, ScrollY: -20, Zoom: 1}, h.Viewport())

	h.Wheel(WheelEvent{DeltaY: 5, Modifiers: shift})
	assert.Equal(t, document.Viewport{ScrollX: -15, ScrollY: -20, Zoom: 1}, h.Viewport())

	h.Wheel(WheelEvent{DeltaY: 10, Modifiers: Modifiers{Ctrl: true}})
	assert.InDelta(t, 0.9, h.Viewport().Zoom, 1e-9)

	h.Wheel(WheelEvent{DeltaY: -500, Modifiers: Modifiers{Meta: true}})
	assert.InDelta(t, 1.0, h.Viewport().Zoom, 1e-9, "large deltas are clamped")

	assert.Equal(t, 4, h.events[EventViewportChanged])
}

func TestZoomStaysInRange(t *testing.T) {
	z := 1.0
	for range 200 {
		z = zoomBy(z, -100)
	}
	assert.Equal(t, document.MaxZoom, z)

	for range 200 {
		z = zoomBy(z, 100)
	}
	assert.Equal(t, document.MinZoom, z)
}

func TestUndoRedoShortcuts(t *testing.T) {
	h := newHarness(t, rect("a", 1, 0, 0, 10, 10))
	h.click(5, 5)
	h.down(5, 5)
	h.move(25, 5)
	h.up(25, 5)
	require.Equal(t, 20.0, h.el("a").X)

	assert.True(t, h.KeyDown(KeyEvent{Key: "z", Modifiers: Modifiers{Ctrl: true}}))
	assert.Equal(t, 0.0, h.el("a").X)
	assert.Zero(t, h.Selection().Len(), "undo clears the selection")

	assert.True(t, h.KeyDown(KeyEvent{Key: "Z", Modifiers: Modifiers{Ctrl: true, Shift: true}}))
	assert.Equal(t, 20.0, h.el("a").X)

	assert.False(t, h.KeyDown(KeyEvent{Key: "q"}))
}

func TestDeleteShortcut(t *testing.T) {
	h := newHarness(t, rect("a", 1, 0, 0, 10, 10), rect("b", 2, 20, 0, 10, 10))
	h.click(5, 5)

	assert.True(t, h.KeyDown(KeyEvent{Key: "Delete"}))
	assert.Equal(t, []string{"b"}, elementIDs(h.Elements()))
	assert.Zero(t, h.Selection().Len())

	assert.True(t, h.Undo())
	assert.Equal(t, []string{"a", "b"}, elementIDs(h.Elements()))
}

func TestToolShortcuts(t *testing.T) {
	h := newHarness(t)

	tests := map[string]Tool{
		"r": ToolRectangle,
		"e": ToolEllipse,
		"t": ToolTriangle,
		"p": ToolPan,
		"s": ToolSelect,
	}
	for key, want := range tests {
		require.True(t, h.KeyDown(KeyEvent{Key: key}))
		assert.Equal(t, want, h.Tool())
		assert.Equal(t, want, h.last[EventToolSelected].Tool)
	}
	assert.Equal(t, len(tests), h.events[EventToolSelected])
}

func TestSetToolClearsSelection(t *testing.T) {
	h := newHarness(t, rect("a", 1, 0, 0, 10, 10))
	h.Select([]string{"a"})

	require.True(t, h.SetTool(ToolEllipse))
	assert.Zero(t, h.Selection().Len())

	assert.False(t, h.SetTool("lasso"))
	assert.Equal(t, ToolEllipse, h.Tool())
}

func TestCopyPasteAtPointer(t *testing.T) {
	h := newHarness(t, rect("a", 1, 0, 0, 10, 10))
	h.click(5, 5)
	require.True(t, h.KeyDown(KeyEvent{Key: "c", Modifiers: Modifiers{Ctrl: true}}))

	h.move(100, 100)
	require.True(t, h.KeyDown(KeyEvent{Key: "v", Modifiers: Modifiers{Ctrl: true}}))

	els := h.Elements()
	require.Len(t, els, 2)
	pasted := els[1]
	assert.NotEqual(t, "a", pasted.ID)
	assert.Equal(t, 95.0, pasted.X)
	assert.Equal(t, 95.0, pasted.Y)
	assert.Equal(t, 1, pasted.Version)
	assert.Equal(t, []string{pasted.ID}, h.Selection().IDs())

	assert.True(t, h.Undo())
	assert.Len(t, h.Elements(), 1)
}

func TestPasteWithEmptyClipboard(t *testing.T) {
	h := newHarness(t)
	h.Paste()
	assert.Empty(t, h.Elements())
	assert.Zero(t, h.events[EventElementsChanged])
}

func TestCutRemovesAndKeepsCopy(t *testing.T) {
	h := newHarness(t, rect("a", 1, 0, 0, 10, 10))
	h.Select([]string{"a"})
	h.Cut()

	assert.Empty(t, h.Elements())
	require.Len(t, h.Clipboard(), 1)
	assert.Equal(t, "a", h.Clipboard()[0].ID)
}

func TestFrontAndBack(t *testing.T) {
	h := newHarness(t,
		rect("a", 1, 0, 0, 10, 10),
		rect("b", 2, 20, 0, 10, 10),
		rect("c", 3, 40, 0, 10, 10),
	)
	h.Select([]string{"a"})

	h.KeyDown(KeyEvent{Key: "["})
	assert.Equal(t, []string{"b", "c", "a"}, elementIDs(h.Elements()))

	h.KeyDown(KeyEvent{Key: "]"})
	assert.Equal(t, []string{"a", "b", "c"}, elementIDs(h.Elements()))
}

func TestPatchSelectedSetsBaseProperties(t *testing.T) {
	h := newHarness(t)
	h.PatchSelected(document.Options{StrokeColor: document.Ptr("#ff0000"), X: document.Ptr(5.0)}, true)

	base := h.BaseOptions()
	require.NotNil(t, base.StrokeColor)
	assert.Equal(t, "#ff0000", *base.StrokeColor)
	assert.Nil(t, base.X, "geometry never becomes a base property")

	h.SetTool(ToolEllipse)
	h.down(10, 10)
	h.move(30, 30)
	h.up(30, 30)
	els := h.Elements()
	require.Len(t, els, 1)
	assert.Equal(t, "#ff0000", els[0].StrokeColor)
	assert.Equal(t, document.TypeEllipse, els[0].Type)

	h.Select([]string{els[0].ID})
	version := h.el(els[0].ID).Version
	h.PatchSelected(document.Options{BackgroundColor: document.Ptr("#00ff00")}, true)
	got := h.el(els[0].ID)
	assert.Equal(t, "#00ff00", got.BackgroundColor)
	assert.Equal(t, version+1, got.Version)
}

func TestSelectionFollowsRemovals(t *testing.T) {
	a := rect("a", 1, 0, 0, 10, 10)
	h := newHarness(t, a, rect("b", 2, 20, 0, 10, 10))
	h.SelectAll()

	h.SetElements([]*document.Element{a})
	assert.Equal(t, []string{"a"}, h.Selection().IDs())
	require.Len(t, h.last[EventSelectionUpdated].Selected, 1)
}

func TestSelectionSurvivesCollaboratorOff(t *testing.T) {
	h := newHarness(t, rect("a", 1, 0, 0, 10, 10), rect("b", 2, 20, 0, 10, 10))
	h.Select([]string{"a"})

	h.Off(EventElementsChanged)
	h.Off(EventSelectionUpdated)
	h.RemoveElements("a")

	assert.Empty(t, h.Selection().IDs())
	assert.False(t, h.Selection().Includes("a"))

	updates := 0
	h.On(EventSelectionUpdated, func(Event) { updates++ })
	h.Select([]string{"b"})
	assert.Equal(t, 1, updates, "selection updates still reach the scene")
}

func TestDrawingStampsSceneClock(t *testing.T) {
	h := newHarness(t)
	require.True(t, h.SetTool(ToolRectangle))

	h.down(10, 10)
	els := h.Elements()
	require.Len(t, els, 1)
	assert.Equal(t, h.clock.Now().UnixMilli(), els[0].Updated)
	h.up(10, 10)
}

func TestReplaceClosesOldEngineFirst(t *testing.T) {
	rec := render.NewRecorder(200, 100)
	old, err := New(rec, newSeedCounter(), Settings{Background: "#111111", Viewport: document.Viewport{Zoom: 1}})
	require.NoError(t, err)
	require.True(t, old.SetTool(ToolRectangle))
	old.PointerDown(PointerEvent{ClientX: 10, ClientY: 10, Button: ButtonMain})
	require.Equal(t, StateDrawing, old.State())

	next, err := Replace(old, rec, newSeedCounter(), Settings{Background: "#222222"})
	require.NoError(t, err)
	t.Cleanup(next.Close)

	assert.Equal(t, StateIdle, old.State())
	cmds := rec.Commands()
	require.GreaterOrEqual(t, len(cmds), 2)
	assert.Equal(t, "#222222", cmds[1].Fill, "the last frame belongs to the new engine")
}

func TestCloseReleasesBindings(t *testing.T) {
	h := newHarness(t, rect("a", 1, 0, 0, 10, 10))
	h.Close()

	assert.False(t, h.KeyDown(KeyEvent{Key: "z", Modifiers: Modifiers{Ctrl: true}}))
	assert.Zero(t, h.Listeners(EventElementsChanged))
	assert.Zero(t, h.Keys().Len())
}
