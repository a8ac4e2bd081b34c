package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nineyards/whiteboard/backend-go/internal/document"
)

type lookupMap map[string]*document.Element

func (m lookupMap) Element(id string) *document.Element { return m[id] }

func TestGroupMembership(t *testing.T) {
	scene := lookupMap{
		"a": rect("a", 1, 0, 0, 1, 1),
		"b": rect("b", 2, 10, 10, 1, 1),
		"c": rect("c", 3, 5, 5, 1, 1),
	}
	g := NewGroup(scene)

	updates := 0
	g.On(EventSelectionUpdated, func(Event) { updates++ })

	g.SetElements([]string{"a", "a", "missing", "b"})
	assert.Equal(t, []string{"a", "b"}, g.IDs())

	g.Push("b", "c")
	assert.Equal(t, []string{"a", "b", "c"}, g.IDs())
	assert.True(t, g.Includes("c"))

	g.Remove("a")
	assert.Equal(t, []string{"b", "c"}, g.IDs())

	g.Clear()
	assert.Zero(t, g.Len())
	assert.Nil(t, g.Bounds())
	assert.Equal(t, 4, updates)
}

func TestGroupBoundsAreMemoized(t *testing.T) {
	scene := lookupMap{
		"a": rect("a", 1, 0, 0, 1, 1),
		"b": rect("b", 2, 10, 10, 1, 1),
	}
	g := NewGroup(scene)
	g.SetElements([]string{"a", "b"})

	b := g.Bounds()
	require.NotNil(t, b)
	assert.Equal(t, document.Bounds{X: 0, Y: 0, Width: 11, Height: 11}, *b)

	scene["b"] = rect("b", 2, 20, 20, 1, 1)
	assert.Equal(t, 11.0, g.Bounds().Width, "stale until cleared")

	updates := 0
	g.On(EventSelectionUpdated, func(Event) { updates++ })
	g.ClearBounds()
	assert.Equal(t, 21.0, g.Bounds().Width)
	assert.Zero(t, updates, "clearing bounds does not notify")
}

func TestGroupSetRotation(t *testing.T) {
	scene := lookupMap{"a": rect("a", 1, 0, 0, 4, 4)}
	g := NewGroup(scene)
	g.SetElements([]string{"a"})

	g.SetRotation(1)
	assert.Equal(t, 0.0, g.Bounds().Rotation, "no-op before bounds are computed")

	g.SetRotation(1)
	assert.Equal(t, 1.0, g.Bounds().Rotation)

	copied := g.Bounds()
	copied.Rotation = 3
	assert.Equal(t, 1.0, g.Bounds().Rotation, "callers get a copy")

	empty := NewGroup(scene)
	empty.Bounds()
	empty.SetRotation(2)
	assert.Nil(t, empty.Bounds())
}

func TestGroupRetain(t *testing.T) {
	scene := lookupMap{
		"a": rect("a", 1, 0, 0, 1, 1),
		"b": rect("b", 2, 10, 10, 1, 1),
	}
	g := NewGroup(scene)
	g.SetElements([]string{"a", "b"})

	updates := 0
	g.On(EventSelectionUpdated, func(Event) { updates++ })

	g.Retain()
	assert.Zero(t, updates)

	delete(scene, "a")
	g.Retain()
	assert.Equal(t, []string{"b"}, g.IDs())
	assert.Equal(t, 1, updates)
}
