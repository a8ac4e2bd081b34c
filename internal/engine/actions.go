package engine

import (
	"github.com/nineyards/whiteboard/backend-go/internal/document"
	"github.com/nineyards/whiteboard/backend-go/internal/geometry"
	"github.com/nineyards/whiteboard/backend-go/internal/typeid"
)

// Undo ends any interaction in progress, clears the selection and restores
// the previous checkpoint.
func (e *Engine) Undo() bool {
	e.finish()
	e.selection.Clear()
	return e.Scene.Undo()
}

// Redo ends any interaction in progress, clears the selection and
// re-applies the last undone checkpoint.
func (e *Engine) Redo() bool {
	e.finish()
	e.selection.Clear()
	return e.Scene.Redo()
}

// Select replaces the selection with ids.
func (e *Engine) Select(ids []string) {
	e.selection.SetElements(ids)
	e.RequestFrame(true)
}

func (e *Engine) SelectAll() {
	e.Select(elementIDs(e.elements))
}

func (e *Engine) ClearSelection() {
	e.selection.Clear()
	e.RequestFrame(true)
}

// DeleteSelected removes the selected elements.
func (e *Engine) DeleteSelected() {
	ids := e.selection.IDs()
	if len(ids) == 0 {
		return
	}
	e.selection.Clear()
	e.RemoveElements(ids...)
}

// Copy places deep copies of the selection on the clipboard.
func (e *Engine) Copy() {
	selected := e.selection.Elements()
	if len(selected) == 0 {
		return
	}
	e.clipboard = document.CloneElements(selected)
}

func (e *Engine) Cut() {
	e.Copy()
	e.DeleteSelected()
}

// Paste adds fresh copies of the clipboard centered on the last pointer
// position and selects them. An empty clipboard is a no-op.
func (e *Engine) Paste() {
	b := geometry.ComputeBounds(e.clipboard)
	if b == nil {
		return
	}
	c := b.Center()
	dx, dy := e.pointer.X-c.X, e.pointer.Y-c.Y
	now := e.Now().UnixMilli()

	pasted := make([]*document.Element, 0, len(e.clipboard))
	for _, src := range e.clipboard {
		el := src.Clone()
		el.ID = typeid.NewElementID()
		el.X += dx
		el.Y += dy
		el.Version = 1
		el.VersionNonce = document.RandomNonce()
		el.Updated = now
		pasted = append(pasted, el)
	}

	e.AddElements(pasted, true)
	e.Select(elementIDs(pasted))
}

// Clipboard returns copies of the clipboard contents.
func (e *Engine) Clipboard() []*document.Element {
	return document.CloneElements(e.clipboard)
}

func (e *Engine) BringToFront() { e.Reorder(e.selection.IDs(), true) }
func (e *Engine) SendToBack()   { e.Reorder(e.selection.IDs(), false) }

// PatchSelected applies patch to the selected elements. Its style fields
// also become the base properties for elements drawn afterwards, even when
// nothing is selected.
func (e *Engine) PatchSelected(patch document.Options, commit bool) {
	e.base = e.base.Merge(patch.Style())

	ids := e.selection.IDs()
	if len(ids) == 0 {
		return
	}
	e.selection.ClearBounds()
	e.PatchElements(ids, patch, commit)
}
