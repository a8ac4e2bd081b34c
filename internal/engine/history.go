package engine

import "github.com/nineyards/whiteboard/backend-go/internal/document"

// History is an undo/redo stack of deep element snapshots. The top of the
// undo stack always mirrors the last committed scene state; its bottom is
// the state the scene was loaded with and is never popped.
type History struct {
	undo [][]*document.Element
	redo [][]*document.Element
}

// NewHistory starts a history whose base state is initial.
func NewHistory(initial []*document.Element) *History {
	h := &History{}
	h.Reset(initial)
	return h
}

// Reset drops every checkpoint and makes elements the new base state.
func (h *History) Reset(elements []*document.Element) {
	h.undo = [][]*document.Element{document.CloneElements(orEmpty(elements))}
	h.redo = nil
}

// Record pushes a checkpoint of elements and clears the redo stack.
func (h *History) Record(elements []*document.Element) {
	h.undo = append(h.undo, document.CloneElements(orEmpty(elements)))
	h.redo = nil
}

// Undo steps back one checkpoint and returns the state to restore. It
// reports false when only the base state remains.
func (h *History) Undo() ([]*document.Element, bool) {
	if len(h.undo) <= 1 {
		return nil, false
	}

	top := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, top)

	return document.CloneElements(h.undo[len(h.undo)-1]), true
}

// Redo re-applies the most recently undone checkpoint.
func (h *History) Redo() ([]*document.Element, bool) {
	if len(h.redo) == 0 {
		return nil, false
	}

	next := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, next)

	return document.CloneElements(next), true
}

func (h *History) CanUndo() bool { return len(h.undo) > 1 }
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Depth returns the number of undo and redo checkpoints held.
func (h *History) Depth() (undo, redo int) {
	return len(h.undo), len(h.redo)
}

func orEmpty(elements []*document.Element) []*document.Element {
	if elements == nil {
		return []*document.Element{}
	}
	return elements
}
