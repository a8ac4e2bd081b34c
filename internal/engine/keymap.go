package engine

import "strings"

// Modifiers are the modifier keys held during an input event.
type Modifiers struct {
	Shift bool `json:"shift,omitempty"`
	Ctrl  bool `json:"ctrl,omitempty"`
	Alt   bool `json:"alt,omitempty"`
	Meta  bool `json:"meta,omitempty"`
}

// KeyEvent is a key press. Key is the browser key name, e.g. "z" or
// "Backspace".
type KeyEvent struct {
	Key string `json:"key"`
	Modifiers
}

// Combo formats ev as a key combination such as "C-S-z". Ctrl and Meta
// both map to "C".
func Combo(ev KeyEvent) string {
	var b strings.Builder
	if ev.Ctrl || ev.Meta {
		b.WriteString("C-")
	}
	if ev.Shift {
		b.WriteString("S-")
	}
	if ev.Alt {
		b.WriteString("A-")
	}
	b.WriteString(strings.ToLower(ev.Key))
	return b.String()
}

// KeyMap binds key combinations, in the format produced by Combo, to
// handlers. It belongs to a single dispatcher and is cleared when that
// dispatcher is closed.
type KeyMap struct {
	bindings map[string]*binding
}

type binding struct {
	fn func()
}

func NewKeyMap() *KeyMap {
	return &KeyMap{bindings: make(map[string]*binding)}
}

// Register binds combo to fn, replacing any earlier binding. The returned
// func removes the binding unless it has since been replaced.
func (k *KeyMap) Register(combo string, fn func()) func() {
	b := &binding{fn: fn}
	k.bindings[combo] = b
	return func() {
		if k.bindings[combo] == b {
			delete(k.bindings, combo)
		}
	}
}

func (k *KeyMap) Handler(combo string) (func(), bool) {
	b, ok := k.bindings[combo]
	if !ok {
		return nil, false
	}
	return b.fn, true
}

func (k *KeyMap) Remove(combo string) { delete(k.bindings, combo) }
func (k *KeyMap) Clear()              { clear(k.bindings) }
func (k *KeyMap) Len() int            { return len(k.bindings) }

// Dispatch runs the handler bound to ev, reporting whether one existed so
// the caller can suppress the default action.
func (k *KeyMap) Dispatch(ev KeyEvent) bool {
	b, ok := k.bindings[Combo(ev)]
	if !ok {
		return false
	}
	b.fn()
	return true
}
