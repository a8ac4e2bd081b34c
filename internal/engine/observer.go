package engine

import "github.com/nineyards/whiteboard/backend-go/internal/document"

// EventType names a notification fired by a Scene or Group.
type EventType string

const (
	EventElementsChanged  EventType = "elements"
	EventViewportChanged  EventType = "viewport"
	EventToolSelected     EventType = "tool"
	EventSelectionUpdated EventType = "selection"
)

// Event carries the full current state relevant to its type, never a diff.
type Event struct {
	Type     EventType
	Elements []*document.Element
	Viewport document.Viewport
	Tool     Tool
	Selected []*document.Element
}

type Listener func(Event)

type subscription struct {
	id    int
	t     EventType
	fn    Listener
	owned bool
}

// Observers is a registry of listeners owned by one emitting component.
// Delivery is synchronous and in subscription order.
type Observers struct {
	next int
	subs []subscription
}

// On subscribes fn to events of type t. The returned func unsubscribes it.
func (o *Observers) On(t EventType, fn Listener) func() {
	return o.subscribe(t, fn, false)
}

// Off removes every listener subscribed to t through On. Wiring made with
// watch stays in place.
func (o *Observers) Off(t EventType) {
	kept := make([]subscription, 0, len(o.subs))
	for _, s := range o.subs {
		if s.t != t || s.owned {
			kept = append(kept, s)
		}
	}
	o.subs = kept
}

// watch subscribes fn like On, but Off leaves it alone. The engine keeps
// its own wiring this way.
func (o *Observers) watch(t EventType, fn Listener) func() {
	return o.subscribe(t, fn, true)
}

func (o *Observers) subscribe(t EventType, fn Listener, owned bool) func() {
	o.next++
	id := o.next
	o.subs = append(o.subs, subscription{id: id, t: t, fn: fn, owned: owned})
	return func() { o.off(id) }
}

// Fire delivers e to the listeners of e.Type. Listeners may subscribe or
// unsubscribe while an event is being delivered.
func (o *Observers) Fire(e Event) {
	subs := make([]subscription, len(o.subs))
	copy(subs, o.subs)
	for _, s := range subs {
		if s.t == e.Type {
			s.fn(e)
		}
	}
}

// Listeners reports how many listeners are subscribed to t.
func (o *Observers) Listeners(t EventType) int {
	n := 0
	for _, s := range o.subs {
		if s.t == t {
			n++
		}
	}
	return n
}

func (o *Observers) off(id int) {
	for i, s := range o.subs {
		if s.id == id {
			o.subs = append(o.subs[:i:i], o.subs[i+1:]...)
			return
		}
	}
}

func (o *Observers) reset() {
	o.subs = nil
}
