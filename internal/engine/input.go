package engine

// Button is a pointer button, numbered as in DOM pointer events.
type Button int

const (
	ButtonMain      Button = 0
	ButtonWheel     Button = 1
	ButtonSecondary Button = 2
)

// PointerEvent is a pointer position in client (screen) pixels.
type PointerEvent struct {
	ClientX float64 `json:"clientX"`
	ClientY float64 `json:"clientY"`
	Button  Button  `json:"button"`
	Modifiers
}

// WheelEvent is a scroll or pinch gesture.
type WheelEvent struct {
	DeltaX float64 `json:"deltaX"`
	DeltaY float64 `json:"deltaY"`
	Modifiers
}

// State is the interaction a pointer-down started.
type State string

const (
	StateIdle     State = "idle"
	StatePanning  State = "panning"
	StateDrawing  State = "drawing"
	StateMarquee  State = "marquee"
	StateDragging State = "dragging"
	StateResizing State = "resizing"
	StateRotating State = "rotating"
)
