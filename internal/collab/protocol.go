package collab

import (
	"encoding/json"

	"github.com/nineyards/whiteboard/backend-go/internal/document"
	"github.com/nineyards/whiteboard/backend-go/internal/engine"
	"github.com/nineyards/whiteboard/backend-go/internal/render"
)

type Message struct {
	Type     string          `json:"type"`
	BoardID  string          `json:"boardId,omitempty"`
	ClientID string          `json:"clientId,omitempty"`
	Seq      int64           `json:"seq,omitempty"`
	Payload  json.RawMessage `json:"payload"`
}

const (
	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
	TypeError          = "error"

	// Connection
	TypeWelcome = "welcome"

	// Input, client to server
	TypePointerDown   = "pointer.down"
	TypePointerMove   = "pointer.move"
	TypePointerUp     = "pointer.up"
	TypePointerBlur   = "pointer.blur"
	TypeKeyDown       = "key.down"
	TypeWheel         = "wheel"
	TypeToolSet       = "tool.set"
	TypeStylePatch    = "style.patch"
	TypeSelectionSet  = "selection.set"
	TypeHistoryUndo   = "history.undo"
	TypeHistoryRedo   = "history.redo"
	TypeBackgroundSet = "background.set"
	TypeSurfaceResize = "surface.resize"

	// Scene state, server to clients
	TypeSceneElements    = "scene.elements"
	TypeSceneViewport    = "scene.viewport"
	TypeToolSelected     = "tool.selected"
	TypeSelectionUpdated = "selection.updated"
	TypeFrame            = "frame"
)

type PresencePayload struct {
	Cursor      *CursorPos `json:"cursor,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
}

type CursorPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	ClientID    string `json:"clientId"`
	DisplayName string `json:"displayName"`
}

type PresenceLeavePayload struct {
	ClientID string `json:"clientId"`
}

// WelcomePayload is the first message a client receives after joining.
type WelcomePayload struct {
	ClientID  string          `json:"clientId"`
	Board     *document.Board `json:"board"`
	Tool      engine.Tool     `json:"tool"`
	Selection []string        `json:"selection"`
	Width     int             `json:"width"`
	Height    int             `json:"height"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// --- Input payloads ---

type ToolPayload struct {
	Tool engine.Tool `json:"tool"`
}

// StylePayload patches the selected elements. Commit records the change
// in history; a live preview (a slider being dragged) sends false.
type StylePayload struct {
	Options document.Options `json:"options"`
	Commit  bool             `json:"commit"`
}

type SelectionPayload struct {
	IDs []string `json:"ids"`
}

type BackgroundPayload struct {
	Color string `json:"color"`
}

type SizePayload struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// --- Scene payloads ---

type ElementsPayload struct {
	Elements []*document.Element `json:"elements"`
}

type ViewportPayload struct {
	Viewport document.Viewport `json:"viewport"`
}

type SelectionUpdatedPayload struct {
	IDs    []string         `json:"ids"`
	Bounds *document.Bounds `json:"bounds,omitempty"`
}

// FramePayload is one rendered frame as canvas draw commands.
type FramePayload struct {
	Frame    int                  `json:"frame"`
	Cursor   string               `json:"cursor"`
	Commands []render.DrawCommand `json:"commands"`
}

func newMessage(typ string, payload any) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{Type: typ, Payload: data}, nil
}
