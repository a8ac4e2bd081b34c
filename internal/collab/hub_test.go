package collab

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nineyards/whiteboard/backend-go/internal/document"
	"github.com/nineyards/whiteboard/backend-go/internal/engine"
	"github.com/nineyards/whiteboard/backend-go/internal/storage"
)

func newTestHub(t *testing.T) (*Hub, *storage.MemoryStore, *document.Board) {
	t.Helper()
	store := storage.NewMemoryStore()
	b, err := store.Create(context.Background(), "Test board")
	require.NoError(t, err)

	h := NewHub(store, RoomOptions{Width: 200, Height: 100, AutosaveInterval: time.Hour})
	t.Cleanup(h.Stop)
	return h, store, b
}

func join(h *Hub, boardID, clientID string) *Client {
	c := NewClient(h, nil, "user "+clientID, boardID, clientID)
	h.addClient(c)
	return c
}

// drain returns every message queued for c.
func drain(t *testing.T, c *Client) []*Message {
	t.Helper()
	var out []*Message
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return out
			}
			var msg Message
			require.NoError(t, json.Unmarshal(data, &msg))
			out = append(out, &msg)
		default:
			return out
		}
	}
}

func ofType(msgs []*Message, typ string) []*Message {
	var out []*Message
	for _, m := range msgs {
		if m.Type == typ {
			out = append(out, m)
		}
	}
	return out
}

func send(t *testing.T, h *Hub, c *Client, typ string, payload any) {
	t.Helper()
	msg, err := newMessage(typ, payload)
	require.NoError(t, err)
	msg.ClientID = c.ClientID
	msg.BoardID = c.BoardID
	h.handleMessage(c, msg)
}

func TestJoinSendsWelcomeAndFrame(t *testing.T) {
	h, _, b := newTestHub(t)

	a := join(h, b.ID, "a")
	msgs := drain(t, a)
	require.NotEmpty(t, msgs)
	assert.Equal(t, TypeWelcome, msgs[0].Type)

	var welcome WelcomePayload
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &welcome))
	assert.Equal(t, "a", welcome.ClientID)
	assert.Equal(t, b.ID, welcome.Board.ID)
	assert.Equal(t, engine.ToolSelect, welcome.Tool)
	assert.Equal(t, 200, welcome.Width)

	frames := ofType(msgs, TypeFrame)
	require.Len(t, frames, 1)
	var frame FramePayload
	require.NoError(t, json.Unmarshal(frames[0].Payload, &frame))
	require.NotEmpty(t, frame.Commands)
	assert.Equal(t, "clear", frame.Commands[0].Op)

	assert.Len(t, ofType(msgs, TypePresenceState), 1)
	assert.Equal(t, 1, h.Rooms())

	join(h, b.ID, "b")
	joined := ofType(drain(t, a), TypePresenceJoin)
	require.Len(t, joined, 1)
	assert.Equal(t, "b", joined[0].ClientID)
}

func TestJoinMissingBoard(t *testing.T) {
	h, _, _ := newTestHub(t)

	c := join(h, "board_missing", "a")
	msgs := drain(t, c)
	require.Len(t, msgs, 1)
	assert.Equal(t, TypeError, msgs[0].Type)

	_, open := <-c.send
	assert.False(t, open)
	assert.Zero(t, h.Rooms())
}

func TestDrawingIsBroadcast(t *testing.T) {
	h, _, b := newTestHub(t)
	a := join(h, b.ID, "a")
	other := join(h, b.ID, "b")
	drain(t, a)
	drain(t, other)

	send(t, h, a, TypeToolSet, ToolPayload{Tool: engine.ToolRectangle})
	assert.Len(t, ofType(drain(t, other), TypeToolSelected), 1)

	send(t, h, a, TypePointerDown, engine.PointerEvent{ClientX: 10, ClientY: 10})
	send(t, h, a, TypePointerMove, engine.PointerEvent{ClientX: 60, ClientY: 50})
	send(t, h, a, TypePointerUp, engine.PointerEvent{ClientX: 60, ClientY: 50})

	msgs := drain(t, other)
	assert.NotEmpty(t, ofType(msgs, TypeSceneElements))
	assert.NotEmpty(t, ofType(msgs, TypeFrame))
	assert.Len(t, ofType(msgs, TypePresenceUpdate), 1)
	assert.Empty(t, ofType(drain(t, a), TypePresenceUpdate), "own cursor is not echoed")

	live, ok := h.Live(b.ID)
	require.True(t, ok)
	require.Len(t, live.Elements, 1)
	assert.Equal(t, document.TypeRectangle, live.Elements[0].Type)

	var last int64
	for _, m := range msgs {
		if m.Seq == 0 {
			continue
		}
		assert.Greater(t, m.Seq, last)
		last = m.Seq
	}
}

func TestUndoOverTheWire(t *testing.T) {
	h, _, b := newTestHub(t)
	a := join(h, b.ID, "a")

	send(t, h, a, TypeToolSet, ToolPayload{Tool: engine.ToolEllipse})
	send(t, h, a, TypePointerDown, engine.PointerEvent{ClientX: 10, ClientY: 10})
	send(t, h, a, TypePointerUp, engine.PointerEvent{ClientX: 40, ClientY: 40})

	live, _ := h.Live(b.ID)
	require.Len(t, live.Elements, 1)

	send(t, h, a, TypeHistoryUndo, nil)
	live, _ = h.Live(b.ID)
	assert.Empty(t, live.Elements)

	send(t, h, a, TypeKeyDown, engine.KeyEvent{Key: "y", Modifiers: engine.Modifiers{Ctrl: true}})
	live, _ = h.Live(b.ID)
	assert.Len(t, live.Elements, 1)
}

func TestRejectedMessagesReachOnlySender(t *testing.T) {
	h, _, b := newTestHub(t)
	a := join(h, b.ID, "a")
	other := join(h, b.ID, "b")
	drain(t, a)
	drain(t, other)

	send(t, h, a, "teleport", nil)
	send(t, h, a, TypeToolSet, ToolPayload{Tool: "laser"})
	h.handleMessage(a, &Message{Type: TypePointerDown, Payload: json.RawMessage(`{"clientX":"left"}`)})

	errs := ofType(drain(t, a), TypeError)
	require.Len(t, errs, 3)
	var p ErrorPayload
	require.NoError(t, json.Unmarshal(errs[0].Payload, &p))
	assert.Contains(t, p.Message, "unknown message type")

	assert.Empty(t, drain(t, other))
}

func TestPresenceUpdateKeepsName(t *testing.T) {
	h, _, b := newTestHub(t)
	a := join(h, b.ID, "a")
	other := join(h, b.ID, "b")
	drain(t, other)

	send(t, h, a, TypePresenceUpdate, PresencePayload{Cursor: &CursorPos{X: 3, Y: 4}, DisplayName: "spoofed"})

	updates := ofType(drain(t, other), TypePresenceUpdate)
	require.Len(t, updates, 1)
	var p PresencePayload
	require.NoError(t, json.Unmarshal(updates[0].Payload, &p))
	assert.Equal(t, "user a", p.DisplayName)
	assert.Equal(t, &CursorPos{X: 3, Y: 4}, p.Cursor)
}

func TestLastLeaveSavesBoard(t *testing.T) {
	h, store, b := newTestHub(t)
	a := join(h, b.ID, "a")
	other := join(h, b.ID, "b")

	send(t, h, a, TypeToolSet, ToolPayload{Tool: engine.ToolTriangle})
	send(t, h, a, TypePointerDown, engine.PointerEvent{ClientX: 10, ClientY: 10})
	send(t, h, a, TypePointerUp, engine.PointerEvent{ClientX: 50, ClientY: 50})
	send(t, h, a, TypeBackgroundSet, BackgroundPayload{Color: "#202020"})

	h.removeClient(other)
	assert.Equal(t, 1, h.Rooms())
	h.removeClient(a)
	assert.Zero(t, h.Rooms())

	saved, err := store.Get(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, saved.Version)
	assert.Equal(t, "Test board", saved.Name)
	assert.Equal(t, "#202020", saved.Background)
	require.Len(t, saved.Elements, 1)
	assert.Equal(t, document.TypeTriangle, saved.Elements[0].Type)

	_, ok := h.Live(b.ID)
	assert.False(t, ok)
}
