package collab

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/nineyards/whiteboard/backend-go/internal/document"
	"github.com/nineyards/whiteboard/backend-go/internal/storage"
)

// Hub routes websocket clients to board rooms. Rooms are opened on the
// first join and closed, with a final save, when the last client leaves.
//
// Lock order: Room.mu before Hub.mu.
type Hub struct {
	store storage.Store
	opts  RoomOptions

	mu         sync.RWMutex
	rooms      map[string]*Room // boardID -> room
	register   chan *Client
	unregister chan *Client
	quit       chan struct{}
	stopOnce   sync.Once
}

func NewHub(store storage.Store, opts RoomOptions) *Hub {
	return &Hub{
		store:      store,
		opts:       opts,
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.quit:
			return
		}
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.quit:
		close(client.send)
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// Stop closes every room, saving pending changes, and ends Run.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })

	h.mu.Lock()
	rooms := h.rooms
	h.rooms = make(map[string]*Room)
	h.mu.Unlock()

	for id, room := range rooms {
		room.Close()
		slog.Info("room closed", "board", id)
	}
}

// Live returns the current state of an open board.
func (h *Hub) Live(boardID string) (*document.Board, bool) {
	room := h.room(boardID)
	if room == nil {
		return nil, false
	}
	b := room.Snapshot()
	return b, b != nil
}

// Rooms reports how many boards are open.
func (h *Hub) Rooms() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

func (h *Hub) room(boardID string) *Room {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rooms[boardID]
}

func (h *Hub) addClient(client *Client) {
	room := h.room(client.BoardID)
	if room == nil {
		var err error
		room, err = openRoom(context.Background(), h.store, client.BoardID, h.opts, func(msg *Message, exclude string) {
			h.broadcastToRoom(client.BoardID, msg, exclude)
		})
		if err != nil {
			slog.Error("open room", "board", client.BoardID, "error", err)
			client.SendError(err)
			close(client.send)
			return
		}
		h.mu.Lock()
		h.rooms[client.BoardID] = room
		h.mu.Unlock()
		slog.Info("room opened", "board", client.BoardID)
	}

	err := room.admit(client, func() {
		h.mu.Lock()
		room.clients[client.ClientID] = client
		h.mu.Unlock()
	})
	if err != nil {
		slog.Error("admit client", "board", client.BoardID, "error", err)
		client.SendError(err)
		close(client.send)
		return
	}

	// Send current presence state to new client
	if stateMsg := room.presence.StateMessage(); stateMsg != nil {
		client.Send(stateMsg)
	}

	joinPayload, _ := json.Marshal(PresenceJoinPayload{
		ClientID:    client.ClientID,
		DisplayName: client.DisplayName,
	})
	joinMsg := &Message{
		Type:     TypePresenceJoin,
		BoardID:  client.BoardID,
		ClientID: client.ClientID,
		Payload:  joinPayload,
	}
	h.broadcastToRoom(client.BoardID, joinMsg, client.ClientID)

	slog.Info("client joined", "client", client.ClientID, "board", client.BoardID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.BoardID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, member := room.clients[client.ClientID]; !member {
		h.mu.Unlock()
		return
	}

	delete(room.clients, client.ClientID)
	close(client.send)
	room.presence.Remove(client.ClientID)

	empty := len(room.clients) == 0
	if empty {
		delete(h.rooms, client.BoardID)
	}
	h.mu.Unlock()

	leavePayload, _ := json.Marshal(PresenceLeavePayload{
		ClientID: client.ClientID,
	})
	leaveMsg := &Message{
		Type:     TypePresenceLeave,
		BoardID:  client.BoardID,
		ClientID: client.ClientID,
		Payload:  leavePayload,
	}
	h.broadcastToRoom(client.BoardID, leaveMsg, "")

	slog.Info("client left", "client", client.ClientID, "board", client.BoardID)

	if empty {
		room.Close()
		slog.Info("room closed", "board", client.BoardID)
	}
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypePresenceUpdate:
		h.handlePresenceUpdate(sender, msg)
	default:
		room := h.room(sender.BoardID)
		if room == nil {
			return
		}
		if err := room.Apply(sender, msg); err != nil {
			slog.Warn("rejected message", "type", msg.Type, "client", sender.ClientID, "error", err)
			sender.SendError(err)
		}
	}
}

func (h *Hub) handlePresenceUpdate(sender *Client, msg *Message) {
	var presence PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		slog.Warn("invalid presence payload", "error", err)
		return
	}

	room := h.room(sender.BoardID)
	if room == nil {
		return
	}

	stored := room.presence.Update(sender.ClientID, presence)

	outPayload, _ := json.Marshal(stored)
	outMsg := &Message{
		Type:     TypePresenceUpdate,
		BoardID:  sender.BoardID,
		ClientID: sender.ClientID,
		Payload:  outPayload,
	}
	h.broadcastToRoom(sender.BoardID, outMsg, sender.ClientID)
}

// broadcastToRoom sends msg to every client of a room except one. Sends
// happen under the read lock so a client's channel cannot be closed
// mid-send.
func (h *Hub) broadcastToRoom(boardID string, msg *Message, excludeClientID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	room, ok := h.rooms[boardID]
	if !ok {
		return
	}
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			c.Send(msg)
		}
	}
}
