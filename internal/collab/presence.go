package collab

import (
	"encoding/json"
	"log/slog"
	"maps"
	"sync"
)

// PresenceManager tracks the cursor and name of every client in a room.
// Stored entries are replaced, never edited, so snapshots can be read
// without the lock.
type PresenceManager struct {
	mu        sync.RWMutex
	presences map[string]*PresencePayload // clientID -> presence
}

func NewPresenceManager() *PresenceManager {
	return &PresenceManager{
		presences: make(map[string]*PresencePayload),
	}
}

// Join registers a client with no cursor yet.
func (pm *PresenceManager) Join(clientID, displayName string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.presences[clientID] = &PresencePayload{DisplayName: displayName}
}

// Update stores p for clientID and returns the stored value. The display
// name given at join time is kept.
func (pm *PresenceManager) Update(clientID string, p PresencePayload) PresencePayload {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if cur, ok := pm.presences[clientID]; ok {
		p.DisplayName = cur.DisplayName
	}
	pm.presences[clientID] = &p
	return p
}

// MoveCursor sets the scene-space cursor of clientID.
func (pm *PresenceManager) MoveCursor(clientID string, x, y float64) PresencePayload {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	var p PresencePayload
	if cur, ok := pm.presences[clientID]; ok {
		p = *cur
	}
	p.Cursor = &CursorPos{X: x, Y: y}
	pm.presences[clientID] = &p
	return p
}

func (pm *PresenceManager) Remove(clientID string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	delete(pm.presences, clientID)
}

func (pm *PresenceManager) GetAll() map[string]*PresencePayload {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return maps.Clone(pm.presences)
}

func (pm *PresenceManager) StateMessage() *Message {
	all := pm.GetAll()
	payload, err := json.Marshal(PresenceStatePayload{Presences: all})
	if err != nil {
		slog.Error("marshal presence state", "error", err)
		return nil
	}
	return &Message{
		Type:    TypePresenceState,
		Payload: payload,
	}
}
