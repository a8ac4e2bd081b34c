package collab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nineyards/whiteboard/backend-go/internal/document"
	"github.com/nineyards/whiteboard/backend-go/internal/engine"
	"github.com/nineyards/whiteboard/backend-go/internal/render"
	"github.com/nineyards/whiteboard/backend-go/internal/storage"
)

var (
	ErrRoomClosed     = errors.New("room closed")
	ErrUnknownMessage = errors.New("unknown message type")
	ErrInvalidTool    = errors.New("invalid tool")
)

// RoomOptions configure the engine every room runs.
type RoomOptions struct {
	Width            int
	Height           int
	AutosaveInterval time.Duration
	MinFrameInterval time.Duration
}

func DefaultRoomOptions() RoomOptions {
	return RoomOptions{
		Width:            1280,
		Height:           720,
		AutosaveInterval: storage.DefaultAutosaveInterval,
		MinFrameInterval: engine.DefaultMinFrameInterval,
	}
}

// Room is one open board. All clients of a board drive the same engine;
// their input is serialized by mu and every resulting state change is
// broadcast to the whole room.
type Room struct {
	boardID  string
	clients  map[string]*Client // guarded by Hub.mu
	presence *PresenceManager

	mu        sync.Mutex
	meta      *document.Board
	engine    *engine.Engine
	recorder  *render.Recorder
	broadcast func(msg *Message, exclude string)
	seq       int64
	frame     int

	autosave *storage.Autosaver
	stop     context.CancelFunc
	done     chan struct{}
}

// openRoom loads a board and starts its engine and autosaver. broadcast
// is called with mu held.
func openRoom(ctx context.Context, store storage.Store, boardID string, opts RoomOptions, broadcast func(*Message, string)) (*Room, error) {
	b, err := store.Get(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("load board %s: %w", boardID, err)
	}

	rec := render.NewRecorder(opts.Width, opts.Height)
	eng, err := engine.New(rec, render.NewSketchGenerator(), engine.Settings{
		Width:            opts.Width,
		Height:           opts.Height,
		Elements:         b.Elements,
		Viewport:         b.Viewport,
		Background:       b.Background,
		MinFrameInterval: opts.MinFrameInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("start engine: %w", err)
	}

	meta := b.Clone()
	meta.Elements = nil

	r := &Room{
		boardID:   boardID,
		clients:   make(map[string]*Client),
		presence:  NewPresenceManager(),
		meta:      meta,
		engine:    eng,
		recorder:  rec,
		broadcast: broadcast,
		frame:     eng.Frames(),
		done:      make(chan struct{}),
	}
	r.watch()

	r.autosave = storage.NewAutosaver(store, opts.AutosaveInterval, r.saveSource)
	r.autosave.Watch(eng)

	runCtx, cancel := context.WithCancel(context.Background())
	r.stop = cancel
	go func() {
		defer close(r.done)
		r.autosave.Run(runCtx)
	}()

	return r, nil
}

// watch forwards engine events to the room.
func (r *Room) watch() {
	r.engine.On(engine.EventElementsChanged, func(ev engine.Event) {
		r.publish(TypeSceneElements, ElementsPayload{Elements: ev.Elements}, "")
	})
	r.engine.On(engine.EventViewportChanged, func(ev engine.Event) {
		r.publish(TypeSceneViewport, ViewportPayload{Viewport: ev.Viewport}, "")
	})
	r.engine.On(engine.EventToolSelected, func(ev engine.Event) {
		r.publish(TypeToolSelected, ToolPayload{Tool: ev.Tool}, "")
	})
	r.engine.On(engine.EventSelectionUpdated, func(ev engine.Event) {
		r.publish(TypeSelectionUpdated, SelectionUpdatedPayload{
			IDs:    elementIDs(ev.Selected),
			Bounds: r.engine.Selection().Bounds(),
		}, "")
	})
}

// --- Commands ---

// Apply feeds one client message into the engine.
func (r *Room) Apply(sender *Client, msg *Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.engine == nil {
		return ErrRoomClosed
	}
	if err := r.dispatch(sender, msg); err != nil {
		return err
	}
	r.publishFrame()
	return nil
}

func (r *Room) dispatch(sender *Client, msg *Message) error {
	e := r.engine

	switch msg.Type {
	case TypePointerDown, TypePointerMove, TypePointerUp:
		var ev engine.PointerEvent
		if err := decode(msg, &ev); err != nil {
			return err
		}
		switch msg.Type {
		case TypePointerDown:
			e.PointerDown(ev)
		case TypePointerMove:
			e.PointerMove(ev)
			p := e.Pointer()
			r.publish(TypePresenceUpdate, r.presence.MoveCursor(sender.ClientID, p.X, p.Y), sender.ClientID)
		case TypePointerUp:
			e.PointerUp(ev)
		}

	case TypePointerBlur:
		e.Blur()

	case TypeKeyDown:
		var ev engine.KeyEvent
		if err := decode(msg, &ev); err != nil {
			return err
		}
		e.KeyDown(ev)

	case TypeWheel:
		var ev engine.WheelEvent
		if err := decode(msg, &ev); err != nil {
			return err
		}
		e.Wheel(ev)

	case TypeToolSet:
		var p ToolPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		if !e.SetTool(p.Tool) {
			return fmt.Errorf("%w: %q", ErrInvalidTool, p.Tool)
		}

	case TypeStylePatch:
		var p StylePayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		e.PatchSelected(p.Options, p.Commit)

	case TypeSelectionSet:
		var p SelectionPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		e.Select(p.IDs)

	case TypeHistoryUndo:
		e.Undo()

	case TypeHistoryRedo:
		e.Redo()

	case TypeBackgroundSet:
		var p BackgroundPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		e.SetBackground(p.Color)
		r.autosave.MarkDirty()

	case TypeSurfaceResize:
		var p SizePayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		if err := e.Resize(p.Width, p.Height); err != nil {
			return fmt.Errorf("resize: %w", err)
		}

	default:
		return fmt.Errorf("%w: %s", ErrUnknownMessage, msg.Type)
	}
	return nil
}

// admit runs add and then greets c with the current board and frame, all
// under mu so no scene update can reach c before its welcome.
func (r *Room) admit(c *Client, add func()) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.engine == nil {
		return ErrRoomClosed
	}
	add()
	r.presence.Join(c.ClientID, c.DisplayName)

	w, h := r.recorder.Size()
	welcome, err := newMessage(TypeWelcome, WelcomePayload{
		ClientID:  c.ClientID,
		Board:     r.snapshotLocked(),
		Tool:      r.engine.Tool(),
		Selection: r.engine.Selection().IDs(),
		Width:     w,
		Height:    h,
	})
	if err != nil {
		return fmt.Errorf("marshal welcome: %w", err)
	}
	welcome.BoardID = r.boardID
	welcome.Seq = r.seq
	c.Send(welcome)

	if frame := r.frameMessage(); frame != nil {
		c.Send(frame)
	}
	return nil
}

// Close stops the autosaver, which flushes pending changes, and releases
// the engine. It is safe to call more than once.
func (r *Room) Close() {
	r.stop()
	<-r.done

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.engine != nil {
		r.engine.Close()
		r.engine = nil
	}
}

// --- Queries ---

// Snapshot returns the live board, or nil once the room is closed.
func (r *Room) Snapshot() *document.Board {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.engine == nil {
		return nil
	}
	return r.snapshotLocked()
}

func (r *Room) snapshotLocked() *document.Board {
	b := r.meta.Clone()
	b.Background = r.engine.Background()
	b.Viewport = r.engine.Viewport()
	b.Elements = r.engine.Elements()
	return b
}

// saveSource feeds the autosaver. The name is left empty so a rename made
// elsewhere is not overwritten.
func (r *Room) saveSource() *document.Board {
	b := r.Snapshot()
	if b != nil {
		b.Name = ""
	}
	return b
}

func (r *Room) publish(typ string, payload any, exclude string) {
	msg, err := newMessage(typ, payload)
	if err != nil {
		slog.Error("marshal room message", "type", typ, "error", err)
		return
	}
	r.seq++
	msg.Seq = r.seq
	msg.BoardID = r.boardID
	if typ == TypePresenceUpdate {
		msg.ClientID = exclude
	}
	r.broadcast(msg, exclude)
}

// publishFrame broadcasts the recorder's frame if a new one was drawn.
func (r *Room) publishFrame() {
	if r.engine.Frames() == r.frame {
		return
	}
	r.frame = r.engine.Frames()
	if msg := r.frameMessage(); msg != nil {
		r.seq++
		msg.Seq = r.seq
		r.broadcast(msg, "")
	}
}

func (r *Room) frameMessage() *Message {
	msg, err := newMessage(TypeFrame, FramePayload{
		Frame:    r.engine.Frames(),
		Cursor:   r.engine.Cursor(),
		Commands: r.recorder.Commands(),
	})
	if err != nil {
		slog.Error("marshal frame", "board", r.boardID, "error", err)
		return nil
	}
	msg.BoardID = r.boardID
	return msg
}

func decode(msg *Message, v any) error {
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return fmt.Errorf("decode %s: %w", msg.Type, err)
	}
	return nil
}

func elementIDs(elements []*document.Element) []string {
	ids := make([]string, len(elements))
	for i, el := range elements {
		ids[i] = el.ID
	}
	return ids
}
