package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nineyards/whiteboard/backend-go/internal/document"
	"github.com/nineyards/whiteboard/backend-go/internal/engine"
)

const (
	DefaultAutosaveInterval = 5 * time.Second
	finalFlushTimeout       = 5 * time.Second
)

// Subscriber is anything that emits engine events, usually an Engine.
type Subscriber interface {
	On(t engine.EventType, fn engine.Listener) func()
}

// Autosaver writes a board back to its store on a fixed interval, but only
// after something marked it dirty.
type Autosaver struct {
	store    Store
	interval time.Duration
	source   func() *document.Board

	dirty atomic.Bool
	mu    sync.Mutex // serializes flushes
}

// NewAutosaver creates an autosaver. source is called from the saving
// goroutine and must return a copy of the board that is safe to read.
// A non-positive interval selects DefaultAutosaveInterval.
func NewAutosaver(store Store, interval time.Duration, source func() *document.Board) *Autosaver {
	if interval <= 0 {
		interval = DefaultAutosaveInterval
	}
	return &Autosaver{store: store, interval: interval, source: source}
}

// Watch marks the board dirty whenever its elements or viewport change.
// The returned func stops watching.
func (a *Autosaver) Watch(s Subscriber) func() {
	mark := func(engine.Event) { a.MarkDirty() }
	offElements := s.On(engine.EventElementsChanged, mark)
	offViewport := s.On(engine.EventViewportChanged, mark)
	return func() {
		offElements()
		offViewport()
	}
}

func (a *Autosaver) MarkDirty()  { a.dirty.Store(true) }
func (a *Autosaver) Dirty() bool { return a.dirty.Load() }

// Flush saves the board if it is dirty. It returns the stored board, or nil
// when there was nothing to save. A failed save leaves the board dirty.
func (a *Autosaver) Flush(ctx context.Context) (*document.Board, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.dirty.Swap(false) {
		return nil, nil
	}
	b := a.source()
	if b == nil {
		return nil, nil
	}

	saved, err := a.store.Save(ctx, b)
	if err != nil {
		a.dirty.Store(true)
		return nil, fmt.Errorf("autosave %s: %w", b.ID, err)
	}
	slog.Debug("board saved", "board", saved.ID, "version", saved.Version)
	return saved, nil
}

// Run flushes every interval until ctx is done, then flushes once more.
func (a *Autosaver) Run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := a.Flush(ctx); err != nil {
				slog.Error("autosave failed", "error", err)
			}
		case <-ctx.Done():
			final, cancel := context.WithTimeout(context.Background(), finalFlushTimeout)
			if _, err := a.Flush(final); err != nil {
				slog.Error("final autosave failed", "error", err)
			}
			cancel()
			return
		}
	}
}
