package storage

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/nineyards/whiteboard/backend-go/internal/document"
	"github.com/nineyards/whiteboard/backend-go/internal/typeid"
)

type revision struct {
	meta  document.Snapshot
	board *document.Board
}

type memoryBoard struct {
	board     *document.Board
	revisions []revision
}

// MemoryStore keeps boards in process memory. It is used when no database
// is configured and in tests.
type MemoryStore struct {
	mu     sync.RWMutex
	order  []string
	boards map[string]*memoryBoard
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		boards: make(map[string]*memoryBoard),
		now:    time.Now,
	}
}

// --- Commands ---

func (s *MemoryStore) Create(_ context.Context, name string) (*document.Board, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNoName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b := document.NewEmptyBoard(typeid.NewBoardID(), name)
	b.CreatedAt = formatTime(s.now())
	b.UpdatedAt = b.CreatedAt

	mb := &memoryBoard{board: b}
	mb.record(b)
	s.boards[b.ID] = mb
	s.order = append(s.order, b.ID)
	return b.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, b *document.Board) (*document.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mb, ok := s.boards[b.ID]
	if !ok {
		return nil, ErrNotFound
	}

	saved := b.Clone()
	saved.Version = mb.board.Version + 1
	saved.CreatedAt = mb.board.CreatedAt
	saved.UpdatedAt = formatTime(s.now())
	if strings.TrimSpace(saved.Name) == "" {
		saved.Name = mb.board.Name
	}

	mb.board = saved
	mb.record(saved)
	return saved.Clone(), nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.boards[id]; !ok {
		return ErrNotFound
	}
	delete(s.boards, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// --- Queries ---

func (s *MemoryStore) Get(_ context.Context, id string) (*document.Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mb, ok := s.boards[id]
	if !ok {
		return nil, ErrNotFound
	}
	return mb.board.Clone(), nil
}

func (s *MemoryStore) List(_ context.Context) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Summary, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, summarize(s.boards[id].board))
	}
	return out, nil
}

func (s *MemoryStore) Snapshots(_ context.Context, boardID string) ([]document.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mb, ok := s.boards[boardID]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]document.Snapshot, len(mb.revisions))
	for i, r := range mb.revisions {
		out[len(out)-1-i] = r.meta
	}
	return out, nil
}

func (s *MemoryStore) Revision(_ context.Context, boardID string, version int) (*document.Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mb, ok := s.boards[boardID]
	if !ok {
		return nil, ErrNotFound
	}
	for _, r := range mb.revisions {
		if r.meta.Version == version {
			return r.board.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) Close() {}

func (mb *memoryBoard) record(b *document.Board) {
	mb.revisions = append(mb.revisions, revision{
		meta: document.Snapshot{
			ID:        typeid.NewSnapshotID(),
			BoardID:   b.ID,
			Version:   b.Version,
			CreatedAt: b.UpdatedAt,
		},
		board: b.Clone(),
	})
	if n := len(mb.revisions) - MaxSnapshots; n > 0 {
		mb.revisions = append(mb.revisions[:0:0], mb.revisions[n:]...)
	}
}
