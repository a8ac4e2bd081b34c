package storage

import (
	"context"
	"errors"
	"time"

	"github.com/nineyards/whiteboard/backend-go/internal/document"
)

var (
	ErrNotFound = errors.New("board not found")
	ErrNoName   = errors.New("board name is required")
)

// MaxSnapshots is how many revisions are kept per board. Older ones are
// pruned on save.
const MaxSnapshots = 50

const timeLayout = "2006-01-02T15:04:05Z"

// Summary is a board listing entry without its elements.
type Summary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Version   int    `json:"version"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// Store persists boards and their saved revisions.
type Store interface {
	// --- Commands ---

	// Create stores a new empty board at version 1 together with its
	// first revision.
	Create(ctx context.Context, name string) (*document.Board, error)
	// Save writes b over the stored board, bumps its version and records
	// a revision. The stored result is returned.
	Save(ctx context.Context, b *document.Board) (*document.Board, error)
	Delete(ctx context.Context, id string) error

	// --- Queries ---

	Get(ctx context.Context, id string) (*document.Board, error)
	List(ctx context.Context) ([]Summary, error)
	// Snapshots lists a board's revisions, newest first.
	Snapshots(ctx context.Context, boardID string) ([]document.Snapshot, error)
	// Revision returns the board as it was saved at version.
	Revision(ctx context.Context, boardID string, version int) (*document.Board, error)

	Close()
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*PostgresStore)(nil)
)

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func summarize(b *document.Board) Summary {
	return Summary{
		ID:        b.ID,
		Name:      b.Name,
		Version:   b.Version,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// boardDocument is the stored JSON body of a board. Identity, name and
// version live in their own columns.
type boardDocument struct {
	Background string              `json:"background"`
	Viewport   document.Viewport   `json:"viewport"`
	Elements   []*document.Element `json:"elements"`
}

func documentOf(b *document.Board) boardDocument {
	elements := b.Elements
	if elements == nil {
		elements = []*document.Element{}
	}
	return boardDocument{Background: b.Background, Viewport: b.Viewport, Elements: elements}
}

func (d boardDocument) apply(b *document.Board) {
	b.Background = d.Background
	b.Viewport = d.Viewport
	b.Elements = d.Elements
	if b.Elements == nil {
		b.Elements = []*document.Element{}
	}
}
