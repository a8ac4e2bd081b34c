package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nineyards/whiteboard/backend-go/internal/document"
	"github.com/nineyards/whiteboard/backend-go/internal/typeid"
)

const schema = `
CREATE TABLE IF NOT EXISTS boards (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	version    INTEGER NOT NULL DEFAULT 1,
	document   JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS board_snapshots (
	id         TEXT PRIMARY KEY,
	board_id   TEXT NOT NULL REFERENCES boards (id) ON DELETE CASCADE,
	version    INTEGER NOT NULL,
	document   JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (board_id, version)
);
`

// PostgresStore keeps boards in Postgres. Each save writes the board row
// and a revision row in one transaction.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to url and creates the schema if needed.
func NewPostgresStore(ctx context.Context, url string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// --- Commands ---

func (s *PostgresStore) Create(ctx context.Context, name string) (*document.Board, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNoName
	}

	b := document.NewEmptyBoard(typeid.NewBoardID(), name)
	doc, err := json.Marshal(documentOf(b))
	if err != nil {
		return nil, fmt.Errorf("marshal board: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var created, updated time.Time
	err = tx.QueryRow(ctx,
		`INSERT INTO boards (id, name, version, document) VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at`,
		b.ID, b.Name, b.Version, doc,
	).Scan(&created, &updated)
	if err != nil {
		return nil, fmt.Errorf("create board: %w", err)
	}

	if err := insertSnapshot(ctx, tx, b.ID, b.Version, doc); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	b.CreatedAt = formatTime(created)
	b.UpdatedAt = formatTime(updated)
	return b, nil
}

func (s *PostgresStore) Save(ctx context.Context, b *document.Board) (*document.Board, error) {
	saved := b.Clone()
	doc, err := json.Marshal(documentOf(saved))
	if err != nil {
		return nil, fmt.Errorf("marshal board: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var created, updated time.Time
	err = tx.QueryRow(ctx,
		`UPDATE boards
		 SET name = COALESCE(NULLIF($2, ''), name), version = version + 1, document = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING name, version, created_at, updated_at`,
		saved.ID, strings.TrimSpace(saved.Name), doc,
	).Scan(&saved.Name, &saved.Version, &created, &updated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("save board: %w", err)
	}

	if err := insertSnapshot(ctx, tx, saved.ID, saved.Version, doc); err != nil {
		return nil, err
	}
	_, err = tx.Exec(ctx,
		`DELETE FROM board_snapshots WHERE board_id = $1 AND version <= $2`,
		saved.ID, saved.Version-MaxSnapshots,
	)
	if err != nil {
		return nil, fmt.Errorf("prune snapshots: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	saved.CreatedAt = formatTime(created)
	saved.UpdatedAt = formatTime(updated)
	return saved, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM boards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete board: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Queries ---

func (s *PostgresStore) Get(ctx context.Context, id string) (*document.Board, error) {
	var (
		b                document.Board
		doc              []byte
		created, updated time.Time
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, version, document, created_at, updated_at FROM boards WHERE id = $1`, id,
	).Scan(&b.ID, &b.Name, &b.Version, &doc, &created, &updated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get board: %w", err)
	}

	if err := decodeInto(&b, doc); err != nil {
		return nil, err
	}
	b.CreatedAt = formatTime(created)
	b.UpdatedAt = formatTime(updated)
	return &b, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, version, created_at, updated_at FROM boards ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}

	boards, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Summary, error) {
		var (
			sum              Summary
			created, updated time.Time
		)
		if err := row.Scan(&sum.ID, &sum.Name, &sum.Version, &created, &updated); err != nil {
			return Summary{}, err
		}
		sum.CreatedAt = formatTime(created)
		sum.UpdatedAt = formatTime(updated)
		return sum, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	return boards, nil
}

func (s *PostgresStore) Snapshots(ctx context.Context, boardID string) ([]document.Snapshot, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM boards WHERE id = $1)`, boardID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check board: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, board_id, version, created_at FROM board_snapshots
		 WHERE board_id = $1 ORDER BY version DESC`, boardID)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	snaps, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (document.Snapshot, error) {
		var (
			snap    document.Snapshot
			created time.Time
		)
		if err := row.Scan(&snap.ID, &snap.BoardID, &snap.Version, &created); err != nil {
			return document.Snapshot{}, err
		}
		snap.CreatedAt = formatTime(created)
		return snap, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return snaps, nil
}

func (s *PostgresStore) Revision(ctx context.Context, boardID string, version int) (*document.Board, error) {
	var (
		b              document.Board
		doc            []byte
		created, saved time.Time
	)
	err := s.pool.QueryRow(ctx,
		`SELECT b.id, b.name, s.version, s.document, b.created_at, s.created_at
		 FROM board_snapshots s JOIN boards b ON b.id = s.board_id
		 WHERE s.board_id = $1 AND s.version = $2`, boardID, version,
	).Scan(&b.ID, &b.Name, &b.Version, &doc, &created, &saved)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get revision: %w", err)
	}

	if err := decodeInto(&b, doc); err != nil {
		return nil, err
	}
	b.CreatedAt = formatTime(created)
	b.UpdatedAt = formatTime(saved)
	return &b, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func insertSnapshot(ctx context.Context, tx pgx.Tx, boardID string, version int, doc []byte) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO board_snapshots (id, board_id, version, document) VALUES ($1, $2, $3, $4)`,
		typeid.NewSnapshotID(), boardID, version, doc,
	)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	return nil
}

func decodeInto(b *document.Board, raw []byte) error {
	var doc boardDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("unmarshal board: %w", err)
	}
	doc.apply(b)
	return nil
}
