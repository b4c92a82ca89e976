// Package store persists per-session anonymization state in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/zoobzio/shroud"
)

// ErrNotFound is returned when no state is stored for a session.
var ErrNotFound = errors.New("session not found")

// ErrContentType is returned when stored state was written by a different codec.
var ErrContentType = errors.New("content type mismatch")

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	content_type TEXT NOT NULL,
	state BLOB NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

// Open opens the SQLite database at path and ensures the schema exists.
// ":memory:" gives a private in-memory database.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// In-memory databases are per connection.
	db.SetMaxOpenConns(1)

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// InitSchema creates the sessions table if it does not exist.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Session is one stored state blob.
type Session struct {
	ID          string
	ContentType string
	State       []byte
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SessionStore reads and writes session state.
type SessionStore struct {
	db *sql.DB
}

// NewSessionStore creates a store over db. The schema must already exist.
func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

// Save inserts or replaces the state for id.
func (s *SessionStore) Save(ctx context.Context, id, contentType string, state []byte) error {
	if id == "" {
		return fmt.Errorf("session id is required")
	}
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, content_type, state, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content_type = excluded.content_type,
			state = excluded.state,
			updated_at = excluded.updated_at`,
		id, contentType, state, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Load returns the stored state for id, or ErrNotFound.
func (s *SessionStore) Load(ctx context.Context, id string) (*Session, error) {
	var sess Session
	err := s.db.QueryRowContext(ctx,
		`SELECT id, content_type, state, created_at, updated_at FROM sessions WHERE id = ?`,
		id,
	).Scan(&sess.ID, &sess.ContentType, &sess.State, &sess.CreatedAt, &sess.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return &sess, nil
}

// List returns every stored session ordered by id.
func (s *SessionStore) List(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, content_type, state, created_at, updated_at FROM sessions ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.ContentType, &sess.State, &sess.CreatedAt, &sess.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// Delete removes the state for id. Deleting a missing session is not an error.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// SaveRegistry encodes reg with codec and stores it under id.
func (s *SessionStore) SaveRegistry(ctx context.Context, id string, codec shroud.Codec, reg *shroud.Registry) error {
	data, err := shroud.MarshalState(codec, reg)
	if err != nil {
		return err
	}
	return s.Save(ctx, id, codec.ContentType(), data)
}

// LoadRegistry restores the registry stored under id against cat. A session
// with no stored state yields an empty registry. Per-entry problems are
// returned as diagnostics.
func (s *SessionStore) LoadRegistry(ctx context.Context, id string, codec shroud.Codec, cat *shroud.Catalog) (*shroud.Registry, []error, error) {
	sess, err := s.Load(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return shroud.NewRegistry(), nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	if sess.ContentType != codec.ContentType() {
		return nil, nil, fmt.Errorf("%w: stored %s, codec %s", ErrContentType, sess.ContentType, codec.ContentType())
	}
	return shroud.UnmarshalState(ctx, codec, cat, sess.State)
}
