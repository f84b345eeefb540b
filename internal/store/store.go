// Package store persists drafts in SQLite. Each draft is kept as a
// JSON document alongside a few denormalized columns used for listing
// and filtering. Writes are last-write-wins: concurrent edits to the
// same draft can clobber each other, which is an accepted risk at this
// scope.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/dagaz/internal/model"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS drafts (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL DEFAULT '',
	overview   TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL DEFAULT 'draft',
	tags       TEXT NOT NULL DEFAULT '[]',
	doc        TEXT NOT NULL DEFAULT '{}',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_drafts_status ON drafts(status);
CREATE INDEX IF NOT EXISTS idx_drafts_updated_at ON drafts(updated_at);
`

// ListQuery narrows and pages a draft listing.
type ListQuery struct {
	Limit  int
	Offset int
	Status string
	Tag    string
	Search string
	Sort   string // updated_at (default), created_at, title
}

// ListItem is a lightweight listing row; the timeline and analysis
// stay in the document and are not loaded for listings.
type ListItem struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Status    string   `json:"status"`
	Tags      []string `json:"tags"`
	UpdatedAt string   `json:"updated_at"`
	CreatedAt string   `json:"created_at"`
}

// DraftStore defines the persistence operations the service layer
// depends on. Consumers should depend on this interface rather than
// the concrete *DB type to facilitate testing with fakes.
type DraftStore interface {
	Put(d *model.Draft) error
	Get(id string) (*model.Draft, error)
	Delete(id string) error
	List(q ListQuery) ([]ListItem, int, error)
	Close() error
}

// Verify *DB satisfies DraftStore at compile time.
var _ DraftStore = (*DB)(nil)

// DB wraps a sql.DB with draft-store operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
