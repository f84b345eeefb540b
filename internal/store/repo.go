package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/model"
	"github.com/starford/dagaz/internal/normalize"
)

// Put inserts or replaces a draft. The document is deep-stripped of
// absent-sentinel fields before it touches the database; nothing else
// in the codebase is allowed to write the doc column.
func (db *DB) Put(d *model.Draft) error {
	doc, err := normalize.Document(d)
	if err != nil {
		return fmt.Errorf("store: encode draft %s: %w", d.ID, err)
	}
	tagsJSON, _ := json.Marshal(d.Tags)

	_, err = db.conn.Exec(`
		INSERT INTO drafts (id, title, overview, status, tags, doc, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title      = excluded.title,
			overview   = excluded.overview,
			status     = excluded.status,
			tags       = excluded.tags,
			doc        = excluded.doc,
			updated_at = excluded.updated_at
	`, d.ID, d.Title, d.Overview, d.Status, string(tagsJSON), string(doc),
		d.CreatedAt.UTC(), d.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("store: upsert draft: %w", err)
	}
	return nil
}

// Get loads a draft document by id.
func (db *DB) Get(id string) (*model.Draft, error) {
	var doc string
	err := db.conn.QueryRow(`SELECT doc FROM drafts WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get draft: %w", err)
	}

	var d model.Draft
	if err := json.Unmarshal([]byte(doc), &d); err != nil {
		return nil, fmt.Errorf("store: decode draft %s: %w", id, err)
	}
	return &d, nil
}

// Delete removes a draft. Deleting an absent id is a not-found error.
func (db *DB) Delete(id string) error {
	res, err := db.conn.Exec(`DELETE FROM drafts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete draft: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

var sortColumns = map[string]string{
	"":           "updated_at DESC",
	"updated_at": "updated_at DESC",
	"created_at": "created_at DESC",
	"title":      "title COLLATE NOCASE ASC",
}

// List returns paginated listing rows plus the total matching count.
func (db *DB) List(q ListQuery) ([]ListItem, int, error) {
	if q.Limit <= 0 || q.Limit > 200 {
		q.Limit = 50
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	order, ok := sortColumns[q.Sort]
	if !ok {
		order = sortColumns[""]
	}

	where := []string{"1=1"}
	args := []any{}
	if q.Status != "" {
		where = append(where, "status = ?")
		args = append(args, q.Status)
	}
	if q.Tag != "" {
		// Tags are stored as a JSON array of normalized strings.
		where = append(where, "tags LIKE ?")
		args = append(args, `%"`+q.Tag+`"%`)
	}
	if q.Search != "" {
		where = append(where, "(title LIKE ? OR overview LIKE ?)")
		like := "%" + q.Search + "%"
		args = append(args, like, like)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM drafts WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("store: count drafts: %w", err)
	}

	rows, err := db.conn.Query(
		`SELECT id, title, status, tags, created_at, updated_at FROM drafts WHERE `+cond+
			` ORDER BY `+order+` LIMIT ? OFFSET ?`,
		append(args, q.Limit, q.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("store: list drafts: %w", err)
	}
	defer rows.Close()

	var out []ListItem
	for rows.Next() {
		var item ListItem
		var tagsJSON string
		var created, updated time.Time
		if err := rows.Scan(&item.ID, &item.Title, &item.Status, &tagsJSON, &created, &updated); err != nil {
			return nil, 0, err
		}
		if err := json.Unmarshal([]byte(tagsJSON), &item.Tags); err != nil || item.Tags == nil {
			item.Tags = []string{}
		}
		item.CreatedAt = created.UTC().Format(time.RFC3339)
		item.UpdatedAt = updated.UTC().Format(time.RFC3339)
		out = append(out, item)
	}
	if out == nil {
		out = []ListItem{}
	}
	return out, total, rows.Err()
}
