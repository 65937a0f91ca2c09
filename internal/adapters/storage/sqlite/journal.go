package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mwnav/mediawikinav/internal/adapters/storage"
	"github.com/mwnav/mediawikinav/internal/ports"
)

type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the journal database at path. Use ":memory:" for a
// throwaway journal.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)

	j := &Journal{db: db, now: time.Now}
	if err := j.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) Close() error { return j.db.Close() }

func (j *Journal) migrate() error {
	_, err := j.db.Exec(`
CREATE TABLE IF NOT EXISTS edits (
  id          INTEGER PRIMARY KEY AUTOINCREMENT,
  title       TEXT NOT NULL,
  before_hash TEXT NOT NULL,
  after       TEXT NOT NULL,
  summary     TEXT NOT NULL,
  status      TEXT NOT NULL,
  error       TEXT NOT NULL DEFAULT '',
  created_at  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_edits_title ON edits(title, created_at DESC);
`)
	return err
}

func (j *Journal) Record(ctx context.Context, e ports.JournalEntry) (int64, error) {
	if e.Title == "" {
		return 0, errors.New("journal entry title required")
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = j.now()
	}
	res, err := j.db.ExecContext(ctx, `
INSERT INTO edits(title, before_hash, after, summary, status, error, created_at)
VALUES(?, ?, ?, ?, ?, ?, ?)
`, e.Title, e.BeforeHash, e.After, e.Summary, string(e.Status), e.Error, e.CreatedAt.UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// List returns the newest entries first. An empty title lists every page.
func (j *Journal) List(ctx context.Context, title string, limit int) ([]ports.JournalEntry, error) {
	if limit <= 0 {
		limit = storage.DefaultListLimit
	}

	rows, err := j.db.QueryContext(ctx, `
SELECT id, title, before_hash, after, summary, status, error, created_at
FROM edits
WHERE ? = '' OR title = ?
ORDER BY id DESC
LIMIT ?
`, title, title, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ports.JournalEntry, 0, limit)
	for rows.Next() {
		var e ports.JournalEntry
		var status string
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.Title, &e.BeforeHash, &e.After, &e.Summary, &status, &e.Error, &createdAt); err != nil {
			return nil, err
		}
		e.Status = ports.EditStatus(status)
		e.CreatedAt = time.UnixMilli(createdAt)
		out = append(out, e)
	}
	return out, rows.Err()
}
