package ports

import (
	"context"
	"time"
)

// EditStatus describes what happened to a page during a normalization run.
type EditStatus string

const (
	StatusUnchanged EditStatus = "unchanged"
	StatusDryRun    EditStatus = "dry_run"
	StatusWritten   EditStatus = "written"
	StatusFailed    EditStatus = "failed"
)

// JournalEntry records a single page normalization.
type JournalEntry struct {
	ID         int64
	Title      string
	BeforeHash string
	After      string
	Summary    string
	Status     EditStatus
	Error      string
	CreatedAt  time.Time
}

// Journal persists normalization runs.
type Journal interface {
	Record(ctx context.Context, entry JournalEntry) (int64, error)
	List(ctx context.Context, title string, limit int) ([]JournalEntry, error)
	Close() error
}
