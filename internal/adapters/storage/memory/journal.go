package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mwnav/mediawikinav/internal/adapters/storage"
	"github.com/mwnav/mediawikinav/internal/ports"
)

// Journal keeps entries in memory, newest last.
type Journal struct {
	mu      sync.Mutex
	entries []ports.JournalEntry
	now     func() time.Time
}

// New creates an empty in-memory journal.
func New() *Journal {
	return &Journal{now: time.Now}
}

func (j *Journal) Record(_ context.Context, e ports.JournalEntry) (int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	e.ID = int64(len(j.entries) + 1)
	if e.CreatedAt.IsZero() {
		e.CreatedAt = j.now()
	}
	j.entries = append(j.entries, e)
	return e.ID, nil
}

// List returns the newest entries first. An empty title lists every page.
func (j *Journal) List(_ context.Context, title string, limit int) ([]ports.JournalEntry, error) {
	if limit <= 0 {
		limit = storage.DefaultListLimit
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	out := make([]ports.JournalEntry, 0, limit)
	for i := len(j.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if title == "" || j.entries[i].Title == title {
			out = append(out, j.entries[i])
		}
	}
	return out, nil
}

func (j *Journal) Close() error { return nil }
