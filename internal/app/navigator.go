// Package app runs the normalization pipeline against a remote wiki.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mwnav/mediawikinav/internal/adapters/logger"
	"github.com/mwnav/mediawikinav/internal/adapters/storage"
	"github.com/mwnav/mediawikinav/internal/core/template"
	"github.com/mwnav/mediawikinav/internal/ports"
)

// DefaultConcurrency bounds NormalizeCategory when no limit is configured.
const DefaultConcurrency = 4

// Result describes one page run.
type Result struct {
	Title   string
	Before  string
	After   string
	Status  ports.EditStatus
	Changed bool
	Err     error
}

// Navigator fetches pages, normalizes their templates and writes them back.
type Navigator struct {
	wiki        ports.Wiki
	journal     ports.Journal
	logger      ports.Logger
	cfg         template.Config
	opts        template.RenderOptions
	concurrency int
}

// Option configures a Navigator.
type Option func(*Navigator)

// WithJournal records every run in j.
func WithJournal(j ports.Journal) Option {
	return func(n *Navigator) { n.journal = j }
}

// WithLogger sets the logger.
func WithLogger(l ports.Logger) Option {
	return func(n *Navigator) {
		if l != nil {
			n.logger = l
		}
	}
}

// WithRenderOptions replaces the default render options.
func WithRenderOptions(opts template.RenderOptions) Option {
	return func(n *Navigator) { n.opts = opts }
}

// WithConcurrency limits how many pages NormalizeCategory handles at once.
func WithConcurrency(limit int) Option {
	return func(n *Navigator) {
		if limit > 0 {
			n.concurrency = limit
		}
	}
}

// NewNavigator creates a navigator over wiki using cfg for every page.
func NewNavigator(wiki ports.Wiki, cfg template.Config, opts ...Option) *Navigator {
	n := &Navigator{
		wiki:        wiki,
		logger:      logger.Nop(),
		cfg:         cfg,
		opts:        template.DefaultRenderOptions(),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Preview normalizes a page without writing or journaling it.
func (n *Navigator) Preview(ctx context.Context, title string) (Result, error) {
	before, err := n.wiki.FetchRaw(ctx, title)
	if err != nil {
		return Result{Title: title, Status: ports.StatusFailed, Err: err}, err
	}
	after := template.Render(before, n.cfg, n.opts)
	return Result{
		Title:   title,
		Before:  before,
		After:   after,
		Status:  ports.StatusDryRun,
		Changed: before != after,
	}, nil
}

// NormalizePage fetches title, normalizes it and writes the result back
// unless nothing changed or dryRun is set.
func (n *Navigator) NormalizePage(ctx context.Context, title, summary string, dryRun bool) (Result, error) {
	res, err := n.Preview(ctx, title)
	if err != nil {
		n.logger.Error("Fetch failed", "title", title, "error", err)
		n.record(ctx, res, summary)
		return res, fmt.Errorf("fetch %q: %w", title, err)
	}

	switch {
	case !res.Changed:
		res.Status = ports.StatusUnchanged
	case dryRun:
		res.Status = ports.StatusDryRun
	default:
		if err := n.wiki.WriteText(ctx, title, res.After, summary); err != nil {
			res.Status = ports.StatusFailed
			res.Err = err
			n.logger.Error("Write failed", "title", title, "error", err)
			n.record(ctx, res, summary)
			return res, fmt.Errorf("write %q: %w", title, err)
		}
		res.Status = ports.StatusWritten
	}

	n.logger.Info("Page normalized", "title", title, "status", res.Status, "changed", res.Changed)
	n.record(ctx, res, summary)
	return res, nil
}

// NormalizeCategory runs NormalizePage for every member of category. Pages
// are processed concurrently; each one has its own template store. Results
// keep the member order. The returned error joins every page failure.
func (n *Navigator) NormalizeCategory(ctx context.Context, category, summary string, dryRun bool) ([]Result, error) {
	titles, err := n.wiki.CategoryMembers(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", category, err)
	}
	n.logger.Info("Category listed", "category", category, "pages", len(titles))

	results := make([]Result, len(titles))
	var (
		mu   sync.Mutex
		errs []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n.concurrency)
	for i, title := range titles {
		g.Go(func() error {
			res, err := n.NormalizePage(gctx, title, summary, dryRun)
			results[i] = res
			if err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			// Page failures do not cancel the rest of the batch.
			return nil
		})
	}
	_ = g.Wait()

	return results, errors.Join(errs...)
}

// History returns the journaled runs for title, newest first.
func (n *Navigator) History(ctx context.Context, title string, limit int) ([]ports.JournalEntry, error) {
	if n.journal == nil {
		return nil, nil
	}
	return n.journal.List(ctx, title, limit)
}

func (n *Navigator) record(ctx context.Context, res Result, summary string) {
	if n.journal == nil {
		return
	}
	entry := ports.JournalEntry{
		Title:      res.Title,
		BeforeHash: storage.Hash(res.Before),
		After:      res.After,
		Summary:    summary,
		Status:     res.Status,
	}
	if res.Err != nil {
		entry.Error = res.Err.Error()
	}
	if _, err := n.journal.Record(ctx, entry); err != nil {
		n.logger.Warn("Journal write failed", "title", res.Title, "error", err)
	}
}
