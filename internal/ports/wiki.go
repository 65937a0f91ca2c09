package ports

import "context"

// PageFetcher returns the unmodified wiki source of a page.
type PageFetcher interface {
	FetchRaw(ctx context.Context, title string) (string, error)
}

// PageWriter submits new wiki source for a page.
type PageWriter interface {
	WriteText(ctx context.Context, title, text, summary string) error
}

// CategoryLister lists the main namespace pages of a category.
type CategoryLister interface {
	CategoryMembers(ctx context.Context, category string) ([]string, error)
}

// Wiki is the full remote collaborator used by the application service.
type Wiki interface {
	PageFetcher
	PageWriter
	CategoryLister
}
