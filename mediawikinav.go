// Package mediawikinav reads pages from a MediaWiki installation, rewrites
// their templates in a canonical form and writes them back.
//
// Template bodies are split on "|" into positional and named parameters.
// Every value goes through the configured transforms, derived fields are
// added, and the template is written as
//
//	{{Name|pos1 | pos2
//	|key=value
//	}}
//
// Nested templates are not supported: the first "}}" closes a template.
package mediawikinav

import (
	"context"
	"errors"
	"time"

	"github.com/baditaflorin/l"

	"github.com/mwnav/mediawikinav/internal/adapters/logger"
	"github.com/mwnav/mediawikinav/internal/adapters/normalizer"
	"github.com/mwnav/mediawikinav/internal/adapters/wikiapi"
	"github.com/mwnav/mediawikinav/internal/app"
	"github.com/mwnav/mediawikinav/internal/core/template"
)

type (
	// Result describes the outcome for one page.
	Result = app.Result
	// Doer performs HTTP requests for the wiki client.
	Doer = wikiapi.Doer
)

// Errors returned by the wiki client.
var (
	ErrLoginFailed = wikiapi.ErrLoginFailed
	ErrEditFailed  = wikiapi.ErrEditFailed
	ErrHTTPStatus  = wikiapi.ErrHTTPStatus
	ErrNoTitle     = wikiapi.ErrNoTitle
)

// ErrNoBaseURL is returned by New when the wiki location is missing.
var ErrNoBaseURL = errors.New("mediawikinav: base URL required")

// DefaultTransforms are applied when WithTransforms is not used.
var DefaultTransforms = []string{normalizer.SpacesTransformName}

// Config holds configuration options for a Navigator.
type Config struct {
	User        string
	Password    string
	Transforms  []string
	Derived     []string
	Timeout     time.Duration
	MaxRetries  uint64
	Concurrency int
	Doer        Doer
	// Logger for tracing page runs.
	Logger l.Logger
}

// Option defines a functional option for configuring the Navigator.
type Option func(*Config)

// WithCredentials logs in with user and password before the first request.
func WithCredentials(user, password string) Option {
	return func(cfg *Config) {
		cfg.User = user
		cfg.Password = password
	}
}

// WithTransforms selects built-in transforms by name, in order.
func WithTransforms(names ...string) Option {
	return func(cfg *Config) {
		cfg.Transforms = names
	}
}

// WithDerived selects built-in derived fields by name, in order.
func WithDerived(names ...string) Option {
	return func(cfg *Config) {
		cfg.Derived = names
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(cfg *Config) {
		cfg.Timeout = d
	}
}

// WithMaxRetries sets how often failed requests are retried.
func WithMaxRetries(n uint64) Option {
	return func(cfg *Config) {
		cfg.MaxRetries = n
	}
}

// WithConcurrency limits parallel page runs in NormalizeCategory.
func WithConcurrency(n int) Option {
	return func(cfg *Config) {
		cfg.Concurrency = n
	}
}

// WithDoer replaces the HTTP client.
func WithDoer(d Doer) Option {
	return func(cfg *Config) {
		cfg.Doer = d
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger l.Logger) Option {
	return func(cfg *Config) {
		cfg.Logger = logger
	}
}

// Navigator normalizes pages of one wiki.
type Navigator struct {
	client *wikiapi.Client
	nav    *app.Navigator
}

// New connects to the wiki at baseURL and logs in when credentials are set.
// If no logger is provided, a default logger is created.
func New(ctx context.Context, baseURL string, opts ...Option) (*Navigator, error) {
	if baseURL == "" {
		return nil, ErrNoBaseURL
	}
	cfg := Config{
		Transforms: DefaultTransforms,
		Timeout:    wikiapi.DefaultTimeout,
		MaxRetries: wikiapi.DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Logger == nil {
		lg, err := createDefaultLogger()
		if err != nil {
			return nil, err
		}
		cfg.Logger = lg
	}
	log := logger.FromExisting(cfg.Logger)

	clientOpts := []wikiapi.Option{
		wikiapi.WithTimeout(cfg.Timeout),
		wikiapi.WithRetries(cfg.MaxRetries, wikiapi.DefaultRetryBase),
		wikiapi.WithLogger(log),
	}
	if cfg.Doer != nil {
		clientOpts = append(clientOpts, wikiapi.WithDoer(cfg.Doer))
	}
	client, err := wikiapi.NewWithLogin(ctx, baseURL, cfg.User, cfg.Password, clientOpts...)
	if err != nil {
		return nil, err
	}

	pipeline, unknown := normalizer.NewNormalizerFactory().BuildConfig(cfg.Transforms, cfg.Derived)
	for _, name := range unknown {
		log.Warn("Ignoring unknown normalizer", "name", name)
	}

	return &Navigator{
		client: client,
		nav: app.NewNavigator(client, pipeline,
			app.WithLogger(log),
			app.WithConcurrency(cfg.Concurrency),
			app.WithRenderOptions(template.DefaultRenderOptions()),
		),
	}, nil
}

// Raw returns the wiki source of title.
func (n *Navigator) Raw(ctx context.Context, title string) (string, error) {
	return n.client.FetchRaw(ctx, title)
}

// Preview returns the normalized source of title without editing it.
func (n *Navigator) Preview(ctx context.Context, title string) (Result, error) {
	return n.nav.Preview(ctx, title)
}

// NormalizePage rewrites title on the wiki unless it is already normalized
// or dryRun is set.
func (n *Navigator) NormalizePage(ctx context.Context, title, summary string, dryRun bool) (Result, error) {
	return n.nav.NormalizePage(ctx, title, summary, dryRun)
}

// NormalizeCategory runs NormalizePage for every main namespace member of
// category.
func (n *Navigator) NormalizeCategory(ctx context.Context, category, summary string, dryRun bool) ([]Result, error) {
	return n.nav.NormalizeCategory(ctx, category, summary, dryRun)
}
