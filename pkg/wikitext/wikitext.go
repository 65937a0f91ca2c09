// Package wikitext normalizes the templates of MediaWiki source text.
//
// A Normalizer runs three steps over a text: templates are replaced by
// placeholders and parsed into parameter mappings, the configured transforms
// and derived fields are applied to every mapping, and the templates are
// written back in canonical form. Text outside templates is left untouched.
package wikitext

import (
	"context"
	"runtime"

	"github.com/baditaflorin/l"
	"golang.org/x/sync/errgroup"

	"github.com/mwnav/mediawikinav/internal/adapters/logger"
	"github.com/mwnav/mediawikinav/internal/adapters/normalizer"
	"github.com/mwnav/mediawikinav/internal/core/domain"
	"github.com/mwnav/mediawikinav/internal/core/template"
	"github.com/mwnav/mediawikinav/internal/ports"
	"github.com/mwnav/mediawikinav/internal/warmup"
)

type (
	// Transform rewrites one parameter value.
	Transform = ports.Transform
	// DerivedField computes an extra parameter from a whole mapping.
	DerivedField = ports.DerivedField
	// Params is the ordered parameter mapping of a template.
	Params = domain.Params
	// Store holds the templates captured from one text.
	Store = domain.Store
	// Template is one captured template.
	Template = domain.Template
	// Logger is the structured logger interface used internally.
	Logger = ports.Logger
	// WarmupConfig tunes the warm-up run of WithWarmUpConfig.
	WarmupConfig = warmup.WarmupConfig
)

// Built-in transform and derived field names accepted by WithNamed.
const (
	Spaces          = normalizer.SpacesTransformName
	Trim            = normalizer.TrimTransformName
	NFC             = normalizer.NFCTransformName
	ParamCount      = normalizer.ParamCountName
	PositionalCount = normalizer.PositionalCountName
)

// Normalizer applies a fixed normalization config to texts. It is safe for
// concurrent use as long as its transforms and derived fields are.
type Normalizer struct {
	cfg         template.Config
	opts        template.RenderOptions
	logger      ports.Logger
	concurrency int
}

// Option defines a functional option for configuring a Normalizer.
type Option func(*normalizerConfig)

type normalizerConfig struct {
	Transforms []Transform
	Derived    []DerivedField
	Named      []string
	Render     template.RenderOptions
	Logger      ports.Logger
	Concurrency int
	WarmUp      bool
	WarmUpCfg   warmup.WarmupConfig
}

// WithTransform appends a transform. Transforms run in the order given.
func WithTransform(t Transform) Option {
	return func(cfg *normalizerConfig) {
		cfg.Transforms = append(cfg.Transforms, t)
	}
}

// WithTransformFunc appends a transform backed by fn.
func WithTransformFunc(name string, fn func(key, value string) string) Option {
	return WithTransform(normalizer.TransformFunc{ID: name, Fn: fn})
}

// WithDerivedField appends a derived field.
func WithDerivedField(d DerivedField) Option {
	return func(cfg *normalizerConfig) {
		cfg.Derived = append(cfg.Derived, d)
	}
}

// WithDerivedFunc appends a derived field backed by fn.
func WithDerivedFunc(name string, fn func(params *Params) string) Option {
	return WithDerivedField(normalizer.DerivedFunc{ID: name, Fn: fn})
}

// WithNamed appends built-in transforms and derived fields by name. They run
// after the ones given with WithTransform and WithDerivedField. Unknown names
// are ignored and logged.
func WithNamed(names ...string) Option {
	return func(cfg *normalizerConfig) {
		cfg.Named = append(cfg.Named, names...)
	}
}

// WithSeparator sets the string placed between positional values.
func WithSeparator(sep string) Option {
	return func(cfg *normalizerConfig) {
		cfg.Render.Separator = sep
	}
}

// WithSplitParams turns parameter parsing on or off. When off, template
// bodies are kept as raw strings.
func WithSplitParams(split bool) Option {
	return func(cfg *normalizerConfig) {
		cfg.Render.SplitParams = split
	}
}

// WithSortParams is accepted for compatibility. Parameters keep their order.
func WithSortParams(sort bool) Option {
	return func(cfg *normalizerConfig) {
		cfg.Render.SortParams = sort
	}
}

// WithLogger sets a custom logger.
func WithLogger(lg l.Logger) Option {
	return func(cfg *normalizerConfig) {
		cfg.Logger = logger.FromExisting(lg)
	}
}

// WithLoggerAdapter sets a logger that already implements Logger.
func WithLoggerAdapter(lg Logger) Option {
	return func(cfg *normalizerConfig) {
		cfg.Logger = lg
	}
}

// WithConcurrency caps how many texts NormalizeAll renders at once. Zero or
// less selects runtime.NumCPU().
func WithConcurrency(n int) Option {
	return func(cfg *normalizerConfig) {
		cfg.Concurrency = n
	}
}

// WithWarmUp renders sample text on creation so the first real call does
// not pay for cold pools.
func WithWarmUp(enable bool) Option {
	return func(cfg *normalizerConfig) {
		cfg.WarmUp = enable
	}
}

// WithWarmUpConfig sets a custom warm-up configuration.
func WithWarmUpConfig(config WarmupConfig) Option {
	return func(cfg *normalizerConfig) {
		cfg.WarmUpCfg = config
		cfg.WarmUp = true
	}
}

// New creates a Normalizer. Without options it splits parameters and applies
// no transforms, which still rewrites templates in canonical form.
func New(opts ...Option) (*Normalizer, error) {
	config := &normalizerConfig{
		Render:    template.DefaultRenderOptions(),
		WarmUpCfg: warmup.DefaultWarmupConfig(),
	}
	for _, opt := range opts {
		opt(config)
	}
	if config.Concurrency <= 0 {
		config.Concurrency = runtime.NumCPU()
	}

	if config.Logger == nil {
		var err error
		config.Logger, err = logger.NewStdLogger()
		if err != nil {
			return nil, err
		}
	}

	cfg := template.Config{
		Transforms: config.Transforms,
		Derived:    config.Derived,
	}
	if len(config.Named) > 0 {
		factory := normalizer.NewNormalizerFactory()
		for _, name := range config.Named {
			if t, ok := factory.CreateTransform(name); ok {
				cfg.Transforms = append(cfg.Transforms, t)
			} else if d, ok := factory.CreateDerived(name); ok {
				cfg.Derived = append(cfg.Derived, d)
			} else {
				config.Logger.Warn("Ignoring unknown normalizer", "name", name)
			}
		}
	}

	if config.WarmUp {
		wm := warmup.NewManager(config.Logger, config.WarmUpCfg)
		wm.RegisterPipeline(cfg)
		wm.WarmUp(context.Background())
	}

	return &Normalizer{
		cfg:         cfg,
		opts:        config.Render,
		logger:      config.Logger,
		concurrency: config.Concurrency,
	}, nil
}

// Normalize returns text with every template rewritten.
func (n *Normalizer) Normalize(text string) string {
	out := template.Render(text, n.cfg, n.opts)
	n.logger.Debug("Text normalized", "in_bytes", len(text), "out_bytes", len(out))
	return out
}

// NormalizeAll normalizes texts in parallel, at most WithConcurrency at a
// time. The result keeps input order.
func (n *Normalizer) NormalizeAll(ctx context.Context, texts []string) ([]string, error) {
	out := make([]string, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n.concurrency)
	for i, text := range texts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = template.Render(text, n.cfg, n.opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Tokenize replaces every template of text with a placeholder and returns
// the captured templates.
func Tokenize(text string, splitParams bool) (string, *Store) {
	return template.Tokenize(text, splitParams)
}

// Untokenize writes the templates of store back into text. An empty
// separator selects " | ". When closeStore is set the store is emptied.
func Untokenize(text string, store *Store, separator string, closeStore bool) string {
	return template.Untokenize(text, store, template.UntokenizeOptions{
		Separator: separator,
		Close:     closeStore,
	})
}
