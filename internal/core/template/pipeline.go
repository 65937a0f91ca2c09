package template

// RenderOptions controls a full tokenize, normalize and untokenize cycle.
type RenderOptions struct {
	SplitParams bool
	UntokenizeOptions
}

// DefaultRenderOptions splits parameters, closes the store after the pass
// and requests sorting, which has no effect.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		SplitParams: true,
		UntokenizeOptions: UntokenizeOptions{
			Separator:  DefaultSeparator,
			Close:      true,
			SortParams: true,
		},
	}
}

// Render normalizes every template of text. Empty text is returned as is.
func Render(text string, cfg Config, opts RenderOptions) string {
	if text == "" {
		return text
	}
	tokenized, store := Tokenize(text, opts.SplitParams)
	Normalize(store, cfg)
	return Untokenize(tokenized, store, opts.UntokenizeOptions)
}
