package template

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mwnav/mediawikinav/internal/core/domain"
	"github.com/mwnav/mediawikinav/internal/pool"
)

// DefaultSeparator joins positional parameters on reconstruction.
const DefaultSeparator = " | "

var placeholderRe = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(domain.PlaceholderOpen) +
	`([a-z][\w-]+)` + regexp.QuoteMeta(domain.PlaceholderSep) + `(\d+)` + regexp.QuoteMeta(domain.PlaceholderClose))

var builders = pool.NewStringBuilderPool()

// UntokenizeOptions controls reconstruction.
type UntokenizeOptions struct {
	// Separator joins positional values. Empty means DefaultSeparator.
	Separator string
	// Close clears the store once every placeholder has been rewritten.
	Close bool
	// SortParams is accepted for compatibility and has no effect: named
	// parameters are always emitted in mapping order.
	SortParams bool
}

func (o UntokenizeOptions) separator() string {
	if o.Separator == "" {
		return DefaultSeparator
	}
	return o.Separator
}

// Untokenize rewrites every placeholder of text from its store entry. A
// placeholder without an entry is removed.
func Untokenize(text string, store *domain.Store, opts UntokenizeOptions) string {
	sep := opts.separator()
	out := placeholderRe.ReplaceAllStringFunc(text, func(match string) string {
		m := placeholderRe.FindStringSubmatch(match)
		index, err := strconv.Atoi(m[2])
		if err != nil {
			return ""
		}
		t, ok := store.Get(index)
		if !ok {
			return ""
		}
		return render(m[1], t, sep)
	})
	if opts.Close {
		store.Clear()
	}
	return out
}

// Reconstruct renders a single template the way Untokenize does.
func Reconstruct(t *domain.Template, separator string) string {
	if separator == "" {
		separator = DefaultSeparator
	}
	return render(t.Name, t, separator)
}

func render(name string, t *domain.Template, sep string) string {
	sb := builders.Get()
	defer builders.Put(sb)

	sb.WriteString("{{")
	sb.WriteString(name)
	if !t.IsSplit() {
		sb.WriteString(t.Raw)
		sb.WriteString("\n}}")
		return sb.String()
	}

	if positional := t.Params.Positional(); len(positional) > 0 {
		sb.WriteString("|")
		sb.WriteString(strings.Join(positional, sep))
	}
	for _, key := range t.Params.Named() {
		v, _ := t.Params.Get(key)
		sb.WriteString("\n|")
		sb.WriteString(key)
		sb.WriteString("=")
		sb.WriteString(v)
	}
	sb.WriteString("\n}}")
	return sb.String()
}
