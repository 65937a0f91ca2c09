package normalizer

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/mwnav/mediawikinav/internal/core/domain"
	"github.com/mwnav/mediawikinav/internal/pool"
	"github.com/mwnav/mediawikinav/internal/ports"
)

// Built-in transform names.
const (
	SpacesTransformName = "spaces1"
	TrimTransformName   = "trim"
	NFCTransformName    = "nfc"
)

// SpacesTransform collapses runs of spaces and tabs into one space and trims
// the ends. Newlines inside the value are kept.
type SpacesTransform struct {
	builders *pool.StringBuilderPool
}

// NewSpacesTransform creates the spaces1 transform.
func NewSpacesTransform() ports.Transform {
	return &SpacesTransform{builders: pool.NewStringBuilderPool()}
}

// Name returns the registered name.
func (t *SpacesTransform) Name() string { return SpacesTransformName }

// Apply collapses horizontal whitespace in value.
func (t *SpacesTransform) Apply(_, value string) string {
	// Fast path for values without tabs or double spaces
	if !strings.Contains(value, "\t") && !strings.Contains(value, "  ") {
		return domain.TrimBlank(value)
	}

	sb := t.builders.Get()
	defer t.builders.Put(sb)

	lastWasBlank := false
	start := 0
	for i := 0; i < len(value); i++ {
		b := value[i]
		if b == ' ' || b == '\t' {
			if !lastWasBlank {
				sb.WriteString(value[start:i])
				sb.WriteString(" ")
				lastWasBlank = true
			}
			start = i + 1
			continue
		}
		lastWasBlank = false
	}
	sb.WriteString(value[start:])

	return domain.TrimBlank(sb.String())
}

// TrimTransform trims leading and trailing whitespace.
type TrimTransform struct{}

// NewTrimTransform creates the trim transform.
func NewTrimTransform() ports.Transform { return TrimTransform{} }

// Name returns the registered name.
func (TrimTransform) Name() string { return TrimTransformName }

// Apply trims value.
func (TrimTransform) Apply(_, value string) string { return domain.TrimBlank(value) }

// NFCTransform rewrites values in Unicode normalization form C so that
// visually equal parameters compare equal.
type NFCTransform struct{}

// NewNFCTransform creates the nfc transform.
func NewNFCTransform() ports.Transform { return NFCTransform{} }

// Name returns the registered name.
func (NFCTransform) Name() string { return NFCTransformName }

// Apply normalizes value to NFC.
func (NFCTransform) Apply(_, value string) string {
	if norm.NFC.IsNormalString(value) {
		return value
	}
	return norm.NFC.String(value)
}

// TransformFunc adapts a plain function to ports.Transform.
type TransformFunc struct {
	ID string
	Fn func(key, value string) string
}

// Name returns the registered name.
func (f TransformFunc) Name() string { return f.ID }

// Apply calls the wrapped function.
func (f TransformFunc) Apply(key, value string) string { return f.Fn(key, value) }
