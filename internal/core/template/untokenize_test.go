package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwnav/mediawikinav/internal/ports"
)

func TestUntokenizeRoundTrip(t *testing.T) {
	text, store := Tokenize("See {{Cite|Author X | 2020|page=5}} for details.", true)

	got := Untokenize(text, store, UntokenizeOptions{})

	assert.Equal(t, "See {{Cite|Author X | 2020\n|page=5\n}} for details.", got)
}

func TestUntokenizeMissingEntryVanishes(t *testing.T) {
	text, store := Tokenize("x {{Aa|1}} y {{Bb|2}} z", true)
	store.Delete(0)

	got := Untokenize(text, store, UntokenizeOptions{})

	assert.Equal(t, "x  y {{Bb|2\n}} z", got)
}

func TestUntokenizeRaw(t *testing.T) {
	text, store := Tokenize("a {{Box|x|y=z}} b", false)

	assert.Equal(t, "a {{Box|x|y=z\n}} b", Untokenize(text, store, UntokenizeOptions{}))
}

func TestUntokenizeWithoutPositional(t *testing.T) {
	text, store := Tokenize("{{Box|y=z}}", true)

	assert.Equal(t, "{{Box\n|y=z\n}}", Untokenize(text, store, UntokenizeOptions{}))
}

func TestUntokenizeCustomSeparator(t *testing.T) {
	text, store := Tokenize("{{Date|2020|01|31}}", true)

	got := Untokenize(text, store, UntokenizeOptions{Separator: "|"})

	assert.Equal(t, "{{Date|2020|01|31\n}}", got)
}

// Sorting is requested but named parameters keep their mapping order.
func TestUntokenizeSortParamsHasNoEffect(t *testing.T) {
	text, store := Tokenize("{{Info|zeta=1|alpha=2|mid=3}}", true)

	got := Untokenize(text, store, UntokenizeOptions{SortParams: true})

	assert.Equal(t, "{{Info\n|zeta=1\n|alpha=2\n|mid=3\n}}", got)
}

func TestUntokenizeUsesPlaceholderName(t *testing.T) {
	text, store := Tokenize("{{Cite|a}}", true)
	Normalize(store, Config{Transforms: []ports.Transform{upper()}})

	assert.Equal(t, "{{Cite|A\n}}", Untokenize(text, store, UntokenizeOptions{}))
}

func TestUntokenizeClose(t *testing.T) {
	text, store := Tokenize("{{Cite|a}}", true)

	first := Untokenize(text, store, UntokenizeOptions{})
	second := Untokenize(text, store, UntokenizeOptions{Close: true})
	require.Equal(t, first, second)
	assert.Equal(t, 0, store.Len())

	assert.Equal(t, "", Untokenize(text, store, UntokenizeOptions{}))
}

func TestUntokenizeNilStore(t *testing.T) {
	assert.Equal(t, "a  b", Untokenize("a #_tpl_#Cite#0## b", nil, UntokenizeOptions{Close: true}))
}

func TestReconstruct(t *testing.T) {
	_, store := Tokenize("{{Cite|a|b|k=v}}", true)
	tpl, _ := store.Get(0)

	assert.Equal(t, "{{Cite|a, b\n|k=v\n}}", Reconstruct(tpl, ", "))
	assert.Equal(t, "{{Cite|a | b\n|k=v\n}}", Reconstruct(tpl, ""))
}
