package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwnav/mediawikinav/internal/core/domain"
)

func TestTokenizeAssignsIndexesInOrder(t *testing.T) {
	text := "{{Alpha|1}} mid {{beta|x=y}}\n{{Gamma\n|z}} end"

	out, store := Tokenize(text, true)

	assert.Equal(t, "#_tpl_#Alpha#0## mid #_tpl_#beta#1##\n#_tpl_#Gamma#2## end", out)
	require.Equal(t, 3, store.Len())
	assert.Equal(t, []int{0, 1, 2}, store.Indices())

	names := []string{}
	store.Each(func(tpl *domain.Template) { names = append(names, tpl.Name) })
	assert.Equal(t, []string{"Alpha", "beta", "Gamma"}, names)
}

func TestTokenizeWithoutSplitting(t *testing.T) {
	out, store := Tokenize("a {{Box|x|y=z}} b", false)

	assert.Equal(t, "a #_tpl_#Box#0## b", out)
	tpl, ok := store.Get(0)
	require.True(t, ok)
	assert.False(t, tpl.IsSplit())
	assert.Equal(t, "|x|y=z", tpl.Raw)
}

func TestTokenizeNoMatches(t *testing.T) {
	text := "plain text, {{1bad|x}} and {{ spaced}} stay"

	out, store := Tokenize(text, true)

	assert.Equal(t, text, out)
	assert.Equal(t, 0, store.Len())
}

func TestTokenizeCaseInsensitiveAcrossLines(t *testing.T) {
	out, store := Tokenize("{{INFOBOX\n|name = A\n|born = 1900\n}}", true)

	assert.Equal(t, "#_tpl_#INFOBOX#0##", out)
	tpl, ok := store.Get(0)
	require.True(t, ok)
	assert.Equal(t, []string{"name", "born"}, tpl.Params.Named())
}

func TestTokenizeNestedTemplateIsCutAtFirstClose(t *testing.T) {
	out, store := Tokenize("{{Outer|a={{Inner|b}}|c=d}}", true)

	assert.Equal(t, "#_tpl_#Outer#0##|c=d}}", out)
	require.Equal(t, 1, store.Len())
	tpl, _ := store.Get(0)
	v, _ := tpl.Params.Get("a")
	assert.Equal(t, "{{Inner", v)
}
