package template

import (
	"regexp"

	"github.com/mwnav/mediawikinav/internal/core/domain"
)

// templateRe matches {{name content}} up to the nearest "}}".
var templateRe = regexp.MustCompile(`(?is)\{\{([a-z][\w-]+)(.+?)\}\}`)

// Tokenize replaces every template invocation in text with a placeholder and
// returns the rewritten text together with a fresh store. Indexes are
// assigned from 0 in order of match position. When splitParams is false the
// store keeps the unsplit inner content of each template.
func Tokenize(text string, splitParams bool) (string, *domain.Store) {
	store := domain.NewStore()
	n := 0
	out := templateRe.ReplaceAllStringFunc(text, func(match string) string {
		m := templateRe.FindStringSubmatch(match)
		name, content := m[1], m[2]

		t := &domain.Template{Index: n, Name: name}
		if splitParams {
			t.Params = Split(name, content)
		} else {
			t.Raw = content
		}
		store.Put(t)

		n++
		return domain.Placeholder(name, t.Index)
	})
	return out, store
}
