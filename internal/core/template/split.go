package template

import (
	"regexp"
	"strings"

	"github.com/mwnav/mediawikinav/internal/core/domain"
)

var namedParamRe = regexp.MustCompile(`(?is)^([a-z][\w-]*)\s*=\s*(.+)$`)

// Split parses the inner content of a template into an ordered parameter
// mapping. The name goes first under domain.NameKey, followed by positional
// and named parameters in the order they appear. A repeated named key keeps
// its first position and takes the last value.
func Split(name, content string) *domain.Params {
	params := domain.NewParams()
	params.Set(domain.NameKey, name)

	content = strings.ReplaceAll(content, "\t", " ")
	positional := 0
	for _, segment := range strings.Split(content, "|") {
		segment = domain.TrimBlank(segment)
		if segment == "" {
			continue
		}
		if m := namedParamRe.FindStringSubmatch(segment); m != nil {
			params.Set(m[1], m[2])
			continue
		}
		positional++
		params.Set(domain.PositionalKey(positional), segment)
	}
	return params
}
