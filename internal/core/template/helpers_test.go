package template

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mwnav/mediawikinav/internal/core/domain"
)

type fnTransform struct {
	name string
	fn   func(key, value string) string
}

func (f fnTransform) Name() string { return f.name }
func (f fnTransform) Apply(key, value string) string { return f.fn(key, value) }

type fnDerived struct {
	name string
	fn   func(p *domain.Params) string
}

func (f fnDerived) Name() string { return f.name }
func (f fnDerived) Compute(p *domain.Params) string { return f.fn(p) }

var blanks = regexp.MustCompile(`[ \t]+`)

func spaces() fnTransform {
	return fnTransform{name: "spaces1", fn: func(_, v string) string {
		return domain.TrimBlank(blanks.ReplaceAllString(v, " "))
	}}
}

func upper() fnTransform {
	return fnTransform{name: "upper", fn: func(_, v string) string { return strings.ToUpper(v) }}
}

func counter() fnDerived {
	return fnDerived{name: "kx_example", fn: func(p *domain.Params) string {
		return "123_" + strconv.Itoa(p.Len())
	}}
}

func pairs(p *domain.Params) [][2]string {
	var out [][2]string
	p.Each(func(k, v string) { out = append(out, [2]string{k, v}) })
	return out
}
