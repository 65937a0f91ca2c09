package template

import (
	"strconv"

	"github.com/mwnav/mediawikinav/internal/core/domain"
	"github.com/mwnav/mediawikinav/internal/ports"
)

// Config is the ordered normalization configuration. Transforms run in slice
// order over every parameter; derived fields are computed afterwards. Nil
// entries are skipped.
type Config struct {
	Transforms []ports.Transform
	Derived    []ports.DerivedField
}

// IsZero reports whether the config has neither transforms nor derived fields.
func (c Config) IsZero() bool {
	return len(c.Transforms) == 0 && len(c.Derived) == 0
}

// applyTransforms chains every transform over one key/value pair.
func (c Config) applyTransforms(key, value string) string {
	for _, tr := range c.Transforms {
		if tr == nil {
			continue
		}
		value = tr.Apply(key, value)
	}
	return value
}

// Normalize applies cfg to every template of store in place and returns the
// same store. Unsplit templates are transformed as a whole with their index
// as key and get no derived fields.
func Normalize(store *domain.Store, cfg Config) *domain.Store {
	if store == nil {
		return store
	}
	store.Each(func(t *domain.Template) {
		if !t.IsSplit() {
			t.Raw = cfg.applyTransforms(strconv.Itoa(t.Index), t.Raw)
			return
		}
		for _, key := range t.Params.Keys() {
			v, _ := t.Params.Get(key)
			t.Params.Set(key, cfg.applyTransforms(key, v))
		}
		computeDerived(t, cfg.Derived)
	})
	return store
}

// computeDerived evaluates every derived field against the transformed
// mapping as it stood before any derived write, then stores the results in
// registration order. A user parameter sharing a derived name stays visible
// to every field; values written by an earlier pass are not.
func computeDerived(t *domain.Template, fields []ports.DerivedField) {
	if len(fields) == 0 {
		return
	}
	input := t.BeforeDerived()

	type result struct{ name, value string }
	results := make([]result, 0, len(fields))
	for _, f := range fields {
		if f == nil {
			continue
		}
		results = append(results, result{name: f.Name(), value: f.Compute(input.Clone())})
	}

	t.Params = input
	t.Derived = t.Derived[:0]
	for _, r := range results {
		prev, existed := t.Params.Get(r.name)
		t.Derived = append(t.Derived, domain.DerivedKey{Key: r.name, Replaced: prev, Existed: existed})
		t.Params.Set(r.name, r.value)
	}
}
