package domain

import (
	"sort"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Reserved key prefixes of a parameter mapping. Keys starting with KeyMarker
// are never emitted as named parameters.
const (
	KeyMarker = "#"
	NameKey   = KeyMarker + "name"
)

// Blank is the set of characters trimmed from parameter values: ASCII
// whitespace plus NUL and vertical tab. Unicode spaces such as U+00A0 are kept.
const Blank = " \t\n\r\x00\x0b"

// TrimBlank removes leading and trailing Blank characters from s.
func TrimBlank(s string) string {
	return strings.Trim(s, Blank)
}

// PositionalKey returns the mapping key of the n-th (1-based) positional parameter.
func PositionalKey(n int) string {
	return KeyMarker + itoa(n)
}

// IsPositionalKey reports whether key is a positional parameter key.
func IsPositionalKey(key string) bool {
	return strings.HasPrefix(key, KeyMarker) && key != NameKey
}

// IsNamedKey reports whether key is a named parameter or a derived field.
func IsNamedKey(key string) bool {
	return !strings.HasPrefix(key, KeyMarker)
}

// Params is an ordered parameter mapping. Keys are unique; insertion order is
// preserved and an overwrite keeps the original position.
type Params struct {
	m *orderedmap.OrderedMap[string, string]
}

// NewParams creates an empty mapping.
func NewParams() *Params {
	return &Params{m: orderedmap.New[string, string]()}
}

// Set stores value under key, overwriting any previous value.
func (p *Params) Set(key, value string) {
	p.m.Set(key, value)
}

// Get returns the value stored under key.
func (p *Params) Get(key string) (string, bool) {
	return p.m.Get(key)
}

// Delete removes key from the mapping.
func (p *Params) Delete(key string) {
	p.m.Delete(key)
}

// Len returns the number of keys, including the name key.
func (p *Params) Len() int {
	return p.m.Len()
}

// Name returns the value stored under the reserved name key.
func (p *Params) Name() string {
	v, _ := p.m.Get(NameKey)
	return v
}

// Keys returns all keys in insertion order.
func (p *Params) Keys() []string {
	keys := make([]string, 0, p.m.Len())
	for pair := p.m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Each calls fn for every pair in insertion order.
func (p *Params) Each(fn func(key, value string)) {
	for pair := p.m.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// Positional returns the positional values in insertion order.
func (p *Params) Positional() []string {
	var values []string
	for pair := p.m.Oldest(); pair != nil; pair = pair.Next() {
		if IsPositionalKey(pair.Key) {
			values = append(values, pair.Value)
		}
	}
	return values
}

// Named returns the named and derived keys in insertion order.
func (p *Params) Named() []string {
	var keys []string
	for pair := p.m.Oldest(); pair != nil; pair = pair.Next() {
		if IsNamedKey(pair.Key) {
			keys = append(keys, pair.Key)
		}
	}
	return keys
}

// Clone returns an independent copy with the same order.
func (p *Params) Clone() *Params {
	c := NewParams()
	p.Each(c.Set)
	return c
}

// Template is one template invocation discovered by the tokenizer. Exactly one
// of Raw and Params is meaningful: Params is nil when splitting was disabled.
type Template struct {
	Index  int
	Name   string
	Raw    string
	Params *Params

	// Derived lists the keys written by derived fields on the last
	// normalization pass, in write order.
	Derived []DerivedKey
}

// DerivedKey is a key written by a derived field together with the value it
// replaced. Existed is false when the key was absent before the write.
type DerivedKey struct {
	Key      string
	Replaced string
	Existed  bool
}

// BeforeDerived returns a copy of the parameters as they were before the
// last derived-field pass: replaced values are restored and added keys
// removed.
func (t *Template) BeforeDerived() *Params {
	if t.Params == nil {
		return nil
	}
	c := t.Params.Clone()
	for i := len(t.Derived) - 1; i >= 0; i-- {
		d := t.Derived[i]
		if d.Existed {
			c.Set(d.Key, d.Replaced)
			continue
		}
		c.Delete(d.Key)
	}
	return c
}

// IsSplit reports whether the template content was split into parameters.
func (t *Template) IsSplit() bool {
	return t.Params != nil
}

// Store holds the templates of one tokenize/normalize/untokenize cycle keyed
// by discovery index. It is not safe for concurrent use.
type Store struct {
	items map[int]*Template
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{items: make(map[int]*Template)}
}

// Put stores t under its index, replacing any previous entry.
func (s *Store) Put(t *Template) {
	s.items[t.Index] = t
}

// Get returns the template stored under index.
func (s *Store) Get(index int) (*Template, bool) {
	if s == nil {
		return nil, false
	}
	t, ok := s.items[index]
	return t, ok
}

// Delete removes the entry stored under index.
func (s *Store) Delete(index int) {
	delete(s.items, index)
}

// Len returns the number of stored templates.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Indices returns the stored indexes in ascending order.
func (s *Store) Indices() []int {
	if s == nil {
		return nil
	}
	idx := make([]int, 0, len(s.items))
	for i := range s.items {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

// Each calls fn for every template in ascending index order.
func (s *Store) Each(fn func(t *Template)) {
	for _, i := range s.Indices() {
		fn(s.items[i])
	}
}

// Clear drops every entry.
func (s *Store) Clear() {
	if s == nil {
		return
	}
	s.items = make(map[int]*Template)
}
