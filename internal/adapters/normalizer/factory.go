package normalizer

import (
	"sort"
	"sync"

	"github.com/mwnav/mediawikinav/internal/core/template"
	"github.com/mwnav/mediawikinav/internal/ports"
)

// NormalizerFactory resolves transform and derived field names into a
// normalization config.
type NormalizerFactory struct {
	mu         sync.RWMutex
	transforms map[string]func() ports.Transform
	derived    map[string]func() ports.DerivedField
}

// NewNormalizerFactory creates a factory with the built-in entries registered.
func NewNormalizerFactory() *NormalizerFactory {
	f := &NormalizerFactory{
		transforms: make(map[string]func() ports.Transform),
		derived:    make(map[string]func() ports.DerivedField),
	}
	f.RegisterTransform(SpacesTransformName, NewSpacesTransform)
	f.RegisterTransform(TrimTransformName, NewTrimTransform)
	f.RegisterTransform(NFCTransformName, NewNFCTransform)
	f.RegisterDerived(ParamCountName, NewParamCount)
	f.RegisterDerived(PositionalCountName, NewPositionalCount)
	return f
}

// RegisterTransform adds or replaces a transform constructor.
func (f *NormalizerFactory) RegisterTransform(name string, ctor func() ports.Transform) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transforms[name] = ctor
}

// RegisterDerived adds or replaces a derived field constructor.
func (f *NormalizerFactory) RegisterDerived(name string, ctor func() ports.DerivedField) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.derived[name] = ctor
}

// CreateTransform returns a new transform registered under name.
func (f *NormalizerFactory) CreateTransform(name string) (ports.Transform, bool) {
	f.mu.RLock()
	ctor, ok := f.transforms[name]
	f.mu.RUnlock()
	if !ok || ctor == nil {
		return nil, false
	}
	return ctor(), true
}

// CreateDerived returns a new derived field registered under name.
func (f *NormalizerFactory) CreateDerived(name string) (ports.DerivedField, bool) {
	f.mu.RLock()
	ctor, ok := f.derived[name]
	f.mu.RUnlock()
	if !ok || ctor == nil {
		return nil, false
	}
	return ctor(), true
}

// Names returns the registered transform and derived field names, sorted.
func (f *NormalizerFactory) Names() (transforms, derived []string) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for name := range f.transforms {
		transforms = append(transforms, name)
	}
	for name := range f.derived {
		derived = append(derived, name)
	}
	sort.Strings(transforms)
	sort.Strings(derived)
	return transforms, derived
}

// BuildConfig resolves names in order. Names that are not registered are
// skipped and returned in unknown so callers can report them.
func (f *NormalizerFactory) BuildConfig(transformNames, derivedNames []string) (cfg template.Config, unknown []string) {
	for _, name := range transformNames {
		if t, ok := f.CreateTransform(name); ok {
			cfg.Transforms = append(cfg.Transforms, t)
			continue
		}
		unknown = append(unknown, name)
	}
	for _, name := range derivedNames {
		if d, ok := f.CreateDerived(name); ok {
			cfg.Derived = append(cfg.Derived, d)
			continue
		}
		unknown = append(unknown, name)
	}
	return cfg, unknown
}
