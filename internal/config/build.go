package config

import (
	"github.com/mwnav/mediawikinav/internal/adapters/normalizer"
	"github.com/mwnav/mediawikinav/internal/core/template"
	"github.com/mwnav/mediawikinav/internal/ports"
)

// Pipeline resolves the configured names through f. Unknown names are
// skipped and reported to log.
func (c NormalizeConfig) Pipeline(f *normalizer.NormalizerFactory, log ports.Logger) template.Config {
	if f == nil {
		f = normalizer.NewNormalizerFactory()
	}
	cfg, unknown := f.BuildConfig(c.Transforms, c.Derived)
	for _, name := range unknown {
		if log != nil {
			log.Warn("Ignoring unknown normalizer", "name", name)
		}
	}
	return cfg
}
