package ports

import "github.com/mwnav/mediawikinav/internal/core/domain"

// Transform normalizes one template parameter value.
type Transform interface {
	Name() string
	Apply(key, value string) string
}

// DerivedField computes a value from an already-normalized parameter mapping.
// The result is stored under Name() in the same mapping.
type DerivedField interface {
	Name() string
	Compute(params *domain.Params) string
}
