package normalizer

import (
	"strconv"

	"github.com/mwnav/mediawikinav/internal/core/domain"
	"github.com/mwnav/mediawikinav/internal/ports"
)

// Built-in derived field names.
const (
	ParamCountName      = "kx_example"
	PositionalCountName = "kx_positional"
)

// ParamCount stores "123_<n>" where n counts every entry of the mapping,
// the name included.
type ParamCount struct{}

// NewParamCount creates the kx_example derived field.
func NewParamCount() ports.DerivedField { return ParamCount{} }

// Name returns the registered name.
func (ParamCount) Name() string { return ParamCountName }

// Compute counts the mapping entries.
func (ParamCount) Compute(params *domain.Params) string {
	return "123_" + strconv.Itoa(params.Len())
}

// PositionalCount stores the number of positional parameters.
type PositionalCount struct{}

// NewPositionalCount creates the kx_positional derived field.
func NewPositionalCount() ports.DerivedField { return PositionalCount{} }

// Name returns the registered name.
func (PositionalCount) Name() string { return PositionalCountName }

// Compute counts positional parameters.
func (PositionalCount) Compute(params *domain.Params) string {
	return strconv.Itoa(len(params.Positional()))
}

// DerivedFunc adapts a plain function to ports.DerivedField.
type DerivedFunc struct {
	ID string
	Fn func(params *domain.Params) string
}

// Name returns the registered name.
func (f DerivedFunc) Name() string { return f.ID }

// Compute calls the wrapped function.
func (f DerivedFunc) Compute(params *domain.Params) string { return f.Fn(params) }
