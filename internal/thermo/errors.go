package thermo

import (
	"errors"
	"fmt"
)

// Domain errors for engine operations.
var (
	// ErrConfig indicates a degenerate gas, range or resolution setting.
	ErrConfig = errors.New("thermo: invalid configuration")

	// ErrDegenerateQuery indicates a query the formulas cannot evaluate,
	// such as a logarithm or power of a non-positive volume.
	ErrDegenerateQuery = errors.New("thermo: degenerate query")

	// ErrNonFinite indicates a NaN or Inf pressure or volume.
	ErrNonFinite = errors.New("thermo: non-finite value")

	// ErrUnknownProcess indicates a process name that does not parse.
	ErrUnknownProcess = errors.New("thermo: unknown process")
)

// ConfigError wraps ErrConfig with the offending field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrConfig.Error(), e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfig
}

// QueryError wraps ErrDegenerateQuery with the query that caused it.
type QueryError struct {
	Process Process
	Query   Query
	Reason  string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %s at V=%g P=%g: %s", ErrDegenerateQuery.Error(), e.Process, e.Query.Volume, e.Query.Pressure, e.Reason)
}

func (e *QueryError) Unwrap() error {
	return ErrDegenerateQuery
}
