package thermo

import "math"

const (
	GasConstant  = 8.314 // J mol^-1 K^-1
	DefaultMoles = 1.0   // mol
	DefaultDOF   = 3.0   // monatomic
)

// Gas holds the ideal-gas constants used by an Engine.
type Gas struct {
	R   float64 // J mol^-1 K^-1
	N   float64 // mol
	DOF float64 // translational + rotational degrees of freedom
}

// DefaultGas returns one mole of a monatomic ideal gas.
func DefaultGas() Gas {
	return Gas{R: GasConstant, N: DefaultMoles, DOF: DefaultDOF}
}

// NewGas validates and returns a Gas.
func NewGas(r, n, dof float64) (Gas, error) {
	g := Gas{R: r, N: n, DOF: dof}
	return g, g.Validate()
}

func (g Gas) Validate() error {
	switch {
	case !(g.R > 0) || math.IsInf(g.R, 0):
		return &ConfigError{Field: "gas.r", Reason: "must be a positive finite number"}
	case !(g.N > 0) || math.IsInf(g.N, 0):
		return &ConfigError{Field: "gas.n", Reason: "must be a positive finite number"}
	case !(g.DOF > 0) || math.IsInf(g.DOF, 0):
		return &ConfigError{Field: "gas.dof", Reason: "must be a positive finite number"}
	}
	return nil
}

// Cv is the heat capacity at constant volume, (DOF/2)·R·N.
func (g Gas) Cv() float64 {
	return g.DOF / 2 * g.R * g.N
}

// Cp is the heat capacity at constant pressure, (DOF/2 + 1)·R·N.
func (g Gas) Cp() float64 {
	return (g.DOF/2 + 1) * g.R * g.N
}

// Gamma is the heat capacity ratio Cp/Cv.
func (g Gas) Gamma() float64 {
	return g.Cp() / g.Cv()
}

// Temperature returns the temperature in K of a gas at q.
func (g Gas) Temperature(q Query) float64 {
	return q.Pressure * q.Volume / (g.N * g.R)
}

// DeltaU is the change in internal energy from a to b, Cv/R·Δ(PV). It does
// not depend on the path taken.
func (g Gas) DeltaU(a, b Query) float64 {
	return g.Cv() / g.R * (b.Pressure*b.Volume - a.Pressure*a.Volume)
}
