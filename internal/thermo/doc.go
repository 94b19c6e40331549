// Package thermo provides the ideal-gas process engine.
//
// The package defines the state and query types shared by the rest of the
// program and the pure computations over them:
//
//   - [State]: pressure, volume and accumulated work of the gas
//   - [Query]: a candidate (pressure, volume) point, usually the pointer
//   - [Gas]: gas constant, mole count and degrees of freedom
//   - [Bounds]: the plot ranges every state is clamped to
//   - [Engine]: curve generation and ΔU/W/Q evaluation per [Process]
//
// # Example
//
//	gas := thermo.DefaultGas()
//	bounds, _ := thermo.NewBounds(0, 10, 0, 10)
//	eng, _ := thermo.NewEngine(gas, bounds, 1000)
//	res, err := eng.Evaluate(s, thermo.Query{Pressure: 2.5, Volume: 10}, thermo.Isothermal)
//
// # Thread Safety
//
// An Engine is immutable after construction and may be shared between
// goroutines. Mutable state lives in package state.
package thermo
