package thermo

import (
	"fmt"
	"math"
	"strings"
)

// MinVolume is the smallest volume sampled on curves that diverge at zero.
const MinVolume = 1e-9

// State is the thermodynamic state of the gas.
type State struct {
	Pressure float64 // Pa
	Volume   float64 // m^3
	Work     float64 // J, accumulated over drag gestures
}

// Query returns the (pressure, volume) point of s.
func (s State) Query() Query {
	return Query{Pressure: s.Pressure, Volume: s.Volume}
}

// IsValid reports whether pressure and volume are finite.
func (s State) IsValid() bool {
	return s.Query().IsValid()
}

// Query is a candidate point on the P-V plane.
type Query struct {
	Pressure float64
	Volume   float64
}

func (q Query) IsValid() bool {
	return isFinite(q.Pressure) && isFinite(q.Volume)
}

// Point is one curve sample.
type Point struct {
	Volume   float64
	Pressure float64
}

// Curve is an ordered sequence of samples for one process through a state.
type Curve struct {
	Process Process
	Points  []Point
}

// Pressures returns the pressure of every sample.
func (c Curve) Pressures() []float64 {
	out := make([]float64, len(c.Points))
	for i, p := range c.Points {
		out[i] = p.Pressure
	}
	return out
}

// Result holds the quantities implied by moving from a state to a query
// along a process. Heat absorbed and work done by the gas are positive.
type Result struct {
	Process Process
	DeltaU  float64
	Work    float64
	Heat    float64
}

type Process int

const (
	Isothermal Process = iota
	Adiabatic
	Isobaric
	Isochoric
)

// Processes lists every process in drawing order.
var Processes = []Process{Isothermal, Adiabatic, Isobaric, Isochoric}

var processNames = map[Process]string{
	Isothermal: "isothermal",
	Adiabatic:  "adiabatic",
	Isobaric:   "isobaric",
	Isochoric:  "isochoric",
}

func (p Process) String() string {
	if name, ok := processNames[p]; ok {
		return name
	}
	return fmt.Sprintf("process(%d)", int(p))
}

// ParseProcess maps a process name to its Process. The older spelling
// "isothermic" is accepted as well.
func ParseProcess(name string) (Process, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "isothermal", "isothermic":
		return Isothermal, nil
	case "adiabatic":
		return Adiabatic, nil
	case "isobaric":
		return Isobaric, nil
	case "isochoric":
		return Isochoric, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownProcess, name)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
