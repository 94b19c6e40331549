package thermo

import "math"

// Bounds are the pressure and volume ranges of the P-V plane.
type Bounds struct {
	PMin, PMax float64
	VMin, VMax float64
}

// NewBounds validates and returns Bounds.
func NewBounds(pMin, pMax, vMin, vMax float64) (Bounds, error) {
	b := Bounds{PMin: pMin, PMax: pMax, VMin: vMin, VMax: vMax}
	return b, b.Validate()
}

func (b Bounds) Validate() error {
	if !isFinite(b.PMin) || !isFinite(b.PMax) {
		return &ConfigError{Field: "pressure", Reason: "bounds must be finite"}
	}
	if !isFinite(b.VMin) || !isFinite(b.VMax) {
		return &ConfigError{Field: "volume", Reason: "bounds must be finite"}
	}
	if b.PMin >= b.PMax {
		return &ConfigError{Field: "pressure", Reason: "min must be below max"}
	}
	if b.VMin >= b.VMax {
		return &ConfigError{Field: "volume", Reason: "min must be below max"}
	}
	return nil
}

// Clamp returns q limited to the bounds and whether any component moved.
func (b Bounds) Clamp(q Query) (Query, bool) {
	out := Query{
		Pressure: math.Min(math.Max(q.Pressure, b.PMin), b.PMax),
		Volume:   math.Min(math.Max(q.Volume, b.VMin), b.VMax),
	}
	return out, out != q
}

func (b Bounds) Contains(q Query) bool {
	return q.Pressure >= b.PMin && q.Pressure <= b.PMax &&
		q.Volume >= b.VMin && q.Volume <= b.VMax
}

// Mid returns the centre of the plane.
func (b Bounds) Mid() Query {
	return Query{Pressure: (b.PMin + b.PMax) / 2, Volume: (b.VMin + b.VMax) / 2}
}

func (b Bounds) PRange() float64 { return b.PMax - b.PMin }
func (b Bounds) VRange() float64 { return b.VMax - b.VMin }
