package thermo

import (
	"fmt"
	"math"
)

// DefaultResolution is the number of samples per curve.
const DefaultResolution = 1000

// Engine evaluates ideal-gas processes for one gas on one P-V plane.
type Engine struct {
	gas        Gas
	bounds     Bounds
	resolution int
}

// NewEngine validates its inputs and returns an Engine.
func NewEngine(gas Gas, bounds Bounds, resolution int) (*Engine, error) {
	if err := gas.Validate(); err != nil {
		return nil, err
	}
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	if err := validateResolution(resolution); err != nil {
		return nil, err
	}
	return &Engine{gas: gas, bounds: bounds, resolution: resolution}, nil
}

func (e *Engine) Gas() Gas        { return e.gas }
func (e *Engine) Bounds() Bounds  { return e.bounds }
func (e *Engine) Resolution() int { return e.resolution }

// Evaluate computes ΔU, W and Q for moving from s to q along p.
//
// ΔU is independent of the process. Work is the closed form for isothermal
// and adiabatic paths and the straight-line trapezoid for everything else.
// Degenerate inputs return a *QueryError; callers should drop the readout
// for that frame rather than show it.
func (e *Engine) Evaluate(s State, q Query, p Process) (Result, error) {
	if !s.IsValid() || !q.IsValid() {
		return Result{}, &QueryError{Process: p, Query: q, Reason: "non-finite input"}
	}

	deltaU := e.gas.DeltaU(s.Query(), q)

	var work float64
	switch p {
	case Isothermal:
		if q.Volume <= 0 || s.Volume <= 0 {
			return Result{}, &QueryError{Process: p, Query: q, Reason: "volume must be positive"}
		}
		work = s.Pressure * s.Volume * math.Log(q.Volume/s.Volume)
	case Adiabatic:
		if q.Volume <= 0 || s.Volume <= 0 {
			return Result{}, &QueryError{Process: p, Query: q, Reason: "volume must be positive"}
		}
		work = -deltaU
	default:
		work = Trapezoid(s.Query(), q)
	}

	res := Result{Process: p, DeltaU: deltaU, Work: work, Heat: deltaU + work}
	if !isFinite(res.DeltaU) || !isFinite(res.Work) || !isFinite(res.Heat) {
		return Result{}, &QueryError{Process: p, Query: q, Reason: "non-finite result"}
	}
	return res, nil
}

// EvaluateAll evaluates q against every process. Failed processes are
// reported in errs at the same index.
func (e *Engine) EvaluateAll(s State, q Query) ([]Result, []error) {
	results := make([]Result, len(Processes))
	errs := make([]error, len(Processes))
	for i, p := range Processes {
		results[i], errs[i] = e.Evaluate(s, q, p)
	}
	return results, errs
}

// Trapezoid is the work done along the straight line from a to b.
func Trapezoid(a, b Query) float64 {
	return (b.Pressure + a.Pressure) / 2 * (b.Volume - a.Volume)
}

// GenerateCurve samples process p through s with resolution points.
//
// Isothermal and adiabatic curves diverge at zero volume; when vMin <= 0
// sampling starts one step above zero and ends at vMax. The isochoric curve
// spans the engine's pressure range and ignores vMin and vMax.
func (e *Engine) GenerateCurve(s State, p Process, vMin, vMax float64, resolution int) (Curve, error) {
	if err := validateResolution(resolution); err != nil {
		return Curve{}, err
	}
	if !isFinite(vMin) || !isFinite(vMax) || vMin >= vMax {
		return Curve{}, &ConfigError{Field: "volume", Reason: "curve range must be finite with min below max"}
	}
	if !s.IsValid() {
		return Curve{}, &QueryError{Process: p, Query: s.Query(), Reason: "non-finite state"}
	}

	points := make([]Point, resolution)
	switch p {
	case Isothermal, Adiabatic:
		if vMax <= 0 {
			return Curve{}, &QueryError{Process: p, Query: Query{Volume: vMax}, Reason: "volume range must include positive volumes"}
		}
		gamma := 1.0
		if p == Adiabatic {
			gamma = e.gas.Gamma()
		}
		k := s.Pressure * math.Pow(s.Volume, gamma)
		for i := range points {
			v := positiveSample(vMin, vMax, i, resolution)
			points[i] = Point{Volume: v, Pressure: k / math.Pow(v, gamma)}
		}
	case Isobaric:
		for i := range points {
			points[i] = Point{Volume: linearSample(vMin, vMax, i, resolution), Pressure: s.Pressure}
		}
	case Isochoric:
		for i := range points {
			points[i] = Point{Volume: s.Volume, Pressure: linearSample(e.bounds.PMin, e.bounds.PMax, i, resolution)}
		}
	default:
		return Curve{}, fmt.Errorf("%w: %d", ErrUnknownProcess, int(p))
	}
	return Curve{Process: p, Points: points}, nil
}

// Curves returns all four process curves through s over the engine bounds.
func (e *Engine) Curves(s State) ([]Curve, error) {
	curves := make([]Curve, 0, len(Processes))
	for _, p := range Processes {
		c, err := e.GenerateCurve(s, p, e.bounds.VMin, e.bounds.VMax, e.resolution)
		if err != nil {
			return nil, err
		}
		curves = append(curves, c)
	}
	return curves, nil
}

// Project moves q onto the curve of p through s. Isothermal and adiabatic
// projections keep the volume, isobaric keeps the state's pressure and
// isochoric keeps the state's volume.
func (e *Engine) Project(s State, q Query, p Process) (Query, error) {
	if !s.IsValid() || !q.IsValid() {
		return Query{}, &QueryError{Process: p, Query: q, Reason: "non-finite input"}
	}
	switch p {
	case Isothermal, Adiabatic:
		if q.Volume <= 0 {
			return Query{}, &QueryError{Process: p, Query: q, Reason: "volume must be positive"}
		}
		gamma := 1.0
		if p == Adiabatic {
			gamma = e.gas.Gamma()
		}
		return Query{Pressure: s.Pressure * math.Pow(s.Volume/q.Volume, gamma), Volume: q.Volume}, nil
	case Isobaric:
		return Query{Pressure: s.Pressure, Volume: q.Volume}, nil
	case Isochoric:
		return Query{Pressure: q.Pressure, Volume: s.Volume}, nil
	}
	return Query{}, fmt.Errorf("%w: %d", ErrUnknownProcess, int(p))
}

// ProjectWithin is Project kept on the plane. A projection that leaves the
// bounds slides along the same curve to the boundary it crossed, so the
// result still lies on the curve of p through s. s must lie inside the
// bounds.
func (e *Engine) ProjectWithin(s State, q Query, p Process) (Query, error) {
	b := e.bounds
	curved := p == Isothermal || p == Adiabatic
	if curved {
		q.Volume = math.Min(math.Max(q.Volume, b.VMin), b.VMax)
	}
	t, err := e.Project(s, q, p)
	if err != nil {
		return Query{}, err
	}
	if curved {
		gamma := 1.0
		if p == Adiabatic {
			gamma = e.gas.Gamma()
		}
		// Pressure falls as volume grows on both curves.
		switch {
		case t.Pressure > b.PMax:
			t = Query{Pressure: b.PMax, Volume: s.Volume * math.Pow(s.Pressure/b.PMax, 1/gamma)}
		case t.Pressure < b.PMin:
			t = Query{Pressure: b.PMin, Volume: s.Volume * math.Pow(s.Pressure/b.PMin, 1/gamma)}
		}
	}
	t, _ = b.Clamp(t)
	return t, nil
}

// Nearest returns the process whose curve through s passes closest to q,
// and that distance. Distances are measured with both axes scaled to the
// unit square so pressure and volume weigh equally.
func (e *Engine) Nearest(s State, q Query) (Process, float64, error) {
	curves, err := e.Curves(s)
	if err != nil {
		return 0, 0, err
	}
	pr, vr := e.bounds.PRange(), e.bounds.VRange()

	best, bestDist := Isothermal, math.Inf(1)
	for _, c := range curves {
		for _, pt := range c.Points {
			dv := (pt.Volume - q.Volume) / vr
			dp := (pt.Pressure - q.Pressure) / pr
			d := math.Hypot(dv, dp)
			if d < bestDist {
				best, bestDist = c.Process, d
			}
		}
	}
	if math.IsInf(bestDist, 1) {
		return 0, 0, &QueryError{Process: best, Query: q, Reason: "no finite curve samples"}
	}
	return best, bestDist, nil
}

func validateResolution(n int) error {
	if n < 2 {
		return &ConfigError{Field: "resolution", Reason: "must be at least 2"}
	}
	return nil
}

func linearSample(lo, hi float64, i, n int) float64 {
	return lo + float64(i)*(hi-lo)/float64(n-1)
}

func positiveSample(lo, hi float64, i, n int) float64 {
	if lo > 0 {
		return linearSample(lo, hi, i, n)
	}
	v := float64(i+1) * hi / float64(n)
	return math.Max(v, MinVolume)
}
