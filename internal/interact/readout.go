package interact

import (
	"fmt"

	"github.com/san-kum/pvsim/internal/thermo"
)

// Row is the readout of one process. Err is set when the engine could not
// evaluate the query; such rows are suppressed for the frame.
type Row struct {
	Result thermo.Result
	Err    error
}

func (r Row) Suppressed() bool { return r.Err != nil }

// Readout is the live label data for the hovered point. NearestOK is false
// when no curve sample could be measured.
type Readout struct {
	Query     thermo.Query
	State     thermo.State
	Rows      []Row
	Nearest   thermo.Process
	NearestOK bool
}

// Row returns the row for p.
func (r Readout) Row(p thermo.Process) (Row, bool) {
	for _, row := range r.Rows {
		if row.Result.Process == p {
			return row, true
		}
	}
	return Row{}, false
}

// Readout evaluates the hovered point against every process. It is pure with
// respect to the store and safe to call every frame. ok is false when the
// pointer is not over the plane.
func (m *Machine) Readout() (Readout, bool) {
	if !m.hovering {
		return Readout{}, false
	}
	return Evaluate(m.eng, m.store.Current(), m.hover), true
}

// Evaluate builds a Readout for q against s.
func Evaluate(eng *thermo.Engine, s thermo.State, q thermo.Query) Readout {
	r := Readout{Query: q, State: s, Rows: make([]Row, len(thermo.Processes))}
	results, errs := eng.EvaluateAll(s, q)
	for i, p := range thermo.Processes {
		res := results[i]
		res.Process = p
		r.Rows[i] = Row{Result: res, Err: errs[i]}
	}
	if p, _, err := eng.Nearest(s, q); err == nil {
		r.Nearest, r.NearestOK = p, true
	}
	return r
}

// Label formats a readout row the way the plot tooltip shows it.
func Label(q thermo.Query, res thermo.Result) string {
	return fmt.Sprintf("%s\nV = %.1f m^3\nP = %.1f Pa\nΔU = %.1f J\nW = %.1f J\nQ = %.1f J",
		res.Process, q.Volume, q.Pressure, res.DeltaU, res.Work, res.Heat)
}
