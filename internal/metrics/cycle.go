package metrics

import (
	"github.com/san-kum/pvsim/internal/state"
	"github.com/san-kum/pvsim/internal/thermo"
)

// NetWork is the total work done by the gas over the observed moves. For a
// closed clockwise loop it equals the enclosed area.
type NetWork struct {
	name string
	sum  float64
}

func NewNetWork() *NetWork {
	return &NetWork{name: "net_work"}
}

func (n *NetWork) Name() string { return n.name }

func (n *NetWork) Observe(m state.Move) {
	n.sum += m.Work
}

func (n *NetWork) Value() float64 { return n.sum }

func (n *NetWork) Reset() { n.sum = 0 }

// Heat splits the heat exchanged along each move into absorbed and rejected
// parts. A move is treated as the straight segment the store integrated.
type Heat struct {
	gas    thermo.Gas
	in     float64
	out    float64
	nmoves int
}

func NewHeat(gas thermo.Gas) *Heat {
	return &Heat{gas: gas}
}

func (h *Heat) Observe(m state.Move) {
	q := h.gas.DeltaU(m.From.Query(), m.To.Query()) + m.Work
	if q > 0 {
		h.in += q
	} else {
		h.out -= q
	}
	h.nmoves++
}

func (h *Heat) Reset() {
	h.in, h.out, h.nmoves = 0, 0, 0
}

// In is the heat absorbed by the gas.
func (h *Heat) In() float64 { return h.in }

// Out is the heat rejected by the gas, as a positive number.
func (h *Heat) Out() float64 { return h.out }

func (h *Heat) Moves() int { return h.nmoves }

// HeatIn reports Heat.In as a Metric.
type HeatIn struct{ *Heat }

func (h HeatIn) Name() string   { return "heat_in" }
func (h HeatIn) Value() float64 { return h.In() }

// HeatOut reports Heat.Out as a Metric. It shares its Heat with a HeatIn,
// so only one of the two should observe moves.
type HeatOut struct{ *Heat }

func (h HeatOut) Name() string       { return "heat_out" }
func (h HeatOut) Observe(state.Move) {}
func (h HeatOut) Value() float64     { return h.Out() }
func (h HeatOut) Reset()             {}

// Efficiency is net work over heat absorbed. It is zero until some heat has
// been absorbed.
type Efficiency struct {
	work *NetWork
	heat *Heat
}

func NewEfficiency(gas thermo.Gas) *Efficiency {
	return &Efficiency{work: NewNetWork(), heat: NewHeat(gas)}
}

func (e *Efficiency) Name() string { return "efficiency" }

func (e *Efficiency) Observe(m state.Move) {
	e.work.Observe(m)
	e.heat.Observe(m)
}

func (e *Efficiency) Value() float64 {
	if e.heat.In() == 0 {
		return 0
	}
	return e.work.Value() / e.heat.In()
}

func (e *Efficiency) Reset() {
	e.work.Reset()
	e.heat.Reset()
}

// Cycle returns the standard metric set for gas: net work, heat absorbed,
// heat rejected and efficiency.
func Cycle(gas thermo.Gas) *Set {
	heat := NewHeat(gas)
	return NewSet(NewNetWork(), HeatIn{heat}, HeatOut{heat}, NewEfficiency(gas))
}
