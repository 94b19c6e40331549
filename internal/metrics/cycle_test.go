package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/pvsim/internal/state"
	"github.com/san-kum/pvsim/internal/thermo"
)

// runCycle drives a store around the closed rectangle
// (P,V) = (2,2) -> (8,2) -> (8,8) -> (2,8) -> (2,2), which encloses 36 J.
func runCycle(t *testing.T, obs state.Observer) {
	t.Helper()
	bounds, err := thermo.NewBounds(0, 10, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	st, err := state.New(bounds, thermo.State{Pressure: 2, Volume: 2})
	if err != nil {
		t.Fatal(err)
	}
	st.Subscribe(obs)

	h := st.BeginDrag()
	corners := []thermo.Query{
		{Pressure: 8, Volume: 2},
		{Pressure: 8, Volume: 8},
		{Pressure: 2, Volume: 8},
		{Pressure: 2, Volume: 2},
	}
	for _, q := range corners {
		if _, err := st.CommitMove(h, q); err != nil {
			t.Fatalf("CommitMove(%v): %v", q, err)
		}
	}
	st.EndDrag(h)
}

func TestCycleMetrics(t *testing.T) {
	set := Cycle(thermo.DefaultGas())
	runCycle(t, set)

	// Legs: isochoric heating +18, isobaric expansion +120, isochoric
	// cooling -72, isobaric compression -30.
	tests := []struct {
		name string
		want float64
	}{
		{"net_work", 36},
		{"heat_in", 138},
		{"heat_out", 102},
		{"efficiency", 36.0 / 138},
	}

	vals := set.Values()
	for _, tt := range tests {
		got, ok := vals[tt.name]
		if !ok {
			t.Errorf("missing metric %s", tt.name)
			continue
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: expected %f, got %f", tt.name, tt.want, got)
		}
	}

	if net := vals["heat_in"] - vals["heat_out"]; math.Abs(net-vals["net_work"]) > 1e-9 {
		t.Errorf("first law violated over a cycle: Q=%f W=%f", net, vals["net_work"])
	}
}

func TestSetReset(t *testing.T) {
	set := Cycle(thermo.DefaultGas())
	runCycle(t, set)
	set.Reset()

	for name, v := range set.Values() {
		if v != 0 {
			t.Errorf("%s: expected 0 after reset, got %f", name, v)
		}
	}
}

func TestEfficiencyWithoutHeat(t *testing.T) {
	e := NewEfficiency(thermo.DefaultGas())
	if e.Value() != 0 {
		t.Errorf("expected 0, got %f", e.Value())
	}

	// Isochoric cooling only rejects heat.
	e.Observe(state.Move{
		Step: 1,
		From: thermo.State{Pressure: 8, Volume: 2},
		To:   thermo.State{Pressure: 2, Volume: 2},
	})
	if e.Value() != 0 {
		t.Errorf("expected 0 with no heat absorbed, got %f", e.Value())
	}
}

func TestHeatCountsMoves(t *testing.T) {
	h := NewHeat(thermo.DefaultGas())
	runCycle(t, metricObserver{h})
	if h.Moves() != 4 {
		t.Errorf("expected 4 moves, got %d", h.Moves())
	}
}

type metricObserver struct{ h *Heat }

func (o metricObserver) OnMove(m state.Move) { o.h.Observe(m) }
