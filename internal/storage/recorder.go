package storage

import (
	"sync"

	"github.com/san-kum/pvsim/internal/state"
	"github.com/san-kum/pvsim/internal/thermo"
)

// Recorder collects committed moves as samples. Subscribe it to a
// state.Store to record a drag.
type Recorder struct {
	mu      sync.Mutex
	samples []Sample
}

// NewRecorder starts a trace at start, recorded as step 0.
func NewRecorder(start thermo.State) *Recorder {
	return &Recorder{samples: []Sample{sampleOf(0, start)}}
}

func (r *Recorder) OnMove(m state.Move) {
	r.mu.Lock()
	r.samples = append(r.samples, sampleOf(m.Step, m.To))
	r.mu.Unlock()
}

func (r *Recorder) Samples() []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Sample, len(r.samples))
	copy(out, r.samples)
	return out
}

func sampleOf(step int, st thermo.State) Sample {
	return Sample{Step: step, Pressure: st.Pressure, Volume: st.Volume, Work: st.Work}
}
