package metrics

import (
	"sync"

	"github.com/san-kum/pvsim/internal/state"
)

// Metric accumulates a value over committed moves.
type Metric interface {
	Name() string
	Observe(m state.Move)
	Value() float64
	Reset()
}

// Set fans moves out to a group of metrics. It implements state.Observer.
type Set struct {
	mu      sync.Mutex
	metrics []Metric
}

func NewSet(ms ...Metric) *Set {
	return &Set{metrics: ms}
}

func (s *Set) OnMove(m state.Move) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, metric := range s.metrics {
		metric.Observe(m)
	}
}

// Values returns the current value of every metric by name.
func (s *Set) Values() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]float64, len(s.metrics))
	for _, metric := range s.metrics {
		out[metric.Name()] = metric.Value()
	}
	return out
}

func (s *Set) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, metric := range s.metrics {
		metric.Reset()
	}
}
