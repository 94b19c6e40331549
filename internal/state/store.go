// Package state holds the authoritative thermodynamic state and serializes
// gesture-driven mutation of it.
//
// A drag is a sequence of CommitMove calls sharing one DragHandle. Each call
// moves the state to the (clamped) query and adds the trapezoidal work of that
// step, so many small steps approximate the path integral of P dV along the
// literal drag trajectory.
//
// Store is safe for concurrent use. Every operation completes without
// blocking on anything but the store's own lock.
package state

import (
	"errors"
	"math"
	"sync"

	"github.com/san-kum/pvsim/internal/thermo"
)

var (
	// ErrNoDrag indicates CommitMove was called without a handle.
	ErrNoDrag = errors.New("state: no drag in progress")

	// ErrStaleDrag indicates a handle from an ended or superseded gesture.
	ErrStaleDrag = errors.New("state: drag handle is stale")
)

// Move describes one committed step.
type Move struct {
	Step int
	From thermo.State
	To   thermo.State
	Work float64 // work added by this step
}

// Observer is notified after every committed move and every jump.
type Observer interface {
	OnMove(m Move)
}

// DragHandle references the baseline of an in-progress drag.
type DragHandle struct {
	gen  uint64
	base thermo.Query
	done bool
}


type Store struct {
	mu        sync.RWMutex
	bounds    thermo.Bounds
	cur       thermo.State
	gen       uint64
	steps     int
	clamps    int
	observers []Observer
}

// New returns a Store holding initial, clamped to bounds. Work is kept as
// given.
func New(bounds thermo.Bounds, initial thermo.State) (*Store, error) {
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	if !initial.IsValid() {
		return nil, thermo.ErrNonFinite
	}
	q, _ := bounds.Clamp(initial.Query())
	return &Store{
		bounds: bounds,
		cur:    thermo.State{Pressure: q.Pressure, Volume: q.Volume, Work: initial.Work},
	}, nil
}

func (s *Store) Bounds() thermo.Bounds { return s.bounds }

func (s *Store) Subscribe(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Baseline returns the point the next CommitMove with h measures work from.
func (s *Store) Baseline(h *DragHandle) thermo.Query {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return h.base
}

// Current returns a copy of the state.
func (s *Store) Current() thermo.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Clamps returns how many writes were clamped to the bounds.
func (s *Store) Clamps() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clamps
}

// BeginDrag captures the current point as the baseline of a new gesture.
// Handles from earlier gestures become stale.
func (s *Store) BeginDrag() *DragHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	return &DragHandle{gen: s.gen, base: s.cur.Query()}
}

// EndDrag finishes the gesture of h. Further commits with h fail.
func (s *Store) EndDrag(h *DragHandle) {
	if h == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	h.done = true
}

// CommitMove moves the state to q, clamped to the bounds, and adds the
// trapezoidal work from the handle's baseline. The baseline then advances
// to the new point.
func (s *Store) CommitMove(h *DragHandle, q thermo.Query) (thermo.State, error) {
	if h == nil {
		return thermo.State{}, ErrNoDrag
	}
	if !q.IsValid() {
		return thermo.State{}, thermo.ErrNonFinite
	}

	s.mu.Lock()
	if h.done || h.gen != s.gen {
		s.mu.Unlock()
		return thermo.State{}, ErrStaleDrag
	}

	q, clamped := s.bounds.Clamp(q)
	if clamped {
		s.clamps++
	}
	w := thermo.Trapezoid(h.base, q)
	from := s.cur
	s.cur = thermo.State{Pressure: q.Pressure, Volume: q.Volume, Work: from.Work + w}
	h.base = q
	s.steps++
	mv := Move{Step: s.steps, From: from, To: s.cur, Work: w}
	observers := s.observers
	s.mu.Unlock()

	for _, o := range observers {
		o.OnMove(mv)
	}
	return mv.To, nil
}

// ResetTo sets pressure and volume directly, clamped to the bounds, leaving
// the accumulated work alone. Any open drag becomes stale.
func (s *Store) ResetTo(st thermo.State) (thermo.State, error) {
	if !st.IsValid() {
		return thermo.State{}, thermo.ErrNonFinite
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	q, clamped := s.bounds.Clamp(st.Query())
	if clamped {
		s.clamps++
	}
	s.gen++
	s.cur.Pressure, s.cur.Volume = q.Pressure, q.Volume
	return s.cur, nil
}

// Jump moves the state to q, clamped to the bounds, and adds work to the
// accumulator in one step. Observers see it as a single Move carrying work.
// Any open drag becomes stale.
func (s *Store) Jump(q thermo.Query, work float64) (thermo.State, error) {
	if !q.IsValid() || math.IsNaN(work) || math.IsInf(work, 0) {
		return thermo.State{}, thermo.ErrNonFinite
	}

	s.mu.Lock()
	q, clamped := s.bounds.Clamp(q)
	if clamped {
		s.clamps++
	}
	s.gen++
	from := s.cur
	s.cur = thermo.State{Pressure: q.Pressure, Volume: q.Volume, Work: from.Work + work}
	s.steps++
	mv := Move{Step: s.steps, From: from, To: s.cur, Work: work}
	observers := s.observers
	s.mu.Unlock()

	for _, o := range observers {
		o.OnMove(mv)
	}
	return mv.To, nil
}

func (s *Store) ResetWork() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.Work = 0
}
