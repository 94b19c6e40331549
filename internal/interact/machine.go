// Package interact turns pointer events on the P-V plane into state
// mutations and live readouts.
//
// The interaction is a two-phase machine, Idle and Dragging. Its transition
// table is plain data (see Next) so hosts and tests can inspect it without a
// pointer-event library.
package interact

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/san-kum/pvsim/internal/logging"
	"github.com/san-kum/pvsim/internal/state"
	"github.com/san-kum/pvsim/internal/thermo"
)

type Phase int

const (
	Idle Phase = iota
	Dragging
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

type EventKind int

const (
	Hover EventKind = iota
	PointerDown
	PointerMove
	PointerUp
	FocusLost
	AltClick
)

var eventNames = [...]string{"hover", "pointer-down", "pointer-move", "pointer-up", "focus-lost", "alt-click"}

func (k EventKind) String() string {
	if k >= 0 && int(k) < len(eventNames) {
		return eventNames[k]
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event is one pointer event translated to plot coordinates.
type Event struct {
	Kind  EventKind
	Query thermo.Query
}

type action int

const (
	actNone action = iota
	actBegin
	actCommit
	actEnd
	actSnap
)

type transition struct {
	from Phase
	on   EventKind
}

type edge struct {
	to  Phase
	act action
}

var table = map[transition]edge{
	{Idle, Hover}:           {Idle, actNone},
	{Idle, PointerMove}:     {Idle, actNone},
	{Idle, PointerDown}:     {Dragging, actBegin},
	{Idle, AltClick}:        {Idle, actSnap},
	{Dragging, Hover}:       {Dragging, actNone},
	{Dragging, PointerMove}: {Dragging, actCommit},
	{Dragging, PointerUp}:   {Idle, actEnd},
	{Dragging, FocusLost}:   {Idle, actEnd},
}

// Next reports the phase reached from p on k. Events without an entry are
// ignored by the machine.
func Next(p Phase, k EventKind) (Phase, bool) {
	e, ok := table[transition{p, k}]
	return e.to, ok
}

// Store is the subset of *state.Store the machine drives.
type Store interface {
	Current() thermo.State
	BeginDrag() *state.DragHandle
	CommitMove(h *state.DragHandle, q thermo.Query) (thermo.State, error)
	EndDrag(h *state.DragHandle)
	Jump(q thermo.Query, work float64) (thermo.State, error)
}

// Snap records the outcome of an alternate-click jump.
type Snap struct {
	From   thermo.State
	To     thermo.State
	Result thermo.Result
}

type Option func(*Machine)

func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) { m.log = l }
}

type Machine struct {
	eng   *thermo.Engine
	store Store
	log   *slog.Logger

	phase    Phase
	drag     *state.DragHandle
	hover    thermo.Query
	hovering bool
	lastSnap *Snap
}

func New(eng *thermo.Engine, store Store, opts ...Option) *Machine {
	m := &Machine{eng: eng, store: store}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = logging.NewNop()
	}
	return m
}

func (m *Machine) Phase() Phase { return m.phase }

// LastSnap returns the most recent alternate-click jump, if any.
func (m *Machine) LastSnap() (Snap, bool) {
	if m.lastSnap == nil {
		return Snap{}, false
	}
	return *m.lastSnap, true
}

// Handle applies ev. Unlisted events are ignored. A failed action leaves the
// machine Idle with no open drag.
func (m *Machine) Handle(ev Event) error {
	if ev.Kind == FocusLost {
		m.hovering = false
	} else {
		if !ev.Query.IsValid() {
			return thermo.ErrNonFinite
		}
		m.hover, m.hovering = ev.Query, true
	}

	e, ok := table[transition{m.phase, ev.Kind}]
	if !ok {
		m.log.Debug("ignored event", "phase", m.phase, "event", ev.Kind)
		return nil
	}

	var err error
	switch e.act {
	case actBegin:
		m.drag = m.store.BeginDrag()
		err = m.commit(ev.Query)
	case actCommit:
		err = m.commit(ev.Query)
	case actEnd:
		m.endDrag()
	case actSnap:
		err = m.snap(ev.Query)
	}
	if err != nil {
		m.endDrag()
		m.phase = Idle
		return err
	}

	if e.to != m.phase {
		m.log.Debug("transition", "from", m.phase, "to", e.to, "event", ev.Kind)
	}
	m.phase = e.to
	return nil
}

func (m *Machine) commit(q thermo.Query) error {
	st, err := m.store.CommitMove(m.drag, q)
	if err != nil {
		return fmt.Errorf("commit move: %w", err)
	}
	if st.Query() != q {
		m.log.Debug("clamped move", "pressure", q.Pressure, "volume", q.Volume,
			"to_pressure", st.Pressure, "to_volume", st.Volume)
	}
	return nil
}

func (m *Machine) endDrag() {
	if m.drag != nil {
		m.store.EndDrag(m.drag)
		m.drag = nil
	}
}

// snap jumps the state along the curve nearest to q and inherits the work
// the engine computes for that curve. Targets past the plane stop where the
// curve meets its edge.
func (m *Machine) snap(q thermo.Query) error {
	from := m.store.Current()

	proc, dist, err := m.eng.Nearest(from, q)
	if err != nil {
		return fmt.Errorf("snap: %w", err)
	}
	target, err := m.eng.ProjectWithin(from, q, proc)
	if err != nil {
		return fmt.Errorf("snap: %w", err)
	}

	res, err := m.eng.Evaluate(from, target, proc)
	if err != nil {
		return fmt.Errorf("snap: %w", err)
	}
	to, err := m.store.Jump(target, res.Work)
	if err != nil {
		return fmt.Errorf("snap: %w", err)
	}
	m.lastSnap = &Snap{From: from, To: to, Result: res}
	m.log.Debug("snapped", "process", proc, "distance", dist, "work", res.Work)
	return nil
}

// IsSuppressed reports whether err means a readout should be hidden for the
// current frame rather than shown or reported.
func IsSuppressed(err error) bool {
	return errors.Is(err, thermo.ErrDegenerateQuery)
}
