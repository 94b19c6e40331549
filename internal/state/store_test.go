package state

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/san-kum/pvsim/internal/thermo"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	b, err := thermo.NewBounds(0, 10, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	s, err := New(b, thermo.State{Pressure: 5, Volume: 5})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

type recorder struct{ moves []Move }

func (r *recorder) OnMove(m Move) { r.moves = append(r.moves, m) }

func TestCurrentIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	a, b := s.Current(), s.Current()
	if a != b {
		t.Errorf("Current() changed between calls: %+v vs %+v", a, b)
	}
}

func TestNewClampsInitialState(t *testing.T) {
	b, _ := thermo.NewBounds(1, 2, 1, 2)
	s, err := New(b, thermo.State{Pressure: 5, Volume: 0, Work: 3})
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Current(); got != (thermo.State{Pressure: 2, Volume: 1, Work: 3}) {
		t.Errorf("unexpected initial state %+v", got)
	}

	if _, err := New(b, thermo.State{Pressure: math.NaN(), Volume: 1}); !errors.Is(err, thermo.ErrNonFinite) {
		t.Errorf("expected ErrNonFinite, got %v", err)
	}
	if _, err := New(thermo.Bounds{PMin: 1, PMax: 1, VMin: 0, VMax: 1}, thermo.State{}); !errors.Is(err, thermo.ErrConfig) {
		t.Errorf("expected ErrConfig, got %v", err)
	}
}

func TestCommitMove_Trapezoid(t *testing.T) {
	s := newTestStore(t)
	h := s.BeginDrag()

	got, err := s.CommitMove(h, thermo.Query{Pressure: 5, Volume: 10})
	if err != nil {
		t.Fatal(err)
	}
	if got.Work != 25 {
		t.Errorf("expected work 25, got %f", got.Work)
	}
	if b := s.Baseline(h); b != (thermo.Query{Pressure: 5, Volume: 10}) {
		t.Errorf("baseline did not advance: %+v", b)
	}

	got, err = s.CommitMove(h, thermo.Query{Pressure: 3, Volume: 6})
	if err != nil {
		t.Fatal(err)
	}
	if want := 25 + 4.0*-4; got.Work != want {
		t.Errorf("expected work %f, got %f", want, got.Work)
	}
	if s.Current() != got {
		t.Errorf("Current() %+v disagrees with commit result %+v", s.Current(), got)
	}
}

func TestCommitMove_StraightLineConverges(t *testing.T) {
	a := thermo.Query{Pressure: 2, Volume: 1}
	b := thermo.Query{Pressure: 8, Volume: 9}
	closedForm := (a.Pressure + b.Pressure) / 2 * (b.Volume - a.Volume)

	for _, m := range []int{1, 10, 100, 1000} {
		s := newTestStore(t)
		if _, err := s.ResetTo(thermo.State{Pressure: a.Pressure, Volume: a.Volume}); err != nil {
			t.Fatal(err)
		}
		h := s.BeginDrag()
		for i := 1; i <= m; i++ {
			f := float64(i) / float64(m)
			q := thermo.Query{
				Pressure: a.Pressure + f*(b.Pressure-a.Pressure),
				Volume:   a.Volume + f*(b.Volume-a.Volume),
			}
			if _, err := s.CommitMove(h, q); err != nil {
				t.Fatal(err)
			}
		}
		if got := s.Current().Work; math.Abs(got-closedForm) > 1e-9 {
			t.Errorf("M=%d: work %f, want %f", m, got, closedForm)
		}
	}
}

func TestCommitMove_CurvedPathConverges(t *testing.T) {
	// Drag along the isotherm PV = 10 from V=1 to V=10.
	want := 10 * math.Log(10)
	prevErr := math.Inf(1)

	for _, m := range []int{4, 16, 64, 256} {
		s := newTestStore(t)
		if _, err := s.ResetTo(thermo.State{Pressure: 10, Volume: 1}); err != nil {
			t.Fatal(err)
		}
		h := s.BeginDrag()
		for i := 1; i <= m; i++ {
			v := 1 + 9*float64(i)/float64(m)
			if _, err := s.CommitMove(h, thermo.Query{Pressure: 10 / v, Volume: v}); err != nil {
				t.Fatal(err)
			}
		}
		e := math.Abs(s.Current().Work - want)
		if e >= prevErr {
			t.Errorf("M=%d: error %g did not shrink from %g", m, e, prevErr)
		}
		prevErr = e
	}
	if prevErr > 0.01 {
		t.Errorf("error after 256 steps too large: %g", prevErr)
	}
}

func TestCommitMove_Clamps(t *testing.T) {
	tests := []struct {
		name  string
		query thermo.Query
		want  thermo.Query
	}{
		{"volume above", thermo.Query{Pressure: 5, Volume: 15}, thermo.Query{Pressure: 5, Volume: 10}},
		{"volume below", thermo.Query{Pressure: 5, Volume: -3}, thermo.Query{Pressure: 5, Volume: 0}},
		{"pressure above", thermo.Query{Pressure: 40, Volume: 5}, thermo.Query{Pressure: 10, Volume: 5}},
		{"both below", thermo.Query{Pressure: -1, Volume: -1}, thermo.Query{Pressure: 0, Volume: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			h := s.BeginDrag()
			got, err := s.CommitMove(h, tt.query)
			if err != nil {
				t.Fatal(err)
			}
			if got.Query() != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got.Query())
			}
			if want := thermo.Trapezoid(thermo.Query{Pressure: 5, Volume: 5}, tt.want); got.Work != want {
				t.Errorf("work should use clamped point: want %f, got %f", want, got.Work)
			}
			if s.Clamps() != 1 {
				t.Errorf("expected 1 clamp, got %d", s.Clamps())
			}
		})
	}
}

func TestCommitMove_Errors(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.CommitMove(nil, thermo.Query{Pressure: 1, Volume: 1}); !errors.Is(err, ErrNoDrag) {
		t.Errorf("nil handle: expected ErrNoDrag, got %v", err)
	}

	h := s.BeginDrag()
	if _, err := s.CommitMove(h, thermo.Query{Pressure: math.Inf(1), Volume: 1}); !errors.Is(err, thermo.ErrNonFinite) {
		t.Errorf("Inf query: expected ErrNonFinite, got %v", err)
	}
	if s.Current() != (thermo.State{Pressure: 5, Volume: 5}) {
		t.Errorf("rejected commit mutated state: %+v", s.Current())
	}

	s.EndDrag(h)
	if _, err := s.CommitMove(h, thermo.Query{Pressure: 1, Volume: 1}); !errors.Is(err, ErrStaleDrag) {
		t.Errorf("ended handle: expected ErrStaleDrag, got %v", err)
	}

	old := s.BeginDrag()
	_ = s.BeginDrag()
	if _, err := s.CommitMove(old, thermo.Query{Pressure: 1, Volume: 1}); !errors.Is(err, ErrStaleDrag) {
		t.Errorf("superseded handle: expected ErrStaleDrag, got %v", err)
	}

	h = s.BeginDrag()
	if _, err := s.ResetTo(thermo.State{Pressure: 2, Volume: 2}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CommitMove(h, thermo.Query{Pressure: 1, Volume: 1}); !errors.Is(err, ErrStaleDrag) {
		t.Errorf("handle across ResetTo: expected ErrStaleDrag, got %v", err)
	}
}

func TestResetToKeepsWork(t *testing.T) {
	s := newTestStore(t)
	h := s.BeginDrag()
	if _, err := s.CommitMove(h, thermo.Query{Pressure: 5, Volume: 10}); err != nil {
		t.Fatal(err)
	}

	got, err := s.ResetTo(thermo.State{Pressure: 1, Volume: 20, Work: -999})
	if err != nil {
		t.Fatal(err)
	}
	if got != (thermo.State{Pressure: 1, Volume: 10, Work: 25}) {
		t.Errorf("unexpected state after ResetTo: %+v", got)
	}

	s.ResetWork()
	if s.Current().Work != 0 {
		t.Errorf("expected zero work, got %f", s.Current().Work)
	}
}

func TestJump(t *testing.T) {
	s := newTestStore(t)
	r := &recorder{}
	s.Subscribe(r)
	h := s.BeginDrag()

	got, err := s.Jump(thermo.Query{Pressure: 2.5, Volume: 10}, 17.5)
	if err != nil {
		t.Fatal(err)
	}
	want := thermo.State{Pressure: 2.5, Volume: 10, Work: 17.5}
	if got != want || s.Current() != want {
		t.Errorf("unexpected state after Jump: %+v", got)
	}
	if len(r.moves) != 1 {
		t.Fatalf("expected one move, got %d", len(r.moves))
	}
	mv := r.moves[0]
	if mv.From != (thermo.State{Pressure: 5, Volume: 5}) || mv.To != want || mv.Work != 17.5 {
		t.Errorf("unexpected move %+v", mv)
	}
	if _, err := s.CommitMove(h, thermo.Query{Pressure: 1, Volume: 1}); !errors.Is(err, ErrStaleDrag) {
		t.Errorf("handle across Jump: expected ErrStaleDrag, got %v", err)
	}

	got, err = s.Jump(thermo.Query{Pressure: 12, Volume: 10}, -2.5)
	if err != nil {
		t.Fatal(err)
	}
	if got != (thermo.State{Pressure: 10, Volume: 10, Work: 15}) || s.Clamps() != 1 {
		t.Errorf("expected clamped jump, got %+v (clamps %d)", got, s.Clamps())
	}

	if _, err := s.Jump(thermo.Query{Pressure: 1, Volume: 1}, math.Inf(1)); !errors.Is(err, thermo.ErrNonFinite) {
		t.Errorf("expected ErrNonFinite for infinite work, got %v", err)
	}
	if _, err := s.Jump(thermo.Query{Pressure: math.NaN(), Volume: 1}, 0); !errors.Is(err, thermo.ErrNonFinite) {
		t.Errorf("expected ErrNonFinite for NaN pressure, got %v", err)
	}
	if len(r.moves) != 2 {
		t.Errorf("failed jumps must not notify, got %d moves", len(r.moves))
	}
}

func TestObserversSeeEveryCommit(t *testing.T) {
	s := newTestStore(t)
	r := &recorder{}
	s.Subscribe(r)

	h := s.BeginDrag()
	for _, v := range []float64{6, 7, 8} {
		if _, err := s.CommitMove(h, thermo.Query{Pressure: 5, Volume: v}); err != nil {
			t.Fatal(err)
		}
	}

	if len(r.moves) != 3 {
		t.Fatalf("expected 3 moves, got %d", len(r.moves))
	}
	for i, m := range r.moves {
		if m.Step != i+1 {
			t.Errorf("move %d: step %d", i, m.Step)
		}
		if m.Work != 5 {
			t.Errorf("move %d: work %f", i, m.Work)
		}
		if m.To.Work-m.From.Work != m.Work {
			t.Errorf("move %d: accumulator mismatch %+v", i, m)
		}
	}
}

func TestConcurrentReadsDuringCommits(t *testing.T) {
	s := newTestStore(t)
	h := s.BeginDrag()

	var wg sync.WaitGroup
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				st := s.Current()
				if st.Pressure < 0 || st.Pressure > 10 || st.Volume < 0 || st.Volume > 10 {
					t.Errorf("out-of-range read: %+v", st)
					return
				}
			}
		}()
	}

	for i := 0; i < 500; i++ {
		v := 5 + 5*math.Sin(float64(i)/10)
		if _, err := s.CommitMove(h, thermo.Query{Pressure: 5, Volume: v}); err != nil {
			t.Fatal(err)
		}
	}
	wg.Wait()
}
