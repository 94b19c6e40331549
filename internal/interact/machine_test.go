package interact_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/pvsim/internal/interact"
	"github.com/san-kum/pvsim/internal/metrics"
	"github.com/san-kum/pvsim/internal/state"
	"github.com/san-kum/pvsim/internal/thermo"
)

func at(kind interact.EventKind, p, v float64) interact.Event {
	return interact.Event{Kind: kind, Query: thermo.Query{Pressure: p, Volume: v}}
}

var _ = Describe("transition table", func() {
	DescribeTable("listed transitions",
		func(from interact.Phase, on interact.EventKind, to interact.Phase) {
			next, ok := interact.Next(from, on)
			Expect(ok).To(BeTrue())
			Expect(next).To(Equal(to))
		},
		Entry("press starts a drag", interact.Idle, interact.PointerDown, interact.Dragging),
		Entry("move keeps dragging", interact.Dragging, interact.PointerMove, interact.Dragging),
		Entry("release ends the drag", interact.Dragging, interact.PointerUp, interact.Idle),
		Entry("focus loss ends the drag", interact.Dragging, interact.FocusLost, interact.Idle),
		Entry("alt click stays idle", interact.Idle, interact.AltClick, interact.Idle),
		Entry("hover stays idle", interact.Idle, interact.Hover, interact.Idle),
		Entry("idle move stays idle", interact.Idle, interact.PointerMove, interact.Idle),
		Entry("hover while dragging", interact.Dragging, interact.Hover, interact.Dragging),
	)

	DescribeTable("ignored events",
		func(from interact.Phase, on interact.EventKind) {
			_, ok := interact.Next(from, on)
			Expect(ok).To(BeFalse())
		},
		Entry("release while idle", interact.Idle, interact.PointerUp),
		Entry("focus loss while idle", interact.Idle, interact.FocusLost),
		Entry("second press while dragging", interact.Dragging, interact.PointerDown),
		Entry("alt click while dragging", interact.Dragging, interact.AltClick),
	)
})

var _ = Describe("Machine", func() {
	var (
		eng   *thermo.Engine
		store *state.Store
		m     *interact.Machine
	)

	BeforeEach(func() {
		bounds, err := thermo.NewBounds(0, 10, 0, 10)
		Expect(err).NotTo(HaveOccurred())
		eng, err = thermo.NewEngine(thermo.DefaultGas(), bounds, thermo.DefaultResolution)
		Expect(err).NotTo(HaveOccurred())
		store, err = state.New(bounds, thermo.State{Pressure: 5, Volume: 5})
		Expect(err).NotTo(HaveOccurred())
		m = interact.New(eng, store)
	})

	It("starts idle", func() {
		Expect(m.Phase()).To(Equal(interact.Idle))
		_, ok := m.Readout()
		Expect(ok).To(BeFalse())
	})

	Context("dragging", func() {
		It("accumulates trapezoidal work across moves", func() {
			Expect(m.Handle(at(interact.PointerDown, 5, 5))).To(Succeed())
			Expect(m.Phase()).To(Equal(interact.Dragging))
			Expect(store.Current().Work).To(BeZero())

			Expect(m.Handle(at(interact.PointerMove, 5, 7.5))).To(Succeed())
			Expect(m.Handle(at(interact.PointerMove, 5, 10))).To(Succeed())
			Expect(store.Current()).To(Equal(thermo.State{Pressure: 5, Volume: 10, Work: 25}))

			Expect(m.Handle(at(interact.PointerUp, 5, 10))).To(Succeed())
			Expect(m.Phase()).To(Equal(interact.Idle))
		})

		It("moves the state to the press point", func() {
			Expect(m.Handle(at(interact.PointerDown, 3, 7))).To(Succeed())
			Expect(store.Current()).To(Equal(thermo.State{Pressure: 3, Volume: 7, Work: 8}))
		})

		It("does not mutate on idle moves", func() {
			Expect(m.Handle(at(interact.PointerMove, 1, 1))).To(Succeed())
			Expect(store.Current()).To(Equal(thermo.State{Pressure: 5, Volume: 5}))
		})

		It("ends the drag on focus loss", func() {
			Expect(m.Handle(at(interact.PointerDown, 5, 5))).To(Succeed())
			Expect(m.Handle(interact.Event{Kind: interact.FocusLost})).To(Succeed())
			Expect(m.Phase()).To(Equal(interact.Idle))
			_, ok := m.Readout()
			Expect(ok).To(BeFalse())

			Expect(m.Handle(at(interact.PointerMove, 5, 9))).To(Succeed())
			Expect(store.Current().Volume).To(Equal(5.0))
		})

		It("ignores a second press while dragging", func() {
			Expect(m.Handle(at(interact.PointerDown, 5, 5))).To(Succeed())
			Expect(m.Handle(at(interact.PointerDown, 1, 1))).To(Succeed())
			Expect(m.Phase()).To(Equal(interact.Dragging))
			Expect(store.Current().Query()).To(Equal(thermo.Query{Pressure: 5, Volume: 5}))
		})

		It("clamps moves outside the plane", func() {
			Expect(m.Handle(at(interact.PointerDown, 5, 5))).To(Succeed())
			Expect(m.Handle(at(interact.PointerMove, 12, 14))).To(Succeed())
			Expect(store.Current().Query()).To(Equal(thermo.Query{Pressure: 10, Volume: 10}))
		})

		It("drops back to idle when the drag goes stale", func() {
			Expect(m.Handle(at(interact.PointerDown, 5, 5))).To(Succeed())
			_, err := store.ResetTo(thermo.State{Pressure: 2, Volume: 2})
			Expect(err).NotTo(HaveOccurred())

			err = m.Handle(at(interact.PointerMove, 5, 6))
			Expect(err).To(MatchError(state.ErrStaleDrag))
			Expect(m.Phase()).To(Equal(interact.Idle))
		})

		It("rejects non-finite events", func() {
			err := m.Handle(at(interact.PointerDown, math.NaN(), 5))
			Expect(err).To(MatchError(thermo.ErrNonFinite))
			Expect(m.Phase()).To(Equal(interact.Idle))
		})
	})

	Context("alternate click", func() {
		It("snaps along the isotherm and inherits its work", func() {
			Expect(m.Handle(at(interact.AltClick, 2.6, 10))).To(Succeed())
			Expect(m.Phase()).To(Equal(interact.Idle))

			cur := store.Current()
			Expect(cur.Volume).To(Equal(10.0))
			Expect(cur.Pressure).To(BeNumerically("~", 2.5, 1e-12))
			Expect(cur.Work).To(BeNumerically("~", 25*math.Ln2, 1e-9))

			snap, ok := m.LastSnap()
			Expect(ok).To(BeTrue())
			Expect(snap.Result.Process).To(Equal(thermo.Isothermal))
			Expect(snap.Result.Heat).To(BeNumerically("~", 25*math.Ln2, 1e-9))
		})

		It("snaps along the isobar", func() {
			Expect(m.Handle(at(interact.AltClick, 5.05, 9))).To(Succeed())
			cur := store.Current()
			Expect(cur.Pressure).To(Equal(5.0))
			Expect(cur.Volume).To(Equal(9.0))
			Expect(cur.Work).To(BeNumerically("~", 20, 1e-9))
		})

		It("adds to work already accumulated", func() {
			Expect(m.Handle(at(interact.PointerDown, 5, 5))).To(Succeed())
			Expect(m.Handle(at(interact.PointerMove, 5, 6))).To(Succeed())
			Expect(m.Handle(at(interact.PointerUp, 5, 6))).To(Succeed())
			Expect(store.Current().Work).To(Equal(5.0))

			Expect(m.Handle(at(interact.AltClick, 1, 6.01))).To(Succeed())
			snap, _ := m.LastSnap()
			Expect(snap.Result.Process).To(Equal(thermo.Isochoric))
			Expect(store.Current().Work).To(Equal(5.0))
			Expect(store.Current().Query()).To(Equal(thermo.Query{Pressure: 1, Volume: 6}))
		})

		It("stays on the isotherm when the target is above the plane", func() {
			Expect(m.Handle(at(interact.AltClick, 9.9, 1))).To(Succeed())
			snap, ok := m.LastSnap()
			Expect(ok).To(BeTrue())
			Expect(snap.Result.Process).To(Equal(thermo.Isothermal))

			cur := store.Current()
			Expect(cur.Pressure).To(Equal(10.0))
			Expect(cur.Pressure * cur.Volume).To(BeNumerically("~", 25, 1e-9))
			Expect(cur.Work).To(BeNumerically("~", -25*math.Ln2, 1e-9))
			Expect(snap.Result.Heat).To(BeNumerically("~", cur.Work, 1e-9))
		})

		It("reports the jump to store observers", func() {
			set := metrics.Cycle(eng.Gas())
			store.Subscribe(set)

			Expect(m.Handle(at(interact.AltClick, 2.6, 9.6))).To(Succeed())
			work := store.Current().Work
			Expect(work).NotTo(BeZero())
			Expect(set.Values()).To(HaveKeyWithValue("net_work", BeNumerically("~", work, 1e-9)))
		})

		It("leaves the state alone for degenerate targets", func() {
			err := m.Handle(at(interact.AltClick, 9, 0))
			Expect(interact.IsSuppressed(err)).To(BeTrue())
			Expect(store.Current()).To(Equal(thermo.State{Pressure: 5, Volume: 5}))
			Expect(m.Phase()).To(Equal(interact.Idle))
		})
	})

	Context("readout", func() {
		It("evaluates the hovered point against every process", func() {
			Expect(m.Handle(at(interact.Hover, 2.5, 10))).To(Succeed())
			r, ok := m.Readout()
			Expect(ok).To(BeTrue())
			Expect(r.Rows).To(HaveLen(4))
			Expect(r.NearestOK).To(BeTrue())
			Expect(r.Nearest).To(Equal(thermo.Isothermal))

			row, ok := r.Row(thermo.Isothermal)
			Expect(ok).To(BeTrue())
			Expect(row.Suppressed()).To(BeFalse())
			Expect(row.Result.DeltaU).To(BeNumerically("~", 0, 1e-12))
			Expect(row.Result.Work).To(BeNumerically("~", 17.33, 0.01))
		})

		It("suppresses rows the engine cannot evaluate", func() {
			Expect(m.Handle(at(interact.Hover, 5, 0))).To(Succeed())
			r, ok := m.Readout()
			Expect(ok).To(BeTrue())

			for _, p := range []thermo.Process{thermo.Isothermal, thermo.Adiabatic} {
				row, _ := r.Row(p)
				Expect(row.Suppressed()).To(BeTrue(), p.String())
				Expect(interact.IsSuppressed(row.Err)).To(BeTrue())
			}
			row, _ := r.Row(thermo.Isobaric)
			Expect(row.Suppressed()).To(BeFalse())
			Expect(row.Result.Work).To(Equal(-25.0))
		})

		It("does not mutate the store", func() {
			before := store.Current()
			for i := 0; i < 50; i++ {
				Expect(m.Handle(at(interact.Hover, float64(i%10), float64(i%7)))).To(Succeed())
				_, _ = m.Readout()
			}
			Expect(store.Current()).To(Equal(before))
		})
	})
})
