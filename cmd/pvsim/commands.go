package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/pvsim/internal/config"
	"github.com/san-kum/pvsim/internal/export"
	"github.com/san-kum/pvsim/internal/logging"
	"github.com/san-kum/pvsim/internal/metrics"
	"github.com/san-kum/pvsim/internal/session"
	"github.com/san-kum/pvsim/internal/storage"
	"github.com/san-kum/pvsim/internal/thermo"
)

// selectedProcesses returns every process, or only the one named by
// --process.
func selectedProcesses() ([]thermo.Process, error) {
	if processName == "" {
		return thermo.Processes, nil
	}
	p, err := thermo.ParseProcess(processName)
	if err != nil {
		return nil, err
	}
	return []thermo.Process{p}, nil
}

func evalPoint(cmd *cobra.Command, args []string) error {
	procs, err := selectedProcesses()
	if err != nil {
		return err
	}
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	s := e.store.Current()
	q := thermo.Query{Pressure: evalP, Volume: evalV}
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "from: P = %.4f Pa, V = %.4f m^3\n", s.Pressure, s.Volume)
	fmt.Fprintf(out, "to:   P = %.4f Pa, V = %.4f m^3\n\n", q.Pressure, q.Volume)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PROCESS\tΔU (J)\tW (J)\tQ (J)")
	for _, p := range procs {
		res, err := e.eng.Evaluate(s, q, p)
		if err != nil {
			if !errors.Is(err, thermo.ErrDegenerateQuery) {
				return err
			}
			e.log.Debug("readout suppressed", "process", p.String(), "error", err)
			fmt.Fprintf(w, "%s\t-\t-\t-\n", p)
			continue
		}
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\n", p, res.DeltaU, res.Work, res.Heat)
	}
	return w.Flush()
}

func plotCurves(cmd *cobra.Command, args []string) error {
	procs, err := selectedProcesses()
	if err != nil {
		return err
	}
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	s := e.store.Current()
	b := e.eng.Bounds()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "state: P = %.2f Pa, V = %.2f m^3, T = %.4f K\n\n", s.Pressure, s.Volume, e.eng.Gas().Temperature(s.Query()))

	for _, p := range procs {
		c, err := e.eng.GenerateCurve(s, p, b.VMin, b.VMax, e.eng.Resolution())
		if err != nil {
			return err
		}

		// Pressures diverge near zero volume; keep the plot on the plane.
		data := c.Pressures()
		for i, v := range data {
			data[i] = math.Min(math.Max(v, b.PMin), b.PMax)
		}

		caption := fmt.Sprintf("%s: P (Pa) over V = %.2f..%.2f m^3", p, c.Points[0].Volume, c.Points[len(c.Points)-1].Volume)
		if p == thermo.Isochoric {
			caption = fmt.Sprintf("%s: P (Pa) at V = %.2f m^3", p, s.Volume)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(caption),
		)
		fmt.Fprintln(out, graph)
		fmt.Fprintln(out)
	}
	return nil
}

func dragState(cmd *cobra.Command, args []string) error {
	if steps < 1 {
		return fmt.Errorf("steps must be at least 1, got %d", steps)
	}
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	start := e.store.Current()
	target := thermo.Query{Pressure: toP, Volume: toV}

	rec := storage.NewRecorder(start)
	set := metrics.Cycle(e.eng.Gas())
	e.store.Subscribe(rec)
	e.store.Subscribe(set)

	h := e.store.BeginDrag()
	for i := 1; i <= steps; i++ {
		f := float64(i) / float64(steps)
		q := thermo.Query{
			Pressure: start.Pressure + f*(target.Pressure-start.Pressure),
			Volume:   start.Volume + f*(target.Volume-start.Volume),
		}
		if _, err := e.store.CommitMove(h, q); err != nil {
			e.store.EndDrag(h)
			return fmt.Errorf("drag step %d: %w", i, err)
		}
	}
	e.store.EndDrag(h)

	end := e.store.Current()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "from:      P = %.4f Pa, V = %.4f m^3\n", start.Pressure, start.Volume)
	fmt.Fprintf(out, "to:        P = %.4f Pa, V = %.4f m^3\n", end.Pressure, end.Volume)
	fmt.Fprintf(out, "steps:     %d (%d clamped)\n", steps, e.store.Clamps())
	fmt.Fprintf(out, "work:      %.6f J\n", end.Work-start.Work)
	fmt.Fprintf(out, "trapezoid: %.6f J\n", thermo.Trapezoid(start.Query(), end.Query()))

	if saveTrace {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		id, err := st.Save(traceName, e.eng.Gas(), rec.Samples(), set.Values())
		if err != nil {
			return fmt.Errorf("save trace: %w", err)
		}
		fmt.Fprintf(out, "saved:     %s\n", id)
	}
	return e.persist()
}

type sweepStats struct {
	mu         sync.Mutex
	evaluated  int
	suppressed int
	minW, maxW float64
	minQ, maxQ float64
	sumDU      float64
}

func (s *sweepStats) add(res thermo.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.evaluated == 0 {
		s.minW, s.maxW, s.minQ, s.maxQ = res.Work, res.Work, res.Heat, res.Heat
	}
	s.evaluated++
	s.minW, s.maxW = math.Min(s.minW, res.Work), math.Max(s.maxW, res.Work)
	s.minQ, s.maxQ = math.Min(s.minQ, res.Heat), math.Max(s.maxQ, res.Heat)
	s.sumDU += res.DeltaU
}

func (s *sweepStats) suppress() {
	s.mu.Lock()
	s.suppressed++
	s.mu.Unlock()
}

// sweep evaluates p from s at grid x grid points spanning the bounds, one
// volume column per task.
func sweep(ctx context.Context, eng *thermo.Engine, s thermo.State, p thermo.Process, grid, workers int) (*sweepStats, error) {
	b := eng.Bounds()
	stats := &sweepStats{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i := 0; i < grid; i++ {
		v := b.VMin + float64(i)/float64(grid-1)*b.VRange()
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for j := 0; j < grid; j++ {
				q := thermo.Query{Pressure: b.PMin + float64(j)/float64(grid-1)*b.PRange(), Volume: v}
				res, err := eng.Evaluate(s, q, p)
				if errors.Is(err, thermo.ErrDegenerateQuery) {
					stats.suppress()
					continue
				}
				if err != nil {
					return err
				}
				stats.add(res)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

func sweepGrid(cmd *cobra.Command, args []string) error {
	p, err := thermo.ParseProcess(args[0])
	if err != nil {
		return err
	}
	if grid < 2 {
		return fmt.Errorf("grid must be at least 2, got %d", grid)
	}
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	s := e.store.Current()
	stats, err := sweep(cmd.Context(), e.eng, s, p, grid, workers)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "process\t%s\n", p)
	fmt.Fprintf(w, "from\tP = %.4f Pa, V = %.4f m^3\n", s.Pressure, s.Volume)
	fmt.Fprintf(w, "points\t%d\n", grid*grid)
	fmt.Fprintf(w, "evaluated\t%d\n", stats.evaluated)
	fmt.Fprintf(w, "suppressed\t%d\n", stats.suppressed)
	if stats.evaluated > 0 {
		fmt.Fprintf(w, "W range\t%.4f .. %.4f J\n", stats.minW, stats.maxW)
		fmt.Fprintf(w, "Q range\t%.4f .. %.4f J\n", stats.minQ, stats.maxQ)
		fmt.Fprintf(w, "mean ΔU\t%.4f J\n", stats.sumDU/float64(stats.evaluated))
	}
	return w.Flush()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	s := e.store.Current()
	curves, err := e.eng.Curves(s)
	if err != nil {
		return err
	}
	series := export.CurveSeries(curves)

	if traceID != "" {
		samples, err := storage.New(dataDir).LoadSamples(traceID)
		if err != nil {
			return fmt.Errorf("load trace %s: %w", traceID, err)
		}
		pts := make([]thermo.Point, len(samples))
		for i, smp := range samples {
			pts[i] = thermo.Point{Volume: smp.Volume, Pressure: smp.Pressure}
		}
		series = append(series, export.Series{Name: traceID, Color: "#ffffff", Points: pts})
	}

	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()

	q := s.Query()
	if err := export.PlaneToSVG(f, e.eng.Bounds(), series, export.Options{Marker: &q}); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outFile)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tN (mol)\tDOF\tGAMMA\tP RANGE (Pa)\tV RANGE (m^3)")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		gas, err := cfg.GasParams()
		if err != nil {
			return fmt.Errorf("preset %s: %w", name, err)
		}
		fmt.Fprintf(w, "%s\t%g\t%g\t%.3f\t%g..%g\t%g..%g\n",
			name, cfg.Gas.N, cfg.Gas.DOF, gas.Gamma(),
			cfg.Pressure.Min, cfg.Pressure.Max, cfg.Volume.Min, cfg.Volume.Max)
	}
	return w.Flush()
}

func writeConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return config.Encode(cmd.OutOrStdout(), cfg)
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
	return nil
}

func showState(cmd *cobra.Command, args []string) error {
	log := logging.New(os.Stderr, debug)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}
	sess, err := session.Open(sessionPath(), log)
	if err != nil {
		return err
	}
	defer sess.Close()

	out := cmd.OutOrStdout()
	if resetSession {
		if err := sess.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(out, "session cleared")
		return nil
	}

	st, err := sess.Load()
	if errors.Is(err, session.ErrNoSession) {
		fmt.Fprintln(out, "no saved session")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "P = %g Pa\nV = %g m^3\n", st.Pressure, st.Volume)
	return nil
}
