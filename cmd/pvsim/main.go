package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/san-kum/pvsim/internal/config"
	"github.com/san-kum/pvsim/internal/logging"
	"github.com/san-kum/pvsim/internal/metrics"
	"github.com/san-kum/pvsim/internal/session"
	"github.com/san-kum/pvsim/internal/state"
	"github.com/san-kum/pvsim/internal/thermo"
	"github.com/san-kum/pvsim/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	debug      bool
	resolution int
	moles      float64
	dof        float64
	theme      string
	// eval
	evalP       float64
	evalV       float64
	processName string
	// drag
	toP       float64
	toV       float64
	steps     int
	saveTrace bool
	traceName string
	// sweep
	grid    int
	workers int
	// svg
	outFile string
	traceID string
	// state
	resetSession bool
)

// main is the entry point for the pvsim CLI. With no subcommand it opens
// the interactive P-V plane. It exits with status 1 on any command error.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "pvsim",
		Short:        "ideal gas pressure-volume explorer",
		SilenceUsage: true,
		RunE:         runTUI,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".pvsim", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.BoolVar(&debug, "debug", false, "debug logging")
	pf.IntVar(&resolution, "resolution", config.DefaultResolution, "curve samples")
	pf.Float64Var(&moles, "moles", thermo.DefaultMoles, "amount of gas in mol")
	pf.Float64Var(&dof, "dof", thermo.DefaultDOF, "degrees of freedom per molecule")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "interactive P-V plane",
		RunE:  runTUI,
	}
	for _, c := range []*cobra.Command{rootCmd, tuiCmd} {
		c.Flags().StringVar(&theme, "theme", "classic", "color theme")
	}

	evalCmd := &cobra.Command{
		Use:   "eval",
		Short: "evaluate ΔU, W and Q from the current state to a point",
		RunE:  evalPoint,
	}
	evalCmd.Flags().Float64Var(&evalP, "p", 0, "target pressure (Pa)")
	evalCmd.Flags().Float64Var(&evalV, "v", 0, "target volume (m^3)")
	evalCmd.Flags().StringVar(&processName, "process", "", "single process (isothermal, adiabatic, isobaric, isochoric)")
	_ = evalCmd.MarkFlagRequired("p")
	_ = evalCmd.MarkFlagRequired("v")

	curvesCmd := &cobra.Command{
		Use:   "curves",
		Short: "plot the process curves through the current state",
		RunE:  plotCurves,
	}
	curvesCmd.Flags().StringVar(&processName, "process", "", "single process")

	dragCmd := &cobra.Command{
		Use:   "drag",
		Short: "drag the state along a straight line",
		RunE:  dragState,
	}
	dragCmd.Flags().Float64Var(&toP, "to-p", 0, "target pressure (Pa)")
	dragCmd.Flags().Float64Var(&toV, "to-v", 0, "target volume (m^3)")
	dragCmd.Flags().IntVar(&steps, "steps", 100, "number of committed moves")
	dragCmd.Flags().BoolVar(&saveTrace, "save", false, "save the drag as a trace")
	dragCmd.Flags().StringVar(&traceName, "name", "drag", "trace name")
	_ = dragCmd.MarkFlagRequired("to-p")
	_ = dragCmd.MarkFlagRequired("to-v")

	sweepCmd := &cobra.Command{
		Use:   "sweep [process]",
		Short: "evaluate a process over a grid of the plane",
		Args:  cobra.ExactArgs(1),
		RunE:  sweepGrid,
	}
	sweepCmd.Flags().IntVar(&grid, "grid", 50, "grid points per axis")
	sweepCmd.Flags().IntVar(&workers, "workers", 4, "parallel workers")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved traces",
		RunE:  listTraces,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [trace_id]",
		Short: "plot a saved trace",
		Args:  cobra.ExactArgs(1),
		RunE:  plotTrace,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [trace_id]",
		Short: "export trace samples to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [trace_id]",
		Short: "export a trace to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	svgCmd := &cobra.Command{
		Use:   "svg",
		Short: "render the process curves to SVG",
		RunE:  exportSVG,
	}
	svgCmd.Flags().StringVarP(&outFile, "output", "o", "pvsim.svg", "output file")
	svgCmd.Flags().StringVar(&traceID, "trace", "", "overlay a saved trace")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config [path]",
		Short: "write the resolved configuration as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE:  writeConfig,
	}

	stateCmd := &cobra.Command{
		Use:   "state",
		Short: "show or clear the saved session",
		RunE:  showState,
	}
	stateCmd.Flags().BoolVar(&resetSession, "reset", false, "forget the saved state")

	rootCmd.AddCommand(tuiCmd, evalCmd, curvesCmd, dragCmd, sweepCmd, listCmd, plotCmd,
		exportCSVCmd, exportJSONCmd, svgCmd, presetsCmd, configCmd, stateCmd)
	return rootCmd
}

// loadConfig layers defaults, preset, config file and explicit flags, in
// that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("resolution") {
		cfg.Resolution = resolution
	}
	if cmd.Flags().Changed("moles") {
		cfg.Gas.N = moles
	}
	if cmd.Flags().Changed("dof") {
		cfg.Gas.DOF = dof
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// env is the wiring shared by the commands that touch the state.
type env struct {
	cfg   *config.Config
	eng   *thermo.Engine
	log   *slog.Logger
	sess  *session.Session
	store *state.Store
}

func setup(cmd *cobra.Command) (*env, error) {
	log := logging.New(os.Stderr, debug)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	eng, err := cfg.Engine()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}
	sess, err := session.Open(sessionPath(), log)
	if err != nil {
		return nil, err
	}

	initial, err := sess.Load()
	switch {
	case errors.Is(err, session.ErrNoSession):
		initial = cfg.InitialState()
	case err != nil:
		sess.Close()
		return nil, fmt.Errorf("load session: %w", err)
	default:
		log.Debug("resumed session", "pressure", initial.Pressure, "volume", initial.Volume)
	}

	if !eng.Bounds().Contains(initial.Query()) {
		log.Info("initial state clamped to bounds", "pressure", initial.Pressure, "volume", initial.Volume)
	}
	store, err := state.New(eng.Bounds(), initial)
	if err != nil {
		sess.Close()
		return nil, err
	}

	return &env{cfg: cfg, eng: eng, log: log, sess: sess, store: store}, nil
}

func sessionPath() string {
	return filepath.Join(dataDir, "session.db")
}

func (e *env) close() error {
	return e.sess.Close()
}

// persist saves the current pressure and volume for the next run.
func (e *env) persist() error {
	if err := e.sess.Save(e.store.Current()); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	set := metrics.Cycle(e.eng.Gas())
	e.store.Subscribe(set)

	m := viz.NewModel(e.eng, e.store,
		viz.WithLogger(e.log),
		viz.WithMetrics(set),
		viz.WithTheme(theme),
	)
	if err := viz.Run(m); err != nil {
		return err
	}
	return e.persist()
}
