package viz

import (
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/pvsim/internal/interact"
	"github.com/san-kum/pvsim/internal/logging"
	"github.com/san-kum/pvsim/internal/metrics"
	"github.com/san-kum/pvsim/internal/state"
	"github.com/san-kum/pvsim/internal/thermo"
)

const (
	headerRows   = 2
	gutterWidth  = 9
	sidebarWidth = 40
	squareSide   = 6

	defaultPlotWidth  = 60
	defaultPlotHeight = 20
	minPlotWidth      = 20
	minPlotHeight     = 8
)

var (
	inkState = len(thermo.Processes)
	inkHover = inkState + 1
)

type Option func(*Model)

func WithLogger(l *slog.Logger) Option {
	return func(m *Model) { m.log = l }
}

// WithMetrics shows the values of set in the sidebar. The set should
// already be subscribed to the store.
func WithMetrics(set *metrics.Set) Option {
	return func(m *Model) { m.metrics = set }
}

func WithTheme(name string) Option {
	return func(m *Model) { m.theme = GetTheme(name) }
}

// Model is the bubbletea model for the P-V plane. Mouse events go through
// an interact.Machine; the model itself never writes to the store except
// for the keyboard resets.
type Model struct {
	eng      *thermo.Engine
	store    *state.Store
	machine  *interact.Machine
	metrics  *metrics.Set
	log      *slog.Logger
	theme    Theme
	plot     Plot
	canvas   *Canvas
	showHelp bool
	err      error
}

func NewModel(eng *thermo.Engine, store *state.Store, opts ...Option) Model {
	m := Model{
		eng:   eng,
		store: store,
		log:   logging.NewNop(),
		theme: ThemeClassic,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.machine = interact.New(eng, store, interact.WithLogger(m.log))
	m.resize(defaultPlotWidth, defaultPlotHeight)
	return m
}

func (m *Model) resize(w, h int) {
	w, h = max(w, minPlotWidth), max(h, minPlotHeight)
	m.plot = Plot{Bounds: m.eng.Bounds(), Left: gutterWidth, Top: headerRows, Width: w, Height: h}
	m.canvas = NewCanvas(w, h)
}

// Machine exposes the interaction machine driving the model.
func (m Model) Machine() *interact.Machine { return m.machine }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	case tea.BlurMsg:
		m.dispatch(interact.Event{Kind: interact.FocusLost})
	case tea.WindowSizeMsg:
		m.resize(msg.Width-gutterWidth-sidebarWidth, msg.Height-headerRows-3)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.dispatch(interact.Event{Kind: interact.FocusLost})
		return m, tea.Quit
	case "esc":
		m.dispatch(interact.Event{Kind: interact.FocusLost})
	case "r":
		m.store.ResetWork()
		if m.metrics != nil {
			m.metrics.Reset()
		}
		m.err = nil
	case "c":
		mid := m.eng.Bounds().Mid()
		_, m.err = m.store.ResetTo(thermo.State{Pressure: mid.Pressure, Volume: mid.Volume, Work: m.store.Current().Work})
	case "t":
		names := ThemeNames()
		for i, name := range names {
			if name == m.theme.Name {
				m.theme = GetTheme(names[(i+1)%len(names)])
				break
			}
		}
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

// eventFor translates a mouse message into a machine event. ok is false for
// messages the plot does not react to.
func (m Model) eventFor(msg tea.MouseMsg) (interact.Event, bool) {
	q, inside := m.plot.FromScreen(msg.X, msg.Y)
	ev := interact.Event{Query: q}

	switch msg.Action {
	case tea.MouseActionPress:
		if !inside {
			return ev, false
		}
		switch {
		case msg.Button == tea.MouseButtonRight,
			msg.Button == tea.MouseButtonLeft && msg.Alt:
			ev.Kind = interact.AltClick
		case msg.Button == tea.MouseButtonLeft:
			ev.Kind = interact.PointerDown
		default:
			return ev, false
		}
	case tea.MouseActionRelease:
		ev.Kind = interact.PointerUp
	case tea.MouseActionMotion:
		switch {
		case m.machine.Phase() == interact.Dragging:
			ev.Kind = interact.PointerMove
		case inside:
			ev.Kind = interact.Hover
		default:
			// Leaving the plot clears the hover readout.
			ev = interact.Event{Kind: interact.FocusLost}
		}
	default:
		return ev, false
	}
	return ev, true
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if ev, ok := m.eventFor(msg); ok {
		m.dispatch(ev)
	}
}

func (m *Model) dispatch(ev interact.Event) {
	err := m.machine.Handle(ev)
	if err != nil && !interact.IsSuppressed(err) {
		m.log.Warn("event failed", "event", ev.Kind.String(), "error", err)
	}
	if err != nil || (ev.Kind != interact.Hover && ev.Kind != interact.PointerMove) {
		m.err = err
	}
}

func (m Model) draw() {
	m.canvas.Clear()
	cur := m.store.Current()

	curves, err := m.eng.Curves(cur)
	if err != nil {
		m.log.Debug("curves unavailable", "error", err)
	}
	for _, c := range curves {
		m.plot.DrawCurve(m.canvas, c, int(c.Process))
	}
	if r, ok := m.machine.Readout(); ok {
		m.plot.DrawMarker(m.canvas, r.Query, inkHover)
	}
	m.plot.DrawMarker(m.canvas, cur.Query(), inkState)
}

func (m Model) View() string {
	m.draw()
	st := m.theme.styles()

	plot := lipgloss.JoinVertical(lipgloss.Left,
		st.header.Render("PV EXPLORER")+"  "+st.axis.Render(m.machine.Phase().String()),
		"",
		m.plotView(),
		st.help.Render("L-drag:move  R/alt-click:snap  r:reset work  c:center  t:theme  ?:help  q:quit"),
	)
	side := st.panel.Render(m.sidebar())
	view := lipgloss.JoinHorizontal(lipgloss.Top, plot, side)
	if m.showHelp {
		return helpText + "\n" + view
	}
	return view
}

func (m Model) plotView() string {
	st := m.theme.styles()
	b := m.eng.Bounds()
	rows := strings.Split(m.canvas.Render(m.theme.inks()), "\n")

	var s strings.Builder
	for i, row := range rows {
		label := ""
		switch i {
		case 0:
			label = fmt.Sprintf("%.1f", b.PMax)
		case len(rows) / 2:
			label = "P (Pa)"
		case len(rows) - 1:
			label = fmt.Sprintf("%.1f", b.PMin)
		}
		s.WriteString(st.axis.Render(fmt.Sprintf("%*s │", gutterWidth-2, label)))
		s.WriteString(row + "\n")
	}

	lo, hi := fmt.Sprintf("%.1f", b.VMin), fmt.Sprintf("%.1f", b.VMax)
	mid := "V (m^3)"
	pad := m.plot.Width - len(lo) - len(hi) - len(mid)
	left, right := max(pad/2, 1), max(pad-pad/2, 1)
	s.WriteString(st.axis.Render(strings.Repeat(" ", gutterWidth) + lo + strings.Repeat(" ", left) + mid + strings.Repeat(" ", right) + hi))
	return s.String()
}

func (m Model) sidebar() string {
	st := m.theme.styles()
	var s strings.Builder
	cur := m.store.Current()
	gas := m.eng.Gas()

	s.WriteString(st.section.Render("STATE") + "\n")
	s.WriteString(st.row("P", fmt.Sprintf("%.2f Pa", cur.Pressure)))
	s.WriteString(st.row("V", fmt.Sprintf("%.2f m^3", cur.Volume)))
	s.WriteString(st.row("W", fmt.Sprintf("%.2f J", cur.Work)))
	s.WriteString(st.row("T", fmt.Sprintf("%.3f K", gas.Temperature(cur.Query()))))
	if sq := Square(cur.Volume, m.eng.Bounds().VMax, squareSide); sq != "" {
		s.WriteString(st.square.Render(sq) + "\n")
	}

	if r, ok := m.machine.Readout(); ok {
		s.WriteString(st.section.Render("READOUT") + "\n")
		for _, rw := range r.Rows {
			if rw.Suppressed() {
				continue
			}
			style := lipgloss.NewStyle().Foreground(m.theme.Curves[rw.Result.Process])
			if r.NearestOK && rw.Result.Process == r.Nearest {
				style = style.Bold(true).Underline(true)
			}
			s.WriteString(style.Render(interact.Label(r.Query, rw.Result)) + "\n")
		}
	} else {
		s.WriteString(st.section.Render("LEGEND") + "\n")
		for _, p := range thermo.Processes {
			s.WriteString(lipgloss.NewStyle().Foreground(m.theme.Curves[p]).Render("── "+p.String()) + "\n")
		}
	}

	if snap, ok := m.machine.LastSnap(); ok {
		s.WriteString(st.section.Render("LAST SNAP") + "\n")
		s.WriteString(st.row(snap.Result.Process.String(), fmt.Sprintf("W %.2f J", snap.Result.Work)))
	}

	if m.metrics != nil {
		s.WriteString(st.section.Render("METRICS") + "\n")
		vals := m.metrics.Values()
		for _, name := range []string{"net_work", "heat_in", "heat_out", "efficiency"} {
			if v, ok := vals[name]; ok {
				s.WriteString(st.row(name, fmt.Sprintf("%.3f", v)))
			}
		}
	}

	if m.err != nil {
		s.WriteString("\n" + lipgloss.NewStyle().Foreground(m.theme.Error).Render(m.err.Error()) + "\n")
	}
	return s.String()
}

const helpText = `
╔══════════════════════════════════════════╗
║            MOUSE AND KEYS                ║
╠══════════════════════════════════════════╣
║  Left drag    - Move the state           ║
║  Right click  - Snap along nearest curve ║
║  Alt + click  - Same as right click      ║
║  R            - Reset accumulated work   ║
║  C            - Move state to center     ║
║  T            - Cycle themes             ║
║  Esc          - Cancel drag              ║
║  Q            - Quit                     ║
╚══════════════════════════════════════════╝`

// Run starts the TUI with mouse motion and focus reporting enabled.
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithReportFocus())
	_, err := p.Run()
	return err
}
