package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/chemsim/internal/export"
	"github.com/san-kum/chemsim/internal/kinetics"
)

const (
	frameRate       = time.Second / 30
	historyCapacity = 600
	maxSpeed        = 256
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model steps a reaction system over a fixed time grid and draws the
// concentrations as they evolve.
type Model struct {
	sys      *kinetics.System
	stepper  kinetics.Stepper
	species  []*kinetics.Compound
	times    []float64
	idx      int
	state    kinetics.State
	initial  kinetics.State
	history  [][]float64
	title    string
	running  bool
	speed    int
	theme    int
	showHelp bool
	err      error
}

// NewModel prepares a live run of sys over times. The stepper and clamp
// match System.SimulateContext, so the final state equals a batch run.
func NewModel(sys *kinetics.System, stepper kinetics.Stepper, initial map[string]float64, times []float64, title string) (Model, error) {
	if sys.Dim() == 0 {
		return Model{}, kinetics.ErrEmptySystem
	}
	if len(times) < 2 {
		return Model{}, fmt.Errorf("%w: got %d", kinetics.ErrInvalidTimePoints, len(times))
	}
	for f, c := range initial {
		if c < 0 {
			return Model{}, fmt.Errorf("%w: %s = %v", kinetics.ErrNegativeConcentration, f, c)
		}
	}

	x0 := sys.StateOf(initial)
	m := Model{
		sys:     sys,
		stepper: stepper,
		species: sys.Species(),
		times:   times,
		state:   x0.Clone(),
		initial: x0,
		title:   title,
		running: true,
		speed:   1,
	}
	m.resetHistory()
	return m, nil
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if !m.Done() {
				m.running = !m.running
			}
		case "r":
			m.reset()
		case "+", "=":
			m.speed = min(m.speed*2, maxSpeed)
		case "-", "_":
			m.speed = max(m.speed/2, 1)
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			for range m.speed {
				if !m.step() {
					m.running = false
					break
				}
			}
		}
		return m, tick()
	}
	return m, nil
}

// step advances one time point and reports whether another step is possible.
func (m *Model) step() bool {
	if m.Done() || m.err != nil {
		return false
	}
	t, dt := m.times[m.idx], m.times[m.idx+1]-m.times[m.idx]
	next := m.stepper.Step(m.sys, m.state, t, dt)
	next.ClampNonNegative()
	if !next.IsValid() {
		m.err = &kinetics.StepError{Step: m.idx + 1, Time: m.times[m.idx+1], Wrapped: kinetics.ErrNonFinite}
		return false
	}
	m.state = next
	m.idx++
	m.record()
	return !m.Done()
}

func (m *Model) record() {
	for i, v := range m.state {
		m.history[i] = append(m.history[i], v)
		if len(m.history[i]) > historyCapacity {
			m.history[i] = m.history[i][1:]
		}
	}
}

func (m *Model) resetHistory() {
	m.history = make([][]float64, len(m.species))
	for i := range m.history {
		m.history[i] = make([]float64, 0, historyCapacity)
	}
	m.record()
}

func (m *Model) reset() {
	m.idx = 0
	m.state = m.initial.Clone()
	m.err = nil
	m.running = true
	m.resetHistory()
}

// Done reports whether the last time point has been reached.
func (m Model) Done() bool { return m.idx >= len(m.times)-1 }

func (m Model) Time() float64 { return m.times[m.idx] }

// Concentrations returns the current concentrations keyed by formula.
func (m Model) Concentrations() map[string]float64 {
	return m.sys.Concentrations(m.state)
}

func (m Model) Err() error { return m.err }

func (m Model) View() string {
	theme := Themes[m.theme]
	st := newStyles(theme)

	status := "RUNNING"
	switch {
	case m.err != nil:
		status = "FAILED: " + m.err.Error()
	case m.Done():
		status = "DONE"
	case !m.running:
		status = "PAUSED"
	}

	var chart string
	if len(m.history) > 0 && len(m.history[0]) > 1 {
		data := make([][]float64, len(m.history))
		colors := make([]asciigraph.AnsiColor, len(m.history))
		for i, h := range m.history {
			data[i] = export.Resample(h, 60)
			colors[i] = theme.seriesColor(i)
		}
		chart = asciigraph.PlotMany(data,
			asciigraph.Height(12),
			asciigraph.Width(60),
			asciigraph.Caption("concentration (mol/L)"),
			asciigraph.SeriesColors(colors...),
		)
	}
	chartView := st.panel.Render(chart)

	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(st.active.Render(status) + "\n\n")

	end := m.times[len(m.times)-1]
	s.WriteString(st.label.Render("Time") + st.value.Render(fmt.Sprintf("%.2fs / %.2fs", m.Time(), end)) + "\n")
	s.WriteString(st.label.Render("Progress") + st.bar.Render(ProgressBar(float64(m.idx)/float64(len(m.times)-1), 20)) + "\n")
	s.WriteString(st.label.Render("Speed") + st.value.Render(fmt.Sprintf("%d steps/frame", m.speed)) + "\n")
	s.WriteString("\nSPECIES\n")
	for i, c := range m.species {
		line := fmt.Sprintf("%-8s %8.4f %s", c.Formula(), m.state[i], Sparkline(m.history[i], 12))
		s.WriteString(fmt.Sprintf("%s%s%s\n", theme.seriesColor(i), line, asciigraph.Default))
	}
	s.WriteString(st.help.Render("SP:Pause R:Restart Q:Quit\n+/-:Speed T:Theme ?:Help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, chartView, st.panel.Render(s.String()))
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  R        - Restart                  ║
║  +/-      - Steps per frame          ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

// Run starts the live view and blocks until the user quits.
func Run(m Model) (Model, error) {
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return m, err
	}
	return final.(Model), nil
}
