package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/loft/internal/config"
	"github.com/san-kum/loft/internal/dynamo"
	"github.com/san-kum/loft/internal/metrics"
	"github.com/san-kum/loft/internal/physics"
	"github.com/san-kum/loft/internal/sim"
	"github.com/san-kum/loft/internal/vmath"
)

const (
	canvasWidth     = 60
	canvasHeight    = 20
	frameRate       = 30
	historyCapacity = 300
	trailCapacity   = 200
	maxWarp         = 256
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model steps a scenario built from a config and draws it from a movable camera.
// Each frame advances the universe by warp steps of the config's dt.
type Model struct {
	cfg  *config.Config
	opts []sim.Option

	scenario *config.Scenario
	fuel     map[*physics.Rocket]float64

	canvas   *Canvas
	camera   *Camera
	follow   bool
	focus    int
	trails   map[*dynamo.Body][]vmath.V3
	energy   []float64
	running  bool
	warp     int
	err      error
	theme    int
	styles   styles
	showHelp bool
}

// NewModel builds cfg and returns a running view of it. opts are passed to every
// build, including the ones made on reset.
func NewModel(cfg *config.Config, opts ...sim.Option) (Model, error) {
	m := Model{
		cfg:     cfg,
		opts:    opts,
		canvas:  NewCanvas(canvasWidth, canvasHeight),
		camera:  NewCamera(1),
		running: true,
		warp:    1,
		styles:  newStyles(Themes[0]),
	}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// WithTheme returns m drawn in the named theme. Unknown names select the default.
func (m Model) WithTheme(name string) Model {
	m.theme = themeIndex(name)
	m.styles = newStyles(Themes[m.theme])
	return m
}

func (m Model) Universe() *sim.Universe { return m.scenario.Universe }

func (m Model) Init() tea.Cmd { return tick() }

// Update handles keys and steps the universe on every tick.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		w := max(20, msg.Width-statsWidth-8)
		h := max(8, msg.Height-4)
		m.canvas = NewCanvas(w, h)
	case TickMsg:
		if m.running && m.err == nil {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case "r":
		m.err = m.reset()
	case "+", "=":
		m.warp = min(maxWarp, m.warp*2)
	case "-", "_":
		m.warp = max(1, m.warp/2)
	case "tab":
		if n := len(m.scenario.Universe.Free()); n > 0 {
			m.focus = (m.focus + 1) % n
		}
	case "f":
		m.follow = !m.follow
	case "c":
		m.fit()
	case "z":
		m.camera.ZoomIn()
	case "x":
		m.camera.ZoomOut()
	case "left", "h":
		m.camera.Rotate(vmath.Vy.Scale(-0.1))
	case "right", "l":
		m.camera.Rotate(vmath.Vy.Scale(0.1))
	case "up", "k":
		m.camera.Rotate(vmath.Vx.Scale(-0.1))
	case "down", "j":
		m.camera.Rotate(vmath.Vx.Scale(0.1))
	case "w":
		m.adjustThrottle(0.1)
	case "s":
		m.adjustThrottle(-0.1)
	case "t":
		m.theme = (m.theme + 1) % len(Themes)
		m.styles = newStyles(Themes[m.theme])
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

// reset rebuilds the scenario from the config and refits the camera.
func (m *Model) reset() error {
	s, err := m.cfg.Build(m.opts...)
	if err != nil {
		return err
	}
	m.scenario = s
	m.fuel = make(map[*physics.Rocket]float64, len(s.Rockets))
	for _, r := range s.Rockets {
		m.fuel[r] = r.FuelVolume()
	}
	m.trails = make(map[*dynamo.Body][]vmath.V3)
	m.energy = nil
	m.focus = 0
	m.running = true
	m.fit()
	return nil
}

func (m *Model) fit() {
	var points []vmath.V3
	for _, b := range m.scenario.Universe.Free() {
		points = append(points, b.CenterOfMass())
	}
	m.camera.Fit(points)
}

// step advances the universe by one frame. A failed step pauses the view and keeps
// the error for display.
func (m *Model) step() {
	u := m.scenario.Universe
	for range m.warp {
		if err := u.Step(m.scenario.Sim.Dt); err != nil {
			m.err = err
			m.running = false
			break
		}
	}

	for _, b := range u.Free() {
		trail := append(m.trails[b], b.CenterOfMass())
		if len(trail) > trailCapacity {
			trail = trail[1:]
		}
		m.trails[b] = trail
	}
	m.energy = append(m.energy, metrics.TotalEnergy(u))
	if len(m.energy) > historyCapacity {
		m.energy = m.energy[1:]
	}
}

// focused returns the free body the camera follows and the stats panel details, or nil
// if there are no free bodies.
func (m Model) focused() *dynamo.Body {
	free := m.scenario.Universe.Free()
	if len(free) == 0 {
		return nil
	}
	return free[m.focus%len(free)]
}

// rocket returns the rocket whose aggregate is b.
func (m Model) rocket(b *dynamo.Body) *physics.Rocket {
	for _, r := range m.scenario.Rockets {
		if r.Body == b {
			return r
		}
	}
	return nil
}

func (m *Model) adjustThrottle(delta float64) {
	if r := m.rocket(m.focused()); r != nil {
		r.Throttle(r.Engine().Throttle() + delta)
	}
}

func (m *Model) draw() {
	m.canvas.Clear()
	if b := m.focused(); m.follow && b != nil {
		m.camera.Center = b.CenterOfMass()
	}

	for _, trail := range m.trails {
		for _, p := range trail {
			x, y, _ := m.camera.Project(p, m.canvas)
			m.canvas.Set(x, y)
		}
	}

	scale := m.camera.Scale(m.canvas)
	for _, b := range m.scenario.Universe.Free() {
		x, y, _ := m.camera.Project(b.CenterOfMass(), m.canvas)
		if s, ok := b.Shape().(dynamo.Sphere); ok && s.Radius*scale >= 2 {
			m.canvas.DrawCircle(x, y, int(math.Round(s.Radius*scale)))
			continue
		}
		m.canvas.DrawMarker(x, y)
	}
}

// View renders the canvas beside the stats panel.
func (m Model) View() string {
	m.draw()
	st := m.styles
	u := m.scenario.Universe

	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.scenario.Name)) + "\n")
	switch {
	case m.err != nil:
		s.WriteString(st.failed.Render("STOPPED") + "\n" + st.muted.Render(m.err.Error()) + "\n\n")
	case m.running:
		s.WriteString(st.running.Render("RUNNING") + st.muted.Render(fmt.Sprintf("  x%d", m.warp)) + "\n\n")
	default:
		s.WriteString(st.paused.Render("PAUSED") + "\n\n")
	}

	s.WriteString(st.label.Render("Time") + st.value.Render(formatDuration(u.Time())) + "\n")
	if len(m.energy) > 0 {
		s.WriteString(st.label.Render("Energy") + st.value.Render(fmt.Sprintf("%.6g J", m.energy[len(m.energy)-1])) + "\n")
	}
	s.WriteString("\n")

	focus := m.focused()
	for _, b := range u.Free() {
		line := fmt.Sprintf("%-8s %9.3g kg %9.3g m/s", b.Name(), b.Mass(), b.VelocityOfCM().Mag())
		if b == focus {
			s.WriteString(st.focus.Render("▸ "+line) + "\n")
		} else {
			s.WriteString(st.muted.Render("  "+line) + "\n")
		}
	}

	if focus != nil {
		s.WriteString("\n")
		s.WriteString(st.label.Render("CM") + st.value.Render(formatV(focus.CenterOfMass())) + "\n")
		s.WriteString(st.label.Render("Velocity") + st.value.Render(formatV(focus.VelocityOfCM())) + "\n")
		s.WriteString(st.label.Render("Spin") + st.value.Render(formatV(focus.AngularVelocity())) + "\n")
		if r := m.rocket(focus); r != nil {
			s.WriteString(st.label.Render("Throttle") + st.value.Render(fmt.Sprintf("%.0f%%", 100*r.Engine().Throttle())) + "\n")
			frac := 0.0
			if full := m.fuel[r]; full > 0 {
				frac = r.FuelVolume() / full
			}
			s.WriteString(st.label.Render("Fuel") + st.Gauge(frac, 20) + "\n")
		}
	}

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}

	s.WriteString(st.help.Render("SP:Pause R:Reset Q:Quit ?:Help\nTAB:Focus F:Follow T:" + Themes[m.theme].Name))

	main := lipgloss.JoinHorizontal(lipgloss.Top, st.canvas.Render(m.canvas.String()), st.stats.Render(s.String()))
	if m.showHelp {
		return st.muted.Render(helpText) + "\n" + main
	}
	return main
}

const helpText = `
  Space      pause or resume
  R          rebuild from the config
  + / -      double or halve steps per frame
  Tab        focus the next free body
  F          follow the focused body
  C          fit the camera to all bodies
  Z / X      zoom in or out
  Arrows     turn the camera
  W / S      throttle up or down (rockets)
  T          cycle themes
  Q          quit
`

func formatV(v vmath.V3) string {
	return fmt.Sprintf("%9.3g %9.3g %9.3g", v.X, v.Y, v.Z)
}

func formatDuration(t float64) string {
	if t < 600 {
		return fmt.Sprintf("%.2fs", t)
	}
	return (time.Duration(t) * time.Second).String()
}

// RunLive shows cfg in the terminal until the user quits.
func RunLive(cfg *config.Config, theme string, opts ...sim.Option) error {
	m, err := NewModel(cfg, opts...)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m.WithTheme(theme), tea.WithAltScreen()).Run()
	return err
}
