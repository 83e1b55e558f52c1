package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-logr/logr"

	"github.com/san-kum/fzx/internal/config"
	"github.com/san-kum/fzx/internal/experiment"
)

var sceneInfo = map[string]string{
	"drift": "constant velocity", "freefall": "uniform gravity", "projectile": "gravity and drag",
	"tether": "body on a spring", "pair": "mutual spring pair", "chain": "spring chain", "jittery": "irregular frame times",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// Editable scene parameters, in display order.
var paramNames = []string{"fixed_time_step", "max_steps", "drag", "gravity_y", "fps"}

type app struct {
	state, cursor int
	scenes        []string
	selected      string
	scene         *config.Scene
	paramCursor   int
	editing       bool
	editBuf       string
	err           error
	registry      *experiment.Registry
	log           logr.Logger
	width, height int
	liveModel     Model
}

func newApp(reg *experiment.Registry, log logr.Logger) app {
	return app{
		state:    stateMenu,
		scenes:   reg.ListScenes(),
		registry: reg,
		log:      log,
		width:    80, height: 24,
	}
}

func (m app) Init() tea.Cmd { return nil }

func (m app) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.state == stateSim {
			return m.forward(msg)
		}
	default:
		if m.state == stateSim {
			return m.forward(msg)
		}
	}
	return m, nil
}

func (m app) forward(msg tea.Msg) (app, tea.Cmd) {
	next, cmd := m.liveModel.Update(msg)
	m.liveModel = next.(Model)
	return m, cmd
}

func (m app) handleKey(msg tea.KeyMsg) (app, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateSim:
		if msg.String() == "esc" {
			m.state = stateConfig
			return m, nil
		}
		return m.forward(msg)
	}
	return m, nil
}

func (m app) menuKey(msg tea.KeyMsg) (app, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.scenes)-1 {
			m.cursor++
		}
	case "enter", " ":
		scene, err := m.registry.GetScene(m.scenes[m.cursor])
		if err != nil {
			m.err = err
			return m, nil
		}
		m.selected, m.scene = m.scenes[m.cursor], scene
		m.state, m.paramCursor, m.err = stateConfig, 0, nil
	}
	return m, nil
}

func (m app) configKey(msg tea.KeyMsg) (app, tea.Cmd) {
	if m.editing {
		switch msg.String() {
		case "enter":
			var val float64
			if _, err := fmt.Sscanf(m.editBuf, "%g", &val); err == nil {
				m.setParam(paramNames[m.paramCursor], val)
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == 'e' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		m.state, m.err = stateMenu, nil
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(paramNames)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		m.editing, m.editBuf = true, fmt.Sprintf("%g", m.param(paramNames[m.paramCursor]))
	case "i":
		m.scene.Integrator = m.nextIntegrator()
	case "s":
		return m.start()
	case "left", "h":
		m.nudge(paramNames[m.paramCursor], 1/1.25)
	case "right", "l":
		m.nudge(paramNames[m.paramCursor], 1.25)
	}
	return m, nil
}

func (m app) param(name string) float64 {
	switch name {
	case "fixed_time_step":
		return m.scene.FixedTimeStep
	case "max_steps":
		return float64(m.scene.MaxSteps)
	case "drag":
		return m.scene.Drag
	case "gravity_y":
		return m.scene.Gravity[1]
	case "fps":
		return m.scene.FPS
	}
	return 0
}

func (m *app) setParam(name string, v float64) {
	switch name {
	case "fixed_time_step":
		m.scene.FixedTimeStep = v
	case "max_steps":
		m.scene.MaxSteps = int(v)
	case "drag":
		m.scene.Drag = v
	case "gravity_y":
		m.scene.Gravity[1] = v
	case "fps":
		m.scene.FPS = v
	}
}

// nudge scales a parameter, stepping additively through zero.
func (m *app) nudge(name string, factor float64) {
	v := m.param(name)
	switch {
	case v == 0 && factor > 1:
		v = 1
	case name == "max_steps" && v <= 1 && factor < 1:
		v = 0
	default:
		v *= factor
	}
	m.setParam(name, v)
}

func (m app) nextIntegrator() string {
	names := m.registry.ListIntegrators()
	for i, n := range names {
		if n == m.scene.Integrator {
			return names[(i+1)%len(names)]
		}
	}
	return names[0]
}

func (m app) start() (app, tea.Cmd) {
	live, err := NewModel(m.scene.Clone(), m.registry, m.log)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.liveModel, m.state, m.err = live, stateSim, nil
	return m, m.liveModel.Init()
}

func (m app) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.liveModel.View()
	}
	return ""
}

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	subtitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	pointerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	accentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	idleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	idleDescStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5555"))
)

func (m app) header(title, sub string) string {
	return "\n\n    " + titleStyle.Render(title) + "\n    " + subtitleStyle.Render(sub) +
		"\n    " + subtitleStyle.Render("─────────────────────────") + "\n\n"
}

func (m app) viewMenu() string {
	var b strings.Builder
	b.WriteString(m.header("FZX", "fixed-step rigid bodies"))
	for i, name := range m.scenes {
		desc := sceneInfo[name]
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", pointerStyle.Render("▸"), selectedStyle.Render(fmt.Sprintf("%-12s", name)), accentStyle.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", idleStyle.Render(fmt.Sprintf("  %-12s", name)), idleDescStyle.Render(desc)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + errorStyle.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + hint("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (m app) viewConfig() string {
	var b strings.Builder
	b.WriteString(m.header(strings.ToUpper(m.selected), sceneInfo[m.selected]))
	b.WriteString(fmt.Sprintf("    %s %s\n\n", idleStyle.Render(fmt.Sprintf("  %-16s", "integrator")), accentStyle.Render(m.scene.Integrator)))
	for i, name := range paramNames {
		valStr := fmt.Sprintf("%10.4g", m.param(name))
		if m.editing && i == m.paramCursor {
			valStr = fmt.Sprintf("%10s", m.editBuf+"_")
		}
		if i == m.paramCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", pointerStyle.Render("▸"), selectedStyle.Render(fmt.Sprintf("%-16s", name)), accentStyle.Bold(true).Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", idleStyle.Render(fmt.Sprintf("  %-16s", name)), idleDescStyle.Render(valStr)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + errorStyle.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + hint("j/k", "select", "h/l", "adjust", "i", "integrator", "s", "start", "esc", "back") + "\n")
	return b.String()
}

// RunInteractive opens the scene picker. Started scenes run in the live view.
func RunInteractive(reg *experiment.Registry, log logr.Logger) error {
	if reg == nil {
		reg = experiment.NewRegistry()
	}
	_, err := tea.NewProgram(newApp(reg, log), tea.WithAltScreen()).Run()
	return err
}
