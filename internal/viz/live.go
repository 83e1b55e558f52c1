package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/go-logr/logr"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/fzx/internal/config"
	"github.com/san-kum/fzx/internal/experiment"
	"github.com/san-kum/fzx/internal/metrics"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	trailCapacity   = 120
	maxFrameTime    = 0.25
	markerSize      = 0.06
)

type TickMsg time.Time

// Model renders a live world. Every tick the real time since the previous
// tick, scaled by speed, is handed to System.Update and bodies are drawn
// at the returned alpha.
type Model struct {
	scene         *config.Scene
	registry      *experiment.Registry
	log           logr.Logger
	world         *experiment.World
	width, height int
	canvas        *Canvas
	camera        *Camera
	theme         Theme
	running       bool
	speed         float64
	tickEvery     time.Duration
	lastTick      time.Time
	wall          float64
	frame         experiment.Frame
	trails        [][]mgl64.Vec3
	energyHistory []float64
	stepHistory   []float64
	recorder      *Recorder
	recordPath    string
	status        string
	showHelp      bool
}

func NewModel(scene *config.Scene, reg *experiment.Registry, log logr.Logger) (Model, error) {
	if reg == nil {
		reg = experiment.NewRegistry()
	}
	m := Model{
		scene:      scene,
		registry:   reg,
		log:        log,
		width:      width,
		height:     height,
		canvas:     NewCanvas(width, height),
		camera:     NewCamera(),
		theme:      CurrentTheme,
		running:    true,
		speed:      1,
		tickEvery:  time.Duration(float64(time.Second) / scene.FPS),
		recordPath: "fzx.gif",
	}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// World exposes the simulated world.
func (m Model) World() *experiment.World { return m.world }

func (m Model) WallTime() float64 { return m.wall }

func (m Model) Speed() float64 { return m.speed }

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.tickEvery, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		w, h := max(msg.Width-56, 20), max(msg.Height-4, 8)
		if w != m.width || h != m.height {
			m.width, m.height = w, h
			m.canvas = NewCanvas(w, h)
		}
	case TickMsg:
		m.advance(time.Time(msg))
		m.draw()
		if m.recorder != nil {
			m.recorder.Capture(m.canvas, fmt.Sprintf("t=%.2fs a=%.2f", m.wall, m.frame.Alpha))
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case "r":
		if err := m.reset(); err != nil {
			m.status = err.Error()
		}
	case "]":
		m.speed = min(m.speed*2, 16)
	case "[":
		m.speed = max(m.speed/2, 1.0/16)
	case "f":
		m.camera.Fit(m.world.Bounds())
	case "t":
		m.theme = NextTheme(m.theme.Name)
	case "g":
		m.toggleRecording()
	case "?":
		m.showHelp = !m.showHelp
	case "x":
		m.camera.RotateX(0.1)
	case "X":
		m.camera.RotateX(-0.1)
	case "y":
		m.camera.RotateY(0.1)
	case "Y":
		m.camera.RotateY(-0.1)
	case "z":
		m.camera.RotateZ(0.1)
	case "Z":
		m.camera.RotateZ(-0.1)
	case "+", "=":
		m.camera.ZoomIn()
	case "-", "_":
		m.camera.ZoomOut()
	}
	m.draw()
	return m, nil
}

func (m *Model) toggleRecording() {
	if m.recorder == nil {
		m.recorder = NewRecorder(int(100 / m.scene.FPS))
		m.status = "recording"
		return
	}
	if err := m.recorder.Save(m.recordPath); err != nil {
		m.status = err.Error()
	} else {
		m.status = fmt.Sprintf("saved %d frames to %s", m.recorder.Len(), m.recordPath)
	}
	m.recorder = nil
}

// advance feeds the wall-clock time since the previous tick to the world.
// The first tick only starts the clock. Paused ticks keep the clock moving
// so resuming does not replay the pause.
func (m *Model) advance(now time.Time) {
	last := m.lastTick
	m.lastTick = now
	if last.IsZero() || !m.running {
		return
	}

	elapsed := now.Sub(last).Seconds()
	if elapsed > maxFrameTime {
		elapsed = maxFrameTime
	}
	elapsed *= m.speed

	m.frame = m.world.Advance(elapsed)
	m.wall += elapsed

	for i, p := range m.frame.Positions {
		m.trails[i] = appendCapped(m.trails[i], p, trailCapacity)
	}
	m.energyHistory = appendCapped(m.energyHistory, metrics.TotalEnergy(m.world.Live(), mgl64.Vec3(m.scene.Gravity)), historyCapacity)
	m.stepHistory = appendCapped(m.stepHistory, float64(m.frame.Steps), historyCapacity)
}

func appendCapped[T any](s []T, v T, capacity int) []T {
	s = append(s, v)
	if len(s) > capacity {
		s = s[len(s)-capacity:]
	}
	return s
}

// reset rebuilds the world from the scene.
func (m *Model) reset() error {
	w, err := experiment.Build(m.scene, m.registry, m.log)
	if err != nil {
		return err
	}
	m.world = w
	m.frame = w.Snapshot()
	m.wall = 0
	m.lastTick = time.Time{}
	m.trails = make([][]mgl64.Vec3, len(w.Bodies))
	m.energyHistory = m.energyHistory[:0]
	m.stepHistory = m.stepHistory[:0]
	m.camera.Fit(w.Bounds())
	m.draw()
	return nil
}

// draw renders trails, springs and each body's bounding box placed by its
// model transformation at the current alpha.
func (m *Model) draw() {
	m.canvas.Clear()
	if m.world == nil {
		return
	}
	view := m.camera.View()
	alpha := m.frame.Alpha

	edges := AxesEdges(view, 1)
	for _, trail := range m.trails {
		for i := 1; i < len(trail); i++ {
			edges = append(edges, Edge{
				Start: view.Mul4x1(trail[i-1].Vec4(1)).Vec3(),
				End:   view.Mul4x1(trail[i].Vec4(1)).Vec3(),
				Ink:   InkTrail,
			})
		}
	}

	for _, b := range m.world.Live() {
		self := view.Mul4x1(b.PositionAt(alpha).Vec4(1)).Vec3()
		for _, s := range b.Constraints() {
			if other := s.AttachedTo(); other != nil {
				edges = append(edges, Edge{
					Start: self,
					End:   view.Mul4x1(other.PositionAt(alpha).Vec4(1)).Vec3(),
					Ink:   InkSpring,
				})
			}
		}
	}

	for i, b := range m.world.Bodies {
		model := b.ModelTransformation(alpha, view)
		if box := b.LocalBoundingBox(); !box.IsEmpty() {
			edges = append(edges, BoxEdges(box, model, InkBody+i)...)
			continue
		}
		edges = append(edges, CrossEdges(model.Mul4x1(mgl64.Vec4{0, 0, 0, 1}).Vec3(), markerSize, InkBody+i)...)
	}

	Render3D(m.canvas, edges, m.camera)
}

func (m Model) View() string {
	canvasView := canvasStyle.Render(m.canvas.Render(m.theme))

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.scene.Name)) + "\n")

	switch {
	case m.recorder != nil:
		s.WriteString(StatusRecording.Render("● REC") + "\n\n")
	case m.running:
		s.WriteString(StatusRunning.Render("RUNNING") + "\n\n")
	default:
		s.WriteString(StatusPaused.Render("PAUSED") + "\n\n")
	}

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	sys := m.world.System
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Wall time", fmt.Sprintf("%.2fs", m.wall))
	row("Sim time", fmt.Sprintf("%.2fs", sys.SimulatedTime()))
	row("Fixed step", fmt.Sprintf("%.4fs", sys.FixedTimeStep()))
	row("Steps", fmt.Sprintf("%d", sys.Steps()))
	row("Hangover", fmt.Sprintf("%.4fs", sys.HangoverTime()))
	row("Alpha", ProgressBar(m.frame.Alpha, 12)+fmt.Sprintf(" %.2f", m.frame.Alpha))
	row("Speed", fmt.Sprintf("%gx", m.speed))
	row("Steps/frame", Sparkline(m.stepHistory, 24))
	row("Bodies", fmt.Sprintf("%d live", len(sys.Bodies())))
	row("Overlaps", fmt.Sprintf("%d", metrics.OverlappingPairs(m.world.Live())))
	row("Theme", m.theme.Name)

	if m.status != "" {
		s.WriteString("\n" + Subtle.Render(m.status) + "\n")
	}
	s.WriteString(helpStyle.Render(Separator(40) + "\n" +
		hint("space", "pause", "r", "reset", "q", "quit") + "\n" +
		hint("[ ]", "speed", "f", "fit", "?", "help")))

	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  R        - Rebuild the scene        ║
║  Q        - Quit                     ║
║  [ / ]    - Halve / double speed     ║
║  F        - Fit camera to bodies     ║
║  X Y Z    - Rotate camera (shift -)  ║
║  + / -    - Zoom                     ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n" + mainView
	}
	return mainView
}

// RunLive opens the live view for scene in the alternate screen.
func RunLive(scene *config.Scene, reg *experiment.Registry, log logr.Logger) error {
	m, err := NewModel(scene, reg, log)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
