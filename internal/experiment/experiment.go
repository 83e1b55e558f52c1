// Package experiment drives an fzx world headlessly: it builds the world
// from a scene, feeds it a (possibly jittered) frame schedule and records
// what a renderer would have drawn.
package experiment

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/go-logr/logr"

	"github.com/san-kum/fzx/internal/config"
	"github.com/san-kum/fzx/internal/metrics"
)

var ErrNotSetup = errors.New("experiment: not set up")

// Observer is notified after every recorded frame.
type Observer interface {
	OnFrame(w *World, f Frame)
}

type ObserverFunc func(w *World, f Frame)

func (fn ObserverFunc) OnFrame(w *World, f Frame) { fn(w, f) }

type Result struct {
	Scene         string
	Integrator    string
	Bodies        []string
	Frames        []Frame
	Metrics       map[string]float64
	Steps         uint64
	SimulatedTime float64
	WallTime      float64
	Elapsed       time.Duration
}

type Experiment struct {
	scene      *config.Scene
	registry   *Registry
	log        logr.Logger
	world      *World
	metrics    []metrics.Metric
	observers  []Observer
	randSource *rand.Rand
}

func New(scene *config.Scene, reg *Registry, log logr.Logger) *Experiment {
	if reg == nil {
		reg = NewRegistry()
	}
	return &Experiment{
		scene:      scene,
		registry:   reg,
		log:        log,
		randSource: rand.New(rand.NewSource(scene.Seed)),
	}
}

// Setup builds the world and attaches metrics. When no metrics are given
// the registry defaults are used.
func (e *Experiment) Setup(ms ...metrics.Metric) error {
	w, err := Build(e.scene, e.registry, e.log)
	if err != nil {
		return err
	}
	e.world = w
	if len(ms) == 0 {
		ms = e.registry.DefaultMetrics(e.scene)
	}
	e.metrics = ms
	return nil
}

func (e *Experiment) AddObserver(o Observer) { e.observers = append(e.observers, o) }

// World returns the world built by Setup.
func (e *Experiment) World() *World { return e.world }

// FrameDuration returns the wall-clock length of the next frame. With
// jitter j the nominal 1/fps is scaled by a uniform factor in [1-j, 1+j).
func (e *Experiment) FrameDuration() float64 {
	dt := 1.0 / e.scene.FPS
	if e.scene.Jitter == 0 {
		return dt
	}
	return dt * (1 + e.scene.Jitter*(2*e.randSource.Float64()-1))
}

// Run records the initial snapshot followed by one frame per scheduled
// frame. A cancelled context stops the run and returns what was recorded.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.world == nil {
		return nil, ErrNotSetup
	}
	start := time.Now()

	result := &Result{
		Scene:      e.scene.Name,
		Integrator: e.scene.Integrator,
		Bodies:     append([]string(nil), e.world.Names...),
		Frames:     make([]Frame, 0, e.scene.Frames+1),
		Metrics:    make(map[string]float64),
	}

	for _, m := range e.metrics {
		m.Reset()
	}

	wall := 0.0
	e.record(result, e.world.Snapshot(), wall)

	var runErr error
	for i := 0; i < e.scene.Frames; i++ {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
		default:
		}
		if runErr != nil {
			break
		}

		dt := e.FrameDuration()
		wall += dt
		e.record(result, e.world.Advance(dt), wall)
	}

	for _, m := range e.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.Steps = e.world.System.Steps()
	result.SimulatedTime = e.world.System.SimulatedTime()
	result.WallTime = wall
	result.Elapsed = time.Since(start)

	e.log.V(1).Info("run finished", "scene", e.scene.Name, "frames", len(result.Frames), "steps", result.Steps)
	return result, runErr
}

func (e *Experiment) record(result *Result, f Frame, wall float64) {
	f.Time = wall
	result.Frames = append(result.Frames, f)

	live := e.world.Live()
	for _, m := range e.metrics {
		m.Observe(live, wall)
	}
	for _, o := range e.observers {
		o.OnFrame(e.world, f)
	}
}

// Series returns one coordinate (0=x, 1=y, 2=z) of one body across all
// frames. Out of range indices yield nil.
func (r *Result) Series(body, axis int) []float64 {
	if body < 0 || body >= len(r.Bodies) || axis < 0 || axis > 2 {
		return nil
	}
	out := make([]float64, len(r.Frames))
	for i, f := range r.Frames {
		if body < len(f.Positions) {
			out[i] = f.Positions[body][axis]
		}
	}
	return out
}

func (r *Result) Times() []float64 {
	out := make([]float64, len(r.Frames))
	for i, f := range r.Frames {
		out[i] = f.Time
	}
	return out
}

// BodyIndex returns the position of name in Bodies, or -1.
func (r *Result) BodyIndex(name string) int {
	for i, n := range r.Bodies {
		if n == name {
			return i
		}
	}
	return -1
}
