// Package automation runs batches of experiments: scripted scenarios,
// parameter sweeps and Monte Carlo perturbations of a scene.
package automation

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/go-logr/logr"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/fzx/internal/config"
	"github.com/san-kum/fzx/internal/experiment"
)

var (
	ErrUnknownParam = errors.New("automation: unknown sweep parameter")
	ErrBadSweep     = errors.New("automation: sweep needs at least one value")
)

// Sweepable scene parameters.
const (
	ParamStep   = "step"
	ParamSpring = "spring"
	ParamMass   = "mass"
	ParamDrag   = "drag"
	ParamJitter = "jitter"
)

// Scenario defines a scripted sequence of runs
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a preset plus overrides. Zero overrides keep the preset
// value.
type ScenarioStep struct {
	Preset        string             `yaml:"preset"`
	Integrator    string             `yaml:"integrator"`
	FixedTimeStep float64            `yaml:"fixed_time_step"`
	Frames        int                `yaml:"frames"`
	Jitter        float64            `yaml:"jitter"`
	Seed          int64              `yaml:"seed"`
	Params        map[string]float64 `yaml:"params"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}

	return &scenario, nil
}

// Scene resolves the step into a scene.
func (s ScenarioStep) Scene(reg *experiment.Registry) (*config.Scene, error) {
	scene, err := reg.GetScene(s.Preset)
	if err != nil {
		return nil, err
	}
	if s.Integrator != "" {
		scene.Integrator = s.Integrator
	}
	if s.FixedTimeStep != 0 {
		scene.FixedTimeStep = s.FixedTimeStep
	}
	if s.Frames != 0 {
		scene.Frames = s.Frames
	}
	if s.Jitter != 0 {
		scene.Jitter = s.Jitter
	}
	if s.Seed != 0 {
		scene.Seed = s.Seed
	}
	for k, v := range s.Params {
		if err := ApplyParam(scene, k, v); err != nil {
			return nil, err
		}
	}
	return scene, scene.Validate()
}

// RunScenario executes all steps in a scenario
func RunScenario(ctx context.Context, scenario *Scenario, reg *experiment.Registry, log logr.Logger) ([]*experiment.Result, error) {
	results := make([]*experiment.Result, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		log.Info("running scenario step", "step", i+1, "of", len(scenario.Steps), "preset", step.Preset)

		scene, err := step.Scene(reg)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		result, err := run(ctx, scene, reg, log)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		results = append(results, result)
	}

	return results, nil
}

func run(ctx context.Context, scene *config.Scene, reg *experiment.Registry, log logr.Logger) (*experiment.Result, error) {
	exp := experiment.New(scene, reg, log)
	if err := exp.Setup(); err != nil {
		return nil, fmt.Errorf("setup: %w", err)
	}
	result, err := exp.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("run: %w", err)
	}
	return result, nil
}

// ApplyParam sets one sweepable parameter on scene. spring and mass apply
// to every spring and body.
func ApplyParam(scene *config.Scene, name string, v float64) error {
	switch name {
	case ParamStep:
		scene.FixedTimeStep = v
	case ParamSpring:
		for i := range scene.Springs {
			scene.Springs[i].Stiffness = v
		}
	case ParamMass:
		for i := range scene.Bodies {
			scene.Bodies[i].Mass = v
		}
	case ParamDrag:
		scene.Drag = v
	case ParamJitter:
		scene.Jitter = v
	default:
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	return nil
}

// ParameterSweep runs a scene across evenly spaced values of one parameter
type ParameterSweep struct {
	Scene     *config.Scene
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	// Workers bounds concurrent runs; zero means one per CPU.
	Workers int
}

// SweepResult holds the outcome of one sweep point
type SweepResult struct {
	ParamValue    float64
	Metrics       map[string]float64
	Steps         uint64
	SimulatedTime float64
	Final         []mgl64.Vec3
}

// Values returns the parameter values the sweep visits.
func (s *ParameterSweep) Values() []float64 {
	if s.NumSteps == 1 {
		return []float64{s.ParamMin}
	}
	values := make([]float64, 0, s.NumSteps)
	paramStep := (s.ParamMax - s.ParamMin) / float64(s.NumSteps-1)
	for i := 0; i < s.NumSteps; i++ {
		values = append(values, s.ParamMin+float64(i)*paramStep)
	}
	return values
}

// RunSweep executes a parameter sweep. The sweep's scene is never
// modified; every point runs on a copy.
func RunSweep(ctx context.Context, sweep *ParameterSweep, reg *experiment.Registry, log logr.Logger) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, ErrBadSweep
	}
	values := sweep.Values()
	scenes := make([]*config.Scene, len(values))
	for i, v := range values {
		scenes[i] = sweep.Scene.Clone()
		if err := ApplyParam(scenes[i], sweep.ParamName, v); err != nil {
			return nil, err
		}
	}

	runs, err := NewEnsemble(reg, log, sweep.Workers).Run(ctx, scenes)
	if err != nil {
		return nil, fmt.Errorf("sweep %s: %w", sweep.ParamName, err)
	}

	results := make([]SweepResult, 0, len(runs))
	for i, result := range runs {
		results = append(results, SweepResult{
			ParamValue:    values[i],
			Metrics:       result.Metrics,
			Steps:         result.Steps,
			SimulatedTime: result.SimulatedTime,
			Final:         finalPositions(result),
		})
		log.V(1).Info("sweep point", "index", i+1, "of", len(runs), sweep.ParamName, values[i])
	}

	return results, nil
}

func finalPositions(result *experiment.Result) []mgl64.Vec3 {
	if n := len(result.Frames); n > 0 {
		return result.Frames[n-1].Positions
	}
	return nil
}

// MonteCarloConfig defines Monte Carlo simulation parameters
type MonteCarloConfig struct {
	Scene        *config.Scene
	Perturbation float64
	NumTrials    int
	Seed         int64
	Workers      int
}

// MonteCarloResult holds the outcome of one perturbed trial
type MonteCarloResult struct {
	TrialID   int
	Offsets   []mgl64.Vec3
	Final     []mgl64.Vec3
	Stability float64
	Stable    bool
}

// RunMonteCarlo runs trials whose body positions are offset by uniform
// noise in [-Perturbation, Perturbation) per axis.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, reg *experiment.Registry, log logr.Logger) ([]MonteCarloResult, error) {
	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	// offsets are drawn up front so a seed fixes every trial regardless of
	// scheduling
	scenes := make([]*config.Scene, cfg.NumTrials)
	offsets := make([][]mgl64.Vec3, cfg.NumTrials)
	for trial := range scenes {
		scene := cfg.Scene.Clone()
		offsets[trial] = make([]mgl64.Vec3, len(scene.Bodies))
		for i := range scene.Bodies {
			for k := 0; k < 3; k++ {
				offsets[trial][i][k] = (rng.Float64() - 0.5) * 2 * cfg.Perturbation
				scene.Bodies[i].Position[k] += offsets[trial][i][k]
			}
		}
		scenes[trial] = scene
	}

	runs, err := NewEnsemble(reg, log, cfg.Workers).Run(ctx, scenes)
	if err != nil {
		return nil, fmt.Errorf("monte carlo: %w", err)
	}

	results := make([]MonteCarloResult, 0, len(runs))
	for trial, result := range runs {
		stability := result.Metrics["stability"]
		results = append(results, MonteCarloResult{
			TrialID:   trial,
			Offsets:   offsets[trial],
			Final:     finalPositions(result),
			Stability: stability,
			Stable:    stability == 1,
		})
	}
	log.Info("monte carlo finished", "trials", len(results))

	return results, nil
}

// MonteCarloStats computes summary statistics from Monte Carlo results
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
