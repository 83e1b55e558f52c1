package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/fzx/internal/analysis"
	"github.com/san-kum/fzx/internal/automation"
	"github.com/san-kum/fzx/internal/config"
	"github.com/san-kum/fzx/internal/experiment"
	"github.com/san-kum/fzx/internal/export"
	"github.com/san-kum/fzx/internal/optim"
	"github.com/san-kum/fzx/internal/storage"
	"github.com/san-kum/fzx/internal/viz"
)

const defaultPreset = "drift"

// loadScene resolves the scene for run, live and sweep: a preset named by
// the argument (or --config), then any flags the user set explicitly.
func loadScene(cmd *cobra.Command, args []string) (*config.Scene, error) {
	var (
		scene *config.Scene
		err   error
	)
	switch {
	case configFile != "":
		scene, err = config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	case len(args) > 0:
		scene, err = config.GetPreset(args[0])
		if err != nil {
			return nil, fmt.Errorf("%w (available: %v)", err, config.ListPresets())
		}
	default:
		scene, _ = config.GetPreset(defaultPreset)
	}

	flags := cmd.Flags()
	if flags.Changed("frames") {
		scene.Frames = frames
	}
	if flags.Changed("fps") {
		scene.FPS = fps
	}
	if flags.Changed("jitter") {
		scene.Jitter = jitter
	}
	if flags.Changed("seed") {
		scene.Seed = seed
	}
	if flags.Changed("integrator") {
		scene.Integrator = integrator
	}
	if flags.Changed("step") {
		scene.FixedTimeStep = step
	}
	if flags.Changed("max-steps") {
		scene.MaxSteps = maxSteps
	}
	return scene, scene.Validate()
}

func runScene(cmd *cobra.Command, args []string) error {
	scene, err := loadScene(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	exp := experiment.New(scene, experiment.NewRegistry(), log)
	if err := exp.Setup(); err != nil {
		return err
	}

	fmt.Printf("running %s...\n", scene.Name)
	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	runID, err := st.Save(scene, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", result.Elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("frames: %d  steps: %d  simulated: %.4fs  wall: %.4fs\n",
		len(result.Frames), result.Steps, result.SimulatedTime, result.WallTime)
	fmt.Println("\nmetrics:")
	for _, name := range slices.Sorted(maps.Keys(result.Metrics)) {
		fmt.Printf("  %s: %.6g\n", name, result.Metrics[name])
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tFRAMES\tSTEP\tSTEPS\tINTEG")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4fs\t%d\t%s\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Frames,
			run.FixedTimeStep,
			run.Steps,
			run.Integrator,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	bodies, frames, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("frames: %d\n\n", len(frames))

	run := &experiment.Result{Bodies: bodies, Frames: frames}
	for b, name := range bodies {
		if bodyName != "" && name != bodyName {
			continue
		}
		for a, label := range []string{"x", "y", "z"} {
			data := run.Series(b, a)
			if flat(data) {
				continue
			}
			graph := asciigraph.Plot(data,
				asciigraph.Height(10),
				asciigraph.Width(80),
				asciigraph.Caption(fmt.Sprintf("%s.%s vs frame", name, label)),
			)
			fmt.Println(graph)
			fmt.Println()
		}
	}
	return nil
}

func flat(data []float64) bool {
	for _, v := range data {
		if v != data[0] {
			return false
		}
	}
	return true
}

// series loads one coordinate of the selected body with its frame times.
func series(runID string) (*storage.RunMetadata, string, []float64, []float64, error) {
	if axis < 0 || axis > 2 {
		return nil, "", nil, nil, fmt.Errorf("axis must be 0, 1 or 2")
	}
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, "", nil, nil, err
	}
	bodies, frames, err := st.LoadFrames(runID)
	if err != nil {
		return nil, "", nil, nil, err
	}
	if len(frames) == 0 || len(bodies) == 0 {
		return nil, "", nil, nil, fmt.Errorf("no data")
	}

	run := &experiment.Result{Bodies: bodies, Frames: frames}
	b := 0
	if bodyName != "" {
		if b = run.BodyIndex(bodyName); b < 0 {
			return nil, "", nil, nil, fmt.Errorf("run %s has no body %q (bodies: %v)", runID, bodyName, bodies)
		}
	}
	return meta, bodies[b], run.Times(), run.Series(b, axis), nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, name, times, values, err := series(args[0])
	if err != nil {
		return err
	}

	// frames are not evenly spaced when jittered
	uniform, err := analysis.Resample(times, values, meta.FPS)
	if err != nil {
		return err
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("series: %s.%c\n\n", name, "xyz"[axis])

	ps := analysis.PowerSpectrum(uniform)
	plotData := ps
	if len(ps) >= 16 {
		plotData = ps[:len(ps)/4]
	}
	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum"),
	)
	fmt.Println(graph)
	fmt.Println()

	freq, err := analysis.DominantFrequency(uniform, meta.FPS)
	if err != nil {
		return err
	}
	fmt.Printf("dominant frequency: %.4f hz\n", freq)
	if p := analysis.Period(times, values); p > 0 {
		fmt.Printf("period: %.4f s\n", p)
	}

	scene, err := storage.New(dataDir).LoadScene(meta.ID)
	if err != nil {
		log.V(1).Info("skipping sensitivity", "run", meta.ID, "error", err.Error())
		return nil
	}
	lambda, err := analysis.Sensitivity(scene, experiment.NewRegistry(), 1e-8)
	if err != nil {
		return err
	}
	fmt.Printf("largest lyapunov estimate: %.4g /s\n", lambda)
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	_, name, times, values, err := series(args[0])
	if err != nil {
		return err
	}
	portrait := analysis.GeneratePhasePortrait(name, axis, times, values)
	fmt.Println(analysis.PhasePortraitToASCII(portrait, 70, 25))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).CopyFrames(args[0], os.Stdout)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportRun(args[0], os.Stdout)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	if len(svgAxes) != 2 {
		return export.ErrBadAxes
	}
	bodies, frames, err := storage.New(dataDir).LoadFrames(args[0])
	if err != nil {
		return err
	}
	svg, err := export.TrajectoriesToSVG(bodies, frames, [2]int{svgAxes[0], svgAxes[1]}, 800, 600, viz.GetTheme(svgTheme))
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	_, err = io.WriteString(w, svg)
	return err
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tBODIES\tSPRINGS\tSTEP\tINTEG")
	for _, name := range config.ListPresets() {
		p, err := config.GetPreset(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%.4fs\t%s\n", name, len(p.Bodies), len(p.Springs), p.FixedTimeStep, p.Integrator)
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	scene, err := loadScene(cmd, args)
	if err != nil {
		return err
	}
	return viz.RunLive(scene, experiment.NewRegistry(), log)
}

// benchScene is a chain of n unit masses under gravity, each tied to its
// neighbour.
func benchScene(n int, integ string) *config.Scene {
	scene := config.DefaultScene()
	scene.Name = fmt.Sprintf("bench_%d", n)
	scene.Integrator = integ
	scene.FixedTimeStep = benchStep
	scene.Gravity = config.Vec{0, -9.81, 0}
	scene.Bodies = scene.Bodies[:0]
	for i := 0; i < n; i++ {
		scene.Bodies = append(scene.Bodies, config.BodyConfig{
			Name:     fmt.Sprintf("b%d", i),
			Mass:     1,
			Position: config.Vec{float64(i), 0, 0},
		})
		if i > 0 {
			scene.Springs = append(scene.Springs, config.SpringConfig{
				From: fmt.Sprintf("b%d", i-1), To: fmt.Sprintf("b%d", i), Stiffness: 10, Mutual: true,
			})
		}
	}
	return scene
}

func bench(cmd *cobra.Command, args []string) error {
	reg := experiment.NewRegistry()

	fmt.Printf("benchmarking %.1fs simulated at step %gs\n\n", benchTime, benchStep)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEG\tBODIES\tSTEPS\tTIME\tSTEPS/SEC\tBODY-STEPS/SEC")

	for _, integ := range reg.ListIntegrators() {
		for _, n := range benchBodies {
			if n < 1 {
				continue
			}
			world, err := experiment.Build(benchScene(n, integ), reg, log)
			if err != nil {
				return err
			}

			start := time.Now()
			for world.System.SimulatedTime() < benchTime {
				world.Advance(1.0 / 60)
			}
			elapsed := time.Since(start)

			steps := world.System.Steps()
			stepsPerSec := float64(steps) / elapsed.Seconds()
			fmt.Fprintf(w, "%s\t%d\t%d\t%v\t%.0f\t%.0f\n",
				integ, n, steps, elapsed, stepsPerSec, stepsPerSec*float64(n))
		}
	}

	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	scene, err := loadScene(cmd, args)
	if err != nil {
		return err
	}

	results, err := automation.RunSweep(cmd.Context(), &automation.ParameterSweep{
		Scene:     scene,
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepSteps,
		Workers:   workers,
	}, experiment.NewRegistry(), log)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tSTEPS\tENERGY DRIFT\tMOMENTUM DRIFT\tSTABILITY\n", sweepParam)
	drift := make([]float64, 0, len(results))
	for _, r := range results {
		fmt.Fprintf(w, "%.6g\t%d\t%.3e\t%.3e\t%.3f\n",
			r.ParamValue, r.Steps, r.Metrics["energy_drift"], r.Metrics["momentum_drift"], r.Metrics["stability"])
		drift = append(drift, r.Metrics["energy_drift"])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(drift) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(drift,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption(fmt.Sprintf("energy drift vs %s", sweepParam)),
		))
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	results, err := automation.RunScenario(cmd.Context(), scenario, experiment.NewRegistry(), log)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	reg := experiment.NewRegistry()
	for i, result := range results {
		scene, err := scenario.Steps[i].Scene(reg)
		if err != nil {
			return err
		}
		runID, err := st.Save(scene, result)
		if err != nil {
			return err
		}
		fmt.Printf("%d/%d %s: %d frames, %d steps\n", i+1, len(results), runID, len(result.Frames), result.Steps)
	}
	return nil
}

// parseGrid turns "name=v1,v2" flags into parallel name and value lists.
func parseGrid(specs []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(specs))
	ranges := make([][]float64, 0, len(specs))
	for _, spec := range specs {
		name, list, ok := strings.Cut(spec, "=")
		if !ok || name == "" || list == "" {
			return nil, nil, fmt.Errorf("bad grid %q: want param=v1,v2", spec)
		}
		var values []float64
		for _, field := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("bad grid %q: %w", spec, err)
			}
			values = append(values, v)
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}
	return names, ranges, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	scene, err := loadScene(cmd, args)
	if err != nil {
		return err
	}
	if len(gridParams) == 0 {
		return fmt.Errorf("at least one --grid is required")
	}
	names, ranges, err := parseGrid(gridParams)
	if err != nil {
		return err
	}

	params, best, err := optim.NewGridSearch(names, ranges).
		Search(cmd.Context(), scene, experiment.NewRegistry(), log, searchMetric)
	if err != nil {
		return err
	}

	fmt.Printf("best %s: %.6g\n", searchMetric, best)
	for _, name := range names {
		fmt.Printf("  %s = %g\n", name, params[name])
	}
	return nil
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	scene, err := loadScene(cmd, args)
	if err != nil {
		return err
	}

	results, err := automation.RunMonteCarlo(cmd.Context(), &automation.MonteCarloConfig{
		Scene:        scene,
		Perturbation: perturbation,
		NumTrials:    trials,
		Seed:         scene.Seed,
		Workers:      workers,
	}, experiment.NewRegistry(), log)
	if err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("%s: %d trials, %d stable, %d unstable\n", scene.Name, len(results), stable, unstable)
	return nil
}
