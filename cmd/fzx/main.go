package main

import (
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/san-kum/fzx/internal/experiment"
	"github.com/san-kum/fzx/internal/logging"
	"github.com/san-kum/fzx/internal/viz"
)

var (
	dataDir    string
	verbosity  int
	configFile string
	frames     int
	fps        float64
	jitter     float64
	seed       int64
	integrator string
	step       float64
	maxSteps   int
	// Series selection for plot, analyze and phase
	bodyName string
	axis     int
	// SVG output
	outFile  string
	svgAxes  []int
	svgTheme string
	// Sweep range
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
	// Bench
	benchBodies []int
	benchTime   float64
	benchStep   float64
	// Grid search and Monte Carlo
	gridParams   []string
	searchMetric string
	trials       int
	perturbation float64
	workers      int

	log = logr.Discard()
)

// main registers the fzx commands and runs the interactive scene picker
// when no subcommand is given. It exits with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:   "fzx",
		Short: "fixed-step rigid body simulation",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log = logging.New(os.Stderr, verbosity)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive(experiment.NewRegistry(), log)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".fzx", "data directory")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "log verbosity (repeat for more)")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a scene headlessly and store it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScene,
	}
	addSceneFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot body coordinates of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&bodyName, "body", "", "body to plot (default all)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of one body coordinate",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	addSeriesFlags(analyzeCmd)

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "position/velocity portrait of one body coordinate",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	addSeriesFlags(phaseCmd)

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run frames to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and frames to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export body trajectories to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().IntSliceVar(&svgAxes, "axes", []int{0, 1}, "coordinate axes to draw (0=x, 1=y, 2=z)")
	exportSVGCmd.Flags().StringVar(&svgTheme, "theme", "cyberpunk", "color theme")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list scene presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "run a scene in the live terminal view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSceneFlags(liveCmd)

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure steps per second per integrator and body count",
		Args:  cobra.NoArgs,
		RunE:  bench,
	}
	benchCmd.Flags().IntSliceVar(&benchBodies, "bodies", []int{1, 10, 100}, "body counts")
	benchCmd.Flags().Float64Var(&benchTime, "time", 10, "simulated seconds per case")
	benchCmd.Flags().Float64Var(&benchStep, "step", 0.001, "fixed time step")

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "sweep a scene parameter (step, spring, mass, drag, jitter)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addSceneFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "step", "parameter to sweep")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.001, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 0.05, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 8, "number of values")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run every step of a YAML scenario and store the runs",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	searchCmd := &cobra.Command{
		Use:   "search [preset]",
		Short: "grid search scene parameters minimizing a metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSearch,
	}
	addSceneFlags(searchCmd)
	searchCmd.Flags().StringArrayVar(&gridParams, "grid", nil, "param=v1,v2,... (repeatable)")
	searchCmd.Flags().StringVar(&searchMetric, "metric", "energy_drift", "metric to minimize")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [preset]",
		Short: "perturb initial positions and count stable runs",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMonteCarlo,
	}
	addSceneFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturbation, "perturbation", 0.1, "max position offset per axis")
	monteCarloCmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (0 = one per CPU)")

	sweepCmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (0 = one per CPU)")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, analyzeCmd, phaseCmd, exportCmd, exportCSVCmd,
		exportJSONCmd, exportSVGCmd, presetsCmd, liveCmd, benchCmd, sweepCmd, scenarioCmd,
		searchCmd, monteCarloCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSceneFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "scene file path (yaml)")
	cmd.Flags().IntVar(&frames, "frames", 600, "frames to record")
	cmd.Flags().Float64Var(&fps, "fps", 60, "nominal frame rate")
	cmd.Flags().Float64Var(&jitter, "jitter", 0, "frame time jitter fraction in [0, 1)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "jitter seed")
	cmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator")
	cmd.Flags().Float64Var(&step, "step", 1.0/60, "fixed time step")
	cmd.Flags().IntVar(&maxSteps, "max-steps", 0, "cap on steps per frame (0 = none)")
}

func addSeriesFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&bodyName, "body", "", "body name (default first body)")
	cmd.Flags().IntVar(&axis, "axis", 0, "coordinate (0=x, 1=y, 2=z)")
}
