package experiment

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/go-logr/logr"

	"github.com/san-kum/fzx/internal/config"
	"github.com/san-kum/fzx/internal/integrators"
)

func mustScene(t *testing.T, name string) *config.Scene {
	t.Helper()
	s, err := config.GetPreset(name)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestBuild(t *testing.T) {
	w, err := Build(mustScene(t, "pair"), NewRegistry(), logr.Discard())
	if err != nil {
		t.Fatal(err)
	}

	if len(w.Bodies) != 2 || len(w.System.Bodies()) != 2 {
		t.Fatalf("expected 2 bodies, got %d/%d", len(w.Bodies), len(w.System.Bodies()))
	}
	for i, b := range w.Bodies {
		if len(b.Constraints()) != 1 {
			t.Errorf("body %s: expected 1 spring, got %d", w.Names[i], len(b.Constraints()))
		}
	}
	if w.System.FixedTimeStep() != 0.005 {
		t.Errorf("expected step 0.005, got %f", w.System.FixedTimeStep())
	}
}

func TestBuildRejectsUnknownIntegrator(t *testing.T) {
	s := mustScene(t, "drift")
	s.Integrator = "verlet"

	_, err := Build(s, NewRegistry(), logr.Discard())
	if !errors.Is(err, integrators.ErrUnknownIntegrator) {
		t.Errorf("expected ErrUnknownIntegrator, got %v", err)
	}
}

func TestBuildRejectsInvalidScene(t *testing.T) {
	s := mustScene(t, "drift")
	s.FixedTimeStep = 0

	_, err := Build(s, NewRegistry(), logr.Discard())
	var verr *config.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestRunNotSetup(t *testing.T) {
	e := New(mustScene(t, "drift"), nil, logr.Discard())
	if _, err := e.Run(context.Background()); !errors.Is(err, ErrNotSetup) {
		t.Errorf("expected ErrNotSetup, got %v", err)
	}
}

func TestRunRecordsFrames(t *testing.T) {
	s := mustScene(t, "drift")
	s.Frames = 90

	e := New(s, nil, logr.Discard())
	if err := e.Setup(); err != nil {
		t.Fatal(err)
	}
	result, err := e.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Frames) != 91 {
		t.Errorf("expected 91 frames, got %d", len(result.Frames))
	}
	if math.Abs(result.WallTime-1.5) > 1e-9 {
		t.Errorf("expected 1.5s of wall time, got %f", result.WallTime)
	}
	if result.SimulatedTime < result.WallTime {
		t.Errorf("simulation should run ahead of the wall clock: %f < %f", result.SimulatedTime, result.WallTime)
	}
	if _, ok := result.Metrics["energy_drift"]; !ok {
		t.Error("missing default metric energy_drift")
	}
}

func TestInterpolatedPositionsTrackWallClock(t *testing.T) {
	tests := []struct {
		name   string
		jitter float64
		seed   int64
	}{
		{"steady", 0, 0},
		{"jittered", 0.5, 1},
		{"heavily jittered", 0.9, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustScene(t, "drift")
			s.Jitter = tt.jitter
			s.Seed = tt.seed
			v := s.Bodies[0].Velocity

			e := New(s, nil, logr.Discard())
			if err := e.Setup(); err != nil {
				t.Fatal(err)
			}
			result, err := e.Run(context.Background())
			if err != nil {
				t.Fatal(err)
			}

			for i, f := range result.Frames {
				for axis := 0; axis < 3; axis++ {
					want := v[axis] * f.Time
					if got := f.Positions[0][axis]; math.Abs(got-want) > 1e-9 {
						t.Fatalf("frame %d axis %d: position %f, want %f", i, axis, got, want)
					}
				}
				if f.Alpha <= 0 || f.Alpha > 1 {
					t.Fatalf("frame %d: alpha %f out of (0, 1]", i, f.Alpha)
				}
			}
		})
	}
}

func TestFreefallFollowsClosedForm(t *testing.T) {
	s := mustScene(t, "freefall")
	e := New(s, nil, logr.Discard())
	if err := e.Setup(); err != nil {
		t.Fatal(err)
	}
	result, err := e.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	y0 := s.Bodies[0].Position[1]
	g := s.Gravity[1]
	for i, f := range result.Frames {
		want := y0 + 0.5*g*f.Time*f.Time
		if got := f.Positions[0][1]; math.Abs(got-want) > 1e-3 {
			t.Fatalf("frame %d: y=%f, want %f", i, got, want)
		}
	}
}

func TestRunIsDeterministic(t *testing.T) {
	run := func() *Result {
		e := New(mustScene(t, "jittery"), nil, logr.Discard())
		if err := e.Setup(); err != nil {
			t.Fatal(err)
		}
		r, err := e.Run(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		return r
	}

	a, b := run(), run()
	if len(a.Frames) != len(b.Frames) {
		t.Fatalf("frame counts differ: %d vs %d", len(a.Frames), len(b.Frames))
	}
	for i := range a.Frames {
		if a.Frames[i].Time != b.Frames[i].Time || a.Frames[i].Positions[0] != b.Frames[i].Positions[0] {
			t.Fatalf("frame %d differs between runs", i)
		}
	}
}

func TestRunCancelled(t *testing.T) {
	e := New(mustScene(t, "drift"), nil, logr.Discard())
	if err := e.Setup(); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := e.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(result.Frames) != 1 {
		t.Errorf("expected only the initial frame, got %d", len(result.Frames))
	}
}

func TestFrameDurationJitterBounds(t *testing.T) {
	s := mustScene(t, "drift")
	s.Jitter = 0.25
	e := New(s, nil, logr.Discard())

	nominal := 1.0 / s.FPS
	for i := 0; i < 1000; i++ {
		dt := e.FrameDuration()
		if dt < nominal*0.75 || dt >= nominal*1.25 {
			t.Fatalf("frame duration %f outside jitter bounds", dt)
		}
	}
}

func TestObserverSeesEveryFrame(t *testing.T) {
	s := mustScene(t, "drift")
	s.Frames = 10

	e := New(s, nil, logr.Discard())
	if err := e.Setup(); err != nil {
		t.Fatal(err)
	}
	count := 0
	e.AddObserver(ObserverFunc(func(w *World, f Frame) { count++ }))

	if _, err := e.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if count != 11 {
		t.Errorf("expected 11 observed frames, got %d", count)
	}
}

func TestResultSeries(t *testing.T) {
	r := &Result{Bodies: []string{"a", "b"}}
	if r.BodyIndex("b") != 1 || r.BodyIndex("zz") != -1 {
		t.Error("BodyIndex mismatch")
	}
	if len(r.Series(0, 0)) != 0 {
		t.Error("empty result should give an empty series")
	}

	r.Frames = []Frame{
		{Time: 0.1, Positions: []mgl64.Vec3{{1, 2, 3}, {4, 5, 6}}},
		{Time: 0.2, Positions: []mgl64.Vec3{{7, 8, 9}, {10, 11, 12}}},
	}
	if got := r.Series(1, 2); len(got) != 2 || got[0] != 6 || got[1] != 12 {
		t.Errorf("Series(1, 2) = %v", got)
	}
	if got := r.Times(); len(got) != 2 || got[1] != 0.2 {
		t.Errorf("Times() = %v", got)
	}
	for _, c := range [][2]int{{-1, 0}, {2, 0}, {0, -1}, {0, 3}} {
		if got := r.Series(c[0], c[1]); got != nil {
			t.Errorf("Series(%d, %d) = %v, want nil", c[0], c[1], got)
		}
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	names := r.ListIntegrators()
	if len(names) != 2 || names[0] != "euler" || names[1] != "rk4" {
		t.Errorf("unexpected integrators %v", names)
	}
	if _, err := r.GetIntegrator(""); err != nil {
		t.Errorf("empty name should select rk4: %v", err)
	}
	if len(r.ListScenes()) == 0 {
		t.Error("expected scenes")
	}
	if _, err := r.GetScene("nope"); !errors.Is(err, config.ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}
	if len(r.DefaultMetrics(config.DefaultScene())) != 5 {
		t.Error("expected 5 default metrics")
	}
}
