package optim

import (
	"context"
	"errors"
	"testing"

	"github.com/go-logr/logr"

	"github.com/san-kum/fzx/internal/automation"
	"github.com/san-kum/fzx/internal/config"
	"github.com/san-kum/fzx/internal/experiment"
)

func pairScene(t *testing.T) *config.Scene {
	t.Helper()
	scene, err := config.GetPreset("pair")
	if err != nil {
		t.Fatal(err)
	}
	scene.Frames = 60
	return scene
}

func TestGridSearchPrefersSmallerStep(t *testing.T) {
	g := NewGridSearch(
		[]string{automation.ParamStep},
		[][]float64{{0.05, 0.01, 0.002}},
	)
	params, best, err := g.Search(context.Background(), pairScene(t), experiment.NewRegistry(), logr.Discard(), "energy_drift")
	if err != nil {
		t.Fatal(err)
	}
	if params[automation.ParamStep] != 0.002 {
		t.Errorf("best step = %v, want 0.002", params[automation.ParamStep])
	}
	if best < 0 {
		t.Errorf("best drift = %v, want non-negative", best)
	}
}

func TestGridSearchVisitsEveryPoint(t *testing.T) {
	g := NewGridSearch(
		[]string{automation.ParamStep, automation.ParamSpring},
		[][]float64{{0.01, 0.005}, {1, 2, 4}},
	)
	n := 0
	err := g.searchRecursive(context.Background(), 0, map[string]float64{}, func(p map[string]float64) error {
		if len(p) != 2 {
			t.Errorf("point %v missing a parameter", p)
		}
		n++
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if n != 6 {
		t.Errorf("visited %d points, want 6", n)
	}
}

func TestGridSearchErrors(t *testing.T) {
	reg := experiment.NewRegistry()

	g := NewGridSearch([]string{"gravity"}, [][]float64{{1}})
	if _, _, err := g.Search(context.Background(), pairScene(t), reg, logr.Discard(), "energy_drift"); !errors.Is(err, automation.ErrUnknownParam) {
		t.Errorf("err = %v, want ErrUnknownParam", err)
	}

	g = NewGridSearch([]string{automation.ParamStep}, [][]float64{{0.01}})
	if _, _, err := g.Search(context.Background(), pairScene(t), reg, logr.Discard(), "nope"); !errors.Is(err, ErrUnknownMetric) {
		t.Errorf("err = %v, want ErrUnknownMetric", err)
	}

	g = NewGridSearch([]string{automation.ParamStep}, nil)
	if _, _, err := g.Search(context.Background(), pairScene(t), reg, logr.Discard(), "energy_drift"); err == nil {
		t.Error("expected mismatch error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g = NewGridSearch([]string{automation.ParamStep}, [][]float64{{0.01}})
	if _, _, err := g.Search(ctx, pairScene(t), reg, logr.Discard(), "energy_drift"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
