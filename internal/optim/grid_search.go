// Package optim searches scene parameter grids for the values that
// minimize a run metric.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/go-logr/logr"

	"github.com/san-kum/fzx/internal/automation"
	"github.com/san-kum/fzx/internal/config"
	"github.com/san-kum/fzx/internal/experiment"
)

var ErrUnknownMetric = errors.New("optim: run did not report metric")

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search runs scene once per grid point and returns the point with the
// smallest value of metricName. Ties keep the first point visited.
func (g *GridSearch) Search(
	ctx context.Context,
	scene *config.Scene,
	reg *experiment.Registry,
	log logr.Logger,
	metricName string,
) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("optim: %d params but %d ranges", len(g.paramNames), len(g.ranges))
	}

	best := math.Inf(1)
	var bestParams map[string]float64

	err := g.searchRecursive(ctx, 0, make(map[string]float64), func(params map[string]float64) error {
		candidate := scene.Clone()
		for k, v := range params {
			if err := automation.ApplyParam(candidate, k, v); err != nil {
				return err
			}
		}

		exp := experiment.New(candidate, reg, log)
		if err := exp.Setup(); err != nil {
			return err
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return err
		}

		val, ok := result.Metrics[metricName]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownMetric, metricName)
		}
		log.V(1).Info("grid point", "params", params, metricName, val)
		if val < best {
			best = val
			bestParams = make(map[string]float64, len(params))
			for k, v := range params {
				bestParams[k] = v
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	visit func(map[string]float64) error,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		return visit(current)
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, visit); err != nil {
			return err
		}
	}
	return nil
}
