package automation

import (
	"context"
	"runtime"
	"sync"

	"github.com/go-logr/logr"

	"github.com/san-kum/fzx/internal/config"
	"github.com/san-kum/fzx/internal/experiment"
)

// Ensemble runs independent scenes concurrently. Worlds share nothing, so
// each run stays single-threaded and results keep the input order.
type Ensemble struct {
	registry *experiment.Registry
	log      logr.Logger
	workers  int
}

// NewEnsemble bounds concurrency to workers; zero or less means one per CPU.
func NewEnsemble(reg *experiment.Registry, log logr.Logger, workers int) *Ensemble {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Ensemble{registry: reg, log: log, workers: workers}
}

// Run returns one result per scene. The first error in scene order wins.
func (e *Ensemble) Run(ctx context.Context, scenes []*config.Scene) ([]*experiment.Result, error) {
	results := make([]*experiment.Result, len(scenes))
	errs := make([]error, len(scenes))

	sem := make(chan struct{}, e.workers)
	var wg sync.WaitGroup
	for i, scene := range scenes {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, scene *config.Scene) {
			defer wg.Done()
			defer func() { <-sem }()
			results[idx], errs[idx] = run(ctx, scene, e.registry, e.log)
		}(i, scene)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
