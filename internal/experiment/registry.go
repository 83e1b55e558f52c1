package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/fzx/internal/config"
	"github.com/san-kum/fzx/internal/fzx"
	"github.com/san-kum/fzx/internal/integrators"
	"github.com/san-kum/fzx/internal/metrics"
)

// DefaultStabilityBound is the distance from the origin beyond which a body
// counts as having escaped.
const DefaultStabilityBound = 1e4

type Registry struct {
	integrators map[string]integrators.Func[fzx.Phase, float64]
	metrics     map[string]func(*config.Scene) metrics.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]integrators.Func[fzx.Phase, float64]),
		metrics:     make(map[string]func(*config.Scene) metrics.Metric),
	}

	r.integrators[integrators.NameEuler] = integrators.Euler[fzx.Phase, float64]
	r.integrators[integrators.NameRK4] = integrators.RK4[fzx.Phase, float64]

	r.metrics["energy"] = func(s *config.Scene) metrics.Metric { return metrics.NewEnergy(s.Gravity) }
	r.metrics["energy_drift"] = func(s *config.Scene) metrics.Metric { return metrics.NewEnergyDrift(s.Gravity) }
	r.metrics["momentum_drift"] = func(s *config.Scene) metrics.Metric { return metrics.NewMomentumDrift() }
	r.metrics["overlap"] = func(s *config.Scene) metrics.Metric { return metrics.NewOverlap() }
	r.metrics["stability"] = func(s *config.Scene) metrics.Metric { return metrics.NewStability(DefaultStabilityBound) }

	return r
}

func (r *Registry) GetIntegrator(name string) (integrators.Func[fzx.Phase, float64], error) {
	if name == "" {
		name = integrators.NameRK4
	}
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", integrators.ErrUnknownIntegrator, name)
	}
	return fn, nil
}

func (r *Registry) GetScene(preset string) (*config.Scene, error) {
	return config.GetPreset(preset)
}

func (r *Registry) ListIntegrators() []string {
	return sortedKeys(r.integrators)
}

func (r *Registry) ListScenes() []string {
	return config.ListPresets()
}

// DefaultMetrics builds one instance of every registered metric for scene.
func (r *Registry) DefaultMetrics(scene *config.Scene) []metrics.Metric {
	names := sortedKeys(r.metrics)
	out := make([]metrics.Metric, 0, len(names))
	for _, name := range names {
		out = append(out, r.metrics[name](scene))
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
