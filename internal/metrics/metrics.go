// Package metrics observes a running world once per frame and reduces what
// it sees to a single number per metric.
package metrics

import "github.com/san-kum/fzx/internal/fzx"

// Metric is fed the live bodies of a world after every frame.
type Metric interface {
	Name() string
	Observe(bodies []*fzx.Body, t float64)
	Value() float64
	Reset()
}

// Defaults returns the metrics recorded for every run.
func Defaults(gravity [3]float64, stabilityBound float64) []Metric {
	return []Metric{
		NewEnergy(gravity),
		NewEnergyDrift(gravity),
		NewMomentumDrift(),
		NewOverlap(),
		NewStability(stabilityBound),
	}
}
