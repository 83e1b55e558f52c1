package metrics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/fzx/internal/fzx"
)

// TotalEnergy sums kinetic energy, potential energy in a uniform gravity
// field and spring potential. A pair of bodies joined in both directions
// counts its spring once.
func TotalEnergy(bodies []*fzx.Body, gravity mgl64.Vec3) float64 {
	type pair struct{ a, b *fzx.Body }
	seen := make(map[pair]bool)

	total := 0.0
	for _, b := range bodies {
		total += b.KineticEnergy()
		total -= b.Mass() * gravity.Dot(b.Position())

		for _, s := range b.Constraints() {
			other := s.AttachedTo()
			if other == nil {
				continue
			}
			if seen[pair{b, other}] || seen[pair{other, b}] {
				continue
			}
			seen[pair{b, other}] = true
			total += s.PotentialEnergy(b.Position(), other.Position())
		}
	}
	return total
}

// Energy reports the mean total energy over all observed frames.
type Energy struct {
	name        string
	gravity     mgl64.Vec3
	samples     int
	totalEnergy float64
}

func NewEnergy(gravity [3]float64) *Energy {
	return &Energy{
		name:    "energy",
		gravity: mgl64.Vec3(gravity),
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(bodies []*fzx.Body, t float64) {
	e.totalEnergy += TotalEnergy(bodies, e.gravity)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift reports the largest relative deviation from the energy seen
// on the first frame.
type EnergyDrift struct {
	name          string
	gravity       mgl64.Vec3
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(gravity [3]float64) *EnergyDrift {
	return &EnergyDrift{
		name:    "energy_drift",
		gravity: mgl64.Vec3(gravity),
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(bodies []*fzx.Body, t float64) {
	energy := TotalEnergy(bodies, e.gravity)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
