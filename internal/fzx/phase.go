package fzx

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Phase is a body's dynamical state at one instant.
type Phase struct {
	Position mgl64.Vec3
	Momentum mgl64.Vec3
}

func (p Phase) Add(o Phase) Phase {
	return Phase{
		Position: p.Position.Add(o.Position),
		Momentum: p.Momentum.Add(o.Momentum),
	}
}

func (p Phase) Sub(o Phase) Phase {
	return Phase{
		Position: p.Position.Sub(o.Position),
		Momentum: p.Momentum.Sub(o.Momentum),
	}
}

func (p Phase) Scale(k float64) Phase {
	return Phase{
		Position: p.Position.Mul(k),
		Momentum: p.Momentum.Mul(k),
	}
}

// Lerp blends from p toward to: alpha 0 yields p, alpha 1 yields to.
func (p Phase) Lerp(to Phase, alpha float64) Phase {
	return Phase{
		Position: lerp(p.Position, to.Position, alpha),
		Momentum: lerp(p.Momentum, to.Momentum, alpha),
	}
}

// IsValid reports whether every component is finite.
func (p Phase) IsValid() bool {
	return finite(p.Position) && finite(p.Momentum)
}

func lerp(from, to mgl64.Vec3, alpha float64) mgl64.Vec3 {
	return to.Mul(alpha).Add(from.Mul(1 - alpha))
}

func finite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
