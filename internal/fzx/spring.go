package fzx

import (
	"weak"

	"github.com/go-gl/mathgl/mgl64"
)

// AttachedSpring pulls its owner toward another body with a linear spring
// of zero rest length. The reference to the other body is weak: the spring
// never keeps it alive, and once it has been collected the spring exerts
// no force.
type AttachedSpring struct {
	springConstant float64
	other          weak.Pointer[Body]
}

func NewAttachedSpring(springConstant float64, other *Body) *AttachedSpring {
	return &AttachedSpring{
		springConstant: springConstant,
		other:          weak.Make(other),
	}
}

func (s *AttachedSpring) SpringConstant() float64 { return s.springConstant }

// AttachedTo returns the other body, or nil if it no longer exists.
func (s *AttachedSpring) AttachedTo() *Body { return s.other.Value() }

// Force is the pull on a body at self toward a body at other.
func (s *AttachedSpring) Force(self, other mgl64.Vec3) mgl64.Vec3 {
	return other.Sub(self).Mul(s.springConstant)
}

// PotentialEnergy is the energy stored in the spring for the two positions.
func (s *AttachedSpring) PotentialEnergy(self, other mgl64.Vec3) float64 {
	d := other.Sub(self)
	return 0.5 * s.springConstant * d.Dot(d)
}
