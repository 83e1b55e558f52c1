package fzx

import "github.com/go-gl/mathgl/mgl64"

// Field is a force source the System applies to every live body at the
// start of each fixed step.
type Field interface {
	Force(b *Body) mgl64.Vec3
}

// FieldFunc adapts a plain function to Field.
type FieldFunc func(b *Body) mgl64.Vec3

func (f FieldFunc) Force(b *Body) mgl64.Vec3 { return f(b) }

// Gravity is a uniform acceleration, so the force scales with mass.
type Gravity struct {
	Acceleration mgl64.Vec3
}

func (g Gravity) Force(b *Body) mgl64.Vec3 {
	return g.Acceleration.Mul(b.Mass())
}

// Drag is linear damping opposing the body's velocity.
type Drag struct {
	Coefficient float64
}

func (d Drag) Force(b *Body) mgl64.Vec3 {
	return b.Velocity().Mul(-d.Coefficient)
}
