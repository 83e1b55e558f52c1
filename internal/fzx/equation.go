package fzx

// stateEquation builds dy/dt for b: the velocity p/m and the net force.
//
// Spring forces are evaluated on every call against the attached body's
// externally visible position, so RK4 re-reads them at each stage while the
// other body stays frozen for the duration of the step.
func stateEquation(b *Body) func(Phase) Phase {
	return func(y Phase) Phase {
		force := b.forces[b.head]
		for _, c := range b.constraints {
			other := c.AttachedTo()
			if other == nil {
				continue
			}
			force = force.Add(c.Force(y.Position, other.Position()))
		}
		return Phase{
			Position: y.Momentum.Mul(1 / b.mass),
			Momentum: force,
		}
	}
}
