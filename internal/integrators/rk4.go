package integrators

// RK4 is the classical fourth-order Runge-Kutta method for autonomous
// systems. f is evaluated four times per step.
func RK4[Y Vector[Y, T], T Scalar](y0 Y, h T, f func(Y) Y) Y {
	half := h / 2

	k1 := f(y0)
	k2 := f(y0.Add(k1.Scale(half)))
	k3 := f(y0.Add(k2.Scale(half)))
	k4 := f(y0.Add(k3.Scale(h)))

	sum := k1.Add(k2.Scale(2)).Add(k3.Scale(2)).Add(k4)
	return y0.Add(sum.Scale(h / 6))
}
