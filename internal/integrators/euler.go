package integrators

// Euler is the explicit first-order method. It returns y0 + f(y0)*h, the
// same full-state convention as RK4.
func Euler[Y Vector[Y, T], T Scalar](y0 Y, h T, f func(Y) Y) Y {
	return y0.Add(f(y0).Scale(h))
}
