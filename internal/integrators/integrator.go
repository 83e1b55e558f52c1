// Package integrators provides fixed-step ODE solvers for autonomous systems.
//
// Every solver shares the [Func] signature: given the state y0, a step h and
// the right-hand side f, it returns the full state at y0's time plus h.
// Solvers are generic over any state type implementing [Vector].
package integrators

import (
	"errors"
	"fmt"
	"sort"

	"golang.org/x/exp/constraints"
)

// ErrUnknownIntegrator is returned by Lookup for names not in the table.
var ErrUnknownIntegrator = errors.New("integrators: unknown integrator")

// Scalar is the numeric type a step size and scaling factor may take.
type Scalar interface {
	constraints.Float
}

// Vector is a state that supports addition and scalar multiplication.
type Vector[Y any, T Scalar] interface {
	Add(Y) Y
	Scale(T) Y
}

// Func advances y0 by h under dy/dt = f(y) and returns the next state.
type Func[Y Vector[Y, T], T Scalar] func(y0 Y, h T, f func(Y) Y) Y

const (
	NameEuler = "euler"
	NameRK4   = "rk4"
)

// Lookup resolves an integrator by name.
func Lookup[Y Vector[Y, T], T Scalar](name string) (Func[Y, T], error) {
	switch name {
	case NameEuler:
		return Euler[Y, T], nil
	case NameRK4, "":
		return RK4[Y, T], nil
	}
	return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownIntegrator, name, Names())
}

// Names lists the integrators Lookup understands.
func Names() []string {
	names := []string{NameEuler, NameRK4}
	sort.Strings(names)
	return names
}
