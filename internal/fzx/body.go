package fzx

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/fzx/internal/integrators"
)

const DefaultMass = 1.0

// Body is a point mass with a two-deep history of phase and force.
//
// The history is a ring of two slots. The "future" slot holds the most
// recent result of Update, the "current" slot the one before it. Renderers
// blend the two with the *At methods. Rotation is not modeled.
type Body struct {
	mass float64

	// head indexes the future slot of both rings; head^1 is the current one.
	states [2]Phase
	forces [2]mgl64.Vec3
	head   int

	constraints []*AttachedSpring

	localBox BBox
	worldBox BBox

	integrator integrators.Func[Phase, float64]
	equation   func(Phase) Phase
}

type BodyOption func(*Body)

// WithIntegrator selects the ODE solver used by Update. The default is RK4.
func WithIntegrator(fn integrators.Func[Phase, float64]) BodyOption {
	return func(b *Body) {
		if fn != nil {
			b.integrator = fn
		}
	}
}

// NewBody creates a body at rest in the given state. A non-positive mass is
// ignored in favor of DefaultMass.
func NewBody(mass float64, position, velocity mgl64.Vec3, box BBox, opts ...BodyOption) *Body {
	b := &Body{
		mass:       DefaultMass,
		localBox:   box,
		integrator: integrators.RK4[Phase, float64],
	}
	for _, opt := range opts {
		opt(b)
	}
	b.equation = stateEquation(b)
	b.SetMass(mass)
	b.SetPosition(position)
	b.SetVelocity(velocity)
	return b
}

// NewDefaultBody creates a unit mass at the origin with an empty box.
func NewDefaultBody(opts ...BodyOption) *Body {
	return NewBody(DefaultMass, mgl64.Vec3{}, mgl64.Vec3{}, EmptyBBox(), opts...)
}

func (b *Body) Mass() float64 { return b.mass }

// SetMass changes the mass. Values that are not strictly positive are
// ignored and the previous mass is kept.
func (b *Body) SetMass(m float64) {
	if !(m > 0) {
		return
	}
	b.mass = m
}

func (b *Body) future() Phase  { return b.states[b.head] }
func (b *Body) current() Phase { return b.states[b.head^1] }

// State is the most recently computed phase.
func (b *Body) State() Phase { return b.future() }

// PreviousState is the phase before the most recent Update.
func (b *Body) PreviousState() Phase { return b.current() }

// Position is the most recently computed position.
func (b *Body) Position() mgl64.Vec3 { return b.future().Position }

// PositionAt blends the last two positions: future*alpha + current*(1-alpha).
func (b *Body) PositionAt(alpha float64) mgl64.Vec3 {
	return lerp(b.current().Position, b.future().Position, alpha)
}

func (b *Body) Momentum() mgl64.Vec3 { return b.future().Momentum }

func (b *Body) Velocity() mgl64.Vec3 {
	return b.future().Momentum.Mul(1 / b.mass)
}

func (b *Body) VelocityAt(alpha float64) mgl64.Vec3 {
	return lerp(b.current().Momentum, b.future().Momentum, alpha).Mul(1 / b.mass)
}

// NetForce is the external force accumulated for the next Update.
func (b *Body) NetForce() mgl64.Vec3 { return b.forces[b.head] }

func (b *Body) NetForceAt(alpha float64) mgl64.Vec3 {
	return lerp(b.forces[b.head^1], b.forces[b.head], alpha)
}

// SetPosition overwrites both history slots so interpolated reads see the
// new position immediately.
func (b *Body) SetPosition(p mgl64.Vec3) {
	b.states[0].Position = p
	b.states[1].Position = p
	b.worldBox = b.BoundingBox()
}

// SetVelocity overwrites the momentum of both history slots.
func (b *Body) SetVelocity(v mgl64.Vec3) {
	p := v.Mul(b.mass)
	b.states[0].Momentum = p
	b.states[1].Momentum = p
}

// AddForce accumulates f for the next Update only.
func (b *Body) AddForce(f mgl64.Vec3) {
	b.forces[b.head] = b.forces[b.head].Add(f)
}

// AddConstraint attaches a spring for the rest of the body's life.
func (b *Body) AddConstraint(s *AttachedSpring) {
	if s == nil {
		return
	}
	b.constraints = append(b.constraints, s)
}

func (b *Body) Constraints() []*AttachedSpring {
	out := make([]*AttachedSpring, len(b.constraints))
	copy(out, b.constraints)
	return out
}

func (b *Body) LocalBoundingBox() BBox { return b.localBox }

func (b *Body) SetBoundingBox(box BBox) {
	b.localBox = box
	b.worldBox = b.BoundingBox()
}

// BoundingBox is the local box translated to the body's position.
func (b *Body) BoundingBox() BBox {
	return b.localBox.Translate(b.Position())
}

// WorldBoundingBox is the box computed at the last Update or position
// change.
func (b *Body) WorldBoundingBox() BBox { return b.worldBox }

// KineticEnergy is |p|^2 / 2m for the most recent state.
func (b *Body) KineticEnergy() float64 {
	p := b.Momentum()
	return p.Dot(p) / (2 * b.mass)
}

// Update advances the body by dt. The new phase becomes the future slot and
// the force accumulator is cleared; the consumed force stays readable as
// the current slot of the force history.
func (b *Body) Update(dt float64) {
	next := b.integrator(b.future(), dt, b.equation)

	b.head ^= 1
	b.states[b.head] = next
	b.forces[b.head] = mgl64.Vec3{}

	b.worldBox = b.BoundingBox()
}

// ModelTransformation translates base by the interpolated position.
func (b *Body) ModelTransformation(alpha float64, base mgl64.Mat4) mgl64.Mat4 {
	p := b.PositionAt(alpha)
	return base.Mul4(mgl64.Translate3D(p.X(), p.Y(), p.Z()))
}
