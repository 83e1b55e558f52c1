package fzx

import (
	"math"

	"github.com/go-logr/logr"
)

// DefaultFixedTimeStep is used when a System is built with a step that is
// not strictly positive.
const DefaultFixedTimeStep = 1.0 / 60.0

// System advances registered bodies in whole fixed steps.
//
// Update converts variable wall-clock frames into fixed steps and carries
// the remainder ("hangover") to the next call. The simulation runs up to
// one step ahead of the wall clock; the returned alpha says how far the
// clock has reached into the latest step.
type System struct {
	pool          *Pool
	fixedTimeStep float64
	hangoverTime  float64
	maxSteps      int

	bodies []Handle
	fields []Field
	steps  uint64

	log logr.Logger
}

type SystemOption func(*System)

func WithLogger(l logr.Logger) SystemOption {
	return func(s *System) { s.log = l.WithName("fzx") }
}

// WithMaxSteps bounds the fixed steps one Update may run. When the bound is
// hit the remaining backlog is dropped. Zero means unbounded.
func WithMaxSteps(n int) SystemOption {
	return func(s *System) {
		if n > 0 {
			s.maxSteps = n
		}
	}
}

func WithField(f Field) SystemOption {
	return func(s *System) { s.AddField(f) }
}

// NewSystem creates a scheduler over bodies stored in pool.
func NewSystem(pool *Pool, fixedTimeStep float64, opts ...SystemOption) *System {
	if pool == nil {
		pool = NewPool()
	}
	s := &System{
		pool:          pool,
		fixedTimeStep: fixedTimeStep,
		log:           logr.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if !(fixedTimeStep > 0) || math.IsInf(fixedTimeStep, 1) {
		s.log.Info("invalid fixed time step, using default", "requested", fixedTimeStep, "default", DefaultFixedTimeStep)
		s.fixedTimeStep = DefaultFixedTimeStep
	}
	return s
}

func (s *System) Pool() *Pool            { return s.pool }
func (s *System) FixedTimeStep() float64 { return s.fixedTimeStep }
func (s *System) HangoverTime() float64  { return s.hangoverTime }

// Steps is the number of fixed steps executed so far.
func (s *System) Steps() uint64 { return s.steps }

// SimulatedTime is Steps() * FixedTimeStep().
func (s *System) SimulatedTime() float64 {
	return float64(s.steps) * s.fixedTimeStep
}

func (s *System) AddField(f Field) {
	if f != nil {
		s.fields = append(s.fields, f)
	}
}

// AddBody registers h. Registering a body that is already present, through
// this or any other handle, does nothing. Stale handles are ignored.
func (s *System) AddBody(h Handle) {
	b, ok := s.pool.Get(h)
	if !ok {
		return
	}
	if s.indexOf(b) >= 0 {
		return
	}
	s.bodies = append(s.bodies, h)
}

// RemoveBody unregisters h without touching the pool.
func (s *System) RemoveBody(h Handle) {
	b, _ := s.pool.Get(h)
	kept := s.bodies[:0]
	for _, existing := range s.bodies {
		if existing == h {
			continue
		}
		if b != nil {
			if other, ok := s.pool.Get(existing); ok && other == b {
				continue
			}
		}
		kept = append(kept, existing)
	}
	s.bodies = kept
}

// Bodies lists the live registered handles in registration order.
func (s *System) Bodies() []Handle {
	out := make([]Handle, 0, len(s.bodies))
	for _, h := range s.bodies {
		if _, ok := s.pool.Get(h); ok {
			out = append(out, h)
		}
	}
	return out
}

func (s *System) indexOf(b *Body) int {
	for i, h := range s.bodies {
		if other, ok := s.pool.Get(h); ok && other == b {
			return i
		}
	}
	return -1
}

// Update simulates elapsed seconds of wall-clock time and returns the
// interpolation factor for rendering. Negative or NaN elapsed times count
// as zero.
func (s *System) Update(elapsed float64) float64 {
	if !(elapsed > 0) {
		elapsed = 0
	}

	budget := elapsed - s.hangoverTime
	simulated := 0.0
	n := 0
	for simulated < budget {
		if s.maxSteps > 0 && n >= s.maxSteps {
			s.log.Info("dropping simulation backlog", "steps", n, "backlog", budget-simulated)
			simulated = budget
			break
		}
		s.stepTime()
		simulated += s.fixedTimeStep
		n++
	}
	s.hangoverTime = simulated - budget
	if s.hangoverTime >= s.fixedTimeStep {
		// accumulated rounding can land on the step boundary
		s.hangoverTime = math.Nextafter(s.fixedTimeStep, 0)
	}

	alpha := (s.fixedTimeStep - s.hangoverTime) / s.fixedTimeStep
	s.log.V(1).Info("update", "elapsed", elapsed, "steps", n, "hangover", s.hangoverTime, "alpha", alpha)
	return alpha
}

// stepTime advances every live body by one fixed step in registration
// order and prunes handles whose body has been released. A spring whose
// target comes earlier in the order reads the target's already advanced
// position.
func (s *System) stepTime() {
	live := s.bodies[:0]
	for _, h := range s.bodies {
		b, ok := s.pool.Get(h)
		if !ok {
			s.log.Info("pruning released body", "handle", h.String())
			continue
		}
		live = append(live, h)

		for _, f := range s.fields {
			b.AddForce(f.Force(b))
		}
		b.Update(s.fixedTimeStep)
	}
	s.bodies = live
	s.steps++
}
