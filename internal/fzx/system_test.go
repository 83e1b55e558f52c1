package fzx_test

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/fzx/internal/fzx"
)

var _ = Describe("System", func() {
	var (
		pool *fzx.Pool
		sys  *fzx.System
	)

	BeforeEach(func() {
		pool = fzx.NewPool()
		sys = fzx.NewSystem(pool, 0.1)
	})

	Describe("AddBody", func() {
		It("registers a body once", func() {
			h := pool.Insert(fzx.NewDefaultBody())
			sys.AddBody(h)
			sys.AddBody(h)
			Expect(sys.Bodies()).To(HaveLen(1))
		})

		It("compares bodies by identity, not by handle", func() {
			b := fzx.NewDefaultBody()
			sys.AddBody(pool.Insert(b))
			sys.AddBody(pool.Insert(b))
			Expect(sys.Bodies()).To(HaveLen(1))
		})

		It("ignores stale handles", func() {
			h := pool.Insert(fzx.NewDefaultBody())
			pool.Release(h)
			sys.AddBody(h)
			Expect(sys.Bodies()).To(BeEmpty())
		})
	})

	Describe("Update", func() {
		It("runs ahead of the wall clock and reports the blend factor", func() {
			alpha := sys.Update(0.25)

			Expect(sys.Steps()).To(Equal(uint64(3)))
			Expect(sys.HangoverTime()).To(BeNumerically("~", 0.05, 1e-9))
			Expect(alpha).To(BeNumerically("~", 0.5, 1e-9))
		})

		It("carries hangover into the next call", func() {
			sys.Update(0.25)
			alpha := sys.Update(0.03)

			Expect(sys.Steps()).To(Equal(uint64(3)))
			Expect(sys.HangoverTime()).To(BeNumerically("~", 0.02, 1e-9))
			Expect(alpha).To(BeNumerically("~", 0.8, 1e-9))
		})

		It("keeps the hangover inside one step and the step count at ceil(total/step)", func() {
			rng := rand.New(rand.NewSource(7))
			total := 0.0
			for i := 0; i < 500; i++ {
				e := rng.Float64() * 0.35
				total += e
				alpha := sys.Update(e)

				Expect(sys.HangoverTime()).To(BeNumerically(">=", 0))
				Expect(sys.HangoverTime()).To(BeNumerically("<", sys.FixedTimeStep()))
				Expect(alpha).To(BeNumerically(">", 0))
				Expect(alpha).To(BeNumerically("<=", 1))

				n := float64(sys.Steps())
				Expect(n * 0.1).To(BeNumerically(">=", total-1e-9))
				Expect((n - 1) * 0.1).To(BeNumerically("<", total+1e-9))
			}
		})

		It("treats negative and NaN elapsed time as zero", func() {
			sys.Update(0.25)
			hangover := sys.HangoverTime()

			sys.Update(-1)
			sys.Update(math.NaN())

			Expect(sys.Steps()).To(Equal(uint64(3)))
			Expect(sys.HangoverTime()).To(Equal(hangover))
		})

		It("renders positions that track the wall clock", func() {
			s := fzx.NewSystem(pool, 0.125)
			h := pool.Insert(fzx.NewBody(1, mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}, fzx.EmptyBBox()))
			s.AddBody(h)

			clock := 0.0
			for _, e := range []float64{0.2, 0.07, 0.31, 0.016} {
				clock += e
				alpha := s.Update(e)
				Expect(pool.MustGet(h).PositionAt(alpha)).To(beCloseTo(mgl64.Vec3{clock, 0, 0}))
			}
		})

		It("bounds catch-up work when asked to", func() {
			s := fzx.NewSystem(pool, 0.1, fzx.WithMaxSteps(5))
			alpha := s.Update(10)

			Expect(s.Steps()).To(Equal(uint64(5)))
			Expect(s.HangoverTime()).To(Equal(0.0))
			Expect(alpha).To(Equal(1.0))
		})

		It("falls back to the default step for a non-positive one", func() {
			s := fzx.NewSystem(pool, 0)
			Expect(s.FixedTimeStep()).To(Equal(fzx.DefaultFixedTimeStep))
		})
	})

	Describe("body lifetime", func() {
		It("prunes bodies released from the pool", func() {
			keep := pool.Insert(fzx.NewDefaultBody())
			drop := pool.Insert(fzx.NewDefaultBody())
			sys.AddBody(keep)
			sys.AddBody(drop)

			pool.Release(drop)
			sys.Update(0.1)

			Expect(sys.Bodies()).To(ConsistOf(keep))
		})

		It("unregisters on RemoveBody without releasing", func() {
			b := fzx.NewBody(1, mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}, fzx.EmptyBBox())
			h := pool.Insert(b)
			sys.AddBody(h)
			sys.RemoveBody(h)

			sys.Update(1)

			Expect(sys.Bodies()).To(BeEmpty())
			Expect(pool.Len()).To(Equal(1))
			Expect(b.Position()).To(Equal(mgl64.Vec3{}))
		})
	})

	Describe("fields", func() {
		It("drops a body under gravity", func() {
			g := mgl64.Vec3{0, -9.81, 0}
			s := fzx.NewSystem(pool, 0.125, fzx.WithField(fzx.Gravity{Acceleration: g}))
			b := fzx.NewBody(3, mgl64.Vec3{}, mgl64.Vec3{}, fzx.EmptyBBox())
			s.AddBody(pool.Insert(b))

			s.Update(1)

			Expect(s.Steps()).To(Equal(uint64(8)))
			Expect(b.Position()).To(beCloseTo(g.Mul(0.5)))
			Expect(b.Velocity()).To(beCloseTo(g))
		})

		It("slows a body with drag", func() {
			s := fzx.NewSystem(pool, 0.01, fzx.WithField(fzx.Drag{Coefficient: 1}))
			b := fzx.NewBody(1, mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}, fzx.EmptyBBox())
			s.AddBody(pool.Insert(b))

			for i := 0; i < 100; i++ {
				s.Update(0.01)
			}

			Expect(b.Velocity().X()).To(BeNumerically("~", math.Exp(-1), 0.01))
		})
	})

	Describe("springs between registered bodies", func() {
		It("depends on registration order", func() {
			run := func(targetFirst bool) mgl64.Vec3 {
				p := fzx.NewPool()
				s := fzx.NewSystem(p, 0.1)
				target := fzx.NewBody(1, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{5, 0, 0}, fzx.EmptyBBox())
				follower := fzx.NewDefaultBody()
				follower.AddConstraint(fzx.NewAttachedSpring(10, target))

				ht, hf := p.Insert(target), p.Insert(follower)
				if targetFirst {
					s.AddBody(ht)
					s.AddBody(hf)
				} else {
					s.AddBody(hf)
					s.AddBody(ht)
				}
				s.Update(0.1)
				return follower.Velocity()
			}

			Expect(run(true).X()).To(BeNumerically(">", run(false).X()))
		})

		It("oscillates two equal masses at sqrt(2k/m)", func() {
			k, m := 1.0, 1.0
			a := fzx.NewBody(m, mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{}, fzx.EmptyBBox())
			b := fzx.NewBody(m, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{}, fzx.EmptyBBox())
			a.AddConstraint(fzx.NewAttachedSpring(k, b))
			b.AddConstraint(fzx.NewAttachedSpring(k, a))

			s := fzx.NewSystem(pool, 0.001)
			s.AddBody(pool.Insert(a))
			s.AddBody(pool.Insert(b))

			halfPeriod := math.Pi / math.Sqrt(2*k/m)
			s.Update(halfPeriod)

			separation := b.Position().X() - a.Position().X()
			Expect(separation).To(BeNumerically("~", -2, 0.02))

			total := a.Momentum().Add(b.Momentum())
			Expect(total.Len()).To(BeNumerically("<", 0.01))
		})
	})
})
