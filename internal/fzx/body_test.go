package fzx_test

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/fzx/internal/fzx"
	"github.com/san-kum/fzx/internal/integrators"
)

const tolerance = 1e-9

func beCloseTo(v mgl64.Vec3) OmegaMatcher {
	return WithTransform(func(got mgl64.Vec3) float64 {
		return got.Sub(v).Len()
	}, BeNumerically("<", tolerance))
}

var _ = Describe("Body", func() {
	var body *fzx.Body

	BeforeEach(func() {
		body = fzx.NewDefaultBody()
	})

	Describe("mass", func() {
		It("defaults to one", func() {
			Expect(body.Mass()).To(Equal(1.0))
		})

		DescribeTable("accepts strictly positive values",
			func(m float64) {
				body.SetMass(m)
				Expect(body.Mass()).To(Equal(m))
			},
			Entry("small", 1e-6),
			Entry("unit", 1.0),
			Entry("large", 1e9),
		)

		DescribeTable("keeps the previous mass for non-positive values",
			func(m float64) {
				body.SetMass(3)
				body.SetMass(m)
				Expect(body.Mass()).To(Equal(3.0))
			},
			Entry("zero", 0.0),
			Entry("negative", -2.0),
			Entry("negative infinity", math.Inf(-1)),
			Entry("NaN", math.NaN()),
		)

		It("falls back to the default mass in the constructor", func() {
			b := fzx.NewBody(-5, mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}, fzx.EmptyBBox())
			Expect(b.Mass()).To(Equal(fzx.DefaultMass))
			Expect(b.Momentum()).To(beCloseTo(mgl64.Vec3{1, 0, 0}))
		})
	})

	Describe("a fresh body", func() {
		It("is at rest with no force", func() {
			Expect(body.Velocity()).To(Equal(mgl64.Vec3{}))
			Expect(body.NetForce()).To(Equal(mgl64.Vec3{}))
			Expect(body.Position()).To(Equal(mgl64.Vec3{}))
		})

		It("does not move when updated", func() {
			for _, dt := range []float64{0.001, 0.1, 5} {
				body.Update(dt)
				Expect(body.Position()).To(Equal(mgl64.Vec3{}))
			}
		})
	})

	Describe("Update", func() {
		It("moves at constant velocity without force", func() {
			v := mgl64.Vec3{1, -2, 0.5}
			start := mgl64.Vec3{3, 4, 5}
			body.SetPosition(start)
			body.SetVelocity(v)

			body.Update(0.25)

			Expect(body.Position()).To(beCloseTo(start.Add(v.Mul(0.25))))
			Expect(body.Velocity()).To(beCloseTo(v))
		})

		It("matches the closed form for constant acceleration", func() {
			m, dt := 2.0, 0.1
			f := mgl64.Vec3{4, 0, -6}
			body.SetMass(m)
			body.AddForce(f)

			body.Update(dt)

			a := f.Mul(1 / m)
			Expect(body.Velocity()).To(beCloseTo(a.Mul(dt)))
			Expect(body.Position()).To(beCloseTo(a.Mul(0.5 * dt * dt)))
		})

		It("clears the force accumulator after the step", func() {
			f := mgl64.Vec3{1, 2, 3}
			body.AddForce(f)
			body.Update(0.1)

			Expect(body.NetForce()).To(Equal(mgl64.Vec3{}))
			Expect(body.NetForceAt(0)).To(Equal(f))
		})

		It("applies a force to one update only", func() {
			body.AddForce(mgl64.Vec3{10, 0, 0})
			body.Update(0.1)
			v := body.Velocity()

			body.Update(0.1)
			Expect(body.Velocity()).To(beCloseTo(v))
		})

		It("keeps the previous state as the current slot", func() {
			body.SetVelocity(mgl64.Vec3{1, 0, 0})
			body.Update(1)
			body.Update(1)

			Expect(body.PreviousState().Position).To(beCloseTo(mgl64.Vec3{1, 0, 0}))
			Expect(body.State().Position).To(beCloseTo(mgl64.Vec3{2, 0, 0}))
		})

		It("lets NaN propagate and stay detectable", func() {
			body.AddForce(mgl64.Vec3{math.NaN(), 0, 0})
			body.Update(0.1)
			Expect(body.State().IsValid()).To(BeFalse())

			body.Update(0.1)
			Expect(body.State().IsValid()).To(BeFalse())
		})

		It("uses the selected integrator", func() {
			euler := fzx.NewBody(1, mgl64.Vec3{}, mgl64.Vec3{}, fzx.EmptyBBox(),
				fzx.WithIntegrator(integrators.Euler[fzx.Phase, float64]))
			euler.AddForce(mgl64.Vec3{2, 0, 0})
			euler.Update(0.5)

			// explicit Euler moves with the old velocity, which was zero
			Expect(euler.Position()).To(beCloseTo(mgl64.Vec3{}))
			Expect(euler.Velocity()).To(beCloseTo(mgl64.Vec3{1, 0, 0}))
		})
	})

	Describe("AddForce", func() {
		It("is additive within a tick", func() {
			f1 := mgl64.Vec3{1, 2, 3}
			f2 := mgl64.Vec3{-4, 0.5, 2}

			split := fzx.NewDefaultBody()
			split.AddForce(f1)
			split.AddForce(f2)
			split.Update(0.1)

			reversed := fzx.NewDefaultBody()
			reversed.AddForce(f2)
			reversed.AddForce(f1)
			reversed.Update(0.1)

			summed := fzx.NewDefaultBody()
			summed.AddForce(f1.Add(f2))
			summed.Update(0.1)

			Expect(split.Position()).To(beCloseTo(summed.Position()))
			Expect(split.Velocity()).To(beCloseTo(summed.Velocity()))
			Expect(reversed.Position()).To(beCloseTo(summed.Position()))
		})
	})

	Describe("interpolation", func() {
		BeforeEach(func() {
			body.SetVelocity(mgl64.Vec3{2, 0, 0})
			body.Update(1)
		})

		It("blends between the last two positions", func() {
			Expect(body.PositionAt(0)).To(beCloseTo(mgl64.Vec3{0, 0, 0}))
			Expect(body.PositionAt(1)).To(beCloseTo(mgl64.Vec3{2, 0, 0}))
			Expect(body.PositionAt(0.25)).To(beCloseTo(mgl64.Vec3{0.5, 0, 0}))
		})

		It("blends velocity", func() {
			body.AddForce(mgl64.Vec3{4, 0, 0})
			body.Update(1)
			Expect(body.VelocityAt(0.5)).To(beCloseTo(mgl64.Vec3{4, 0, 0}))
		})

		It("sees position writes in both slots", func() {
			body.SetPosition(mgl64.Vec3{7, 7, 7})
			Expect(body.PositionAt(0)).To(Equal(mgl64.Vec3{7, 7, 7}))
			Expect(body.PositionAt(0.6)).To(beCloseTo(mgl64.Vec3{7, 7, 7}))
		})

		It("sees velocity writes in both slots", func() {
			body.SetVelocity(mgl64.Vec3{0, 3, 0})
			Expect(body.VelocityAt(0)).To(beCloseTo(mgl64.Vec3{0, 3, 0}))
			Expect(body.VelocityAt(1)).To(beCloseTo(mgl64.Vec3{0, 3, 0}))
		})

		It("translates the base transform by the blended position", func() {
			base := mgl64.Scale3D(2, 2, 2)
			m := body.ModelTransformation(0.5, base)

			origin := m.Mul4x1(mgl64.Vec4{0, 0, 0, 1}).Vec3()
			Expect(origin).To(beCloseTo(mgl64.Vec3{2, 0, 0}))
		})
	})

	Describe("bounding boxes", func() {
		It("follows the body's position", func() {
			box := fzx.NewBBox(mgl64.Vec3{-1, -1, -1}, mgl64.Vec3{1, 1, 1})
			b := fzx.NewBody(1, mgl64.Vec3{5, 0, 0}, mgl64.Vec3{0, 1, 0}, box)

			Expect(b.BoundingBox().Min).To(beCloseTo(mgl64.Vec3{4, -1, -1}))
			Expect(b.WorldBoundingBox()).To(Equal(b.BoundingBox()))

			b.Update(1)
			Expect(b.WorldBoundingBox().Max).To(beCloseTo(mgl64.Vec3{6, 2, 1}))
			Expect(b.LocalBoundingBox()).To(Equal(box))
		})

		It("refreshes the world box when the local box changes", func() {
			body.SetPosition(mgl64.Vec3{1, 1, 1})
			body.SetBoundingBox(fzx.NewBBox(mgl64.Vec3{}, mgl64.Vec3{1, 1, 1}))
			Expect(body.WorldBoundingBox().Max).To(beCloseTo(mgl64.Vec3{2, 2, 2}))
		})
	})

	Describe("KineticEnergy", func() {
		It("is half m v squared", func() {
			body.SetMass(4)
			body.SetVelocity(mgl64.Vec3{3, 0, 0})
			Expect(body.KineticEnergy()).To(BeNumerically("~", 18, tolerance))
		})
	})
})
