package fzx_test

import (
	"runtime"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/fzx/internal/fzx"
	"github.com/san-kum/fzx/internal/integrators"
)

var _ = Describe("AttachedSpring", func() {
	It("pulls toward the other position", func() {
		s := fzx.NewAttachedSpring(3, fzx.NewDefaultBody())
		f := s.Force(mgl64.Vec3{1, 1, 1}, mgl64.Vec3{2, 0, 1})
		Expect(f).To(beCloseTo(mgl64.Vec3{3, -3, 0}))
	})

	It("stores half k d squared", func() {
		s := fzx.NewAttachedSpring(4, fzx.NewDefaultBody())
		Expect(s.PotentialEnergy(mgl64.Vec3{}, mgl64.Vec3{0, 3, 0})).To(BeNumerically("~", 18, tolerance))
	})

	It("reports the body it is attached to", func() {
		other := fzx.NewDefaultBody()
		s := fzx.NewAttachedSpring(1, other)
		Expect(s.AttachedTo()).To(BeIdenticalTo(other))
		Expect(s.SpringConstant()).To(Equal(1.0))
	})

	It("feeds the state equation of its owner", func() {
		anchor := fzx.NewBody(1, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{}, fzx.EmptyBBox())
		b := fzx.NewDefaultBody(fzx.WithIntegrator(integrators.Euler[fzx.Phase, float64]))
		b.AddConstraint(fzx.NewAttachedSpring(2, anchor))

		b.Update(0.5)

		Expect(b.Velocity()).To(beCloseTo(mgl64.Vec3{1, 0, 0}))
		Expect(anchor.Position()).To(Equal(mgl64.Vec3{1, 0, 0}))
	})

	It("does not keep the other body alive", func() {
		s := springToTemporaryBody()
		Eventually(func() *fzx.Body {
			runtime.GC()
			return s.AttachedTo()
		}).Should(BeNil())

		b := fzx.NewDefaultBody()
		b.AddConstraint(s)
		b.Update(0.1)
		Expect(b.Position()).To(Equal(mgl64.Vec3{}))
	})

	It("is kept for the body's lifetime", func() {
		b := fzx.NewDefaultBody()
		b.AddConstraint(fzx.NewAttachedSpring(1, fzx.NewDefaultBody()))
		b.AddConstraint(nil)
		Expect(b.Constraints()).To(HaveLen(1))
	})
})

func springToTemporaryBody() *fzx.AttachedSpring {
	return fzx.NewAttachedSpring(5, fzx.NewBody(1, mgl64.Vec3{10, 0, 0}, mgl64.Vec3{}, fzx.EmptyBBox()))
}
