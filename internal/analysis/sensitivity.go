package analysis

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/go-logr/logr"

	"github.com/san-kum/fzx/internal/config"
	"github.com/san-kum/fzx/internal/experiment"
)

var ErrBadPerturbation = errors.New("analysis: perturbation must be positive")

// Sensitivity estimates the largest Lyapunov exponent of a scene. Two
// worlds are built from it, the first body of the second is displaced by
// perturbation along x, and both are driven by the scene's nominal frame
// schedule. After every frame the separation is measured and the
// perturbed world is pulled back to distance perturbation.
//
// Linear scenes (springs, uniform fields) give values near zero.
func Sensitivity(scene *config.Scene, reg *experiment.Registry, perturbation float64) (float64, error) {
	if !(perturbation > 0) {
		return 0, ErrBadPerturbation
	}
	if reg == nil {
		reg = experiment.NewRegistry()
	}

	ref, err := experiment.Build(scene, reg, logr.Discard())
	if err != nil {
		return 0, err
	}
	pert, err := experiment.Build(scene, reg, logr.Discard())
	if err != nil {
		return 0, err
	}
	b0 := pert.Bodies[0]
	b0.SetPosition(b0.Position().Add(mgl64.Vec3{perturbation, 0, 0}))

	dt := 1.0 / scene.FPS
	t := 0.0
	sumLog := 0.0

	for i := 0; i < scene.Frames; i++ {
		ref.Advance(dt)
		pert.Advance(dt)
		t += dt

		sep := separation(ref, pert)
		if sep == 0 || math.IsNaN(sep) || math.IsInf(sep, 0) {
			continue
		}
		sumLog += math.Log(sep / perturbation)

		scale := perturbation / sep
		for j, b := range pert.Bodies {
			r := ref.Bodies[j]
			b.SetPosition(r.Position().Add(b.Position().Sub(r.Position()).Mul(scale)))
			b.SetVelocity(r.Velocity().Add(b.Velocity().Sub(r.Velocity()).Mul(scale)))
		}
	}

	if t == 0 {
		return 0, nil
	}
	return sumLog / t, nil
}

// separation is the phase-space distance between matching bodies.
func separation(a, b *experiment.World) float64 {
	sum := 0.0
	for i, ba := range a.Bodies {
		bb := b.Bodies[i]
		dp := bb.Position().Sub(ba.Position())
		dv := bb.Velocity().Sub(ba.Velocity())
		sum += dp.Dot(dp) + dv.Dot(dv)
	}
	return math.Sqrt(sum)
}
