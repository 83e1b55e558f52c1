package experiment

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/go-logr/logr"

	"github.com/san-kum/fzx/internal/config"
	"github.com/san-kum/fzx/internal/fzx"
)

// World is a physics system populated from a scene. It keeps the strong
// references to its bodies; the system itself only holds handles.
type World struct {
	Scene   *config.Scene
	Pool    *fzx.Pool
	System  *fzx.System
	Names   []string
	Bodies  []*fzx.Body
	Handles []fzx.Handle
}

// Frame is what a driver sees after one call to System.Update.
type Frame struct {
	Time      float64
	Elapsed   float64
	Alpha     float64
	Steps     int
	Positions []mgl64.Vec3
}

// Build creates the bodies, springs and fields described by scene and
// registers every body with a new system.
func Build(scene *config.Scene, reg *Registry, log logr.Logger) (*World, error) {
	if err := scene.Validate(); err != nil {
		return nil, err
	}
	integrator, err := reg.GetIntegrator(scene.Integrator)
	if err != nil {
		return nil, err
	}

	opts := []fzx.SystemOption{
		fzx.WithLogger(log),
		fzx.WithMaxSteps(scene.MaxSteps),
	}
	if g := mgl64.Vec3(scene.Gravity); g != (mgl64.Vec3{}) {
		opts = append(opts, fzx.WithField(fzx.Gravity{Acceleration: g}))
	}
	if scene.Drag > 0 {
		opts = append(opts, fzx.WithField(fzx.Drag{Coefficient: scene.Drag}))
	}

	w := &World{
		Scene: scene,
		Pool:  fzx.NewPool(),
	}
	w.System = fzx.NewSystem(w.Pool, scene.FixedTimeStep, opts...)

	index := make(map[string]*fzx.Body, len(scene.Bodies))
	for _, bc := range scene.Bodies {
		h := mgl64.Vec3(bc.HalfExtents)
		box := fzx.EmptyBBox()
		if h != (mgl64.Vec3{}) {
			box = fzx.NewBBox(h.Mul(-1), h)
		}
		b := fzx.NewBody(bc.Mass, mgl64.Vec3(bc.Position), mgl64.Vec3(bc.Velocity), box,
			fzx.WithIntegrator(integrator))

		handle := w.Pool.Insert(b)
		w.System.AddBody(handle)

		w.Names = append(w.Names, bc.Name)
		w.Bodies = append(w.Bodies, b)
		w.Handles = append(w.Handles, handle)
		index[bc.Name] = b
	}

	for _, sc := range scene.Springs {
		from, to := index[sc.From], index[sc.To]
		if from == nil || to == nil {
			return nil, fmt.Errorf("experiment: spring %s->%s references a missing body", sc.From, sc.To)
		}
		from.AddConstraint(fzx.NewAttachedSpring(sc.Stiffness, to))
		if sc.Mutual {
			to.AddConstraint(fzx.NewAttachedSpring(sc.Stiffness, from))
		}
	}

	log.V(1).Info("built world", "scene", scene.Name, "bodies", len(w.Bodies), "springs", len(scene.Springs))
	return w, nil
}

// Advance feeds elapsed wall-clock seconds to the system and returns the
// interpolated positions a renderer would draw.
func (w *World) Advance(elapsed float64) Frame {
	before := w.System.Steps()
	alpha := w.System.Update(elapsed)
	return w.frame(elapsed, alpha, int(w.System.Steps()-before))
}

// Snapshot returns the current positions without advancing the system.
func (w *World) Snapshot() Frame {
	return w.frame(0, 1, 0)
}

func (w *World) frame(elapsed, alpha float64, steps int) Frame {
	f := Frame{
		Elapsed:   elapsed,
		Alpha:     alpha,
		Steps:     steps,
		Positions: make([]mgl64.Vec3, len(w.Bodies)),
	}
	for i, b := range w.Bodies {
		f.Positions[i] = b.PositionAt(alpha)
	}
	return f
}

// Live returns the bodies the system still holds.
func (w *World) Live() []*fzx.Body {
	handles := w.System.Bodies()
	out := make([]*fzx.Body, 0, len(handles))
	for _, h := range handles {
		if b, ok := w.Pool.Get(h); ok {
			out = append(out, b)
		}
	}
	return out
}

// Bounds is the union of the world bounding boxes of every body, grown to
// include body centers so boxless bodies still count.
func (w *World) Bounds() fzx.BBox {
	box := fzx.EmptyBBox()
	for _, b := range w.Bodies {
		box = box.Union(b.BoundingBox()).Extend(b.Position())
	}
	return box
}
