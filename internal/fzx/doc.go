// Package fzx is the rigid-body integration core.
//
// The package advances body state in phase space (position, momentum) at a
// fixed simulation step and lets renderers blend between the last two
// computed states at their own frame rate:
//
//   - [Phase]: position/momentum pair, the integrator's state type
//   - [Body]: two-deep state and force history, constraints, bounding box
//   - [AttachedSpring]: linear spring force toward another body
//   - [BBox]: axis-aligned bounding box
//   - [Pool]: application-owned body storage addressed by [Handle]
//   - [System]: fixed-step scheduler with hangover accounting
//   - [Field]: uniform force sources such as [Gravity] and [Drag]
//
// # Driver Loop
//
//	pool := fzx.NewPool()
//	sys := fzx.NewSystem(pool, 1.0/120)
//	sys.AddBody(pool.Insert(fzx.NewDefaultBody()))
//	for {
//	    alpha := sys.Update(elapsed.Seconds())
//	    for _, h := range sys.Bodies() {
//	        b, _ := pool.Get(h)
//	        draw(b.ModelTransformation(alpha, mgl64.Ident4()))
//	    }
//	}
//
// # Thread Safety
//
// Nothing in this package is safe for concurrent use. The System and every
// Body it steps must be driven from one goroutine.
package fzx
