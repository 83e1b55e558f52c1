package metrics

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/fzx/internal/fzx"
)

func TotalMomentum(bodies []*fzx.Body) mgl64.Vec3 {
	var p mgl64.Vec3
	for _, b := range bodies {
		p = p.Add(b.Momentum())
	}
	return p
}

// MomentumDrift reports the largest change in total momentum since the
// first frame. It stays near zero for worlds whose only forces are mutual
// springs.
type MomentumDrift struct {
	name     string
	initial  mgl64.Vec3
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(bodies []*fzx.Body, t float64) {
	p := TotalMomentum(bodies)
	if m.samples == 0 {
		m.initial = p
	}
	m.samples++

	if d := p.Sub(m.initial).Len(); d > m.maxDrift {
		m.maxDrift = d
	}
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = mgl64.Vec3{}
	m.maxDrift = 0
	m.samples = 0
}
