package metrics

import (
	"math"

	"github.com/san-kum/loft/internal/dynamo"
	"github.com/san-kum/loft/internal/sim"
	"github.com/san-kum/loft/internal/vmath"
)

// LinearMomentum sums m·v_cm over the free bodies.
func LinearMomentum(bodies []*dynamo.Body) vmath.V3 {
	var p vmath.V3
	for _, b := range bodies {
		if b.IsFree() {
			p = p.Add(b.VelocityOfCM().Scale(b.Mass()))
		}
	}
	return p
}

// AngularMomentum sums I·ω + m·(r_cm × v_cm) about the origin over the free bodies.
func AngularMomentum(bodies []*dynamo.Body) vmath.V3 {
	var l vmath.V3
	for _, b := range bodies {
		if !b.IsFree() {
			continue
		}
		spin := b.Inertia().MulV(b.AngularVelocity())
		orbit := b.CenterOfMass().Cross(b.VelocityOfCM()).Scale(b.Mass())
		l = l.Add(spin).Add(orbit)
	}
	return l
}

// MomentumDrift tracks the largest change in total momentum from the first
// observation. The change is absolute since total momentum is often zero.
type MomentumDrift struct {
	name     string
	measure  func([]*dynamo.Body) vmath.V3
	initial  vmath.V3
	maxDrift float64
	samples  int
}

func NewLinearMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "linear_momentum_drift", measure: LinearMomentum}
}

func NewAngularMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "angular_momentum_drift", measure: AngularMomentum}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(u *sim.Universe) {
	p := m.measure(u.Bodies())
	if m.samples == 0 {
		m.initial = p
	}
	m.samples++
	m.maxDrift = math.Max(m.maxDrift, p.Sub(m.initial).Mag())
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = vmath.V0
	m.maxDrift = 0
	m.samples = 0
}
