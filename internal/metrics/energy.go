package metrics

import (
	"math"

	"github.com/san-kum/loft/internal/dynamo"
	"github.com/san-kum/loft/internal/sim"
)

// KineticEnergy sums translational and rotational kinetic energy over the free bodies.
func KineticEnergy(bodies []*dynamo.Body) float64 {
	var ke float64
	for _, b := range bodies {
		if !b.IsFree() {
			continue
		}
		v, w := b.VelocityOfCM(), b.AngularVelocity()
		ke += 0.5*b.Mass()*v.Square() + 0.5*w.Dot(b.Inertia().MulV(w))
	}
	return ke
}

// PotentialEnergy sums -G·m1·m2/r over pairs of free bodies. Coincident pairs are
// skipped.
func PotentialEnergy(bodies []*dynamo.Body, g float64) float64 {
	var pe float64
	for i, p1 := range bodies {
		if !p1.IsFree() {
			continue
		}
		for _, p2 := range bodies[i+1:] {
			if !p2.IsFree() {
				continue
			}
			r := p2.CenterOfMass().Sub(p1.CenterOfMass()).Mag()
			if r == 0 {
				continue
			}
			pe -= g * p1.Mass() * p2.Mass() / r
		}
	}
	return pe
}

// TotalEnergy is the kinetic plus gravitational potential energy of the universe.
func TotalEnergy(u *sim.Universe) float64 {
	bodies := u.Bodies()
	return KineticEnergy(bodies) + PotentialEnergy(bodies, u.GravitationalConstant())
}

// Energy reports the mean total energy over all observations.
type Energy struct {
	name        string
	samples     int
	totalEnergy float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(u *sim.Universe) {
	e.totalEnergy += TotalEnergy(u)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift reports the largest relative change in total energy from the first
// observation. Captures dissipate energy, so drift is expected when collisions occur.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(u *sim.Universe) {
	energy := TotalEnergy(u)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
