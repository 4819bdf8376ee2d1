package physics

import (
	"math"

	"github.com/san-kum/loft/internal/dynamo"
	"github.com/san-kum/loft/internal/units"
	"github.com/san-kum/loft/internal/vmath"
)

// RocketSpec describes a cylindrical liquid-fueled rocket.
type RocketSpec struct {
	ShellMass  float64 // rocket without fuel or engine
	EngineMass float64
	Radius     float64
	Length     float64

	FuelDensity float64
	// SpecificImpulse is the impulse attainable from burning one unit mass of fuel.
	SpecificImpulse float64
	// FuelRate is the volume of fuel burned per second at full throttle.
	FuelRate float64
	// Efficiency is the fraction of the available impulse turned into thrust.
	// Zero means 1.
	Efficiency float64
}

func DefaultRocketSpec() RocketSpec {
	return RocketSpec{
		ShellMass:       10,
		EngineMass:      50,
		Radius:          0.5,
		Length:          10,
		FuelDensity:     1.5,
		SpecificImpulse: 1e3,
		FuelRate:        0.01,
		Efficiency:      1,
	}
}

// Fuel is a cylindrical slug of fuel that stays at the bottom of its tank.
type Fuel struct {
	*dynamo.Body
	density         float64
	radius          float64
	area            float64
	fullDepth       float64
	depth           float64
	specificImpulse float64
}

func NewFuel(radius, depth, density, specificImpulse float64) *Fuel {
	mass := density * units.CylinderVolume(radius, depth)
	b := dynamo.New(mass, units.CylinderSolidInertia(mass, radius, depth), vmath.V0, vmath.V0, vmath.M1, vmath.V0)
	b.SetName("fuel")
	return &Fuel{
		Body:            b,
		density:         density,
		radius:          radius,
		area:            math.Pi * radius * radius,
		fullDepth:       depth,
		depth:           depth,
		specificImpulse: specificImpulse,
	}
}

func (f *Fuel) Volume() float64 { return f.depth * f.area }

// Draw burns up to volume of fuel and returns the impulse it makes available. Less is
// burned if less remains. Mass, inertia and position are updated directly; the
// momentum carried away by the burned fuel is the returned impulse.
func (f *Fuel) Draw(volume float64) float64 {
	v := f.Volume()
	dv := math.Min(v, volume)
	v -= dv
	f.depth = v / f.area

	f.SetMass(v * f.density)
	f.SetPosition(vmath.Vz.Scale((f.depth - f.fullDepth) / 2))
	f.SetInertia(units.CylinderSolidInertia(f.OwnMass(), f.radius, f.depth))
	return f.specificImpulse * f.density * dv
}

// Engine produces thrust along its own z-axis.
type Engine struct {
	*dynamo.Body
	fuelRate   float64
	efficiency float64
	throttle   float64
}

func NewEngine(mass, fuelRate, efficiency float64) *Engine {
	b := dynamo.New(mass, vmath.M1, vmath.V0, vmath.V0, vmath.M1, vmath.V0)
	b.SetName("engine")
	return &Engine{Body: b, fuelRate: fuelRate, efficiency: efficiency}
}

// SetThrottle sets the fraction of full throttle, clamped to [0, 1].
func (e *Engine) SetThrottle(frac float64) { e.throttle = math.Max(0, math.Min(1, frac)) }
func (e *Engine) Throttle() float64        { return e.throttle }

// Orient points the thrust away from the rocket's z-axis by rotating about a by |a|
// radians, in the rocket's frame.
func (e *Engine) Orient(a vmath.V3) { e.SetOrientation(vmath.Rot(vmath.M1, a)) }

// Consumed returns the volume of fuel burned in dt at the current throttle.
func (e *Engine) Consumed(dt float64) float64 { return e.throttle * e.fuelRate * dt }

// Thrust converts an available impulse into an absolute impulse vector.
func (e *Engine) Thrust(available float64) vmath.V3 {
	return e.RotateOut(vmath.Vz).Scale(available * e.efficiency)
}

// Rocket is a cylindrical shell with an engine at its base and a fuel tank filling it.
// The rocket's z-axis points from the engine to the nose.
type Rocket struct {
	*dynamo.Body
	engine *Engine
	fuel   *Fuel
	pilot  Pilot
}

// Pilot adjusts a rocket's controls at the start of each step, before fuel is burned.
type Pilot interface {
	Steer(r *Rocket, dt float64)
}

// NewRocket builds a rocket at rest at position with the given orientation.
func NewRocket(spec RocketSpec, position vmath.V3, orientation vmath.M3) *Rocket {
	eff := spec.Efficiency
	if eff == 0 {
		eff = 1
	}

	shell := dynamo.New(spec.ShellMass, units.CylinderShellInertia(spec.ShellMass, spec.Radius, spec.Length),
		position, vmath.V0, vmath.M1, vmath.V0)
	shell.SetName("rocket")

	rocket := &Rocket{
		Body:   shell,
		engine: NewEngine(spec.EngineMass, spec.FuelRate, eff),
		fuel:   NewFuel(spec.Radius, spec.Length, spec.FuelDensity, spec.SpecificImpulse),
	}

	// Parts start at the shell's origin, so neither capture can fail or add momentum.
	rocket.engine.SetPosition(position)
	rocket.fuel.SetPosition(position)
	_ = shell.Capture(rocket.engine.Body)
	_ = shell.Capture(rocket.fuel.Body)
	rocket.engine.SetPosition(vmath.Vz.Scale(-spec.Length / 2))
	shell.SetOrientation(orientation)

	shell.SetDriver(rocket)
	return rocket
}

func (r *Rocket) Throttle(frac float64)   { r.engine.SetThrottle(frac) }
func (r *Rocket) OrientThrust(a vmath.V3) { r.engine.Orient(a) }
func (r *Rocket) FuelVolume() float64     { return r.fuel.Volume() }
func (r *Rocket) Engine() *Engine         { return r.engine }
func (r *Rocket) Fuel() *Fuel             { return r.fuel }
func (r *Rocket) SetPilot(p Pilot)        { r.pilot = p }

// Drive burns fuel for one step and applies the thrust at the engine. A captured
// rocket's engine does nothing and its pilot is not consulted.
func (r *Rocket) Drive(b *dynamo.Body, dt float64) {
	if !b.IsFree() {
		return
	}
	if r.pilot != nil {
		r.pilot.Steer(r, dt)
	}
	imp := r.engine.Thrust(r.fuel.Draw(r.engine.Consumed(dt)))
	b.ImpulseAt(imp, b.TransformOut(r.engine.CenterOfMass()))
}
