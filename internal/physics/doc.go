// Package physics provides composite bodies built on [dynamo.Body]:
//
//   - [World]: a spinning planet or moon with a spherical surface
//   - [Rocket]: a shell with a steerable engine and a draining fuel tank
//
// Both embed *dynamo.Body, so they can be added to a [sim.Universe],
// captured and released like any other body. A rocket can be flown by a [Pilot],
// consulted on every step while the rocket is free.
//
// # Example
//
//	earth := physics.NewWorld(units.EarthMass, units.EarthRadius, vmath.V0, vmath.V0,
//	    vmath.M1, units.Day(1))
//	r, frame := earth.Locate(units.Deg(28.5), units.Deg(-80.6), 0)
//	rocket := physics.NewRocket(physics.DefaultRocketSpec(), r, frame)
package physics
