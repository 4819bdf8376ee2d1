// Package control provides feedback controllers for rockets.
//
// [PID] is a plain scalar controller. [ClimbHold] wraps one as a [physics.Pilot]
// that sets a rocket's throttle every step to hold its climb rate away from a world:
//
//	pilot := control.NewClimbHold(earth, 50, control.NewPID(0.05, 0.01, 0))
//	rocket.SetPilot(pilot)
package control
