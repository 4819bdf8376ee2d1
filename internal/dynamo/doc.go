// Package dynamo models rigid bodies that can be joined into and split out of
// larger rigid aggregates.
//
// A [Body] is a node in a tree. Free bodies (roots) carry the motion of their
// whole aggregate; captured bodies are fixed relative to their parent:
//
//   - [Body.Capture] attaches a free body, conserving linear and angular momentum
//   - [Body.Release] detaches a direct sub-body with its rigid-body velocity
//   - [Body.Step] advances a free aggregate by a time step
//
// Vectors passed in and out are absolute unless a method says otherwise.
// Positions and orientations of captured bodies are relative to the parent.
//
// # Example
//
//	ship := dynamo.New(10, vmath.M1, vmath.V0, vmath.Vx, vmath.M1, vmath.V0)
//	pod := dynamo.New(2, vmath.M1, vmath.Vz, vmath.V0, vmath.M1, vmath.V0)
//	if err := ship.Capture(pod); err != nil {
//		return err
//	}
//	ship.Step(0.1)
//
// # Thread Safety
//
// Bodies are NOT safe for concurrent use. A tree must be owned by one goroutine.
package dynamo
