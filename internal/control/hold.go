package control

import (
	"github.com/san-kum/loft/internal/dynamo"
	"github.com/san-kum/loft/internal/physics"
)

// ClimbRate returns how fast b's center of mass moves away from w's center of mass.
func ClimbRate(b *dynamo.Body, w *physics.World) float64 {
	d := b.AbsoluteCenterOfMass().Sub(w.AbsoluteCenterOfMass())
	v := b.Root().VelocityOfCM().Sub(w.VelocityOfCM())
	return v.Dot(d.Unit())
}

// ClimbHold throttles a rocket to hold a climb rate away from a world.
type ClimbHold struct {
	pid    *PID
	world  *physics.World
	target float64
}

func NewClimbHold(world *physics.World, target float64, pid *PID) *ClimbHold {
	return &ClimbHold{pid: pid, world: world, target: target}
}

func (h *ClimbHold) Target() float64 { return h.target }

// Steer sets the throttle from the climb-rate error. The rocket clamps it to [0, 1].
func (h *ClimbHold) Steer(r *physics.Rocket, dt float64) {
	r.Throttle(h.pid.Update(h.target-ClimbRate(r.Body, h.world), dt))
}
