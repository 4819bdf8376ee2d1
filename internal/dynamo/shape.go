package dynamo

// Shape gives a body physical extent for collision tests. Kinematics never depend on
// the shape.
type Shape interface {
	// Intersects reports whether other occupies some of the space of self.
	Intersects(self, other *Body) bool
}

// Point is the shape of a body with no extent. Points never intersect anything.
type Point struct{}

func (Point) Intersects(_, _ *Body) bool { return false }

// Sphere is a ball of the given radius centered on the body's center of mass.
type Sphere struct {
	Radius float64
}

func (s Sphere) Intersects(self, other *Body) bool {
	reach := s.Radius
	if o, ok := other.Shape().(Sphere); ok {
		reach += o.Radius
	}
	d := other.AbsoluteCenterOfMass().Sub(self.AbsoluteCenterOfMass())
	return d.Mag() < reach
}
