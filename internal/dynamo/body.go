package dynamo

import (
	"math"
	"slices"

	"github.com/san-kum/loft/internal/vmath"
)

// Below this total mass a center of mass is taken to be the body's own origin.
const massEpsilon = 1e-12

// Driver is called at the start of every Step, before the body moves. Collaborators
// such as engines use it to apply impulses and update their own mass properties.
type Driver interface {
	Drive(b *Body, dt float64)
}

// Body is a rigid body in three-dimensional space and a node in a tree of bodies.
//
// A free body (no parent) carries the linear and angular velocity of its whole
// aggregate; a captured body has zero velocity and a pose fixed relative to its parent.
// Mass, inertia and center of mass of an aggregate are derived on every call by
// summing in tree pre-order: own contribution first, then sub-bodies in capture order.
type Body struct {
	name string

	// Physical properties of this node alone.
	mass    float64
	inertia vmath.M3

	// Position and orientation relative to the parent, or absolute for a free body.
	r           vmath.V3
	orientation vmath.M3
	// Absolute velocity of the aggregate's center of mass and angular velocity.
	// Both are zero while the body is captured.
	vcm   vmath.V3
	omega vmath.V3

	parent *Body
	subs   []*Body

	shape  Shape
	driver Driver
}

// New creates a free body. inertia is about the body's origin in its own frame;
// orientation takes body axes into the absolute frame.
func New(mass float64, inertia vmath.M3, r, v vmath.V3, orientation vmath.M3, omega vmath.V3) *Body {
	return &Body{
		mass:        mass,
		inertia:     inertia,
		r:           r,
		vcm:         v,
		orientation: orientation,
		omega:       omega,
		shape:       Point{},
	}
}

// Capture attaches part at its current absolute pose, conserving the linear and angular
// momentum of the aggregate. part must be free. The momentum is redistributed at the
// root of b's tree, so capturing anywhere in an aggregate changes the motion of the
// whole aggregate.
//
// If the combined inertia tensor is singular the angular velocity is left unchanged.
func (b *Body) Capture(part *Body) error {
	if err := b.checkCapture(part); err != nil {
		return &CaptureError{Head: b.name, Part: part.name, Wrapped: err}
	}

	b.Root().addMomentum(part)

	r, o := part.r, part.orientation
	b.subs = append(b.subs, part)
	part.parent = b
	part.r = b.TransformIn(r)
	part.orientation = b.AbsoluteOrientation().Tr().Mul(o)
	part.vcm = vmath.V0
	part.omega = vmath.V0
	return nil
}

func (b *Body) checkCapture(part *Body) error {
	switch {
	case part == b:
		return ErrSelfCapture
	case part.parent != nil:
		return ErrAlreadyCaptured
	case b.Root() == part:
		return ErrCycle
	}
	return nil
}

// addMomentum sets the velocity and angular velocity of root b so that the aggregate
// formed with part has the combined momentum of both.
func (b *Body) addMomentum(part *Body) {
	headM, partM := b.Mass(), part.Mass()
	total := headM + partM
	if math.Abs(total) < massEpsilon {
		return
	}

	v1, v2 := b.vcm, part.vcm
	headCM, partCM := b.CenterOfMass(), part.CenterOfMass()
	b.vcm = v1.Scale(headM).Add(v2.Scale(partM)).Div(total)

	cm := headCM.Scale(headM).Add(partCM.Scale(partM)).Div(total)
	rHead := headCM.Sub(cm)
	rPart := partCM.Sub(cm)

	spinHead := b.Inertia().MulV(b.omega)
	orbitHead := rHead.Cross(v1).Scale(headM)
	spinPart := part.Inertia().MulV(part.omega)
	orbitPart := rPart.Cross(v2).Scale(partM)
	l := spinHead.Add(orbitHead).Add(spinPart).Add(orbitPart)

	inertia := b.InertiaAbout(cm).Add(part.InertiaAbout(cm))
	if inertia.Det() == 0 {
		return
	}
	b.omega = inertia.Inv().MulV(l)
}

// Release detaches part, which must be a direct sub-body of b. Both pieces leave with
// the motion they had as parts of the rigid aggregate: part gets the aggregate's
// angular velocity and the velocity of its own center of mass in the rigid rotation,
// and the root's velocity is corrected for the shift of its center of mass.
func (b *Body) Release(part *Body) error {
	i := slices.Index(b.subs, part)
	if i < 0 {
		return &ReleaseError{Head: b.name, Part: part.name, Wrapped: ErrNotChild}
	}

	root := b.Root()
	cm := root.CenterOfMass()
	r := b.TransformOut(part.r)
	o := b.AbsoluteOrientation().Mul(part.orientation)

	b.subs = slices.Delete(b.subs, i, i+1)
	part.parent = nil
	part.r = r
	part.orientation = o

	part.vcm = root.vcm.Add(root.omega.Cross(part.CenterOfMass().Sub(cm)))
	part.omega = root.omega
	root.vcm = root.vcm.Add(root.omega.Cross(root.CenterOfMass().Sub(cm)))
	return nil
}

// Mass returns the total mass of the aggregate.
func (b *Body) Mass() float64 {
	m := b.mass
	for _, s := range b.subs {
		m += s.Mass()
	}
	return m
}

// Inertia returns the aggregate's inertia tensor about its center of mass, in the
// absolute frame.
func (b *Body) Inertia() vmath.M3 {
	return b.InertiaAbout(b.AbsoluteCenterOfMass())
}

// InertiaAbout returns the aggregate's inertia tensor about an absolute point, in the
// absolute frame, using the parallel-axis theorem for every node.
func (b *Body) InertiaAbout(center vmath.V3) vmath.M3 {
	d := b.AbsolutePosition().Sub(center)
	o := b.AbsoluteOrientation()
	offset := vmath.M1.Scale(d.Square()).Sub(d.Outer(d)).Scale(b.mass)
	inertia := o.Mul(b.inertia).Mul(o.Tr()).Add(offset)
	for _, s := range b.subs {
		inertia = inertia.Add(s.InertiaAbout(center))
	}
	return inertia
}

// CenterOfMass returns the aggregate's center of mass in the parent frame, or the
// absolute frame for a free body. A massless aggregate returns its origin.
func (b *Body) CenterOfMass() vmath.V3 {
	m := b.Mass()
	if math.Abs(m) < massEpsilon {
		return b.r
	}
	var sum vmath.V3
	for _, s := range b.subs {
		sum = sum.Add(b.orientation.MulV(s.CenterOfMass()).Scale(s.Mass()))
	}
	return b.r.Add(sum.Div(m))
}

// AbsoluteCenterOfMass returns the aggregate's center of mass in the absolute frame.
func (b *Body) AbsoluteCenterOfMass() vmath.V3 {
	if b.parent != nil {
		return b.parent.TransformOut(b.CenterOfMass())
	}
	return b.CenterOfMass()
}

// AbsolutePosition returns the absolute position of the body's origin.
func (b *Body) AbsolutePosition() vmath.V3 {
	if b.parent != nil {
		return b.parent.TransformOut(b.r)
	}
	return b.r
}

// AbsoluteOrientation returns the rotation from the body's frame to the absolute frame.
func (b *Body) AbsoluteOrientation() vmath.M3 {
	if b.parent != nil {
		return b.parent.AbsoluteOrientation().Mul(b.orientation)
	}
	return b.orientation
}

func (b *Body) VelocityOfCM() vmath.V3    { return b.vcm }
func (b *Body) Orientation() vmath.M3     { return b.orientation }
func (b *Body) AngularVelocity() vmath.V3 { return b.omega }

// Position returns the position relative to the parent if there is one, else the
// absolute position.
func (b *Body) Position() vmath.V3 { return b.r }

func (b *Body) OwnMass() float64     { return b.mass }
func (b *Body) OwnInertia() vmath.M3 { return b.inertia }
func (b *Body) Name() string         { return b.name }
func (b *Body) Shape() Shape         { return b.shape }
func (b *Body) Parent() *Body        { return b.parent }
func (b *Body) IsFree() bool         { return b.parent == nil }
func (b *Body) SetName(name string)  { b.name = name }
func (b *Body) SetDriver(d Driver)   { b.driver = d }
func (b *Body) SetShape(s Shape)     { b.shape = s }
func (b *Body) Subs() []*Body        { return slices.Clone(b.subs) }

// Root returns the top of b's tree.
func (b *Body) Root() *Body {
	for b.parent != nil {
		b = b.parent
	}
	return b
}

// Intersects reports whether either body's shape reaches the other.
func (b *Body) Intersects(other *Body) bool {
	if other == b {
		return false
	}
	return b.shape.Intersects(b, other) || other.shape.Intersects(other, b)
}

// Impulse applies an absolute impulse at the center of mass. Linear momentum changes;
// angular momentum does not.
func (b *Body) Impulse(imp vmath.V3) {
	b.vcm = b.vcm.Add(imp.Div(b.Mass()))
}

// ImpulseAt applies an absolute impulse at an absolute position, changing both linear
// and angular momentum.
func (b *Body) ImpulseAt(imp, at vmath.V3) {
	b.Impulse(imp)
	torque := at.Sub(b.AbsoluteCenterOfMass()).Cross(imp)
	b.omega = b.omega.Add(b.Inertia().Inv().MulV(torque))
}

// Step advances the body by dt. Only a free body moves: its center of mass follows
// v_cm and the body turns about the center of mass by omega*dt. Sub-bodies are
// stepped so their drivers run; their relative pose does not change.
func (b *Body) Step(dt float64) {
	if b.driver != nil {
		b.driver.Drive(b, dt)
	}

	if b.parent == nil {
		// The origin is generally not at the center of mass. Hold the offset fixed in
		// the body frame across the rotation and recover the origin from the new CM.
		cm := b.CenterOfMass()
		dr := b.RotateIn(cm.Sub(b.r))
		b.orientation = vmath.Rot(b.orientation, b.RotateIn(b.omega).Scale(dt))
		b.r = cm.Add(b.vcm.Scale(dt)).Sub(b.RotateOut(dr))
	}

	for _, s := range b.subs {
		s.Step(dt)
	}
}

// RotateIn rotates an absolute vector into the body's frame.
func (b *Body) RotateIn(v vmath.V3) vmath.V3 {
	if b.parent != nil {
		v = b.parent.RotateIn(v)
	}
	return b.orientation.Tr().MulV(v)
}

// TransformIn maps an absolute position into the body's frame.
func (b *Body) TransformIn(v vmath.V3) vmath.V3 {
	if b.parent != nil {
		v = b.parent.TransformIn(v)
	}
	return b.orientation.Tr().MulV(v.Sub(b.r))
}

// RotateOut rotates a vector in the body's frame into the absolute frame.
func (b *Body) RotateOut(v vmath.V3) vmath.V3 {
	v = b.orientation.MulV(v)
	if b.parent != nil {
		return b.parent.RotateOut(v)
	}
	return v
}

// TransformOut maps a position in the body's frame to the absolute frame.
func (b *Body) TransformOut(v vmath.V3) vmath.V3 {
	v = b.r.Add(b.orientation.MulV(v))
	if b.parent != nil {
		return b.parent.TransformOut(v)
	}
	return v
}

// The setters below change physical properties directly, for collaborators that model
// changing bodies such as a draining fuel tank. They bypass momentum bookkeeping: the
// caller is responsible for physical consistency, including any compensating impulse.

// SetPosition sets the position relative to the parent, or the absolute position of a
// free body.
func (b *Body) SetPosition(r vmath.V3) { b.r = r }

// SetOrientation sets the rotation from the body's frame to its parent's.
func (b *Body) SetOrientation(o vmath.M3) { b.orientation = o }

// SetMass sets this node's own mass.
func (b *Body) SetMass(m float64) { b.mass = m }

// SetInertia sets this node's own inertia tensor about its origin, in its own frame.
func (b *Body) SetInertia(i vmath.M3) { b.inertia = i }
