package dynamo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/loft/internal/vmath"
)

const tol = 1e-9

var (
	v111 = vmath.V(1, 1, 1)
	v110 = vmath.V(1, 1, 0)

	mz  = vmath.Rot(vmath.M1, vmath.Vz.Scale(math.Pi/2))
	my  = vmath.Rot(vmath.M1, vmath.Vy.Scale(math.Pi/2))
	myz = vmath.Rot(my, vmath.Vz.Scale(math.Pi/2))
)

func assertClose(t *testing.T, want, got vmath.V3) {
	t.Helper()
	assert.Truef(t, vmath.Close(got, want, tol), "expected %v, got %v", want, got)
}

func assertCloseM(t *testing.T, want, got vmath.M3) {
	t.Helper()
	assert.Truef(t, vmath.CloseM(got, want, tol), "expected %v, got %v", want, got)
}

type momentum struct {
	linear, angular vmath.V3
}

// totalMomentum sums linear momentum and angular momentum about the origin.
// Captured bodies contribute nothing since their velocities are zero.
func totalMomentum(bodies ...*Body) momentum {
	var p momentum
	for _, b := range bodies {
		if !b.IsFree() {
			continue
		}
		p.linear = p.linear.Add(b.VelocityOfCM().Scale(b.Mass()))
		spin := b.Inertia().MulV(b.AngularVelocity())
		orbit := b.CenterOfMass().Cross(b.VelocityOfCM()).Scale(b.Mass())
		p.angular = p.angular.Add(spin).Add(orbit)
	}
	return p
}

// checkMomentum records the momentum of bodies now and returns a function that
// asserts it is unchanged.
func checkMomentum(t *testing.T, bodies ...*Body) func() {
	t.Helper()
	before := totalMomentum(bodies...)
	return func() {
		t.Helper()
		after := totalMomentum(bodies...)
		assertClose(t, before.linear, after.linear)
		assertClose(t, before.angular, after.angular)
	}
}

func TestSingleRest(t *testing.T) {
	b := New(2, vmath.M1, vmath.Vx, vmath.V0, vmath.M1, vmath.V0)
	defer checkMomentum(t, b)()

	check := func() {
		assert.Equal(t, 2.0, b.Mass())
		assert.Equal(t, vmath.M1, b.Inertia())
		assert.Equal(t, vmath.Vx, b.CenterOfMass())
		assert.Equal(t, vmath.V0, b.VelocityOfCM())
		assert.Equal(t, vmath.Vx, b.Position())
		assert.Equal(t, vmath.M1, b.Orientation())
		assert.Equal(t, vmath.V0, b.AngularVelocity())
		assert.True(t, b.IsFree())
	}
	check()
	b.Step(100)
	check()
}

func TestSingleMove(t *testing.T) {
	b := New(2, vmath.M1, vmath.Vx, v111, vmath.M1, vmath.Vz)
	defer checkMomentum(t, b)()

	b.Step(1)
	assert.Equal(t, 2.0, b.Mass())
	assert.Equal(t, vmath.V(2, 1, 1), b.CenterOfMass())
	assert.Equal(t, vmath.V(2, 1, 1), b.Position())
	assert.Equal(t, v111, b.VelocityOfCM())
	assert.Equal(t, vmath.Vz, b.AngularVelocity())
	assertClose(t, vmath.V(math.Cos(1), math.Sin(1), 0), b.Orientation().MulV(vmath.Vx))
}

func TestSingleImpulse(t *testing.T) {
	t.Run("at center of mass", func(t *testing.T) {
		b := New(2, vmath.M1, vmath.Vx.Scale(2), vmath.V0, my, vmath.V0)
		b.Impulse(v111.Scale(4))
		defer checkMomentum(t, b)()

		assert.Equal(t, v111.Scale(2), b.VelocityOfCM())
		assert.Equal(t, vmath.V0, b.AngularVelocity())

		b.Step(2)
		assertClose(t, vmath.Vx.Scale(2).Add(v111.Scale(4)), b.CenterOfMass())
		assert.Equal(t, my, b.Orientation())
	})

	t.Run("at origin", func(t *testing.T) {
		b := New(2, vmath.M1, vmath.Vx.Scale(2), vmath.V0, my, vmath.V0)
		b.ImpulseAt(v110.Scale(2), vmath.V0)
		defer checkMomentum(t, b)()

		assert.Equal(t, v110, b.VelocityOfCM())
		assertClose(t, vmath.Vz.Scale(-4), b.AngularVelocity())

		// Half a turn about -z.
		b.Step(math.Pi / 4)
		assertClose(t, vmath.Vx.Scale(2).Add(v110.Scale(math.Pi/4)), b.CenterOfMass())
		assertClose(t, vmath.Vz.Neg(), b.RotateIn(vmath.Vx))
		assertClose(t, vmath.Vy.Neg(), b.RotateIn(vmath.Vy))
		assertClose(t, vmath.Vx.Neg(), b.RotateIn(vmath.Vz))
	})
}

func TestTwoPointStatic(t *testing.T) {
	b1 := New(2, vmath.M1, vmath.Vz.Scale(6), vmath.V0, my, vmath.V0)
	b2 := New(6, vmath.M1, vmath.Vz.Scale(2), vmath.V0, myz, vmath.V0)
	defer checkMomentum(t, b1, b2)()

	assertClose(t, vmath.Vz.Neg(), b1.Orientation().MulV(vmath.Vx))
	assertClose(t, vmath.Vx, b2.Orientation().MulV(vmath.Vz))

	require.NoError(t, b1.Capture(b2))

	check := func() {
		assert.Equal(t, 8.0, b1.Mass())
		assert.Equal(t, 6.0, b2.Mass())
		// Orbit (2*3² + 6*1²) plus spin (1 + 1) about x and y.
		assertCloseM(t, vmath.Diag(26, 26, 2), b1.Inertia())
		assertCloseM(t, vmath.M1, b2.Inertia())
		assertClose(t, vmath.Vz.Scale(3), b1.CenterOfMass())
		// b2 sits along b1's x axis.
		assertClose(t, vmath.Vx.Scale(4), b2.CenterOfMass())
		assertClose(t, vmath.Vx.Scale(4), b2.Position())
		assertClose(t, vmath.Vz.Scale(6), b1.Position())
		assert.Equal(t, vmath.V0, b1.VelocityOfCM())
		assert.Equal(t, vmath.V0, b2.VelocityOfCM())
		assert.Equal(t, my, b1.Orientation())
		assertCloseM(t, mz, b2.Orientation())
		assertClose(t, vmath.V0, b1.AngularVelocity())
		assert.Equal(t, vmath.V0, b2.AngularVelocity())
		assert.False(t, b2.IsFree())
		assert.Same(t, b1, b2.Parent())
	}
	check()
	b1.Step(1)
	check()

	require.NoError(t, b1.Release(b2))
	assert.Equal(t, 2.0, b1.Mass())
	assertCloseM(t, vmath.M1, b1.Inertia())
	assertCloseM(t, vmath.M1, b2.Inertia())
	assertClose(t, vmath.Vz.Scale(6), b1.CenterOfMass())
	assertClose(t, vmath.Vz.Scale(2), b2.CenterOfMass())
	assertClose(t, vmath.V0, b1.VelocityOfCM())
	assertClose(t, vmath.V0, b2.VelocityOfCM())
	assertCloseM(t, my, b1.Orientation())
	assertCloseM(t, myz, b2.Orientation())
	assertClose(t, vmath.V0, b2.AngularVelocity())
	assert.True(t, b2.IsFree())
	assert.Empty(t, b1.Subs())
}

func TestTwoPointTranslate(t *testing.T) {
	b1 := New(2, vmath.M1, vmath.Vz.Scale(6), vmath.Vz.Scale(-4), my, vmath.V0)
	b2 := New(6, vmath.M1, vmath.Vz.Scale(2), vmath.V0, myz, vmath.V0)
	defer checkMomentum(t, b1, b2)()

	require.NoError(t, b1.Capture(b2))
	assert.Equal(t, vmath.Vz.Neg(), b1.VelocityOfCM())
	assertClose(t, vmath.Vz.Scale(3), b1.CenterOfMass())

	b1.Step(1)
	assertClose(t, vmath.Vz.Scale(5), b1.Position())
	assertClose(t, vmath.Vz.Scale(2), b1.CenterOfMass())
	assert.Equal(t, vmath.Vz.Neg(), b1.VelocityOfCM())
	assertCloseM(t, my, b1.Orientation())

	require.NoError(t, b1.Release(b2))
	assertClose(t, vmath.Vz.Scale(5), b1.Position())
	assertClose(t, vmath.Vz, b2.Position())
	assertClose(t, vmath.Vz.Neg(), b1.VelocityOfCM())
	assertClose(t, vmath.Vz.Neg(), b2.VelocityOfCM())
	assertCloseM(t, myz, b2.Orientation())
	assertClose(t, vmath.V0, b1.AngularVelocity())
	assertClose(t, vmath.V0, b2.AngularVelocity())
}

func TestTwoPointRotate(t *testing.T) {
	tests := []struct {
		name   string
		i1     vmath.M3
		v1, v2 vmath.V3
		omega1 vmath.V3
		omega2 vmath.V3
		w      float64
		vcm    vmath.V3
	}{
		{
			name: "counter-moving",
			i1:   vmath.M1,
			v1:   vmath.Vx.Scale(3),
			v2:   vmath.Vx.Neg(),
			w:    12.0 / 13.0,
		},
		{
			name:   "spinning",
			i1:     vmath.M1.Scale(2),
			omega1: vmath.Vy,
			omega2: vmath.Vy.Scale(2),
			w:      4.0 / 27.0,
		},
		{
			name: "rotate and translate",
			i1:   vmath.M1,
			v1:   vmath.Vx.Scale(6),
			v2:   vmath.Vx.Scale(2),
			w:    12.0 / 13.0,
			vcm:  vmath.Vx.Scale(3),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b1 := New(2, tt.i1, vmath.Vz.Scale(6), tt.v1, my, tt.omega1)
			b2 := New(6, vmath.M1, vmath.Vz.Scale(2), tt.v2, myz, tt.omega2)
			defer checkMomentum(t, b1, b2)()
			r1Hat := vmath.V(math.Sin(tt.w), 0, math.Cos(tt.w))

			require.NoError(t, b1.Capture(b2))
			assertClose(t, vmath.Vz.Scale(3), b1.CenterOfMass())
			assertClose(t, tt.vcm, b1.VelocityOfCM())
			assertClose(t, vmath.Vx.Scale(4), b2.Position())
			assertClose(t, vmath.Vy.Scale(tt.w), b1.AngularVelocity())

			b1.Step(1)
			cm := vmath.Vz.Scale(3).Add(tt.vcm)
			assertClose(t, cm.Add(r1Hat.Scale(3)), b1.Position())
			assertClose(t, cm, b1.CenterOfMass())
			assertClose(t, vmath.Vx.Scale(4), b2.Position())
			assertCloseM(t, mz, b2.Orientation())
			assertClose(t, vmath.V(math.Cos(tt.w), 0, -math.Sin(tt.w)), b1.Orientation().MulV(vmath.Vz))
			assert.Equal(t, vmath.V0, b2.AngularVelocity())

			require.NoError(t, b1.Release(b2))
			omega := vmath.Vy.Scale(tt.w)
			assertClose(t, cm.Add(r1Hat.Scale(3)), b1.Position())
			assertClose(t, cm.Sub(r1Hat), b2.Position())
			assertClose(t, tt.vcm.Add(omega.Cross(r1Hat.Scale(3))), b1.VelocityOfCM())
			assertClose(t, tt.vcm.Add(omega.Cross(r1Hat.Neg())), b2.VelocityOfCM())
			assertClose(t, vmath.Vy, b2.Orientation().MulV(vmath.Vx))
			assertClose(t, r1Hat, b2.Orientation().MulV(vmath.Vy))
			assertClose(t, omega, b1.AngularVelocity())
			assertClose(t, omega, b2.AngularVelocity())
		})
	}
}

func TestCaptureReleaseInverse(t *testing.T) {
	head := New(3, vmath.Diag(1, 2, 3), vmath.V(1, -2, 0.5), vmath.V0, vmath.Rot(vmath.M1, vmath.V(0.3, 0.2, -0.1)), vmath.V0)
	part := New(1.5, vmath.Diag(2, 2, 1), vmath.V(-1, 4, 2), vmath.V0, vmath.Rot(vmath.M1, vmath.V(-1, 0.5, 2)), vmath.V0)
	r, o := part.Position(), part.Orientation()

	require.NoError(t, head.Capture(part))
	require.NoError(t, head.Release(part))

	assertClose(t, r, part.Position())
	assertCloseM(t, o, part.Orientation())
	assertClose(t, vmath.V0, part.VelocityOfCM())
	assertClose(t, vmath.V0, part.AngularVelocity())
	assertClose(t, vmath.V0, head.VelocityOfCM())
}

func TestMomentumConservedAcrossSequence(t *testing.T) {
	a := New(2, vmath.Diag(1, 2, 3), vmath.V(0, 0, 0), vmath.V(1, 0, 0), vmath.M1, vmath.V(0, 0.5, 0))
	b := New(3, vmath.Diag(2, 1, 1), vmath.V(2, 1, 0), vmath.V(0, -1, 0.5), vmath.Rot(vmath.M1, vmath.V(0.4, 0, 0)), vmath.V(0.1, 0, 0))
	c := New(1, vmath.M1, vmath.V(-1, 3, 2), vmath.V(0, 0, -2), vmath.Rot(vmath.M1, vmath.V(0, 1, 1)), vmath.V(0, 0, 1))
	d := New(4, vmath.Diag(3, 3, 1), vmath.V(1, -2, -1), vmath.V(0.5, 0.5, 0), vmath.M1, vmath.V0)
	all := []*Body{a, b, c, d}
	check := checkMomentum(t, all...)

	require.NoError(t, a.Capture(b))
	check()
	// Capturing into a sub-body redistributes momentum at the root.
	require.NoError(t, b.Capture(c))
	check()
	require.NoError(t, d.Capture(a))
	check()
	require.NoError(t, b.Release(c))
	check()
	require.NoError(t, d.Release(a))
	check()
	require.NoError(t, a.Release(b))
	check()
}

func TestNestedReleaseRestoresPose(t *testing.T) {
	a := New(2, vmath.M1, vmath.V(1, 2, 3), vmath.V0, vmath.Rot(vmath.M1, vmath.V(0, 0, 1)), vmath.V0)
	b := New(1, vmath.M1, vmath.V(-1, 0, 2), vmath.V0, vmath.Rot(vmath.M1, vmath.V(1, 0, 0)), vmath.V0)
	c := New(1, vmath.M1, vmath.V(4, 4, 4), vmath.V0, vmath.Rot(vmath.M1, vmath.V(0, 2, 0)), vmath.V0)
	r, o := c.Position(), c.Orientation()

	require.NoError(t, a.Capture(b))
	require.NoError(t, b.Capture(c))
	assertClose(t, r, c.AbsolutePosition())
	assertCloseM(t, o, c.AbsoluteOrientation())
	assert.Same(t, a, c.Root())

	require.NoError(t, b.Release(c))
	assertClose(t, r, c.Position())
	assertCloseM(t, o, c.Orientation())
}

func TestCaptureErrors(t *testing.T) {
	a := New(1, vmath.M1, vmath.V0, vmath.V0, vmath.M1, vmath.V0)
	b := New(1, vmath.M1, vmath.Vx, vmath.V0, vmath.M1, vmath.V0)
	c := New(1, vmath.M1, vmath.Vy, vmath.V0, vmath.M1, vmath.V0)
	a.SetName("a")
	b.SetName("b")
	require.NoError(t, a.Capture(b))

	tests := []struct {
		name string
		head *Body
		part *Body
		want error
	}{
		{"self", c, c, ErrSelfCapture},
		{"already captured", c, b, ErrAlreadyCaptured},
		{"own root", b, a, ErrCycle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subs := tt.head.Subs()
			err := tt.head.Capture(tt.part)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var ce *CaptureError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.part.Name(), ce.Part)
			assert.Equal(t, subs, tt.head.Subs())
		})
	}
	assert.Same(t, a, b.Parent())
}

func TestReleaseNotChild(t *testing.T) {
	a := New(1, vmath.M1, vmath.V0, vmath.V0, vmath.M1, vmath.V0)
	b := New(1, vmath.M1, vmath.Vx, vmath.V0, vmath.M1, vmath.V0)
	c := New(1, vmath.M1, vmath.Vy, vmath.V0, vmath.M1, vmath.V0)
	require.NoError(t, a.Capture(b))
	require.NoError(t, b.Capture(c))

	err := a.Release(c)
	assert.ErrorIs(t, err, ErrNotChild)
	var re *ReleaseError
	assert.ErrorAs(t, err, &re)
	assert.Same(t, b, c.Parent())

	assert.ErrorIs(t, c.Release(a), ErrNotChild)
}

func TestAggregation(t *testing.T) {
	masses := []float64{1, 2.5, 4, 0.5}
	root := New(masses[0], vmath.M1, vmath.V(1, 0, 0), vmath.V0, vmath.M1, vmath.V0)
	parent := root
	for i, m := range masses[1:] {
		b := New(m, vmath.M1, vmath.V(float64(i), 1, 2), vmath.V0, vmath.M1, vmath.V0)
		require.NoError(t, parent.Capture(b))
		parent = b
	}
	assert.InDelta(t, 8.0, root.Mass(), 1e-12)

	// A single inertial node under massless ancestors.
	i := vmath.Diag(2, 3, 4)
	top := New(0, vmath.M0, vmath.V0, vmath.V0, vmath.M1, vmath.V0)
	mid := New(0, vmath.M0, vmath.V0, vmath.V0, vmath.M1, vmath.V0)
	leaf := New(0, i, vmath.V0, vmath.V0, vmath.M1, vmath.V0)
	require.NoError(t, top.Capture(mid))
	require.NoError(t, mid.Capture(leaf))
	assert.Equal(t, i, top.InertiaAbout(vmath.V0))
}

func TestCenterOfMassMassless(t *testing.T) {
	b := New(0, vmath.M0, vmath.V(1, 2, 3), vmath.V0, vmath.M1, vmath.V0)
	sub := New(0, vmath.M0, vmath.V(5, 5, 5), vmath.V0, vmath.M1, vmath.V0)
	require.NoError(t, b.Capture(sub))

	cm := b.CenterOfMass()
	assert.True(t, cm.IsValid())
	assert.Equal(t, vmath.V(1, 2, 3), cm)
}

func TestSingularCaptureKeepsOmega(t *testing.T) {
	// Two point masses on the z axis have no inertia about that axis.
	omega := vmath.V(0, 0, 2)
	a := New(1, vmath.M0, vmath.V0, vmath.V0, vmath.M1, omega)
	b := New(1, vmath.M0, vmath.Vz, vmath.V0, vmath.M1, vmath.V0)
	require.NoError(t, a.Capture(b))
	assert.Equal(t, omega, a.AngularVelocity())
}

func TestTransforms(t *testing.T) {
	o := vmath.Rot(vmath.M1, vmath.V(1, 1, 1).Unit().Scale(2*math.Pi/3))
	r := vmath.V(1, 2, 3)

	t.Run("origin", func(t *testing.T) {
		b := New(1, vmath.M1, vmath.V0, vmath.V0, vmath.M1, vmath.V0)
		for _, v := range []vmath.V3{vmath.Vx, vmath.Vy, vmath.Vz} {
			assert.Equal(t, v, b.RotateIn(v))
			assert.Equal(t, v, b.RotateOut(v))
			assert.Equal(t, v, b.TransformIn(v))
			assert.Equal(t, v, b.TransformOut(v))
		}
	})

	t.Run("translate", func(t *testing.T) {
		b := New(1, vmath.M1, r, vmath.V0, vmath.M1, vmath.V0)
		assert.Equal(t, vmath.Vx, b.RotateIn(vmath.Vx))
		assert.Equal(t, vmath.V(0, -2, -3), b.TransformIn(vmath.Vx))
		assert.Equal(t, vmath.V(1, 3, 3), b.TransformOut(vmath.Vy))
	})

	t.Run("rotate diagonal", func(t *testing.T) {
		// x -> y, y -> z, z -> x
		b := New(1, vmath.M1, r, vmath.V0, o, vmath.V0)
		assertClose(t, vmath.Vz, b.RotateIn(vmath.Vx))
		assertClose(t, vmath.Vx, b.RotateIn(vmath.Vy))
		assertClose(t, vmath.Vy, b.RotateOut(vmath.Vx))
		assertClose(t, vmath.V(-2, -3, 0), b.TransformIn(vmath.Vx))
		assertClose(t, vmath.V(1, 3, 3), b.TransformOut(vmath.Vx))
	})

	t.Run("nested rotate diagonal", func(t *testing.T) {
		b1 := New(1, vmath.M1, r, vmath.V0, o, vmath.V0)
		b2 := New(1, vmath.M1, r.Add(vmath.V(-3, -2, -1)), vmath.V0, vmath.Rot(o, vmath.Vz.Scale(math.Pi/2)), vmath.V0)
		require.NoError(t, b1.Capture(b2))

		assertClose(t, vmath.Vz, b2.RotateIn(vmath.Vx))
		assertClose(t, vmath.Vy.Neg(), b2.RotateIn(vmath.Vy))
		assertClose(t, vmath.Vx, b2.RotateIn(vmath.Vz))
		assertClose(t, vmath.V(-2, 0, 2), b2.TransformOut(vmath.V0))
	})
}

func TestTransformRoundTrip(t *testing.T) {
	a := New(1, vmath.M1, vmath.V(1, 2, 3), vmath.V0, vmath.Rot(vmath.M1, vmath.V(0.3, -1.2, 0.7)), vmath.V0)
	b := New(2, vmath.M1, vmath.V(-4, 0, 1), vmath.V0, vmath.Rot(vmath.M1, vmath.V(2, 0.1, 0)), vmath.V0)
	c := New(3, vmath.M1, vmath.V(0, 5, -2), vmath.V0, vmath.Rot(vmath.M1, vmath.V(0, 0, -2.5)), vmath.V0)
	require.NoError(t, a.Capture(b))
	require.NoError(t, b.Capture(c))

	vs := []vmath.V3{vmath.V0, vmath.Vx, vmath.V(3, -7, 11), vmath.V(-0.25, 0.5, 100)}
	for _, body := range []*Body{a, b, c} {
		for _, v := range vs {
			assertClose(t, v, body.TransformOut(body.TransformIn(v)))
			assertClose(t, v, body.RotateOut(body.RotateIn(v)))
			assertClose(t, v, body.TransformIn(body.TransformOut(v)))
		}
	}
}

type countingDriver struct {
	calls int
	dt    float64
}

func (d *countingDriver) Drive(b *Body, dt float64) {
	d.calls++
	d.dt += dt
}

func TestStepRunsDriversOnWholeTree(t *testing.T) {
	head := New(1, vmath.M1, vmath.V0, vmath.Vx, vmath.M1, vmath.Vz)
	part := New(1, vmath.M1, vmath.Vy, vmath.V0, vmath.M1, vmath.V0)
	d := &countingDriver{}
	part.SetDriver(d)
	require.NoError(t, head.Capture(part))
	r := part.Position()

	head.Step(0.5)
	head.Step(0.25)
	assert.Equal(t, 2, d.calls)
	assert.InDelta(t, 0.75, d.dt, 1e-15)
	assert.Equal(t, r, part.Position())
}

func TestIntersects(t *testing.T) {
	a := New(1, vmath.M1, vmath.V0, vmath.V0, vmath.M1, vmath.V0)
	b := New(1, vmath.M1, vmath.Vx, vmath.V0, vmath.M1, vmath.V0)
	assert.False(t, a.Intersects(b))

	a.SetShape(Sphere{Radius: 2})
	assert.True(t, a.Intersects(b))
	assert.True(t, b.Intersects(a))
	assert.False(t, a.Intersects(a))

	b.SetPosition(vmath.Vx.Scale(3))
	assert.False(t, a.Intersects(b))
	b.SetShape(Sphere{Radius: 1.5})
	assert.True(t, a.Intersects(b))
}
