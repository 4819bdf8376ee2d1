package vmath

import (
	"fmt"
	"math"
)

// V3 is a three-component vector.
type V3 struct {
	X, Y, Z float64
}

// M3 is a 3x3 matrix stored as three row vectors.
type M3 struct {
	X, Y, Z V3
}

var (
	V0 = V3{0, 0, 0}
	Vx = V3{1, 0, 0}
	Vy = V3{0, 1, 0}
	Vz = V3{0, 0, 1}

	M0 = M3{V0, V0, V0}
	M1 = M3{Vx, Vy, Vz}
)

// V returns the vector (x, y, z).
func V(x, y, z float64) V3 { return V3{x, y, z} }

// Diag returns the diagonal matrix with the given entries.
func Diag(x, y, z float64) M3 {
	return M3{V3{x, 0, 0}, V3{0, y, 0}, V3{0, 0, z}}
}

// At returns component i, with 0 for x, 1 for y and anything else for z.
func (v V3) At(i int) float64 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func (v V3) Add(o V3) V3        { return V3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v V3) Sub(o V3) V3        { return V3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v V3) Scale(c float64) V3 { return V3{v.X * c, v.Y * c, v.Z * c} }
func (v V3) Div(c float64) V3   { return V3{v.X / c, v.Y / c, v.Z / c} }
func (v V3) Neg() V3            { return V3{-v.X, -v.Y, -v.Z} }

func (v V3) Dot(o V3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v V3) Cross(o V3) V3 {
	return V3{v.Y*o.Z - v.Z*o.Y, v.Z*o.X - v.X*o.Z, v.X*o.Y - v.Y*o.X}
}

// Square returns v·v.
func (v V3) Square() float64 { return v.Dot(v) }

func (v V3) Mag() float64 { return math.Sqrt(v.Dot(v)) }

// Unit returns v scaled to length 1. The zero vector maps to Vz.
func (v V3) Unit() V3 {
	m := v.Mag()
	if m == 0 {
		return Vz
	}
	return v.Div(m)
}

// Outer returns the matrix whose (i, j) element is v[i]*o[j].
func (v V3) Outer(o V3) M3 {
	return M3{o.Scale(v.X), o.Scale(v.Y), o.Scale(v.Z)}
}

func (v V3) IsValid() bool {
	for _, c := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func (v V3) String() string {
	return fmt.Sprintf("(%g %g %g)", v.X, v.Y, v.Z)
}

// Row returns row i.
func (m M3) Row(i int) V3 {
	switch i {
	case 0:
		return m.X
	case 1:
		return m.Y
	default:
		return m.Z
	}
}

func (m M3) Add(o M3) M3 { return M3{m.X.Add(o.X), m.Y.Add(o.Y), m.Z.Add(o.Z)} }
func (m M3) Sub(o M3) M3 { return M3{m.X.Sub(o.X), m.Y.Sub(o.Y), m.Z.Sub(o.Z)} }

func (m M3) Scale(c float64) M3 { return M3{m.X.Scale(c), m.Y.Scale(c), m.Z.Scale(c)} }
func (m M3) Div(c float64) M3   { return M3{m.X.Div(c), m.Y.Div(c), m.Z.Div(c)} }

// MulV applies m as a linear map to v.
func (m M3) MulV(v V3) V3 {
	return V3{m.X.Dot(v), m.Y.Dot(v), m.Z.Dot(v)}
}

// Mul returns the matrix product m*o.
func (m M3) Mul(o M3) M3 {
	t := o.Tr()
	return M3{
		V3{m.X.Dot(t.X), m.X.Dot(t.Y), m.X.Dot(t.Z)},
		V3{m.Y.Dot(t.X), m.Y.Dot(t.Y), m.Y.Dot(t.Z)},
		V3{m.Z.Dot(t.X), m.Z.Dot(t.Y), m.Z.Dot(t.Z)},
	}
}

// Tr returns the transpose.
func (m M3) Tr() M3 {
	return M3{
		V3{m.X.X, m.Y.X, m.Z.X},
		V3{m.X.Y, m.Y.Y, m.Z.Y},
		V3{m.X.Z, m.Y.Z, m.Z.Z},
	}
}

func (m M3) Det() float64 {
	return m.X.X*(m.Y.Y*m.Z.Z-m.Y.Z*m.Z.Y) +
		m.X.Y*(m.Y.Z*m.Z.X-m.Y.X*m.Z.Z) +
		m.X.Z*(m.Y.X*m.Z.Y-m.Y.Y*m.Z.X)
}

// Inv returns the inverse of m, or M0 if the determinant is exactly zero.
// Callers that care about singularity must check Det themselves.
func (m M3) Inv() M3 {
	d := m.Det()
	if d == 0 {
		return M0
	}
	return M3{
		V3{m.Y.Y*m.Z.Z - m.Y.Z*m.Z.Y, m.Z.Y*m.X.Z - m.Z.Z*m.X.Y, m.X.Y*m.Y.Z - m.X.Z*m.Y.Y},
		V3{m.Y.Z*m.Z.X - m.Y.X*m.Z.Z, m.Z.Z*m.X.X - m.Z.X*m.X.Z, m.X.Z*m.Y.X - m.X.X*m.Y.Z},
		V3{m.Y.X*m.Z.Y - m.Y.Y*m.Z.X, m.Z.X*m.X.Y - m.Z.Y*m.X.X, m.X.X*m.Y.Y - m.X.Y*m.Y.X},
	}.Div(d)
}

func (m M3) String() string {
	return fmt.Sprintf("[%v %v %v]", m.X, m.Y, m.Z)
}

// Rot returns m*R where R rotates by |a| radians about the direction of a.
// R is built from the half-angle quaternion, so large angles are exact.
func Rot(m M3, a V3) M3 {
	if a == V0 {
		return m
	}
	half := 0.5 * a.Mag()
	e := a.Unit().Scale(math.Sin(half))
	w := math.Cos(half)

	wx, wy, wz := w*e.X, w*e.Y, w*e.Z
	xx, xy, xz := e.X*e.X, e.X*e.Y, e.X*e.Z
	yy, yz := e.Y*e.Y, e.Y*e.Z
	zz := e.Z * e.Z

	r := M3{
		V3{1 - 2*(yy+zz), 2 * (xy - wz), 2 * (xz + wy)},
		V3{2 * (xy + wz), 1 - 2*(xx+zz), 2 * (yz - wx)},
		V3{2 * (xz - wy), 2 * (yz + wx), 1 - 2*(xx+yy)},
	}
	return m.Mul(r)
}

// AxisAngle recovers the rotation axis (not normalized) and angle in radians from a
// rotation matrix. The identity yields (V0, 0).
func AxisAngle(m M3) (V3, float64) {
	var w, x, y, z float64
	tr := m.X.X + m.Y.Y + m.Z.Z
	switch {
	case tr > 0:
		s := 2 * math.Sqrt(1+tr)
		w = s / 4
		x = (m.Z.Y - m.Y.Z) / s
		y = (m.X.Z - m.Z.X) / s
		z = (m.Y.X - m.X.Y) / s
	case m.X.X > m.Y.Y && m.X.X > m.Z.Z:
		s := 2 * math.Sqrt(1+m.X.X-m.Y.Y-m.Z.Z)
		w = (m.Z.Y - m.Y.Z) / s
		x = s / 4
		y = (m.X.Y + m.Y.X) / s
		z = (m.X.Z + m.Z.X) / s
	case m.Y.Y > m.Z.Z:
		s := 2 * math.Sqrt(1+m.Y.Y-m.X.X-m.Z.Z)
		w = (m.X.Z - m.Z.X) / s
		x = (m.X.Y + m.Y.X) / s
		y = s / 4
		z = (m.Y.Z + m.Z.Y) / s
	default:
		s := 2 * math.Sqrt(1+m.Z.Z-m.X.X-m.Y.Y)
		w = (m.Y.X - m.X.Y) / s
		x = (m.X.Z + m.Z.X) / s
		y = (m.Y.Z + m.Z.Y) / s
		z = s / 4
	}
	axis := V3{x, y, z}
	return axis, 2 * math.Atan2(axis.Mag(), w)
}

// Close reports whether every component of a is within tol of b.
func Close(a, b V3, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}

// CloseM reports whether every element of a is within tol of b.
func CloseM(a, b M3, tol float64) bool {
	return Close(a.X, b.X, tol) && Close(a.Y, b.Y, tol) && Close(a.Z, b.Z, tol)
}
