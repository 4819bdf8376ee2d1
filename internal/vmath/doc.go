// Package vmath provides the three-vector and 3x3 matrix value types used by the
// rigid-body engine.
//
// Matrices are row-major: m.MulV(v) applies m as a linear map to v. A matrix plays one
// of two roles, either an orthonormal rotation taking a body frame into its parent
// frame, or a symmetric inertia tensor.
//
// Rotations are composed with [Rot], which applies the exact half-angle rotation
// about an axis vector on the right of an existing matrix:
//
//	o := vmath.Rot(vmath.M1, vmath.Vz.Scale(math.Pi/2)) // x -> y
package vmath
