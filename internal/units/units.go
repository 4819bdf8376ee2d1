// Package units holds physical constants and unit helpers used to set up
// scenarios in SI units.
package units

import (
	"math"

	"github.com/san-kum/loft/internal/vmath"
)

// G is the gravitational constant in m³ kg⁻¹ s⁻².
const G = 6.674e-11

// SiderealDay is the Earth's rotation period relative to the stars, in seconds.
const SiderealDay = 86164.1

const (
	EarthMass   = 5.972e24
	EarthRadius = 6.371e6
	EarthTilt   = 23.44 // degrees

	MoonMass     = 7.342e22
	MoonRadius   = 1.737e6
	MoonDistance = 4.054e8
	MoonSpeed    = 0.97e3
	MoonPeriod   = 27.32 // sidereal days
)

// Deg converts degrees to radians.
func Deg(degrees float64) float64 { return degrees * math.Pi / 180 }

// Day converts sidereal days to seconds.
func Day(days float64) float64 { return days * SiderealDay }

// CylinderVolume is the volume of a cylinder of radius r and length l.
func CylinderVolume(r, l float64) float64 { return math.Pi * r * r * l }

// CylinderShellInertia is the inertia of a thin cylindrical shell of mass m about its
// center, with the axis along z.
func CylinderShellInertia(m, r, l float64) vmath.M3 {
	side := m * (6*r*r + l*l) / 12
	return vmath.Diag(side, side, m*r*r)
}

// CylinderSolidInertia is the inertia of a solid cylinder of mass m about its center,
// with the axis along z.
func CylinderSolidInertia(m, r, l float64) vmath.M3 {
	side := m * (3*r*r + l*l) / 12
	return vmath.Diag(side, side, m*r*r/2)
}
