package physics

import (
	"math"

	"github.com/san-kum/loft/internal/dynamo"
	"github.com/san-kum/loft/internal/vmath"
)

// World is a massive sphere spinning about its own z-axis.
type World struct {
	*dynamo.Body
	radius float64
}

// NewWorld creates a world whose z-axis, given by orientation, is its spin axis.
// period is the time for one revolution.
func NewWorld(mass, radius float64, r, v vmath.V3, orientation vmath.M3, period float64) *World {
	omega := orientation.MulV(vmath.Vz.Scale(2 * math.Pi / period))
	b := dynamo.New(mass, vmath.M0, r, v, orientation, omega)
	b.SetShape(dynamo.Sphere{Radius: radius})
	return &World{Body: b, radius: radius}
}

func (w *World) Radius() float64 { return w.radius }

// Locate returns the absolute position of a point at latitude lat, longitude lon and
// altitude alt, and the orientation of the local frame there: z up, x east, y north.
// Zero longitude is along the world's y-axis.
func (w *World) Locate(lat, lon, alt float64) (vmath.V3, vmath.M3) {
	up := vmath.Vy.Scale(w.radius + alt)
	up = vmath.Rot(vmath.M1, vmath.Vx.Scale(lat)).MulV(up)
	up = vmath.Rot(vmath.M1, vmath.Vz.Scale(lon)).MulV(up)

	frame := vmath.Rot(vmath.M1, vmath.Vz.Scale(lon))
	frame = vmath.Rot(frame, vmath.Vx.Scale(lat-math.Pi/2))
	frame = vmath.Rot(frame, vmath.Vz.Scale(math.Pi))
	return w.TransformOut(up), w.AbsoluteOrientation().Mul(frame)
}

// Location returns latitude, longitude and altitude of an absolute position.
func (w *World) Location(r vmath.V3) (lat, lon, alt float64) {
	in := w.TransformIn(r)
	xy := math.Hypot(in.X, in.Y)
	return math.Atan2(in.Z, xy), math.Atan2(-in.X, in.Y), in.Mag() - w.radius
}
