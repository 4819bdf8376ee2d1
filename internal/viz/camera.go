package viz

import (
	"math"

	"github.com/san-kum/loft/internal/vmath"
)

// Extra room left around the bodies when the camera is fitted to them.
const fitMargin = 1.25

// Camera projects absolute positions orthographically onto a canvas. It looks down
// its own -z axis with x to the right and y up; Span is the distance from Center to
// the nearest canvas edge.
type Camera struct {
	Orientation vmath.M3
	Center      vmath.V3
	Span        float64
}

func NewCamera(span float64) *Camera {
	return &Camera{Orientation: vmath.M1, Span: span}
}

// Rotate turns the camera by the rotation vector a, given in the camera's own axes.
func (c *Camera) Rotate(a vmath.V3) { c.Orientation = vmath.Rot(c.Orientation, a) }

func (c *Camera) ZoomIn()  { c.Span /= 1.2 }
func (c *Camera) ZoomOut() { c.Span *= 1.2 }

// Fit centers the camera on the points and sets Span so that all of them are visible.
func (c *Camera) Fit(points []vmath.V3) {
	if len(points) == 0 {
		return
	}
	var sum vmath.V3
	for _, p := range points {
		sum = sum.Add(p)
	}
	c.Center = sum.Div(float64(len(points)))

	var reach float64
	for _, p := range points {
		reach = math.Max(reach, p.Sub(c.Center).Mag())
	}
	if reach == 0 {
		reach = 1
	}
	c.Span = reach * fitMargin
}

// Scale returns the number of sub-pixels per unit of length on canvas.
func (c *Camera) Scale(canvas *Canvas) float64 {
	w, h := canvas.Size()
	return float64(min(w, h)) / 2 / c.Span
}

// Project maps an absolute position to canvas sub-pixels. depth grows towards the
// viewer.
func (c *Camera) Project(p vmath.V3, canvas *Canvas) (x, y int, depth float64) {
	q := c.Orientation.Tr().MulV(p.Sub(c.Center))
	w, h := canvas.Size()
	s := c.Scale(canvas)
	x = w/2 + int(math.Round(q.X*s))
	y = h/2 - int(math.Round(q.Y*s))
	return x, y, q.Z
}
