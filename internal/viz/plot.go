package viz

import (
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/loft/internal/sim"
)

// Series extracts one value per sample from the named body's state. Samples in which
// the body is not free are skipped.
func Series(res *sim.Result, name string, f func(sim.BodyState) float64) []float64 {
	var out []float64
	for _, s := range res.Samples {
		for _, b := range s.Bodies {
			if b.Name == name {
				out = append(out, f(b))
				break
			}
		}
	}
	return out
}

// Separation returns the distance between the centers of mass of two bodies in every
// sample where both are free.
func Separation(res *sim.Result, a, b string) []float64 {
	var out []float64
	for _, s := range res.Samples {
		var pa, pb *sim.BodyState
		for i := range s.Bodies {
			switch s.Bodies[i].Name {
			case a:
				pa = &s.Bodies[i]
			case b:
				pb = &s.Bodies[i]
			}
		}
		if pa != nil && pb != nil {
			out = append(out, pa.CM.Sub(pb.CM).Mag())
		}
	}
	return out
}

func Speed(s sim.BodyState) float64 { return s.Velocity.Mag() }
func Spin(s sim.BodyState) float64  { return s.Omega.Mag() }

// Plot draws a captioned line chart. Fewer than two points draw nothing.
func Plot(data []float64, caption string, width, height int) string {
	if len(data) < 2 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}
