package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/loft/internal/sim"
)

var strokes = []string{"#00ffff", "#ff00ff", "#ffff00", "#00ff88", "#ff8800", "#8888ff"}

// Trajectories draws the path of every body's center of mass projected onto the x-y
// plane, one colored polyline per body in order of first appearance. Both axes share
// one scale so orbits keep their shape. It returns "" when no body has two samples.
func Trajectories(samples []sim.Sample, width, height int) string {
	var names []string
	paths := make(map[string][][2]float64)
	for _, s := range samples {
		for _, b := range s.Bodies {
			if _, ok := paths[b.Name]; !ok {
				names = append(names, b.Name)
			}
			paths[b.Name] = append(paths[b.Name], [2]float64{b.CM.X, b.CM.Y})
		}
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	drawable := 0
	for _, name := range names {
		if len(paths[name]) < 2 {
			continue
		}
		drawable++
		for _, p := range paths[name] {
			minX, maxX = math.Min(minX, p[0]), math.Max(maxX, p[0])
			minY, maxY = math.Min(minY, p[1]), math.Max(maxY, p[1])
		}
	}
	if drawable == 0 {
		return ""
	}

	span := math.Max(maxX-minX, maxY-minY)
	if span == 0 {
		span = 1
	}
	// 10% padding on every side.
	scale := 0.8 * math.Min(float64(width), float64(height)) / span
	cx, cy := (minX+maxX)/2, (minY+maxY)/2

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	color := 0
	for _, name := range names {
		points := paths[name]
		if len(points) < 2 {
			continue
		}
		fmt.Fprintf(&sb, `<path id=%q fill="none" stroke="%s" stroke-width="1.5" d="`, name, strokes[color%len(strokes)])
		color++
		for i, p := range points {
			x := float64(width)/2 + (p[0]-cx)*scale
			y := float64(height)/2 - (p[1]-cy)*scale
			if i == 0 {
				fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}
