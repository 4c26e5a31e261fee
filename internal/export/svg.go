// Package export renders concentration trajectories as SVG charts and
// terminal plots.
package export

import (
	"fmt"
	"html"
	"os"
	"strings"

	"github.com/san-kum/chemsim/internal/kinetics"
)

var palette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

const (
	marginLeft   = 70.0
	marginRight  = 180.0
	marginTop    = 40.0
	marginBottom = 50.0
)

// TrajectoryToSVG draws one line per species against time, with axes and
// a legend.
func TrajectoryToSVG(traj *kinetics.Trajectory, width, height int) string {
	if traj == nil || traj.Len() < 2 {
		return ""
	}

	minX, maxX := traj.Times[0], traj.Times[traj.Len()-1]
	maxY := 0.0
	for _, series := range traj.Series {
		for _, v := range series {
			if v > maxY {
				maxY = v
			}
		}
	}
	rangeX := maxX - minX
	if rangeX == 0 {
		rangeX = 1
	}
	if maxY == 0 {
		maxY = 1
	}
	maxY *= 1.1

	plotW := float64(width) - marginLeft - marginRight
	plotH := float64(height) - marginTop - marginBottom
	px := func(x float64) float64 { return marginLeft + (x-minX)/rangeX*plotW }
	py := func(y float64) float64 { return marginTop + plotH - y/maxY*plotH }

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif" font-size="12">
<rect width="100%%" height="100%%" fill="#ffffff"/>
<text x="%.1f" y="24" text-anchor="middle" font-size="16">Chemical Reaction Simulation</text>
`, width, height, width, height, marginLeft+plotW/2)

	// grid and ticks
	for i := 0; i <= 5; i++ {
		f := float64(i) / 5
		x := marginLeft + f*plotW
		y := marginTop + plotH - f*plotH
		fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#dddddd"/>
<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#dddddd"/>
<text x="%.1f" y="%.1f" text-anchor="middle">%.3g</text>
<text x="%.1f" y="%.1f" text-anchor="end">%.3g</text>
`,
			x, marginTop, x, marginTop+plotH,
			marginLeft, y, marginLeft+plotW, y,
			x, marginTop+plotH+16, minX+f*rangeX,
			marginLeft-6, y+4, f*maxY)
	}
	fmt.Fprintf(&sb, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="none" stroke="#333333"/>
<text x="%.1f" y="%.1f" text-anchor="middle">Time (s)</text>
<text x="16" y="%.1f" text-anchor="middle" transform="rotate(-90 16 %.1f)">Concentration (mol/L)</text>
`, marginLeft, marginTop, plotW, plotH,
		marginLeft+plotW/2, float64(height)-12,
		marginTop+plotH/2, marginTop+plotH/2)

	for i, c := range traj.Species {
		color := palette[i%len(palette)]
		series := traj.Of(c.Formula())

		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="2" d="M`, color)
		for j, v := range series {
			if j == 0 {
				fmt.Fprintf(&sb, "%.1f,%.1f", px(traj.Times[j]), py(v))
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", px(traj.Times[j]), py(v))
			}
		}
		sb.WriteString("\"/>\n")

		ly := marginTop + 10 + float64(i)*18
		lx := marginLeft + plotW + 12
		fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="2"/>
<text x="%.1f" y="%.1f">%s</text>
`, lx, ly, lx+20, ly, color, lx+26, ly+4, html.EscapeString(c.String()))
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

// WriteSVG renders traj to path.
func WriteSVG(path string, traj *kinetics.Trajectory, width, height int) error {
	svg := TrajectoryToSVG(traj, width, height)
	if svg == "" {
		return fmt.Errorf("trajectory needs at least two points")
	}
	return os.WriteFile(path, []byte(svg), 0644)
}
