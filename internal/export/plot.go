package export

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/chemsim/internal/kinetics"
)

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Blue, asciigraph.Red, asciigraph.Green, asciigraph.Yellow,
	asciigraph.Magenta, asciigraph.Cyan, asciigraph.White,
}

// Resample picks n evenly spaced values from data, keeping both ends.
func Resample(data []float64, n int) []float64 {
	if n <= 0 || len(data) <= n {
		return append([]float64(nil), data...)
	}
	out := make([]float64, n)
	for i := range out {
		idx := i * (len(data) - 1) / (n - 1)
		out[i] = data[idx]
	}
	return out
}

// Plot renders every species of traj on one terminal chart followed by a
// legend line.
func Plot(traj *kinetics.Trajectory, width, height int) string {
	if traj == nil || traj.Len() == 0 {
		return ""
	}

	data := make([][]float64, len(traj.Species))
	colors := make([]asciigraph.AnsiColor, len(traj.Species))
	legend := make([]string, len(traj.Species))
	for i, c := range traj.Species {
		data[i] = Resample(traj.Of(c.Formula()), width)
		colors[i] = seriesColors[i%len(seriesColors)]
		legend[i] = fmt.Sprintf("%s%s%s", colors[i], c.String(), asciigraph.Default)
	}

	caption := fmt.Sprintf("concentration (mol/L) over t = %g..%g s", traj.Times[0], traj.Times[traj.Len()-1])
	graph := asciigraph.PlotMany(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(colors...),
	)
	return graph + "\n" + strings.Join(legend, "  ")
}
