package viz

import (
	"github.com/guptarohit/asciigraph"
)

// GrowthChart renders a dry-weight series as a terminal chart. Fewer
// than two samples yields an empty string.
func GrowthChart(weights []float64, width, height int, caption string) string {
	if len(weights) < 2 {
		return ""
	}
	return asciigraph.Plot(weights,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption))
}

// CompareChart overlays several dry-weight series in one chart, one
// color per series in the order given.
func CompareChart(series [][]float64, width, height int, caption string) string {
	plottable := make([][]float64, 0, len(series))
	for _, s := range series {
		if len(s) >= 2 {
			plottable = append(plottable, s)
		}
	}
	if len(plottable) == 0 {
		return ""
	}
	return asciigraph.PlotMany(plottable,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(asciigraph.Green, asciigraph.Yellow, asciigraph.Red, asciigraph.Blue))
}
