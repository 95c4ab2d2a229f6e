package viz

import (
	"fmt"
	"os"
	"path/filepath"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/lamim/tsp-report/internal/results"
	"github.com/lamim/tsp-report/internal/stats"
)

// RenderPerformance writes a bar chart of mean objective value per canonical
// algorithm for one instance. Always rendered as PNG regardless of the route
// figure format.
func (r *Renderer) RenderPerformance(ds *results.InstanceDataset) (string, error) {
	series := stats.GroupByAlgorithm(ds.Records)
	if len(series) == 0 {
		return "", fmt.Errorf("instance %s has no run records to chart", ds.Instance)
	}

	bars := make([]chart.Value, 0, len(series))
	maxMean := 0.0
	for _, s := range series {
		mean := stats.Describe(s.Objectives).Mean
		if mean > maxMean {
			maxMean = mean
		}
		bars = append(bars, chart.Value{
			Label: s.Name,
			Value: mean,
		})
	}

	// The derived y-range collapses when every bar shares one value, which is
	// the normal case for a folder with a single canonical algorithm. Fix the
	// range explicitly so the chart always renders.
	yMax := 1.1 * maxMean
	if yMax <= 0 {
		yMax = 1
	}

	graph := chart.BarChart{
		Title: fmt.Sprintf("%s - Mean Objective by Algorithm", ds.Instance),
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 24},
		},
		Width:    1024,
		Height:   512,
		BarWidth: 60,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: yMax},
		},
		Bars: bars,
	}

	name := fmt.Sprintf("%s_performance.png", unsafeChars.Replace(ds.Instance))
	f, err := os.Create(filepath.Join(r.imagesDir, name))
	if err != nil {
		return "", fmt.Errorf("creating performance chart for %s: %w", ds.Instance, err)
	}
	defer f.Close()
	if err := graph.Render(chart.PNG, f); err != nil {
		return "", fmt.Errorf("rendering performance chart for %s: %w", ds.Instance, err)
	}
	return name, nil
}
