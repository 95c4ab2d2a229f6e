package viz

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lamim/tsp-report/internal/results"
)

func TestMarkerSizeInterpolation(t *testing.T) {
	// Costs {1,5,10}: the extremes pin the scale, the middle interpolates.
	assert.InDelta(t, 50.0, markerSize(1, 1, 10), 1e-12)
	assert.InDelta(t, 250.0, markerSize(10, 1, 10), 1e-12)
	assert.InDelta(t, 50.0+200.0*4.0/9.0, markerSize(5, 1, 10), 1e-12)
}

func TestMarkerSizeFlatRange(t *testing.T) {
	assert.Equal(t, 50.0, markerSize(7, 7, 7), "flat cost range collapses to the floor")
}

func TestRoutePointsClosesCycle(t *testing.T) {
	coords := map[int]results.Node{
		3: {ID: 3, X: 0, Y: 0},
		7: {ID: 7, X: 1, Y: 0},
		9: {ID: 9, X: 1, Y: 1},
	}
	pts, err := routePoints([]int{3, 7, 9}, coords)
	require.NoError(t, err)
	require.Len(t, pts, 4)
	assert.Equal(t, pts[0], pts[3], "closing segment returns to the first node")
	assert.Equal(t, 1.0, pts[1].X)
	assert.Equal(t, 1.0, pts[2].Y)
}

func TestRoutePointsUnknownNode(t *testing.T) {
	_, err := routePoints([]int{1}, map[int]results.Node{})
	require.Error(t, err)
}

func TestFileNameSanitization(t *testing.T) {
	r := NewRenderer(DefaultRenderConfig(), "")
	assert.Equal(t, "TSPA_local_search.png", r.FileName("TSPA", "local search"))
	assert.Equal(t, "TSPA_a_b.png", r.FileName("TSPA", "a/b"))
}

func testDataset() *results.InstanceDataset {
	return &results.InstanceDataset{
		Instance: "TSPA",
		Nodes: []results.Node{
			{ID: 0, X: 0, Y: 0, Cost: 1},
			{ID: 1, X: 100, Y: 0, Cost: 5},
			{ID: 2, X: 100, Y: 100, Cost: 10},
			{ID: 3, X: 0, Y: 100, Cost: 3},
		},
		Records: []results.RunRecord{
			{Algorithm: "greedy_start1", ObjectiveValue: 100, PathLength: 80, NodeCosts: 20, ComputationTimeMS: 5},
			{Algorithm: "greedy_start2", ObjectiveValue: 90, PathLength: 70, NodeCosts: 20, ComputationTimeMS: 6},
		},
	}
}

func TestRenderRouteWritesFigure(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer(DefaultRenderConfig(), dir)

	trace := results.SolutionTrace{
		Route:          []int{0, 1, 2},
		SelectedNodes:  []int{0, 1, 2},
		ObjectiveValue: 100,
		PathLength:     80,
		NodeCosts:      20,
		IsValidated:    true,
	}
	name, err := r.RenderRoute(testDataset(), "greedy", trace)
	require.NoError(t, err)
	require.Equal(t, "TSPA_greedy.png", name)

	info, err := os.Stat(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRenderRouteMalformedTraceStillRenders(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer(DefaultRenderConfig(), dir)

	// selected_nodes disagrees with the route; the figure is still produced
	// and the badge reflects the upstream verdict.
	trace := results.SolutionTrace{
		Route:            []int{0, 1},
		SelectedNodes:    []int{0, 1, 2},
		ObjectiveValue:   50,
		IsValidated:      false,
		ValidationReport: "selected nodes do not match route",
	}
	name, err := r.RenderRoute(testDataset(), "broken", trace)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, name))
	require.NoError(t, err)
}

func TestRenderRouteNoNodes(t *testing.T) {
	r := NewRenderer(DefaultRenderConfig(), t.TempDir())
	_, err := r.RenderRoute(&results.InstanceDataset{Instance: "TSPA"}, "greedy", results.SolutionTrace{})
	require.Error(t, err)
}

func TestRenderRouteUnsupportedFormat(t *testing.T) {
	cfg := DefaultRenderConfig()
	cfg.Format = "bmp"
	r := NewRenderer(cfg, t.TempDir())
	_, err := r.RenderRoute(testDataset(), "greedy", results.SolutionTrace{Route: []int{0}, SelectedNodes: []int{0}})
	require.Error(t, err)
}

func TestRenderPerformanceWritesChart(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer(DefaultRenderConfig(), dir)

	name, err := r.RenderPerformance(testDataset())
	require.NoError(t, err)
	require.Equal(t, "TSPA_performance.png", name)
	_, err = os.Stat(filepath.Join(dir, name))
	require.NoError(t, err)
}

func TestRenderPerformanceUniformMeans(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer(DefaultRenderConfig(), dir)

	// Two algorithms with identical means must still produce a chart.
	ds := &results.InstanceDataset{
		Instance: "TSPB",
		Records: []results.RunRecord{
			{Algorithm: "greedy", ObjectiveValue: 100, ComputationTimeMS: 5},
			{Algorithm: "regret", ObjectiveValue: 100, ComputationTimeMS: 7},
		},
	}
	name, err := r.RenderPerformance(ds)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, name))
	require.NoError(t, err)
}

func TestRenderPerformanceNoRecords(t *testing.T) {
	r := NewRenderer(DefaultRenderConfig(), t.TempDir())
	_, err := r.RenderPerformance(&results.InstanceDataset{Instance: "TSPA"})
	require.Error(t, err)
}
