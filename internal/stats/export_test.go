package stats

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lamim/tsp-report/internal/results"
)

func TestExportStatistics(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(dir, "greedy")
	e.now = func() time.Time { return time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC) }

	ds := &results.InstanceDataset{
		Instance: "TSPA",
		Records: []results.RunRecord{
			record("greedy_start1", 100, 80, 20, 5),
			record("greedy_start2", 90, 70, 20, 6),
			record("regret", 110, 90, 20, 7),
		},
	}

	jsonPath, csvPath, err := e.ExportStatistics(ds)
	require.NoError(t, err)
	require.Contains(t, jsonPath, "TSPA_statistics_20240301_123045.json")
	require.Contains(t, csvPath, "TSPA_raw_data_20240301_123045.csv")

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)

	var export struct {
		Instance        string                     `json:"instance"`
		AlgorithmFolder string                     `json:"algorithm_folder"`
		Statistics      map[string]json.RawMessage `json:"statistics"`
	}
	require.NoError(t, json.Unmarshal(data, &export))
	require.Equal(t, "TSPA", export.Instance)
	require.Equal(t, "greedy", export.AlgorithmFolder)
	require.Contains(t, export.Statistics, "greedy")
	require.Contains(t, export.Statistics, "regret")

	// Single-run groups carry an undefined std, exported as null.
	require.Contains(t, string(export.Statistics["regret"]), `"std": null`)

	csvData, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(csvData)), "\n")
	require.Len(t, lines, 4) // header + 3 records
	require.Equal(t, "algorithm,base_algorithm,objective_value,path_length,node_costs,computation_time_ms", lines[0])
	require.Equal(t, "greedy_start1,greedy,100,80,20,5", lines[1])
}
