package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/mem"

	"github.com/lamim/tsp-report/internal/results"
)

// SysInfo records the machine the export was produced on.
type SysInfo struct {
	Platform string `json:"platform"`
	CPU      string `json:"cpu"`
	RAM      string `json:"ram"`
}

// Exporter writes per-instance statistical digests (JSON) and raw run-record
// dumps (CSV). File names carry a timestamp so repeated runs never collide.
type Exporter struct {
	outputDir string
	folder    string
	now       func() time.Time
}

// NewExporter creates an exporter writing into outputDir for one algorithm
// folder.
func NewExporter(outputDir, folder string) *Exporter {
	return &Exporter{outputDir: outputDir, folder: folder, now: time.Now}
}

// jsonFloat marshals NaN as null; encoding/json rejects NaN outright.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(f)) {
		return []byte("null"), nil
	}
	return json.Marshal(float64(f))
}

type exportedDescriptive struct {
	Count     int       `json:"count"`
	Mean      jsonFloat `json:"mean"`
	Std       jsonFloat `json:"std"`
	Min       jsonFloat `json:"min"`
	Max       jsonFloat `json:"max"`
	Q1        jsonFloat `json:"q1"`
	Q3        jsonFloat `json:"q3"`
	CVPercent jsonFloat `json:"cv_percent"`
}

type statisticsExport struct {
	Instance        string                         `json:"instance"`
	AlgorithmFolder string                         `json:"algorithm_folder"`
	ExportTimestamp string                         `json:"export_timestamp"`
	System          SysInfo                        `json:"system"`
	Statistics      map[string]exportedDescriptive `json:"statistics"`
}

// ExportStatistics writes the statistics JSON and raw CSV for one instance
// and returns both paths.
func (e *Exporter) ExportStatistics(ds *results.InstanceDataset) (jsonPath, csvPath string, err error) {
	timestamp := e.now().Format("20060102_150405")

	export := statisticsExport{
		Instance:        ds.Instance,
		AlgorithmFolder: e.folder,
		ExportTimestamp: timestamp,
		System:          collectSysInfo(),
		Statistics:      make(map[string]exportedDescriptive),
	}
	for _, s := range GroupByAlgorithm(ds.Records) {
		d := Describe(s.Objectives)
		export.Statistics[s.Name] = exportedDescriptive{
			Count:     d.Count,
			Mean:      jsonFloat(d.Mean),
			Std:       jsonFloat(d.Std),
			Min:       jsonFloat(d.Min),
			Max:       jsonFloat(d.Max),
			Q1:        jsonFloat(d.Q1),
			Q3:        jsonFloat(d.Q3),
			CVPercent: jsonFloat(d.CVPercent),
		}
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("marshaling statistics for %s: %w", ds.Instance, err)
	}
	jsonPath = filepath.Join(e.outputDir, fmt.Sprintf("%s_statistics_%s.json", ds.Instance, timestamp))
	if err := os.WriteFile(jsonPath, data, 0640); err != nil {
		return "", "", fmt.Errorf("writing statistics for %s: %w", ds.Instance, err)
	}

	csvPath = filepath.Join(e.outputDir, fmt.Sprintf("%s_raw_data_%s.csv", ds.Instance, timestamp))
	if err := e.writeRawCSV(csvPath, ds.Records); err != nil {
		return "", "", err
	}
	return jsonPath, csvPath, nil
}

// writeRawCSV dumps every run record with its canonical name appended.
func (e *Exporter) writeRawCSV(path string, records []results.RunRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating raw data export: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"algorithm", "base_algorithm", "objective_value", "path_length", "node_costs", "computation_time_ms"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.Algorithm,
			results.CanonicalName(r.Algorithm),
			formatFloat(r.ObjectiveValue),
			formatFloat(r.PathLength),
			formatFloat(r.NodeCosts),
			formatFloat(r.ComputationTimeMS),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// collectSysInfo gathers host details best-effort; a probe failure leaves the
// corresponding field empty rather than failing the export.
func collectSysInfo() SysInfo {
	var info SysInfo
	if hostStat, err := host.Info(); err == nil {
		info.Platform = hostStat.Platform
	}
	if cpuStat, err := cpu.Info(); err == nil && len(cpuStat) > 0 {
		info.CPU = cpuStat[0].ModelName
	}
	if vmStat, err := mem.VirtualMemory(); err == nil {
		info.RAM = fmt.Sprintf("%d GB", vmStat.Total/1024/1024/1024)
	}
	return info
}
