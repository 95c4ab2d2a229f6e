package results

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Loader reads per-instance result files from one algorithm folder under the
// results directory. File naming follows the experiment runner:
//
//	<dir>/<folder>/<instance>_<folder>_results.json   (required)
//	<dir>/<folder>/<instance>_visualization.json      (optional)
//	<dir>/<folder>/<instance>_summary.json            (optional)
type Loader struct {
	baseDir string
	folder  string
}

// NewLoader creates a loader rooted at baseDir for one algorithm folder.
func NewLoader(baseDir, folder string) *Loader {
	return &Loader{baseDir: baseDir, folder: folder}
}

// Load reads one instance. A missing results file is not an error: it returns
// (nil, nil) after a diagnostic so callers can skip the instance and keep the
// batch going. Malformed files are errors.
func (l *Loader) Load(instance string) (*InstanceDataset, error) {
	dir := filepath.Join(l.baseDir, l.folder)
	resultsPath := filepath.Join(dir, fmt.Sprintf("%s_%s_results.json", instance, l.folder))

	var rf resultsFile
	if ok, err := l.readJSON(resultsPath, &rf); err != nil {
		return nil, fmt.Errorf("reading results for %s: %w", instance, err)
	} else if !ok {
		log.Printf("Results file not found: %s", resultsPath)
		return nil, nil
	}

	ds := &InstanceDataset{
		Instance:      instance,
		Records:       rf.Results,
		BestSolutions: map[string]SolutionTrace{},
	}

	var vf vizFile
	if ok, err := l.readJSON(filepath.Join(dir, instance+"_visualization.json"), &vf); err != nil {
		return nil, fmt.Errorf("reading visualization payload for %s: %w", instance, err)
	} else if ok {
		ds.Nodes = vf.Nodes
		if vf.BestSolutions != nil {
			ds.BestSolutions = vf.BestSolutions
		}
	}

	var sd SummaryDigest
	if ok, err := l.readJSON(filepath.Join(dir, instance+"_summary.json"), &sd); err != nil {
		return nil, fmt.Errorf("reading summary for %s: %w", instance, err)
	} else if ok {
		ds.Summary = &sd
	}

	log.Printf("Loaded %d results for %s from %s folder", len(ds.Records), instance, l.folder)
	return ds, nil
}

// StageTracer observes per-instance pipeline stages. The debug logger
// satisfies it; a nil tracer disables observation.
type StageTracer interface {
	StartStage(instance, stage, detail string) func(counts map[string]int)
	LogError(instance, stage string, err error)
}

// LoadAll loads every requested instance independently. Per-instance failures
// are reported and skipped; an empty map signals a configuration error the
// caller must treat as fatal.
func (l *Loader) LoadAll(instances []string, tracer StageTracer) map[string]*InstanceDataset {
	datasets := make(map[string]*InstanceDataset)
	for _, instance := range instances {
		end := func(map[string]int) {}
		if tracer != nil {
			end = tracer.StartStage(instance, "load", "")
		}
		ds, err := l.Load(instance)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: skipping %s: %v\n", instance, err)
			if tracer != nil {
				tracer.LogError(instance, "load", err)
			}
			end(nil)
			continue
		}
		if ds == nil {
			end(nil)
			continue
		}
		datasets[instance] = ds
		end(map[string]int{"records": len(ds.Records), "nodes": len(ds.Nodes)})
	}
	return datasets
}

// readJSON unmarshals path into v. The boolean reports whether the file
// existed at all.
func (l *Loader) readJSON(path string, v interface{}) (bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return true, nil
}
