// Package results loads raw per-instance experiment files into in-memory
// datasets and provides the canonical algorithm naming used by every
// downstream consumer.
package results

// RunRecord is a single executed run as written by the experiment runner.
// ObjectiveValue is the sum of PathLength and NodeCosts up to floating
// accumulation error.
type RunRecord struct {
	Algorithm         string  `json:"algorithm"`
	ObjectiveValue    float64 `json:"objective_value"`
	PathLength        float64 `json:"path_length"`
	NodeCosts         float64 `json:"node_costs"`
	ComputationTimeMS float64 `json:"computation_time_ms"`
}

// Node is one problem node with its externally supplied selection cost.
type Node struct {
	ID   int     `json:"id"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Cost float64 `json:"cost"`
}

// SolutionTrace is the best-found solution retained per algorithm for
// visualization. Route is an open node-id sequence; the cycle is closed by
// returning to the first node. IsValidated and ValidationReport reproduce the
// upstream validator's verdict verbatim.
type SolutionTrace struct {
	Route            []int   `json:"route"`
	SelectedNodes    []int   `json:"selected_nodes"`
	ObjectiveValue   float64 `json:"objective_value"`
	PathLength       float64 `json:"path_length"`
	NodeCosts        float64 `json:"node_costs"`
	IsValidated      bool    `json:"is_validated"`
	ValidationReport string  `json:"validation_report"`
}

// AlgorithmStats is one entry of the externally computed summary digest.
type AlgorithmStats struct {
	TotalRuns             int     `json:"total_runs"`
	MinObjective          float64 `json:"min_objective"`
	MaxObjective          float64 `json:"max_objective"`
	AvgObjective          float64 `json:"avg_objective"`
	BestSolutionValidated bool    `json:"best_solution_validated"`
}

// SummaryDigest mirrors the optional <instance>_summary.json file.
type SummaryDigest struct {
	AlgorithmStatistics map[string]AlgorithmStats `json:"algorithm_statistics"`
}

// InstanceDataset is everything loaded for one problem instance. It is built
// once per load and treated as read-only by downstream components.
type InstanceDataset struct {
	Instance      string
	Records       []RunRecord
	Nodes         []Node
	BestSolutions map[string]SolutionTrace
	Summary       *SummaryDigest
}

// resultsFile mirrors <instance>_<folder>_results.json.
type resultsFile struct {
	Results []RunRecord `json:"results"`
}

// vizFile mirrors <instance>_visualization.json.
type vizFile struct {
	Nodes         []Node                   `json:"nodes"`
	BestSolutions map[string]SolutionTrace `json:"best_solutions"`
}
