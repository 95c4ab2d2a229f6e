// Package report assembles the markdown comparison document from statistics
// tables and rendered figures.
package report

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/lamim/tsp-report/internal/results"
	"github.com/lamim/tsp-report/internal/stats"
)

// Figure references one rendered route figure and the trace it shows.
type Figure struct {
	Algorithm string
	FileName  string
	Trace     results.SolutionTrace
}

// Options controls document content and column order.
type Options struct {
	Title     string
	Authors   []string
	Instances []string
}

// Assembler builds the report document. Section order is fixed: title,
// authors, pseudocode scaffold, objective table, timing table, per-instance
// visualizations, statistical analysis, conclusions placeholders.
type Assembler struct {
	opts Options
}

// NewAssembler creates an assembler for the given options.
func NewAssembler(opts Options) *Assembler {
	return &Assembler{opts: opts}
}

// Build returns the complete markdown document. perfCharts maps instance
// names to performance-chart file names and may be nil. Every rendered figure
// must already be on disk; the document references them by relative path.
func (a *Assembler) Build(datasets map[string]*results.InstanceDataset, figures map[string][]Figure, perfCharts map[string]string) string {
	var sb strings.Builder

	sb.WriteString("# " + a.opts.Title + "\n\n")

	if len(a.opts.Authors) > 0 {
		sb.WriteString("## Authors\n")
		for _, author := range a.opts.Authors {
			sb.WriteString("- " + author + "\n")
		}
		sb.WriteString("\n")
	}

	// Intentionally empty scaffold, completed by hand after generation.
	sb.WriteString("## Implemented Algorithms\n\n")
	sb.WriteString("### Pseudocode\n\n")
	sb.WriteString("```\n# TODO: Add algorithm pseudocode here\n```\n\n")
	sb.WriteString("---\n\n")

	sb.WriteString("## Experiment Results\n\n")
	sb.WriteString("### Objective function\n\n")
	sb.WriteString(a.comparisonTable(datasets, objectiveSample, stats.ObjectiveCell))
	sb.WriteString("\n---\n\n")
	sb.WriteString("### Computation Times (ms)\n\n")
	sb.WriteString(a.comparisonTable(datasets, timeSample, stats.TimeCell))
	sb.WriteString("\n")

	sb.WriteString(a.visualizationSections(figures, perfCharts))
	sb.WriteString(a.statisticalAnalysis(datasets))

	sb.WriteString("---\n\n")
	sb.WriteString("## Conclusions\n\n")
	sb.WriteString("### Key Findings\n\n<!-- TODO: Add analysis of results -->\n\n")
	sb.WriteString("### Performance Comparison\n\n<!-- TODO: Compare algorithms -->\n\n")
	sb.WriteString("### Observations\n\n<!-- TODO: Add observations -->\n")

	return sb.String()
}

// Write stores the document. Callers invoke this only after all referenced
// figures are flushed so the report never dangles an image reference.
func (a *Assembler) Write(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0640); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

func objectiveSample(s stats.Series) []float64 { return s.Objectives }
func timeSample(s stats.Series) []float64      { return s.Times }

// comparisonTable renders one algorithm-by-instance table. Rows are canonical
// algorithm names sorted lexicographically; columns follow the requested
// instance order; absent pairs render as N/A rather than being dropped.
func (a *Assembler) comparisonTable(datasets map[string]*results.InstanceDataset, sample func(stats.Series) []float64, cell func(stats.Descriptive) string) string {
	cells := make(map[string]map[string]string)
	for _, instance := range a.opts.Instances {
		ds := datasets[instance]
		if ds == nil {
			continue
		}
		for _, s := range stats.GroupByAlgorithm(ds.Records) {
			if cells[s.Name] == nil {
				cells[s.Name] = make(map[string]string)
			}
			cells[s.Name][instance] = cell(stats.Describe(sample(s)))
		}
	}

	names := make([]string, 0, len(cells))
	for name := range cells {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("| Algorithm | " + strings.Join(a.opts.Instances, " | ") + " |\n")
	sb.WriteString("|" + strings.Repeat("---|", len(a.opts.Instances)+1) + "\n")
	for _, name := range names {
		row := []string{name}
		for _, instance := range a.opts.Instances {
			c, ok := cells[name][instance]
			if !ok {
				c = stats.MissingCell
			}
			row = append(row, c)
		}
		sb.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}
	return sb.String()
}

// visualizationSections lists every rendered figure per instance with the
// route spelled out beneath it.
func (a *Assembler) visualizationSections(figures map[string][]Figure, perfCharts map[string]string) string {
	var sb strings.Builder
	sb.WriteString("## 2D Visualization of Best Solution\n\n")
	for _, instance := range a.opts.Instances {
		figs := figures[instance]
		perf := perfCharts[instance]
		if len(figs) == 0 && perf == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf("### Instance: %s\n\n", instance))
		for _, fig := range figs {
			sb.WriteString(fmt.Sprintf("#### %s\n\n", fig.Algorithm))
			sb.WriteString(fmt.Sprintf("![%s](images/%s)\n\n", fig.Algorithm, fig.FileName))
			sb.WriteString("**Node Order (Route):**\n")
			sb.WriteString(joinRoute(fig.Trace.Route) + "\n\n")
		}
		if perf != "" {
			sb.WriteString("#### Performance Overview\n\n")
			sb.WriteString(fmt.Sprintf("![performance](images/%s)\n\n", perf))
		}
	}
	return sb.String()
}

// statisticalAnalysis renders the per-instance appendix: descriptive table,
// pairwise t-tests, ANOVA, ranking, and improvement-over-best figures.
func (a *Assembler) statisticalAnalysis(datasets map[string]*results.InstanceDataset) string {
	var sb strings.Builder
	wroteHeader := false
	for _, instance := range a.opts.Instances {
		ds := datasets[instance]
		if ds == nil {
			continue
		}
		series := stats.GroupByAlgorithm(ds.Records)
		if len(series) == 0 {
			continue
		}
		if !wroteHeader {
			sb.WriteString("## Statistical Analysis\n\n")
			wroteHeader = true
		}
		sb.WriteString(fmt.Sprintf("### %s\n\n", instance))

		sb.WriteString("| Algorithm | Count | Mean | Std | Min | Max | Q1 | Q3 | CV % |\n")
		sb.WriteString("|---|---|---|---|---|---|---|---|---|\n")
		for _, s := range series {
			d := stats.Describe(s.Objectives)
			sb.WriteString(fmt.Sprintf("| %s | %d | %.2f | %s | %.2f | %.2f | %.2f | %.2f | %s |\n",
				s.Name, d.Count, d.Mean, naFloat(d.Std), d.Min, d.Max, d.Q1, d.Q3, naFloat(d.CVPercent)))
		}
		sb.WriteString("\n")

		if len(series) > 1 {
			sb.WriteString("**Pairwise t-tests (objective value):**\n\n")
			for i := 0; i < len(series); i++ {
				for j := i + 1; j < len(series); j++ {
					res := stats.TTest(series[i].Objectives, series[j].Objectives)
					sb.WriteString(fmt.Sprintf("- %s vs %s: t=%s, p=%s %s\n",
						series[i].Name, series[j].Name,
						naFloatPrec(res.Statistic, 3), naFloatPrec(res.PValue, 6),
						stats.Significance(res.PValue)))
				}
			}

			groups := make([][]float64, len(series))
			for i, s := range series {
				groups[i] = s.Objectives
			}
			an := stats.OneWayANOVA(groups)
			significant := "No"
			if an.Significant {
				significant = "Yes"
			}
			sb.WriteString(fmt.Sprintf("\n**ANOVA:** F=%s, p=%s (significant at 0.05: %s)\n\n",
				naFloatPrec(an.Statistic, 3), naFloatPrec(an.PValue, 6), significant))
		}

		ranking := stats.Rank(series)
		sb.WriteString("**Performance Ranking:**\n\n")
		sb.WriteString("| Rank | Algorithm | Mean Objective | Best Objective | Mean Time (ms) |\n")
		sb.WriteString("|---|---|---|---|---|\n")
		for _, e := range ranking {
			sb.WriteString(fmt.Sprintf("| %d | %s | %.2f | %.2f | %.2f |\n",
				e.Rank, e.Algorithm, e.MeanObjective, e.BestObjective, e.MeanTimeMS))
		}
		if len(ranking) > 1 {
			improvements := stats.ImprovementOverBest(ranking)
			sb.WriteString(fmt.Sprintf("\nBest algorithm: %s (avg: %.2f)\n\n", ranking[0].Algorithm, ranking[0].MeanObjective))
			for _, e := range ranking[1:] {
				sb.WriteString(fmt.Sprintf("- vs %s: %.1f%% improvement\n", e.Algorithm, improvements[e.Algorithm]))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func joinRoute(route []int) string {
	parts := make([]string, len(route))
	for i, id := range route {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ", ")
}

// naFloat renders NaN as N/A, everything else with two decimals.
func naFloat(v float64) string {
	return naFloatPrec(v, 2)
}

func naFloatPrec(v float64, prec int) string {
	if math.IsNaN(v) {
		return stats.MissingCell
	}
	return fmt.Sprintf("%.*f", prec, v)
}
