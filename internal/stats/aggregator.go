// Package stats computes descriptive and inferential statistics over run
// records grouped by canonical algorithm name.
package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/lamim/tsp-report/internal/results"
)

// MissingCell is rendered for algorithm/instance pairs with no data.
const MissingCell = "N/A"

// Descriptive summarizes one objective or timing sample. Std and CVPercent
// are NaN for degenerate samples (fewer than two runs, zero mean).
type Descriptive struct {
	Count     int
	Mean      float64
	Std       float64
	Min       float64
	Max       float64
	Q1        float64
	Q3        float64
	CVPercent float64
}

// Series holds one canonical algorithm's samples within a single instance.
type Series struct {
	Name       string
	Objectives []float64
	Times      []float64
}

// TestResult is a two-sample comparison outcome.
type TestResult struct {
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
}

// ANOVAResult is a one-way analysis of variance outcome.
type ANOVAResult struct {
	Statistic   float64 `json:"statistic"`
	PValue      float64 `json:"p_value"`
	Significant bool    `json:"significant"`
}

// RankEntry is one row of a per-instance performance ranking.
type RankEntry struct {
	Rank          int     `json:"rank"`
	Algorithm     string  `json:"algorithm"`
	MeanObjective float64 `json:"mean_objective"`
	StdObjective  float64 `json:"std_objective"`
	BestObjective float64 `json:"best_objective"`
	MeanTimeMS    float64 `json:"mean_time_ms"`
}

// GroupByAlgorithm groups run records into canonical algorithm series, sorted
// by name for deterministic downstream output. The input is not modified.
func GroupByAlgorithm(records []results.RunRecord) []Series {
	byName := make(map[string]*Series)
	for _, r := range records {
		name := results.CanonicalName(r.Algorithm)
		s, ok := byName[name]
		if !ok {
			s = &Series{Name: name}
			byName[name] = s
		}
		s.Objectives = append(s.Objectives, r.ObjectiveValue)
		s.Times = append(s.Times, r.ComputationTimeMS)
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	series := make([]Series, 0, len(names))
	for _, name := range names {
		series = append(series, *byName[name])
	}
	return series
}

// Describe computes descriptive statistics for a sample. Quartiles use
// type-7 linear interpolation between closest ranks.
func Describe(sample []float64) Descriptive {
	if len(sample) == 0 {
		return Descriptive{}
	}
	sorted := make([]float64, len(sample))
	copy(sorted, sample)
	sort.Float64s(sorted)

	d := Descriptive{
		Count: len(sorted),
		Mean:  stat.Mean(sorted, nil),
		Std:   stat.StdDev(sorted, nil),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
		Q1:    quantile(0.25, sorted),
		Q3:    quantile(0.75, sorted),
	}
	if d.Mean == 0 {
		d.CVPercent = math.NaN()
	} else {
		d.CVPercent = d.Std / d.Mean * 100
	}
	return d
}

// quantile computes the type-7 quantile of a sorted sample: the rank
// h = (n-1)p interpolated linearly between its neighbouring order statistics.
// gonum's stat.Quantile offers no CumulantKind with these semantics.
func quantile(p float64, sorted []float64) float64 {
	h := p * float64(len(sorted)-1)
	i := int(math.Floor(h))
	if i >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (h-float64(i))*(sorted[i+1]-sorted[i])
}

// TTest runs an independent two-sample Student's t-test with pooled variance.
// Either sample having fewer than two observations yields NaN results rather
// than an error: single-run groups simply cannot support the comparison.
func TTest(a, b []float64) TestResult {
	if len(a) < 2 || len(b) < 2 {
		return TestResult{Statistic: math.NaN(), PValue: math.NaN()}
	}
	n1, n2 := float64(len(a)), float64(len(b))
	m1, m2 := stat.Mean(a, nil), stat.Mean(b, nil)
	v1, v2 := stat.Variance(a, nil), stat.Variance(b, nil)

	df := n1 + n2 - 2
	pooled := ((n1-1)*v1 + (n2-1)*v2) / df
	se := math.Sqrt(pooled * (1/n1 + 1/n2))
	t := (m1 - m2) / se

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return TestResult{Statistic: t, PValue: 2 * dist.Survival(math.Abs(t))}
}

// Significance buckets a p-value into the conventional symbols.
func Significance(p float64) string {
	switch {
	case p < 0.001:
		return "***"
	case p < 0.01:
		return "**"
	case p < 0.05:
		return "*"
	default:
		return "ns"
	}
}

// OneWayANOVA compares the means of all groups at once. Fewer than two groups
// or no residual degrees of freedom yields NaN statistics.
func OneWayANOVA(groups [][]float64) ANOVAResult {
	k := len(groups)
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	if k < 2 || total <= k {
		return ANOVAResult{Statistic: math.NaN(), PValue: math.NaN()}
	}

	var grandSum float64
	for _, g := range groups {
		for _, v := range g {
			grandSum += v
		}
	}
	grandMean := grandSum / float64(total)

	var ssBetween, ssWithin float64
	for _, g := range groups {
		m := stat.Mean(g, nil)
		ssBetween += float64(len(g)) * (m - grandMean) * (m - grandMean)
		for _, v := range g {
			ssWithin += (v - m) * (v - m)
		}
	}

	msBetween := ssBetween / float64(k-1)
	msWithin := ssWithin / float64(total-k)
	f := msBetween / msWithin

	dist := distuv.F{D1: float64(k - 1), D2: float64(total - k)}
	p := dist.Survival(f)
	return ANOVAResult{Statistic: f, PValue: p, Significant: p < 0.05}
}

// Rank orders algorithms by ascending mean objective (lower is better). Ties
// break by ascending standard deviation, then lexicographic name.
func Rank(series []Series) []RankEntry {
	entries := make([]RankEntry, 0, len(series))
	for _, s := range series {
		d := Describe(s.Objectives)
		entries = append(entries, RankEntry{
			Algorithm:     s.Name,
			MeanObjective: d.Mean,
			StdObjective:  d.Std,
			BestObjective: d.Min,
			MeanTimeMS:    stat.Mean(s.Times, nil),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].MeanObjective != entries[j].MeanObjective {
			return entries[i].MeanObjective < entries[j].MeanObjective
		}
		si, sj := sortableStd(entries[i].StdObjective), sortableStd(entries[j].StdObjective)
		if si != sj {
			return si < sj
		}
		return entries[i].Algorithm < entries[j].Algorithm
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// sortableStd keeps the ordering total when single-run groups carry a NaN
// standard deviation.
func sortableStd(std float64) float64 {
	if math.IsNaN(std) {
		return math.Inf(1)
	}
	return std
}

// ImprovementOverBest reports, for every non-best algorithm, the percentage
// saved by the best algorithm relative to the weaker algorithm's own mean:
// (mean - best) / mean * 100. The division by the weaker mean matches the
// established reporting convention for these experiments.
func ImprovementOverBest(ranking []RankEntry) map[string]float64 {
	improvements := make(map[string]float64)
	if len(ranking) < 2 {
		return improvements
	}
	best := ranking[0].MeanObjective
	for _, e := range ranking[1:] {
		improvements[e.Algorithm] = (e.MeanObjective - best) / e.MeanObjective * 100
	}
	return improvements
}

// ObjectiveCell formats an objective-value table cell.
func ObjectiveCell(d Descriptive) string {
	return fmt.Sprintf("%.2f (%.2f - %.2f)", d.Mean, d.Min, d.Max)
}

// TimeCell formats a computation-time table cell. Bounds are rendered as
// integers; the runs are not sub-millisecond-meaningful.
func TimeCell(d Descriptive) string {
	return fmt.Sprintf("%.2f (%.0f - %.0f)", d.Mean, d.Min, d.Max)
}
