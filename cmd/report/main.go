// Package main provides the entry point for the TSP experiment report
// generator.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lamim/tsp-report/internal/config"
	"github.com/lamim/tsp-report/internal/debug"
	"github.com/lamim/tsp-report/internal/progress"
	"github.com/lamim/tsp-report/internal/report"
	"github.com/lamim/tsp-report/internal/results"
	"github.com/lamim/tsp-report/internal/stats"
	"github.com/lamim/tsp-report/internal/viz"
)

type cliFlags struct {
	algorithm  *string
	configPath *string
	resultsDir *string
	instances  *string
	outputDir  *string
	title      *string
	authors    *string
	filename   *string
	format     *string
	dpi        *int
	noProgress *bool
	debug      *bool
}

func parseFlags() *cliFlags {
	return &cliFlags{
		algorithm:  flag.String("algorithm", "", "Algorithm folder name under the results directory (e.g. greedy, local_search)"),
		configPath: flag.String("config", "", "Path to optional TOML configuration file"),
		resultsDir: flag.String("results", "", "Results directory (overrides config)"),
		instances:  flag.String("instances", "", "Comma-separated instance names (overrides config, default TSPA,TSPB)"),
		outputDir:  flag.String("output", "", "Output directory for report and images (overrides config)"),
		title:      flag.String("title", "", "Custom report title"),
		authors:    flag.String("authors", "", "Semicolon-separated author list"),
		filename:   flag.String("filename", "", "Output report filename (default TSP_<algorithm>_report.md)"),
		format:     flag.String("format", "", "Figure format: png, svg or pdf (overrides config)"),
		dpi:        flag.Int("dpi", 0, "Figure DPI for raster output (overrides config)"),
		noProgress: flag.Bool("no-progress", false, "Disable progress bar (useful for CI)"),
		debug:      flag.Bool("debug", false, "Write a JSON pipeline trace under <output>/debug"),
	}
}

func main() {
	flags := parseFlags()
	flag.Parse()

	if *flags.algorithm == "" {
		fmt.Fprintf(os.Stderr, "Error: -algorithm is required\n")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := run(*flags.algorithm, cfg, !*flags.noProgress, *flags.debug); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(flags *cliFlags) (*config.Config, error) {
	cfg := config.Default()
	if *flags.configPath != "" {
		loaded, err := config.Load(*flags.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if *flags.resultsDir != "" {
		cfg.General.ResultsDir = *flags.resultsDir
	}
	if *flags.outputDir != "" {
		cfg.General.OutputDir = *flags.outputDir
	}
	if *flags.instances != "" {
		cfg.General.Instances = splitList(*flags.instances, ",")
	}
	if *flags.title != "" {
		cfg.General.Title = *flags.title
	}
	if *flags.authors != "" {
		cfg.General.Authors = splitList(*flags.authors, ";")
	}
	if *flags.filename != "" {
		cfg.General.Filename = *flags.filename
	}
	if *flags.format != "" {
		cfg.Figure.Format = *flags.format
	}
	if *flags.dpi > 0 {
		cfg.Figure.DPI = *flags.dpi
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(algorithm string, cfg *config.Config, showProgress, debugTrace bool) error {
	outputDir := cfg.General.OutputDir
	imagesDir := filepath.Join(outputDir, "images")
	if err := os.MkdirAll(imagesDir, 0750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	tracer := debug.NewLogger(debugTrace, outputDir)
	tracer.SetFolder(algorithm)

	loader := results.NewLoader(cfg.General.ResultsDir, algorithm)
	datasets := loader.LoadAll(cfg.General.Instances, tracer)
	if len(datasets) == 0 {
		return fmt.Errorf("no data found for algorithm folder %q under %s", algorithm, cfg.General.ResultsDir)
	}

	renderCfg := viz.DefaultRenderConfig()
	renderCfg.Format = cfg.Figure.Format
	renderCfg.DPI = cfg.Figure.DPI
	renderer := viz.NewRenderer(renderCfg, imagesDir)

	totalFigures := 0
	for _, ds := range datasets {
		totalFigures += len(ds.BestSolutions)
	}
	prog := progress.NewManager(totalFigures, showProgress)

	figures := make(map[string][]report.Figure)
	perfCharts := make(map[string]string)
	for _, instance := range cfg.General.Instances {
		ds := datasets[instance]
		if ds == nil {
			continue
		}
		if len(ds.Nodes) == 0 || len(ds.BestSolutions) == 0 {
			fmt.Fprintf(os.Stderr, "No visualization data available for %s\n", instance)
		} else {
			endRender := tracer.StartStage(instance, "render", cfg.Figure.Format)
			for _, name := range sortedKeys(ds.BestSolutions) {
				trace := ds.BestSolutions[name]
				fileName, err := renderer.RenderRoute(ds, name, trace)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Warning: figure for %s/%s: %v\n", instance, name, err)
					tracer.LogError(instance, "render", err)
					continue
				}
				figures[instance] = append(figures[instance], report.Figure{
					Algorithm: name,
					FileName:  fileName,
					Trace:     trace,
				})
				prog.Step(instance, name)
			}
			endRender(map[string]int{"figures": len(figures[instance])})
		}
		if len(ds.Records) > 0 {
			chartName, err := renderer.RenderPerformance(ds)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: performance chart for %s: %v\n", instance, err)
				tracer.LogError(instance, "render", err)
			} else {
				perfCharts[instance] = chartName
			}
		}
	}
	prog.Finish()

	exporter := stats.NewExporter(outputDir, algorithm)
	for _, instance := range cfg.General.Instances {
		ds := datasets[instance]
		if ds == nil {
			continue
		}
		endExport := tracer.StartStage(instance, "export", "")
		jsonPath, csvPath, err := exporter.ExportStatistics(ds)
		endExport(nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: statistics export for %s: %v\n", instance, err)
			tracer.LogError(instance, "export", err)
			continue
		}
		fmt.Printf("Exported statistics for %s:\n  JSON: %s\n  CSV: %s\n", instance, jsonPath, csvPath)
	}

	title := cfg.General.Title
	if title == "" {
		title = fmt.Sprintf("%s algorithm for TSP Problem", displayName(algorithm))
	}
	assembler := report.NewAssembler(report.Options{
		Title:     title,
		Authors:   cfg.General.Authors,
		Instances: cfg.General.Instances,
	})
	content := assembler.Build(datasets, figures, perfCharts)

	filename := cfg.General.Filename
	if filename == "" {
		filename = fmt.Sprintf("TSP_%s_report.md", algorithm)
	}
	reportPath := filepath.Join(outputDir, filename)
	if err := assembler.Write(reportPath, content); err != nil {
		return err
	}

	printSummaryDigests(datasets, cfg.General.Instances)
	fmt.Printf("\nReport saved to: %s\n", reportPath)
	fmt.Printf("Images: %s\n", imagesDir)

	if err := tracer.Finalize(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: debug trace: %v\n", err)
	} else if tracer.IsEnabled() {
		fmt.Printf("Debug trace: %s\n", tracer.SessionPath())
	}
	return nil
}

// printSummaryDigests echoes the externally computed per-algorithm digest
// when an instance shipped one.
func printSummaryDigests(datasets map[string]*results.InstanceDataset, instances []string) {
	for _, instance := range instances {
		ds := datasets[instance]
		if ds == nil || ds.Summary == nil || len(ds.Summary.AlgorithmStatistics) == 0 {
			continue
		}
		fmt.Printf("\nAlgorithm statistics for %s:\n", instance)
		fmt.Printf("%-24s %-6s %-10s %-10s %-10s %s\n", "Algorithm", "Runs", "Min", "Max", "Average", "Validated")
		for _, name := range sortedKeys(ds.Summary.AlgorithmStatistics) {
			s := ds.Summary.AlgorithmStatistics[name]
			validated := "NO"
			if s.BestSolutionValidated {
				validated = "YES"
			}
			fmt.Printf("%-24s %-6d %-10.2f %-10.2f %-10.2f %s\n",
				name, s.TotalRuns, s.MinObjective, s.MaxObjective, s.AvgObjective, validated)
		}
	}
}

// displayName turns an algorithm folder name into a report title fragment.
func displayName(folder string) string {
	known := map[string]string{
		"greedy":          "Greedy",
		"regret":          "Regret",
		"local_search":    "Local Search",
		"candidate_moves": "Candidate Moves",
	}
	if name, ok := known[folder]; ok {
		return name
	}
	words := strings.Split(strings.ReplaceAll(folder, "_", " "), " ")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func splitList(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
