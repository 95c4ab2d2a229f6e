// Package config provides configuration loading and validation for the
// report generator.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the full configuration: general report settings plus figure
// style. All fields can be overridden by CLI flags.
type Config struct {
	General GeneralConfig `toml:"general"`
	Figure  FigureConfig  `toml:"figure"`
}

// GeneralConfig contains report-level settings.
type GeneralConfig struct {
	ResultsDir string   `toml:"results_dir"`
	OutputDir  string   `toml:"output_dir"`
	Instances  []string `toml:"instances"`
	Title      string   `toml:"title"`
	Authors    []string `toml:"authors"`
	Filename   string   `toml:"filename"`
}

// FigureConfig controls figure output format and resolution.
type FigureConfig struct {
	Format string `toml:"format"`
	DPI    int    `toml:"dpi"`
}

// Default returns the built-in configuration: the standard two-instance set,
// high-DPI raster figures, results under ./results.
func Default() *Config {
	return &Config{
		General: GeneralConfig{
			ResultsDir: "results",
			OutputDir:  "report",
			Instances:  []string{"TSPA", "TSPB"},
		},
		Figure: FigureConfig{
			Format: "png",
			DPI:    300,
		},
	}
}

// Load reads and parses a TOML configuration file, filling unset fields with
// defaults and validating the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values after defaults and overrides are applied.
func (c *Config) Validate() error {
	if len(c.General.Instances) == 0 {
		return fmt.Errorf("no instances configured")
	}
	for _, instance := range c.General.Instances {
		if instance == "" {
			return fmt.Errorf("instances contains an empty name")
		}
	}
	switch c.Figure.Format {
	case "png", "svg", "pdf":
	default:
		return fmt.Errorf("figure format must be png, svg or pdf, got %q", c.Figure.Format)
	}
	if c.Figure.DPI <= 0 {
		return fmt.Errorf("figure dpi must be > 0, got %d", c.Figure.DPI)
	}
	return nil
}
