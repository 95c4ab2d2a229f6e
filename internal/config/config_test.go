package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0640))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "results", cfg.General.ResultsDir)
	assert.Equal(t, "report", cfg.General.OutputDir)
	assert.Equal(t, []string{"TSPA", "TSPB"}, cfg.General.Instances)
	assert.Equal(t, "png", cfg.Figure.Format)
	assert.Equal(t, 300, cfg.Figure.DPI)
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[general]
results_dir = "runs"
instances = ["TSPC"]
title = "Custom Report"
authors = ["Ada Lovelace"]

[figure]
format = "svg"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "runs", cfg.General.ResultsDir)
	assert.Equal(t, []string{"TSPC"}, cfg.General.Instances)
	assert.Equal(t, "Custom Report", cfg.General.Title)
	assert.Equal(t, []string{"Ada Lovelace"}, cfg.General.Authors)
	assert.Equal(t, "svg", cfg.Figure.Format)
	// Untouched fields keep their defaults.
	assert.Equal(t, "report", cfg.General.OutputDir)
	assert.Equal(t, 300, cfg.Figure.DPI)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestLoadMalformed(t *testing.T) {
	_, err := Load(writeConfig(t, "[general\n"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no instances", func(c *Config) { c.General.Instances = nil }},
		{"empty instance name", func(c *Config) { c.General.Instances = []string{"TSPA", ""} }},
		{"bad format", func(c *Config) { c.Figure.Format = "bmp" }},
		{"zero dpi", func(c *Config) { c.Figure.DPI = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
