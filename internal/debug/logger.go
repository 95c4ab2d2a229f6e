// Package debug records a per-run trace of the report pipeline for
// troubleshooting. When enabled it captures stage timings, warnings and
// errors per instance and writes them as JSON next to the report.
package debug

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger collects trace data for one generator run. The zero-value disabled
// logger is safe to call from anywhere; every method is a no-op then.
type Logger struct {
	mu        sync.Mutex
	enabled   bool
	outputDir string
	session   *Session
}

// Session is the whole trace written to session.json.
type Session struct {
	StartTime       time.Time               `json:"start_time"`
	EndTime         *time.Time              `json:"end_time,omitempty"`
	AlgorithmFolder string                  `json:"algorithm_folder"`
	Instances       map[string]*InstanceLog `json:"instances"`
}

// InstanceLog holds the trace of one instance through the pipeline.
type InstanceLog struct {
	Instance string     `json:"instance"`
	Stages   []StageLog `json:"stages"`
	Errors   []ErrorLog `json:"errors"`
}

// StageLog records one pipeline stage (load, render, export) with timing.
type StageLog struct {
	Stage     string         `json:"stage"`
	Detail    string         `json:"detail,omitempty"`
	StartTime time.Time      `json:"start_time"`
	Duration  time.Duration  `json:"duration"`
	Counts    map[string]int `json:"counts,omitempty"`
}

// ErrorLog captures a warning or error with its pipeline context.
type ErrorLog struct {
	Timestamp time.Time `json:"timestamp"`
	Stage     string    `json:"stage"`
	Message   string    `json:"message"`
}

// NewLogger creates a trace logger. Disabled loggers never touch the
// filesystem.
func NewLogger(enabled bool, outputDir string) *Logger {
	return &Logger{
		enabled:   enabled,
		outputDir: outputDir,
		session: &Session{
			StartTime: time.Now(),
			Instances: make(map[string]*InstanceLog),
		},
	}
}

// IsEnabled reports whether tracing is on.
func (l *Logger) IsEnabled() bool {
	return l != nil && l.enabled
}

// SetFolder records which algorithm folder this run processes.
func (l *Logger) SetFolder(folder string) {
	if !l.IsEnabled() {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.session.AlgorithmFolder = folder
}

// StartStage begins timing a stage for an instance. The returned func ends
// the stage and attaches optional item counts.
func (l *Logger) StartStage(instance, stage, detail string) func(counts map[string]int) {
	if !l.IsEnabled() {
		return func(map[string]int) {}
	}
	start := time.Now()
	return func(counts map[string]int) {
		l.mu.Lock()
		defer l.mu.Unlock()
		log := l.instanceLog(instance)
		log.Stages = append(log.Stages, StageLog{
			Stage:     stage,
			Detail:    detail,
			StartTime: start,
			Duration:  time.Since(start),
			Counts:    counts,
		})
	}
}

// LogError attaches a warning or error to an instance's trace.
func (l *Logger) LogError(instance, stage string, err error) {
	if !l.IsEnabled() || err == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	log := l.instanceLog(instance)
	log.Errors = append(log.Errors, ErrorLog{
		Timestamp: time.Now(),
		Stage:     stage,
		Message:   err.Error(),
	})
}

// instanceLog returns the log for an instance, creating it on first use.
// Callers must hold l.mu.
func (l *Logger) instanceLog(instance string) *InstanceLog {
	log, ok := l.session.Instances[instance]
	if !ok {
		log = &InstanceLog{Instance: instance}
		l.session.Instances[instance] = log
	}
	return log
}

// Finalize closes the session and writes session.json plus one file per
// instance under <outputDir>/debug.
func (l *Logger) Finalize() error {
	if !l.IsEnabled() {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.session.EndTime = &now

	debugDir := filepath.Join(l.outputDir, "debug")
	if err := os.MkdirAll(debugDir, 0750); err != nil {
		return fmt.Errorf("failed to create debug output directory: %w", err)
	}

	data, err := json.MarshalIndent(l.session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal debug session: %w", err)
	}
	if err := os.WriteFile(filepath.Join(debugDir, "session.json"), data, 0640); err != nil {
		return fmt.Errorf("failed to write debug session file: %w", err)
	}

	for instance, log := range l.session.Instances {
		data, err := json.MarshalIndent(log, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal debug trace for %s: %w", instance, err)
		}
		path := filepath.Join(debugDir, instance+".json")
		if err := os.WriteFile(path, data, 0640); err != nil {
			return fmt.Errorf("failed to write debug trace for %s: %w", instance, err)
		}
	}
	return nil
}

// SessionPath returns where the session trace will be written, or "" when
// tracing is disabled.
func (l *Logger) SessionPath() string {
	if !l.IsEnabled() {
		return ""
	}
	return filepath.Join(l.outputDir, "debug", "session.json")
}
