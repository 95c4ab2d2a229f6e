package debug

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestLoggerConcurrentStagesProduceCompleteTrace(t *testing.T) {
	outputDir := t.TempDir()
	logger := NewLogger(true, outputDir)
	logger.SetFolder("greedy")

	const stageCount = 120
	var wg sync.WaitGroup
	for i := 0; i < stageCount; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			end := logger.StartStage("TSPA", "render", fmt.Sprintf("figure-%d", i))
			if i%5 == 0 {
				logger.LogError("TSPA", "render", errors.New("transient failure"))
			}
			end(map[string]int{"figures": 1})
		}()
	}
	wg.Wait()

	if err := logger.Finalize(); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(outputDir, "debug", "TSPA.json"))
	if err != nil {
		t.Fatalf("failed reading instance trace: %v", err)
	}

	var trace InstanceLog
	if err := json.Unmarshal(raw, &trace); err != nil {
		t.Fatalf("failed parsing instance trace: %v", err)
	}
	if len(trace.Stages) != stageCount {
		t.Fatalf("expected %d stages, got %d", stageCount, len(trace.Stages))
	}
	if len(trace.Errors) != stageCount/5 {
		t.Fatalf("expected %d errors, got %d", stageCount/5, len(trace.Errors))
	}

	rawSession, err := os.ReadFile(logger.SessionPath())
	if err != nil {
		t.Fatalf("failed reading session trace: %v", err)
	}
	var session Session
	if err := json.Unmarshal(rawSession, &session); err != nil {
		t.Fatalf("failed parsing session trace: %v", err)
	}
	if session.AlgorithmFolder != "greedy" {
		t.Fatalf("expected algorithm folder greedy, got %q", session.AlgorithmFolder)
	}
	if session.EndTime == nil {
		t.Fatal("expected session end_time to be set")
	}
}

func TestDisabledLoggerIsInert(t *testing.T) {
	outputDir := t.TempDir()
	logger := NewLogger(false, outputDir)

	end := logger.StartStage("TSPA", "load", "")
	end(nil)
	logger.LogError("TSPA", "load", errors.New("ignored"))

	if err := logger.Finalize(); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "debug")); !os.IsNotExist(err) {
		t.Fatal("disabled logger must not create the debug directory")
	}
	if logger.SessionPath() != "" {
		t.Fatal("disabled logger must not report a session path")
	}
}
