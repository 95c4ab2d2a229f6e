// Package progress provides a terminal progress bar for the figure-rendering
// loop.
package progress

import (
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Manager wraps a progress bar that advances once per rendered figure. A
// disabled manager is a no-op, useful for CI output.
type Manager struct {
	bar *progressbar.ProgressBar
}

// NewManager creates a manager for total figures. When disabled or total is
// zero every method is a no-op.
func NewManager(total int, enabled bool) *Manager {
	m := &Manager{}
	if !enabled || total <= 0 {
		return m
	}
	m.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Rendering figures"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "|",
			BarEnd:        "|",
		}),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)
	return m
}

// Step records one completed figure and updates the description.
func (m *Manager) Step(instance, algorithm string) {
	if m.bar == nil {
		return
	}
	m.bar.Describe(fmt.Sprintf("Rendering %s/%s", instance, algorithm))
	_ = m.bar.Add(1)
}

// Finish completes the bar.
func (m *Manager) Finish() {
	if m.bar == nil {
		return
	}
	_ = m.bar.Finish()
}
