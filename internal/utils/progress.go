package utils

import (
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// progressSteps is the resolution of the terminal bar
const progressSteps = 1000

// RunProgress draws a reconstruction's progress on a terminal. Report may
// be called from the engine goroutine.
type RunProgress struct {
	mu       sync.Mutex
	bar      *progressbar.ProgressBar
	last     int
	finished bool
}

// NewRunProgress creates a progress bar writing to w
func NewRunProgress(w io.Writer, description string) *RunProgress {
	bar := progressbar.NewOptions(progressSteps,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
	)
	return &RunProgress{bar: bar}
}

// Report moves the bar to fraction. The bar never moves backwards.
func (p *RunProgress) Report(fraction float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.finished {
		return
	}
	n := int(min(max(fraction, 0), 1) * progressSteps)
	if n <= p.last {
		return
	}
	p.last = n
	_ = p.bar.Set(n)
}

// Value returns the last reported position in [0, 1]
func (p *RunProgress) Value() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return float64(p.last) / progressSteps
}

// Finish completes the bar after a successful run
func (p *RunProgress) Finish() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.finished {
		return nil
	}
	p.finished = true
	p.last = progressSteps
	return p.bar.Finish()
}

// Stop leaves the bar where it is and ends the line
func (p *RunProgress) Stop(reason string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.finished {
		return
	}
	p.finished = true
	p.bar.Describe(reason)
	_ = p.bar.RenderBlank()
}
