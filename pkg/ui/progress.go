package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// BatchProgress prints a one-line progress bar while a batch runs and a
// summary when it ends
type BatchProgress struct {
	mu        sync.Mutex
	out       io.Writer
	label     string
	total     int
	done      int
	failed    int
	current   string
	startTime time.Time
	verbose   bool
}

// NewBatchProgress creates a progress display for label. In verbose mode
// every entry gets its own line instead of redrawing the bar.
func NewBatchProgress(label string, verbose bool) *BatchProgress {
	return &BatchProgress{
		out:     Output,
		label:   label,
		verbose: verbose,
	}
}

// Started resets the display for a batch of total entries
func (p *BatchProgress) Started(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.done = 0
	p.failed = 0
	p.startTime = time.Now()
}

// Completed records one finished entry
func (p *BatchProgress) Completed(name string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	p.current = name
	if err != nil {
		p.failed++
	}

	if quiet {
		return
	}
	if p.verbose {
		if err != nil {
			fmt.Fprintf(p.out, "%s %s - %v\n", Red("✗"), name, err)
		} else {
			fmt.Fprintf(p.out, "%s %s\n", Green("✓"), name)
		}
		return
	}
	p.printProgress()
}

// Finished prints the summary line
func (p *BatchProgress) Finished(succeeded, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if quiet {
		return
	}

	elapsed := time.Since(p.startTime)
	if !p.verbose && p.total > 0 {
		fmt.Fprintln(p.out)
	}
	fmt.Fprintf(p.out, "%s %s: %d stored, %d failed in %s\n",
		Green("✓"),
		p.label,
		succeeded,
		failed,
		formatDuration(elapsed),
	)
}

// Line returns the current progress line without drawing it
func (p *BatchProgress) Line() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.line()
}

func (p *BatchProgress) printProgress() {
	fmt.Fprintf(p.out, "\r%s\r%s", strings.Repeat(" ", 100), p.line())
}

func (p *BatchProgress) line() string {
	progress := 0.0
	if p.total > 0 {
		progress = float64(p.done) / float64(p.total)
	}
	barWidth := 20
	filled := int(progress * float64(barWidth))
	bar := strings.Repeat("━", filled) + strings.Repeat("─", barWidth-filled)

	line := fmt.Sprintf("%s [%s] %d/%d", Cyan(p.label), bar, p.done, p.total)
	if p.current != "" {
		line += fmt.Sprintf(" • %s", p.current)
	}
	if p.failed > 0 {
		line += fmt.Sprintf(" • %s", Red(fmt.Sprintf("%d failed", p.failed)))
	}
	return line
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
