// Package progress renders a row counter on stderr while data is streamed.
package progress

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/johndauphine/sqlcsv/internal/logging"
)

// Tracker tracks transfer progress. A Tracker without an output still counts
// rows but draws nothing.
type Tracker struct {
	bar         *progressbar.ProgressBar
	out         io.Writer
	description string
	total       int64
	current     atomic.Int64
	startTime   time.Time
}

// New creates a new progress tracker drawing on out. A nil out disables the
// bar.
func New(out io.Writer, description string) *Tracker {
	return &Tracker{
		out:         out,
		description: description,
		total:       -1,
		startTime:   time.Now(),
	}
}

// SetTotal sets the total number of rows to transfer. A negative total shows
// a spinner instead of a bar.
func (t *Tracker) SetTotal(total int64) {
	t.total = total
	if t.out == nil {
		return
	}
	t.bar = progressbar.NewOptions64(
		total,
		progressbar.OptionSetWriter(t.out),
		progressbar.OptionSetDescription(t.description),
		progressbar.OptionShowBytes(false),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("rows"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// Add increments the progress counter
func (t *Tracker) Add(n int64) {
	t.current.Add(n)
	if t.bar != nil {
		_ = t.bar.Add64(n)
	}
}

// Current returns the current count
func (t *Tracker) Current() int64 {
	return t.current.Load()
}

// Total returns the expected total, or -1 when unknown.
func (t *Tracker) Total() int64 {
	return t.total
}

// Finish completes the bar and logs the totals.
func (t *Tracker) Finish() time.Duration {
	if t.bar != nil {
		_ = t.bar.Finish()
		fmt.Fprintln(t.out)
	}

	elapsed := time.Since(t.startTime)
	rows := t.current.Load()
	rowsPerSec := 0.0
	if secs := elapsed.Seconds(); secs > 0 {
		rowsPerSec = float64(rows) / secs
	}
	logging.Info("%s: %d rows in %s (%.0f rows/sec)",
		t.description, rows, elapsed.Round(time.Millisecond), rowsPerSec)
	return elapsed
}
