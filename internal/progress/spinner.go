// Package progress shows a spinner on stderr while the archive downloads.
package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/term"
)

// Indicator reports progress of a long-running step.
type Indicator interface {
	Start(msg string)
	Update(current, total int64)
	Stop()
}

// New returns a spinner when stderr is a terminal and a silent indicator otherwise,
// so redirected output stays free of control sequences.
func New() Indicator {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return Silent{}
	}
	return NewSpinner(os.Stderr)
}

// Spinner is an Indicator backed by briandowns/spinner.
type Spinner struct {
	s   *spinner.Spinner
	msg string
}

// NewSpinner creates a spinner writing to w.
func NewSpinner(w io.Writer) *Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	return &Spinner{s: s}
}

// Start shows the spinner with msg next to it.
func (p *Spinner) Start(msg string) {
	p.msg = msg
	p.s.Suffix = " " + msg
	p.s.Start()
}

// Update shows the bytes received so far; total is -1 when unknown.
func (p *Spinner) Update(current, total int64) {
	p.s.Lock()
	defer p.s.Unlock()
	if total > 0 {
		p.s.Suffix = fmt.Sprintf(" %s %s / %s", p.msg, humanBytes(current), humanBytes(total))
		return
	}
	p.s.Suffix = fmt.Sprintf(" %s %s", p.msg, humanBytes(current))
}

// Stop halts the spinner and clears its line.
func (p *Spinner) Stop() {
	p.s.Stop()
}

// Silent discards progress.
type Silent struct{}

func (Silent) Start(string)        {}
func (Silent) Update(int64, int64) {}
func (Silent) Stop()               {}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
