package components

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/compozy/iconpipe/engine/core"
	"github.com/romdo/go-debounce"
)

const (
	maxBarWidth = 60
	// redraws coalesce within redrawWait but happen at least every redrawMaxWait
	redrawWait    = 30 * time.Millisecond
	redrawMaxWait = 100 * time.Millisecond
)

// ProgressBar renders run snapshots as a single self-overwriting bar line.
type ProgressBar struct {
	mu     sync.Mutex
	out    io.Writer
	label  string
	bar    progress.Model
	last   core.Snapshot
	done   bool
	redraw func()
	cancel func()
}

// NewProgressBar sizes the bar to fit termWidth next to the label and counters.
func NewProgressBar(out io.Writer, label string, termWidth int) *ProgressBar {
	width := termWidth - len(label) - 24
	width = max(10, min(width, maxBarWidth))
	p := &ProgressBar{
		out:   out,
		label: label,
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(width),
			progress.WithoutPercentage(),
		),
	}
	p.redraw, p.cancel = debounce.NewWithMaxWait(redrawWait, redrawMaxWait, p.draw)
	return p
}

// Line renders the bar for s without writing it.
func (p *ProgressBar) Line(s core.Snapshot) string {
	return fmt.Sprintf("%s %s %s", p.label, p.bar.ViewAs(s.Percent()/100), s)
}

func (p *ProgressBar) draw() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done {
		return
	}
	fmt.Fprintf(p.out, "\r%s", p.Line(p.last))
}

func (p *ProgressBar) Report(s core.Snapshot) {
	p.mu.Lock()
	p.last = s
	p.mu.Unlock()
	p.redraw()
}

// Done stops pending redraws and prints the final state on its own line.
func (p *ProgressBar) Done(s core.Snapshot) {
	p.cancel()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done = true
	fmt.Fprintf(p.out, "\r%s\n", p.Line(s))
}
