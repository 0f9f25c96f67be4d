package helpers

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/compozy/iconpipe/engine/core"
	"github.com/tidwall/pretty"
	"golang.org/x/term"
)

const defaultTerminalWidth = 80

// LineReporter prints one progress line per processed item.
type LineReporter struct {
	mu  sync.Mutex
	out io.Writer
}

func NewLineReporter(out io.Writer) *LineReporter {
	return &LineReporter{out: out}
}

func (r *LineReporter) Report(s core.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "Progress: %s\n", s)
}

func (r *LineReporter) Done(core.Snapshot) {}

// WriteJSON writes v as indented JSON, colorized when color is set.
func WriteJSON(out io.Writer, v any, color bool) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	data = pretty.Pretty(data)
	if color {
		data = pretty.Color(data, nil)
	}
	_, err = out.Write(data)
	return err
}

// TerminalWidth returns the stdout width, or a default when it is not a terminal.
func TerminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return defaultTerminalWidth
}
