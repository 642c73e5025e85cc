package stdout

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"

	"github.com/crimson-sun/hyprink/internal/model"
)

// Output writes the terminal form of each line to a writer, os.Stdout by
// default. Lines are written whole under a mutex so concurrent callers
// never interleave.
type Output struct {
	mu sync.Mutex
	w  io.Writer
}

// New creates a stdout Output. A nil writer means os.Stdout.
func New(w io.Writer) *Output {
	if w == nil {
		w = os.Stdout
	}
	return &Output{w: w}
}

func (o *Output) Write(_ context.Context, line model.Line) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, err := io.WriteString(o.w, line.Terminal+"\n"); err != nil {
		return fmt.Errorf("stdout output: %w", err)
	}
	return nil
}

func (o *Output) Close() error {
	return nil
}

// ColorEnabled reports whether ANSI styling should be used on w: it must
// be a terminal and NO_COLOR must be unset.
func ColorEnabled(w io.Writer) bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
