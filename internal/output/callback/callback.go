// Package callback delivers rendered lines to a caller-supplied function,
// the hook embedders use to route output into their own UI or logger.
package callback

import (
	"context"
	"sync"

	"github.com/crimson-sun/hyprink/internal/model"
)

// Handler receives one rendered line. It is called synchronously from the
// logging goroutine.
type Handler func(level model.Level, terminal, file string)

// Output calls a Handler for every line. Calls are serialized.
type Output struct {
	mu     sync.Mutex
	fn     Handler
	closed bool
}

// New returns an Output that forwards to fn. A nil fn drops every line.
func New(fn Handler) *Output {
	return &Output{fn: fn}
}

func (o *Output) Write(_ context.Context, line model.Line) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed || o.fn == nil {
		return nil
	}
	o.fn(line.Entry.Level, line.Terminal, line.File)
	return nil
}

// Close stops delivery. Lines written afterwards are dropped.
func (o *Output) Close() error {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
	return nil
}
