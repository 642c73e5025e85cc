// Package output defines the sink interface rendered log lines are handed
// to. Concrete sinks live in subpackages: stdout (terminal), file
// (templated paths with rotation), multi (fan-out) and callback (a Go func,
// used by embedders and tests).
package output

import (
	"context"

	"github.com/crimson-sun/hyprink/internal/model"
)

// Output defines the interface for rendered log line destinations.
// Implementations must be safe for concurrent use: a shared Context emits
// from whichever goroutine logs.
type Output interface {
	Write(ctx context.Context, line model.Line) error
	Close() error
}

// Func adapts a plain function to an Output with a no-op Close.
type Func func(ctx context.Context, line model.Line) error

// Write calls f.
func (f Func) Write(ctx context.Context, line model.Line) error { return f(ctx, line) }

// Close does nothing.
func (Func) Close() error { return nil }

// Discard drops every line.
var Discard Output = Func(func(context.Context, model.Line) error { return nil })
