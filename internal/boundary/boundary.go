// Package boundary is the flat, status-code API foreign callers drive.
//
// Contexts live in a generation-checked handle table; callers only ever
// hold the integer handle. Every failable call returns an errors.Status
// and leaves the message in the Context's last-error slot, retrievable with
// GetError. No panic escapes: each entry point recovers and reports
// StatusInternal.
//
// String marshaling stays in cmd/libhyprink; this package works on Go
// strings and byte slices so it can be tested without cgo.
package boundary

import (
	"context"
	"fmt"

	"github.com/crimson-sun/hyprink/internal/errchan"
	"github.com/crimson-sun/hyprink/internal/errors"
	"github.com/crimson-sun/hyprink/internal/handle"
	"github.com/crimson-sun/hyprink/internal/model"
	"github.com/crimson-sun/hyprink/pkg/hyprink"
)

// Boundary owns the handle table. The zero value is not usable; call New.
type Boundary struct {
	contexts handle.Table[*hyprink.Context]
	opts     []hyprink.Option
}

// New returns a Boundary whose Contexts are created with opts in addition
// to the per-call configuration path.
func New(opts ...hyprink.Option) *Boundary {
	return &Boundary{opts: opts}
}

// Default is the process-wide Boundary exported by the shared library.
var Default = New()

// Create builds a Context and returns its handle. configPath may be empty
// to use the default configuration lookup. Any failure, including a panic
// during construction, yields handle.Invalid.
func (b *Boundary) Create(configPath string) (h handle.Handle) {
	defer func() {
		if r := recover(); r != nil {
			h = handle.Invalid
		}
	}()
	opts := b.opts
	if configPath != "" {
		opts = append(append([]hyprink.Option(nil), b.opts...), hyprink.WithConfigFile(configPath))
	}
	c, err := hyprink.New(opts...)
	if err != nil {
		return handle.Invalid
	}
	return b.contexts.Insert(c)
}

// Release removes h and closes its Context. Releasing an unknown or
// already released handle does nothing.
func (b *Boundary) Release(h handle.Handle) {
	defer func() { recover() }()
	if c, ok := b.contexts.Release(h); ok {
		c.Close()
	}
}

// Live returns the number of Contexts not yet released.
func (b *Boundary) Live() int { return b.contexts.Len() }

// SetAppName sets the Context's application name. Unknown handles are
// ignored.
func (b *Boundary) SetAppName(h handle.Handle, name string) {
	defer func() { recover() }()
	if c, ok := b.contexts.Get(h); ok {
		c.SetAppName(name)
	}
}

// Log emits one line. level is a model.Level value; out-of-range values
// log at info. Logging never reports failure.
func (b *Boundary) Log(h handle.Handle, level int32, source, msg string) {
	defer func() { recover() }()
	if c, ok := b.contexts.Get(h); ok {
		c.Log(levelOf(level), source, msg)
	}
}

// LogPreset emits a preset, optionally overriding its message.
func (b *Boundary) LogPreset(h handle.Handle, name, override string) errors.Status {
	return b.call(h, "log_preset", func(c *hyprink.Context) error {
		return c.LogPreset(name, override)
	})
}

// DefinePreset upserts a preset on one Context.
func (b *Boundary) DefinePreset(h handle.Handle, name string, level int32, source, msg string) errors.Status {
	return b.call(h, "define_preset", func(c *hyprink.Context) error {
		return c.DefinePreset(name, levelOf(level), source, msg)
	})
}

// LoadPresets upserts every preset from a TOML or YAML dictionary file.
func (b *Boundary) LoadPresets(h handle.Handle, path string) errors.Status {
	return b.call(h, "load_presets", func(c *hyprink.Context) error {
		_, err := c.LoadPresets(path)
		return err
	})
}

// Pack packages the directory src into the file dst.
func (b *Boundary) Pack(h handle.Handle, src, dst string) errors.Status {
	return b.call(h, "pack", func(c *hyprink.Context) error {
		_, err := c.Pack(context.Background(), src, dst)
		return err
	})
}

// Unpack verifies pkgPath and extracts it below target.
func (b *Boundary) Unpack(h handle.Handle, pkgPath, target string) errors.Status {
	return b.call(h, "unpack", func(c *hyprink.Context) error {
		_, err := c.Unpack(context.Background(), pkgPath, target)
		return err
	})
}

// Verify checks the package at pkgPath without extracting it.
func (b *Boundary) Verify(h handle.Handle, pkgPath string) errors.Status {
	return b.call(h, "verify", func(c *hyprink.Context) error {
		_, err := c.Verify(context.Background(), pkgPath)
		return err
	})
}

// GetError copies the last error message into buf, NUL-terminated and
// truncated to len(buf)-1 bytes. It returns the full message length, so a
// result >= len(buf) signals truncation. With no error recorded, or an
// unknown handle, it writes an empty string and returns 0.
func (b *Boundary) GetError(h handle.Handle, buf []byte) (n int) {
	defer func() {
		if r := recover(); r != nil {
			n = errchan.Copy(buf, "")
		}
	}()
	c, ok := b.contexts.Get(h)
	if !ok {
		return errchan.Copy(buf, "")
	}
	return c.CopyLastError(buf)
}

// LastErrorKind returns the status code of the last recorded failure, or
// StatusOK if none. Unknown handles report StatusInvalidHandle.
func (b *Boundary) LastErrorKind(h handle.Handle) errors.Status {
	c, ok := b.contexts.Get(h)
	if !ok {
		return errors.StatusInvalidHandle
	}
	kind, _ := c.LastError()
	return errors.Status(kind)
}

// call resolves h and runs fn, flattening its error into a status. A
// panic in fn is recorded on the Context as an Internal error.
func (b *Boundary) call(h handle.Handle, op string, fn func(*hyprink.Context) error) (status errors.Status) {
	c, ok := b.contexts.Get(h)
	if !ok {
		return errors.StatusInvalidHandle
	}
	defer func() {
		if r := recover(); r != nil {
			err := errors.E(errors.KindInternal, op, "", fmt.Errorf("panic: %v", r))
			c.SetLastError(err)
			status = errors.StatusInternal
		}
	}()
	return errors.StatusOf(fn(c))
}

func levelOf(v int32) model.Level {
	if v < 0 || v > int32(model.LevelError) {
		return model.LevelInfo
	}
	return model.Level(v)
}
