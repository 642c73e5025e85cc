package hyprink

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/crimson-sun/hyprink/internal/config"
	"github.com/crimson-sun/hyprink/internal/errchan"
	"github.com/crimson-sun/hyprink/internal/errors"
	"github.com/crimson-sun/hyprink/internal/logging"
	"github.com/crimson-sun/hyprink/internal/metrics"
	"github.com/crimson-sun/hyprink/internal/model"
	"github.com/crimson-sun/hyprink/internal/output"
	"github.com/crimson-sun/hyprink/internal/output/file"
	"github.com/crimson-sun/hyprink/internal/output/multi"
	"github.com/crimson-sun/hyprink/internal/output/stdout"
	"github.com/crimson-sun/hyprink/internal/pack"
	"github.com/crimson-sun/hyprink/internal/preset"
	"github.com/crimson-sun/hyprink/internal/render"
)

// Level is a log severity, ordered from LevelTrace to LevelError.
type Level = model.Level

const (
	LevelTrace   = model.LevelTrace
	LevelDebug   = model.LevelDebug
	LevelInfo    = model.LevelInfo
	LevelSuccess = model.LevelSuccess
	LevelWarn    = model.LevelWarn
	LevelError   = model.LevelError
)

// ParseLevel converts a level name. Unknown names yield LevelInfo and false.
func ParseLevel(s string) (Level, bool) { return model.ParseLevel(s) }

// Preset is a named (level, source, message) triple.
type Preset = model.Preset

// Summary describes a written package; Manifest lists a verified one.
type (
	Summary  = pack.Summary
	Manifest = pack.Manifest
)

// ErrorKind classifies a failure. Its numeric value is the status code
// reported to foreign callers.
type ErrorKind = errors.Kind

const (
	KindNone               = errors.KindNone
	KindInvalidHandle      = errors.KindInvalidHandle
	KindUnknownPreset      = errors.KindUnknownPreset
	KindSourceNotFound     = errors.KindSourceNotFound
	KindSourceNotDirectory = errors.KindSourceNotDirectory
	KindIO                 = errors.KindIO
	KindInvalidPackage     = errors.KindInvalidPackage
	KindInvalidArgument    = errors.KindInvalidArgument
	KindInternal           = errors.KindInternal
)

// KindOf returns the kind of err, KindNone for nil.
func KindOf(err error) ErrorKind { return errors.KindOf(err) }

// Context owns configuration, the preset table and the last-error slot.
// Safe for concurrent use.
type Context struct {
	id     string
	log    *slog.Logger
	format *render.Formatter
	packer *pack.Packer

	mu      sync.RWMutex
	presets *preset.Registry
	lastErr errchan.Slot
	appName string
	closed  bool
}

// New creates a Context seeded with the built-in presets and any presets
// from configuration. It fails only when configuration cannot be read or
// does not validate.
func New(opts ...Option) (*Context, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cfg := o.config
	if cfg == nil {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return nil, err
		}
	}
	configured, err := cfg.PresetList()
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	logger := o.logger
	if logger == nil {
		logger = logging.Nop()
		if cfg.Diagnostics.Enabled {
			logger = logging.New(os.Stderr, logging.ParseLevel(cfg.Diagnostics.Level), cfg.Diagnostics.JSON)
		}
	}
	logger = logger.With("context_id", id)

	fs := o.fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	workers := cfg.Pack.Workers
	if o.workers > 0 {
		workers = o.workers
	}

	sink, colorize := buildSink(cfg, &o, fs)
	c := &Context{
		id:  id,
		log: logger,
		format: render.New(render.Options{
			Tag: render.TagStyle{
				Prefix:    cfg.Layout.Tag.Prefix,
				Suffix:    cfg.Layout.Tag.Suffix,
				Transform: cfg.Layout.Tag.Transform,
				MinWidth:  cfg.Layout.Tag.MinWidth,
				Alignment: cfg.Layout.Tag.Alignment,
			},
			Labels:          cfg.Layout.Labels,
			Colors:          cfg.Theme.Colors,
			Icons:           cfg.ActiveIcons(),
			Terminal:        cfg.Layout.Structure.Terminal,
			File:            cfg.Layout.Structure.File,
			TimestampFormat: cfg.Logging.TimestampFormat,
			Colorize:        colorize,
			Sink:            sink,
			Logger:          logger,
		}),
		packer: pack.New(
			pack.WithFs(fs),
			pack.WithWorkers(workers),
			pack.WithLogger(logger),
		),
		presets: preset.NewRegistry(append(preset.Builtins(), configured...)),
		appName: cfg.Logging.AppName,
	}
	logger.Debug("context created", "presets", c.presets.Len(), "colorize", colorize)
	return c, nil
}

// buildSink assembles the terminal sink and, when logging.write_by_default
// is set, the file sink.
func buildSink(cfg *config.Config, o *options, fs afero.Fs) (output.Output, bool) {
	mode := cfg.Theme.Colorize
	if o.color != "" {
		mode = o.color
	}

	term := o.sink
	colorize := mode == "always"
	if term == nil {
		w := o.writer
		if w == nil {
			w = os.Stdout
		}
		term = stdout.New(w)
		if mode == "auto" || mode == "" {
			colorize = stdout.ColorEnabled(w)
		}
	}

	if !cfg.Logging.WriteByDefault {
		return term, colorize
	}
	files := file.New(file.Layout{
		BaseDir:           cfg.Logging.BaseDir,
		PathStructure:     cfg.Logging.PathStructure,
		FilenameStructure: cfg.Logging.FilenameStructure,
	}, file.WithMaxSize(cfg.Logging.MaxSizeBytes), file.WithFs(fs))
	return multi.New(term, files), colorize
}

// ID returns the unique identifier attached to this Context's diagnostics.
func (c *Context) ID() string { return c.id }

// SetAppName sets the application name used by {app} placeholders. Any
// string is accepted, including "".
func (c *Context) SetAppName(name string) {
	c.mu.Lock()
	c.appName = name
	c.mu.Unlock()
}

// AppName returns the current application name.
func (c *Context) AppName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.appName
}

// Log renders and emits one line. It never fails; after Close it does
// nothing.
func (c *Context) Log(level Level, source, msg string) {
	c.mu.RLock()
	app, closed := c.appName, c.closed
	c.mu.RUnlock()
	if closed {
		return
	}
	c.format.Emit(context.Background(), model.Entry{Level: level, Source: source, Message: msg, App: app})
}

// LogPreset emits the named preset. A non-empty override replaces the
// preset's default message. An unknown name emits nothing and returns an
// UnknownPreset error naming it.
func (c *Context) LogPreset(name, override string) error {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return errors.E(errors.KindInvalidHandle, "log_preset", name, errors.ErrClosed)
	}
	entry, err := c.presets.Resolve(name, override)
	entry.App = c.appName
	c.mu.RUnlock()
	if err != nil {
		return c.fail("log_preset", err)
	}
	c.format.Emit(context.Background(), entry)
	return nil
}

// Resolve returns the preset's stored value without emitting anything.
func (c *Context) Resolve(name string) (Preset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.presets == nil {
		return Preset{}, false
	}
	return c.presets.Get(name)
}

// DefinePreset adds or replaces a preset in this Context only.
func (c *Context) DefinePreset(name string, level Level, source, message string) error {
	c.mu.Lock()
	err := c.define(model.Preset{Name: name, Level: level, Source: source, Message: message})
	c.mu.Unlock()
	if err != nil {
		return c.fail("define_preset", err)
	}
	return nil
}

// define expects c.mu to be held for writing.
func (c *Context) define(p model.Preset) error {
	if c.closed {
		return errors.E(errors.KindInvalidHandle, "define_preset", p.Name, errors.ErrClosed)
	}
	return c.presets.Define(p)
}

// Presets returns every preset ordered by name.
func (c *Context) Presets() []Preset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.presets == nil {
		return nil
	}
	return c.presets.Snapshot()
}

// LoadPresets reads a preset dictionary (TOML, or YAML by extension) and
// upserts every entry. Nothing is applied when the file fails to load. It
// returns the number of presets applied.
func (c *Context) LoadPresets(path string) (int, error) {
	loaded, err := preset.LoadFile(path)
	if err != nil {
		return 0, c.fail("load_presets", err)
	}
	c.mu.Lock()
	for _, p := range loaded {
		if err = c.define(p); err != nil {
			break
		}
	}
	c.mu.Unlock()
	if err != nil {
		return 0, c.fail("load_presets", err)
	}
	c.log.Debug("presets loaded", "path", path, "count", len(loaded))
	return len(loaded), nil
}

// Pack writes a package of the directory src to dst. The output is
// replaced only after the whole package has been written; on failure it
// is left untouched. No lock is held while packing, so other calls on the
// Context proceed concurrently.
func (c *Context) Pack(ctx context.Context, src, dst string) (*Summary, error) {
	if err := c.live("pack"); err != nil {
		return nil, err
	}
	sum, err := c.packer.Pack(ctx, src, dst)
	if err != nil {
		return nil, c.fail("pack", err)
	}
	return sum, nil
}

// Unpack verifies the package at pkgPath and extracts it below target.
func (c *Context) Unpack(ctx context.Context, pkgPath, target string) (*Manifest, error) {
	if err := c.live("unpack"); err != nil {
		return nil, err
	}
	m, err := c.packer.Unpack(ctx, pkgPath, target)
	if err != nil {
		return nil, c.fail("unpack", err)
	}
	return m, nil
}

// Verify checks the package at pkgPath and returns its listing.
func (c *Context) Verify(ctx context.Context, pkgPath string) (*Manifest, error) {
	if err := c.live("verify"); err != nil {
		return nil, err
	}
	m, err := c.packer.Verify(ctx, pkgPath)
	if err != nil {
		return nil, c.fail("verify", err)
	}
	return m, nil
}

// LastError returns the kind and message of the most recent failure.
// Successful calls never clear it. Before any failure it returns
// KindNone and "".
func (c *Context) LastError() (ErrorKind, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	kind, msg, _ := c.lastErr.Snapshot()
	return kind, msg
}

// CopyLastError copies the last error message into buf as a NUL-terminated
// string and returns the message length. A result >= len(buf) means the
// message was truncated.
func (c *Context) CopyLastError(buf []byte) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr.CopyTo(buf)
}

// Close closes the sinks and drops presets and error state. Calling it more
// than once is harmless.
func (c *Context) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.presets = nil
	c.lastErr = errchan.Slot{}
	c.appName = ""
	c.mu.Unlock()

	c.log.Debug("context closed")
	return c.format.Close()
}

// SetLastError records err as the last error. Bindings use it for
// failures detected outside the Context, such as a recovered panic. A nil
// err is ignored.
func (c *Context) SetLastError(err error) {
	if err != nil {
		c.fail("binding", err)
	}
}

func (c *Context) live(op string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.E(errors.KindInvalidHandle, op, "", errors.ErrClosed)
	}
	return nil
}

// fail records err as the last error and returns it.
func (c *Context) fail(op string, err error) error {
	kind := errors.KindOf(err)
	c.mu.Lock()
	if !c.closed {
		c.lastErr.SetErr(err)
	}
	c.mu.Unlock()
	metrics.Failures.WithLabelValues(kind.String()).Inc()
	c.log.Debug(op+" failed", "kind", kind.String(), "error", err)
	return err
}
