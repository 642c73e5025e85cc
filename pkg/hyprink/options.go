package hyprink

import (
	"io"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/crimson-sun/hyprink/internal/config"
	"github.com/crimson-sun/hyprink/internal/output"
	"github.com/crimson-sun/hyprink/internal/output/callback"
)

type options struct {
	configPath string
	config     *config.Config
	writer     io.Writer
	sink       output.Output
	logger     *slog.Logger
	fs         afero.Fs
	color      string
	workers    int
}

// Option configures a Context.
type Option func(*options)

// WithConfigFile loads configuration from path instead of the default
// location. The file must exist.
func WithConfigFile(path string) Option {
	return func(o *options) {
		o.configPath = path
	}
}

// withConfig uses cfg as is, skipping file and environment lookup.
func withConfig(cfg *config.Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// WithWriter sends terminal lines to w instead of stdout.
func WithWriter(w io.Writer) Option {
	return func(o *options) {
		o.writer = w
	}
}

// Handler receives every log line in both its terminal and file forms.
type Handler func(level Level, terminal, file string)

// WithHandler replaces the terminal sink with fn. File logging, when
// enabled by configuration, is unaffected.
func WithHandler(fn Handler) Option {
	return func(o *options) {
		o.sink = callback.New(callback.Handler(fn))
	}
}

// WithLogger sets the logger for hyprink's own diagnostics. By default they
// follow the [diagnostics] config section and are discarded when it is
// disabled.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithFs sets the filesystem used for packing and file logging.
// Default: the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(o *options) {
		o.fs = fs
	}
}

// WithColor overrides theme.colorize: "auto", "always" or "never".
func WithColor(mode string) Option {
	return func(o *options) {
		o.color = mode
	}
}

// WithPackWorkers bounds the number of files digested concurrently while
// packing. Default: pack.workers from config, else GOMAXPROCS.
func WithPackWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}
