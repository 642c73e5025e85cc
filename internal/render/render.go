// Package render turns log entries into lines. A Formatter renders each
// entry twice: once for the terminal (tag, icon and message markup colored
// by the theme) and once for files (plain text with a timestamp). Emit
// hands the result to the configured sink.
//
// Templates are plain strings with placeholders:
//
//	{tag} {icon} {scope} {source} {msg} {timestamp} {app} {level}
//
// Unknown placeholders are kept verbatim. Rendering never fails.
package render

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/crimson-sun/hyprink/internal/metrics"
	"github.com/crimson-sun/hyprink/internal/model"
	"github.com/crimson-sun/hyprink/internal/output"
)

const (
	DefaultTerminal        = "{tag} {scope}: {msg}"
	DefaultFile            = "{timestamp} {tag} {scope}: {msg}"
	DefaultTimestampFormat = "2006-01-02 15:04:05"
)

// Options configures a Formatter. The zero value renders "[INFO] src: msg"
// without color and discards output.
type Options struct {
	Tag    TagStyle
	Labels map[string]string // level name -> label
	Colors map[string]string // level or color name -> "#rrggbb"
	Icons  map[string]string // level name -> glyph

	Terminal        string
	File            string
	TimestampFormat string // Go layout or strftime
	Colorize        bool

	Sink   output.Output
	Logger *slog.Logger
	Now    func() time.Time
}

// Formatter renders entries. It is immutable after New and safe for
// concurrent use.
type Formatter struct {
	opts     Options
	terminal []part
	file     []part
	layout   string
	style    func(tag, text string) string
}

// New builds a Formatter, filling unset options with defaults.
func New(opts Options) *Formatter {
	if opts.Tag == (TagStyle{}) {
		opts.Tag = DefaultTagStyle()
	}
	if opts.Terminal == "" {
		opts.Terminal = DefaultTerminal
	}
	if opts.File == "" {
		opts.File = DefaultFile
	}
	if opts.TimestampFormat == "" {
		opts.TimestampFormat = DefaultTimestampFormat
	}
	if opts.Sink == nil {
		opts.Sink = output.Discard
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	f := &Formatter{
		opts:     opts,
		terminal: parse(opts.Terminal),
		file:     parse(opts.File),
		layout:   Layout(opts.TimestampFormat),
	}
	if opts.Colorize {
		f.style = styler(opts.Colors)
	}
	return f
}

// Render formats e. Invalid UTF-8 in text fields becomes U+FFFD and a zero
// Time is replaced by the current time.
func (f *Formatter) Render(e model.Entry) model.Line {
	e.Source = clean(e.Source)
	e.Message = clean(e.Message)
	e.App = clean(e.App)
	if e.Time.IsZero() {
		e.Time = f.opts.Now()
	}
	return model.Line{
		Entry:    e,
		Terminal: f.expand(f.terminal, e, true),
		File:     f.expand(f.file, e, false),
	}
}

// Emit renders e and writes it to the sink. Sink failures are counted and
// logged at debug level, never returned.
func (f *Formatter) Emit(ctx context.Context, e model.Entry) model.Line {
	line := f.Render(e)
	metrics.LogLines.WithLabelValues(line.Entry.Level.String()).Inc()
	if err := f.opts.Sink.Write(ctx, line); err != nil {
		metrics.SinkErrors.Inc()
		f.opts.Logger.DebugContext(ctx, "sink write failed",
			"level", line.Entry.Level.String(),
			"source", line.Entry.Source,
			"error", err,
		)
	}
	return line
}

// Close closes the sink.
func (f *Formatter) Close() error {
	return f.opts.Sink.Close()
}

func (f *Formatter) expand(parts []part, e model.Entry, term bool) string {
	colored := term && f.opts.Colorize
	var b strings.Builder
	for _, p := range parts {
		switch p.field {
		case fieldLiteral:
			b.WriteString(p.text)
		case fieldTag:
			tag := Tag(f.opts.Tag, f.opts.Labels, e.Level)
			if colored {
				tag = f.levelColor(e.Level).Sprint(tag)
			}
			b.WriteString(tag)
		case fieldIcon:
			icon, ok := f.opts.Icons[e.Level.String()]
			if !ok {
				icon = "?"
			}
			if colored {
				icon = f.levelColor(e.Level).Sprint(icon)
			}
			b.WriteString(icon)
		case fieldScope:
			if colored && e.Source != "" {
				b.WriteString(force(color.New(color.FgWhite, color.Faint)).Sprint(e.Source))
			} else {
				b.WriteString(e.Source)
			}
		case fieldMsg:
			if colored {
				b.WriteString(markup(e.Message, f.style))
			} else {
				b.WriteString(markup(e.Message, nil))
			}
		case fieldTimestamp:
			b.WriteString(e.Time.Format(f.layout))
		case fieldApp:
			b.WriteString(e.App)
		case fieldLevel:
			b.WriteString(e.Level.String())
		}
	}
	return b.String()
}

func (f *Formatter) levelColor(l model.Level) *color.Color {
	hex, ok := f.opts.Colors[l.String()]
	if !ok {
		hex, ok = f.opts.Colors["fg"]
	}
	if !ok {
		hex = "#ffffff"
	}
	return force(hexColor(hex))
}

func clean(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}
