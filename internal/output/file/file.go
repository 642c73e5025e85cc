package file

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/crimson-sun/hyprink/internal/model"
)

const (
	defaultBufSize = 64 * 1024 // 64KB
	maxOpen        = 16
)

// Layout describes where lines land on disk. PathStructure and
// FilenameStructure may contain {app}, {scope}, {level}, {year}, {month}
// and {day}; they are joined below BaseDir.
type Layout struct {
	BaseDir           string
	PathStructure     string
	FilenameStructure string
}

// Option configures a file Output.
type Option func(*Output)

// WithMaxSize sets the file size (bytes) at which rotation triggers.
// 0 (default) disables rotation.
func WithMaxSize(bytes int64) Option {
	return func(o *Output) { o.maxSize = bytes }
}

// WithBufSize sets the bufio.Writer buffer size. Default: 64KB.
func WithBufSize(bytes int) Option {
	return func(o *Output) { o.bufSize = bytes }
}

// WithFs replaces the filesystem. Default: the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(o *Output) { o.fs = fs }
}

// sink is one open log file.
type sink struct {
	f       afero.File
	w       *bufio.Writer
	written int64
	used    time.Time
}

// Output appends the file form of each line to a path derived from the
// line's entry. Files are opened lazily and kept open until Close; at most
// maxOpen stay open at once.
type Output struct {
	mu      sync.Mutex
	fs      afero.Fs
	layout  Layout
	maxSize int64 // 0 = no rotation
	bufSize int
	open    map[string]*sink
}

// New creates a file output. No file is touched until the first Write.
func New(layout Layout, opts ...Option) *Output {
	o := &Output{
		fs:      afero.NewOsFs(),
		layout:  layout,
		bufSize: defaultBufSize,
		open:    make(map[string]*sink),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Path returns the file a line for e would be appended to.
func (o *Output) Path(e model.Entry) string {
	t := e.Time
	if t.IsZero() {
		t = time.Now()
	}
	r := strings.NewReplacer(
		"{app}", segment(e.App),
		"{scope}", segment(e.Source),
		"{level}", e.Level.String(),
		"{year}", t.Format("2006"),
		"{month}", t.Format("01"),
		"{day}", t.Format("02"),
	)
	name := r.Replace(o.layout.FilenameStructure)
	if name == "" {
		name = "hyprink.log"
	}
	return filepath.Join(ExpandHome(o.layout.BaseDir), r.Replace(o.layout.PathStructure), name)
}

// Write appends line.File to the file for the line's entry.
func (o *Output) Write(_ context.Context, line model.Line) error {
	path := o.Path(line.Entry)
	data := []byte(line.File + "\n")

	o.mu.Lock()
	defer o.mu.Unlock()

	s, err := o.sinkFor(path)
	if err != nil {
		return err
	}
	if o.maxSize > 0 && s.written > 0 && s.written+int64(len(data)) > o.maxSize {
		if s, err = o.rotate(path, s); err != nil {
			return fmt.Errorf("file output: rotate: %w", err)
		}
	}

	n, err := s.w.Write(data)
	s.written += int64(n)
	s.used = time.Now()
	if err != nil {
		return fmt.Errorf("file output: write: %w", err)
	}
	return nil
}

// Flush writes buffered data of every open file.
func (o *Output) Flush() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	var errs []error
	for _, s := range o.open {
		if err := s.w.Flush(); err != nil {
			errs = append(errs, fmt.Errorf("file output: flush: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Close flushes the buffers and closes every open file.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	var errs []error
	for path, s := range o.open {
		if err := closeSink(s); err != nil {
			errs = append(errs, err)
		}
		delete(o.open, path)
	}
	return errors.Join(errs...)
}

func (o *Output) sinkFor(path string) (*sink, error) {
	if s, ok := o.open[path]; ok {
		return s, nil
	}
	if len(o.open) >= maxOpen {
		o.evictOldest()
	}
	s, err := o.openFile(path)
	if err != nil {
		return nil, err
	}
	o.open[path] = s
	return s, nil
}

// openFile opens (or creates) path, creating parent directories, and wraps
// it in a bufio.Writer.
func (o *Output) openFile(path string) (*sink, error) {
	if err := o.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("file output: mkdir %s: %w", filepath.Dir(path), err)
	}
	f, err := o.fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("file output: open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("file output: stat %s: %w", path, err)
	}
	return &sink{f: f, w: bufio.NewWriterSize(f, o.bufSize), written: info.Size()}, nil
}

// rotate closes the current file, renames it to {path}.1 (shifting
// existing rotated files), and opens a new file.
func (o *Output) rotate(path string, s *sink) (*sink, error) {
	delete(o.open, path)
	if err := closeSink(s); err != nil {
		return nil, err
	}

	// Shift existing rotated files: .2 → .3, .1 → .2, current → .1
	for i := 9; i >= 1; i-- {
		from := fmt.Sprintf("%s.%d", path, i)
		to := fmt.Sprintf("%s.%d", path, i+1)
		o.fs.Rename(from, to) // file may not exist
	}
	if err := o.fs.Rename(path, path+".1"); err != nil {
		return nil, err
	}

	ns, err := o.openFile(path)
	if err != nil {
		return nil, err
	}
	o.open[path] = ns
	return ns, nil
}

func (o *Output) evictOldest() {
	paths := make([]string, 0, len(o.open))
	for p := range o.open {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool { return o.open[paths[i]].used.Before(o.open[paths[j]].used) })
	closeSink(o.open[paths[0]])
	delete(o.open, paths[0])
}

func closeSink(s *sink) error {
	if err := s.w.Flush(); err != nil {
		s.f.Close()
		return fmt.Errorf("file output: flush: %w", err)
	}
	return s.f.Close()
}

// segment makes a placeholder value safe to use as one path element.
func segment(v string) string {
	v = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == 0 {
			return '_'
		}
		return r
	}, v)
	if v == "" || v == "." || v == ".." {
		return "_"
	}
	return v
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
