// Package pack builds, verifies and extracts single-file packages of a
// directory tree.
//
// Packing runs through Validating, Walking and Writing before reaching
// Done; any failure moves it to Failed. The package is staged in a temp
// file next to the output and renamed into place only after everything
// has been written and synced, so the output path either keeps its old
// content or receives a complete package.
package pack

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"fortio.org/safecast"
	"github.com/spf13/afero"
	"github.com/vmihailenco/msgpack/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/crimson-sun/hyprink/internal/errors"
	"github.com/crimson-sun/hyprink/internal/metrics"
)

var tracer = otel.Tracer("github.com/crimson-sun/hyprink/internal/pack")

// State is a step of a pack run.
type State uint8

const (
	StateValidating State = iota
	StateWalking
	StateWriting
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateValidating:
		return "validating"
	case StateWalking:
		return "walking"
	case StateWriting:
		return "writing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", s)
	}
}

// Summary describes a package that was written or verified.
type Summary struct {
	Root      string
	Count     int
	TotalSize int64
	Checksum  string // hex sha256 trailer
}

// Option configures a Packer.
type Option func(*Packer)

// WithFs sets the filesystem. Default: the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(p *Packer) { p.fs = fs }
}

// WithWorkers bounds concurrent digest readers. Values below 1 mean
// GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(p *Packer) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithStateHook registers fn to be called on every state transition.
func WithStateHook(fn func(State)) Option {
	return func(p *Packer) { p.hook = fn }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Packer) { p.log = l }
}

// Packer runs pack, verify and unpack operations. It holds no per-run
// state and is safe for concurrent use.
type Packer struct {
	fs      afero.Fs
	workers int
	log     *slog.Logger
	hook    func(State)
}

// New creates a Packer.
func New(opts ...Option) *Packer {
	p := &Packer{
		fs:      afero.NewOsFs(),
		workers: runtime.GOMAXPROCS(0),
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Pack writes a package of the directory src to dst. On failure dst is
// left as it was and the returned error is an *errors.Error whose Kind is
// SourceNotFound, SourceNotDirectory, IO or InvalidArgument.
func (p *Packer) Pack(ctx context.Context, src, dst string) (sum *Summary, err error) {
	ctx, span := tracer.Start(ctx, "pack.Pack",
		trace.WithAttributes(
			attribute.String("pack.source", src),
			attribute.String("pack.output", dst),
		),
	)
	defer span.End()

	start := time.Now()
	state := StateValidating
	enter := func(next State) {
		state = next
		if p.hook != nil {
			p.hook(next)
		}
	}
	enter(StateValidating)
	defer func() {
		metrics.PackDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			failedIn := state
			enter(StateFailed)
			metrics.PackTotal.WithLabelValues(errors.KindOf(err).String()).Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			p.log.DebugContext(ctx, "pack failed", "during", failedIn.String(), "source", src, "error", err)
			return
		}
		metrics.PackTotal.WithLabelValues("ok").Inc()
		metrics.PackBytes.Add(float64(sum.TotalSize))
		span.SetAttributes(attribute.Int("pack.count", sum.Count), attribute.Int64("pack.bytes", sum.TotalSize))
		p.log.DebugContext(ctx, "pack done", "source", src, "output", dst, "count", sum.Count, "bytes", sum.TotalSize)
	}()

	if dst == "" {
		return nil, errors.E(errors.KindInvalidArgument, "pack", "", fmt.Errorf("output: %w", errors.ErrEmptyName))
	}
	if err := p.validate(src); err != nil {
		return nil, err
	}

	enter(StateWalking)
	skip, _ := filepath.Abs(dst)
	files, err := p.walk(src, skip)
	if err != nil {
		return nil, err
	}
	if err := p.digest(ctx, files); err != nil {
		return nil, err
	}

	enter(StateWriting)
	p.log.DebugContext(ctx, "writing package", "files", len(files), "output", dst)
	sum, err = p.write(filepath.Base(filepath.Clean(src)), files, dst)
	if err != nil {
		return nil, err
	}
	enter(StateDone)
	return sum, nil
}

func (p *Packer) validate(src string) error {
	info, err := p.fs.Stat(src)
	switch {
	case os.IsNotExist(err):
		return errors.E(errors.KindSourceNotFound, "pack", src, nil)
	case err != nil:
		return errors.E(errors.KindIO, "pack", src, err)
	case !info.IsDir():
		return errors.E(errors.KindSourceNotDirectory, "pack", src, nil)
	}
	return nil
}

// write stages the package in a temp file beside dst and renames it into
// place. The temp file is removed on every failure path.
func (p *Packer) write(root string, files []*file, dst string) (_ *Summary, err error) {
	tmp, err := afero.TempFile(p.fs, filepath.Dir(dst), ".hyprink-*.tmp")
	if err != nil {
		return nil, errors.E(errors.KindIO, "pack", dst, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			p.fs.Remove(tmp.Name())
		}
	}()

	var total int64
	for _, f := range files {
		total += f.size
	}
	count, err := safecast.Conv[uint32](len(files))
	if err != nil {
		return nil, errors.E(errors.KindIO, "pack", root, fmt.Errorf("too many files: %w", err))
	}
	totalSize, err := safecast.Conv[uint64](total)
	if err != nil {
		return nil, errors.E(errors.KindIO, "pack", root, err)
	}

	bw := bufio.NewWriterSize(tmp, 256*1024)
	h := sha256.New()
	w := io.MultiWriter(bw, h)
	enc := msgpack.NewEncoder(w)

	if _, err := io.WriteString(w, Magic); err != nil {
		return nil, errors.E(errors.KindIO, "pack", dst, err)
	}
	if _, err := w.Write([]byte{Version}); err != nil {
		return nil, errors.E(errors.KindIO, "pack", dst, err)
	}
	if err := enc.Encode(&header{Version: Version, Count: count, TotalSize: totalSize, Root: root}); err != nil {
		return nil, errors.E(errors.KindIO, "pack", dst, err)
	}
	for _, f := range files {
		if err := p.writeEntry(enc, w, f); err != nil {
			return nil, err
		}
	}

	trailer := h.Sum(nil)
	if _, err := bw.Write(trailer); err != nil {
		return nil, errors.E(errors.KindIO, "pack", dst, err)
	}
	if err := bw.Flush(); err != nil {
		return nil, errors.E(errors.KindIO, "pack", dst, err)
	}
	if err := tmp.Sync(); err != nil {
		return nil, errors.E(errors.KindIO, "pack", dst, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, errors.E(errors.KindIO, "pack", dst, err)
	}
	if err := p.fs.Chmod(tmp.Name(), 0o644); err != nil {
		return nil, errors.E(errors.KindIO, "pack", dst, err)
	}
	if err := p.fs.Rename(tmp.Name(), dst); err != nil {
		return nil, errors.E(errors.KindIO, "pack", dst, err)
	}

	return &Summary{Root: root, Count: len(files), TotalSize: total, Checksum: hex.EncodeToString(trailer)}, nil
}

// writeEntry streams one file into the package, re-hashing it to make sure
// it still matches what the walk saw.
func (p *Packer) writeEntry(enc *msgpack.Encoder, w io.Writer, f *file) error {
	size, err := safecast.Conv[uint64](f.size)
	if err != nil {
		return errors.E(errors.KindIO, "pack", f.abs, err)
	}
	rec := record{Path: f.rel, Size: size, Mode: uint32(f.mode), Digest: f.digest[:]}
	if err := enc.Encode(&rec); err != nil {
		return errors.E(errors.KindIO, "pack", f.abs, err)
	}

	src, err := p.fs.Open(f.abs)
	if err != nil {
		return errors.E(errors.KindIO, "pack", f.abs, err)
	}
	defer src.Close()

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(w, h), io.LimitReader(src, f.size))
	if err != nil {
		return errors.E(errors.KindIO, "pack", f.abs, err)
	}
	var extra [1]byte
	if m, _ := src.Read(extra[:]); n != f.size || m != 0 || !bytes.Equal(h.Sum(nil), f.digest[:]) {
		return errors.E(errors.KindIO, "pack", f.abs, errors.ErrChangedDuringPack)
	}
	return nil
}
