package pack

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/crimson-sun/hyprink/internal/errors"
)

// Entry is one file listed in a package.
type Entry struct {
	Path   string
	Size   int64
	Mode   os.FileMode
	Digest string // hex sha256
}

// Manifest is the verified content listing of a package.
type Manifest struct {
	Summary
	Entries []Entry
}

// Verify reads the whole package at path and checks its structure, every
// payload digest and the trailing checksum. Failures are InvalidPackage,
// except a missing file (SourceNotFound) and read errors (IO).
func (p *Packer) Verify(ctx context.Context, path string) (*Manifest, error) {
	_, span := tracer.Start(ctx, "pack.Verify", trace.WithAttributes(attribute.String("pack.path", path)))
	defer span.End()

	m, err := p.scan("verify", path, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return m, nil
}

// Unpack verifies the package at path and then extracts it below target,
// creating target if needed. Entries are written with their stored
// permission bits; existing files are overwritten.
func (p *Packer) Unpack(ctx context.Context, path, target string) (*Manifest, error) {
	ctx, span := tracer.Start(ctx, "pack.Unpack",
		trace.WithAttributes(attribute.String("pack.path", path), attribute.String("pack.target", target)))
	defer span.End()

	fail := func(err error) (*Manifest, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.log.DebugContext(ctx, "unpack failed", "path", path, "error", err)
		return nil, err
	}

	if target == "" {
		return fail(errors.E(errors.KindInvalidArgument, "unpack", "", fmt.Errorf("target: %w", errors.ErrEmptyName)))
	}
	if _, err := p.scan("unpack", path, nil); err != nil {
		return fail(err)
	}
	if err := p.fs.MkdirAll(target, 0o755); err != nil {
		return fail(errors.E(errors.KindIO, "unpack", target, err))
	}
	m, err := p.scan("unpack", path, func(e Entry, payload io.Reader) error {
		return p.extract(target, e, payload)
	})
	if err != nil {
		return fail(err)
	}
	p.log.DebugContext(ctx, "unpack done", "path", path, "target", target, "count", m.Count)
	return m, nil
}

func (p *Packer) extract(target string, e Entry, payload io.Reader) error {
	dst := filepath.Join(target, filepath.FromSlash(e.Path))
	if err := p.fs.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errors.E(errors.KindIO, "unpack", dst, err)
	}
	f, err := p.fs.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, e.Mode|0o200)
	if err != nil {
		return errors.E(errors.KindIO, "unpack", dst, err)
	}
	if _, err := io.Copy(f, payload); err != nil {
		f.Close()
		return errors.E(errors.KindIO, "unpack", dst, err)
	}
	if err := f.Close(); err != nil {
		return errors.E(errors.KindIO, "unpack", dst, err)
	}
	if err := p.fs.Chmod(dst, e.Mode); err != nil {
		return errors.E(errors.KindIO, "unpack", dst, err)
	}
	return nil
}

// scan walks the package at path. visit, when set, receives each entry
// with a reader over its payload; the payload digest is checked after
// visit returns.
func (p *Packer) scan(op, path string, visit func(Entry, io.Reader) error) (*Manifest, error) {
	invalid := func(sentinel error, detail any) error {
		if detail != nil {
			return errors.E(errors.KindInvalidPackage, op, path, fmt.Errorf("%w: %v", sentinel, detail))
		}
		return errors.E(errors.KindInvalidPackage, op, path, sentinel)
	}

	f, err := p.fs.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.E(errors.KindSourceNotFound, op, path, nil)
	}
	if err != nil {
		return nil, errors.E(errors.KindIO, op, path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.E(errors.KindIO, op, path, err)
	}
	if info.IsDir() {
		return nil, errors.E(errors.KindInvalidArgument, op, path, fmt.Errorf("is a directory"))
	}
	if info.Size() < int64(preamble+trailerSize) {
		return nil, invalid(errors.ErrBadMagic, "file too short")
	}

	h := sha256.New()
	br := bufio.NewReader(io.TeeReader(io.LimitReader(f, info.Size()-trailerSize), h))

	var pre [preamble]byte
	if _, err := io.ReadFull(br, pre[:]); err != nil {
		return nil, errors.E(errors.KindIO, op, path, err)
	}
	if string(pre[:len(Magic)]) != Magic {
		return nil, invalid(errors.ErrBadMagic, nil)
	}
	if pre[len(Magic)] != Version {
		return nil, invalid(errors.ErrUnsupportedVersion, pre[len(Magic)])
	}

	dec := msgpack.NewDecoder(br)
	var hdr header
	if err := dec.Decode(&hdr); err != nil {
		return nil, invalid(errors.ErrCorruptHeader, err)
	}
	if hdr.Version != Version {
		return nil, invalid(errors.ErrUnsupportedVersion, hdr.Version)
	}

	m := &Manifest{Summary: Summary{Root: hdr.Root}}
	m.Entries = make([]Entry, 0, min(hdr.Count, 1024))
	var total uint64
	for i := uint32(0); i < hdr.Count; i++ {
		var rec record
		if err := dec.Decode(&rec); err != nil {
			return nil, invalid(errors.ErrCorruptEntry, err)
		}
		if !safePath(rec.Path) {
			return nil, invalid(errors.ErrUnsafePath, rec.Path)
		}
		// Strictly increasing paths also rule out duplicates.
		if n := len(m.Entries); n > 0 && rec.Path <= m.Entries[n-1].Path {
			return nil, invalid(errors.ErrUnorderedEntries, rec.Path)
		}
		e, err := p.readEntry(br, rec, visit, invalid)
		if err != nil {
			return nil, err
		}
		total += rec.Size
		m.Entries = append(m.Entries, e)
	}
	if total != hdr.TotalSize {
		return nil, invalid(errors.ErrCountMismatch, fmt.Sprintf("total size %d, header says %d", total, hdr.TotalSize))
	}
	if _, err := br.ReadByte(); err != io.EOF {
		return nil, invalid(errors.ErrTrailingData, nil)
	}

	var trailer [trailerSize]byte
	if _, err := io.ReadFull(f, trailer[:]); err != nil {
		return nil, errors.E(errors.KindIO, op, path, err)
	}
	if !bytes.Equal(trailer[:], h.Sum(nil)) {
		return nil, invalid(errors.ErrChecksumMismatch, "package checksum")
	}

	m.Count = len(m.Entries)
	m.TotalSize = int64(total)
	m.Checksum = hex.EncodeToString(trailer[:])
	return m, nil
}

// readEntry checks one record's size and digest and hands its payload to visit. Structural
// problems are reported through invalid; visit errors pass through.
func (p *Packer) readEntry(br *bufio.Reader, rec record, visit func(Entry, io.Reader) error, invalid func(error, any) error) (Entry, error) {
	size, err := safecast.Conv[int64](rec.Size)
	if err != nil || len(rec.Digest) != sha256.Size {
		return Entry{}, invalid(errors.ErrCorruptEntry, rec.Path)
	}
	e := Entry{
		Path:   rec.Path,
		Size:   size,
		Mode:   os.FileMode(rec.Mode).Perm(),
		Digest: hex.EncodeToString(rec.Digest),
	}

	h := sha256.New()
	cr := &countingReader{r: io.LimitReader(br, size)}
	payload := io.TeeReader(cr, h)
	if visit != nil {
		if err := visit(e, payload); err != nil {
			return Entry{}, err
		}
	}
	// Consume whatever visit left unread.
	if _, err := io.Copy(io.Discard, payload); err != nil {
		return Entry{}, invalid(errors.ErrCorruptEntry, err)
	}
	if cr.n != size {
		return Entry{}, invalid(errors.ErrCorruptEntry, fmt.Sprintf("%s: payload truncated", rec.Path))
	}
	if !bytes.Equal(h.Sum(nil), rec.Digest) {
		return Entry{}, invalid(errors.ErrChecksumMismatch, rec.Path)
	}
	return e, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(b []byte) (int, error) {
	n, err := c.r.Read(b)
	c.n += int64(n)
	return n, err
}
