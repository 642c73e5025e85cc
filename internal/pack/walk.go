package pack

import (
	"context"
	"crypto/sha256"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/crimson-sun/hyprink/internal/errors"
)

// file is one regular file found under the source directory.
type file struct {
	abs    string // path on the filesystem
	rel    string // slash-separated path inside the package
	mode   os.FileMode
	size   int64
	digest [sha256.Size]byte
}

// walk lists the regular files below src ordered by their package path.
// Directories are descended into; symlinks and special files are skipped.
// skip, when non-empty, is an absolute path left out of the listing.
func (p *Packer) walk(src, skip string) ([]*file, error) {
	var files []*file
	err := afero.Walk(p.fs, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return errors.E(errors.KindIO, "pack", path, err)
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		if skip != "" {
			if abs, aerr := filepath.Abs(path); aerr == nil && abs == skip {
				return nil
			}
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return errors.E(errors.KindIO, "pack", path, err)
		}
		files = append(files, &file{
			abs:  path,
			rel:  filepath.ToSlash(rel),
			mode: info.Mode().Perm(),
			size: info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Walk order is per directory, so "a/b" would precede "a-c".
	sort.Slice(files, func(i, j int) bool { return files[i].rel < files[j].rel })
	return files, nil
}

// digest hashes every file with at most p.workers concurrent readers. The
// group is joined before returning.
func (p *Packer) digest(ctx context.Context, files []*file) error {
	if len(files) == 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(p.workers, len(files)))
	for _, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sum, n, err := hashFile(p.fs, f.abs)
			if err != nil {
				return errors.E(errors.KindIO, "pack", f.abs, err)
			}
			f.digest = sum
			f.size = n
			return nil
		})
	}
	return g.Wait()
}

func hashFile(fs afero.Fs, path string) (sum [sha256.Size]byte, n int64, err error) {
	f, err := fs.Open(path)
	if err != nil {
		return sum, 0, err
	}
	defer f.Close()

	h := sha256.New()
	n, err = io.Copy(h, f)
	if err != nil {
		return sum, 0, err
	}
	copy(sum[:], h.Sum(nil))
	return sum, n, nil
}
