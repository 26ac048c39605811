// Package archive bundles located documents into uniquely named zip archives
// in a staging directory, from where an operator copies them.
package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/filedo/internal/common"
	"github.com/dmitrijs2005/filedo/internal/filex"
	"github.com/google/uuid"
	"github.com/klauspost/compress/flate"
)

// Result describes one packaging run.
type Result struct {
	// Name is the archive file name inside the staging directory. Empty when
	// no source could be added.
	Name string
	// Path is the full path of the archive.
	Path string
	// Added lists entry names in the order they were written.
	Added []string
	// Skipped lists source paths that were missing, not regular files, or
	// duplicated an earlier entry name.
	Skipped []string
}

// Count is the number of entries written.
func (r *Result) Count() int { return len(r.Added) }

// Packager writes archives into one staging directory. It has no mutable
// state and is safe for concurrent use; every call gets its own archive name.
type Packager struct {
	stagingDir string
	level      int
	newID      func() string
}

// Option customizes a Packager.
type Option func(*Packager)

// WithCompressionLevel sets the deflate level (flate.BestSpeed..flate.BestCompression).
func WithCompressionLevel(level int) Option {
	return func(p *Packager) { p.level = level }
}

// WithIDGenerator replaces the uuid source used for archive names.
func WithIDGenerator(f func() string) Option {
	return func(p *Packager) { p.newID = f }
}

func NewPackager(stagingDir string, opts ...Option) *Packager {
	p := &Packager{
		stagingDir: stagingDir,
		level:      flate.DefaultCompression,
		newID:      func() string { return uuid.NewString() },
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// StagingDir is the directory archives are written to.
func (p *Packager) StagingDir() string { return p.stagingDir }

// ArchiveName builds the staged file name for an id.
func ArchiveName(id string) string {
	return common.ArchivePrefix + id + common.ArchiveExtension
}

// Package writes a new archive holding every source file under its base
// name. Sources that no longer exist are skipped, not fatal. An error is
// returned only when the staging directory or the archive itself cannot be
// written; it wraps common.ErrPackaging.
//
// When nothing could be added the partial archive is removed and the result
// has an empty Name.
func (p *Packager) Package(ctx context.Context, sources []string) (*Result, error) {
	if err := filex.EnsureDir(p.stagingDir); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrPackaging, err)
	}

	name := ArchiveName(p.newID())
	dest := filepath.Join(p.stagingDir, name)
	part := dest + ".part"

	f, err := os.OpenFile(part, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", common.ErrPackaging, part, err)
	}

	res := &Result{}
	zw := zip.NewWriter(f)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, p.level)
	})

	abort := func(cause error) (*Result, error) {
		_ = zw.Close()
		_ = f.Close()
		_ = os.Remove(part)
		return nil, cause
	}

	seen := make(map[string]struct{}, len(sources))
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return abort(err)
		}

		entry := filepath.Base(src)
		if _, dup := seen[entry]; dup {
			res.Skipped = append(res.Skipped, src)
			continue
		}

		added, err := addFile(zw, src, entry)
		if err != nil {
			return abort(fmt.Errorf("%w: %v", common.ErrPackaging, err))
		}
		if !added {
			res.Skipped = append(res.Skipped, src)
			continue
		}
		seen[entry] = struct{}{}
		res.Added = append(res.Added, entry)
	}

	if err := zw.Close(); err != nil {
		return abort(fmt.Errorf("%w: finalize archive: %v", common.ErrPackaging, err))
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(part)
		return nil, fmt.Errorf("%w: close archive: %v", common.ErrPackaging, err)
	}

	if res.Count() == 0 {
		_ = os.Remove(part)
		return res, nil
	}

	if err := os.Rename(part, dest); err != nil {
		_ = os.Remove(part)
		return nil, fmt.Errorf("%w: publish archive: %v", common.ErrPackaging, err)
	}

	res.Name = name
	res.Path = dest
	return res, nil
}

// addFile copies src into the archive as entry. It reports false without an
// error when src is gone or is not a regular file.
func addFile(zw *zip.Writer, src, entry string) (bool, error) {
	in, err := os.Open(src)
	if err != nil {
		return false, nil
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil || !info.Mode().IsRegular() {
		return false, nil
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return false, fmt.Errorf("header for %s: %w", src, err)
	}
	header.Name = entry
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return false, fmt.Errorf("create entry %s: %w", entry, err)
	}
	if _, err := io.Copy(w, in); err != nil {
		return false, fmt.Errorf("write entry %s: %w", entry, err)
	}
	return true, nil
}
