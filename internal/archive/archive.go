// Package archive writes the submission zip.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	serrors "git.home.luguber.info/inful/texsubmit/internal/errors"
)

// Extension is appended to targets that do not already carry it.
const Extension = ".zip"

// ErrInvalidName is returned when the top-level entry name is unusable.
var ErrInvalidName = errors.New("invalid archive entry name")

// ResolveTarget returns the archive path for target: target itself when it
// already ends with ".zip", otherwise target + ".zip".
func ResolveTarget(target string) string {
	if strings.HasSuffix(strings.ToLower(target), Extension) {
		return target
	}
	return target + Extension
}

// CheckTarget fails with AlreadyExists when out is present.
func CheckTarget(out string) error {
	if _, err := os.Lstat(out); err == nil {
		return serrors.AlreadyExists(out)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return serrors.FileSystemError("stat "+out, err)
	}
	return nil
}

// Create zips the contents of srcDir into out. Every entry is placed under
// a single top-level directory called rename. out is never overwritten and
// is removed again when writing fails.
func Create(ctx context.Context, out, srcDir, rename string) (err error) {
	if rename == "" || rename == "." || rename == ".." || strings.ContainsAny(rename, `/\`) {
		return serrors.ArchiveError(out, fmt.Errorf("%w: %q", ErrInvalidName, rename))
	}

	// #nosec G304 - output path is chosen by the operator
	f, err := os.OpenFile(out, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return serrors.AlreadyExists(out)
		}
		return serrors.ArchiveError(out, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(out)
		}
	}()

	zw := zip.NewWriter(f)
	if werr := addTree(ctx, zw, srcDir, rename); werr != nil {
		_ = zw.Close()
		_ = f.Close()
		return serrors.ArchiveError(out, werr)
	}
	if cerr := zw.Close(); cerr != nil {
		_ = f.Close()
		return serrors.ArchiveError(out, cerr)
	}
	if cerr := f.Close(); cerr != nil {
		return serrors.ArchiveError(out, cerr)
	}
	return nil
}

func addTree(ctx context.Context, zw *zip.Writer, srcDir, rename string) error {
	return filepath.WalkDir(srcDir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, p)
		if err != nil {
			return err
		}
		name := rename
		if rel != "." {
			name = path.Join(rename, filepath.ToSlash(rel))
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		switch {
		case d.IsDir():
			hdr, err := zip.FileInfoHeader(info)
			if err != nil {
				return err
			}
			hdr.Name = name + "/"
			_, err = zw.CreateHeader(hdr)
			return err
		case d.Type().IsRegular():
			return addFile(zw, p, name, info)
		default:
			// The working copy holds regular files only.
			return nil
		}
	})
}

func addFile(zw *zip.Writer, src, name string, info fs.FileInfo) error {
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = name
	hdr.Method = zip.Deflate

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	// #nosec G304 - walking a directory we created
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()
	_, err = io.Copy(w, in)
	return err
}
