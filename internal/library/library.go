// Package library enumerates the read-only resource libraries (style packages
// and bibliography databases) that texsubmit stages into document trees.
package library

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/texsubmit/internal/fsutil"
)

// ErrLibraryDirMissing indicates a configured library directory does not exist.
var ErrLibraryDirMissing = errors.New("library directory not found")

// StyleExtension is the file extension of package style files.
const StyleExtension = ".sty"

// Kind distinguishes the two disjoint libraries.
type Kind string

const (
	KindPackage      Kind = "package"
	KindBibliography Kind = "bibliography"
)

// Resource is a named file supplied by the library, not authored by the document.
type Resource struct {
	Name string `json:"name"` // package name, or bibliography file name
	Path string `json:"path"` // location of the file to stage
	Kind Kind   `json:"kind"`
}

// FileName is the name the resource takes when staged next to a document.
func (r Resource) FileName() string {
	return filepath.Base(r.Path)
}

// Library is an ordered, read-only set of resources.
type Library struct {
	kind      Kind
	resources []Resource
}

// New builds a library from an explicit resource list.
func New(kind Kind, resources ...Resource) *Library {
	out := make([]Resource, len(resources))
	for i, r := range resources {
		r.Kind = kind
		out[i] = r
	}
	return &Library{kind: kind, resources: out}
}

// Kind returns the library kind.
func (l *Library) Kind() Kind { return l.kind }

// Resources returns a copy of the resources in enumeration order.
func (l *Library) Resources() []Resource {
	out := make([]Resource, len(l.resources))
	copy(out, l.resources)
	return out
}

// Len returns the number of resources.
func (l *Library) Len() int { return len(l.resources) }

// Lookup returns the resource with the given name.
func (l *Library) Lookup(name string) (Resource, bool) {
	for _, r := range l.resources {
		if r.Name == name {
			return r, true
		}
	}
	return Resource{}, false
}

// LoadPackages enumerates the package library: every subdirectory of dir is a
// package whose style file is <dir>/<name>/<name>.sty. The style file itself is
// not checked here; a missing one surfaces when the package is staged.
// Plain files at the top level are ignored.
func LoadPackages(dir string) (*Library, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrLibraryDirMissing, dir)
		}
		return nil, fmt.Errorf("read package library %s: %w", dir, err)
	}

	lib := &Library{kind: KindPackage}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		lib.resources = append(lib.resources, Resource{
			Name: name,
			Path: filepath.Join(dir, name, name+StyleExtension),
			Kind: KindPackage,
		})
	}
	return lib, nil
}

// LoadBibliographies enumerates bibliography files below dir (recursively) whose
// file name matches the glob pattern, e.g. "library.bib" or "*.bib".
func LoadBibliographies(ctx context.Context, dir, pattern string) (*Library, error) {
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrLibraryDirMissing, dir)
		}
		return nil, fmt.Errorf("stat bibliography library %s: %w", dir, err)
	}

	paths, err := fsutil.Collect(fsutil.Find(ctx, dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("scan bibliography library %s: %w", dir, err)
	}

	lib := &Library{kind: KindBibliography}
	for _, p := range paths {
		lib.resources = append(lib.resources, Resource{
			Name: filepath.Base(p),
			Path: p,
			Kind: KindBibliography,
		})
	}
	return lib, nil
}
