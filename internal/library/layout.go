package library

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"

	"git.home.luguber.info/inful/texsubmit/internal/logfields"
)

// Layout locates the two libraries below a per-user root (a TEXMF tree).
type Layout struct {
	Root            string
	PackagesDir     string // relative to Root unless absolute
	BibliographyDir string // relative to Root unless absolute
	Bibliography    string // glob on bibliography file names
}

// DefaultLayout mirrors the standard TEXMFHOME structure.
func DefaultLayout(root string) Layout {
	return Layout{
		Root:            root,
		PackagesDir:     filepath.Join("tex", "latex"),
		BibliographyDir: filepath.Join("bibtex", "bib", "base"),
		Bibliography:    "library.bib",
	}
}

// PackagesPath returns the absolute package library directory.
func (l Layout) PackagesPath() string { return l.resolve(l.PackagesDir) }

// BibliographyPath returns the absolute bibliography library directory.
func (l Layout) BibliographyPath() string { return l.resolve(l.BibliographyDir) }

func (l Layout) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(l.Root, p)
}

// Set holds both libraries for a run.
type Set struct {
	Packages       *Library
	Bibliographies *Library
}

// Load enumerates both libraries once per run. A missing library directory
// yields an empty library and a warning; the run can still archive the tree.
func Load(ctx context.Context, layout Layout) (*Set, error) {
	pkgs, err := LoadPackages(layout.PackagesPath())
	if err != nil {
		if !errors.Is(err, ErrLibraryDirMissing) {
			return nil, err
		}
		slog.Warn("Package library not found, no packages will be staged", logfields.Path(layout.PackagesPath()))
		pkgs = New(KindPackage)
	}

	bibs, err := LoadBibliographies(ctx, layout.BibliographyPath(), layout.Bibliography)
	if err != nil {
		if !errors.Is(err, ErrLibraryDirMissing) {
			return nil, err
		}
		slog.Warn("Bibliography library not found, no bibliographies will be staged", logfields.Path(layout.BibliographyPath()))
		bibs = New(KindBibliography)
	}

	slog.Debug("Library loaded",
		slog.Int("packages", pkgs.Len()),
		slog.Int("bibliographies", bibs.Len()))
	return &Set{Packages: pkgs, Bibliographies: bibs}, nil
}
