package library

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkfile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte("%"), 0o600))
}

func TestLoadPackages_OneDirectoryPerPackage(t *testing.T) {
	dir := t.TempDir()
	mkfile(t, filepath.Join(dir, "foo", "foo.sty"))
	mkfile(t, filepath.Join(dir, "bar", "bar.sty"))
	mkfile(t, filepath.Join(dir, "ls-R"))

	lib, err := LoadPackages(dir)
	require.NoError(t, err)

	assert.Equal(t, KindPackage, lib.Kind())
	require.Equal(t, 2, lib.Len())
	res := lib.Resources()
	assert.Equal(t, "bar", res[0].Name)
	assert.Equal(t, filepath.Join(dir, "bar", "bar.sty"), res[0].Path)
	assert.Equal(t, "foo", res[1].Name)
	assert.Equal(t, "foo.sty", res[1].FileName())
}

func TestLoadPackages_EnumeratesWithoutStyleFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "empty"), 0o750))

	lib, err := LoadPackages(dir)
	require.NoError(t, err)

	r, ok := lib.Lookup("empty")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "empty", "empty.sty"), r.Path)
}

func TestLoadPackages_MissingDir(t *testing.T) {
	_, err := LoadPackages(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, ErrLibraryDirMissing)
}

func TestLoadBibliographies_MatchesFileName(t *testing.T) {
	dir := t.TempDir()
	mkfile(t, filepath.Join(dir, "library.bib"))
	mkfile(t, filepath.Join(dir, "old", "library.bib"))
	mkfile(t, filepath.Join(dir, "other.bib"))

	lib, err := LoadBibliographies(context.Background(), dir, "library.bib")
	require.NoError(t, err)
	require.Equal(t, 2, lib.Len())
	for _, r := range lib.Resources() {
		assert.Equal(t, "library.bib", r.Name)
		assert.Equal(t, KindBibliography, r.Kind)
	}

	all, err := LoadBibliographies(context.Background(), dir, "*.bib")
	require.NoError(t, err)
	assert.Equal(t, 3, all.Len())
}

func TestLoad_MissingDirectoriesYieldEmptyLibraries(t *testing.T) {
	set, err := Load(context.Background(), DefaultLayout(t.TempDir()))
	require.NoError(t, err)
	assert.Equal(t, 0, set.Packages.Len())
	assert.Equal(t, 0, set.Bibliographies.Len())
}

func TestLayout_Paths(t *testing.T) {
	l := DefaultLayout("/home/u/texmf")
	assert.Equal(t, filepath.Join("/home/u/texmf", "tex", "latex"), l.PackagesPath())
	assert.Equal(t, filepath.Join("/home/u/texmf", "bibtex", "bib", "base"), l.BibliographyPath())

	l.PackagesDir = "/opt/sty"
	assert.Equal(t, "/opt/sty", l.PackagesPath())
}

func TestNew_AssignsKind(t *testing.T) {
	lib := New(KindBibliography, Resource{Name: "refs.bib", Path: "/x/refs.bib"})
	assert.Equal(t, KindBibliography, lib.Resources()[0].Kind)
	_, ok := lib.Lookup("missing.bib")
	assert.False(t, ok)
}
