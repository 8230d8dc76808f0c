package testing

import (
	"os"
	"path/filepath"
	"testing"
)

// Tree writes fixture files below a root directory.
type Tree struct {
	t    *testing.T
	root string
}

// NewTree creates a fixture builder rooted at dir. The directory is created
// when missing.
func NewTree(t *testing.T, dir string) *Tree {
	t.Helper()
	if err := os.MkdirAll(dir, testDirPermissions); err != nil {
		t.Fatalf("Failed to create fixture root %s: %v", dir, err)
	}
	return &Tree{t: t, root: dir}
}

// Root returns the fixture root directory.
func (tr *Tree) Root() string { return tr.root }

// Path joins relativePath onto the fixture root.
func (tr *Tree) Path(relativePath string) string {
	return filepath.Join(tr.root, filepath.FromSlash(relativePath))
}

// File writes content to relativePath, creating parent directories.
func (tr *Tree) File(relativePath, content string) *Tree {
	tr.t.Helper()
	full := tr.Path(relativePath)
	if err := os.MkdirAll(filepath.Dir(full), testDirPermissions); err != nil {
		tr.t.Fatalf("Failed to create directory for %s: %v", full, err)
	}
	if err := os.WriteFile(full, []byte(content), testFilePermissions); err != nil {
		tr.t.Fatalf("Failed to write %s: %v", full, err)
	}
	return tr
}

// Dir creates an empty directory at relativePath.
func (tr *Tree) Dir(relativePath string) *Tree {
	tr.t.Helper()
	if err := os.MkdirAll(tr.Path(relativePath), testDirPermissions); err != nil {
		tr.t.Fatalf("Failed to create directory %s: %v", relativePath, err)
	}
	return tr
}

// Package adds a style package to a library tree using the default layout
// (tex/latex/<name>/<name>.sty).
func (tr *Tree) Package(name, content string) *Tree {
	tr.t.Helper()
	return tr.File("tex/latex/"+name+"/"+name+".sty", content)
}

// Bibliography adds a bibliography file to a library tree using the default
// layout (bibtex/bib/base/<relativePath>).
func (tr *Tree) Bibliography(relativePath, content string) *Tree {
	tr.t.Helper()
	return tr.File("bibtex/bib/base/"+relativePath, content)
}
