package fsutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o600))
	}
}

func TestFind_MatchesNameRecursively(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "main.tex", "chapters/intro.tex", "chapters/intro.aux", "notes.txt", "deep/a/b/c.tex")

	got, err := Collect(Find(context.Background(), root, "*.tex"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "chapters", "intro.tex"),
		filepath.Join(root, "deep", "a", "b", "c.tex"),
		filepath.Join(root, "main.tex"),
	}, got)
}

func TestFind_CompoundExtension(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "paper.synctex.gz", "paper.gz")

	got, err := Collect(Find(context.Background(), root, "*.synctex.gz"))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "paper.synctex.gz")}, got)
}

func TestFind_StopsEarly(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.tex", "b.tex", "c.tex")

	n := 0
	for _, err := range Find(context.Background(), root, "*.tex") {
		require.NoError(t, err)
		n++
		if n == 1 {
			break
		}
	}
	assert.Equal(t, 1, n)
}

func TestFind_MissingRootYieldsError(t *testing.T) {
	_, err := Collect(Find(context.Background(), filepath.Join(t.TempDir(), "missing"), "*.tex"))
	assert.Error(t, err)
}

func TestFind_InvalidPattern(t *testing.T) {
	_, err := Collect(Find(context.Background(), t.TempDir(), "[a-"))
	assert.Error(t, err)
}

func TestFind_CanceledContext(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.tex")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Collect(Find(ctx, root, "*.tex"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCollect_SortsByPath(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a/b.tex", "a.tex")
	seq := Find(context.Background(), root, "*.tex")

	var walked []string
	for p, err := range seq {
		require.NoError(t, err)
		walked = append(walked, p)
	}
	assert.Equal(t, []string{filepath.Join(root, "a", "b.tex"), filepath.Join(root, "a.tex")}, walked)

	// Ranging again walks the tree again.
	collected, err := Collect(seq)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a.tex"), filepath.Join(root, "a", "b.tex")}, collected)
}
