package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serrors "git.home.luguber.info/inful/texsubmit/internal/errors"
	"git.home.luguber.info/inful/texsubmit/internal/matcher"
	"git.home.luguber.info/inful/texsubmit/internal/policy"
	"git.home.luguber.info/inful/texsubmit/internal/scanner"
	"git.home.luguber.info/inful/texsubmit/internal/tree"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	t.Setenv(EnvLibraryRoot, "")
	cfg := Default()

	assert.Equal(t, DefaultLibraryRoot(), cfg.Library.Root)
	assert.Equal(t, filepath.Join("tex", "latex"), cfg.Library.PackagesDir)
	assert.Equal(t, filepath.Join("bibtex", "bib", "base"), cfg.Library.BibliographyDir)
	assert.Equal(t, "library.bib", cfg.Library.Bibliography)
	assert.Equal(t, "*.tex", cfg.Matching.DocumentGlob)
	assert.Equal(t, matcher.DefaultPackageKeywords, cfg.Matching.PackageKeywords)
	assert.Equal(t, matcher.DefaultRootPattern, cfg.Matching.RootPattern)
	assert.Equal(t, scanner.DefaultMarkers(), cfg.Markers)
	assert.Equal(t, tree.DefaultAuxiliaryExtensions, cfg.AuxiliaryExtensions)
	assert.Equal(t, string(policy.Prompt), cfg.OnDefect)
	assert.Equal(t, DefaultCompileCommand, cfg.Compile.Command)
	assert.False(t, cfg.Compile.Enabled)
	assert.False(t, cfg.Copy.RespectGitignore)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FileValuesAndEnvExpansion(t *testing.T) {
	t.Setenv(EnvLibraryRoot, "")
	t.Setenv("PAPER_LIB", "/srv/texmf")
	path := writeConfig(t, `
library:
  root: ${PAPER_LIB}
  bibliography: "*.bib"
matching:
  package_keywords: [usepackage]
on_defect: warn
compile:
  enabled: true
copy:
  respect_gitignore: true
metrics_file: /tmp/texsubmit.prom
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/texmf", cfg.Library.Root)
	assert.Equal(t, "*.bib", cfg.Library.Bibliography)
	assert.Equal(t, []string{"usepackage"}, cfg.Matching.PackageKeywords)
	assert.Equal(t, "warn", cfg.OnDefect)
	assert.True(t, cfg.Compile.Enabled)
	assert.Equal(t, DefaultCompileArgs, cfg.Compile.Args)
	assert.True(t, cfg.Copy.RespectGitignore)
	assert.Equal(t, "/tmp/texsubmit.prom", cfg.MetricsFile)
	require.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverridesLibraryRoot(t *testing.T) {
	t.Setenv(EnvLibraryRoot, "/override")
	path := writeConfig(t, "library:\n  root: /from/file\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/override", cfg.Library.Root)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "library: [unterminated\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestLoadOptional_FallsBackToDefaults(t *testing.T) {
	t.Setenv(EnvLibraryRoot, "/env/texmf")
	cfg, found, err := LoadOptional(filepath.Join(t.TempDir(), DefaultFileName))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, "/env/texmf", cfg.Library.Root)
	assert.Equal(t, scanner.DefaultMarkers(), cfg.Markers)
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(EnvLibraryRoot, "")
	require.NoError(t, os.Unsetenv(EnvLibraryRoot))
	t.Cleanup(func() { _ = os.Unsetenv(EnvLibraryRoot) })
	require.NoError(t, os.WriteFile(".env", []byte(EnvLibraryRoot+"=/dotenv/texmf\n"), 0o600))

	cfg, _, err := LoadOptional(DefaultFileName)
	require.NoError(t, err)
	assert.Equal(t, "/dotenv/texmf", cfg.Library.Root)
}

func TestMarkers_ReplaceAndExtend(t *testing.T) {
	cfg, err := Parse([]byte(`
markers:
  - pattern: "!!"
    description: "placeholders"
extra_markers:
  - pattern: "TODO"
    description: "todo notes"
`))
	require.NoError(t, err)
	assert.Equal(t, scanner.MarkerSet{
		{Pattern: "!!", Description: "placeholders"},
		{Pattern: "TODO", Description: "todo notes"},
	}, cfg.Markers)

	cfg, err = Parse([]byte("extra_markers:\n  - pattern: TODO\n    description: todo notes\n"))
	require.NoError(t, err)
	require.Len(t, cfg.Markers, 3)
	assert.Equal(t, "??", cfg.Markers[0].Pattern)
	assert.Equal(t, "TODO", cfg.Markers[2].Pattern)
}

func TestParse_EmptyAuxiliaryListKeepsNothing(t *testing.T) {
	cfg, err := Parse([]byte("auxiliary_extensions: []\n"))
	require.NoError(t, err)
	assert.Empty(t, cfg.AuxiliaryExtensions)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"unknown policy", func(c *Config) { c.OnDefect = "maybe" }, "on_defect"},
		{"empty marker pattern", func(c *Config) { c.Markers[0].Pattern = "" }, "markers[0].pattern"},
		{"no markers", func(c *Config) { c.Markers = nil }, "markers"},
		{"bad glob", func(c *Config) { c.Matching.DocumentGlob = "[" }, "matching.document_glob"},
		{"blank keyword", func(c *Config) { c.Matching.PackageKeywords = []string{" "} }, "matching.package_keywords[0]"},
		{"compile without command", func(c *Config) { c.Compile.Enabled = true; c.Compile.Command = "" }, "compile.command"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			se, ok := serrors.As(err)
			require.True(t, ok)
			assert.Equal(t, serrors.CategoryValidation, se.Category)
			assert.Equal(t, tc.field, se.Context["field"])
		})
	}
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, Init(path, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "on_defect: prompt")
	assert.Contains(t, string(data), "${HOME}/texmf")

	err = Init(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	require.NoError(t, Init(path, true))

	t.Setenv("HOME", "/home/author")
	t.Setenv(EnvLibraryRoot, "")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/home/author/texmf", cfg.Library.Root)
	assert.Equal(t, scanner.DefaultMarkers(), cfg.Markers)
}

func TestParse_PatternsAreNotExpanded(t *testing.T) {
	t.Setenv(EnvLibraryRoot, "")
	t.Setenv("PAPER_LIB", "/srv/texmf")
	t.Setenv("OUT", "/var/metrics")

	cfg, err := Parse([]byte(`
library:
  root: ${PAPER_LIB}
matching:
  root_pattern: '^\\documentclass$'
markers:
  - pattern: "$?"
    description: unexpanded macro
metrics_file: $OUT/run.prom
compile:
  command: latexmk
  args: ["-outdir=${OUT}"]
`))
	require.NoError(t, err)

	assert.Equal(t, "/srv/texmf", cfg.Library.Root)
	assert.Equal(t, `^\\documentclass$`, cfg.Matching.RootPattern)
	require.Len(t, cfg.Markers, 1)
	assert.Equal(t, "$?", cfg.Markers[0].Pattern)
	assert.Equal(t, "/var/metrics/run.prom", cfg.MetricsFile)
	assert.Equal(t, []string{"-outdir=/var/metrics"}, cfg.Compile.Args)
}
