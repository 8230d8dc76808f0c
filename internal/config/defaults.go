package config

import (
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/texsubmit/internal/library"
	"git.home.luguber.info/inful/texsubmit/internal/matcher"
	"git.home.luguber.info/inful/texsubmit/internal/policy"
	"git.home.luguber.info/inful/texsubmit/internal/resolver"
	"git.home.luguber.info/inful/texsubmit/internal/scanner"
	"git.home.luguber.info/inful/texsubmit/internal/tree"
)

// DefaultCompileCommand is the compiler used when compilation is enabled
// without an explicit command.
const DefaultCompileCommand = "latexmk"

// DefaultCompileArgs are passed before the document file name.
var DefaultCompileArgs = []string{"-pdf", "-interaction=nonstopmode"}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// DefaultLibraryRoot is $HOME/texmf, or "texmf" when the home directory is unknown.
func DefaultLibraryRoot() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "texmf"
	}
	return filepath.Join(home, "texmf")
}

// ApplyDefaults fills every unset field. Extra markers are appended to the
// active marker set.
func (c *Config) ApplyDefaults() {
	layout := library.DefaultLayout(c.Library.Root)
	if c.Library.Root == "" {
		c.Library.Root = DefaultLibraryRoot()
	}
	if c.Library.PackagesDir == "" {
		c.Library.PackagesDir = layout.PackagesDir
	}
	if c.Library.BibliographyDir == "" {
		c.Library.BibliographyDir = layout.BibliographyDir
	}
	if c.Library.Bibliography == "" {
		c.Library.Bibliography = layout.Bibliography
	}

	if c.Matching.DocumentGlob == "" {
		c.Matching.DocumentGlob = resolver.DefaultDocumentGlob
	}
	if len(c.Matching.PackageKeywords) == 0 {
		c.Matching.PackageKeywords = append([]string(nil), matcher.DefaultPackageKeywords...)
	}
	if c.Matching.RootPattern == "" {
		c.Matching.RootPattern = matcher.DefaultRootPattern
	}

	if len(c.Markers) == 0 {
		c.Markers = scanner.DefaultMarkers()
	}
	if len(c.ExtraMarkers) > 0 {
		c.Markers = append(c.Markers, c.ExtraMarkers...)
		c.ExtraMarkers = nil
	}

	if c.AuxiliaryExtensions == nil {
		c.AuxiliaryExtensions = append([]string(nil), tree.DefaultAuxiliaryExtensions...)
	}
	if c.OnDefect == "" {
		c.OnDefect = string(policy.Prompt)
	}
	if c.Compile.Command == "" {
		c.Compile.Command = DefaultCompileCommand
	}
	if len(c.Compile.Args) == 0 {
		c.Compile.Args = append([]string(nil), DefaultCompileArgs...)
	}
}

// LibraryLayout converts the library section into a library.Layout.
func (c *Config) LibraryLayout() library.Layout {
	return library.Layout{
		Root:            c.Library.Root,
		PackagesDir:     c.Library.PackagesDir,
		BibliographyDir: c.Library.BibliographyDir,
		Bibliography:    c.Library.Bibliography,
	}
}

// ResolverOptions converts the matching section into resolver options.
func (c *Config) ResolverOptions() resolver.Options {
	return resolver.Options{
		DocumentGlob:    c.Matching.DocumentGlob,
		PackageKeywords: c.Matching.PackageKeywords,
		RootPattern:     c.Matching.RootPattern,
	}
}
