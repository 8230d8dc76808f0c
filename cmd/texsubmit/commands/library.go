package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"git.home.luguber.info/inful/texsubmit/internal/config"
	serrors "git.home.luguber.info/inful/texsubmit/internal/errors"
	"git.home.luguber.info/inful/texsubmit/internal/library"
)

// LibraryCmd implements the 'library' command.
type LibraryCmd struct {
	LibraryRoot string `name:"library-root" help:"Root of the local TeX library (default $HOME/texmf)" type:"path"`
	Format      string `short:"f" default:"text" help:"Output format (text or json)" enum:"text,json"`
}

func (l *LibraryCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	if l.LibraryRoot != "" {
		cfg.Library.Root = l.LibraryRoot
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	return RunLibrary(ctx, cfg, l.Format, os.Stdout)
}

type libraryListing struct {
	Packages       []library.Resource `json:"packages"`
	Bibliographies []library.Resource `json:"bibliographies"`
}

// RunLibrary lists the resources of the configured library.
func RunLibrary(ctx context.Context, cfg *config.Config, format string, w io.Writer) error {
	layout := cfg.LibraryLayout()
	set, err := library.Load(ctx, layout)
	if err != nil {
		return serrors.FileSystemError("load library", err)
	}

	if format == "json" {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(libraryListing{
			Packages:       set.Packages.Resources(),
			Bibliographies: set.Bibliographies.Resources(),
		})
	}

	writeSection(w, "Packages", layout.PackagesPath(), set.Packages)
	writeSection(w, "Bibliographies", layout.BibliographyPath(), set.Bibliographies)
	return nil
}

func writeSection(w io.Writer, title, dir string, lib *library.Library) {
	_, _ = fmt.Fprintf(w, "%s in %s (%d)\n", title, dir, lib.Len())
	for _, res := range lib.Resources() {
		_, _ = fmt.Fprintf(w, "  %-24s %s\n", res.Name, res.Path)
	}
}
