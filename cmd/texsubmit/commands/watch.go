package commands

import (
	"context"
	"os"
	"time"

	"git.home.luguber.info/inful/texsubmit/internal/pdftext"
	"git.home.luguber.info/inful/texsubmit/internal/scanner"
	"git.home.luguber.info/inful/texsubmit/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Source   string        `arg:"" help:"Directory with rendered PDFs" default:"."`
	Interval time.Duration `help:"Also rescan at this interval (0 disables)" default:"0s"`
	Debounce time.Duration `help:"Wait for changes to settle before rescanning" default:"500ms"`
}

func (c *WatchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	extractor := pdftext.New()
	formatter := scanner.NewFormatter("text", isColorSupported())
	w, err := watch.New(c.Source, func(ctx context.Context) error {
		_, err := RunCheck(ctx, cfg, c.Source, extractor, formatter, os.Stdout)
		return err
	}, watch.Options{
		Pattern:  scanner.DefaultArtifactGlob,
		Debounce: c.Debounce,
		Interval: c.Interval,
	})
	if err != nil {
		return err
	}
	return w.Run(ctx)
}
