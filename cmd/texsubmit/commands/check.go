package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/texsubmit/internal/config"
	serrors "git.home.luguber.info/inful/texsubmit/internal/errors"
	"git.home.luguber.info/inful/texsubmit/internal/logfields"
	"git.home.luguber.info/inful/texsubmit/internal/pdftext"
	"git.home.luguber.info/inful/texsubmit/internal/scanner"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	Source string `arg:"" help:"Directory with rendered PDFs" default:"."`
	Format string `short:"f" default:"text" help:"Output format (text or json)" enum:"text,json"`
}

func (c *CheckCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	formatter := scanner.NewFormatter(c.Format, isColorSupported())
	report, err := RunCheck(ctx, cfg, c.Source, pdftext.New(), formatter, os.Stdout)
	if err != nil {
		return err
	}
	if !report.Empty() {
		return serrors.DefectsFound(len(report.Files))
	}
	return nil
}

// RunCheck scans every PDF below source and writes the report to w.
// Unreadable PDFs are logged and left out of the report.
func RunCheck(ctx context.Context, cfg *config.Config, source string, extractor scanner.PageExtractor, formatter scanner.Formatter, w io.Writer) (*scanner.Report, error) {
	if info, err := os.Stat(source); err != nil || !info.IsDir() {
		return nil, serrors.ValidationFailed("source", source+" is not a directory")
	}

	artifacts, err := scanner.DiscoverArtifacts(ctx, source, "")
	if err != nil {
		return nil, serrors.FileSystemError("discover rendered outputs", err)
	}

	report, err := scanner.New(cfg.Markers, extractor).Scan(ctx, artifacts)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		slog.Warn("Some rendered outputs could not be scanned", logfields.Error(err))
	}

	if err := formatter.Format(w, report); err != nil {
		return nil, serrors.InternalError("format report", err)
	}
	return report, nil
}
