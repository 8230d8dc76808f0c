package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/texsubmit/internal/compile"
	"git.home.luguber.info/inful/texsubmit/internal/config"
	"git.home.luguber.info/inful/texsubmit/internal/logfields"
	"git.home.luguber.info/inful/texsubmit/internal/metrics"
	"git.home.luguber.info/inful/texsubmit/internal/policy"
	"git.home.luguber.info/inful/texsubmit/internal/submission"
	"git.home.luguber.info/inful/texsubmit/internal/tree"
)

// PackCmd implements the default packaging command.
type PackCmd struct {
	Source string `arg:"" help:"LaTeX source directory"`
	Target string `arg:"" help:"Archive path; .zip is appended unless present"`

	OnDefect         string `name:"on-defect" help:"What to do about compilation failures and broken references: prompt, abort, warn or ignore"`
	Compile          bool   `help:"Compile every root document before checking rendered PDFs"`
	LibraryRoot      string `name:"library-root" help:"Root of the local TeX library (default $HOME/texmf)" type:"path"`
	Bibliography     string `help:"Bibliography file name pattern in the library, e.g. '*.bib'"`
	RespectGitignore bool   `name:"respect-gitignore" help:"Skip files matched by the source's .gitignore"`
	MetricsFile      string `name:"metrics-file" help:"Write run metrics in Prometheus text format to this file" type:"path"`
	KeepWorkspace    bool   `name:"keep-workspace" help:"Keep the scratch workspace for inspection" hidden:""`
}

func (p *PackCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	p.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	pol, err := policy.Parse(cfg.OnDefect)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	return RunPack(ctx, cfg, p.Source, p.Target, policy.NewStdio(pol), os.Stdout, p.KeepWorkspace)
}

// apply overrides configuration values with explicitly given flags.
func (p *PackCmd) apply(cfg *config.Config) {
	if p.OnDefect != "" {
		cfg.OnDefect = p.OnDefect
	}
	if p.Compile {
		cfg.Compile.Enabled = true
	}
	if p.LibraryRoot != "" {
		cfg.Library.Root = p.LibraryRoot
	}
	if p.Bibliography != "" {
		cfg.Library.Bibliography = p.Bibliography
	}
	if p.RespectGitignore {
		cfg.Copy.RespectGitignore = true
	}
	if p.MetricsFile != "" {
		cfg.MetricsFile = p.MetricsFile
	}
}

// RunPack packages source into target using a validated configuration.
func RunPack(ctx context.Context, cfg *config.Config, source, target string, gate policy.Gate, out io.Writer, keepWorkspace bool) error {
	packager := submission.NewPackager(gate).WithOutput(out)

	var recorder *metrics.PrometheusRecorder
	if cfg.MetricsFile != "" {
		recorder = metrics.NewPrometheusRecorder(nil)
		packager.WithRecorder(recorder)
	}
	if cfg.Compile.Enabled {
		packager.WithCompiler(compile.NewBinaryCompiler(cfg.Compile.Command, cfg.Compile.Args...))
	}

	_, err := packager.Run(ctx, submission.Options{
		Source:              source,
		Target:              target,
		Layout:              cfg.LibraryLayout(),
		Resolver:            cfg.ResolverOptions(),
		Markers:             cfg.Markers,
		AuxiliaryExtensions: cfg.AuxiliaryExtensions,
		Copy:                tree.CopyOptions{RespectGitignore: cfg.Copy.RespectGitignore},
		Compile:             cfg.Compile.Enabled,
		KeepWorkspace:       keepWorkspace,
	})

	if recorder != nil {
		if werr := recorder.WriteTextfile(cfg.MetricsFile); werr != nil {
			slog.Warn("Failed to write metrics", logfields.Path(cfg.MetricsFile), logfields.Error(werr))
		}
	}
	return err
}
