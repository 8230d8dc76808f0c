package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-isatty"

	"git.home.luguber.info/inful/texsubmit/internal/config"
	serrors "git.home.luguber.info/inful/texsubmit/internal/errors"
	"git.home.luguber.info/inful/texsubmit/internal/logfields"
)

// EnvLogLevel overrides the log level chosen by --verbose.
const EnvLogLevel = "TEXSUBMIT_LOG_LEVEL"

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (texsubmit.yaml is used when present)" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Pack    PackCmd    `cmd:"" default:"withargs" help:"Package a LaTeX tree into a submission archive (default command)"`
	Check   CheckCmd   `cmd:"" help:"Check rendered PDFs for broken references and citations"`
	Watch   WatchCmd   `cmd:"" help:"Re-check rendered PDFs whenever they change"`
	Library LibraryCmd `cmd:"" help:"List the packages and bibliographies the library provides"`
	Init    InitCmd    `cmd:"" help:"Write an example configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	if env := strings.TrimSpace(os.Getenv(EnvLogLevel)); env != "" {
		if err := level.UnmarshalText([]byte(env)); err != nil {
			return serrors.ValidationFailed(EnvLogLevel, "unknown log level "+env)
		}
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// LoadConfig reads the configuration named by --config, or texsubmit.yaml
// from the working directory when present.
func (c *CLI) LoadConfig() (*config.Config, error) {
	if c.Config == "" {
		cfg, found, err := config.LoadOptional(config.DefaultFileName)
		if err != nil {
			return nil, serrors.ConfigInvalid(config.DefaultFileName, err)
		}
		if found {
			slog.Debug("Loaded configuration", logfields.Path(config.DefaultFileName))
		}
		return cfg, nil
	}

	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, serrors.ConfigInvalid(c.Config, err)
	}
	slog.Debug("Loaded configuration", logfields.Path(c.Config))
	return cfg, nil
}

// configPath returns the file init writes to.
func (c *CLI) configPath() string {
	if c.Config != "" {
		return c.Config
	}
	return config.DefaultFileName
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// isColorSupported checks if the terminal supports color output.
func isColorSupported() bool {
	fd := os.Stdout.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return false
	}

	// Check NO_COLOR environment variable (https://no-color.org/)
	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	term := os.Getenv("TERM")
	return term != "dumb" && term != ""
}
