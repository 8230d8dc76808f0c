package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/texsubmit/internal/logfields"
)

// EnvLibraryRoot overrides library.root.
const EnvLibraryRoot = "TEXSUBMIT_LIBRARY_ROOT"

// envFiles are tried in order; the first one found is loaded.
var envFiles = []string{".env", ".env.local"}

// loadEnvFile loads environment variables from the first .env file found.
// Variables already present in the process environment win.
func loadEnvFile() {
	for _, path := range envFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			slog.Warn("Failed to load environment file", logfields.Path(path), logfields.Error(err))
			continue
		}
		slog.Debug("Loaded environment variables", logfields.Path(path))
		return
	}
}

func applyEnvOverrides(cfg *Config) {
	if root := os.Getenv(EnvLibraryRoot); root != "" {
		cfg.Library.Root = root
	}
}
