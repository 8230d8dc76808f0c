package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const exampleHeader = `# texsubmit configuration
#
# Paths, compile.command and compile.args support ${VAR} expansion; patterns
# and markers are literal. TEXSUBMIT_LIBRARY_ROOT overrides library.root.
# on_defect is one of: prompt, abort, warn, ignore.

`

// Init creates a new configuration file with example content. An existing
// file is only replaced when force is set.
func Init(configPath string, force bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}

	example := Default()
	example.Library.Root = "${HOME}/texmf"

	data, err := yaml.Marshal(example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// #nosec G304 - path is supplied by the operator
	f, err := os.OpenFile(configPath, flags, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
		}
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if _, err := f.WriteString(exampleHeader); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return f.Close()
}
