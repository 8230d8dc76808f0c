// Package config loads the texsubmit configuration file.
//
// The file is optional. Values are resolved in this order: built-in
// defaults, the YAML file, environment overrides, then command line flags
// applied by the caller. ${VAR} expansion applies to path and command fields
// only; patterns and markers are taken literally.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/texsubmit/internal/scanner"
)

// DefaultFileName is looked up in the working directory when no --config
// flag is given.
const DefaultFileName = "texsubmit.yaml"

// ErrNotFound is returned by Load when the configuration file is missing.
var ErrNotFound = errors.New("configuration file not found")

// Config represents the application configuration
type Config struct {
	Library             LibraryConfig     `yaml:"library"`
	Matching            MatchingConfig    `yaml:"matching"`
	Markers             scanner.MarkerSet `yaml:"markers,omitempty"`
	ExtraMarkers        scanner.MarkerSet `yaml:"extra_markers,omitempty"`
	AuxiliaryExtensions []string          `yaml:"auxiliary_extensions,omitempty"`
	OnDefect            string            `yaml:"on_defect,omitempty"`
	Compile             CompileConfig     `yaml:"compile"`
	Copy                CopyConfig        `yaml:"copy"`
	MetricsFile         string            `yaml:"metrics_file,omitempty"`
}

// LibraryConfig locates the local resource library.
type LibraryConfig struct {
	Root            string `yaml:"root"`
	PackagesDir     string `yaml:"packages_dir,omitempty"`
	BibliographyDir string `yaml:"bibliography_dir,omitempty"`
	// Bibliography is a file name glob; "*.bib" selects every bibliography.
	Bibliography string `yaml:"bibliography,omitempty"`
}

// MatchingConfig controls how documents and their declarations are recognised.
type MatchingConfig struct {
	DocumentGlob    string   `yaml:"document_glob,omitempty"`
	PackageKeywords []string `yaml:"package_keywords,omitempty"`
	RootPattern     string   `yaml:"root_pattern,omitempty"`
}

// CompileConfig configures the optional compile stage.
type CompileConfig struct {
	Enabled bool     `yaml:"enabled"`
	Command string   `yaml:"command,omitempty"`
	Args    []string `yaml:"args,omitempty"`
}

// CopyConfig configures how the source tree is copied into the scratch workspace.
type CopyConfig struct {
	RespectGitignore bool `yaml:"respect_gitignore"`
}

// Load loads configuration from the specified file. The file must exist.
func Load(configPath string) (*Config, error) {
	loadEnvFile()

	// #nosec G304 - path is supplied by the operator
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, configPath)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOptional behaves like Load but falls back to the defaults when the
// file does not exist. The boolean reports whether a file was read.
func LoadOptional(configPath string) (*Config, bool, error) {
	cfg, err := Load(configPath)
	if errors.Is(err, ErrNotFound) {
		cfg = Default()
		applyEnvOverrides(cfg)
		return cfg, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return cfg, true, nil
}

// Parse decodes YAML configuration, expanding environment variables in path
// and command fields and applying defaults and environment overrides.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.expandEnv()
	applyEnvOverrides(&cfg)
	cfg.ApplyDefaults()
	return &cfg, nil
}

// expandEnv resolves ${VAR} references in the fields that name files or
// commands.
func (c *Config) expandEnv() {
	for _, field := range []*string{
		&c.Library.Root,
		&c.Library.PackagesDir,
		&c.Library.BibliographyDir,
		&c.Compile.Command,
		&c.MetricsFile,
	} {
		*field = os.ExpandEnv(*field)
	}
	for i, arg := range c.Compile.Args {
		c.Compile.Args[i] = os.ExpandEnv(arg)
	}
}
