package config

import (
	"fmt"
	"path/filepath"
	"strings"

	serrors "git.home.luguber.info/inful/texsubmit/internal/errors"
	"git.home.luguber.info/inful/texsubmit/internal/policy"
)

// Validate checks the resolved configuration. Call after ApplyDefaults and
// after flag overrides.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Library.Root) == "" {
		return serrors.ValidationFailed("library.root", "must not be empty")
	}
	if err := validateGlob("library.bibliography", c.Library.Bibliography); err != nil {
		return err
	}
	if err := validateGlob("matching.document_glob", c.Matching.DocumentGlob); err != nil {
		return err
	}
	for i, kw := range c.Matching.PackageKeywords {
		if strings.TrimSpace(kw) == "" {
			return serrors.ValidationFailed(fmt.Sprintf("matching.package_keywords[%d]", i), "must not be empty")
		}
	}
	if len(c.Markers) == 0 {
		return serrors.ValidationFailed("markers", "at least one marker is required")
	}
	for i, m := range c.Markers {
		if m.Pattern == "" {
			return serrors.ValidationFailed(fmt.Sprintf("markers[%d].pattern", i), "must not be empty")
		}
		if m.Description == "" {
			return serrors.ValidationFailed(fmt.Sprintf("markers[%d].description", i), "must not be empty")
		}
	}
	if _, err := policy.Parse(c.OnDefect); err != nil {
		return err
	}
	if c.Compile.Enabled && strings.TrimSpace(c.Compile.Command) == "" {
		return serrors.ValidationFailed("compile.command", "required when compilation is enabled")
	}
	return nil
}

func validateGlob(field, pattern string) error {
	if pattern == "" {
		return serrors.ValidationFailed(field, "must not be empty")
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return serrors.ValidationFailed(field, fmt.Sprintf("invalid pattern %q: %v", pattern, err))
	}
	return nil
}
