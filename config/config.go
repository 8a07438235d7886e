// Package config loads the header generation settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/ardanlabs/cheddar/ctype"
)

// Config controls how a header is assembled.
type Config struct {
	// Name identifies the header. It seeds the include guard and the
	// version macro prefix.
	Name string `yaml:"name"`

	// Output is the header path. Empty means standard output.
	Output string `yaml:"output"`

	// IncludeGuard overrides the generated guard macro.
	IncludeGuard string `yaml:"include_guard"`

	// Version, when set, is emitted as <VersionPrefix>_VERSION and its
	// MAJOR, MINOR and PATCH components.
	Version       string `yaml:"version"`
	VersionPrefix string `yaml:"version_prefix"`

	// InsertCode is copied verbatim after the standard includes.
	InsertCode string `yaml:"insert_code"`

	// Strict aborts generation on the first untranslatable item
	// instead of skipping it.
	Strict bool `yaml:"strict"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default returns the configuration used for source when no config
// file is given.
func Default(source string) *Config {
	base := filepath.Base(source)
	name := strings.TrimSuffix(base, filepath.Ext(base))

	return &Config{
		Name:      name,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load reads a YAML config file and layers it over the defaults for
// source.
func Load(path, source string) (*Config, error) {
	cfg := Default(source)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decoding config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate reports settings that would produce a broken header.
func (c *Config) Validate() error {
	var errs []error

	if c.IncludeGuard == "" && ctype.SanitizeID(c.Name) == "" {
		errs = append(errs, fmt.Errorf("name %q has no characters usable in an include guard", c.Name))
	}

	if c.IncludeGuard != "" && !isIdent(c.IncludeGuard) {
		errs = append(errs, fmt.Errorf("include guard %q is not a C identifier", c.IncludeGuard))
	}

	if c.Version != "" {
		if _, err := semver.StrictNewVersion(c.Version); err != nil {
			errs = append(errs, fmt.Errorf("version %q: %w", c.Version, err))
		}
	}

	switch {
	case c.VersionPrefix != "" && !isIdent(c.VersionPrefix):
		errs = append(errs, fmt.Errorf("version prefix %q is not a C identifier", c.VersionPrefix))
	case c.Version != "" && !isIdent(c.MacroPrefix()):
		errs = append(errs, fmt.Errorf("name %q does not give a valid version macro prefix, set version_prefix", c.Name))
	}

	return errors.Join(errs...)
}

// isIdent reports whether s can be used as a C macro name.
func isIdent(s string) bool {
	return s != "" && ctype.SanitizeID(s) == s && (s[0] < '0' || s[0] > '9')
}

// Guard returns the include guard macro for the header.
func (c *Config) Guard() string {
	if c.IncludeGuard != "" {
		return c.IncludeGuard
	}
	return "cheddar_generated_" + ctype.SanitizeID(c.Name) + "_h"
}

// ParsedVersion returns the configured version, or nil when none is set.
func (c *Config) ParsedVersion() (*semver.Version, error) {
	if c.Version == "" {
		return nil, nil
	}
	return semver.StrictNewVersion(c.Version)
}

// MacroPrefix returns the prefix of the version macros.
func (c *Config) MacroPrefix() string {
	if c.VersionPrefix != "" {
		return c.VersionPrefix
	}
	return strings.ToUpper(ctype.SanitizeID(c.Name))
}
