// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cargotally/cargotally/internal/report"
	"github.com/cargotally/cargotally/pkg/cargo"
)

// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
var ErrInvalidConfig = errors.New("invalid config")

type (
	// Config is the effective cargotally configuration.
	Config struct {
		// Root is the directory scanned for manifests.
		Root string `json:"root" mapstructure:"root"`
		// Output is a local path or an s3+http(s):// location.
		Output string `json:"output" mapstructure:"output"`
		// ManifestName is the manifest file base name.
		ManifestName string `json:"manifest_name" mapstructure:"manifest_name"`
		// Format selects the report rendering.
		Format report.Format `json:"format" mapstructure:"format"`
		// Exclude lists directory base-name globs to skip.
		Exclude []string `json:"exclude" mapstructure:"exclude"`
		// Lenient skips unparseable manifests instead of failing.
		Lenient bool `json:"lenient" mapstructure:"lenient"`
		// MetricsFile is the Prometheus textfile path; empty disables it.
		MetricsFile string `json:"metrics_file" mapstructure:"metrics_file"`
		// UI holds terminal output settings.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// UIConfig configures terminal output.
	UIConfig struct {
		// Verbose enables debug logging and full error chains.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}

	// InvalidConfigError is returned when Config.Validate finds invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		FieldErrors []error
	}
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Root:         ".",
		Output:       "count.csv",
		ManifestName: cargo.DefaultManifestName,
		Format:       report.FormatCSV,
		Exclude:      []string{},
		Lenient:      false,
		MetricsFile:  "",
		UI: UIConfig{
			Verbose: false,
		},
	}
}

// Validate checks the values CUE cannot see, such as values that arrive
// through environment variables or flags.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Root) == "" {
		errs = append(errs, errors.New("root: must not be empty"))
	}
	if strings.TrimSpace(c.Output) == "" {
		errs = append(errs, errors.New("output: must not be empty"))
	}
	if strings.TrimSpace(c.ManifestName) == "" {
		errs = append(errs, errors.New("manifest_name: must not be empty"))
	} else if strings.ContainsAny(c.ManifestName, `/\`) {
		errs = append(errs, fmt.Errorf("manifest_name: %q must be a file name, not a path", c.ManifestName))
	}
	if err := c.Format.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("format: %w", err))
	}
	for i, pattern := range c.Exclude {
		if _, err := filepath.Match(pattern, ""); err != nil {
			errs = append(errs, fmt.Errorf("exclude[%d]: %q: %w", i, pattern, err))
		}
	}

	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig and every field error.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}
