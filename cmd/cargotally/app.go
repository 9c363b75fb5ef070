// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cargotally/cargotally/internal/config"
	"github.com/cargotally/cargotally/internal/discovery"
	"github.com/cargotally/cargotally/internal/report"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer: every Cobra handler receives an App and reaches
	// configuration, sinks and output streams through it.
	App struct {
		Config      ConfigProvider
		Diagnostics DiagnosticRenderer
		NewSink     SinkFactory
		// ConfigDir overrides the platform config directory when set.
		ConfigDir string
		// BaseDir is where ./cargotally.cue and .env are looked up.
		BaseDir string
		stdout  io.Writer
		stderr  io.Writer
		verbose bool
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config      ConfigProvider
		Diagnostics DiagnosticRenderer
		NewSink     SinkFactory
		ConfigDir   string
		BaseDir     string
		Stdout      io.Writer
		Stderr      io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// SinkFactory returns the sink for an output location.
	SinkFactory func(location string) (report.Sink, error)

	// DiagnosticRenderer renders structured diagnostics.
	DiagnosticRenderer interface {
		Render(ctx context.Context, diags []discovery.Diagnostic, stderr io.Writer)
	}

	defaultDiagnosticRenderer struct{}
)

// NewApp creates the CLI composition root.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Diagnostics == nil {
		deps.Diagnostics = &defaultDiagnosticRenderer{}
	}
	if deps.NewSink == nil {
		deps.NewSink = report.NewSink
	}

	return &App{
		Config:      deps.Config,
		Diagnostics: deps.Diagnostics,
		NewSink:     deps.NewSink,
		ConfigDir:   deps.ConfigDir,
		BaseDir:     deps.BaseDir,
		stdout:      deps.Stdout,
		stderr:      deps.Stderr,
	}, nil
}

// loadOptions builds the provider options for an explicit --config value.
func (a *App) loadOptions(configPath string) config.LoadOptions {
	return config.LoadOptions{
		ConfigFilePath: configPath,
		ConfigDirPath:  a.ConfigDir,
		BaseDir:        a.BaseDir,
	}
}

// Render writes structured diagnostics to stderr with lipgloss styling.
func (r *defaultDiagnosticRenderer) Render(_ context.Context, diags []discovery.Diagnostic, stderr io.Writer) {
	for _, diag := range diags {
		prefix := WarningStyle.Render("warning")
		if diag.Severity == discovery.SeverityError {
			prefix = ErrorStyle.Render("error")
		}

		if diag.Path != "" {
			_, _ = fmt.Fprintf(stderr, "%s: %s (%s)\n", prefix, diag.Message, diag.Path)
			continue
		}

		_, _ = fmt.Fprintf(stderr, "%s: %s\n", prefix, diag.Message)
	}
}
