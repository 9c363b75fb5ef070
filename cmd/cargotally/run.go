// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/cargotally/cargotally/internal/config"
	"github.com/cargotally/cargotally/internal/issue"
	"github.com/cargotally/cargotally/internal/metrics"
	"github.com/cargotally/cargotally/internal/report"
	"github.com/cargotally/cargotally/internal/scan"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// runScan runs the root command: one scan-and-report cycle, or with --watch
// a cycle now and another whenever a manifest changes.
func runScan(cmd *cobra.Command, app *App, flags *rootFlags) error {
	ctx := cmd.Context()

	cfg, err := loadEffectiveConfig(cmd, app, flags)
	if err != nil {
		return &ExitError{Code: ExitConfig, Err: err}
	}

	logger := newLogger(app.stderr, cfg.UI.Verbose)

	if flags.watch {
		return runWatch(ctx, app, cfg, flags, logger)
	}
	return scanAndReport(ctx, app, cfg, flags.print, logger)
}

// scanAndReport scans cfg.Root once and writes the report to cfg.Output.
func scanAndReport(ctx context.Context, app *App, cfg *config.Config, printTable bool, logger *log.Logger) error {
	var recorder *metrics.Recorder
	if cfg.MetricsFile != "" {
		recorder = metrics.NewRecorder()
	}

	scanner := scan.New(
		scan.WithManifestName(cfg.ManifestName),
		scan.WithExclude(cfg.Exclude...),
		scan.WithLenient(cfg.Lenient),
		scan.WithLogger(logger),
		scan.WithMetrics(recorder),
	)

	result, err := scanner.Run(ctx, cfg.Root)
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: classifyScanError(err)}
	}
	app.Diagnostics.Render(ctx, result.Diagnostics, app.stderr)

	data, err := report.Render(result.Entries, cfg.Format)
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: classifyScanError(err)}
	}

	sink, err := app.NewSink(cfg.Output)
	if err != nil {
		return &ExitError{Code: ExitConfig, Err: classifyScanError(err)}
	}
	if s3, ok := sink.(*report.S3Sink); ok {
		s3.ContentType = cfg.Format.ContentType()
	}
	if err := sink.Write(ctx, data); err != nil {
		return &ExitError{Code: ExitFailure, Err: classifyScanError(err)}
	}
	logger.Debug("report written", "location", sink.Location(), "bytes", len(data))

	if recorder != nil {
		if err := recorder.WriteTextfile(cfg.MetricsFile); err != nil {
			return &ExitError{Code: ExitFailure, Err: issue.NewErrorContext().
				WithOperation("write metrics").
				WithResource(cfg.MetricsFile).
				WithSuggestion("Check that the directory of --metrics-file exists and is writable").
				Wrap(err).
				BuildError()}
		}
	}

	if printTable {
		_, _ = fmt.Fprintln(app.stdout, report.Table(result.Entries))
	}

	_, _ = fmt.Fprintf(app.stderr, "%s %d entries from %d manifests written to %s\n",
		SuccessStyle.Render("✓"), len(result.Entries), result.Stats.Parsed-result.Stats.Empty, CmdStyle.Render(sink.Location()))

	return nil
}

// loadEffectiveConfig loads the configuration, applies the flags the user set
// and validates the result.
func loadEffectiveConfig(cmd *cobra.Command, app *App, flags *rootFlags) (*config.Config, error) {
	cfg, err := app.Config.Load(cmd.Context(), app.loadOptions(flags.configPath))
	if err != nil {
		return nil, err
	}

	applyFlagOverrides(cmd.Flags(), flags, cfg)
	app.verbose = cfg.UI.Verbose

	if err := cfg.Validate(); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithIssue(issue.ConfigLoadFailedId).
			WithSuggestion("Check the values passed on the command line").
			Wrap(err).
			BuildError()
	}

	return cfg, nil
}

// applyFlagOverrides copies every flag the user set onto cfg.
func applyFlagOverrides(fs *pflag.FlagSet, flags *rootFlags, cfg *config.Config) {
	if fs.Changed("root") {
		cfg.Root = flags.root
	}
	if fs.Changed("output") {
		cfg.Output = flags.output
	}
	if fs.Changed("format") {
		cfg.Format = report.Format(flags.format)
	}
	if fs.Changed("manifest-name") {
		cfg.ManifestName = flags.manifestName
	}
	if fs.Changed("exclude") {
		cfg.Exclude = flags.exclude
	}
	if fs.Changed("lenient") {
		cfg.Lenient = flags.lenient
	}
	if fs.Changed("metrics-file") {
		cfg.MetricsFile = flags.metricsFile
	}
	if fs.Changed("verbose") {
		cfg.UI.Verbose = flags.verbose
	}
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: "cargotally",
		Level:  level,
	})
}
