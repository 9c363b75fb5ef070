// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cargotally/cargotally/pkg/cargo"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlags holds the values of the root command flags. Only flags the user
// actually set override the loaded configuration.
type rootFlags struct {
	configPath   string
	root         string
	output       string
	format       string
	manifestName string
	exclude      []string
	lenient      bool
	metricsFile  string
	print        bool
	watch        bool
	debounce     time.Duration
	verbose      bool
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "cargotally",
		Short: "Count external dependencies across Cargo manifests",
		Long: TitleStyle.Render("cargotally") + SubtitleStyle.Render(" - count external dependencies across Cargo manifests") + `

cargotally walks a directory tree, reads every Cargo.toml it finds and counts
how many manifests declare each external dependency, separately for
[dependencies], [dev-dependencies] and [build-dependencies]. Packages whose
manifest lives inside the tree are internal and never counted.

The report is written as group,name,count rows sorted by group, then by
descending count, then by name.

` + SubtitleStyle.Render("Examples:") + `
  cargotally                              Scan . and write count.csv
  cargotally --root ~/src/ws --print      Scan a workspace and show a table
  cargotally --format json -o deps.json   Write the report as JSON
  cargotally -o s3+https://s3.example.com/reports/deps.csv
  cargotally --watch --print              Keep the report current while editing
  cargotally config show                  Show the effective configuration`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScan(cmd, app, flags)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/cargotally/config.cue, then ./cargotally.cue)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging and full error chains")

	f := rootCmd.Flags()
	f.StringVar(&flags.root, "root", ".", "directory to scan for manifests")
	f.StringVarP(&flags.output, "output", "o", "count.csv", "report file, or s3+http(s)://host/bucket/key")
	f.StringVar(&flags.format, "format", "csv", "report format: csv, json or yaml")
	f.StringVar(&flags.manifestName, "manifest-name", cargo.DefaultManifestName, "manifest file name to look for")
	f.StringSliceVar(&flags.exclude, "exclude", nil, "directory name globs to skip (repeatable)")
	f.BoolVar(&flags.lenient, "lenient", false, "skip manifests that fail to parse instead of failing")
	f.StringVar(&flags.metricsFile, "metrics-file", "", "write run metrics in Prometheus text format to this file")
	f.BoolVar(&flags.print, "print", false, "also print the report as a table on stdout")
	f.BoolVarP(&flags.watch, "watch", "w", false, "rescan and rewrite the report whenever a manifest changes")
	f.DurationVar(&flags.debounce, "debounce", 500*time.Millisecond, "quiet period before a rescan in --watch mode")

	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	rootCmd.AddCommand(newConfigCommand(app, flags))

	return rootCmd
}

// Execute builds the production App and runs the root command.
// This is called by main.main().
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error:"), err)
		os.Exit(int(ExitFailure))
	}

	// fang overrides rootCmd.Version, so the version goes through fang.WithVersion.
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			renderError(w, err, app.verbose)
		}),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) && exitErr.Code.Validate() == nil && !exitErr.Code.IsSuccess() {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(int(ExitFailure))
	}
}
