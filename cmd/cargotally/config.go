// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/cargotally/cargotally/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `cargotally config` command tree.
// Subcommands that read configuration use the App's ConfigProvider.
func newConfigCommand(app *App, flags *rootFlags) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage cargotally configuration",
		Long: `Manage cargotally configuration.

Configuration is read from the first file found in:
  - the path given with --config (no other file is read)
  - Linux: ~/.config/cargotally/config.cue
    macOS: ~/Library/Application Support/cargotally/config.cue
    Windows: %APPDATA%\cargotally\config.cue
  - ./cargotally.cue

A .env file in the working directory and CARGOTALLY_* environment variables
(CARGOTALLY_OUTPUT, CARGOTALLY_UI_VERBOSE, ...) override the file; flags
override everything.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadEffectiveConfig(cmd, app, flags)
			if err != nil {
				return &ExitError{Code: ExitConfig, Err: err}
			}
			source, err := config.Resolve(app.loadOptions(flags.configPath))
			if err != nil {
				return &ExitError{Code: ExitConfig, Err: err}
			}
			showConfig(app.stdout, cfg, source)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showConfigPath(app, flags.configPath)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.CreateDefaultConfig(app.ConfigDir)
			if err != nil {
				return &ExitError{Code: ExitConfig, Err: err}
			}
			_, _ = fmt.Fprintf(app.stdout, "%s Configuration file at %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadEffectiveConfig(cmd, app, flags)
			if err != nil {
				return &ExitError{Code: ExitConfig, Err: err}
			}
			_, _ = fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(w io.Writer, cfg *config.Config, source string) {
	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	_, _ = fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	_, _ = fmt.Fprintln(w)

	if source != "" {
		_, _ = fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), source)
	} else {
		_, _ = fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	_, _ = fmt.Fprintln(w)

	row := func(key, value string) {
		_, _ = fmt.Fprintf(w, "%s: %s\n", keyStyle.Render(key), valueStyle.Render(value))
	}
	row("root", cfg.Root)
	row("output", cfg.Output)
	row("manifest_name", cfg.ManifestName)
	row("format", cfg.Format.String())
	if len(cfg.Exclude) == 0 {
		_, _ = fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("exclude"), SubtitleStyle.Render("(none)"))
	} else {
		row("exclude", strings.Join(cfg.Exclude, ", "))
	}
	row("lenient", fmt.Sprintf("%v", cfg.Lenient))
	if cfg.MetricsFile == "" {
		_, _ = fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("metrics_file"), SubtitleStyle.Render("(disabled)"))
	} else {
		row("metrics_file", cfg.MetricsFile)
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	_, _ = fmt.Fprintf(w, "  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))
}

func showConfigPath(app *App, configPath string) error {
	filePath, err := config.FilePath(app.ConfigDir)
	if err != nil {
		return &ExitError{Code: ExitConfig, Err: err}
	}
	active, err := config.Resolve(app.loadOptions(configPath))
	if err != nil {
		return &ExitError{Code: ExitConfig, Err: err}
	}
	if active == "" {
		active = "(none, using defaults)"
	}

	_, _ = fmt.Fprintf(app.stdout, "Config file: %s\n", filePath)
	_, _ = fmt.Fprintf(app.stdout, "Local file: %s\n", config.LocalConfigFileName)
	_, _ = fmt.Fprintf(app.stdout, "Active: %s\n", active)
	return nil
}
