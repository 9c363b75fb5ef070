// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cargotally/cargotally/internal/config"
	"github.com/cargotally/cargotally/internal/watch"

	"github.com/charmbracelet/log"
)

// runWatch writes the report once, then again after every manifest change
// until ctx is cancelled. Failed cycles are reported and the watch goes on,
// since the user is expected to fix the manifest and save again.
func runWatch(ctx context.Context, app *App, cfg *config.Config, flags *rootFlags, logger *log.Logger) error {
	if flags.debounce < 0 {
		return &ExitError{Code: ExitConfig, Err: fmt.Errorf("--debounce must not be negative, got %s", flags.debounce)}
	}

	cycle := func(ctx context.Context) {
		if err := scanAndReport(ctx, app, cfg, flags.print, logger); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			renderError(app.stderr, unwrapExit(err), app.verbose)
		}
	}

	cycle(ctx)

	w, err := watch.New(watch.Config{
		Root:         cfg.Root,
		ManifestName: cfg.ManifestName,
		Exclude:      cfg.Exclude,
		Debounce:     flags.debounce,
		Logger:       logger,
		OnChange: func(ctx context.Context, changed []string) error {
			_, _ = fmt.Fprintf(app.stderr, "%s %s changed, rescanning\n",
				SubtitleStyle.Render("→"), strings.Join(changed, ", "))
			cycle(ctx)
			return nil
		},
	})
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: classifyScanError(err)}
	}

	_, _ = fmt.Fprintf(app.stderr, "%s Watching %s for manifest changes (Ctrl+C to stop)\n",
		SubtitleStyle.Render("→"), CmdStyle.Render(w.Root()))

	if err := w.Run(ctx); err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}
	return nil
}

// unwrapExit returns the error carried by an *ExitError.
func unwrapExit(err error) error {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err != nil {
		return exitErr.Err
	}
	return err
}
