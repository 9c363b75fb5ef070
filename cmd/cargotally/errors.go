// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cargotally/cargotally/internal/discovery"
	"github.com/cargotally/cargotally/internal/issue"
	"github.com/cargotally/cargotally/internal/report"
	"github.com/cargotally/cargotally/pkg/cargo"
)

// classifyScanError turns pipeline errors into actionable errors linked to
// the issue catalog. Errors that already carry context pass through.
func classifyScanError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := issue.AsActionable(err); ok {
		return err
	}

	var (
		rootErr  *discovery.RootError
		readErr  *cargo.ReadError
		parseErr *cargo.ParseError
		writeErr *report.WriteError
	)

	switch {
	case errors.Is(err, context.Canceled):
		return issue.NewErrorContext().
			WithOperation("scan manifests").
			WithSuggestion("The run was interrupted; no report was written").
			Wrap(err).
			BuildError()
	case errors.As(err, &rootErr):
		return issue.NewErrorContext().
			WithOperation("scan manifests").
			WithResource(rootErr.Root).
			WithIssue(issue.RootNotFoundId).
			WithSuggestion("Pass an existing directory with --root").
			Wrap(rootErr.Err).
			BuildError()
	case errors.As(err, &readErr):
		return issue.NewErrorContext().
			WithOperation("read manifest").
			WithResource(readErr.Path).
			WithIssue(issue.ManifestReadFailedId).
			WithSuggestion("Check the file permissions").
			Wrap(readErr.Err).
			BuildError()
	case errors.As(err, &parseErr):
		resource := parseErr.Path
		if parseErr.Row > 0 {
			resource = fmt.Sprintf("%s:%d:%d", parseErr.Path, parseErr.Row, parseErr.Column)
		}
		return issue.NewErrorContext().
			WithOperation("parse manifest").
			WithResource(resource).
			WithIssue(issue.ManifestParseFailedId).
			WithSuggestion("Fix the TOML syntax at the reported position").
			WithSuggestion("Use --lenient to skip unparseable manifests").
			Wrap(parseErr.Err).
			BuildError()
	case errors.As(err, &writeErr):
		return issue.NewErrorContext().
			WithOperation("write report").
			WithResource(writeErr.Location).
			WithIssue(issue.ReportWriteFailedId).
			WithSuggestion("Check that the destination exists and is writable").
			Wrap(writeErr.Err).
			BuildError()
	case errors.Is(err, report.ErrInvalidFormat):
		return issue.NewErrorContext().
			WithOperation("render report").
			WithIssue(issue.InvalidFormatId).
			WithSuggestion("Use --format csv, json or yaml").
			Wrap(err).
			BuildError()
	default:
		return err
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
func formatErrorForDisplay(err error, verbose bool) string {
	if ae, ok := issue.AsActionable(err); ok {
		return ae.Format(verbose)
	}
	return err.Error()
}

// renderError prints err and, when it links to the issue catalog, the
// rendered guidance for that failure class.
func renderError(w io.Writer, err error, verbose bool) {
	if err == nil {
		return
	}

	_, _ = fmt.Fprintf(w, "\n%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, verbose))

	ae, ok := issue.AsActionable(err)
	if !ok || ae.Issue() == nil {
		return
	}
	if rendered, renderErr := ae.Issue().Render("auto"); renderErr == nil {
		_, _ = fmt.Fprint(w, rendered)
	}
}
