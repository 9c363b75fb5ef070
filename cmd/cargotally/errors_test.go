// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/cargotally/cargotally/internal/discovery"
	"github.com/cargotally/cargotally/internal/issue"
	"github.com/cargotally/cargotally/internal/report"
	"github.com/cargotally/cargotally/pkg/cargo"
)

func TestClassifyScanError(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")

	tests := []struct {
		name         string
		err          error
		wantIssue    issue.Id
		wantResource string
	}{
		{
			name:         "missing root",
			err:          &discovery.RootError{Root: "/nope", Err: fs.ErrNotExist},
			wantIssue:    issue.RootNotFoundId,
			wantResource: "/nope",
		},
		{
			name:         "read failure",
			err:          fmt.Errorf("scan: %w", &cargo.ReadError{Path: "a/Cargo.toml", Err: fs.ErrPermission}),
			wantIssue:    issue.ManifestReadFailedId,
			wantResource: "a/Cargo.toml",
		},
		{
			name:         "parse failure with position",
			err:          &cargo.ParseError{Path: "b/Cargo.toml", Row: 3, Column: 7, Err: cause},
			wantIssue:    issue.ManifestParseFailedId,
			wantResource: "b/Cargo.toml:3:7",
		},
		{
			name:         "parse failure without position",
			err:          &cargo.ParseError{Path: "c/Cargo.toml", Err: cause},
			wantIssue:    issue.ManifestParseFailedId,
			wantResource: "c/Cargo.toml",
		},
		{
			name:         "write failure",
			err:          &report.WriteError{Location: "out/count.csv", Err: fs.ErrNotExist},
			wantIssue:    issue.ReportWriteFailedId,
			wantResource: "out/count.csv",
		},
		{
			name:      "invalid format",
			err:       &report.InvalidFormatError{Value: "xml"},
			wantIssue: issue.InvalidFormatId,
		},
		{
			name: "canceled",
			err:  fmt.Errorf("walk: %w", context.Canceled),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := classifyScanError(tt.err)
			ae, ok := issue.AsActionable(got)
			if !ok {
				t.Fatalf("classifyScanError() = %T, want *issue.ActionableError", got)
			}
			if ae.IssueID != tt.wantIssue {
				t.Errorf("IssueID = %d, want %d", ae.IssueID, tt.wantIssue)
			}
			if ae.Resource != tt.wantResource {
				t.Errorf("Resource = %q, want %q", ae.Resource, tt.wantResource)
			}
			if !ae.HasSuggestions() {
				t.Error("classified error has no suggestions")
			}
		})
	}

	t.Run("passthrough", func(t *testing.T) {
		t.Parallel()

		if classifyScanError(nil) != nil {
			t.Error("classifyScanError(nil) should be nil")
		}
		if got := classifyScanError(cause); got != cause {
			t.Errorf("classifyScanError(plain) = %v, want unchanged", got)
		}
		ae := issue.NewErrorContext().WithOperation("x").Wrap(cause).BuildError()
		if got := classifyScanError(ae); got != ae {
			t.Errorf("classifyScanError(actionable) = %v, want unchanged", got)
		}
	})
}

func TestRenderError(t *testing.T) {
	t.Parallel()

	t.Run("nil", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		renderError(&buf, nil, false)
		if buf.Len() != 0 {
			t.Errorf("renderError(nil) wrote %q", buf.String())
		}
	})

	t.Run("plain", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		renderError(&buf, errors.New("plain failure"), false)
		if !strings.Contains(buf.String(), "Error:") || !strings.Contains(buf.String(), "plain failure") {
			t.Errorf("renderError() = %q", buf.String())
		}
	})

	t.Run("catalog issue", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		err := classifyScanError(&discovery.RootError{Root: "/nope", Err: fs.ErrNotExist})
		renderError(&buf, err, true)

		out := buf.String()
		if !strings.Contains(out, "/nope") {
			t.Errorf("renderError() missing resource:\n%s", out)
		}
		if !strings.Contains(out, "--root") {
			t.Errorf("renderError() missing suggestion:\n%s", out)
		}
	})
}

func TestExitError(t *testing.T) {
	t.Parallel()

	cause := errors.New("inner")
	err := &ExitError{Code: ExitConfig, Err: cause}
	if !errors.Is(err, cause) {
		t.Error("ExitError should unwrap to its cause")
	}
	if err.Error() != "inner" {
		t.Errorf("Error() = %q, want %q", err.Error(), "inner")
	}
	if got := (&ExitError{Code: ExitFailure}).Error(); got != "exit status 1" {
		t.Errorf("Error() without cause = %q, want %q", got, "exit status 1")
	}
}
