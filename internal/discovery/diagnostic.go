// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"errors"
	"fmt"
)

const (
	// SeverityWarning indicates a recoverable discovery warning.
	SeverityWarning Severity = "warning"
	// SeverityError indicates a non-fatal error diagnostic.
	SeverityError Severity = "error"

	// CodeEntryUnreadable marks a directory entry that could not be read during the walk.
	CodeEntryUnreadable = "entry_unreadable"
	// CodeManifestParseSkipped marks a manifest skipped because it failed to parse.
	CodeManifestParseSkipped = "manifest_parse_skipped"
)

// ErrRootUnreadable is the sentinel error wrapped by RootError.
var ErrRootUnreadable = errors.New("scan root is not a readable directory")

type (
	// Severity represents diagnostic severity.
	Severity string

	// Diagnostic is a structured, non-fatal finding that is returned to
	// callers rather than written to stderr, so the CLI controls rendering.
	Diagnostic struct {
		// Severity is the diagnostic level (warning or error).
		Severity Severity
		// Code is a machine-readable identifier (e.g., "entry_unreadable").
		Code string
		// Message is the human-readable description.
		Message string
		// Path is the file path associated with this diagnostic (optional).
		Path string
		// Cause is the underlying error (optional).
		Cause error
	}

	// RootError is returned when the scan root does not exist, is not a
	// directory or cannot be listed.
	RootError struct {
		Root string
		Err  error
	}
)

// Error implements the error interface.
func (e *RootError) Error() string {
	return fmt.Sprintf("scan root %s: %v", e.Root, e.Err)
}

// Unwrap returns both ErrRootUnreadable and the underlying cause.
func (e *RootError) Unwrap() []error { return []error{ErrRootUnreadable, e.Err} }

// String renders the diagnostic on a single line.
func (d Diagnostic) String() string {
	if d.Path != "" {
		return fmt.Sprintf("%s [%s] %s: %s", d.Severity, d.Code, d.Path, d.Message)
	}
	return fmt.Sprintf("%s [%s] %s", d.Severity, d.Code, d.Message)
}
