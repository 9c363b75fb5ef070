// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/cargotally/cargotally/pkg/types"
)

const (
	// ExitFailure is the exit code for scan, parse and write failures.
	ExitFailure types.ExitCode = 1
	// ExitConfig is the exit code for configuration errors.
	ExitConfig types.ExitCode = 2
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %s", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}
