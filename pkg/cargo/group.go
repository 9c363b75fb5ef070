// SPDX-License-Identifier: MPL-2.0

package cargo

import (
	"errors"
	"fmt"
)

const (
	// GroupDependencies is the runtime dependency table ([dependencies]).
	GroupDependencies Group = "dependencies"
	// GroupDevDependencies is the test/example dependency table ([dev-dependencies]).
	GroupDevDependencies Group = "dev-dependencies"
	// GroupBuildDependencies is the build script dependency table ([build-dependencies]).
	GroupBuildDependencies Group = "build-dependencies"
)

// ErrInvalidGroup is the sentinel error wrapped by InvalidGroupError.
var ErrInvalidGroup = errors.New("invalid dependency group")

type (
	// Group names one of the dependency tables of a manifest.
	Group string

	// InvalidGroupError is returned when a Group value is not one of the
	// known dependency tables. It wraps ErrInvalidGroup for errors.Is().
	InvalidGroupError struct {
		Value Group
	}
)

// Groups returns every known dependency group in declaration order.
func Groups() []Group {
	return []Group{GroupDependencies, GroupDevDependencies, GroupBuildDependencies}
}

// String returns the table name of the group.
func (g Group) String() string { return string(g) }

// Validate returns an error if g is not a known dependency group.
func (g Group) Validate() error {
	switch g {
	case GroupDependencies, GroupDevDependencies, GroupBuildDependencies:
		return nil
	default:
		return &InvalidGroupError{Value: g}
	}
}

// Error implements the error interface.
func (e *InvalidGroupError) Error() string {
	return fmt.Sprintf("invalid dependency group %q (valid: dependencies, dev-dependencies, build-dependencies)", e.Value)
}

// Unwrap returns ErrInvalidGroup for errors.Is() compatibility.
func (e *InvalidGroupError) Unwrap() error { return ErrInvalidGroup }
