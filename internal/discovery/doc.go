// SPDX-License-Identifier: MPL-2.0

// Package discovery locates manifest files under a root directory.
//
// The walk is recursive with unbounded depth and visits directories in
// lexical order. The root itself must be a readable directory; failures on
// individual entries below it are reported as Diagnostic values and the
// affected entry is skipped, so one unreadable subdirectory does not abort
// the whole scan.
//
// File organization:
//   - discovery.go: Discovery type, options, Walk and DiscoverAll
//   - diagnostic.go: Diagnostic and RootError
package discovery
