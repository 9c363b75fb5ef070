// SPDX-License-Identifier: MPL-2.0

// Package tally counts how many manifests reference each external dependency.
//
// Counting happens in two passes over the parsed manifests. The first pass
// collects every self-declared package name into a PackageSet; a dependency
// whose name is in that set is internal to the scanned tree and is never
// counted. The second pass increments one counter per (group, name) for
// every manifest that declares the name in that group. Because dependency
// tables are keyed by name, a manifest contributes at most one to a counter.
package tally
