// SPDX-License-Identifier: MPL-2.0

// Package scan runs one discovery, parse and tally cycle over a directory
// tree and returns the sorted report entries.
//
// The pipeline is sequential: every manifest is located and parsed before
// the internal package set is built, and the set is complete before any
// dependency is counted.
package scan
