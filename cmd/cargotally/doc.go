// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the cargotally command line interface.
//
// The root command runs one scan-and-report cycle: it finds every Cargo.toml
// under the scan root, counts how many manifests declare each external
// dependency per group, and writes the sorted report. With --watch it keeps
// the report current as manifests change. The config subcommands inspect and
// create the CUE configuration file.
package cmd
