// SPDX-License-Identifier: MPL-2.0

// Package report renders tally entries and writes them to an output location.
//
// The default CSV rendering is a header line "group,name,count" followed by
// one line per entry, joined by "\n" with no trailing newline. Field values
// are written verbatim; crate names never contain commas, so no quoting is
// applied. JSON and YAML renderings carry the same rows as objects.
//
// Output locations are either local paths (FileSink) or S3-compatible object
// URLs of the form s3+http://host/bucket/key or s3+https://host/bucket/key
// (S3Sink).
package report
