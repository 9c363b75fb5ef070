// SPDX-License-Identifier: MPL-2.0

// Package cargo decodes Cargo.toml manifests into an explicit schema.
//
// Only the parts of a manifest that dependency tallying needs are modelled:
// the package identity (package.name) and the three top-level dependency
// tables. Dependency specifiers (versions, paths, git sources, feature lists)
// are kept as opaque values and are never interpreted.
//
// File organization:
//   - group.go: Group enum (dependencies, dev-dependencies, build-dependencies)
//   - manifest.go: Manifest, Package and Record types
//   - parse.go: Parse / ParseFile and the ParseError / ReadError types
package cargo
