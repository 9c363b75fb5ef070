// SPDX-License-Identifier: MPL-2.0

package cargo

// DefaultManifestName is the file name cargo uses for package manifests.
const DefaultManifestName = "Cargo.toml"

type (
	// Package is the [package] table. Only the name is decoded.
	Package struct {
		Name string `toml:"name"`
	}

	// Manifest is the decoded subset of a Cargo.toml file.
	//
	// Dependency tables map a dependency name to its specifier. Specifiers are
	// either a version string or an inline table and are left untyped.
	Manifest struct {
		Package           *Package       `toml:"package"`
		Dependencies      map[string]any `toml:"dependencies"`
		DevDependencies   map[string]any `toml:"dev-dependencies"`
		BuildDependencies map[string]any `toml:"build-dependencies"`

		// Empty is true when the document declares no top-level keys at all.
		Empty bool `toml:"-"`
	}

	// Record pairs a parsed manifest with the path it was read from.
	Record struct {
		Path     string
		Manifest *Manifest
	}
)

// SelfName returns the package name this manifest declares for itself.
// Virtual (workspace-only) manifests have no self-name.
func (m *Manifest) SelfName() (string, bool) {
	if m == nil || m.Package == nil || m.Package.Name == "" {
		return "", false
	}
	return m.Package.Name, true
}

// Declared returns the dependency table for g, or nil when the manifest
// does not declare that group.
func (m *Manifest) Declared(g Group) map[string]any {
	if m == nil {
		return nil
	}
	switch g {
	case GroupDependencies:
		return m.Dependencies
	case GroupDevDependencies:
		return m.DevDependencies
	case GroupBuildDependencies:
		return m.BuildDependencies
	default:
		return nil
	}
}

// IsEmpty reports whether the record carries no manifest content.
func (r *Record) IsEmpty() bool {
	return r == nil || r.Manifest == nil || r.Manifest.Empty
}
