// SPDX-License-Identifier: MPL-2.0

package tally

import (
	"slices"

	"github.com/cargotally/cargotally/pkg/cargo"
)

// PackageSet is a set of package names.
type PackageSet map[string]struct{}

// InternalPackages returns the self-names declared by records. Records that
// are empty or declare no package name contribute nothing.
func InternalPackages(records []*cargo.Record) PackageSet {
	set := make(PackageSet, len(records))
	for _, rec := range records {
		if rec.IsEmpty() {
			continue
		}
		if name, ok := rec.Manifest.SelfName(); ok {
			set[name] = struct{}{}
		}
	}
	return set
}

// Contains reports whether name is in the set.
func (s PackageSet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Len returns the number of names in the set.
func (s PackageSet) Len() int { return len(s) }

// Sorted returns the names in ascending order.
func (s PackageSet) Sorted() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
