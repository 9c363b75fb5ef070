// SPDX-License-Identifier: MPL-2.0

package tally

import (
	"cmp"
	"slices"

	"github.com/cargotally/cargotally/pkg/cargo"
)

// Entry is the number of manifests referencing one external dependency
// within one group.
type Entry struct {
	Group cargo.Group `json:"group"`
	Name  string      `json:"name"`
	Count int         `json:"count"`
}

// Compare orders entries by group ascending, then count descending, then
// name ascending. Strings compare byte-wise.
func Compare(a, b Entry) int {
	if c := cmp.Compare(a.Group, b.Group); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Count, a.Count); c != 0 {
		return c
	}
	return cmp.Compare(a.Name, b.Name)
}

// Less reports whether a sorts before b.
func Less(a, b Entry) bool { return Compare(a, b) < 0 }

// Sort orders entries in place using Compare.
func Sort(entries []Entry) {
	slices.SortStableFunc(entries, Compare)
}
