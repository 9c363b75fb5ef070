// SPDX-License-Identifier: MPL-2.0

package tally

import (
	"maps"

	"github.com/cargotally/cargotally/pkg/cargo"
)

// Aggregator accumulates per-group dependency counts across manifests.
// The internal package set must be complete before the first Add.
type Aggregator struct {
	internal  PackageSet
	counts    map[cargo.Group]map[string]int
	manifests int
}

// NewAggregator creates an Aggregator that skips every name in internal.
func NewAggregator(internal PackageSet) *Aggregator {
	counts := make(map[cargo.Group]map[string]int, len(cargo.Groups()))
	for _, g := range cargo.Groups() {
		counts[g] = make(map[string]int)
	}
	return &Aggregator{
		internal: internal,
		counts:   counts,
	}
}

// Add counts the external dependencies declared by rec. Empty records are ignored.
func (a *Aggregator) Add(rec *cargo.Record) {
	if rec.IsEmpty() {
		return
	}
	a.manifests++

	for _, g := range cargo.Groups() {
		for name := range rec.Manifest.Declared(g) {
			if a.internal.Contains(name) {
				continue
			}
			a.counts[g][name]++
		}
	}
}

// Manifests returns how many records have been counted.
func (a *Aggregator) Manifests() int { return a.manifests }

// Frequencies returns a copy of the counters for one group.
func (a *Aggregator) Frequencies(g cargo.Group) map[string]int {
	return maps.Clone(a.counts[g])
}

// Entries flattens all counters into sorted entries.
func (a *Aggregator) Entries() []Entry {
	var total int
	for _, freq := range a.counts {
		total += len(freq)
	}

	entries := make([]Entry, 0, total)
	for _, g := range cargo.Groups() {
		for name, count := range a.counts[g] {
			entries = append(entries, Entry{Group: g, Name: name, Count: count})
		}
	}

	Sort(entries)
	return entries
}

// Count builds the internal package set from records, aggregates every
// record and returns the sorted entries.
func Count(records []*cargo.Record) []Entry {
	agg := NewAggregator(InternalPackages(records))
	for _, rec := range records {
		agg.Add(rec)
	}
	return agg.Entries()
}
