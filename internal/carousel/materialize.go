// Package carousel expands the filter catalog into the repeated strip the user scrolls
// through and keeps one authoritative selection on it.
package carousel

import (
	"fmt"

	"github.com/kozaktomas/face-filter/internal/catalog"
	"github.com/kozaktomas/face-filter/internal/constants"
)

// Entry is one occurrence of a filter in the materialized strip.
type Entry struct {
	InstanceID string                   `json:"id"`
	Index      int                      `json:"index"`
	Filter     catalog.FilterDefinition `json:"filter"`
}

// Materialize repeats filters the given number of times. Entry i references
// filters[i % len(filters)] and gets the instance id "<identifier>-<i>", which stays
// unique even when identifiers repeat because the position is always the last segment.
// Non-positive repetitions fall back to the default.
func Materialize(filters []catalog.FilterDefinition, repetitions int) []Entry {
	if repetitions <= 0 {
		repetitions = constants.DefaultRepetitions
	}
	entries := make([]Entry, 0, len(filters)*repetitions)
	for r := 0; r < repetitions; r++ {
		for _, f := range filters {
			i := len(entries)
			entries = append(entries, Entry{
				InstanceID: fmt.Sprintf("%s-%d", f.Identifier, i),
				Index:      i,
				Filter:     f,
			})
		}
	}
	return entries
}

// MiddleIndex returns the entry selected on mount, or -1 for an empty strip.
func MiddleIndex(n int) int {
	if n <= 0 {
		return -1
	}
	return n / 2
}
