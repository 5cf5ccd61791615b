// Package rank holds the ranking entry type and the merge/sort/truncate
// pipeline shared by all data sources.
package rank

import (
	"sort"

	"github.com/holoboard/holoboard/internal/domain/identity"
)

// Order selects the ranking direction.
type Order int

const (
	// Descending ranks the highest value first.
	Descending Order = iota
	// Ascending ranks the lowest value first.
	Ascending
)

// OrderFromAscending converts the persisted boolean form.
func OrderFromAscending(ascending bool) Order {
	if ascending {
		return Ascending
	}
	return Descending
}

// Entry is one ranked row. Entries are ephemeral: constructed fresh on
// every refresh and never persisted.
type Entry struct {
	ID          identity.ID
	DisplayName string
	Value       float64
}

// Sort orders entries by value per order. Ties break by identity string
// ascending so repeated refreshes over unchanged data produce the same
// ordering.
func Sort(entries []Entry, order Order) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Value != b.Value {
			if order == Ascending {
				return a.Value < b.Value
			}
			return a.Value > b.Value
		}
		return a.ID.String() < b.ID.String()
	})
}

// MergeByIdentity appends entries from secondary whose identity is not
// already present in primary. Primary entries always win.
func MergeByIdentity(primary, secondary []Entry) []Entry {
	seen := make(map[identity.ID]struct{}, len(primary))
	for _, e := range primary {
		seen[e.ID] = struct{}{}
	}
	merged := primary
	for _, e := range secondary {
		if _, ok := seen[e.ID]; ok {
			continue
		}
		seen[e.ID] = struct{}{}
		merged = append(merged, e)
	}
	return merged
}

// Truncate bounds entries to at most n. A non-positive n yields an
// empty slice.
func Truncate(entries []Entry, n int) []Entry {
	if n <= 0 {
		return nil
	}
	if len(entries) > n {
		return entries[:n]
	}
	return entries
}
