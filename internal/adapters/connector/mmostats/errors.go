package mmostats

import "errors"

var (
	// ErrNoRankableColumns indicates discovery found no profile table
	// with at least one numeric, non-ignored column.
	ErrNoRankableColumns = errors.New("no rankable columns discovered")
)
