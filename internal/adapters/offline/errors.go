package offline

import "errors"

var (
	// ErrClosed indicates an operation on a store after Close.
	ErrClosed = errors.New("offline store is closed")
)
