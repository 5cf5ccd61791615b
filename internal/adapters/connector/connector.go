// Package connector defines the database connector contract and the
// registry that owns all connector instances for the process.
package connector

import (
	"context"

	"github.com/holoboard/holoboard/internal/domain/rank"
)

// Connector exposes ranked data from one external relational backend.
// Implementations are singletons per process; the Registry exclusively
// owns every instance and its live connections.
type Connector interface {
	// Name returns the connector's registry name.
	Name() string

	// Initialize establishes connectivity and discovers or validates
	// the table configuration. Returning false leaves the connector
	// permanently unavailable for this process lifetime.
	Initialize(ctx context.Context) bool

	// Available reports whether Initialize succeeded.
	Available() bool

	// Fields lists the rankable field references this connector serves.
	Fields() []string

	// FriendlyFields maps each field reference to a human-readable name.
	FriendlyFields() map[string]string

	// TopN returns at most limit entries for a field, ordered per
	// order. Query failures yield an empty result, never an error.
	TopN(ctx context.Context, field string, limit int, order rank.Order) []rank.Entry

	// Close releases the connector's connections.
	Close() error
}
