package connector

import (
	"context"
	"sort"
	"strings"

	"github.com/holoboard/holoboard/internal/domain/rank"
	"github.com/holoboard/holoboard/pkg/logger"
	"github.com/holoboard/holoboard/pkg/metrics"
)

// Registry owns the set of named connectors. Connectors are registered
// at construction, initialized once, and closed once at shutdown. An
// unavailable connector remains resolvable by name; it simply answers
// Available() == false.
type Registry struct {
	connectors map[string]Connector
	friendly   map[string]string
	log        logger.Logger
}

// NewRegistry builds a registry over the given connectors. Names are
// matched case-insensitively.
func NewRegistry(log logger.Logger, connectors ...Connector) *Registry {
	r := &Registry{
		connectors: make(map[string]Connector, len(connectors)),
		friendly:   make(map[string]string),
		log:        log,
	}
	for _, c := range connectors {
		r.connectors[strings.ToLower(c.Name())] = c
	}
	return r
}

// Initialize initializes every registered connector and builds the
// cross-connector friendly-name index. One connector failing to
// initialize does not affect the others.
func (r *Registry) Initialize(ctx context.Context) {
	available := 0
	for name, c := range r.connectors {
		if !c.Initialize(ctx) {
			r.log.Warn(ctx, "connector failed to initialize", logger.String("connector", name))
			continue
		}
		available++
		r.log.Info(ctx, "connector initialized", logger.String("connector", name))
		for field, friendly := range c.FriendlyFields() {
			r.friendly[name+":"+field] = friendly
		}
	}
	metrics.UpdateConnectorsAvailable(available)
}

// Lookup returns the connector registered under name, available or not.
func (r *Registry) Lookup(name string) (Connector, bool) {
	c, ok := r.connectors[strings.ToLower(name)]
	return c, ok
}

// Available reports whether a connector exists and initialized.
func (r *Registry) Available(name string) bool {
	c, ok := r.Lookup(name)
	return ok && c.Available()
}

// ListConnectors returns the names of available connectors, sorted.
func (r *Registry) ListConnectors() []string {
	names := make([]string, 0, len(r.connectors))
	for name, c := range r.connectors {
		if c.Available() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// ListFields returns the field references served by a connector, or
// nil when the connector is absent or unavailable.
func (r *Registry) ListFields(name string) []string {
	c, ok := r.Lookup(name)
	if !ok || !c.Available() {
		return nil
	}
	return c.Fields()
}

// FriendlyName resolves the human-readable name for a connector field,
// falling back to the raw field reference when unknown.
func (r *Registry) FriendlyName(name, field string) string {
	if friendly, ok := r.friendly[strings.ToLower(name)+":"+field]; ok {
		return friendly
	}
	return field
}

// TopN queries a named connector. An absent or unavailable connector
// yields an empty result; this is not an error, the leaderboard simply
// renders its placeholder state.
func (r *Registry) TopN(ctx context.Context, name, field string, limit int, order rank.Order) []rank.Entry {
	c, ok := r.Lookup(name)
	if !ok {
		r.log.Warn(ctx, "connector not found", logger.String("connector", name))
		return nil
	}
	if !c.Available() {
		r.log.Warn(ctx, "connector not available", logger.String("connector", name))
		return nil
	}
	return c.TopN(ctx, field, limit, order)
}

// CloseAll closes every connector, logging and swallowing individual
// close errors so one failure does not block closing the rest.
func (r *Registry) CloseAll(ctx context.Context) {
	for name, c := range r.connectors {
		if err := c.Close(); err != nil {
			r.log.Warn(ctx, "error closing connector",
				logger.String("connector", name),
				logger.Error(err),
			)
		}
	}
}
