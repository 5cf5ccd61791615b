package sqlconn

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Backend types accepted in configuration.
const (
	BackendDuckDB   = "duckdb"
	BackendPostgres = "postgres"
)

// Dialect abstracts the per-engine differences behind database/sql: how
// to open a handle, introspect the schema, probe column types, quote
// identifiers and bind placeholders. All query text elsewhere in the
// package is dialect-neutral.
type Dialect interface {
	// Name returns the backend type this dialect serves.
	Name() string

	// Open opens and verifies a database handle.
	Open(ctx context.Context, cfg BackendConfig) (*sql.DB, error)

	// ResolveTable matches table case-insensitively against the live
	// schema and returns the name as stored in the catalog. Quoted
	// identifiers are case-sensitive on some engines, so queries must
	// interpolate the stored form, not the configured one.
	ResolveTable(ctx context.Context, db *sql.DB, table string) (string, bool, error)

	// ListColumns returns the column names of table as stored in the
	// catalog.
	ListColumns(ctx context.Context, db *sql.DB, table string) ([]string, error)

	// ProbeNumeric reports whether a column holds values usable for
	// numeric ranking.
	ProbeNumeric(ctx context.Context, db *sql.DB, table, column string) bool

	// QuoteIdentifier quotes a validated identifier for interpolation
	// into query text.
	QuoteIdentifier(name string) string

	// Placeholder returns the positional bind marker for argument n
	// (1-based).
	Placeholder(n int) string
}

// DialectFor resolves a configured backend type to its dialect.
func DialectFor(backendType string) (Dialect, error) {
	switch strings.ToLower(backendType) {
	case BackendDuckDB:
		return duckDBDialect{}, nil
	case BackendPostgres:
		return postgresDialect{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackendType, backendType)
	}
}
