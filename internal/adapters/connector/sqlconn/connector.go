// Package sqlconn implements the config-driven generic SQL connector.
// One connector multiplexes any number of named sub-backends, each with
// its own database handle, dialect and validated table configuration.
package sqlconn

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/holoboard/holoboard/internal/domain/fieldref"
	"github.com/holoboard/holoboard/internal/domain/identity"
	"github.com/holoboard/holoboard/internal/domain/rank"
	"github.com/holoboard/holoboard/internal/domain/render"
	"github.com/holoboard/holoboard/pkg/logger"
	"github.com/holoboard/holoboard/pkg/metrics"
)

// unknownName labels entries whose stored display name is NULL or empty.
const unknownName = "Unknown"

// backend is one live sub-backend. The mutex serializes statements on
// the handle; embedded engines dislike concurrent readers on a single
// file handle.
type backend struct {
	name    string
	dialect Dialect
	db      *sql.DB
	tables  map[string]TableConfig
	// tableNames maps configured table names to the case the catalog
	// stores; queries interpolate the stored form.
	tableNames map[string]string
	mu         sync.Mutex
}

// Connector is a generic SQL connector assembled from configuration.
type Connector struct {
	name         string
	log          logger.Logger
	queryTimeout time.Duration
	configs      map[string]BackendConfig
	backends     map[string]*backend
	available    bool
}

// New builds a connector over the given sub-backend configurations.
// Nothing is opened until Initialize.
func New(name string, configs map[string]BackendConfig, opts ...Option) *Connector {
	c := &Connector{
		name:         name,
		queryTimeout: 10 * time.Second,
		configs:      configs,
		backends:     make(map[string]*backend),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Named("sqlconn")
	}
	return c
}

// Name implements connector.Connector.
func (c *Connector) Name() string { return c.name }

// Available implements connector.Connector.
func (c *Connector) Available() bool { return c.available }

// Initialize opens every enabled sub-backend, validates its configured
// tables against the live schema and probes each surviving table for
// data. A sub-backend that fails to open or loses all its tables is
// skipped; the connector is available when at least one survives.
func (c *Connector) Initialize(ctx context.Context) bool {
	for name, cfg := range c.configs {
		if !cfg.Enabled {
			continue
		}
		be, err := c.openBackend(ctx, name, cfg)
		if err != nil {
			c.log.Warn(ctx, "sub-backend unavailable",
				logger.String("backend", name), logger.Error(err))
			continue
		}
		c.backends[name] = be
	}
	c.available = len(c.backends) > 0
	return c.available
}

func (c *Connector) openBackend(ctx context.Context, name string, cfg BackendConfig) (*backend, error) {
	dialect, err := DialectFor(cfg.Type)
	if err != nil {
		return nil, err
	}
	db, err := dialect.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	be := &backend{name: name, dialect: dialect, db: db}
	be.tables, be.tableNames = validateTables(ctx, be, cfg.Tables, c.log)
	if len(be.tables) == 0 {
		db.Close()
		return nil, ErrNoUsableTables
	}

	for tableName := range be.tables {
		n, err := c.countRows(ctx, be, be.tableNames[tableName])
		switch {
		case err != nil:
			c.log.Warn(ctx, "row count probe failed",
				logger.String("backend", name),
				logger.String("table", tableName),
				logger.Error(err),
			)
		case n == 0:
			c.log.Warn(ctx, "table is empty",
				logger.String("backend", name),
				logger.String("table", tableName))
		default:
			c.log.Info(ctx, "table ready",
				logger.String("backend", name),
				logger.String("table", tableName),
				logger.Int("rows", n),
			)
		}
	}
	return be, nil
}

func (c *Connector) countRows(ctx context.Context, be *backend, table string) (int, error) {
	be.mu.Lock()
	defer be.mu.Unlock()
	q := fmt.Sprintf(`SELECT count(*) FROM %s`, be.dialect.QuoteIdentifier(table))
	var n int
	err := be.db.QueryRowContext(ctx, q).Scan(&n)
	return n, err
}

// Fields implements connector.Connector. References take the form
// "backend:table.field".
func (c *Connector) Fields() []string {
	var fields []string
	for beName, be := range c.backends {
		for tableName, tc := range be.tables {
			for fieldName := range tc.Fields {
				fields = append(fields, beName+":"+tableName+"."+fieldName)
			}
		}
	}
	sort.Strings(fields)
	return fields
}

// FriendlyFields implements connector.Connector.
func (c *Connector) FriendlyFields() map[string]string {
	friendly := make(map[string]string)
	for beName, be := range c.backends {
		for tableName, tc := range be.tables {
			for fieldName, fc := range tc.Fields {
				display := fc.DisplayName
				if display == "" {
					display = render.FriendlyColumnName(fieldName)
				}
				ref := beName + ":" + tableName + "." + fieldName
				friendly[ref] = beName + " - " + render.Capitalize(tableName) + " - " + display
			}
		}
	}
	return friendly
}

// TopN implements connector.Connector. The field reference selects a
// sub-backend, table and configured field; all identifiers in the query
// come from validated configuration and the limit is bound as a
// parameter. Any failure logs and yields an empty result.
func (c *Connector) TopN(ctx context.Context, field string, limit int, order rank.Order) []rank.Entry {
	beName, body := c.splitField(field)
	be, ok := c.backends[beName]
	if !ok {
		c.log.Warn(ctx, "unknown sub-backend",
			logger.String("connector", c.name), logger.String("field", field))
		return nil
	}

	tableName, fieldName, err := fieldref.SplitBody(body)
	if err != nil {
		c.log.Warn(ctx, "malformed field reference",
			logger.String("connector", c.name), logger.String("field", field))
		return nil
	}
	tc, ok := be.tables[tableName]
	if !ok {
		c.log.Warn(ctx, "unknown table",
			logger.String("connector", c.name), logger.String("table", tableName))
		return nil
	}
	fc, ok := tc.Fields[fieldName]
	if !ok {
		c.log.Warn(ctx, "unknown field",
			logger.String("connector", c.name), logger.String("field", field))
		return nil
	}

	direction := "DESC"
	if order == rank.Ascending {
		direction = "ASC"
	}
	q := fmt.Sprintf(`SELECT %s, %s, %s FROM %s WHERE %s IS NOT NULL ORDER BY %s %s LIMIT %s`,
		be.dialect.QuoteIdentifier(tc.PlayerIDColumn),
		be.dialect.QuoteIdentifier(tc.PlayerNameColumn),
		be.dialect.QuoteIdentifier(fc.Column),
		be.dialect.QuoteIdentifier(be.tableNames[tableName]),
		be.dialect.QuoteIdentifier(fc.Column),
		be.dialect.QuoteIdentifier(fc.Column),
		direction,
		be.dialect.Placeholder(1),
	)

	qctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()

	start := time.Now()
	metrics.RecordQuery(c.name)

	be.mu.Lock()
	rows, err := be.db.QueryContext(qctx, q, limit)
	if err != nil {
		be.mu.Unlock()
		metrics.RecordQueryError(c.name)
		c.log.Warn(ctx, "top-n query failed",
			logger.String("connector", c.name),
			logger.String("field", field),
			logger.Error(err),
		)
		return nil
	}
	entries, err := scanEntries(rows)
	be.mu.Unlock()
	metrics.RecordQueryLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordQueryError(c.name)
		c.log.Warn(ctx, "top-n scan failed",
			logger.String("connector", c.name),
			logger.String("field", field),
			logger.Error(err),
		)
		return nil
	}
	return entries
}

// splitField separates the sub-backend prefix from the field body. A
// reference without a prefix resolves against a sole sub-backend.
func (c *Connector) splitField(field string) (string, string) {
	if sep := strings.Index(field, ":"); sep > 0 {
		return field[:sep], field[sep+1:]
	}
	if len(c.backends) == 1 {
		for name := range c.backends {
			return name, field
		}
	}
	return "", field
}

func scanEntries(rows *sql.Rows) ([]rank.Entry, error) {
	defer rows.Close()

	var entries []rank.Entry
	for rows.Next() {
		var rawID, rawName sql.NullString
		var rawValue any
		if err := rows.Scan(&rawID, &rawName, &rawValue); err != nil {
			return nil, err
		}
		name := strings.TrimSpace(rawName.String)
		if name == "" {
			name = unknownName
		}
		entries = append(entries, rank.Entry{
			ID:          identity.ParseOrDerive(strings.TrimSpace(rawID.String), name),
			DisplayName: name,
			Value:       coerceNumeric(rawValue),
		})
	}
	return entries, rows.Err()
}

// coerceNumeric converts a scanned value to float64. Values that do not
// parse rank as zero rather than failing the whole query.
func coerceNumeric(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case int:
		return float64(n)
	case uint64:
		return float64(n)
	case []byte:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(n)), 64)
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// Close implements connector.Connector.
func (c *Connector) Close() error {
	var errs []error
	for name, be := range c.backends {
		if err := be.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
