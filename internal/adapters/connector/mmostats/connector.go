// Package mmostats implements a connector over the profile database of
// a third-party MMO progression plugin. Unlike the generic SQL
// connector there is no per-table configuration: the plugin's schema
// evolves between releases, so rankable columns are discovered from the
// live database at startup.
package mmostats

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/holoboard/holoboard/internal/adapters/connector/sqlconn"
	"github.com/holoboard/holoboard/internal/domain/fieldref"
	"github.com/holoboard/holoboard/internal/domain/identity"
	"github.com/holoboard/holoboard/internal/domain/rank"
	"github.com/holoboard/holoboard/internal/domain/render"
	"github.com/holoboard/holoboard/pkg/logger"
	"github.com/holoboard/holoboard/pkg/metrics"
)

const (
	tablePrefix = "profiles_"
	ownerColumn = "owner"
	// namesTable maps owner identifiers back to display names. It is
	// optional; without it entries fall back to a shortened identifier.
	namesTable      = "profile_players"
	namesIDColumn   = "player_uuid"
	namesNameColumn = "player_name"
)

// candidateProfiles are the profile tables known across plugin
// releases. Absent tables are skipped silently.
var candidateProfiles = []string{
	"power", "alchemy", "smithing", "enchanting", "archery",
	"mining", "farming", "fishing", "woodcutting", "digging",
	"light_armor", "heavy_armor", "light_weapons", "heavy_weapons",
}

// ignoredColumns are bookkeeping columns that never rank, by exact
// name or by substring match.
var ignoredColumns = map[string]bool{
	ownerColumn:       true,
	"player_uuid":     true,
	"player_name":     true,
	"last_updated":    true,
	"newgameplus":     true,
	"maxallowedlevel": true,
}

var ignoredSubstrings = []string{"unlocked", "effects", "blocks", "recipes", "perks"}

func isIgnored(column string) bool {
	if ignoredColumns[column] {
		return true
	}
	for _, s := range ignoredSubstrings {
		if strings.Contains(column, s) {
			return true
		}
	}
	return false
}

type field struct {
	table  string
	column string
}

// Connector discovers and serves rankable MMO profile statistics.
type Connector struct {
	name         string
	log          logger.Logger
	queryTimeout time.Duration
	cfg          sqlconn.BackendConfig

	dialect sqlconn.Dialect
	db      *sql.DB
	mu      sync.Mutex
	fields  map[string]field // "profile.column"
	// namesStored is the companion names table as the catalog stores
	// it; empty when the table is absent.
	namesStored string
	available   bool
}

// New builds the connector. Nothing is opened until Initialize.
func New(name string, cfg sqlconn.BackendConfig, opts ...Option) *Connector {
	c := &Connector{
		name:         name,
		queryTimeout: 10 * time.Second,
		cfg:          cfg,
		fields:       make(map[string]field),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Named("mmostats")
	}
	return c
}

// Name implements connector.Connector.
func (c *Connector) Name() string { return c.name }

// Available implements connector.Connector.
func (c *Connector) Available() bool { return c.available }

// Initialize opens the profile database and walks the candidate tables,
// keeping every non-ignored column that probes as numeric.
func (c *Connector) Initialize(ctx context.Context) bool {
	if !c.cfg.Enabled {
		return false
	}
	dialect, err := sqlconn.DialectFor(c.cfg.Type)
	if err != nil {
		c.log.Warn(ctx, "bad backend type", logger.Error(err))
		return false
	}
	db, err := dialect.Open(ctx, c.cfg)
	if err != nil {
		c.log.Warn(ctx, "profile database unavailable", logger.Error(err))
		return false
	}
	c.dialect, c.db = dialect, db

	for _, profile := range candidateProfiles {
		table := tablePrefix + profile
		stored, exists, err := dialect.ResolveTable(ctx, db, table)
		if err != nil || !exists {
			continue
		}
		columns, err := dialect.ListColumns(ctx, db, table)
		if err != nil {
			c.log.Warn(ctx, "column listing failed",
				logger.String("table", table), logger.Error(err))
			continue
		}
		discovered := 0
		for _, column := range columns {
			if isIgnored(strings.ToLower(column)) {
				continue
			}
			if !dialect.ProbeNumeric(ctx, db, table, column) {
				continue
			}
			// The ref is lower-cased for stability across plugin
			// releases; the stored case is kept for query text.
			c.fields[profile+"."+strings.ToLower(column)] = field{table: stored, column: column}
			discovered++
		}
		c.log.Info(ctx, "profile table discovered",
			logger.String("table", table), logger.Int("fields", discovered))
	}

	if len(c.fields) == 0 {
		c.log.Warn(ctx, "no rankable profile columns", logger.Error(ErrNoRankableColumns))
		db.Close()
		c.db = nil
		return false
	}

	c.namesStored, _, _ = dialect.ResolveTable(ctx, db, namesTable)
	c.available = true
	return true
}

// Fields implements connector.Connector. References take the form
// "profile.column".
func (c *Connector) Fields() []string {
	fields := make([]string, 0, len(c.fields))
	for ref := range c.fields {
		fields = append(fields, ref)
	}
	sort.Strings(fields)
	return fields
}

// FriendlyFields implements connector.Connector.
func (c *Connector) FriendlyFields() map[string]string {
	friendly := make(map[string]string, len(c.fields))
	for ref := range c.fields {
		profile, column, err := fieldref.SplitBody(ref)
		if err != nil {
			continue
		}
		friendly[ref] = render.FriendlyColumnName(profile) + " - " + render.FriendlyColumnName(column)
	}
	return friendly
}

// TopN implements connector.Connector. The table is re-checked before
// querying; the underlying database file may have been replaced by the
// plugin since discovery.
func (c *Connector) TopN(ctx context.Context, fieldName string, limit int, order rank.Order) []rank.Entry {
	profile, column, err := fieldref.SplitBody(fieldName)
	if err != nil {
		c.log.Warn(ctx, "malformed field reference", logger.String("field", fieldName))
		return nil
	}
	f, ok := c.fields[profile+"."+column]
	if !ok {
		c.log.Warn(ctx, "unknown field", logger.String("field", fieldName))
		return nil
	}

	qctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	stored, exists, err := c.dialect.ResolveTable(qctx, c.db, f.table)
	if err != nil || !exists {
		c.log.Warn(ctx, "profile table gone", logger.String("table", f.table))
		return nil
	}

	qt, qc := c.dialect.QuoteIdentifier(stored), c.dialect.QuoteIdentifier(f.column)
	countQ := fmt.Sprintf(`SELECT count(*) FROM %s WHERE %s IS NOT NULL`, qt, qc)
	var n int
	if err := c.db.QueryRowContext(qctx, countQ).Scan(&n); err != nil || n == 0 {
		return nil
	}

	direction := "DESC"
	if order == rank.Ascending {
		direction = "ASC"
	}
	q := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s IS NOT NULL ORDER BY %s %s LIMIT %s`,
		c.dialect.QuoteIdentifier(ownerColumn), qc, qt, qc, qc, direction,
		c.dialect.Placeholder(1),
	)

	start := time.Now()
	metrics.RecordQuery(c.name)
	rows, err := c.db.QueryContext(qctx, q, limit)
	if err != nil {
		metrics.RecordQueryError(c.name)
		c.log.Warn(ctx, "top-n query failed",
			logger.String("field", fieldName), logger.Error(err))
		return nil
	}
	entries, err := c.scanEntries(qctx, rows)
	metrics.RecordQueryLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordQueryError(c.name)
		c.log.Warn(ctx, "top-n scan failed",
			logger.String("field", fieldName), logger.Error(err))
		return nil
	}
	return entries
}

func (c *Connector) scanEntries(ctx context.Context, rows *sql.Rows) ([]rank.Entry, error) {
	defer rows.Close()

	type row struct {
		rawID string
		value float64
	}
	var scanned []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.rawID, &r.value); err != nil {
			return nil, err
		}
		scanned = append(scanned, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var entries []rank.Entry
	for _, r := range scanned {
		id, err := identity.Parse(r.rawID)
		if err != nil {
			// A row the plugin wrote with a corrupt owner; skip it
			// rather than fabricating an identity.
			continue
		}
		entries = append(entries, rank.Entry{
			ID:          id,
			DisplayName: c.displayName(ctx, id),
			Value:       r.value,
		})
	}
	return entries, nil
}

// displayName resolves an owner's display name from the companion
// names table, falling back to a shortened identifier.
func (c *Connector) displayName(ctx context.Context, id identity.ID) string {
	if c.namesStored != "" {
		q := fmt.Sprintf(`SELECT %s FROM %s WHERE replace(lower(%s), '-', '') = %s`,
			c.dialect.QuoteIdentifier(namesNameColumn),
			c.dialect.QuoteIdentifier(c.namesStored),
			c.dialect.QuoteIdentifier(namesIDColumn),
			c.dialect.Placeholder(1),
		)
		bare := strings.ReplaceAll(id.String(), "-", "")
		var name sql.NullString
		err := c.db.QueryRowContext(ctx, q, bare).Scan(&name)
		if err == nil && strings.TrimSpace(name.String) != "" {
			return name.String
		}
	}
	return "Player-" + id.String()[:8]
}

// Close implements connector.Connector.
func (c *Connector) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}
