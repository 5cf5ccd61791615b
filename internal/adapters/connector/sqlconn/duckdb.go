package sqlconn

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
)

// duckDBDialect serves embedded file-based databases. The file belongs
// to another application, so Open refuses to create it and the handle
// is opened in read-only mode.
type duckDBDialect struct{}

func (duckDBDialect) Name() string { return BackendDuckDB }

func (duckDBDialect) Open(ctx context.Context, cfg BackendConfig) (*sql.DB, error) {
	if _, err := os.Stat(cfg.Path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDatabaseFileMissing, cfg.Path)
	}
	db, err := sql.Open("duckdb", cfg.Path+"?access_mode=read_only")
	if err != nil {
		return nil, fmt.Errorf("opening duckdb database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging duckdb database: %w", err)
	}
	return db, nil
}

func (duckDBDialect) ResolveTable(ctx context.Context, db *sql.DB, table string) (string, bool, error) {
	const q = `SELECT table_name FROM information_schema.tables WHERE lower(table_name) = lower(?)`
	var name string
	err := db.QueryRowContext(ctx, q, table).Scan(&name)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return name, true, nil
}

func (duckDBDialect) ListColumns(ctx context.Context, db *sql.DB, table string) ([]string, error) {
	const q = `SELECT column_name FROM information_schema.columns WHERE lower(table_name) = lower(?)`
	rows, err := db.QueryContext(ctx, q, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		columns = append(columns, name)
	}
	return columns, rows.Err()
}

// ProbeNumeric first evaluates the column in an arithmetic expression;
// engines with loose column affinity accept that even for text-declared
// columns holding numbers. When the expression fails it falls back to
// inspecting the stored type of a sample value.
func (d duckDBDialect) ProbeNumeric(ctx context.Context, db *sql.DB, table, column string) bool {
	qt, qc := d.QuoteIdentifier(table), d.QuoteIdentifier(column)

	probe := fmt.Sprintf(`SELECT %s + 0 FROM %s WHERE %s IS NOT NULL LIMIT 1`, qc, qt, qc)
	if _, err := db.ExecContext(ctx, probe); err == nil {
		return true
	}

	sample := fmt.Sprintf(`SELECT typeof(%s) FROM %s WHERE %s IS NOT NULL LIMIT 1`, qc, qt, qc)
	var typeName string
	if err := db.QueryRowContext(ctx, sample).Scan(&typeName); err != nil {
		return false
	}
	return numericTypeName(typeName)
}

func (duckDBDialect) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (duckDBDialect) Placeholder(int) string {
	return "?"
}

// numericTypeName matches declared or stored type names that rank as
// numbers across both supported engines.
func numericTypeName(typeName string) bool {
	t := strings.ToUpper(typeName)
	for _, marker := range []string{"INT", "DOUBLE", "FLOAT", "REAL", "DECIMAL", "NUMERIC"} {
		if strings.Contains(t, marker) {
			return true
		}
	}
	return false
}
