package sqlconn

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// postgresDialect serves networked PostgreSQL backends through the pgx
// stdlib driver.
type postgresDialect struct{}

func (postgresDialect) Name() string { return BackendPostgres }

func (postgresDialect) Open(ctx context.Context, cfg BackendConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", buildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("opening postgres database: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres database: %w", err)
	}
	return db, nil
}

func buildDSN(cfg BackendConfig) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", host, port),
		Path:     "/" + cfg.Database,
		RawQuery: "sslmode=" + sslMode,
	}
	return u.String()
}

func (postgresDialect) ResolveTable(ctx context.Context, db *sql.DB, table string) (string, bool, error) {
	const q = `SELECT table_name FROM information_schema.tables
		WHERE table_schema = current_schema() AND lower(table_name) = lower($1)`
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

func (postgresDialect) ListColumns(ctx context.Context, db *sql.DB, table string) ([]string, error) {
	const q = `SELECT column_name FROM information_schema.columns
		WHERE table_schema = current_schema() AND lower(table_name) = lower($1)`
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

// ProbeNumeric trusts the declared column type; the engine enforces it,
// so an arithmetic probe adds nothing here.
func (postgresDialect) ProbeNumeric(ctx context.Context, db *sql.DB, table, column string) bool {
	const q = `SELECT data_type FROM information_schema.columns
		WHERE table_schema = current_schema()
		AND lower(table_name) = lower($1) AND lower(column_name) = lower($2)`
	var dataType string
	if err := db.QueryRowContext(ctx, q, table, column).Scan(&dataType); err != nil {
		return false
	}
	return numericTypeName(dataType)
}

func (postgresDialect) QuoteIdentifier(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func (postgresDialect) Placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}
