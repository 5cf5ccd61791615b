package sqlconn

import (
	"context"
	"strings"

	"github.com/holoboard/holoboard/pkg/logger"
	"github.com/holoboard/holoboard/pkg/metrics"
)

// validateTables reconciles the configured tables with the live schema.
// A missing table drops the table. A missing identifier or display-name
// column drops the table, those columns anchor every query. A missing
// field column drops only that field. A table survives only if at least
// one field survives.
//
// Matching is case-insensitive, but surviving identifiers are rewritten
// to the exact case the catalog stores; quoted identifiers are
// case-sensitive on some engines, so only the stored form is safe to
// interpolate. The second return value maps each surviving configured
// table name to its stored name.
func validateTables(ctx context.Context, be *backend, tables map[string]TableConfig, log logger.Logger) (map[string]TableConfig, map[string]string) {
	valid := make(map[string]TableConfig, len(tables))
	names := make(map[string]string, len(tables))

	for tableName, tc := range tables {
		storedTable, exists, err := be.dialect.ResolveTable(ctx, be.db, tableName)
		if err != nil {
			log.Warn(ctx, "table existence check failed",
				logger.String("table", tableName), logger.Error(err))
			continue
		}
		if !exists {
			log.Warn(ctx, "configured table not found, skipping",
				logger.String("table", tableName))
			metrics.RecordTablePruned()
			continue
		}

		columns, err := be.dialect.ListColumns(ctx, be.db, tableName)
		if err != nil {
			log.Warn(ctx, "column listing failed",
				logger.String("table", tableName), logger.Error(err))
			metrics.RecordTablePruned()
			continue
		}
		stored := make(map[string]string, len(columns))
		for _, c := range columns {
			stored[strings.ToLower(c)] = c
		}

		idColumn, idOK := stored[strings.ToLower(tc.PlayerIDColumn)]
		nameColumn, nameOK := stored[strings.ToLower(tc.PlayerNameColumn)]
		if !idOK || !nameOK {
			log.Warn(ctx, "identity columns missing, skipping table",
				logger.String("table", tableName),
				logger.String("id_column", tc.PlayerIDColumn),
				logger.String("name_column", tc.PlayerNameColumn),
			)
			metrics.RecordTablePruned()
			continue
		}
		tc.PlayerIDColumn = idColumn
		tc.PlayerNameColumn = nameColumn

		fields := make(map[string]FieldConfig, len(tc.Fields))
		for fieldName, fc := range tc.Fields {
			column, ok := stored[strings.ToLower(fc.Column)]
			if !ok {
				log.Warn(ctx, "field column missing, skipping field",
					logger.String("table", tableName),
					logger.String("field", fieldName),
					logger.String("column", fc.Column),
				)
				metrics.RecordFieldPruned()
				continue
			}
			fc.Column = column
			fields[fieldName] = fc
		}
		if len(fields) == 0 {
			log.Warn(ctx, "no usable fields, skipping table",
				logger.String("table", tableName))
			metrics.RecordTablePruned()
			continue
		}

		tc.Fields = fields
		valid[tableName] = tc
		names[tableName] = storedTable
	}
	return valid, names
}
