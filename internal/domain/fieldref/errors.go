package fieldref

import "errors"

// Sentinel kinds for field reference parsing errors.
var (
	ErrNotDatabaseSource = errors.New("not a database source reference")
	ErrMissingConnector  = errors.New("missing connector name")
	ErrMissingSeparator  = errors.New("field body lacks table.column separator")
	ErrUnknownSourceKind = errors.New("unknown data source kind")
)
