package sqlconn

import "errors"

var (
	// ErrUnknownBackendType indicates a backend type not supported by
	// any registered dialect.
	ErrUnknownBackendType = errors.New("unknown backend type")
	// ErrDatabaseFileMissing indicates an embedded database file that
	// does not exist. The file belongs to another application and is
	// never created here.
	ErrDatabaseFileMissing = errors.New("database file does not exist")
	// ErrNoUsableTables indicates schema validation pruned every
	// configured table.
	ErrNoUsableTables = errors.New("no usable tables after schema validation")
)
