package sqlconn

// BackendConfig describes one named sub-backend of a generic SQL
// connector. Exactly one of the embedded-file or network settings is
// used, depending on Type.
type BackendConfig struct {
	Enabled bool   `koanf:"enabled"`
	Type    string `koanf:"type"` // duckdb | postgres

	// Embedded backends.
	Path string `koanf:"path"`

	// Networked backends.
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Database string `koanf:"database"`
	SSLMode  string `koanf:"ssl_mode"`

	Tables map[string]TableConfig `koanf:"tables"`
}

// TableConfig declares the anchor columns and rankable fields of one
// table. Every identifier here is checked against the live schema
// before it is ever interpolated into query text.
type TableConfig struct {
	PlayerIDColumn   string                 `koanf:"player_id_column"`
	PlayerNameColumn string                 `koanf:"player_name_column"`
	Fields           map[string]FieldConfig `koanf:"fields"`
}

// FieldConfig declares one rankable column and its display name.
type FieldConfig struct {
	Column      string `koanf:"column"`
	DisplayName string `koanf:"display_name"`
}
