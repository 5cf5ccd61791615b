// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load layers file and env.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"github.com/holoboard/holoboard/internal/adapters/connector/sqlconn"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9090".
	Addr string `koanf:"addr"`

	// RefreshSeconds is the interval between leaderboard refreshes.
	RefreshSeconds int `koanf:"refresh_seconds"`

	// SweepHours is the interval between offline expiry sweeps.
	SweepHours int `koanf:"sweep_hours"`

	// QueryTimeoutSeconds bounds each connector query.
	QueryTimeoutSeconds int `koanf:"query_timeout_seconds"`

	// OfflineEnabled toggles the offline entity store.
	OfflineEnabled bool `koanf:"offline_enabled"`

	// OfflineDataDir holds the per-metric YAML files.
	OfflineDataDir string `koanf:"offline_data_dir"`

	// OfflineExpiryDays is how long an unseen entity keeps ranking.
	OfflineExpiryDays int `koanf:"offline_expiry_days"`

	// PersistQueueSize bounds the offline persistence queue.
	PersistQueueSize int `koanf:"persist_queue_size"`

	// GenericSQL declares the sub-backends of the generic SQL
	// connector, keyed by sub-backend name.
	GenericSQL map[string]sqlconn.BackendConfig `koanf:"generic_sql"`

	// MMOStats configures the MMO profile statistics connector.
	MMOStats sqlconn.BackendConfig `koanf:"mmo_stats"`

	// Leaderboards declares the boards to refresh, keyed by board id.
	Leaderboards map[string]Leaderboard `koanf:"leaderboards"`
}

// Leaderboard declares one board.
type Leaderboard struct {
	// DataSource is "live:<metric>" or "db:<connector>:<field>".
	DataSource string `koanf:"data_source"`

	// Title is the board title template; {placeholder_name} expands to
	// the source's friendly name.
	Title string `koanf:"title"`

	// LineFormat is the per-entry template with {rank}, {player} and
	// {value} tokens.
	LineFormat string `koanf:"line_format"`

	// TopN bounds the number of rendered entries.
	TopN int `koanf:"top_n"`

	// Ascending ranks lowest-first when true.
	Ascending bool `koanf:"ascending"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9090",
		RefreshSeconds:      60,
		SweepHours:          24,
		QueryTimeoutSeconds: 10,
		OfflineEnabled:      true,
		OfflineDataDir:      "data/offline",
		OfflineExpiryDays:   30,
		PersistQueueSize:    256,
	}
}
