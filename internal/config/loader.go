package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Defaults applied to each leaderboard that omits them.
const (
	DefaultTitle      = "Top {placeholder_name}"
	DefaultLineFormat = "#{rank} {player} - {value}"
	DefaultTopN       = 10
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if HOLOBOARD_CONFIG is set
//  3. env (prefix HOLOBOARD_), flat keys only
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("HOLOBOARD_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: HOLOBOARD_ADDR, HOLOBOARD_REFRESH_SECONDS, ...
	// Map env keys like HOLOBOARD_LOG_LEVEL -> log_level (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("HOLOBOARD_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "holoboard_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if cfg.OfflineExpiryDays <= 0 {
		return fmt.Errorf("%w: offline_expiry_days must be positive", ErrInvalidConfig)
	}
	for id, lb := range cfg.Leaderboards {
		if lb.DataSource == "" {
			return fmt.Errorf("%w: leaderboard %q has no data_source", ErrInvalidConfig, id)
		}
		if lb.Title == "" {
			lb.Title = DefaultTitle
		}
		if lb.LineFormat == "" {
			lb.LineFormat = DefaultLineFormat
		}
		if lb.TopN <= 0 {
			lb.TopN = DefaultTopN
		}
		cfg.Leaderboards[id] = lb
	}
	return nil
}
