package offline

import (
	"time"

	"github.com/holoboard/holoboard/pkg/logger"
)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Store) {
		s.log = log
	}
}

// WithDataDir sets the directory holding the per-metric YAML files.
func WithDataDir(dir string) Option {
	return func(s *Store) {
		if dir != "" {
			s.dir = dir
		}
	}
}

// WithExpiry sets how long a record stays rankable after its last
// observation.
func WithExpiry(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.expiry = d
		}
	}
}

// WithQueueSize sets the persistence queue capacity.
func WithQueueSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.queueSize = n
		}
	}
}
