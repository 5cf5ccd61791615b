package service

import (
	"time"

	"github.com/holoboard/holoboard/internal/adapters/connector"
	"github.com/holoboard/holoboard/internal/adapters/offline"
	"github.com/holoboard/holoboard/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithRegistry sets the connector registry backing "db:" sources.
func WithRegistry(r *connector.Registry) Option {
	return func(s *Service) {
		s.registry = r
	}
}

// WithOfflineStore enables offline record merging and sweeping.
func WithOfflineStore(store *offline.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithRoster sets the active entity roster for "live:" sources.
func WithRoster(r EntityRoster) Option {
	return func(s *Service) {
		s.roster = r
	}
}

// WithMetricSource sets the live metric evaluator.
func WithMetricSource(m MetricSource) Option {
	return func(s *Service) {
		s.source = m
	}
}

// WithBoards sets the board specifications, keyed by board id.
func WithBoards(specs map[string]BoardSpec) Option {
	return func(s *Service) {
		if specs != nil {
			s.specs = specs
		}
	}
}

// WithRefreshInterval sets the time between refreshes.
func WithRefreshInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.refreshInterval = d
		}
	}
}

// WithSweepInterval sets the time between offline expiry sweeps.
func WithSweepInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.sweepInterval = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
