// Package service runs the leaderboard refresh pipeline: it aggregates
// entries from live metrics and database connectors, merges in offline
// records, ranks them and publishes rendered boards.
package service

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/holoboard/holoboard/internal/adapters/connector"
	"github.com/holoboard/holoboard/internal/adapters/offline"
	"github.com/holoboard/holoboard/internal/domain/fieldref"
	"github.com/holoboard/holoboard/internal/domain/identity"
	"github.com/holoboard/holoboard/internal/domain/rank"
	"github.com/holoboard/holoboard/internal/domain/render"
	"github.com/holoboard/holoboard/pkg/logger"
	"github.com/holoboard/holoboard/pkg/metrics"
)

// ActiveEntity is one currently online entity.
type ActiveEntity struct {
	ID   identity.ID
	Name string
}

// EntityRoster lists the entities currently online.
type EntityRoster interface {
	ListActive(ctx context.Context) []ActiveEntity
}

// MetricSource evaluates a live metric for one entity. The result is
// raw text; values that do not parse as numbers are skipped.
type MetricSource interface {
	Evaluate(ctx context.Context, entity ActiveEntity, metric string) (string, bool)
}

// BoardSpec declares one leaderboard.
type BoardSpec struct {
	DataSource string
	Title      string
	LineFormat string
	TopN       int
	Ascending  bool
}

// Service owns the refresh and sweep loops and the published boards.
type Service struct {
	mu sync.RWMutex

	registry *connector.Registry
	store    *offline.Store
	roster   EntityRoster
	source   MetricSource

	specs     map[string]BoardSpec
	published map[string]render.Board

	refreshInterval time.Duration
	sweepInterval   time.Duration

	started bool
	stopCh  chan struct{}
	wg      sync.WaitGroup

	logger logger.Logger
}

// New creates a Service with the given options applied.
func New(opts ...Option) *Service {
	s := &Service{
		specs:           make(map[string]BoardSpec),
		published:       make(map[string]render.Board),
		refreshInterval: time.Minute,
		sweepInterval:   24 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	return s
}

// Start launches the refresh and sweep loops after one synchronous
// refresh so boards are populated before Start returns.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	s.RefreshAll(ctx)

	s.wg.Add(1)
	go s.refreshLoop(ctx)
	if s.store != nil {
		s.wg.Add(1)
		go s.sweepLoop(ctx)
	}
	return nil
}

// Stop halts the loops and waits for them to exit.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return ErrNotStarted
	}
	s.started = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info(ctx, "service stopped")
	return nil
}

func (s *Service) refreshLoop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.RefreshAll(ctx)
		}
	}
}

func (s *Service) sweepLoop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.store.SweepExpired(ctx, time.Now())
		}
	}
}

// RefreshAll rebuilds every board and publishes the results as one
// atomic swap; readers see either the previous generation or the new
// one, never a mix.
func (s *Service) RefreshAll(ctx context.Context) {
	now := time.Now()
	next := make(map[string]render.Board, len(s.specs))
	for id, spec := range s.specs {
		next[id] = s.refresh(ctx, id, spec, now)
	}

	s.mu.Lock()
	s.published = next
	s.mu.Unlock()
}

// RefreshBoard rebuilds a single board.
func (s *Service) RefreshBoard(ctx context.Context, id string) (render.Board, error) {
	spec, ok := s.specs[id]
	if !ok {
		return render.Board{}, ErrUnknownBoard
	}
	board := s.refresh(ctx, id, spec, time.Now())

	s.mu.Lock()
	next := make(map[string]render.Board, len(s.published))
	for k, v := range s.published {
		next[k] = v
	}
	next[id] = board
	s.published = next
	s.mu.Unlock()
	return board, nil
}

// refresh builds one board. Every failure path degrades to an empty
// board; a refresh never returns an error.
func (s *Service) refresh(ctx context.Context, id string, spec BoardSpec, now time.Time) render.Board {
	start := time.Now()
	order := rank.OrderFromAscending(spec.Ascending)

	var entries []rank.Entry
	sourceName := spec.DataSource

	src, err := fieldref.ParseSource(spec.DataSource)
	switch {
	case err != nil:
		s.logger.Warn(ctx, "bad data source",
			logger.String("board", id),
			logger.String("source", spec.DataSource),
			logger.Error(err),
		)
	case src.Kind == fieldref.KindLive:
		entries = s.collectLive(ctx, src.Metric, now)
		if s.store != nil {
			entries = rank.MergeByIdentity(entries, s.store.TopN(ctx, src.Metric, 0, order, now))
		}
		sourceName = render.PrettyMetricName(src.Metric)
	case src.Kind == fieldref.KindDB:
		if s.registry != nil {
			entries = s.registry.TopN(ctx, src.Ref.Connector, src.Ref.Body(), spec.TopN, order)
			sourceName = s.registry.FriendlyName(src.Ref.Connector, src.Ref.Body())
		}
	}

	rank.Sort(entries, order)
	board := render.Render(spec.Title, spec.LineFormat, sourceName, entries, spec.TopN)

	metrics.RecordRefresh(id)
	metrics.RecordRefreshLatency(float64(time.Since(start).Milliseconds()))
	if len(entries) == 0 {
		metrics.RecordEmptyBoard()
	}
	return board
}

// collectLive evaluates a metric against every active entity. Entities
// whose value does not parse as a number are skipped; parsed values are
// forwarded to the offline store as fresh observations.
func (s *Service) collectLive(ctx context.Context, metric string, now time.Time) []rank.Entry {
	if s.roster == nil || s.source == nil {
		return nil
	}
	var entries []rank.Entry
	for _, e := range s.roster.ListActive(ctx) {
		raw, ok := s.source.Evaluate(ctx, e, metric)
		if !ok {
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			s.logger.Debug(ctx, "non-numeric metric value",
				logger.String("metric", metric),
				logger.String("entity", e.Name),
				logger.String("value", raw),
			)
			continue
		}
		entries = append(entries, rank.Entry{ID: e.ID, DisplayName: e.Name, Value: value})
		if s.store != nil {
			s.store.RecordObservation(ctx, metric, e.ID, e.Name, value, now)
		}
	}
	return entries
}

// Boards returns a copy of the currently published boards.
func (s *Service) Boards() map[string]render.Board {
	s.mu.RLock()
	defer s.mu.RUnlock()
	boards := make(map[string]render.Board, len(s.published))
	for id, b := range s.published {
		boards[id] = b
	}
	return boards
}

// ListConnectors returns the names of available connectors.
func (s *Service) ListConnectors() []string {
	if s.registry == nil {
		return nil
	}
	return s.registry.ListConnectors()
}

// ListFields returns the field references one connector serves.
func (s *Service) ListFields(connector string) []string {
	if s.registry == nil {
		return nil
	}
	return s.registry.ListFields(connector)
}

// Board returns one published board.
func (s *Service) Board(id string) (render.Board, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.published[id]
	return b, ok
}
