// Package offline keeps the last observed value per entity and metric
// so entities that have gone offline keep their leaderboard standing
// until their records expire.
package offline

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/holoboard/holoboard/internal/domain/identity"
	"github.com/holoboard/holoboard/internal/domain/rank"
	"github.com/holoboard/holoboard/pkg/logger"
	"github.com/holoboard/holoboard/pkg/metrics"
)

// Record is the last observation of one entity for one metric.
type Record struct {
	ID       identity.ID
	Name     string
	Value    float64
	LastSeen time.Time
}

// Store is the in-memory offline cache with asynchronous YAML
// persistence, one file per metric.
type Store struct {
	log       logger.Logger
	dir       string
	expiry    time.Duration
	queueSize int

	mu      sync.RWMutex
	records map[string]map[identity.ID]Record
	closed  bool

	writes chan string
	done   chan struct{}
}

// New creates the store and starts its persistence writer.
func New(opts ...Option) (*Store, error) {
	s := &Store{
		dir:       "data/offline",
		expiry:    30 * 24 * time.Hour,
		queueSize: 256,
		records:   make(map[string]map[identity.ID]Record),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Named("offline")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating offline data dir: %w", err)
	}

	s.writes = make(chan string, s.queueSize)
	s.done = make(chan struct{})
	go s.writer()
	return s, nil
}

// RecordObservation upserts the record for (metric, id). LastSeen only
// ever advances: an observation carrying an older timestamp updates the
// value but keeps the later LastSeen. Persistence happens off the
// caller's goroutine.
func (s *Store) RecordObservation(ctx context.Context, metric string, id identity.ID, name string, value float64, now time.Time) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	byID, ok := s.records[metric]
	if !ok {
		byID = make(map[identity.ID]Record)
		s.records[metric] = byID
	}
	lastSeen := now
	if prev, ok := byID[id]; ok && prev.LastSeen.After(lastSeen) {
		lastSeen = prev.LastSeen
	}
	byID[id] = Record{ID: id, Name: name, Value: value, LastSeen: lastSeen}
	total := s.totalLocked()
	// Enqueue under the lock: Close sets closed under the same lock
	// before closing the channel, so no send can race the close.
	s.enqueue(ctx, metric)
	s.mu.Unlock()

	metrics.RecordObservation()
	metrics.UpdateOfflineRecords(total)
}

// TopN returns the unexpired records for a metric, sorted and bounded.
// A non-positive limit returns all unexpired records. A record expires
// strictly after expiry has elapsed since LastSeen; a record exactly at
// the boundary still ranks.
func (s *Store) TopN(_ context.Context, metric string, limit int, order rank.Order, now time.Time) []rank.Entry {
	cutoff := now.Add(-s.expiry)

	s.mu.RLock()
	byID := s.records[metric]
	entries := make([]rank.Entry, 0, len(byID))
	for _, r := range byID {
		if r.LastSeen.Before(cutoff) {
			continue
		}
		entries = append(entries, rank.Entry{ID: r.ID, DisplayName: r.Name, Value: r.Value})
	}
	s.mu.RUnlock()

	rank.Sort(entries, order)
	if limit > 0 {
		entries = rank.Truncate(entries, limit)
	}
	return entries
}

// SweepExpired removes expired records from memory and schedules the
// affected metric files for rewrite. It returns the number of records
// removed.
func (s *Store) SweepExpired(ctx context.Context, now time.Time) int {
	cutoff := now.Add(-s.expiry)
	swept := 0
	var dirty []string

	s.mu.Lock()
	for metric, byID := range s.records {
		removed := 0
		for id, r := range byID {
			if r.LastSeen.Before(cutoff) {
				delete(byID, id)
				removed++
			}
		}
		if removed > 0 {
			swept += removed
			dirty = append(dirty, metric)
		}
		if len(byID) == 0 {
			delete(s.records, metric)
		}
	}
	total := s.totalLocked()
	if !s.closed {
		for _, metric := range dirty {
			s.enqueue(ctx, metric)
		}
	}
	s.mu.Unlock()

	if swept > 0 {
		s.log.Info(ctx, "swept expired offline records", logger.Int("count", swept))
		metrics.RecordSweptRecords(swept)
		metrics.UpdateOfflineRecords(total)
	}
	return swept
}

// Metrics returns the metric names currently held, for diagnostics.
func (s *Store) Metrics() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.records))
	for metric := range s.records {
		names = append(names, metric)
	}
	return names
}

func (s *Store) totalLocked() int {
	total := 0
	for _, byID := range s.records {
		total += len(byID)
	}
	return total
}

// Close stops the writer after draining pending writes. The store
// rejects further observations.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.closed = true
	s.mu.Unlock()

	close(s.writes)
	<-s.done
	return nil
}
