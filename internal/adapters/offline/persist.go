package offline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/holoboard/holoboard/internal/domain/identity"
	"github.com/holoboard/holoboard/pkg/logger"
	"github.com/holoboard/holoboard/pkg/metrics"
)

// metricFile is the on-disk form of one metric's records. The metric
// name is stored in the file because the file name is a sanitized,
// lossy encoding of it.
type metricFile struct {
	Metric  string                     `yaml:"metric"`
	Records map[string]persistedRecord `yaml:"records"`
}

type persistedRecord struct {
	Name     string    `yaml:"name"`
	Value    float64   `yaml:"value"`
	LastSeen time.Time `yaml:"last_seen"`
}

// enqueue schedules a metric file rewrite. Callers must hold mu with
// closed still false; that orders every send before Close closes the
// channel. A full queue drops the request; a later observation of the
// same metric re-enqueues it.
func (s *Store) enqueue(ctx context.Context, metric string) {
	select {
	case s.writes <- metric:
	default:
		s.log.Warn(ctx, "persist queue full, dropping write",
			logger.String("metric", metric))
		metrics.RecordPersistError()
	}
}

// writer is the single persistence goroutine. It drains the queue until
// Close and persists one whole metric file per request.
func (s *Store) writer() {
	defer close(s.done)
	ctx := context.Background()
	for metric := range s.writes {
		if err := s.persistMetric(metric); err != nil {
			s.log.Warn(ctx, "persisting offline records failed",
				logger.String("metric", metric), logger.Error(err))
			metrics.RecordPersistError()
		}
	}
}

func (s *Store) persistMetric(metric string) error {
	s.mu.RLock()
	byID := s.records[metric]
	mf := metricFile{Metric: metric, Records: make(map[string]persistedRecord, len(byID))}
	for id, r := range byID {
		mf.Records[id.String()] = persistedRecord{
			Name:     r.Name,
			Value:    r.Value,
			LastSeen: r.LastSeen.UTC(),
		}
	}
	s.mu.RUnlock()

	path := s.metricPath(metric)
	if len(mf.Records) == 0 {
		err := os.Remove(path)
		if err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}

	out, err := yaml.Marshal(mf)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, out, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Load reads every persisted metric file into memory. Records already
// expired at load time are dropped, future timestamps are clamped to
// now, and malformed files are skipped with a warning rather than
// failing startup.
func (s *Store) Load(ctx context.Context, now time.Time) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("reading offline data dir: %w", err)
	}
	cutoff := now.Add(-s.expiry)
	loaded := 0

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yml") {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			s.log.Warn(ctx, "unreadable offline data file",
				logger.String("file", entry.Name()), logger.Error(err))
			continue
		}
		var mf metricFile
		if err := yaml.Unmarshal(raw, &mf); err != nil {
			s.log.Warn(ctx, "malformed offline data file",
				logger.String("file", entry.Name()), logger.Error(err))
			continue
		}
		if mf.Metric == "" || len(mf.Records) == 0 {
			continue
		}

		byID := make(map[identity.ID]Record, len(mf.Records))
		for rawID, pr := range mf.Records {
			id, err := identity.Parse(rawID)
			if err != nil {
				continue
			}
			if pr.LastSeen.Before(cutoff) {
				continue
			}
			// A clock-skewed file could carry a future timestamp; left
			// alone it would never regress and never expire.
			if pr.LastSeen.After(now) {
				pr.LastSeen = now
			}
			byID[id] = Record{ID: id, Name: pr.Name, Value: pr.Value, LastSeen: pr.LastSeen}
		}
		if len(byID) == 0 {
			continue
		}
		s.records[mf.Metric] = byID
		loaded += len(byID)
	}

	s.log.Info(ctx, "offline records loaded", logger.Int("count", loaded))
	metrics.UpdateOfflineRecords(s.totalLocked())
	return nil
}

// metricPath maps a metric name to its file, replacing characters that
// are unsafe in file names.
func (s *Store) metricPath(metric string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, metric)
	return filepath.Join(s.dir, sanitized+".yml")
}
