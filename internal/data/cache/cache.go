// # internal/data/cache/cache.go
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"steward/internal/engine/metrics"
	"steward/internal/shared/observability"
)

// ScanRecord is one completed scan run.
type ScanRecord struct {
	RunID         string
	Root          string
	StartedAt     time.Time
	Duration      time.Duration
	FileCount     int
	TotalLOC      int
	MaxComplexity int
}

// HashContent returns the content key for cache lookups.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// PutFile stores the metrics for one (path, hash) pair and drops rows for
// the same path under older hashes, so each path keeps exactly one entry.
func (s *Store) PutFile(path, hash string, fm *metrics.FileMetrics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path = strings.TrimSpace(path)
	if path == "" || hash == "" {
		return fmt.Errorf("file metrics key must have path and hash")
	}
	if fm == nil {
		return fmt.Errorf("file metrics for %q must not be nil", path)
	}
	payload, err := json.Marshal(fm)
	if err != nil {
		return fmt.Errorf("encode metrics for %q: %w", path, err)
	}

	return s.withRetry("put file metrics", func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`
INSERT INTO file_metrics (path, content_hash, language, metrics_json, analyzed_at_utc)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(path, content_hash) DO UPDATE SET
  language=excluded.language,
  metrics_json=excluded.metrics_json,
  analyzed_at_utc=excluded.analyzed_at_utc
`, path, hash, fm.Language, string(payload), time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
			_ = tx.Rollback()
			return err
		}
		if _, err := tx.Exec(`DELETE FROM file_metrics WHERE path = ? AND content_hash != ?`, path, hash); err != nil {
			_ = tx.Rollback()
			return err
		}
		return tx.Commit()
	})
}

// GetFile looks up metrics by (path, hash). A miss is not an error; it
// simply means the file must be re-analyzed.
func (s *Store) GetFile(path, hash string) (*metrics.FileMetrics, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var payload string
	err := s.withRetry("get file metrics", func() error {
		return s.db.QueryRow(
			`SELECT metrics_json FROM file_metrics WHERE path = ? AND content_hash = ?`,
			path, hash,
		).Scan(&payload)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			observability.CacheMissesTotal.Inc()
			return nil, false, nil
		}
		return nil, false, err
	}

	var fm metrics.FileMetrics
	if err := json.Unmarshal([]byte(payload), &fm); err != nil {
		observability.CacheMissesTotal.Inc()
		return nil, false, fmt.Errorf("decode cached metrics for %q: %w", path, err)
	}
	observability.CacheHitsTotal.Inc()
	return &fm, true, nil
}

// DeleteFile removes every cached row for a path.
func (s *Store) DeleteFile(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withRetry("delete file metrics", func() error {
		_, err := s.db.Exec(`DELETE FROM file_metrics WHERE path = ?`, path)
		return err
	})
}

// PruneExcept drops cached rows whose path is not in keep. Called after a
// full scan so deleted files do not linger in the store.
func (s *Store) PruneExcept(keep []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := make(map[string]bool, len(keep))
	for _, path := range keep {
		set[path] = true
	}

	var paths []string
	err := s.withRetry("list cached paths", func() error {
		rows, err := s.db.Query(`SELECT DISTINCT path FROM file_metrics`)
		if err != nil {
			return err
		}
		defer rows.Close()
		paths = paths[:0]
		for rows.Next() {
			var p string
			if err := rows.Scan(&p); err != nil {
				return err
			}
			paths = append(paths, p)
		}
		return rows.Err()
	})
	if err != nil {
		return 0, err
	}

	var pruned int64
	for _, path := range paths {
		if set[path] {
			continue
		}
		err := s.withRetry("prune file metrics", func() error {
			_, err := s.db.Exec(`DELETE FROM file_metrics WHERE path = ?`, path)
			return err
		})
		if err != nil {
			return pruned, err
		}
		pruned++
	}
	return pruned, nil
}

// RecordScan stores one scan snapshot.
func (s *Store) RecordScan(record ScanRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(record.RunID) == "" {
		return fmt.Errorf("scan record must have a run id")
	}
	if record.StartedAt.IsZero() {
		record.StartedAt = time.Now().UTC()
	}

	return s.withRetry("record scan", func() error {
		_, err := s.db.Exec(`
INSERT INTO scans (run_id, root, started_at_utc, duration_ms, file_count, total_loc, max_complexity)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(run_id) DO UPDATE SET
  root=excluded.root,
  started_at_utc=excluded.started_at_utc,
  duration_ms=excluded.duration_ms,
  file_count=excluded.file_count,
  total_loc=excluded.total_loc,
  max_complexity=excluded.max_complexity
`,
			record.RunID,
			record.Root,
			record.StartedAt.UTC().Format(time.RFC3339Nano),
			record.Duration.Milliseconds(),
			record.FileCount,
			record.TotalLOC,
			record.MaxComplexity,
		)
		return err
	})
}

// RecentScans returns the newest scan snapshots, most recent first.
func (s *Store) RecentScans(limit int) ([]ScanRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}

	var rows *sql.Rows
	err := s.withRetry("load scans", func() error {
		var qErr error
		rows, qErr = s.db.Query(`
SELECT run_id, root, started_at_utc, duration_ms, file_count, total_loc, max_complexity
FROM scans
ORDER BY started_at_utc DESC, run_id DESC
LIMIT ?
`, limit)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]ScanRecord, 0, limit)
	for rows.Next() {
		var (
			record     ScanRecord
			startedRaw string
			durationMS int64
		)
		if err := rows.Scan(
			&record.RunID,
			&record.Root,
			&startedRaw,
			&durationMS,
			&record.FileCount,
			&record.TotalLOC,
			&record.MaxComplexity,
		); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		started, err := time.Parse(time.RFC3339Nano, startedRaw)
		if err != nil {
			return nil, fmt.Errorf("parse scan timestamp %q: %w", startedRaw, err)
		}
		record.StartedAt = started.UTC()
		record.Duration = time.Duration(durationMS) * time.Millisecond
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scan rows: %w", err)
	}

	return records, nil
}
