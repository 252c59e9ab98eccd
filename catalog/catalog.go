// Package catalog keeps per-event summaries of replay runs in SQLite for
// offline quality checks.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned for events missing from the catalog.
var ErrNotFound = errors.New("catalog: event not found")

const schema = `
CREATE TABLE IF NOT EXISTS events (
	run_id       TEXT    NOT NULL,
	event        INTEGER NOT NULL,
	hits         INTEGER NOT NULL,
	dropped_hits INTEGER NOT NULL,
	tracks       INTEGER NOT NULL,
	clusters     INTEGER NOT NULL,
	omitted      INTEGER NOT NULL,
	truncated    INTEGER NOT NULL,
	partition_ns INTEGER NOT NULL,
	slices_ns    INTEGER NOT NULL,
	merge_ns     INTEGER NOT NULL,
	resolve_ns   INTEGER NOT NULL,
	slice_cpu_ns INTEGER NOT NULL,
	recorded_at  INTEGER NOT NULL,
	PRIMARY KEY (run_id, event)
);
CREATE INDEX IF NOT EXISTS events_truncated ON events (run_id, truncated);
`

// Summary describes one reconstructed event.
type Summary struct {
	RunID       string
	Event       int
	Hits        int
	DroppedHits int
	Tracks      int
	// Clusters counts the clusters of the encoded tracks.
	Clusters int
	// Omitted counts tracks that did not fit into the result buffer.
	Omitted   int
	Truncated bool

	Partition time.Duration
	Slices    time.Duration
	Merge     time.Duration
	Resolve   time.Duration
	// SliceCPU is the summed run time of all slice trackers.
	SliceCPU time.Duration

	RecordedAt time.Time
}

// RunStats aggregates the summaries of one run.
type RunStats struct {
	RunID     string
	Events    int
	Hits      int64
	Tracks    int64
	Truncated int
	// Wall is the summed stage time of all events.
	Wall time.Duration
}

// Catalog is a SQLite-backed event catalog. It is safe for concurrent use.
type Catalog struct {
	db *sql.DB
}

// Open opens or creates the catalog at path.
func Open(ctx context.Context, path string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	// SQLite serializes writers; one connection also keeps ":memory:"
	// databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: create schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

// Close closes the database.
func (c *Catalog) Close() error { return c.db.Close() }

const insert = `INSERT OR REPLACE INTO events (
	run_id, event, hits, dropped_hits, tracks, clusters, omitted, truncated,
	partition_ns, slices_ns, merge_ns, resolve_ns, slice_cpu_ns, recorded_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Record stores s, replacing an earlier summary of the same event.
func (c *Catalog) Record(ctx context.Context, s Summary) error {
	return c.RecordBatch(ctx, []Summary{s})
}

// RecordBatch stores all summaries in one transaction.
func (c *Catalog) RecordBatch(ctx context.Context, ss []Summary) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, s := range ss {
		if s.RecordedAt.IsZero() {
			s.RecordedAt = time.Now()
		}
		_, err := stmt.ExecContext(ctx,
			s.RunID, s.Event, s.Hits, s.DroppedHits, s.Tracks, s.Clusters, s.Omitted, s.Truncated,
			int64(s.Partition), int64(s.Slices), int64(s.Merge), int64(s.Resolve), int64(s.SliceCPU),
			s.RecordedAt.UnixNano(),
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("catalog: record event %d: %w", s.Event, err)
		}
	}
	return tx.Commit()
}

const selectEvent = `SELECT
	run_id, event, hits, dropped_hits, tracks, clusters, omitted, truncated,
	partition_ns, slices_ns, merge_ns, resolve_ns, slice_cpu_ns, recorded_at
FROM events`

// Event returns the summary of one event.
func (c *Catalog) Event(ctx context.Context, runID string, event int) (Summary, error) {
	row := c.db.QueryRowContext(ctx, selectEvent+` WHERE run_id = ? AND event = ?`, runID, event)
	s, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Summary{}, fmt.Errorf("%w: run %s event %d", ErrNotFound, runID, event)
	}
	return s, err
}

// Events returns the summaries of a run ordered by event. With
// truncatedOnly set, only events whose result was truncated are returned.
func (c *Catalog) Events(ctx context.Context, runID string, truncatedOnly bool) ([]Summary, error) {
	q := selectEvent + ` WHERE run_id = ?`
	if truncatedOnly {
		q += ` AND truncated = 1`
	}
	rows, err := c.db.QueryContext(ctx, q+` ORDER BY event`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		s, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Runs returns per-run aggregates ordered by run id.
func (c *Catalog) Runs(ctx context.Context) ([]RunStats, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT
		run_id, COUNT(*), SUM(hits), SUM(tracks), SUM(truncated),
		SUM(partition_ns + slices_ns + merge_ns + resolve_ns)
	FROM events GROUP BY run_id ORDER BY run_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunStats
	for rows.Next() {
		var r RunStats
		var wall int64
		if err := rows.Scan(&r.RunID, &r.Events, &r.Hits, &r.Tracks, &r.Truncated, &wall); err != nil {
			return nil, err
		}
		r.Wall = time.Duration(wall)
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(sc scanner) (Summary, error) {
	var s Summary
	var partition, slices, merge, resolve, cpu, at int64
	err := sc.Scan(
		&s.RunID, &s.Event, &s.Hits, &s.DroppedHits, &s.Tracks, &s.Clusters, &s.Omitted, &s.Truncated,
		&partition, &slices, &merge, &resolve, &cpu, &at,
	)
	if err != nil {
		return Summary{}, err
	}
	s.Partition = time.Duration(partition)
	s.Slices = time.Duration(slices)
	s.Merge = time.Duration(merge)
	s.Resolve = time.Duration(resolve)
	s.SliceCPU = time.Duration(cpu)
	s.RecordedAt = time.Unix(0, at)
	return s, nil
}
