package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/onsen-labs/ryokan-atlas/internal/model"
)

// RunLog records pipeline runs in SQLite so failure rates and progress
// are diagnosable after the fact without re-running anything.
type RunLog struct {
	db *sql.DB
}

// NewRunLog opens (or creates) the run log database at dsn and applies
// the schema.
func NewRunLog(dsn string) (*RunLog, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "runlog: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "runlog: exec %s", pragma)
		}
	}

	if _, err := db.Exec(runLogMigration); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "runlog: migrate")
	}
	return &RunLog{db: db}, nil
}

const runLogMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id              TEXT PRIMARY KEY,
	kind            TEXT NOT NULL,
	status          TEXT NOT NULL DEFAULT 'running',
	pages_processed INTEGER NOT NULL DEFAULT 0,
	pages_skipped   INTEGER NOT NULL DEFAULT 0,
	listings        INTEGER NOT NULL DEFAULT 0,
	resolved        INTEGER NOT NULL DEFAULT 0,
	unresolved      INTEGER NOT NULL DEFAULT 0,
	error           TEXT NOT NULL DEFAULT '',
	started_at      DATETIME NOT NULL DEFAULT (datetime('now')),
	ended_at        DATETIME
);

CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

// Close releases the database handle.
func (l *RunLog) Close() error {
	return l.db.Close()
}

// StartRun inserts a running entry and returns its ID.
func (l *RunLog) StartRun(ctx context.Context, kind model.RunKind) (string, error) {
	id := uuid.New().String()
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO runs (id, kind, status, started_at) VALUES (?, ?, ?, ?)`,
		id, string(kind), string(model.RunRunning), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", eris.Wrap(err, "runlog: start run")
	}
	return id, nil
}

// CompleteRun marks a run completed and records its counters.
func (l *RunLog) CompleteRun(ctx context.Context, id string, c model.RunCounters) error {
	_, err := l.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, pages_processed = ?, pages_skipped = ?,
		 listings = ?, resolved = ?, unresolved = ?, ended_at = ? WHERE id = ?`,
		string(model.RunCompleted), c.PagesProcessed, c.PagesSkipped,
		c.Listings, c.Resolved, c.Unresolved, time.Now().UTC().Format(time.RFC3339), id,
	)
	return eris.Wrap(err, "runlog: complete run")
}

// FailRun marks a run failed with its error message.
func (l *RunLog) FailRun(ctx context.Context, id string, msg string) error {
	_, err := l.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error = ?, ended_at = ? WHERE id = ?`,
		string(model.RunFailed), msg, time.Now().UTC().Format(time.RFC3339), id,
	)
	return eris.Wrap(err, "runlog: fail run")
}

// RecentRuns returns the latest n runs, newest first.
func (l *RunLog) RecentRuns(ctx context.Context, n int) ([]model.Run, error) {
	if n <= 0 {
		n = 10
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, kind, status, pages_processed, pages_skipped, listings,
		 resolved, unresolved, error, started_at, COALESCE(ended_at, '')
		 FROM runs ORDER BY started_at DESC LIMIT ?`, n,
	)
	if err != nil {
		return nil, eris.Wrap(err, "runlog: query recent runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		if err := rows.Scan(&r.ID, &r.Kind, &r.Status,
			&r.Counters.PagesProcessed, &r.Counters.PagesSkipped, &r.Counters.Listings,
			&r.Counters.Resolved, &r.Counters.Unresolved,
			&r.Error, &r.StartedAt, &r.EndedAt); err != nil {
			return nil, eris.Wrap(err, "runlog: scan run")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "runlog: iterate runs")
}
