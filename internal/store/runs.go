package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/ballotwatch/candidate-sync/internal/db"
	"github.com/ballotwatch/candidate-sync/internal/model"
)

// RunLedger records the lifecycle of collection runs in the append-only
// collection_runs audit table. A run transitions from running to exactly
// one of completed or failed; rows are never deleted.
type RunLedger struct {
	pool db.Pool
}

// Start creates a run entry with status running and returns its id.
func (l *RunLedger) Start(ctx context.Context, source string) (int64, error) {
	var id int64
	err := l.pool.QueryRow(ctx,
		`INSERT INTO collection_runs (source, status, started_at)
		 VALUES ($1, 'running', now()) RETURNING id`,
		source,
	).Scan(&id)
	if err != nil {
		return 0, eris.Wrapf(err, "ledger: start run for %s", source)
	}
	return id, nil
}

const finalizeRunSQL = `
	UPDATE collection_runs
	SET status = $1,
	    completed_at = now(),
	    records_found = $2,
	    records_added = $3,
	    records_updated = $4,
	    duration_ms = (EXTRACT(EPOCH FROM (now() - started_at)) * 1000)::bigint,
	    errors = $5
	WHERE id = $6 AND status = 'running'`

// Complete finalizes a run as completed, persisting the counters and
// the accumulated error list. Individual record errors do not prevent
// completion; they are the audit trail of what was skipped.
func (l *RunLedger) Complete(ctx context.Context, runID int64, stats *model.Stats) error {
	return l.finalize(ctx, runID, model.RunCompleted, stats)
}

// Fail finalizes a run as failed after a collector-fatal condition,
// recording the fatal error alongside any per-record errors gathered
// before the failure.
func (l *RunLedger) Fail(ctx context.Context, runID int64, fatal error, stats *model.Stats) error {
	if stats == nil {
		stats = &model.Stats{}
	}
	s := *stats
	s.Errors = append(append([]model.RunError{}, stats.Errors...), model.RunError{
		Message: fatal.Error(),
		Context: "fatal",
	})
	return l.finalize(ctx, runID, model.RunFailed, &s)
}

func (l *RunLedger) finalize(ctx context.Context, runID int64, status model.RunStatus, stats *model.Stats) error {
	if stats == nil {
		stats = &model.Stats{}
	}

	errList := stats.Errors
	if errList == nil {
		errList = []model.RunError{}
	}
	errJSON, err := json.Marshal(errList)
	if err != nil {
		return eris.Wrap(err, "ledger: marshal error list")
	}

	tag, err := l.pool.Exec(ctx, finalizeRunSQL,
		string(status), stats.Found, stats.Added, stats.Updated, errJSON, runID,
	)
	if err != nil {
		return eris.Wrapf(err, "ledger: finalize run %d", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("ledger: run %d is not running, refusing second finalize", runID)
	}
	return nil
}

const listRunsSQL = `
	SELECT id, source, status, started_at, completed_at,
	       records_found, records_added, records_updated, duration_ms, errors
	FROM collection_runs
	ORDER BY started_at DESC
	LIMIT $1`

// List returns the most recent runs, newest first.
func (l *RunLedger) List(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.pool.Query(ctx, listRunsSQL, limit)
	if err != nil {
		return nil, eris.Wrap(err, "ledger: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		var status string
		var errJSON []byte
		if err := rows.Scan(&r.ID, &r.Source, &status, &r.StartedAt, &r.CompletedAt,
			&r.RecordsFound, &r.RecordsAdded, &r.RecordsUpdated, &r.DurationMS, &errJSON); err != nil {
			return nil, eris.Wrap(err, "ledger: scan run")
		}
		r.Status = model.RunStatus(status)
		if len(errJSON) > 0 {
			_ = json.Unmarshal(errJSON, &r.Errors)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LastCompleted returns the started_at of the most recent completed run
// for a source, or nil if the source has never completed a run.
func (l *RunLedger) LastCompleted(ctx context.Context, source string) (*time.Time, error) {
	var t time.Time
	err := l.pool.QueryRow(ctx,
		`SELECT started_at FROM collection_runs
		 WHERE source = $1 AND status = 'completed'
		 ORDER BY started_at DESC LIMIT 1`,
		source,
	).Scan(&t)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "ledger: last completed for %s", source)
	}
	return &t, nil
}
