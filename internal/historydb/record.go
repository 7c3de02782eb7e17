package historydb

import (
	"context"
	"fmt"
	"time"

	"github.com/cwilliams/rsinc/internal/driver"
)

// Record implements driver.HistoryRecorder. A write failure is logged at
// warn and otherwise swallowed — the sync itself already completed (or
// failed) by the time Record runs, and this ledger is an observability
// side channel, never load-bearing.
func (s *Store) Record(ctx context.Context, entry driver.HistoryEntry) {
	errMsg := ""
	if entry.Err != nil {
		errMsg = entry.Err.Error()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO run_history (folder, recover, dry_run, actions, duration_ms, error, started_at)
		 VALUES (?, ?, ?, ?, ?, NULLIF(?, ''), ?)`,
		entry.Folder, boolToInt(entry.Recover), boolToInt(entry.DryRun), entry.Actions,
		entry.Duration.Milliseconds(), errMsg, time.Now().Add(-entry.Duration).Unix())
	if err != nil {
		s.logger.Warn("historydb: failed to record run", "folder", entry.Folder, "error", err)
	}
}

// Run is one recorded row, returned by Recent for `rsinc status`.
type Run struct {
	Folder    string
	Recover   bool
	DryRun    bool
	Actions   int
	Duration  time.Duration
	Error     string
	StartedAt time.Time
}

// Recent returns the most recent n runs across all folders, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT folder, recover, dry_run, actions, duration_ms, COALESCE(error, ''), started_at
		 FROM run_history ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("historydb: querying recent runs: %w", err)
	}
	defer rows.Close()

	var runs []Run

	for rows.Next() {
		var (
			r          Run
			recover    int
			dryRun     int
			durationMs int64
			startedAt  int64
		)

		if err := rows.Scan(&r.Folder, &recover, &dryRun, &r.Actions, &durationMs, &r.Error, &startedAt); err != nil {
			return nil, fmt.Errorf("historydb: scanning run row: %w", err)
		}

		r.Recover = recover != 0
		r.DryRun = dryRun != 0
		r.Duration = time.Duration(durationMs) * time.Millisecond
		r.StartedAt = time.Unix(startedAt, 0)

		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("historydb: iterating run rows: %w", err)
	}

	return runs, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}
