package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// BeginRun records the start of a batch.
func (s *Store) BeginRun(ctx context.Context, run Run) error {
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	err := s.exec(ctx,
		`INSERT INTO runs (id, root, dry_run, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.Root, boolToInt(run.DryRun), formatTime(run.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun stores the final folder counts of a batch.
func (s *Store) FinishRun(ctx context.Context, runID string, counts Counts) error {
	err := s.exec(ctx,
		`UPDATE runs SET finished_at = ?, total = ?, relocated = ?, complete = ?,
            partial = ?, pending = ?, errored = ? WHERE id = ?`,
		formatTime(time.Now()), counts.Total, counts.Relocated, counts.Complete,
		counts.Partial, counts.Pending, counts.Errored, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// RecordAttempt appends one stage attempt.
func (s *Store) RecordAttempt(ctx context.Context, a Attempt) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	err := s.exec(ctx,
		`INSERT INTO attempts (
            run_id, folder, identity, stage, status, error_kind, error_message, duration_ms, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.RunID, a.Folder, a.Identity, a.Stage, a.Status,
		nullableString(a.ErrorKind), nullableString(a.ErrorMessage),
		a.Duration.Milliseconds(), formatTime(a.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

// RecordFolder appends the final state of one folder.
func (s *Store) RecordFolder(ctx context.Context, f FolderResult) error {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now()
	}
	err := s.exec(ctx,
		`INSERT INTO folders (run_id, folder, identity, state, destination, detail, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.RunID, f.Folder, f.Identity, f.State,
		nullableString(f.Destination), nullableString(f.Detail), formatTime(f.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert folder result: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, root, dry_run, started_at, finished_at, total, relocated, complete, partial, pending, errored
        FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run      Run
			dryRun   int
			started  string
			finished sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.Root, &dryRun, &started, &finished,
			&run.Counts.Total, &run.Counts.Relocated, &run.Counts.Complete,
			&run.Counts.Partial, &run.Counts.Pending, &run.Counts.Errored); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.DryRun = dryRun != 0
		run.StartedAt = parseTime(started)
		if finished.Valid {
			run.FinishedAt = parseTime(finished.String)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Attempts returns the attempts recorded for runID in insertion order.
func (s *Store) Attempts(ctx context.Context, runID string) ([]Attempt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, folder, identity, stage, status, error_kind, error_message, duration_ms, created_at
        FROM attempts WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var (
			a          Attempt
			kind, msg  sql.NullString
			durationMS int64
			created    string
		)
		if err := rows.Scan(&a.RunID, &a.Folder, &a.Identity, &a.Stage, &a.Status,
			&kind, &msg, &durationMS, &created); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		a.ErrorKind = kind.String
		a.ErrorMessage = msg.String
		a.Duration = time.Duration(durationMS) * time.Millisecond
		a.CreatedAt = parseTime(created)
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// Folders returns the folder results recorded for runID.
func (s *Store) Folders(ctx context.Context, runID string) ([]FolderResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, folder, identity, state, destination, detail, created_at
        FROM folders WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query folders: %w", err)
	}
	defer rows.Close()

	var out []FolderResult
	for rows.Next() {
		var (
			f            FolderResult
			dest, detail sql.NullString
			created      string
		)
		if err := rows.Scan(&f.RunID, &f.Folder, &f.Identity, &f.State, &dest, &detail, &created); err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		f.Destination = dest.String
		f.Detail = detail.String
		f.CreatedAt = parseTime(created)
		out = append(out, f)
	}
	return out, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
