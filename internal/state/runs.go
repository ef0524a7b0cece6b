package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"artistdb/internal/fingerprint"
)

// Run is one recorded pipeline run.
type Run struct {
	ID                   string
	StartedAt            time.Time
	FinishedAt           time.Time
	Fingerprint          fingerprint.Fingerprint
	Published            bool
	Artists              int
	Aliases              int
	Bytes                int64
	Failures             int
	Diagnostics          int
	NormalizationChanged bool
	SourceRewritten      bool
	Forced               bool
	ErrorMessage         string
}

// Duration returns how long the run took.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

const runColumns = "id, started_at, finished_at, fingerprint, published, artists, aliases, bytes, failures, diagnostics, normalization_changed, source_rewritten, forced, error_message"

// RecordRun inserts run. IDs must be unique.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("record run: id is required")
	}
	err := s.execWithRetry(ctx,
		`INSERT INTO publish_runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		run.Fingerprint.String(),
		boolToInt(run.Published),
		run.Artists,
		run.Aliases,
		run.Bytes,
		run.Failures,
		run.Diagnostics,
		boolToInt(run.NormalizationChanged),
		boolToInt(run.SourceRewritten),
		boolToInt(run.Forced),
		nullableString(run.ErrorMessage),
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// LastPublished returns the most recent run that published artifacts, or nil
// when there is none.
func (s *Store) LastPublished(ctx context.Context) (*Run, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM publish_runs WHERE published = 1 ORDER BY started_at DESC, rowid DESC LIMIT 1`)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last published run: %w", err)
	}
	return run, nil
}

// LastRun returns the most recent run of any outcome, or nil.
func (s *Store) LastRun(ctx context.Context) (*Run, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM publish_runs ORDER BY started_at DESC, rowid DESC LIMIT 1`)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last run: %w", err)
	}
	return run, nil
}

// ListRuns returns up to limit runs, newest first. A non-positive limit
// returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + runColumns + ` FROM publish_runs ORDER BY started_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Prune deletes all but the newest keep runs and returns how many were removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	ctx = ensureContext(ctx)
	var (
		res sql.Result
		err error
	)
	err = retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx,
			`DELETE FROM publish_runs WHERE id NOT IN (
                SELECT id FROM publish_runs ORDER BY started_at DESC, rowid DESC LIMIT ?
            )`, keep)
		return execErr
	})
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run            Run
		startedRaw     string
		finishedRaw    string
		fingerprintRaw string
		published      int
		normalization  int
		rewritten      int
		forced         int
		errorMessage   sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&startedRaw,
		&finishedRaw,
		&fingerprintRaw,
		&published,
		&run.Artists,
		&run.Aliases,
		&run.Bytes,
		&run.Failures,
		&run.Diagnostics,
		&normalization,
		&rewritten,
		&forced,
		&errorMessage,
	); err != nil {
		return nil, err
	}

	var err error
	if run.StartedAt, err = time.Parse(time.RFC3339Nano, startedRaw); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if run.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedRaw); err != nil {
		return nil, fmt.Errorf("parse finished_at: %w", err)
	}
	if run.Fingerprint, err = fingerprint.Parse(fingerprintRaw); err != nil {
		return nil, fmt.Errorf("parse fingerprint: %w", err)
	}
	run.Published = published != 0
	run.NormalizationChanged = normalization != 0
	run.SourceRewritten = rewritten != 0
	run.Forced = forced != 0
	run.ErrorMessage = errorMessage.String
	return &run, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
