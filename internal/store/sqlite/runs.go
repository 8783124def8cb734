package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bookclubapp/bookclub-server/internal/domain"
	"github.com/bookclubapp/bookclub-server/internal/store"
)

const runColumns = `id, started_at, finished_at, source_rows, processed, unmatched, member_count`

func scanRun(scanner interface{ Scan(dest ...any) error }) (*domain.PipelineRun, error) {
	var r domain.PipelineRun
	var started, finished string

	err := scanner.Scan(
		&r.ID,
		&started,
		&finished,
		&r.SourceRows,
		&r.Processed,
		&r.Unmatched,
		&r.MemberCount,
	)
	if err != nil {
		return nil, err
	}

	r.StartedAt, err = parseTime(started)
	if err != nil {
		return nil, err
	}
	r.FinishedAt, err = parseTime(finished)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// LatestRun returns the most recently started pipeline run.
// Returns store.ErrNoSnapshot when no run has ever been stored.
func (s *Store) LatestRun(ctx context.Context) (*domain.PipelineRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM pipeline_runs ORDER BY started_at DESC LIMIT 1`)

	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ListRuns returns the run history, newest first. A limit of zero returns
// all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]domain.PipelineRun, error) {
	query := `SELECT ` + runColumns + ` FROM pipeline_runs ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.PipelineRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}
