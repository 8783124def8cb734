package sqlite

import (
	"context"
	"fmt"

	"github.com/bookclubapp/bookclub-server/internal/normalize"
	"github.com/bookclubapp/bookclub-server/internal/store"
)

var _ store.Store = (*Store)(nil)

// ReplaceSnapshot swaps the stored snapshot for the given run's data in a
// single transaction. Members, books, ratings, and unmatched rows are wiped
// and reinserted; the run itself is appended to the history.
func (s *Store) ReplaceSnapshot(ctx context.Context, snap *store.Snapshot) error {
	if snap == nil || snap.Run.ID == "" {
		return store.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"ratings", "books", "unmatched_meetings", "members"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for i, m := range snap.Members {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO members (name, export_file, active, sort_order)
			VALUES (?, ?, ?, ?)`,
			m.Name, nullString(m.ExportFile), boolToInt(m.Active), i)
		if err != nil {
			return fmt.Errorf("insert member %s: %w", m.Name, err)
		}
	}

	for i := range snap.Reports {
		r := &snap.Reports[i]
		_, err := tx.ExecContext(ctx, `
			INSERT INTO books (
				id, seq, date, title, title_key, author, picked_by, location,
				original_publication_year, average_goodreads_rating,
				number_of_pages, average_club_rating
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID,
			r.Seq,
			formatTime(r.Date),
			r.Title,
			normalize.TitleKey(r.Title),
			r.Author,
			r.PickedBy,
			nullString(r.Location),
			nullInt(r.PubYear),
			nullFloat(r.GoodreadsAvg),
			nullFloat(r.Pages),
			nullFloat(r.ClubAvg),
		)
		if err != nil {
			return fmt.Errorf("insert book %s: %w", r.Title, err)
		}

		for member, rating := range r.Ratings {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO ratings (book_id, member, rating)
				VALUES (?, ?, ?)`,
				r.ID, member, rating)
			if err != nil {
				return fmt.Errorf("insert rating %s/%s: %w", r.Title, member, err)
			}
		}
	}

	for i := range snap.Unmatched {
		m := &snap.Unmatched[i]
		_, err := tx.ExecContext(ctx, `
			INSERT INTO unmatched_meetings (
				id, seq, date, title, author, picked_by, location
			) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			m.ID,
			m.Seq,
			formatTime(m.Date),
			m.Title,
			m.Author,
			m.PickedBy,
			nullString(m.Location),
		)
		if err != nil {
			return fmt.Errorf("insert unmatched meeting %s: %w", m.Title, err)
		}
	}

	run := snap.Run
	_, err = tx.ExecContext(ctx, `
		INSERT INTO pipeline_runs (
			id, started_at, finished_at, source_rows, processed, unmatched, member_count
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		formatTime(run.StartedAt),
		formatTime(run.FinishedAt),
		run.SourceRows,
		run.Processed,
		run.Unmatched,
		run.MemberCount,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}

	s.logger.Debug("snapshot replaced",
		"run_id", run.ID,
		"books", len(snap.Reports),
		"unmatched", len(snap.Unmatched))
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
