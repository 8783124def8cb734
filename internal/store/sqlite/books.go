package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bookclubapp/bookclub-server/internal/domain"
	"github.com/bookclubapp/bookclub-server/internal/store"
)

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook.
const bookColumns = `id, seq, date, title, author, picked_by, location,
	original_publication_year, average_goodreads_rating, number_of_pages,
	average_club_rating`

// scanBook scans a sql.Row (or sql.Rows via its Scan method) into a
// domain.BookReport. Ratings are attached separately.
func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.BookReport, error) {
	var r domain.BookReport

	var (
		date     string
		location sql.NullString
		pubYear  sql.NullInt64
		grAvg    sql.NullFloat64
		pages    sql.NullFloat64
		clubAvg  sql.NullFloat64
	)

	err := scanner.Scan(
		&r.ID,
		&r.Seq,
		&date,
		&r.Title,
		&r.Author,
		&r.PickedBy,
		&location,
		&pubYear,
		&grAvg,
		&pages,
		&clubAvg,
	)
	if err != nil {
		return nil, err
	}

	r.Date, err = parseTime(date)
	if err != nil {
		return nil, err
	}
	if location.Valid {
		r.Location = location.String
	}
	r.PubYear = intPtr(pubYear)
	r.GoodreadsAvg = floatPtr(grAvg)
	r.Pages = floatPtr(pages)
	r.ClubAvg = floatPtr(clubAvg)
	r.Ratings = make(map[string]float64)

	return &r, nil
}

// ListReports returns the stored book reports in meeting order, ratings
// included.
func (s *Store) ListReports(ctx context.Context) ([]domain.BookReport, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books ORDER BY date ASC, seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	var reports []domain.BookReport
	byID := make(map[string]int)
	for rows.Next() {
		r, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		byID[r.ID] = len(reports)
		reports = append(reports, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	if err := s.attachRatings(ctx, reports, byID); err != nil {
		return nil, err
	}
	return reports, nil
}

// GetReport retrieves one book report by ID, ratings included.
// Returns store.ErrNotFound if the book does not exist.
func (s *Store) GetReport(ctx context.Context, id string) (*domain.BookReport, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ?`, id)

	r, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT member, rating FROM ratings WHERE book_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("query ratings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var member string
		var rating float64
		if err := rows.Scan(&member, &rating); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		r.Ratings[member] = rating
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return r, nil
}

// attachRatings loads all ratings in one query and distributes them over the
// report slice.
func (s *Store) attachRatings(ctx context.Context, reports []domain.BookReport, byID map[string]int) error {
	if len(reports) == 0 {
		return nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT book_id, member, rating FROM ratings`)
	if err != nil {
		return fmt.Errorf("query ratings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var bookID, member string
		var rating float64
		if err := rows.Scan(&bookID, &member, &rating); err != nil {
			return fmt.Errorf("scan rating: %w", err)
		}
		if idx, ok := byID[bookID]; ok {
			reports[idx].Ratings[member] = rating
		}
	}
	return rows.Err()
}

// ListUnmatched returns the meeting-log rows that had no Goodreads match in
// the latest run, in meeting order.
func (s *Store) ListUnmatched(ctx context.Context) ([]domain.Meeting, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, date, title, author, picked_by, location
		FROM unmatched_meetings ORDER BY date ASC, seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("query unmatched: %w", err)
	}
	defer rows.Close()

	var meetings []domain.Meeting
	for rows.Next() {
		var m domain.Meeting
		var date string
		var location sql.NullString

		if err := rows.Scan(&m.ID, &m.Seq, &date, &m.Title, &m.Author, &m.PickedBy, &location); err != nil {
			return nil, fmt.Errorf("scan unmatched: %w", err)
		}
		m.Date, err = parseTime(date)
		if err != nil {
			return nil, err
		}
		if location.Valid {
			m.Location = location.String
		}
		meetings = append(meetings, m)
	}
	return meetings, rows.Err()
}

// ListMembers returns the stored roster in its original order.
func (s *Store) ListMembers(ctx context.Context) ([]domain.Member, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, export_file, active FROM members ORDER BY sort_order ASC`)
	if err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		var m domain.Member
		var exportFile sql.NullString
		var active int
		if err := rows.Scan(&m.Name, &exportFile, &active); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		if exportFile.Valid {
			m.ExportFile = exportFile.String
		}
		m.Active = active != 0
		members = append(members, m)
	}
	return members, rows.Err()
}
