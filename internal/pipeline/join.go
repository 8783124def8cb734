package pipeline

import (
	"sort"

	"github.com/bookclubapp/bookclub-server/internal/domain"
	"github.com/bookclubapp/bookclub-server/internal/id"
	"github.com/bookclubapp/bookclub-server/internal/ingest"
	"github.com/bookclubapp/bookclub-server/internal/normalize"
)

// Join matches every meeting-log row against the pivoted ratings by
// normalized title. The meeting log drives the join: every meeting yields a
// BookReport, with the rating columns filled in when a pivot row matches and
// left empty otherwise. Meetings with no matching pivot row are additionally
// returned as unmatched — usually a title typo in one of the two sources.
// The two slices are disjoint over rating data and exhaustive over meetings:
// every meeting lands in reports, and exactly the empty-rating ones repeat
// in unmatched.
//
// Both slices come back sorted by meeting date, then sequence number.
func Join(meetings []domain.Meeting, books []domain.PivotedBook) ([]domain.BookReport, []domain.Meeting) {
	byKey := make(map[string]*domain.PivotedBook, len(books))
	for i := range books {
		byKey[normalize.TitleKey(books[i].Title)] = &books[i]
	}

	reports := make([]domain.BookReport, 0, len(meetings))
	var unmatched []domain.Meeting
	for _, m := range meetings {
		report := domain.BookReport{
			ID:       id.MustGenerate("book"),
			Seq:      m.Seq,
			Date:     m.Date,
			Title:    m.Title,
			Author:   m.Author,
			PickedBy: m.PickedBy,
			Location: m.Location,
			Ratings:  make(map[string]float64),
		}

		key := normalize.TitleKey(m.Title)
		if book, ok := byKey[key]; ok {
			report.PubYear = book.PubYear
			report.GoodreadsAvg = book.GoodreadsAvg
			report.Pages = book.Pages
			report.ClubAvg = book.ClubAvg
			for member, rating := range book.Ratings {
				report.Ratings[member] = rating
			}
			if report.Author == "" {
				report.Author = book.Author
			}
		} else {
			unmatched = append(unmatched, m)
		}

		reports = append(reports, report)
	}

	sort.SliceStable(unmatched, func(i, j int) bool {
		if !unmatched[i].Date.Equal(unmatched[j].Date) {
			return unmatched[i].Date.Before(unmatched[j].Date)
		}
		return unmatched[i].Seq < unmatched[j].Seq
	})

	sort.SliceStable(reports, func(i, j int) bool {
		if !reports[i].Date.Equal(reports[j].Date) {
			return reports[i].Date.Before(reports[j].Date)
		}
		return reports[i].Seq < reports[j].Seq
	})

	return reports, unmatched
}

// MergeManual overlays manual ratings onto the joined reports. A manual
// rating wins over the export value for the same (title, member) cell, since
// the sheet exists to correct and backfill exports. Club averages are
// recomputed afterwards so late manual rows move the mean.
func MergeManual(reports []domain.BookReport, manual ingest.ManualRatings, roster *domain.Roster) {
	members := roster.Names()
	for i := range reports {
		r := &reports[i]
		key := normalize.TitleKey(r.Title)
		for _, member := range members {
			if v, ok := manual.RatingFor(key, member); ok {
				r.Ratings[member] = v
			}
		}
		r.RecomputeClubAvg(members)
	}
}
