// Package pipeline combines cleaned source records into the merged club
// report: pivot per-member ratings, join against the meeting log, merge
// manual ratings, and write the processed output files.
package pipeline

import (
	"sort"

	"github.com/bookclubapp/bookclub-server/internal/domain"
	"github.com/bookclubapp/bookclub-server/internal/normalize"
)

// pivotGroup accumulates the rows for one title while pivoting.
type pivotGroup struct {
	book domain.PivotedBook

	// per-member rating sums; a member appearing twice (re-read, duplicate
	// edition) contributes the mean of their ratings
	ratingSum   map[string]float64
	ratingCount map[string]int

	grAvgSum   float64
	grAvgCount int
	pagesSum   float64
	pagesCount int
}

// Pivot reshapes combined rating records into one PivotedBook per title,
// with one rating column per roster member and the club average across the
// present columns. Only roster members contribute columns; records from
// unknown members are ignored.
//
// Books are keyed by normalized title. Shared attributes (goodreads average,
// page count) are averaged across the contributing rows; author and
// publication year are taken from the first row that has them.
func Pivot(records []domain.RatingRecord, roster *domain.Roster) []domain.PivotedBook {
	groups := make(map[string]*pivotGroup)
	var order []string

	for i := range records {
		rec := &records[i]
		if !roster.HasMember(rec.Member) {
			continue
		}

		key := normalize.TitleKey(rec.Title)
		if key == "" {
			continue
		}

		g, ok := groups[key]
		if !ok {
			g = &pivotGroup{
				book: domain.PivotedBook{
					Title:   rec.Title,
					Author:  rec.Author,
					Ratings: make(map[string]float64),
				},
				ratingSum:   make(map[string]float64),
				ratingCount: make(map[string]int),
			}
			groups[key] = g
			order = append(order, key)
		}

		if g.book.Author == "" {
			g.book.Author = rec.Author
		}
		if g.book.PubYear == nil && rec.PubYear != nil {
			year := *rec.PubYear
			g.book.PubYear = &year
		}
		if rec.Rating != nil {
			g.ratingSum[rec.Member] += *rec.Rating
			g.ratingCount[rec.Member]++
		}
		if rec.GoodreadsAvg != nil {
			g.grAvgSum += *rec.GoodreadsAvg
			g.grAvgCount++
		}
		if rec.Pages != nil {
			g.pagesSum += float64(*rec.Pages)
			g.pagesCount++
		}
	}

	sort.Strings(order)

	members := roster.Names()
	books := make([]domain.PivotedBook, 0, len(order))
	for _, key := range order {
		g := groups[key]

		for member, count := range g.ratingCount {
			g.book.Ratings[member] = g.ratingSum[member] / float64(count)
		}
		if g.grAvgCount > 0 {
			avg := g.grAvgSum / float64(g.grAvgCount)
			g.book.GoodreadsAvg = &avg
		}
		if g.pagesCount > 0 {
			pages := g.pagesSum / float64(g.pagesCount)
			g.book.Pages = &pages
		}

		g.book.ClubAvg = horizontalMean(g.book.Ratings, members)
		books = append(books, g.book)
	}

	return books
}

// horizontalMean returns the mean of the member ratings present in the row,
// or nil when no member rated the book.
func horizontalMean(ratings map[string]float64, members []string) *float64 {
	sum := 0.0
	n := 0
	for _, m := range members {
		if v, ok := ratings[m]; ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}
