package stats

import (
	"math"
	"sort"

	"github.com/bookclubapp/bookclub-server/internal/domain"
)

// PolarizingBook is a book ranked by how much the members disagreed on it.
type PolarizingBook struct {
	Title   string             `json:"title"`
	Author  string             `json:"author"`
	Spread  float64            `json:"spread"`
	Ratings map[string]float64 `json:"ratings"`
}

// Polarizing ranks books by the spread of their member ratings, widest
// first. Books with fewer than two ratings carry no disagreement and are
// skipped. A limit of zero returns all qualifying books.
func Polarizing(reports []domain.BookReport, limit int) []PolarizingBook {
	out := make([]PolarizingBook, 0, len(reports))
	for i := range reports {
		r := &reports[i]
		if r.VoterCount() < 2 {
			continue
		}
		out = append(out, PolarizingBook{
			Title:   r.Title,
			Author:  r.Author,
			Spread:  r.RatingSpread(),
			Ratings: r.Ratings,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Spread != out[j].Spread {
			return out[i].Spread > out[j].Spread
		}
		return out[i].Title < out[j].Title
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Discrepancy is the gap between the club's average and the Goodreads
// community average for one book. Positive means the club liked it more
// than Goodreads did.
type Discrepancy struct {
	Title        string  `json:"title"`
	Author       string  `json:"author"`
	ClubAvg      float64 `json:"average_club_rating"`
	GoodreadsAvg float64 `json:"average_goodreads_rating"`
	Delta        float64 `json:"delta"`
}

// Discrepancies ranks books by how far the club average sits from the
// Goodreads average, largest gap first. Only books with both averages
// qualify. A limit of zero returns all of them.
func Discrepancies(reports []domain.BookReport, limit int) []Discrepancy {
	out := make([]Discrepancy, 0, len(reports))
	for i := range reports {
		r := &reports[i]
		if r.ClubAvg == nil || r.GoodreadsAvg == nil {
			continue
		}
		out = append(out, Discrepancy{
			Title:        r.Title,
			Author:       r.Author,
			ClubAvg:      *r.ClubAvg,
			GoodreadsAvg: *r.GoodreadsAvg,
			Delta:        *r.ClubAvg - *r.GoodreadsAvg,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		di, dj := math.Abs(out[i].Delta), math.Abs(out[j].Delta)
		if di != dj {
			return di > dj
		}
		return out[i].Title < out[j].Title
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Rankings returns the reports ordered by club average, best first. Unrated
// books sink to the bottom in meeting order.
func Rankings(reports []domain.BookReport) []domain.BookReport {
	out := append([]domain.BookReport(nil), reports...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].ClubAvg, out[j].ClubAvg
		switch {
		case a != nil && b != nil:
			if *a != *b {
				return *a > *b
			}
			return out[i].Title < out[j].Title
		case a != nil:
			return true
		default:
			return false
		}
	})
	return out
}
