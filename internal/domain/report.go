package domain

import (
	"math"
	"time"
)

// PivotedBook is one book with all member ratings folded into columns:
// the output of pivoting the combined rating records. Shared attributes
// (goodreads average, pages) are averaged across the contributing rows.
type PivotedBook struct {
	Title        string             `json:"title"`
	Author       string             `json:"author"`
	PubYear      *int               `json:"original_publication_year,omitempty"`
	GoodreadsAvg *float64           `json:"average_goodreads_rating,omitempty"`
	Pages        *float64           `json:"number_of_pages,omitempty"`
	Ratings      map[string]float64 `json:"ratings"`
	ClubAvg      *float64           `json:"average_club_rating,omitempty"`
}

// BookReport is one merged record: a meeting-log row joined with the
// pivoted ratings for the same title, plus the recomputed club average.
type BookReport struct {
	ID           string             `json:"id"`
	Seq          int                `json:"seq"`
	Date         time.Time          `json:"date"`
	Title        string             `json:"title"`
	Author       string             `json:"author"`
	PickedBy     string             `json:"picked_by"`
	Location     string             `json:"location,omitempty"`
	PubYear      *int               `json:"original_publication_year,omitempty"`
	GoodreadsAvg *float64           `json:"average_goodreads_rating,omitempty"`
	Pages        *float64           `json:"number_of_pages,omitempty"`
	Ratings      map[string]float64 `json:"ratings"`
	ClubAvg      *float64           `json:"average_club_rating,omitempty"`
}

// RatingFor returns the named member's rating, if present.
func (b *BookReport) RatingFor(member string) (float64, bool) {
	v, ok := b.Ratings[member]
	return v, ok
}

// VoterCount returns how many members rated this book.
func (b *BookReport) VoterCount() int {
	return len(b.Ratings)
}

// RecomputeClubAvg recalculates the club average as the mean of the present
// member ratings, restricted to the given roster names. Called after manual
// ratings are merged in. With no ratings present the average becomes nil.
func (b *BookReport) RecomputeClubAvg(members []string) {
	sum := 0.0
	n := 0
	for _, m := range members {
		if v, ok := b.Ratings[m]; ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		b.ClubAvg = nil
		return
	}
	avg := sum / float64(n)
	b.ClubAvg = &avg
}

// RatingSpread returns the population standard deviation of the member
// ratings. Books with fewer than two ratings have zero spread.
func (b *BookReport) RatingSpread() float64 {
	if len(b.Ratings) < 2 {
		return 0
	}
	mean := 0.0
	for _, v := range b.Ratings {
		mean += v
	}
	mean /= float64(len(b.Ratings))

	variance := 0.0
	for _, v := range b.Ratings {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(b.Ratings))
	return math.Sqrt(variance)
}

// PipelineRun records one execution of the processing pipeline.
type PipelineRun struct {
	ID          string    `json:"id"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	SourceRows  int       `json:"source_rows"`
	Processed   int       `json:"processed"`
	Unmatched   int       `json:"unmatched"`
	MemberCount int       `json:"member_count"`
}
