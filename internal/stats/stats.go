// Package stats computes the dashboard aggregates over the merged book
// reports: overview figures, rating timelines, decade breakdowns, member
// comparisons, and the books the club disagreed about.
package stats

import (
	"sort"
	"time"

	"github.com/bookclubapp/bookclub-server/internal/domain"
)

// Overview is the headline figure block of the dashboard.
type Overview struct {
	TotalBooks       int        `json:"total_books"`
	RatedBooks       int        `json:"rated_books"`
	MemberCount      int        `json:"member_count"`
	ClubAverage      *float64   `json:"average_club_rating,omitempty"`
	GoodreadsAverage *float64   `json:"average_goodreads_rating,omitempty"`
	MostActiveMember string     `json:"most_active_member,omitempty"`
	MostActiveCount  int        `json:"most_active_count,omitempty"`
	FirstMeeting     *time.Time `json:"first_meeting,omitempty"`
	LastMeeting      *time.Time `json:"last_meeting,omitempty"`
	ClubAgeDays      int        `json:"club_age_days"`
}

// ComputeOverview summarizes the reports. The most active member is the one
// with the most rated books; ties break alphabetically so the figure is
// stable between runs.
func ComputeOverview(reports []domain.BookReport, roster *domain.Roster) Overview {
	o := Overview{
		TotalBooks:  len(reports),
		MemberCount: len(roster.Members),
	}

	clubSum, clubN := 0.0, 0
	grSum, grN := 0.0, 0
	counts := make(map[string]int)

	for i := range reports {
		r := &reports[i]
		if r.ClubAvg != nil {
			o.RatedBooks++
			clubSum += *r.ClubAvg
			clubN++
		}
		if r.GoodreadsAvg != nil {
			grSum += *r.GoodreadsAvg
			grN++
		}
		for member := range r.Ratings {
			counts[member]++
		}

		date := r.Date
		if o.FirstMeeting == nil || date.Before(*o.FirstMeeting) {
			d := date
			o.FirstMeeting = &d
		}
		if o.LastMeeting == nil || date.After(*o.LastMeeting) {
			d := date
			o.LastMeeting = &d
		}
	}

	if clubN > 0 {
		avg := clubSum / float64(clubN)
		o.ClubAverage = &avg
	}
	if grN > 0 {
		avg := grSum / float64(grN)
		o.GoodreadsAverage = &avg
	}
	if o.FirstMeeting != nil && o.LastMeeting != nil {
		o.ClubAgeDays = int(o.LastMeeting.Sub(*o.FirstMeeting).Hours() / 24)
	}

	for _, name := range roster.Names() {
		n := counts[name]
		if n == 0 {
			continue
		}
		if n > o.MostActiveCount || (n == o.MostActiveCount && name < o.MostActiveMember) {
			o.MostActiveMember = name
			o.MostActiveCount = n
		}
	}

	return o
}

// TimelinePoint is one meeting on the ratings-over-time chart.
type TimelinePoint struct {
	Date         time.Time `json:"date"`
	Title        string    `json:"title"`
	ClubAvg      *float64  `json:"average_club_rating,omitempty"`
	GoodreadsAvg *float64  `json:"average_goodreads_rating,omitempty"`
}

// Timeline returns one point per meeting in meeting order. Reports arrive
// date-sorted from the pipeline, so no re-sort happens here.
func Timeline(reports []domain.BookReport) []TimelinePoint {
	points := make([]TimelinePoint, 0, len(reports))
	for i := range reports {
		r := &reports[i]
		points = append(points, TimelinePoint{
			Date:         r.Date,
			Title:        r.Title,
			ClubAvg:      r.ClubAvg,
			GoodreadsAvg: r.GoodreadsAvg,
		})
	}
	return points
}

// DecadeBucket groups books by original publication decade.
type DecadeBucket struct {
	Decade  int      `json:"decade"`
	Count   int      `json:"count"`
	ClubAvg *float64 `json:"average_club_rating,omitempty"`
}

// Decades buckets the reports by publication decade, oldest first. Books
// without a publication year are left out rather than bucketed at zero.
func Decades(reports []domain.BookReport) []DecadeBucket {
	type acc struct {
		count int
		sum   float64
		rated int
	}
	buckets := make(map[int]*acc)

	for i := range reports {
		r := &reports[i]
		if r.PubYear == nil {
			continue
		}
		decade := (*r.PubYear / 10) * 10
		b, ok := buckets[decade]
		if !ok {
			b = &acc{}
			buckets[decade] = b
		}
		b.count++
		if r.ClubAvg != nil {
			b.sum += *r.ClubAvg
			b.rated++
		}
	}

	decades := make([]int, 0, len(buckets))
	for d := range buckets {
		decades = append(decades, d)
	}
	sort.Ints(decades)

	out := make([]DecadeBucket, 0, len(decades))
	for _, d := range decades {
		b := buckets[d]
		bucket := DecadeBucket{Decade: d, Count: b.count}
		if b.rated > 0 {
			avg := b.sum / float64(b.rated)
			bucket.ClubAvg = &avg
		}
		out = append(out, bucket)
	}
	return out
}
