// Package search provides full-text search over the club's book reports
// using Bleve: fuzzy title and author matching, picker filters, and year
// and rating range queries.
package search

import (
	"github.com/bookclubapp/bookclub-server/internal/domain"
)

// Document is the indexed form of one book report.
type Document struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	PickedBy string `json:"picked_by"`
	Location string `json:"location,omitempty"`

	// Numeric fields for range queries and sorting
	Year         int     `json:"year,omitempty"`
	ClubAvg      float64 `json:"club_avg,omitempty"`
	GoodreadsAvg float64 `json:"goodreads_avg,omitempty"`
	MeetingDate  int64   `json:"meeting_date"` // Unix millis
	VoterCount   int     `json:"voter_count"`
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *Document) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":           d.ID,
		"title":        d.Title,
		"author":       d.Author,
		"picked_by":    d.PickedBy,
		"meeting_date": d.MeetingDate,
		"voter_count":  d.VoterCount,
	}
	if d.Location != "" {
		m["location"] = d.Location
	}
	if d.Year != 0 {
		m["year"] = d.Year
	}
	if d.ClubAvg != 0 {
		m["club_avg"] = d.ClubAvg
	}
	if d.GoodreadsAvg != 0 {
		m["goodreads_avg"] = d.GoodreadsAvg
	}
	return m
}

// FromReport builds the index document for a book report.
func FromReport(r *domain.BookReport) *Document {
	d := &Document{
		ID:          r.ID,
		Title:       r.Title,
		Author:      r.Author,
		PickedBy:    r.PickedBy,
		Location:    r.Location,
		MeetingDate: r.Date.UnixMilli(),
		VoterCount:  r.VoterCount(),
	}
	if r.PubYear != nil {
		d.Year = *r.PubYear
	}
	if r.ClubAvg != nil {
		d.ClubAvg = *r.ClubAvg
	}
	if r.GoodreadsAvg != nil {
		d.GoodreadsAvg = *r.GoodreadsAvg
	}
	return d
}
