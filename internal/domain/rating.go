package domain

import "time"

// RatingRecord is one row of cleaned per-member rating data: one member's
// rating of one book, normalized from a raw Goodreads export. A nil Rating
// means the member shelved the book but never rated it (exports encode this
// as a 0).
type RatingRecord struct {
	Title        string     `json:"title"`
	Author       string     `json:"author"`
	Member       string     `json:"member"`
	Rating       *float64   `json:"rating,omitempty"`
	GoodreadsAvg *float64   `json:"average_goodreads_rating,omitempty"`
	PubYear      *int       `json:"original_publication_year,omitempty"`
	Pages        *int       `json:"number_of_pages,omitempty"`
	ReadDate     *time.Time `json:"read_date,omitempty"`
	SourceFile   string     `json:"source_file"`
}

// Rated reports whether the record carries an actual rating.
func (r *RatingRecord) Rated() bool {
	return r.Rating != nil
}
