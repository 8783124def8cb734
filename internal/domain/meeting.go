package domain

import "time"

// Meeting is one row of the manually maintained club meeting log: what the
// club read, when it was discussed, who picked it, and where the club met.
// The log is the source of truth for "what the club actually read".
type Meeting struct {
	ID       string    `json:"id"`
	Seq      int       `json:"seq"`
	Date     time.Time `json:"date"`
	Title    string    `json:"title"`
	Author   string    `json:"author"`
	PickedBy string    `json:"picked_by"`
	Location string    `json:"location,omitempty"`
}
