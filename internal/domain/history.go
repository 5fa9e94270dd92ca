package domain

import "time"

// WatchRecord is one entry in a user's watch history
type WatchRecord struct {
	EntryID   string    `json:"movieId"`
	Title     string    `json:"movieTitle"`
	PosterURL string    `json:"movieImage,omitempty"`
	WatchedAt time.Time `json:"watchedAt"`
}

// NewWatchRecord builds a record for an entry watched at the given time
func NewWatchRecord(e Entry, at time.Time) WatchRecord {
	return WatchRecord{
		EntryID:   e.ID,
		Title:     e.Title,
		PosterURL: e.PosterURL,
		WatchedAt: at,
	}
}
