package domain

import (
	"fmt"
	"strings"
	"time"
)

// Entry is a single streamable title in the catalog
type Entry struct {
	ID          string    // Server-assigned identifier, stable across refreshes
	Title       string    // Display title
	Genre       string    // Free-form genre label
	Rating      float64   // Audience rating (0-10)
	Year        int       // Release year
	Description string    // Plot synopsis
	PosterURL   string    // Poster image URL (optional)
	PlaybackURL string    // Direct video URL (optional)
	Featured    bool      // Shown in the hero row
	CreatedAt   time.Time // Server-assigned creation time
}

// IsPlayable returns true if the entry carries a playback URL
func (e Entry) IsPlayable() bool {
	return strings.TrimSpace(e.PlaybackURL) != ""
}

// FormattedRating returns the rating with one decimal place (e.g. "7.5")
func (e Entry) FormattedRating() string {
	return fmt.Sprintf("%.1f", e.Rating)
}

// Subtitle returns secondary info for list rows (e.g. "Drama • 2020")
func (e Entry) Subtitle() string {
	parts := make([]string, 0, 2)
	if e.Genre != "" {
		parts = append(parts, e.Genre)
	}
	if e.Year > 0 {
		parts = append(parts, fmt.Sprintf("%d", e.Year))
	}
	return strings.Join(parts, " • ")
}

// EntryPatch carries a partial update. Nil fields are left untouched.
type EntryPatch struct {
	Title       *string
	Genre       *string
	Rating      *float64
	Year        *int
	Description *string
	PosterURL   *string
	PlaybackURL *string
	Featured    *bool
}

// IsEmpty returns true if the patch changes nothing
func (p EntryPatch) IsEmpty() bool {
	return p.Title == nil && p.Genre == nil && p.Rating == nil && p.Year == nil &&
		p.Description == nil && p.PosterURL == nil && p.PlaybackURL == nil && p.Featured == nil
}

// Apply returns a copy of e with the patch's set fields applied
func (p EntryPatch) Apply(e Entry) Entry {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Genre != nil {
		e.Genre = *p.Genre
	}
	if p.Rating != nil {
		e.Rating = *p.Rating
	}
	if p.Year != nil {
		e.Year = *p.Year
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.PosterURL != nil {
		e.PosterURL = *p.PosterURL
	}
	if p.PlaybackURL != nil {
		e.PlaybackURL = *p.PlaybackURL
	}
	if p.Featured != nil {
		e.Featured = *p.Featured
	}
	return e
}
