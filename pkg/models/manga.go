package models

import "time"

// Read status values accepted for a catalog entry.
const (
	StatusPlanToRead = "Plan to Read"
	StatusReading    = "Reading"
	StatusCompleted  = "Completed"
)

// MangaEntry is one manga in a user's personal catalog.
//
// Every entry is owned by exactly one user; the owner is set at creation
// from the authenticated caller and never changes afterwards.
type MangaEntry struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author,omitempty"`
	Chapters        int       `json:"chapters"`
	Type            string    `json:"type"`
	Genre           []string  `json:"genre"`
	Rating          *int      `json:"rating,omitempty"`
	ReadStatus      string    `json:"readStatus"`
	ReadingPlatform string    `json:"readingPlatform,omitempty"`
	ReleaseYear     *int      `json:"releaseYear,omitempty"`
	PosterURL       string    `json:"posterUrl,omitempty"`
	IsFavourite     bool      `json:"isFavourite"`
	UserID          string    `json:"userId"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func ValidReadStatus(s string) bool {
	switch s {
	case StatusPlanToRead, StatusReading, StatusCompleted:
		return true
	default:
		return false
	}
}
