// Package catalog manages the media catalog: collections of films and series,
// their sections, seasons and videos, and the stored media behind them.
package catalog

import (
	"errors"
	"time"
)

// Collection types.
const (
	TypeFilm   = "film"
	TypeSeries = "series"
)

// ErrNotFound is returned when a catalog record does not exist.
var ErrNotFound = errors.New("catalog record not found")

// Collection groups catalog content by type. There is at most one collection
// per type; it is created lazily on first use.
type Collection struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

// Section is a titled group of seasons inside a collection (e.g. one series).
type Section struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Year         string    `json:"year"`
	Tags         []string  `json:"tags"`
	CoverURL     string    `json:"coverUrl"`
	CollectionID string    `json:"collectionId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Season is one season of a section.
type Season struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Year      string    `json:"year"`
	SectionID string    `json:"sectionId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Video is one playable episode. FileLink is the canonical storage URL; it is
// persisted as-is and exchanged for a signed URL on every read.
type Video struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Duration   string    `json:"duration"`
	FileLink   string    `json:"-"`
	UploadedAt time.Time `json:"uploadedAt"`
	SectionID  string    `json:"sectionId"`
	SeasonID   *string   `json:"seasonId,omitempty"`
}

// VideoView is a Video enriched with its section/season titles and a signed
// playback URL, as returned to clients.
type VideoView struct {
	Video
	SectionTitle string    `json:"sectionTitle"`
	SeasonTitle  *string   `json:"seasonTitle,omitempty"`
	PlaybackURL  string    `json:"playbackUrl"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// Film is a standalone feature inside the film collection. VideoURL is the
// canonical storage URL of its media.
type Film struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Genre        string    `json:"genre"`
	Duration     string    `json:"duration"`
	VideoURL     string    `json:"-"`
	CoverURL     string    `json:"coverUrl,omitempty"`
	CollectionID string    `json:"collectionId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// FilmView is a Film with a signed playback URL, as returned to clients.
type FilmView struct {
	Film
	PlaybackURL string    `json:"playbackUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}
