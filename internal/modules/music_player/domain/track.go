package domain

import (
	"strconv"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// Track is a resolved, playable reference to a song.
// A Track is never modified after the resolver returns it.
type Track struct {
	Title        string
	URL          string        // canonical locator handed to the stream strategies
	Duration     time.Duration // zero when unknown
	ThumbnailURL string
	Source       TrackSource
	// SearchQuery is the text used to re-resolve a non-YouTube track against
	// YouTube for the actual audio bytes.
	SearchQuery string
	RequesterID snowflake.ID
}

// NewTrack creates a new Track with the given parameters.
func NewTrack(
	title string,
	url string,
	duration time.Duration,
	thumbnailURL string,
	source TrackSource,
	searchQuery string,
) *Track {
	return &Track{
		Title:        title,
		URL:          url,
		Duration:     duration,
		ThumbnailURL: thumbnailURL,
		Source:       source,
		SearchQuery:  searchQuery,
	}
}

// WithRequester returns a copy of the track attributed to the given user.
func (t *Track) WithRequester(id snowflake.ID) *Track {
	c := *t
	c.RequesterID = id
	return &c
}

// IsValid returns true if the track has the minimum required fields.
func (t *Track) IsValid() bool {
	return t != nil && t.Title != "" && t.URL != ""
}

// FormattedDuration returns the duration as a human-readable string (mm:ss or hh:mm:ss).
func (t *Track) FormattedDuration() string {
	if t.Duration <= 0 {
		return "Unknown"
	}

	totalSeconds := int(t.Duration.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return formatTime(hours, minutes, seconds)
	}
	return formatTimeShort(minutes, seconds)
}

func formatTime(hours, minutes, seconds int) string {
	return pad(hours) + ":" + pad(minutes) + ":" + pad(seconds)
}

func formatTimeShort(minutes, seconds int) string {
	return pad(minutes) + ":" + pad(seconds)
}

func pad(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
