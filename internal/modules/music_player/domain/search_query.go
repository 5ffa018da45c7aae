package domain

import (
	"strings"
)

// SearchQuery represents a query for resolving a track.
type SearchQuery struct {
	Query  string      // The search term or URL
	Source TrackSource // The platform to resolve against
	IsURL  bool        // Whether the query is a direct URL
}

// NewSearchQuery creates a SearchQuery from user input.
// A URL always resolves against the platform it points at; plain text uses the
// requested source, defaulting to a YouTube search.
func NewSearchQuery(input string, requested RequestedSource) *SearchQuery {
	input = strings.TrimSpace(input)

	if isURL(input) || strings.HasPrefix(input, "spotify:track:") {
		return &SearchQuery{
			Query:  input,
			Source: DetectSource(input),
			IsURL:  true,
		}
	}

	source := TrackSourceYouTube
	switch requested {
	case RequestedSourceSpotify:
		source = TrackSourceSpotify
	case RequestedSourceSoundCloud:
		source = TrackSourceSoundCloud
	}

	return &SearchQuery{
		Query:  input,
		Source: source,
		IsURL:  false,
	}
}

// CacheKey returns a key identifying this query for result caching.
func (q *SearchQuery) CacheKey() string {
	return string(q.Source) + "|" + q.Query
}

// IsValid returns true if the query is not empty.
func (q *SearchQuery) IsValid() bool {
	return q.Query != ""
}

// isURL checks if the input looks like a URL.
func isURL(input string) bool {
	return strings.HasPrefix(input, "http://") ||
		strings.HasPrefix(input, "https://") ||
		strings.HasPrefix(input, "www.")
}
