package domain

import "strings"

// TrackSource represents the origin platform of a track.
type TrackSource string

const (
	TrackSourceYouTube    TrackSource = "youtube"
	TrackSourceSpotify    TrackSource = "spotify"
	TrackSourceSoundCloud TrackSource = "soundcloud"
)

// RequestedSource is the source a user asked for with the play command.
type RequestedSource string

const (
	RequestedSourceAuto       RequestedSource = "auto"
	RequestedSourceYouTube    RequestedSource = "youtube"
	RequestedSourceSpotify    RequestedSource = "spotify"
	RequestedSourceSoundCloud RequestedSource = "soundcloud"
)

// ParseRequestedSource converts a command option to a RequestedSource.
// Empty and unknown names fall back to auto detection.
func ParseRequestedSource(name string) RequestedSource {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "youtube":
		return RequestedSourceYouTube
	case "spotify":
		return RequestedSourceSpotify
	case "soundcloud":
		return RequestedSourceSoundCloud
	default:
		return RequestedSourceAuto
	}
}

// DetectSource returns the platform a query points at.
// Plain search text is treated as a YouTube search.
func DetectSource(query string) TrackSource {
	q := strings.ToLower(query)
	switch {
	case strings.Contains(q, "open.spotify.com"), strings.HasPrefix(q, "spotify:track:"):
		return TrackSourceSpotify
	case strings.Contains(q, "soundcloud.com"):
		return TrackSourceSoundCloud
	default:
		return TrackSourceYouTube
	}
}

// IsYouTubeURL reports whether the query is a YouTube link.
func IsYouTubeURL(query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(q, "youtube.com") || strings.Contains(q, "youtu.be")
}

// ParseTrackSource converts a source name string to a TrackSource.
// Unknown names are treated as YouTube, where all audio is fetched from.
func ParseTrackSource(name string) TrackSource {
	switch strings.ToLower(name) {
	case "spotify":
		return TrackSourceSpotify
	case "soundcloud":
		return TrackSourceSoundCloud
	default:
		return TrackSourceYouTube
	}
}

// DisplayName returns the platform name shown to users.
func (s TrackSource) DisplayName() string {
	switch s {
	case TrackSourceSpotify:
		return "Spotify"
	case TrackSourceSoundCloud:
		return "SoundCloud"
	default:
		return "YouTube"
	}
}

// Color returns the platform's brand color for embeds.
func (s TrackSource) Color() int {
	switch s {
	case TrackSourceSpotify:
		return 0x1DB954
	case TrackSourceSoundCloud:
		return 0xFF5500
	default:
		return 0xFF0000
	}
}
