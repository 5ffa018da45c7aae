package ports

import (
	"github.com/disgoorg/snowflake/v2"
)

// NowPlayingInfo contains information for the "Now Playing" notification.
type NowPlayingInfo struct {
	Title              string
	URL                string
	Duration           string
	ThumbnailURL       string
	SourceName         string // e.g., "youtube", "spotify", "soundcloud"
	Volume             float64
	RequesterID        snowflake.ID
	RequesterName      string
	RequesterAvatarURL string
}
