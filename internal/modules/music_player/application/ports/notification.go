package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
)

// NotificationSender defines the interface for sending notifications to Discord channels.
type NotificationSender interface {
	// SendNowPlaying sends a "Now Playing" embed to the channel.
	SendNowPlaying(channelID snowflake.ID, info *NowPlayingInfo) error

	// SendError sends an error message embed to the channel.
	SendError(channelID snowflake.ID, message string) error

	// SendQueueFinished tells the channel that playback ended because the queue ran out.
	SendQueueFinished(channelID snowflake.ID) error
}

// Requester is how the member who queued a track is shown in notifications.
type Requester struct {
	Name      string
	AvatarURL string
}

// RequesterLookup resolves the guild member behind a track's RequesterID.
type RequesterLookup interface {
	LookupRequester(ctx context.Context, guildID, userID snowflake.ID) (Requester, error)
}
