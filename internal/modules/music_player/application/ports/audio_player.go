package ports

import (
	"context"
	"io"

	"github.com/disgoorg/snowflake/v2"

	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

// AudioPlayer streams PCM audio into a voice connection.
type AudioPlayer interface {
	// Play starts streaming in the background at the given volume (0 to 1).
	// onEvent receives exactly one EventPlayerIdle or EventPlayerError once the
	// stream ends or the player is stopped. It is called once Stop is free to
	// return, so Stop never waits on it.
	Play(pcm io.Reader, volume float64, onEvent func(domain.PlaybackEvent)) error

	// Pause suspends sending audio until Resume is called.
	Pause()

	// Resume continues a paused playback.
	Resume()

	// Stop halts playback and waits for the streaming goroutine to exit.
	Stop()
}

// VoiceConnector establishes voice connections.
type VoiceConnector interface {
	// Connect joins the given voice channel. It fails if ctx expires first.
	Connect(ctx context.Context, guildID, channelID snowflake.ID) (VoiceConnection, error)
}

// VoiceConnection is an open voice connection to one guild.
type VoiceConnection interface {
	// ChannelID returns the connected voice channel.
	ChannelID() snowflake.ID

	// NewPlayer creates an audio player bound to this connection.
	NewPlayer() AudioPlayer

	// Disconnect leaves the voice channel and releases the connection.
	Disconnect(ctx context.Context) error
}
