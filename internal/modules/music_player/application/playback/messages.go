package playback

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

// message is everything the session goroutine consumes from its inbox.
type message interface {
	isMessage()
}

// playbackEvent carries a player or stream event tagged with its generation.
type playbackEvent struct {
	generation uint64
	event      domain.PlaybackEvent
}

// connectDone reports the end of an asynchronous voice connect.
type connectDone struct {
	generation uint64
	conn       ports.VoiceConnection
	err        error
}

// acquireDone reports the end of an asynchronous stream acquisition.
type acquireDone struct {
	generation uint64
	track      *domain.Track
	stream     ports.Stream
	err        error
}

// voiceStateChanged reports the bot's voice channel as seen by the gateway.
// A zero channelID means the bot is no longer in a voice channel.
type voiceStateChanged struct {
	channelID  snowflake.ID
	observedAt time.Time
}

// command runs fn on the session goroutine and sends its result to reply.
type command struct {
	fn    func() error
	reply chan error
}

func (playbackEvent) isMessage()     {}
func (connectDone) isMessage()       {}
func (acquireDone) isMessage()       {}
func (voiceStateChanged) isMessage() {}
func (command) isMessage()           {}
