package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/playback"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

// PlayInput contains the input for the Play use case.
type PlayInput struct {
	GuildID       snowflake.ID
	UserID        snowflake.ID
	TextChannelID snowflake.ID // where session notifications are sent
	Query         string
	Source        string
}

// PlayOutput contains the result of the Play use case.
type PlayOutput struct {
	Track *domain.Track
	// Position is the 1-indexed place in the pending queue. Zero when the
	// track started playing right away.
	Position   int
	NowPlaying bool
}

// PauseInput contains the input for the Pause use case.
type PauseInput struct {
	GuildID snowflake.ID
}

// ResumeInput contains the input for the Resume use case.
type ResumeInput struct {
	GuildID snowflake.ID
}

// SkipInput contains the input for the Skip use case.
type SkipInput struct {
	GuildID snowflake.ID
}

// SkipOutput contains the result of the Skip use case.
type SkipOutput struct {
	SkippedTrack *domain.Track
	NextTrack    *domain.Track // nil if queue is empty
}

// StopInput contains the input for the Stop use case.
type StopInput struct {
	GuildID snowflake.ID
}

// BotVoiceStateChangeInput contains the input for HandleBotVoiceStateChange.
type BotVoiceStateChangeInput struct {
	GuildID    snowflake.ID
	BotID      snowflake.ID
	ChannelID  *snowflake.ID // from the event, nil when the bot left voice
	ObservedAt time.Time
}

// PlaybackService handles playback operations.
type PlaybackService struct {
	sessions    SessionRegistry
	voiceState  ports.VoiceStateProvider
	trackLoader *TrackLoaderService
}

// NewPlaybackService creates a new PlaybackService.
func NewPlaybackService(
	sessions SessionRegistry,
	voiceState ports.VoiceStateProvider,
	trackLoader *TrackLoaderService,
) *PlaybackService {
	return &PlaybackService{
		sessions:    sessions,
		voiceState:  voiceState,
		trackLoader: trackLoader,
	}
}

// Play resolves the query, enqueues the result and starts the session if it is idle.
func (p *PlaybackService) Play(ctx context.Context, input PlayInput) (*PlayOutput, error) {
	voiceChannelID, err := p.voiceState.GetUserVoiceChannel(input.GuildID, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("look up voice state: %w", err)
	}
	if voiceChannelID == nil {
		return nil, ErrUserNotInVoice
	}

	canSpeak, err := p.voiceState.CanSpeak(input.GuildID, *voiceChannelID)
	if err != nil {
		return nil, fmt.Errorf("check voice permissions: %w", err)
	}
	if !canSpeak {
		return nil, ErrMissingPermissions
	}

	loaded, err := p.trackLoader.LoadTrack(ctx, LoadTrackInput{
		Query:  input.Query,
		Source: input.Source,
	})
	if err != nil {
		return nil, err
	}

	session := p.sessions.Session(input.GuildID)
	if session == nil {
		return nil, ErrShuttingDown
	}

	track := loaded.Track.WithRequester(input.UserID)
	queue := p.sessions.Queue(input.GuildID)
	if _, err := queue.Enqueue(track); err != nil {
		return nil, fmt.Errorf("enqueue track: %w", err)
	}

	result, err := session.Start(ctx, *voiceChannelID, input.TextChannelID)
	if err != nil {
		return nil, mapSessionError(err)
	}

	// A concurrent /play may have started the session with this track, or
	// moved it up by starting with an earlier one.
	output := &PlayOutput{Track: track}
	if (result.Started && result.Track == track) || queue.Current() == track {
		output.NowPlaying = true
	} else {
		output.Position = queue.Position(track)
	}

	slog.Info("track enqueued",
		"guild", input.GuildID,
		"track", track.Title,
		"source", string(track.Source),
		"position", output.Position,
		"now_playing", output.NowPlaying,
	)

	return output, nil
}

// Pause pauses the current playback.
func (p *PlaybackService) Pause(ctx context.Context, input PauseInput) error {
	session := p.sessions.ExistingSession(input.GuildID)
	if session == nil {
		return ErrNotPlaying
	}
	return mapSessionError(session.Pause(ctx))
}

// Resume resumes the paused playback.
func (p *PlaybackService) Resume(ctx context.Context, input ResumeInput) error {
	session := p.sessions.ExistingSession(input.GuildID)
	if session == nil {
		return ErrNotPaused
	}
	return mapSessionError(session.Resume(ctx))
}

// Skip discards the current track and plays the next one from the queue.
func (p *PlaybackService) Skip(ctx context.Context, input SkipInput) (*SkipOutput, error) {
	session := p.sessions.ExistingSession(input.GuildID)
	if session == nil {
		return nil, ErrNotPlaying
	}

	result, err := session.Skip(ctx)
	if err != nil {
		return nil, mapSessionError(err)
	}

	return &SkipOutput{
		SkippedTrack: result.Skipped,
		NextTrack:    result.Next,
	}, nil
}

// Stop clears the queue and leaves the voice channel.
func (p *PlaybackService) Stop(ctx context.Context, input StopInput) error {
	session := p.sessions.ExistingSession(input.GuildID)
	if session == nil {
		queue := p.sessions.Queue(input.GuildID)
		if queue.Len() == 0 {
			return ErrNotPlaying
		}
		queue.Clear()
		return nil
	}
	return mapSessionError(session.Stop(ctx))
}

// HandleBotVoiceStateChange forwards an external change of the bot's voice
// state (moved or disconnected) to the guild's session. Events are handled out
// of order, so the bot's channel is read back from the voice state cache,
// which always holds the newest state.
func (p *PlaybackService) HandleBotVoiceStateChange(input BotVoiceStateChangeInput) {
	session := p.sessions.ExistingSession(input.GuildID)
	if session == nil {
		return
	}

	current := input.ChannelID
	if cached, err := p.voiceState.GetUserVoiceChannel(input.GuildID, input.BotID); err != nil {
		slog.Debug("failed to read bot voice state, using the event",
			"guild", input.GuildID,
			"error", err,
		)
	} else {
		current = cached
	}

	var channelID snowflake.ID
	if current != nil {
		channelID = *current
	}
	session.VoiceStateChanged(channelID, input.ObservedAt)
}

func mapSessionError(err error) error {
	if errors.Is(err, playback.ErrSessionClosed) {
		return ErrShuttingDown
	}
	return err
}
