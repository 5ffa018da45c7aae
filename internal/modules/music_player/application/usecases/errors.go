package usecases

import (
	"errors"

	"github.com/sglre6355/jukebot/internal/modules/music_player/application/playback"
)

// Domain errors for the music player module.
var (
	// ErrUserNotInVoice is returned when the user is not in a voice channel.
	ErrUserNotInVoice = errors.New("you must be in a voice channel")

	// ErrMissingPermissions is returned when the bot may not connect or speak in the user's channel.
	ErrMissingPermissions = errors.New("I need permission to connect and speak in your voice channel")

	// ErrNotPlaying is returned when no track is currently playing.
	ErrNotPlaying = playback.ErrNotPlaying

	// ErrNotPaused is returned when trying to resume while not paused.
	ErrNotPaused = playback.ErrNotPaused

	// ErrNoResults is returned when a search yields no results.
	ErrNoResults = errors.New("no results found")

	// ErrEmptyQuery is returned when the play query is blank.
	ErrEmptyQuery = errors.New("the query must not be empty")

	// ErrInvalidVolume is returned when a volume level is outside 0 to 100.
	ErrInvalidVolume = errors.New("volume must be between 0 and 100")

	// ErrShuttingDown is returned when a command arrives while the bot is shutting down.
	ErrShuttingDown = errors.New("the music player is shutting down")
)
