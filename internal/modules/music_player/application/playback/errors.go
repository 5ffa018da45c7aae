package playback

import "errors"

var (
	// ErrNotPlaying is returned when a command needs an active playback.
	ErrNotPlaying = errors.New("nothing is playing")

	// ErrNotPaused is returned when resuming a playback that is not paused.
	ErrNotPaused = errors.New("nothing is paused")

	// ErrSessionClosed is returned when a command reaches a session that was shut down.
	ErrSessionClosed = errors.New("playback session is shut down")
)
