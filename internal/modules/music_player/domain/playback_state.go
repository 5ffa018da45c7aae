package domain

// PlaybackState is the queue-level view of playback.
type PlaybackState int

const (
	PlaybackIdle PlaybackState = iota
	PlaybackPlaying
	PlaybackPaused
)

// String returns the string representation of the playback state.
func (s PlaybackState) String() string {
	switch s {
	case PlaybackPlaying:
		return "playing"
	case PlaybackPaused:
		return "paused"
	default:
		return "idle"
	}
}

// SessionState is the state of a guild's playback session.
// The session moves Idle -> Connecting -> Acquiring -> Playing <-> Paused and
// falls back to Acquiring or Idle when a track ends.
type SessionState int

const (
	SessionIdle SessionState = iota
	SessionConnecting
	SessionAcquiring
	SessionPlaying
	SessionPaused
)

// String returns the string representation of the session state.
func (s SessionState) String() string {
	switch s {
	case SessionConnecting:
		return "connecting"
	case SessionAcquiring:
		return "acquiring"
	case SessionPlaying:
		return "playing"
	case SessionPaused:
		return "paused"
	default:
		return "idle"
	}
}

// IsActive returns true if the session owns a track.
func (s SessionState) IsActive() bool {
	return s != SessionIdle
}
