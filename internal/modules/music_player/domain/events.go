package domain

import "fmt"

// EventKind identifies one of the inputs that drive a playback session.
type EventKind int

const (
	// EventPlayerIdle means the player drained its stream.
	EventPlayerIdle EventKind = iota
	// EventPlayerError means the player failed while streaming.
	EventPlayerError
	// EventSubprocessExit means an acquisition subprocess exited.
	EventSubprocessExit
	// EventSubprocessCriticalStderr means a subprocess reported a critical error line.
	EventSubprocessCriticalStderr
)

// String returns the string representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventPlayerIdle:
		return "player_idle"
	case EventPlayerError:
		return "player_error"
	case EventSubprocessExit:
		return "subprocess_exit"
	case EventSubprocessCriticalStderr:
		return "subprocess_critical_stderr"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// PlaybackEvent is reported by the audio player or a live stream.
type PlaybackEvent struct {
	Kind EventKind
	Err  error  // set for EventPlayerError and failed EventSubprocessExit
	Line string // set for EventSubprocessCriticalStderr
}

// ShouldAdvanceQueue returns true if this event ends the current track.
func (e PlaybackEvent) ShouldAdvanceQueue() bool {
	return e.Kind == EventPlayerIdle || e.Kind == EventPlayerError
}

// PlayerIdle returns an EventPlayerIdle event.
func PlayerIdle() PlaybackEvent {
	return PlaybackEvent{Kind: EventPlayerIdle}
}

// PlayerError returns an EventPlayerError event.
func PlayerError(err error) PlaybackEvent {
	return PlaybackEvent{Kind: EventPlayerError, Err: err}
}

// SubprocessExit returns an EventSubprocessExit event.
func SubprocessExit(err error) PlaybackEvent {
	return PlaybackEvent{Kind: EventSubprocessExit, Err: err}
}

// SubprocessCriticalStderr returns an EventSubprocessCriticalStderr event.
func SubprocessCriticalStderr(line string) PlaybackEvent {
	return PlaybackEvent{Kind: EventSubprocessCriticalStderr, Line: line}
}
