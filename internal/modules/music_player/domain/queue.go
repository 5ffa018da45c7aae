package domain

import (
	"errors"
	"sync"

	"github.com/disgoorg/snowflake/v2"
)

// DefaultVolume is the volume a new guild queue starts with.
const DefaultVolume = 0.5

var (
	// ErrInvalidTrack is returned when enqueueing a track without a title or URL.
	ErrInvalidTrack = errors.New("invalid track")

	// ErrInvalidTransition is returned when a pause or resume is not legal in the current state.
	ErrInvalidTransition = errors.New("invalid playback state transition")
)

// GuildQueue holds the pending tracks and playback state of one guild.
// Playing and Paused always have a current track; Idle never does.
type GuildQueue struct {
	mu      sync.RWMutex
	guildID snowflake.ID
	pending []*Track
	current *Track
	state   PlaybackState
	volume  float64
}

// QueueSnapshot is a read-only view of a GuildQueue.
type QueueSnapshot struct {
	Current      *Track
	Pending      []*Track // at most the requested number of upcoming tracks
	TotalPending int
	State        PlaybackState
	Volume       float64
}

// NewGuildQueue creates an empty, idle queue for the given guild.
func NewGuildQueue(guildID snowflake.ID) *GuildQueue {
	return &GuildQueue{
		guildID: guildID,
		pending: make([]*Track, 0),
		state:   PlaybackIdle,
		volume:  DefaultVolume,
	}
}

// GuildID returns the guild this queue belongs to.
func (q *GuildQueue) GuildID() snowflake.ID {
	return q.guildID
}

// Enqueue appends a track and returns the number of pending tracks.
func (q *GuildQueue) Enqueue(track *Track) (int, error) {
	if !track.IsValid() {
		return 0, ErrInvalidTrack
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.pending = append(q.pending, track)
	return len(q.pending), nil
}

// DequeueNext removes the head of the pending list and makes it the current track.
// On an empty queue it unsets the current track, moves to Idle and returns false.
func (q *GuildQueue) DequeueNext() (*Track, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		q.current = nil
		q.state = PlaybackIdle
		return nil, false
	}

	next := q.pending[0]
	q.pending[0] = nil
	q.pending = q.pending[1:]

	q.current = next
	q.state = PlaybackPlaying
	return next, true
}

// Clear empties the pending list, unsets the current track and moves to Idle.
func (q *GuildQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.pending = make([]*Track, 0)
	q.current = nil
	q.state = PlaybackIdle
}

// Snapshot returns the current track and the first n pending tracks.
// A non-positive n includes every pending track.
func (q *GuildQueue) Snapshot(n int) QueueSnapshot {
	q.mu.RLock()
	defer q.mu.RUnlock()

	count := len(q.pending)
	if n > 0 && n < count {
		count = n
	}

	pending := make([]*Track, count)
	copy(pending, q.pending[:count])

	return QueueSnapshot{
		Current:      q.current,
		Pending:      pending,
		TotalPending: len(q.pending),
		State:        q.state,
		Volume:       q.volume,
	}
}

// Position returns the 1-indexed place of track among the pending tracks, or 0
// when it is not pending.
func (q *GuildQueue) Position(track *Track) int {
	q.mu.RLock()
	defer q.mu.RUnlock()

	for i, t := range q.pending {
		if t == track {
			return i + 1
		}
	}
	return 0
}

// Current returns the track being played, or nil.
func (q *GuildQueue) Current() *Track {
	q.mu.RLock()
	defer q.mu.RUnlock()

	return q.current
}

// Len returns the number of pending tracks.
func (q *GuildQueue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()

	return len(q.pending)
}

// State returns the playback state.
func (q *GuildQueue) State() PlaybackState {
	q.mu.RLock()
	defer q.mu.RUnlock()

	return q.state
}

// SetPaused moves a playing queue to Paused.
func (q *GuildQueue) SetPaused() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.state != PlaybackPlaying {
		return ErrInvalidTransition
	}
	q.state = PlaybackPaused
	return nil
}

// SetResumed moves a paused queue back to Playing.
func (q *GuildQueue) SetResumed() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.state != PlaybackPaused {
		return ErrInvalidTransition
	}
	q.state = PlaybackPlaying
	return nil
}

// Volume returns the configured volume in [0, 1].
func (q *GuildQueue) Volume() float64 {
	q.mu.RLock()
	defer q.mu.RUnlock()

	return q.volume
}

// SetVolume sets the volume, clamped to [0, 1].
func (q *GuildQueue) SetVolume(v float64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.volume = min(max(v, 0), 1)
}
