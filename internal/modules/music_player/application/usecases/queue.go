package usecases

import (
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

// Queue listing limits.
const (
	DefaultListLimit = 10
	MaxListLimit     = 25
)

// QueueListInput contains the input for the QueueList use case.
type QueueListInput struct {
	GuildID snowflake.ID
	Limit   int // Upcoming tracks to include (optional, defaults to 10)
}

// QueueListOutput contains the result of the QueueList use case.
type QueueListOutput struct {
	CurrentTrack *domain.Track
	Tracks       []*domain.Track
	TotalPending int
	State        domain.PlaybackState
	Volume       float64
}

// IsEmpty reports whether there is nothing playing and nothing pending.
func (o *QueueListOutput) IsEmpty() bool {
	return o.CurrentTrack == nil && o.TotalPending == 0
}

// SetVolumeInput contains the input for the SetVolume use case.
type SetVolumeInput struct {
	GuildID snowflake.ID
	Level   int // percent, 0 to 100
}

// SetVolumeOutput contains the result of the SetVolume use case.
type SetVolumeOutput struct {
	Volume float64
}

// QueueService handles queue operations.
type QueueService struct {
	sessions SessionRegistry
}

// NewQueueService creates a new QueueService.
func NewQueueService(sessions SessionRegistry) *QueueService {
	return &QueueService{
		sessions: sessions,
	}
}

// List returns a snapshot of the current track and the upcoming ones.
func (s *QueueService) List(input QueueListInput) *QueueListOutput {
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	limit = min(limit, MaxListLimit)

	snapshot := s.sessions.Queue(input.GuildID).Snapshot(limit)

	return &QueueListOutput{
		CurrentTrack: snapshot.Current,
		Tracks:       snapshot.Pending,
		TotalPending: snapshot.TotalPending,
		State:        snapshot.State,
		Volume:       snapshot.Volume,
	}
}

// SetVolume sets the guild's volume. The playing track keeps its volume; the
// new level applies from the next track.
func (s *QueueService) SetVolume(input SetVolumeInput) (*SetVolumeOutput, error) {
	if input.Level < 0 || input.Level > 100 {
		return nil, ErrInvalidVolume
	}

	queue := s.sessions.Queue(input.GuildID)
	queue.SetVolume(float64(input.Level) / 100)

	return &SetVolumeOutput{
		Volume: queue.Volume(),
	}, nil
}
