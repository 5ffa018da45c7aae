package usecases

import (
	"context"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/playback"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

func mockTrack(id string) *domain.Track {
	return domain.NewTrack(
		"Track "+id,
		"https://www.youtube.com/watch?v="+id,
		3*time.Minute,
		"",
		domain.TrackSourceYouTube,
		"",
	)
}

// mockSession mimics the playback session against a real queue.
type mockSession struct {
	queue *domain.GuildQueue
	state domain.SessionState

	startErr error
	pauseErr error
	stopErr  error

	starts []snowflake.ID

	voiceChanges []snowflake.ID
}

func (m *mockSession) Start(
	_ context.Context,
	voiceChannelID, _ snowflake.ID,
) (playback.StartResult, error) {
	if m.startErr != nil {
		return playback.StartResult{}, m.startErr
	}
	m.starts = append(m.starts, voiceChannelID)
	if m.state != domain.SessionIdle {
		return playback.StartResult{}, nil
	}
	next, ok := m.queue.DequeueNext()
	if !ok {
		return playback.StartResult{}, nil
	}
	m.state = domain.SessionPlaying
	return playback.StartResult{Started: true, Track: next}, nil
}

func (m *mockSession) Pause(context.Context) error {
	if m.pauseErr != nil {
		return m.pauseErr
	}
	if m.state != domain.SessionPlaying {
		return playback.ErrNotPlaying
	}
	m.state = domain.SessionPaused
	return nil
}

func (m *mockSession) Resume(context.Context) error {
	if m.state != domain.SessionPaused {
		return playback.ErrNotPaused
	}
	m.state = domain.SessionPlaying
	return nil
}

func (m *mockSession) Skip(context.Context) (playback.SkipResult, error) {
	if m.state == domain.SessionIdle {
		return playback.SkipResult{}, playback.ErrNotPlaying
	}
	result := playback.SkipResult{Skipped: m.queue.Current()}
	next, ok := m.queue.DequeueNext()
	if !ok {
		m.queue.Clear()
		m.state = domain.SessionIdle
		return result, nil
	}
	result.Next = next
	return result, nil
}

func (m *mockSession) Stop(context.Context) error {
	if m.stopErr != nil {
		return m.stopErr
	}
	if m.state == domain.SessionIdle && m.queue.Len() == 0 {
		return playback.ErrNotPlaying
	}
	m.queue.Clear()
	m.state = domain.SessionIdle
	return nil
}

func (m *mockSession) VoiceStateChanged(channelID snowflake.ID, _ time.Time) {
	m.voiceChanges = append(m.voiceChanges, channelID)
}

func (m *mockSession) State() domain.SessionState {
	return m.state
}

type mockRegistry struct {
	queues   map[snowflake.ID]*domain.GuildQueue
	sessions map[snowflake.ID]*mockSession
	closed   bool
}

func newMockRegistry() *mockRegistry {
	return &mockRegistry{
		queues:   make(map[snowflake.ID]*domain.GuildQueue),
		sessions: make(map[snowflake.ID]*mockSession),
	}
}

func (m *mockRegistry) Queue(guildID snowflake.ID) *domain.GuildQueue {
	q, ok := m.queues[guildID]
	if !ok {
		q = domain.NewGuildQueue(guildID)
		m.queues[guildID] = q
	}
	return q
}

func (m *mockRegistry) Session(guildID snowflake.ID) SessionController {
	if m.closed {
		return nil
	}
	return m.session(guildID)
}

func (m *mockRegistry) ExistingSession(guildID snowflake.ID) SessionController {
	if s, ok := m.sessions[guildID]; ok {
		return s
	}
	return nil
}

// session returns the concrete mock, creating it if needed.
func (m *mockRegistry) session(guildID snowflake.ID) *mockSession {
	s, ok := m.sessions[guildID]
	if !ok {
		s = &mockSession{queue: m.Queue(guildID)}
		m.sessions[guildID] = s
	}
	return s
}

type mockVoiceStateProvider struct {
	channels map[snowflake.ID]snowflake.ID // userID -> channelID
	denied   bool
	err      error
}

func (m *mockVoiceStateProvider) GetUserVoiceChannel(
	_, userID snowflake.ID,
) (*snowflake.ID, error) {
	if m.err != nil {
		return nil, m.err
	}
	channelID, ok := m.channels[userID]
	if !ok {
		return nil, nil
	}
	return &channelID, nil
}

func (m *mockVoiceStateProvider) CanSpeak(_, _ snowflake.ID) (bool, error) {
	return !m.denied, nil
}

type mockTrackResolver struct {
	mu      sync.Mutex
	track   *domain.Track
	err     error
	queries []*domain.SearchQuery
}

func (m *mockTrackResolver) Name() string {
	return "mock"
}

func (m *mockTrackResolver) Resolve(
	_ context.Context,
	query *domain.SearchQuery,
) (*domain.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.queries = append(m.queries, query)
	if m.err != nil {
		return nil, m.err
	}
	return m.track, nil
}

func (m *mockTrackResolver) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queries)
}

func newTestTrackLoader(resolver ports.TrackResolver) *TrackLoaderService {
	return NewTrackLoaderService(
		map[domain.TrackSource]ports.TrackResolver{
			domain.TrackSourceYouTube: resolver,
		},
		TrackLoaderConfig{SearchRate: 100},
	)
}
