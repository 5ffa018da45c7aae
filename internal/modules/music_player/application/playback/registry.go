package playback

import (
	"log/slog"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
	"golang.org/x/sync/errgroup"
)

// Registry owns the per-guild queues and sessions for the process lifetime.
type Registry struct {
	repo domain.GuildQueueRepository
	deps Dependencies

	mu       sync.Mutex
	sessions map[snowflake.ID]*Session
	closed   bool
}

// NewRegistry creates a new Registry.
func NewRegistry(repo domain.GuildQueueRepository, deps Dependencies) *Registry {
	return &Registry{
		repo:     repo,
		deps:     deps,
		sessions: make(map[snowflake.ID]*Session),
	}
}

// Queue returns the guild's queue, creating it on first use.
func (r *Registry) Queue(guildID snowflake.ID) *domain.GuildQueue {
	return r.repo.GetOrCreate(guildID)
}

// Session returns the guild's session, creating and starting it on first use.
// It returns nil after Shutdown.
func (r *Registry) Session(guildID snowflake.ID) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}

	if s, ok := r.sessions[guildID]; ok {
		return s
	}
	s := NewSession(guildID, r.Queue(guildID), r.deps)
	r.sessions[guildID] = s
	return s
}

// ExistingSession returns the guild's session without creating one.
func (r *Registry) ExistingSession(guildID snowflake.ID) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.sessions[guildID]
}

// Shutdown stops every session concurrently and waits for them.
func (r *Registry) Shutdown() error {
	r.mu.Lock()
	r.closed = true
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	active := 0
	for _, s := range sessions {
		if s.State().IsActive() {
			active++
		}
	}
	slog.Info("stopping playback sessions", "sessions", len(sessions), "active", active)

	var g errgroup.Group
	for _, s := range sessions {
		g.Go(func() error {
			s.Shutdown()
			return nil
		})
	}
	return g.Wait()
}
