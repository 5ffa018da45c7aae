package usecases

import (
	"context"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/playback"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

// Re-export domain types for presentation layer use.
// This allows presentation to depend only on usecases without importing domain directly.

// Track is an alias for domain.Track.
type Track = domain.Track

// SessionController is the part of a playback session the usecases drive.
type SessionController interface {
	Start(ctx context.Context, voiceChannelID, textChannelID snowflake.ID) (playback.StartResult, error)
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	Skip(ctx context.Context) (playback.SkipResult, error)
	Stop(ctx context.Context) error
	State() domain.SessionState
	VoiceStateChanged(channelID snowflake.ID, observedAt time.Time)
}

// SessionRegistry hands out the per-guild queues and sessions.
type SessionRegistry interface {
	Queue(guildID snowflake.ID) *domain.GuildQueue

	// Session returns the guild's session, creating it if needed.
	// It returns nil once the registry is shut down.
	Session(guildID snowflake.ID) SessionController

	// ExistingSession returns the guild's session or nil.
	ExistingSession(guildID snowflake.ID) SessionController
}

// registryAdapter exposes a playback.Registry as a SessionRegistry.
type registryAdapter struct {
	registry *playback.Registry
}

// NewSessionRegistry wraps a playback.Registry.
func NewSessionRegistry(registry *playback.Registry) SessionRegistry {
	return &registryAdapter{registry: registry}
}

func (a *registryAdapter) Queue(guildID snowflake.ID) *domain.GuildQueue {
	return a.registry.Queue(guildID)
}

func (a *registryAdapter) Session(guildID snowflake.ID) SessionController {
	if s := a.registry.Session(guildID); s != nil {
		return s
	}
	return nil
}

func (a *registryAdapter) ExistingSession(guildID snowflake.ID) SessionController {
	if s := a.registry.ExistingSession(guildID); s != nil {
		return s
	}
	return nil
}
