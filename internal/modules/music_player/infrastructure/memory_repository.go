package infrastructure

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

// MemoryRepository is an in-memory implementation of GuildQueueRepository.
type MemoryRepository struct {
	mu     sync.RWMutex
	queues map[snowflake.ID]*domain.GuildQueue
}

// NewMemoryRepository creates a new MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		queues: make(map[snowflake.ID]*domain.GuildQueue),
	}
}

// Get returns the GuildQueue for the given guild, or nil if not exists.
func (r *MemoryRepository) Get(guildID snowflake.ID) *domain.GuildQueue {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.queues[guildID]
}

// GetOrCreate returns the GuildQueue for the given guild, creating it on first use.
func (r *MemoryRepository) GetOrCreate(guildID snowflake.ID) *domain.GuildQueue {
	if q := r.Get(guildID); q != nil {
		return q
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another caller may have created it between the locks.
	if q, ok := r.queues[guildID]; ok {
		return q
	}
	q := domain.NewGuildQueue(guildID)
	r.queues[guildID] = q
	return q
}

// Count returns the number of guild queues (for testing/monitoring).
func (r *MemoryRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.queues)
}

// Ensure MemoryRepository implements GuildQueueRepository.
var _ domain.GuildQueueRepository = (*MemoryRepository)(nil)
