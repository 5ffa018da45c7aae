package domain

import (
	"github.com/disgoorg/snowflake/v2"
)

// GuildQueueRepository stores one GuildQueue per guild.
type GuildQueueRepository interface {
	// Get returns the GuildQueue for the given guild, or nil if not exists.
	Get(guildID snowflake.ID) *GuildQueue

	// GetOrCreate returns the GuildQueue for the given guild, creating it on first use.
	GetOrCreate(guildID snowflake.ID) *GuildQueue
}
