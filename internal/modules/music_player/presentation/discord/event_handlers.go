package discord

import (
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/usecases"
)

// EventHandlers handles Discord gateway events for the music player.
type EventHandlers struct {
	botID    snowflake.ID
	playback *usecases.PlaybackService
}

// NewEventHandlers creates a new EventHandlers.
func NewEventHandlers(
	botID snowflake.ID,
	playback *usecases.PlaybackService,
) *EventHandlers {
	return &EventHandlers{
		botID:    botID,
		playback: playback,
	}
}

// HandleVoiceStateUpdate handles VoiceStateUpdate events for the bot.
func (h *EventHandlers) HandleVoiceStateUpdate(
	_ *discordgo.Session,
	event *discordgo.VoiceStateUpdate,
) {
	observedAt := time.Now()

	// Only handle updates for the bot itself
	if event.VoiceState == nil || event.UserID != h.botID.String() {
		return
	}

	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice state update", "error", err)
		return
	}

	// An empty channel ID means disconnected
	var channelID *snowflake.ID
	if event.ChannelID != "" {
		id, err := snowflake.Parse(event.ChannelID)
		if err != nil {
			slog.Error("failed to parse channel ID in voice state update", "error", err)
			return
		}
		channelID = &id
	}

	h.playback.HandleBotVoiceStateChange(usecases.BotVoiceStateChangeInput{
		GuildID:    guildID,
		BotID:      h.botID,
		ChannelID:  channelID,
		ObservedAt: observedAt,
	})
}
