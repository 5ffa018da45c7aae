package infrastructure

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
)

// Ensure the Discord voice types implement their ports.
var (
	_ ports.VoiceConnector  = (*DiscordVoiceConnector)(nil)
	_ ports.VoiceConnection = (*DiscordVoiceConnection)(nil)
)

// DiscordVoiceConnector joins voice channels through a discordgo session.
type DiscordVoiceConnector struct {
	session *discordgo.Session
}

// NewDiscordVoiceConnector creates a new DiscordVoiceConnector.
func NewDiscordVoiceConnector(session *discordgo.Session) *DiscordVoiceConnector {
	return &DiscordVoiceConnector{session: session}
}

type joinResult struct {
	vc  *discordgo.VoiceConnection
	err error
}

// Connect joins the voice channel, giving up when ctx is done.
// A join that completes after ctx expired is disconnected in the background.
func (c *DiscordVoiceConnector) Connect(
	ctx context.Context,
	guildID, channelID snowflake.ID,
) (ports.VoiceConnection, error) {
	results := make(chan joinResult, 1)
	go func() {
		vc, err := c.session.ChannelVoiceJoin(guildID.String(), channelID.String(), false, true)
		results <- joinResult{vc: vc, err: err}
	}()

	select {
	case res := <-results:
		if res.err != nil {
			if res.vc != nil {
				_ = res.vc.Disconnect()
			}
			return nil, fmt.Errorf("failed to join voice channel: %w", res.err)
		}
		return &DiscordVoiceConnection{vc: res.vc, channelID: channelID}, nil

	case <-ctx.Done():
		go func() {
			res := <-results
			if res.vc == nil {
				return
			}
			if err := res.vc.Disconnect(); err != nil {
				slog.Warn("failed to disconnect late voice connection",
					"guild", guildID,
					"channel", channelID,
					"error", err,
				)
			}
		}()
		return nil, fmt.Errorf("failed to join voice channel: %w", ctx.Err())
	}
}

// DiscordVoiceConnection wraps an open discordgo voice connection.
type DiscordVoiceConnection struct {
	vc        *discordgo.VoiceConnection
	channelID snowflake.ID
}

// ChannelID returns the connected voice channel. It follows moves reported by
// the gateway.
func (c *DiscordVoiceConnection) ChannelID() snowflake.ID {
	c.vc.RLock()
	current := c.vc.ChannelID
	c.vc.RUnlock()

	if id, err := snowflake.Parse(current); err == nil {
		return id
	}
	return c.channelID
}

// NewPlayer returns an Opus player sending on this connection.
func (c *DiscordVoiceConnection) NewPlayer() ports.AudioPlayer {
	return NewOpusPlayer(c.vc.OpusSend, c.vc.Speaking)
}

// Disconnect leaves the voice channel.
func (c *DiscordVoiceConnection) Disconnect(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		done <- c.vc.Disconnect()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
