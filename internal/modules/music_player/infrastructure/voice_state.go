package infrastructure

import (
	"errors"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
)

// voicePermissions are required to play audio in a channel.
const voicePermissions = discordgo.PermissionVoiceConnect | discordgo.PermissionVoiceSpeak

// VoiceStateProvider provides Discord voice state information.
type VoiceStateProvider struct {
	session *discordgo.Session
}

// NewVoiceStateProvider creates a new VoiceStateProvider.
func NewVoiceStateProvider(session *discordgo.Session) *VoiceStateProvider {
	return &VoiceStateProvider{
		session: session,
	}
}

// GetUserVoiceChannel returns the voice channel ID that the user is currently in.
// Returns nil if the user is not in a voice channel.
func (v *VoiceStateProvider) GetUserVoiceChannel(
	guildID, userID snowflake.ID,
) (*snowflake.ID, error) {
	vs, err := v.session.State.VoiceState(guildID.String(), userID.String())
	if err != nil {
		if errors.Is(err, discordgo.ErrStateNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if vs.ChannelID == "" {
		return nil, nil
	}

	channelID, err := snowflake.Parse(vs.ChannelID)
	if err != nil {
		return nil, err
	}
	return &channelID, nil
}

// CanSpeak reports whether the bot has connect and speak permissions in the channel.
func (v *VoiceStateProvider) CanSpeak(_, channelID snowflake.ID) (bool, error) {
	if v.session.State.User == nil {
		return false, discordgo.ErrStateNotFound
	}

	perms, err := v.session.State.UserChannelPermissions(
		v.session.State.User.ID,
		channelID.String(),
	)
	if err != nil {
		return false, err
	}
	return perms&voicePermissions == voicePermissions, nil
}

// Ensure VoiceStateProvider implements ports.VoiceStateProvider.
var _ ports.VoiceStateProvider = (*VoiceStateProvider)(nil)
