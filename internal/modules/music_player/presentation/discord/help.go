package discord

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/jukebot/internal/bot"
)

var helpFields = []*discordgo.MessageEmbedField{
	{
		Name: "Commands",
		Value: strings.Join([]string{
			"`/play <query> [source]` Play a song from a search or URL",
			"`/pause` Pause the current song",
			"`/resume` Resume the paused song",
			"`/skip` Skip to the next song",
			"`/stop` Stop playback and clear the queue",
			"`/queue [limit]` Show the queue",
			"`/volume <level>` Set the volume for upcoming songs",
		}, "\n"),
	},
	{
		Name: "Supported Sources",
		Value: strings.Join([]string{
			"**YouTube** links and searches",
			"**Spotify** links and searches, played from YouTube",
			"**SoundCloud** links and searches, falling back to YouTube",
			"Links are detected automatically",
		}, "\n"),
	},
	{
		Name: "Examples",
		Value: strings.Join([]string{
			"`/play Never Gonna Give You Up`",
			"`/play https://youtube.com/watch?v=dQw4w9WgXcQ`",
			"`/play Bohemian Rhapsody source:spotify`",
			"`/play https://open.spotify.com/track/4iV5W9uYEdYUVa79Axb7Rh`",
		}, "\n"),
	},
	{
		Name: "How It Works",
		Value: strings.Join([]string{
			"Audio is fetched with yt-dlp and streamed through ffmpeg.",
			"If streaming fails to start, the song is downloaded first.",
			"Temporary files are deleted after playing and swept periodically.",
		}, "\n"),
	},
}

// HandleHelp handles the /help command.
func (h *CommandHandlers) HandleHelp(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       "Music Bot Help",
					Description: "Plays music from YouTube, Spotify and SoundCloud in your voice channel.",
					Color:       colorSuccess,
					Fields:      helpFields,
				},
			},
		},
	})
}
