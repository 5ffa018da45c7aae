package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/samber/lo"
	"github.com/sglre6355/jukebot/internal/bot"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/usecases"
)

// Embed colors.
const (
	colorSuccess = 0x08c404
	colorError   = 0xE74C3C
)

const (
	// playTimeout bounds resolving a query and starting the session.
	playTimeout = 30 * time.Second
	// commandTimeout bounds commands handled by the playback session.
	commandTimeout = 10 * time.Second

	maxFieldLength = 1024
	maxTitleLength = 80
)

// errInternal is shown for failures the user cannot act on.
const errInternal = "Something went wrong while processing your command."

// userFacingErrors are reported to the user as is.
var userFacingErrors = []error{
	usecases.ErrUserNotInVoice,
	usecases.ErrMissingPermissions,
	usecases.ErrNotPlaying,
	usecases.ErrNotPaused,
	usecases.ErrNoResults,
	usecases.ErrEmptyQuery,
	usecases.ErrInvalidVolume,
	usecases.ErrShuttingDown,
}

// CommandHandlers holds all the command handlers.
type CommandHandlers struct {
	playback *usecases.PlaybackService
	queue    *usecases.QueueService
}

// NewCommandHandlers creates new CommandHandlers.
func NewCommandHandlers(
	playback *usecases.PlaybackService,
	queue *usecases.QueueService,
) *CommandHandlers {
	return &CommandHandlers{
		playback: playback,
		queue:    queue,
	}
}

// HandlePlay handles the /play command.
func (h *CommandHandlers) HandlePlay(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil || i.Member == nil || i.Member.User == nil {
		return respondError(r, "This command can only be used in a server.")
	}

	userID, err := snowflake.Parse(i.Member.User.ID)
	if err != nil {
		return respondError(r, "Invalid user")
	}

	textChannelID, err := snowflake.Parse(i.ChannelID)
	if err != nil {
		return respondError(r, "Invalid channel")
	}

	var query, source string
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "query":
			query = opt.StringValue()
		case "source":
			source = opt.StringValue()
		}
	}

	// Resolving can take longer than the interaction deadline
	if err := r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), playTimeout)
	defer cancel()

	output, err := h.playback.Play(ctx, usecases.PlayInput{
		GuildID:       guildID,
		UserID:        userID,
		TextChannelID: textChannelID,
		Query:         query,
		Source:        source,
	})
	if err != nil {
		return editError(r, errorMessage("play", err))
	}

	var description string
	if output.NowPlaying {
		description = fmt.Sprintf("Now playing %s.", trackLink(output.Track))
	} else {
		description = fmt.Sprintf(
			"Added %s to the queue (position %d).",
			trackLink(output.Track),
			output.Position,
		)
	}

	return editSuccess(r, description)
}

// HandlePause handles the /pause command.
func (h *CommandHandlers) HandlePause(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := h.playback.Pause(ctx, usecases.PauseInput{GuildID: guildID}); err != nil {
		return respondError(r, errorMessage("pause", err))
	}

	return respondSuccess(r, "Paused playback.")
}

// HandleResume handles the /resume command.
func (h *CommandHandlers) HandleResume(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := h.playback.Resume(ctx, usecases.ResumeInput{GuildID: guildID}); err != nil {
		return respondError(r, errorMessage("resume", err))
	}

	return respondSuccess(r, "Resumed playback.")
}

// HandleSkip handles the /skip command.
func (h *CommandHandlers) HandleSkip(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	output, err := h.playback.Skip(ctx, usecases.SkipInput{GuildID: guildID})
	if err != nil {
		return respondError(r, errorMessage("skip", err))
	}

	description := "Skipped."
	if output.SkippedTrack != nil {
		description = fmt.Sprintf("Skipped %s.", trackLink(output.SkippedTrack))
	}
	if output.NextTrack != nil {
		description += fmt.Sprintf("\nUp next: %s.", trackLink(output.NextTrack))
	} else {
		description += "\nThe queue is empty."
	}

	return respondSuccess(r, description)
}

// HandleStop handles the /stop command.
func (h *CommandHandlers) HandleStop(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := h.playback.Stop(ctx, usecases.StopInput{GuildID: guildID}); err != nil {
		return respondError(r, errorMessage("stop", err))
	}

	return respondSuccess(r, "Stopped playback and cleared the queue.")
}

// HandleQueue handles the /queue command.
func (h *CommandHandlers) HandleQueue(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	limit := usecases.DefaultListLimit
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "limit" {
			limit = int(opt.IntValue())
		}
	}

	output := h.queue.List(usecases.QueueListInput{
		GuildID: guildID,
		Limit:   limit,
	})
	if output.IsEmpty() {
		return respondSuccess(r, "Queue is empty.")
	}

	embed := &discordgo.MessageEmbed{
		Title: "Queue",
		Color: colorSuccess,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf(
				"%d pending | %s | volume %d%%",
				output.TotalPending,
				output.State.String(),
				volumePercent(output.Volume),
			),
		},
	}

	if output.CurrentTrack != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Now Playing",
			Value: trackLine(output.CurrentTrack),
		})
	}

	if len(output.Tracks) > 0 {
		lines := lo.Map(output.Tracks, func(track *usecases.Track, idx int) string {
			return fmt.Sprintf("%d. %s", idx+1, trackLine(track))
		})
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Up Next",
			Value: joinLines(lines, output.TotalPending),
		})
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}

// HandleVolume handles the /volume command.
func (h *CommandHandlers) HandleVolume(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	level := -1
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "level" {
			level = int(opt.IntValue())
		}
	}

	output, err := h.queue.SetVolume(usecases.SetVolumeInput{
		GuildID: guildID,
		Level:   level,
	})
	if err != nil {
		return respondError(r, errorMessage("volume", err))
	}

	return respondSuccess(r, fmt.Sprintf(
		"Volume set to %d%%. Takes effect from the next track.",
		volumePercent(output.Volume),
	))
}

// errorMessage returns the text shown to the user for err.
func errorMessage(command string, err error) string {
	for _, known := range userFacingErrors {
		if errors.Is(err, known) {
			return capitalize(known.Error()) + "."
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "The request timed out. Please try again."
	}

	slog.Error("failed to handle command", "command", command, "error", err)
	return errInternal
}

func trackLink(track *usecases.Track) string {
	title := truncate(track.Title, maxTitleLength)
	if track.URL == "" {
		return fmt.Sprintf("**%s**", title)
	}
	return fmt.Sprintf("**[%s](%s)**", title, track.URL)
}

func trackLine(track *usecases.Track) string {
	title := truncate(track.Title, maxTitleLength)
	if track.URL == "" {
		return fmt.Sprintf("%s `%s`", title, track.FormattedDuration())
	}
	return fmt.Sprintf("[%s](%s) `%s`", title, track.URL, track.FormattedDuration())
}

// joinLines joins as many lines as fit in an embed field and notes the rest.
func joinLines(lines []string, total int) string {
	var sb strings.Builder
	for idx, line := range lines {
		more := fmt.Sprintf("...and %d more", total-idx)
		if sb.Len()+len(line)+1 > maxFieldLength-len(more)-1 {
			sb.WriteString(more)
			return sb.String()
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	if rest := total - len(lines); rest > 0 {
		fmt.Fprintf(&sb, "...and %d more", rest)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func volumePercent(volume float64) int {
	return int(volume*100 + 0.5)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func respondSuccess(r bot.Responder, description string) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Description: description,
					Color:       colorSuccess,
				},
			},
		},
	})
}

func respondError(r bot.Responder, message string) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       "Error",
					Description: message,
					Color:       colorError,
				},
			},
		},
	})
}

func editSuccess(r bot.Responder, description string) error {
	return r.Edit(&discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{
			{
				Description: description,
				Color:       colorSuccess,
			},
		},
	})
}

func editError(r bot.Responder, message string) error {
	return r.Edit(&discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{
			{
				Title:       "Error",
				Description: message,
				Color:       colorError,
			},
		},
	})
}
