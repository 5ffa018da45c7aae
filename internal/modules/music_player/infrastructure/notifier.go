package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

// Embed colors.
const (
	colorRed  = 0xE74C3C
	colorGray = 0x95A5A6
)

// Notifier sends notifications to Discord channels.
type Notifier struct {
	session    *discordgo.Session
	httpClient *http.Client
}

// NewNotifier creates a new Notifier.
func NewNotifier(session *discordgo.Session) *Notifier {
	return &Notifier{
		session: session,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// SendNowPlaying sends a "Now Playing" embed to the channel.
func (n *Notifier) SendNowPlaying(channelID snowflake.ID, info *ports.NowPlayingInfo) error {
	_, err := n.session.ChannelMessageSendEmbed(channelID.String(), n.nowPlayingEmbed(info))
	return err
}

func (n *Notifier) nowPlayingEmbed(info *ports.NowPlayingInfo) *discordgo.MessageEmbed {
	source := domain.ParseTrackSource(info.SourceName)

	embed := &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{
			Name: "Now Playing",
		},
		Title: info.Title,
		URL:   info.URL,
		Color: source.Color(),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Duration",
				Value:  info.Duration,
				Inline: true,
			},
			{
				Name:   "Source",
				Value:  source.DisplayName(),
				Inline: true,
			},
			{
				Name:   "Volume",
				Value:  fmt.Sprintf("%d%%", int(info.Volume*100+0.5)),
				Inline: true,
			},
		},
	}

	if info.RequesterName != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text:    fmt.Sprintf("Requested by %s", info.RequesterName),
			IconURL: info.RequesterAvatarURL,
		}
	}

	thumbnailURL := info.ThumbnailURL
	if source == domain.TrackSourceYouTube {
		thumbnailURL = n.getYouTubeThumbnail(youTubeVideoID(info.URL), thumbnailURL)
	}
	if thumbnailURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: thumbnailURL}
	}

	return embed
}

// SendError sends an error message embed to the channel.
func (n *Notifier) SendError(channelID snowflake.ID, message string) error {
	embed := &discordgo.MessageEmbed{
		Description: message,
		Color:       colorRed,
	}

	_, err := n.session.ChannelMessageSendEmbed(channelID.String(), embed)
	return err
}

// SendQueueFinished tells the channel that the queue ran out.
func (n *Notifier) SendQueueFinished(channelID snowflake.ID) error {
	embed := &discordgo.MessageEmbed{
		Description: "Queue finished. Leaving the voice channel.",
		Color:       colorGray,
	}

	_, err := n.session.ChannelMessageSendEmbed(channelID.String(), embed)
	return err
}

// getYouTubeThumbnail tries to find the highest quality YouTube thumbnail available.
func (n *Notifier) getYouTubeThumbnail(videoID string, fallbackURL string) string {
	if videoID == "" {
		return fallbackURL
	}

	qualities := []string{"maxresdefault", "sddefault", "hqdefault", "mqdefault"}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, quality := range qualities {
		candidate := fmt.Sprintf("https://img.youtube.com/vi/%s/%s.jpg", videoID, quality)
		if n.urlExists(ctx, candidate) {
			return candidate
		}
	}

	return fallbackURL
}

// urlExists checks if a URL returns a successful response using a HEAD request.
func (n *Notifier) urlExists(ctx context.Context, target string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return false
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode == http.StatusOK
}

// youTubeVideoID extracts the video ID from a watch or youtu.be URL.
func youTubeVideoID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	switch {
	case strings.HasSuffix(u.Host, "youtu.be"):
		return strings.TrimPrefix(u.Path, "/")
	case strings.Contains(u.Host, "youtube.com"):
		if id := u.Query().Get("v"); id != "" {
			return id
		}
		if id, ok := strings.CutPrefix(u.Path, "/shorts/"); ok {
			return id
		}
	}
	return ""
}

// Ensure Notifier implements ports.NotificationSender.
var _ ports.NotificationSender = (*Notifier)(nil)
