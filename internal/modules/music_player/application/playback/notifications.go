package playback

import (
	"context"
	"log/slog"
	"time"

	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

// requesterLookupTimeout bounds the member lookup so the embed is still sent
// without requester details when Discord is slow.
const requesterLookupTimeout = 3 * time.Second

// Notifications are sent off the session goroutine so a slow Discord API never
// delays playback.

func (s *Session) notifyNowPlaying(track *domain.Track) {
	notifier, channelID := s.deps.Notifier, s.textChannelID
	if notifier == nil || channelID == 0 {
		return
	}

	info := &ports.NowPlayingInfo{
		Title:        track.Title,
		URL:          track.URL,
		Duration:     track.FormattedDuration(),
		ThumbnailURL: track.ThumbnailURL,
		SourceName:   string(track.Source),
		Volume:       s.queue.Volume(),
		RequesterID:  track.RequesterID,
	}

	s.spawn(func() {
		if s.deps.Requesters != nil && info.RequesterID != 0 {
			ctx, cancel := context.WithTimeout(context.Background(), requesterLookupTimeout)
			requester, err := s.deps.Requesters.LookupRequester(ctx, s.guildID, info.RequesterID)
			cancel()
			if err != nil {
				slog.Debug("failed to look up requester", "guild", s.guildID, "error", err)
			} else {
				info.RequesterName = requester.Name
				info.RequesterAvatarURL = requester.AvatarURL
			}
		}

		if err := notifier.SendNowPlaying(channelID, info); err != nil {
			slog.Warn("failed to send now playing notification", "guild", s.guildID, "error", err)
		}
	})
}

func (s *Session) notifyError(message string) {
	notifier, channelID := s.deps.Notifier, s.textChannelID
	if notifier == nil || channelID == 0 {
		return
	}

	s.spawn(func() {
		if err := notifier.SendError(channelID, message); err != nil {
			slog.Warn("failed to send error notification", "guild", s.guildID, "error", err)
		}
	})
}

func (s *Session) notifyQueueFinished() {
	notifier, channelID := s.deps.Notifier, s.textChannelID
	if notifier == nil || channelID == 0 {
		return
	}

	s.spawn(func() {
		if err := notifier.SendQueueFinished(channelID); err != nil {
			slog.Warn("failed to send queue finished notification", "guild", s.guildID, "error", err)
		}
	})
}
