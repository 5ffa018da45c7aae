package resolver

import (
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

// NewSourceResolvers builds one resolver per track source.
// lavalink may be nil when no node is configured.
func NewSourceResolvers(
	opts Options,
	spotifyConfig SpotifyConfig,
	lavalink ports.TrackResolver,
) map[domain.TrackSource]ports.TrackResolver {
	youtube := NewChain("youtube",
		NewYouTubeURLResolver(opts),
		lavalink,
		NewYouTubeSearchResolver(opts),
		NewYouTubeYtdlpResolver(opts),
	)

	spotifyAudio := NewChain("spotify-audio",
		NewYouTubeMusicResolver(),
		youtube,
	)

	return map[domain.TrackSource]ports.TrackResolver{
		domain.TrackSourceYouTube:    youtube,
		domain.TrackSourceSpotify:    NewSpotifyResolver(spotifyConfig, spotifyAudio),
		domain.TrackSourceSoundCloud: NewFallback(NewSoundCloudResolver(opts), youtube, domain.TrackSourceYouTube),
	}
}
