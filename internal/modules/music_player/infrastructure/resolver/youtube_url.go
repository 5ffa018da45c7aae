package resolver

import (
	"context"
	"log/slog"

	"github.com/kkdai/youtube/v2"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

// placeholderTitle is used when a YouTube link's metadata cannot be fetched.
const placeholderTitle = "YouTube Video"

// Compile-time check that YouTubeURLResolver implements ports.TrackResolver.
var _ ports.TrackResolver = (*YouTubeURLResolver)(nil)

// YouTubeURLResolver fetches metadata for direct YouTube links.
type YouTubeURLResolver struct {
	client *youtube.Client
}

// NewYouTubeURLResolver creates a new YouTubeURLResolver.
func NewYouTubeURLResolver(opts Options) *YouTubeURLResolver {
	opts = opts.withDefaults()
	return &YouTubeURLResolver{client: &youtube.Client{HTTPClient: opts.HTTPClient}}
}

// Name returns "youtube-url".
func (r *YouTubeURLResolver) Name() string {
	return "youtube-url"
}

// Resolve returns the video behind a YouTube link. A link whose metadata cannot
// be fetched still resolves with a placeholder title.
func (r *YouTubeURLResolver) Resolve(ctx context.Context, query *domain.SearchQuery) (*domain.Track, error) {
	if !query.IsURL || !domain.IsYouTubeURL(query.Query) {
		return nil, nil
	}

	video, err := r.client.GetVideoContext(ctx, query.Query)
	if err != nil {
		slog.Debug("failed to fetch video metadata", "url", query.Query, "error", err)
		return domain.NewTrack(placeholderTitle, query.Query, 0, "", domain.TrackSourceYouTube, ""), nil
	}

	thumbnail := ""
	if n := len(video.Thumbnails); n > 0 {
		thumbnail = video.Thumbnails[n-1].URL
	}
	title := video.Title
	if title == "" {
		title = placeholderTitle
	}

	return domain.NewTrack(
		title,
		watchURL(video.ID),
		video.Duration,
		thumbnail,
		domain.TrackSourceYouTube,
		"",
	), nil
}
