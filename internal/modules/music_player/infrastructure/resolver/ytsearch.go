package resolver

import (
	"context"
	"fmt"

	"github.com/ppalone/ytsearch"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

// Compile-time check that YouTubeSearchResolver implements ports.TrackResolver.
var _ ports.TrackResolver = (*YouTubeSearchResolver)(nil)

// YouTubeSearchResolver searches YouTube by scraping the results page.
type YouTubeSearchResolver struct {
	client *ytsearch.Client
}

// NewYouTubeSearchResolver creates a new YouTubeSearchResolver.
func NewYouTubeSearchResolver(opts Options) *YouTubeSearchResolver {
	opts = opts.withDefaults()
	return &YouTubeSearchResolver{client: ytsearch.NewClient(opts.HTTPClient)}
}

// Name returns "ytsearch".
func (r *YouTubeSearchResolver) Name() string {
	return "ytsearch"
}

// Resolve returns the first video result. URLs are left to other resolvers.
func (r *YouTubeSearchResolver) Resolve(ctx context.Context, query *domain.SearchQuery) (*domain.Track, error) {
	if query.IsURL {
		return nil, nil
	}

	res, err := r.client.Search(ctx, query.Query)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	for _, v := range res.Results {
		if v.VideoID == "" {
			continue
		}
		return domain.NewTrack(
			v.Title,
			watchURL(v.VideoID),
			parseClockDuration(v.Duration),
			thumbnailURL(v.VideoID),
			domain.TrackSourceYouTube,
			"",
		), nil
	}
	return nil, nil
}
