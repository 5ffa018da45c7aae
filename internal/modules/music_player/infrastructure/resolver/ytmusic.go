package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/raitonoberu/ytmusic"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

// Compile-time check that YouTubeMusicResolver implements ports.TrackResolver.
var _ ports.TrackResolver = (*YouTubeMusicResolver)(nil)

// YouTubeMusicResolver searches YouTube Music, which matches song titles better
// than plain YouTube search.
type YouTubeMusicResolver struct{}

// NewYouTubeMusicResolver creates a new YouTubeMusicResolver.
func NewYouTubeMusicResolver() *YouTubeMusicResolver {
	return &YouTubeMusicResolver{}
}

// Name returns "ytmusic".
func (r *YouTubeMusicResolver) Name() string {
	return "ytmusic"
}

// Resolve returns the first song result as a YouTube track.
func (r *YouTubeMusicResolver) Resolve(ctx context.Context, query *domain.SearchQuery) (*domain.Track, error) {
	if query.IsURL {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := ytmusic.TrackSearch(query.Query).Next()
	if err != nil {
		return nil, fmt.Errorf("track search: %w", err)
	}
	if res == nil {
		return nil, nil
	}

	for _, t := range res.Tracks {
		if t.VideoID == "" {
			continue
		}

		title := t.Title
		if len(t.Artists) > 0 && !strings.Contains(title, t.Artists[0].Name) {
			title = t.Artists[0].Name + " - " + title
		}
		return domain.NewTrack(
			title,
			watchURL(t.VideoID),
			0,
			thumbnailURL(t.VideoID),
			domain.TrackSourceYouTube,
			"",
		), nil
	}
	return nil, nil
}
