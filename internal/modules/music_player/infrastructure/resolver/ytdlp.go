package resolver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
	"github.com/tidwall/gjson"
)

// Compile-time check that YtdlpResolver implements ports.TrackResolver.
var _ ports.TrackResolver = (*YtdlpResolver)(nil)

// YtdlpResolver resolves URLs and searches with yt-dlp --dump-json.
type YtdlpResolver struct {
	opts         Options
	searchPrefix string
	source       domain.TrackSource
}

// NewYouTubeYtdlpResolver creates a yt-dlp resolver that searches YouTube.
func NewYouTubeYtdlpResolver(opts Options) *YtdlpResolver {
	return &YtdlpResolver{
		opts:         opts.withDefaults(),
		searchPrefix: "ytsearch1:",
		source:       domain.TrackSourceYouTube,
	}
}

// NewSoundCloudResolver creates a yt-dlp resolver that searches SoundCloud.
func NewSoundCloudResolver(opts Options) *YtdlpResolver {
	return &YtdlpResolver{
		opts:         opts.withDefaults(),
		searchPrefix: "scsearch1:",
		source:       domain.TrackSourceSoundCloud,
	}
}

// Name returns the resolver name.
func (r *YtdlpResolver) Name() string {
	return "yt-dlp:" + string(r.source)
}

// Resolve asks yt-dlp for metadata of the URL or the first search result.
func (r *YtdlpResolver) Resolve(ctx context.Context, query *domain.SearchQuery) (*domain.Track, error) {
	target := query.Query
	if !query.IsURL {
		target = r.searchPrefix + query.Query
	}

	res, err := r.opts.ytdlp().
		NoPlaylist().
		Run(ctx, "--dump-json", "--skip-download", target)
	if err != nil {
		return nil, fmt.Errorf("dump json: %w", err)
	}

	return parseDumpJSON(res.Stdout, r.source), nil
}

// parseDumpJSON builds a track from the first JSON object in yt-dlp output.
func parseDumpJSON(output string, source domain.TrackSource) *domain.Track {
	for line := range strings.Lines(output) {
		line = strings.TrimSpace(line)
		if line == "" || !gjson.Valid(line) {
			continue
		}

		info := gjson.Parse(line)
		title := info.Get("title").String()
		url := info.Get("webpage_url").String()
		if url == "" {
			url = info.Get("original_url").String()
		}
		if title == "" || url == "" {
			continue
		}

		duration := time.Duration(info.Get("duration").Float() * float64(time.Second))
		return domain.NewTrack(
			title,
			url,
			duration.Round(time.Second),
			info.Get("thumbnail").String(),
			source,
			"",
		)
	}
	return nil
}
