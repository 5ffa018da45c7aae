package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

// Compile-time check that LavalinkResolver implements ports.TrackResolver.
var _ ports.TrackResolver = (*LavalinkResolver)(nil)

// LavalinkConfig contains Lavalink connection configuration.
type LavalinkConfig struct {
	Address  string
	Password string
}

// LavalinkResolver loads track metadata from a Lavalink node.
// Audio is still fetched by the stream strategies.
type LavalinkResolver struct {
	link disgolink.Client
}

// NewLavalinkResolver connects to a Lavalink node.
func NewLavalinkResolver(
	ctx context.Context,
	botID snowflake.ID,
	config LavalinkConfig,
) (*LavalinkResolver, error) {
	link := disgolink.New(botID)

	node, err := link.AddNode(ctx, disgolink.NodeConfig{
		Name:     "main",
		Address:  config.Address,
		Password: config.Password,
		Secure:   false,
	})
	if err != nil {
		link.Close()
		return nil, fmt.Errorf("failed to add Lavalink node: %w", err)
	}

	slog.Info("connected to Lavalink", "node", node.Config().Name, "address", config.Address)

	return &LavalinkResolver{link: link}, nil
}

// Name returns "lavalink".
func (r *LavalinkResolver) Name() string {
	return "lavalink"
}

// Resolve loads the URL or the first ytsearch result.
func (r *LavalinkResolver) Resolve(ctx context.Context, query *domain.SearchQuery) (*domain.Track, error) {
	node := r.link.BestNode()
	if node == nil {
		return nil, errors.New("no available Lavalink node")
	}

	identifier := query.Query
	if !query.IsURL {
		identifier = "ytsearch:" + query.Query
	}

	result, err := node.LoadTracks(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to load tracks: %w", err)
	}

	return firstTrack(result)
}

// Close disconnects from every node.
func (r *LavalinkResolver) Close() {
	r.link.Close()
}

// firstTrack picks the first track out of a load result.
func firstTrack(result *lavalink.LoadResult) (*domain.Track, error) {
	switch data := result.Data.(type) {
	case lavalink.Track:
		return convertTrack(data), nil

	case lavalink.Playlist:
		if len(data.Tracks) == 0 {
			return nil, nil
		}
		return convertTrack(data.Tracks[0]), nil

	case lavalink.Search:
		if len(data) == 0 {
			return nil, nil
		}
		return convertTrack(data[0]), nil

	case lavalink.Exception:
		return nil, fmt.Errorf("lavalink: %s", data.Message)

	default:
		return nil, nil
	}
}

// convertTrack converts a Lavalink track to a domain track.
func convertTrack(track lavalink.Track) *domain.Track {
	info := track.Info

	uri := getString(info.URI)
	if uri == "" && info.SourceName == "youtube" {
		uri = watchURL(info.Identifier)
	}

	var duration time.Duration
	if !info.IsStream {
		duration = time.Duration(info.Length) * time.Millisecond
	}

	return domain.NewTrack(
		info.Title,
		uri,
		duration,
		getString(info.ArtworkURL),
		domain.ParseTrackSource(info.SourceName),
		"",
	)
}

func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
