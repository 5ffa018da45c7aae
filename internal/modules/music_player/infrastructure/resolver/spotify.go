package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/samber/lo"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
	"github.com/zmb3/spotify"
	"golang.org/x/oauth2/clientcredentials"
)

// spotifyMaxRetry bounds the retries of a single Spotify lookup.
const spotifyMaxRetry = 10 * time.Second

// errUnsupportedSpotifyURL is returned for Spotify links that are not tracks.
var errUnsupportedSpotifyURL = errors.New("only Spotify track links are supported")

// Compile-time check that SpotifyResolver implements ports.TrackResolver.
var _ ports.TrackResolver = (*SpotifyResolver)(nil)

// SpotifyConfig contains Spotify API credentials.
type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
}

// spotifyAPI is the part of the Spotify client the resolver uses.
type spotifyAPI interface {
	GetTrack(id spotify.ID) (*spotify.FullTrack, error)
	SearchOpt(query string, t spotify.SearchType, opt *spotify.Options) (*spotify.SearchResult, error)
}

// SpotifyResolver looks tracks up on Spotify and finds the matching audio on
// YouTube. Without credentials it searches YouTube with the raw query instead.
type SpotifyResolver struct {
	api   spotifyAPI
	audio ports.TrackResolver
}

// NewSpotifyResolver creates a SpotifyResolver. audio resolves the
// "<name> <artist>" text to the YouTube track that is actually played.
func NewSpotifyResolver(config SpotifyConfig, audio ports.TrackResolver) *SpotifyResolver {
	r := &SpotifyResolver{audio: audio}
	if config.ClientID == "" || config.ClientSecret == "" {
		return r
	}

	credentials := &clientcredentials.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		TokenURL:     spotify.TokenURL,
	}
	client := spotify.NewClient(credentials.Client(context.Background()))
	r.api = &client
	return r
}

// Name returns "spotify".
func (r *SpotifyResolver) Name() string {
	return "spotify"
}

// Resolve finds the Spotify track and its YouTube audio.
func (r *SpotifyResolver) Resolve(ctx context.Context, query *domain.SearchQuery) (*domain.Track, error) {
	if r.api == nil {
		return r.audio.Resolve(ctx, &domain.SearchQuery{
			Query:  query.Query,
			Source: domain.TrackSourceYouTube,
			IsURL:  query.IsURL && domain.IsYouTubeURL(query.Query),
		})
	}

	found, err := r.lookup(ctx, query)
	if err != nil || found == nil {
		return nil, err
	}

	artists := lo.Map(found.Artists, func(a spotify.SimpleArtist, _ int) string { return a.Name })
	searchText := found.Name
	if len(artists) > 0 {
		searchText += " " + artists[0]
	}

	audio, err := r.audio.Resolve(ctx, &domain.SearchQuery{
		Query:  searchText,
		Source: domain.TrackSourceYouTube,
	})
	if err != nil {
		return nil, fmt.Errorf("find audio for %q: %w", searchText, err)
	}
	if audio == nil {
		return nil, nil
	}

	title := found.Name
	if len(artists) > 0 {
		title += " - " + strings.Join(artists, ", ")
	}

	thumbnail := audio.ThumbnailURL
	if len(found.Album.Images) > 0 {
		thumbnail = found.Album.Images[0].URL
	}

	return domain.NewTrack(
		title,
		audio.URL,
		time.Duration(found.Duration)*time.Millisecond,
		thumbnail,
		domain.TrackSourceSpotify,
		searchText,
	), nil
}

// lookup fetches a track by link or searches by text, retrying transient failures.
func (r *SpotifyResolver) lookup(ctx context.Context, query *domain.SearchQuery) (*spotify.FullTrack, error) {
	var found *spotify.FullTrack

	operation := func() error {
		if id, ok := spotifyTrackID(query.Query); ok {
			track, err := r.api.GetTrack(id)
			if err != nil {
				return classifySpotifyError(err)
			}
			found = track
			return nil
		}
		if query.IsURL {
			return backoff.Permanent(errUnsupportedSpotifyURL)
		}

		limit := 1
		res, err := r.api.SearchOpt(query.Query, spotify.SearchTypeTrack, &spotify.Options{Limit: &limit})
		if err != nil {
			return classifySpotifyError(err)
		}
		if res != nil && res.Tracks != nil && len(res.Tracks.Tracks) > 0 {
			found = &res.Tracks.Tracks[0]
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = spotifyMaxRetry

	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return nil, fmt.Errorf("spotify lookup: %w", err)
	}
	return found, nil
}

// classifySpotifyError marks client errors other than rate limiting as permanent.
func classifySpotifyError(err error) error {
	var apiErr spotify.Error
	if errors.As(err, &apiErr) &&
		apiErr.Status >= http.StatusBadRequest &&
		apiErr.Status < http.StatusInternalServerError &&
		apiErr.Status != http.StatusTooManyRequests {
		return backoff.Permanent(err)
	}
	return err
}

// spotifyTrackID extracts the track ID from an open.spotify.com link or a
// spotify:track: URI.
func spotifyTrackID(query string) (spotify.ID, bool) {
	if id, ok := strings.CutPrefix(query, "spotify:track:"); ok && id != "" {
		return spotify.ID(id), true
	}

	u, err := url.Parse(query)
	if err != nil || !strings.HasSuffix(u.Host, "open.spotify.com") {
		return "", false
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+1 < len(segments); i++ {
		if segments[i] == "track" && segments[i+1] != "" {
			return spotify.ID(segments[i+1]), true
		}
	}
	return "", false
}
