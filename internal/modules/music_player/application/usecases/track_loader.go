package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/karlseguin/ccache/v3"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
	"golang.org/x/time/rate"
)

// Resolution cache and rate limit defaults.
const (
	DefaultCacheTTL   = 30 * time.Minute
	DefaultSearchRate = 5
	defaultCacheSize  = 500
)

// LoadTrackInput contains the input for the LoadTrack use case.
type LoadTrackInput struct {
	Query  string
	Source string // "youtube", "spotify", "soundcloud" or empty for auto detection
}

// LoadTrackOutput contains the result of the LoadTrack use case.
type LoadTrackOutput struct {
	Track *domain.Track
}

// TrackLoaderConfig tunes caching and rate limiting.
type TrackLoaderConfig struct {
	CacheTTL   time.Duration
	SearchRate float64 // resolutions per second, also used as the burst
}

// TrackLoaderService resolves user queries into tracks.
type TrackLoaderService struct {
	resolvers map[domain.TrackSource]ports.TrackResolver
	cache     *ccache.Cache[*domain.Track]
	limiter   *rate.Limiter
	ttl       time.Duration
}

// NewTrackLoaderService creates a new TrackLoaderService.
// Sources without a resolver are resolved by the YouTube resolver.
func NewTrackLoaderService(
	resolvers map[domain.TrackSource]ports.TrackResolver,
	cfg TrackLoaderConfig,
) *TrackLoaderService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.SearchRate <= 0 {
		cfg.SearchRate = DefaultSearchRate
	}

	return &TrackLoaderService{
		resolvers: resolvers,
		cache:     ccache.New(ccache.Configure[*domain.Track]().MaxSize(defaultCacheSize)),
		limiter:   rate.NewLimiter(rate.Limit(cfg.SearchRate), max(int(cfg.SearchRate), 1)),
		ttl:       cfg.CacheTTL,
	}
}

// LoadTrack resolves the query to a single track.
// Provider failures are logged and reported as ErrNoResults.
func (s *TrackLoaderService) LoadTrack(
	ctx context.Context,
	input LoadTrackInput,
) (*LoadTrackOutput, error) {
	query := domain.NewSearchQuery(input.Query, domain.ParseRequestedSource(input.Source))
	if !query.IsValid() {
		return nil, ErrEmptyQuery
	}

	resolver := s.resolverFor(query.Source)
	if resolver == nil {
		return nil, ErrNoResults
	}

	item, err := s.cache.Fetch(query.CacheKey(), s.ttl, func() (*domain.Track, error) {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for search rate limit: %w", err)
		}

		track, err := resolver.Resolve(ctx, query)
		if err != nil {
			return nil, err
		}
		if !track.IsValid() {
			return nil, ErrNoResults
		}
		return track, nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if !errors.Is(err, ErrNoResults) {
			slog.Warn("failed to resolve query",
				"query", query.Query,
				"source", string(query.Source),
				"resolver", resolver.Name(),
				"error", err,
			)
		}
		return nil, ErrNoResults
	}

	return &LoadTrackOutput{
		Track: item.Value(),
	}, nil
}

// Close stops the resolution cache.
func (s *TrackLoaderService) Close() {
	s.cache.Stop()
}

func (s *TrackLoaderService) resolverFor(source domain.TrackSource) ports.TrackResolver {
	if r, ok := s.resolvers[source]; ok && r != nil {
		return r
	}
	return s.resolvers[domain.TrackSourceYouTube]
}
