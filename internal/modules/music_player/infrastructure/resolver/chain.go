// Package resolver implements the track resolvers that turn a search query into
// a playable track descriptor.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/samber/lo"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

// Compile-time check that Chain implements ports.TrackResolver.
var _ ports.TrackResolver = (*Chain)(nil)

// Chain tries its resolvers in order and returns the first match.
type Chain struct {
	name      string
	resolvers []ports.TrackResolver
}

// NewChain creates a Chain. Nil resolvers are skipped.
func NewChain(name string, resolvers ...ports.TrackResolver) *Chain {
	return &Chain{
		name: name,
		resolvers: lo.Filter(resolvers, func(r ports.TrackResolver, _ int) bool {
			return r != nil
		}),
	}
}

// Name returns the chain name.
func (c *Chain) Name() string {
	return c.name
}

// Resolve returns the first match. When nothing matches it returns nil along with
// the errors of any resolvers that failed.
func (c *Chain) Resolve(ctx context.Context, query *domain.SearchQuery) (*domain.Track, error) {
	var errs []error
	for _, r := range c.resolvers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		track, err := r.Resolve(ctx, query)
		if err != nil {
			slog.Warn("resolver failed",
				"resolver", r.Name(),
				"query", query.Query,
				"error", err,
			)
			errs = append(errs, fmt.Errorf("%s: %w", r.Name(), err))
			continue
		}
		if track != nil {
			slog.Debug("query resolved", "resolver", r.Name(), "query", query.Query, "track", track.Title)
			return track, nil
		}
	}
	return nil, errors.Join(errs...)
}

// Fallback resolves text queries with a second resolver when the primary finds nothing.
type Fallback struct {
	primary  ports.TrackResolver
	fallback ports.TrackResolver
	source   domain.TrackSource
}

// Compile-time check that Fallback implements ports.TrackResolver.
var _ ports.TrackResolver = (*Fallback)(nil)

// NewFallback creates a Fallback that re-targets text queries at source.
func NewFallback(primary, fallback ports.TrackResolver, source domain.TrackSource) *Fallback {
	return &Fallback{primary: primary, fallback: fallback, source: source}
}

// Name returns the primary resolver's name.
func (f *Fallback) Name() string {
	return f.primary.Name()
}

// Resolve tries the primary resolver, then the fallback for text queries.
func (f *Fallback) Resolve(ctx context.Context, query *domain.SearchQuery) (*domain.Track, error) {
	track, err := f.primary.Resolve(ctx, query)
	if track != nil {
		return track, nil
	}
	if query.IsURL {
		return nil, err
	}

	slog.Debug("falling back to another source",
		"from", f.primary.Name(),
		"to", f.fallback.Name(),
		"query", query.Query,
		"error", err,
	)

	retarget := &domain.SearchQuery{Query: query.Query, Source: f.source}
	track, fallbackErr := f.fallback.Resolve(ctx, retarget)
	if track != nil {
		return track, nil
	}
	return nil, errors.Join(err, fallbackErr)
}
