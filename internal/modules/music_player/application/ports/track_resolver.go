package ports

import (
	"context"

	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

// TrackResolver resolves a query against one search provider.
type TrackResolver interface {
	// Name identifies the provider in logs.
	Name() string

	// Resolve returns the best match for the query, or nil when nothing matched.
	Resolve(ctx context.Context, query *domain.SearchQuery) (*domain.Track, error)
}
