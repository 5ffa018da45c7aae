// Package acquisition turns resolved tracks into playable PCM streams by trying
// an ordered list of stream strategies.
package acquisition

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

var (
	// ErrAcquisitionFailed is returned when every strategy failed for a track.
	ErrAcquisitionFailed = errors.New("could not play track")

	// ErrNoStrategies is returned when the acquirer has nothing to try.
	ErrNoStrategies = errors.New("no stream strategies configured")
)

// Acquirer tries its strategies in order and returns the first stream that starts.
// It does not care why a strategy failed.
type Acquirer struct {
	strategies []ports.StreamStrategy
}

// NewAcquirer creates an Acquirer with the given strategies, tried in order.
func NewAcquirer(strategies ...ports.StreamStrategy) *Acquirer {
	return &Acquirer{
		strategies: lo.Filter(strategies, func(s ports.StreamStrategy, _ int) bool {
			return s != nil
		}),
	}
}

// Strategies returns the strategy names in the order they are tried.
func (a *Acquirer) Strategies() []string {
	return lo.Map(a.strategies, func(s ports.StreamStrategy, _ int) string {
		return s.Name()
	})
}

// Acquire returns a stream for the track from the first strategy that succeeds.
func (a *Acquirer) Acquire(ctx context.Context, track *domain.Track) (ports.Stream, error) {
	if len(a.strategies) == 0 {
		return nil, ErrNoStrategies
	}

	var errs []error
	for _, strategy := range a.strategies {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("acquisition cancelled: %w", err)
		}

		started := time.Now()
		stream, err := strategy.Attempt(ctx, track)
		if err == nil {
			slog.Info("acquired stream",
				"strategy", strategy.Name(),
				"track", track.Title,
				"elapsed", time.Since(started),
			)
			return stream, nil
		}

		slog.Warn("stream strategy failed",
			"strategy", strategy.Name(),
			"track", track.Title,
			"error", err,
		)
		errs = append(errs, fmt.Errorf("%s: %w", strategy.Name(), err))
	}

	return nil, fmt.Errorf("%w: %w", ErrAcquisitionFailed, errors.Join(errs...))
}
