package stream

import (
	"fmt"
	"strings"

	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
)

// DefaultStrategies is the strategy order used when none is configured.
var DefaultStrategies = []string{"pipeline", "download"}

// NewStrategies builds the named strategies in the given order.
func NewStrategies(names []string, opts Options) ([]ports.StreamStrategy, error) {
	if len(names) == 0 {
		names = DefaultStrategies
	}

	strategies := make([]ports.StreamStrategy, 0, len(names))
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "direct":
			strategies = append(strategies, NewDirectStrategy(opts))
		case "pipeline":
			strategies = append(strategies, NewPipelineStrategy(opts))
		case "download":
			strategies = append(strategies, NewDownloadStrategy(opts))
		default:
			return nil, fmt.Errorf("unknown stream strategy %q", name)
		}
	}
	return strategies, nil
}
