package ports

import (
	"context"
	"io"

	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

// Stream is an acquired audio stream yielding signed 16-bit little-endian PCM
// at 48 kHz with 2 channels.
type Stream interface {
	io.Reader

	// Events reports subprocess exits and critical diagnostics observed after
	// the stream was handed out. It is closed once the stream is closed.
	Events() <-chan domain.PlaybackEvent

	// Handles returns the number of live subprocesses and temporary files.
	Handles() int

	// Close kills any subprocess and deletes any temporary file. It is idempotent.
	Close() error
}

// StreamStrategy is one way of turning a track into a Stream.
type StreamStrategy interface {
	// Name identifies the strategy in logs and configuration.
	Name() string

	// Attempt acquires a stream for the track or reports why it could not.
	Attempt(ctx context.Context, track *domain.Track) (Stream, error)
}

// PCM format every Stream must produce and every AudioPlayer consumes.
const (
	PCMSampleRate = 48000
	PCMChannels   = 2
	// PCMFrameSize is the number of samples per channel in one 20ms frame.
	PCMFrameSize = 960
)
