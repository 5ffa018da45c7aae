package stream

import (
	"context"
	"os/exec"

	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

// Compile-time check that PipelineStrategy implements ports.StreamStrategy.
var _ ports.StreamStrategy = (*PipelineStrategy)(nil)

// PipelineStrategy pipes yt-dlp's media output into ffmpeg and streams the PCM.
type PipelineStrategy struct {
	opts Options
}

// NewPipelineStrategy creates a new PipelineStrategy.
func NewPipelineStrategy(opts Options) *PipelineStrategy {
	return &PipelineStrategy{opts: opts.withDefaults()}
}

// Name returns "pipeline".
func (p *PipelineStrategy) Name() string {
	return "pipeline"
}

// Attempt starts the yt-dlp | ffmpeg pipeline and waits out the startup window.
func (p *PipelineStrategy) Attempt(ctx context.Context, track *domain.Track) (ports.Stream, error) {
	s := newProcessStream(p.Name())

	download := p.opts.ytdlp().
		Format("bestaudio/best").
		Output("-").
		NoPart().
		NoPlaylist().
		Quiet().
		BuildCommand(s.ctx,
			"--retries", "infinite",
			"--fragment-retries", "infinite",
			"--http-chunk-size", "10M",
			track.URL,
		)
	transcode := exec.CommandContext(s.ctx, p.opts.FFmpegPath, ffmpegArgs("pipe:0")...)

	if err := s.start(download, transcode); err != nil {
		_ = s.Close()
		return nil, err
	}
	if err := s.awaitStartup(ctx, p.opts.StartupGrace); err != nil {
		_ = s.Close()
		return nil, err
	}

	return s, nil
}
