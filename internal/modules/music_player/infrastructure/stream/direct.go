package stream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/exec"
	"strings"

	"github.com/kkdai/youtube/v2"
	"github.com/samber/lo"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

// Compile-time check that DirectStrategy implements ports.StreamStrategy.
var _ ports.StreamStrategy = (*DirectStrategy)(nil)

// DirectStrategy extracts a direct audio URL and lets ffmpeg fetch it.
type DirectStrategy struct {
	opts    Options
	youtube *youtube.Client
}

// NewDirectStrategy creates a new DirectStrategy.
func NewDirectStrategy(opts Options) *DirectStrategy {
	opts = opts.withDefaults()
	return &DirectStrategy{
		opts:    opts,
		youtube: &youtube.Client{HTTPClient: opts.HTTPClient},
	}
}

// Name returns "direct".
func (d *DirectStrategy) Name() string {
	return "direct"
}

// Attempt extracts, validates and transcodes a direct media URL.
func (d *DirectStrategy) Attempt(ctx context.Context, track *domain.Track) (ports.Stream, error) {
	mediaURL, err := d.extract(ctx, track.URL)
	if err != nil {
		return nil, err
	}
	if err := d.validate(ctx, mediaURL); err != nil {
		return nil, err
	}

	s := newProcessStream(d.Name())
	transcode := exec.CommandContext(s.ctx, d.opts.FFmpegPath, ffmpegArgs(mediaURL,
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-reconnect_delay_max", "5",
	)...)

	if err := s.start(transcode); err != nil {
		_ = s.Close()
		return nil, err
	}
	if err := s.awaitStartup(ctx, d.opts.StartupGrace); err != nil {
		_ = s.Close()
		return nil, err
	}

	return s, nil
}

func (d *DirectStrategy) extract(ctx context.Context, trackURL string) (string, error) {
	if domain.IsYouTubeURL(trackURL) {
		mediaURL, err := d.extractYouTube(ctx, trackURL)
		if err == nil {
			return mediaURL, nil
		}
		slog.Debug("in-process extraction failed, asking yt-dlp", "url", trackURL, "error", err)
	}

	res, err := d.opts.ytdlp().
		Format("bestaudio/best").
		NoPlaylist().
		Run(ctx, "--get-url", trackURL)
	if err != nil {
		return "", fmt.Errorf("get url: %w", err)
	}

	for line := range strings.Lines(res.Stdout) {
		if line = strings.TrimSpace(line); line != "" {
			return line, nil
		}
	}
	return "", errors.New("get url: yt-dlp returned no url")
}

func (d *DirectStrategy) extractYouTube(ctx context.Context, trackURL string) (string, error) {
	video, err := d.youtube.GetVideoContext(ctx, trackURL)
	if err != nil {
		return "", fmt.Errorf("get video: %w", err)
	}

	formats := video.Formats.WithAudioChannels()
	audioOnly := lo.Filter(formats, func(f youtube.Format, _ int) bool {
		return strings.HasPrefix(f.MimeType, "audio/")
	})
	if len(audioOnly) > 0 {
		formats = audioOnly
	}
	if len(formats) == 0 {
		return "", errors.New("no audio formats found for video")
	}

	mediaURL, err := d.youtube.GetStreamURLContext(ctx, video, &formats[0])
	if err != nil {
		return "", fmt.Errorf("get stream url: %w", err)
	}
	return mediaURL, nil
}

// validate checks that the media URL answers before ffmpeg is started.
func (d *DirectStrategy) validate(ctx context.Context, mediaURL string) error {
	ctx, cancel := context.WithTimeout(ctx, d.opts.URLCheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, mediaURL, nil)
	if err != nil {
		return fmt.Errorf("validate stream url: %w", err)
	}

	resp, err := d.opts.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("validate stream url: %w", err)
	}
	_ = resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("validate stream url: unexpected status %d", resp.StatusCode)
	}
	return nil
}
