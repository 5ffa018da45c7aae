package stream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
)

// TempFilePrefix prefixes every file the download strategy writes.
const TempFilePrefix = "song_"

// errEmptyFile is returned when a download produced a zero-length file.
var errEmptyFile = errors.New("downloaded file is empty")

// Compile-time check that DownloadStrategy implements ports.StreamStrategy.
var _ ports.StreamStrategy = (*DownloadStrategy)(nil)

// DownloadStrategy downloads the whole track to a temporary file and plays it
// from disk. The file is deleted when the stream is closed.
type DownloadStrategy struct {
	opts Options
}

// NewDownloadStrategy creates a new DownloadStrategy.
func NewDownloadStrategy(opts Options) *DownloadStrategy {
	return &DownloadStrategy{opts: opts.withDefaults()}
}

// Name returns "download".
func (d *DownloadStrategy) Name() string {
	return "download"
}

// Attempt downloads the track and starts transcoding the file.
func (d *DownloadStrategy) Attempt(ctx context.Context, track *domain.Track) (ports.Stream, error) {
	if err := os.MkdirAll(d.opts.TempDir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}

	base := filepath.Join(d.opts.TempDir, newTempName(time.Now()))
	path, err := d.download(ctx, track.URL, base)
	if err != nil {
		removeMatching(base + "*")
		return nil, err
	}

	s := newProcessStream(d.Name(), path)
	transcode := exec.CommandContext(s.ctx, d.opts.FFmpegPath, ffmpegArgs(path)...)

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

// download tries an mp3 extraction first and a webm download second.
// Files keep their download time as mtime so the sweeper ages them correctly.
func (d *DownloadStrategy) download(ctx context.Context, url, base string) (string, error) {
	attempts := []struct {
		format string
		path   string
		args   []string
	}{
		{
			format: "mp3",
			path:   base + ".mp3",
			args: []string{
				"--extract-audio",
				"--audio-format", "mp3",
				"--audio-quality", "0",
				"--no-mtime",
				"--no-playlist",
				"--ignore-errors",
				"--no-warnings",
				"--output", base + ".%(ext)s",
				url,
			},
		},
		{
			format: "webm",
			path:   base + ".webm",
			args: []string{
				"-f", "bestaudio[ext=webm]/bestaudio",
				"--no-mtime",
				"--no-playlist",
				"--ignore-errors",
				"--no-warnings",
				"--output", base + ".webm",
				url,
			},
		},
	}

	var errs []error
	for _, attempt := range attempts {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		_, runErr := d.opts.ytdlp().Run(ctx, attempt.args...)
		verifyErr := verifyFile(attempt.path)
		if verifyErr == nil {
			if runErr != nil {
				slog.Debug("yt-dlp reported an error but produced a file",
					"format", attempt.format,
					"error", runErr,
				)
			}
			return attempt.path, nil
		}

		_ = os.Remove(attempt.path)
		errs = append(errs, fmt.Errorf("%s: %w", attempt.format, errors.Join(runErr, verifyErr)))
	}

	return "", errors.Join(errs...)
}

// verifyFile checks that the file exists and is not empty.
func verifyFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		return errEmptyFile
	}
	return nil
}

// newTempName returns a unique file name without extension.
func newTempName(now time.Time) string {
	return fmt.Sprintf("%s%d_%s", TempFilePrefix, now.UnixMilli(), uuid.NewString()[:8])
}

func removeMatching(pattern string) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return
	}
	for _, m := range matches {
		_ = os.Remove(m)
	}
}
