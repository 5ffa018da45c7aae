// Package stream implements the stream strategies that turn a track into PCM
// audio using yt-dlp and ffmpeg.
package stream

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
)

// Default timings.
const (
	DefaultStartupGrace    = 2 * time.Second
	DefaultURLCheckTimeout = 5 * time.Second
)

// Options configures the external binaries and timings used by the strategies.
type Options struct {
	YtdlpPath       string
	FFmpegPath      string
	TempDir         string
	StartupGrace    time.Duration
	URLCheckTimeout time.Duration
	HTTPClient      *http.Client
}

func (o Options) withDefaults() Options {
	if o.YtdlpPath == "" {
		o.YtdlpPath = "yt-dlp"
	}
	if o.FFmpegPath == "" {
		o.FFmpegPath = "ffmpeg"
	}
	if o.TempDir == "" {
		o.TempDir = filepath.Join(os.TempDir(), "jukebot")
	}
	if o.StartupGrace <= 0 {
		o.StartupGrace = DefaultStartupGrace
	}
	if o.URLCheckTimeout <= 0 {
		o.URLCheckTimeout = DefaultURLCheckTimeout
	}
	if o.HTTPClient == nil {
		o.HTTPClient = http.DefaultClient
	}
	return o
}

// ytdlp returns a yt-dlp command builder that ignores user configuration.
func (o Options) ytdlp() *ytdlp.Command {
	cmd := ytdlp.New().
		IgnoreConfig().
		NoWarnings()
	cmd.SetExecutable(o.YtdlpPath)
	return cmd
}

// ffmpegArgs returns arguments that transcode input to raw PCM on stdout.
func ffmpegArgs(input string, inputOpts ...string) []string {
	args := []string{"-nostdin", "-hide_banner", "-loglevel", "warning"}
	args = append(args, inputOpts...)
	args = append(args,
		"-i", input,
		"-vn",
		"-f", "s16le",
		"-ar", strconv.Itoa(ports.PCMSampleRate),
		"-ac", strconv.Itoa(ports.PCMChannels),
		"pipe:1",
	)
	return args
}
