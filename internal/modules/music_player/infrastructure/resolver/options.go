package resolver

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"
)

// Options configures the resolvers that shell out or call HTTP APIs.
type Options struct {
	YtdlpPath  string
	HTTPClient *http.Client
}

func (o Options) withDefaults() Options {
	if o.YtdlpPath == "" {
		o.YtdlpPath = "yt-dlp"
	}
	if o.HTTPClient == nil {
		o.HTTPClient = http.DefaultClient
	}
	return o
}

func (o Options) ytdlp() *ytdlp.Command {
	cmd := ytdlp.New().
		IgnoreConfig().
		NoWarnings().
		Quiet()
	cmd.SetExecutable(o.YtdlpPath)
	return cmd
}

// watchURL returns the canonical YouTube URL for a video ID.
func watchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// thumbnailURL returns the default high quality thumbnail for a video ID.
func thumbnailURL(videoID string) string {
	return "https://i.ytimg.com/vi/" + videoID + "/hqdefault.jpg"
}

// parseClockDuration parses "m:ss" or "h:mm:ss". Unparseable input yields 0.
func parseClockDuration(s string) time.Duration {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0
	}

	var total int
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + n
	}
	return time.Duration(total) * time.Second
}
