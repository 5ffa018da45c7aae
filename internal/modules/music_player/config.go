package music_player

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sglre6355/jukebot/internal/modules/music_player/infrastructure/resolver"
	"github.com/sglre6355/jukebot/internal/modules/music_player/infrastructure/stream"
)

// Config holds the music player module configuration.
type Config struct {
	// Spotify credentials are optional. Without them Spotify queries are
	// searched on YouTube as is.
	SpotifyClientID     string `env:"SPOTIFY_CLIENT_ID"`
	SpotifyClientSecret string `env:"SPOTIFY_CLIENT_SECRET"`

	// A Lavalink node is optional and only used for searching.
	LavalinkAddress  string `env:"LAVALINK_ADDRESS"`
	LavalinkPassword string `env:"LAVALINK_PASSWORD"`

	YtdlpPath  string `env:"YTDLP_PATH" envDefault:"yt-dlp"`
	FFmpegPath string `env:"FFMPEG_PATH" envDefault:"ffmpeg"`

	// TempDir defaults to a jukebot directory under the system temp dir.
	TempDir          string   `env:"TEMP_DIR"`
	StreamStrategies []string `env:"STREAM_STRATEGIES" envSeparator:"," envDefault:"pipeline,download"`

	TempMaxAge    time.Duration `env:"TEMP_MAX_AGE" envDefault:"30m"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"10m"`

	VoiceConnectTimeout time.Duration `env:"VOICE_CONNECT_TIMEOUT" envDefault:"10s"`
	StartupGrace        time.Duration `env:"STARTUP_GRACE" envDefault:"2s"`
	URLCheckTimeout     time.Duration `env:"URL_CHECK_TIMEOUT" envDefault:"5s"`

	CacheTTL   time.Duration `env:"CACHE_TTL" envDefault:"30m"`
	SearchRate float64       `env:"SEARCH_RATE" envDefault:"5"`
}

// LoadConfig loads the module configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if cfg.TempDir == "" {
		cfg.TempDir = filepath.Join(os.TempDir(), "jukebot")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	if (c.SpotifyClientID == "") != (c.SpotifyClientSecret == "") {
		errs = append(errs, errors.New("SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET must be set together"))
	}
	if c.LavalinkAddress != "" && c.LavalinkPassword == "" {
		errs = append(errs, errors.New("LAVALINK_PASSWORD is required when LAVALINK_ADDRESS is set"))
	}
	if _, err := stream.NewStrategies(c.StreamStrategies, c.StreamOptions()); err != nil {
		errs = append(errs, fmt.Errorf("STREAM_STRATEGIES: %w", err))
	}
	if c.SearchRate <= 0 {
		errs = append(errs, errors.New("SEARCH_RATE must be positive"))
	}

	return errors.Join(errs...)
}

// StreamOptions returns the options shared by the stream strategies.
func (c *Config) StreamOptions() stream.Options {
	return stream.Options{
		YtdlpPath:       c.YtdlpPath,
		FFmpegPath:      c.FFmpegPath,
		TempDir:         c.TempDir,
		StartupGrace:    c.StartupGrace,
		URLCheckTimeout: c.URLCheckTimeout,
	}
}

// ResolverOptions returns the options shared by the search resolvers.
func (c *Config) ResolverOptions() resolver.Options {
	return resolver.Options{
		YtdlpPath: c.YtdlpPath,
	}
}

// SpotifyConfig returns the Spotify credentials.
func (c *Config) SpotifyConfig() resolver.SpotifyConfig {
	return resolver.SpotifyConfig{
		ClientID:     c.SpotifyClientID,
		ClientSecret: c.SpotifyClientSecret,
	}
}

// NewSweeper creates the temp file sweeper for this configuration.
func (c *Config) NewSweeper() *stream.Sweeper {
	return stream.NewSweeper(c.TempDir, c.TempMaxAge, c.SweepInterval)
}
