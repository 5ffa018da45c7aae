package music_player

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

// clearEnv unsets every module variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SPOTIFY_CLIENT_ID", "SPOTIFY_CLIENT_SECRET",
		"LAVALINK_ADDRESS", "LAVALINK_PASSWORD",
		"YTDLP_PATH", "FFMPEG_PATH", "TEMP_DIR", "STREAM_STRATEGIES",
		"TEMP_MAX_AGE", "SWEEP_INTERVAL",
		"VOICE_CONNECT_TIMEOUT", "STARTUP_GRACE", "URL_CHECK_TIMEOUT",
		"CACHE_TTL", "SEARCH_RATE",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.YtdlpPath != "yt-dlp" || cfg.FFmpegPath != "ffmpeg" {
		t.Errorf("unexpected binaries %q %q", cfg.YtdlpPath, cfg.FFmpegPath)
	}
	if want := filepath.Join(os.TempDir(), "jukebot"); cfg.TempDir != want {
		t.Errorf("expected temp dir %q, got %q", want, cfg.TempDir)
	}
	if !slices.Equal(cfg.StreamStrategies, []string{"pipeline", "download"}) {
		t.Errorf("unexpected strategies %v", cfg.StreamStrategies)
	}

	durations := []struct {
		name string
		got  time.Duration
		want time.Duration
	}{
		{"TempMaxAge", cfg.TempMaxAge, 30 * time.Minute},
		{"SweepInterval", cfg.SweepInterval, 10 * time.Minute},
		{"VoiceConnectTimeout", cfg.VoiceConnectTimeout, 10 * time.Second},
		{"StartupGrace", cfg.StartupGrace, 2 * time.Second},
		{"URLCheckTimeout", cfg.URLCheckTimeout, 5 * time.Second},
		{"CacheTTL", cfg.CacheTTL, 30 * time.Minute},
	}
	for _, d := range durations {
		if d.got != d.want {
			t.Errorf("%s: expected %v, got %v", d.name, d.want, d.got)
		}
	}
	if cfg.SearchRate != 5 {
		t.Errorf("expected search rate 5, got %v", cfg.SearchRate)
	}
	if cfg.SpotifyClientID != "" || cfg.LavalinkAddress != "" {
		t.Error("expected optional integrations to be disabled")
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STREAM_STRATEGIES", "direct, download")
	t.Setenv("TEMP_DIR", "/var/tmp/music")
	t.Setenv("STARTUP_GRACE", "500ms")
	t.Setenv("SPOTIFY_CLIENT_ID", "id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "secret")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.TempDir != "/var/tmp/music" {
		t.Errorf("unexpected temp dir %q", cfg.TempDir)
	}
	if len(cfg.StreamStrategies) != 2 {
		t.Errorf("unexpected strategies %v", cfg.StreamStrategies)
	}
	if cfg.StartupGrace != 500*time.Millisecond {
		t.Errorf("unexpected startup grace %v", cfg.StartupGrace)
	}
	if got := cfg.StreamOptions(); got.TempDir != cfg.TempDir || got.StartupGrace != cfg.StartupGrace {
		t.Errorf("stream options do not match config: %+v", got)
	}
	if got := cfg.SpotifyConfig(); got.ClientID != "id" || got.ClientSecret != "secret" {
		t.Errorf("unexpected spotify config %+v", got)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "unknown strategy",
			env:     map[string]string{"STREAM_STRATEGIES": "pipeline,torrent"},
			wantErr: "torrent",
		},
		{
			name:    "half spotify credentials",
			env:     map[string]string{"SPOTIFY_CLIENT_ID": "id"},
			wantErr: "SPOTIFY_CLIENT_SECRET",
		},
		{
			name:    "lavalink without password",
			env:     map[string]string{"LAVALINK_ADDRESS": "localhost:2333"},
			wantErr: "LAVALINK_PASSWORD",
		},
		{
			name:    "bad duration",
			env:     map[string]string{"TEMP_MAX_AGE": "soon"},
			wantErr: "TempMaxAge",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}
