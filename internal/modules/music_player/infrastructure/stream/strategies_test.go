package stream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/sglre6355/jukebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebot/internal/modules/music_player/domain"
	"github.com/sglre6355/jukebot/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStrategies(t *testing.T) {
	tests := []struct {
		name    string
		names   []string
		want    []string
		wantErr bool
	}{
		{name: "default order", names: nil, want: []string{"pipeline", "download"}},
		{name: "custom order", names: []string{"direct", " Pipeline "}, want: []string{"direct", "pipeline"}},
		{name: "unknown strategy", names: []string{"pipeline", "torrent"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strategies, err := NewStrategies(tt.names, Options{})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			names := lo.Map(strategies, func(s ports.StreamStrategy, _ int) string { return s.Name() })
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestNewTempName(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	a := newTempName(now)
	b := newTempName(now)

	assert.True(t, strings.HasPrefix(a, "song_1700000000123_"))
	assert.Len(t, a, len("song_1700000000123_")+8)
	assert.NotEqual(t, a, b)
}

func testTrack(url string) *domain.Track {
	return domain.NewTrack("Test Song", url, 3*time.Minute, "", domain.TrackSourceYouTube, "test")
}

func TestDownloadStrategy_Attempt(t *testing.T) {
	requireShell(t)
	defer testutil.VerifyNoLeaks(t)

	bin := t.TempDir()
	tempDir := filepath.Join(t.TempDir(), "downloads")

	strategy := NewDownloadStrategy(Options{
		YtdlpPath:    writeScript(t, bin, "yt-dlp", fakeYtdlpOutput),
		FFmpegPath:   writeScript(t, bin, "ffmpeg", fakeFFmpegIdle),
		TempDir:      tempDir,
		StartupGrace: 50 * time.Millisecond,
	})

	s, err := strategy.Attempt(context.Background(), testTrack("https://www.youtube.com/watch?v=abc"))
	require.NoError(t, err)

	files, err := filepath.Glob(filepath.Join(tempDir, TempFilePrefix+"*.mp3"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	buf := make([]byte, 3)
	_, err = io.ReadFull(s, buf)
	require.NoError(t, err)
	assert.Equal(t, "pcm", string(buf))
	assert.Equal(t, 2, s.Handles())

	require.NoError(t, s.Close())
	assert.Equal(t, 0, s.Handles())
	assert.NoFileExists(t, files[0])
}

func TestDownloadStrategy_FallsBackToWebm(t *testing.T) {
	requireShell(t)
	defer testutil.VerifyNoLeaks(t)

	bin := t.TempDir()
	tempDir := filepath.Join(t.TempDir(), "downloads")
	argsLog := filepath.Join(t.TempDir(), "ytdlp-args")
	t.Setenv("ARGS_LOG", argsLog)

	strategy := NewDownloadStrategy(Options{
		YtdlpPath:    writeScript(t, bin, "yt-dlp", fakeYtdlpNoMp3),
		FFmpegPath:   writeScript(t, bin, "ffmpeg", fakeFFmpegCat),
		TempDir:      tempDir,
		StartupGrace: 50 * time.Millisecond,
	})

	s, err := strategy.Attempt(context.Background(), testTrack("https://www.youtube.com/watch?v=abc"))
	require.NoError(t, err)

	mp3s, err := filepath.Glob(filepath.Join(tempDir, TempFilePrefix+"*.mp3"))
	require.NoError(t, err)
	assert.Empty(t, mp3s)

	webms, err := filepath.Glob(filepath.Join(tempDir, TempFilePrefix+"*.webm"))
	require.NoError(t, err)
	require.Len(t, webms, 1)

	buf := make([]byte, len("webm-bytes"))
	_, err = io.ReadFull(s, buf)
	require.NoError(t, err)
	assert.Equal(t, "webm-bytes", string(buf))

	logged, err := os.ReadFile(argsLog)
	require.NoError(t, err)
	invocations := strings.Split(strings.TrimSpace(string(logged)), "\n")
	require.Len(t, invocations, 2)
	assert.Contains(t, invocations[0], "--audio-format mp3")
	assert.Contains(t, invocations[1], "--output "+webms[0])
	for _, args := range invocations {
		assert.Contains(t, args, "--no-mtime")
	}

	require.NoError(t, s.Close())
	assert.NoFileExists(t, webms[0])
}

func TestDownloadStrategy_AttemptFailsWithoutFile(t *testing.T) {
	requireShell(t)
	defer testutil.VerifyNoLeaks(t)

	bin := t.TempDir()
	tempDir := filepath.Join(t.TempDir(), "downloads")

	strategy := NewDownloadStrategy(Options{
		YtdlpPath:    writeScript(t, bin, "yt-dlp", `echo "ERROR: unable to download" >&2; exit 1`),
		FFmpegPath:   writeScript(t, bin, "ffmpeg", fakeFFmpegIdle),
		TempDir:      tempDir,
		StartupGrace: 50 * time.Millisecond,
	})

	s, err := strategy.Attempt(context.Background(), testTrack("https://www.youtube.com/watch?v=abc"))
	require.Error(t, err)
	assert.Nil(t, s)
	assert.Contains(t, err.Error(), "mp3")
	assert.Contains(t, err.Error(), "webm")

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPipelineStrategy_CriticalStderrFailsAttempt(t *testing.T) {
	requireShell(t)
	defer testutil.VerifyNoLeaks(t)

	bin := t.TempDir()
	strategy := NewPipelineStrategy(Options{
		YtdlpPath:    writeScript(t, bin, "yt-dlp", `echo "ERROR: [youtube] abc: Sign in to confirm your age" >&2; exec sleep 30`),
		FFmpegPath:   writeScript(t, bin, "ffmpeg", "exec cat"),
		StartupGrace: 5 * time.Second,
	})

	s, err := strategy.Attempt(context.Background(), testTrack("https://www.youtube.com/watch?v=abc"))
	require.ErrorIs(t, err, ErrStartupFailed)
	assert.Nil(t, s)
}

func TestPipelineStrategy_Attempt(t *testing.T) {
	requireShell(t)
	defer testutil.VerifyNoLeaks(t)

	bin := t.TempDir()
	strategy := NewPipelineStrategy(Options{
		YtdlpPath:    writeScript(t, bin, "yt-dlp", "printf media; exec sleep 30"),
		FFmpegPath:   writeScript(t, bin, "ffmpeg", "exec cat"),
		StartupGrace: 50 * time.Millisecond,
	})

	s, err := strategy.Attempt(context.Background(), testTrack("https://www.youtube.com/watch?v=abc"))
	require.NoError(t, err)

	buf := make([]byte, 5)
	_, err = io.ReadFull(s, buf)
	require.NoError(t, err)
	assert.Equal(t, "media", string(buf))
	assert.Equal(t, 2, s.Handles())

	require.NoError(t, s.Close())
	assert.Equal(t, 0, s.Handles())
}

func TestDirectStrategy_Attempt(t *testing.T) {
	requireShell(t)
	defer testutil.VerifyNoLeaks(t, testutil.IgnoreHTTPGoroutines()...)

	media := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusOK)
	}))
	defer media.Close()

	bin := t.TempDir()
	strategy := NewDirectStrategy(Options{
		YtdlpPath:    writeScript(t, bin, "yt-dlp", fmt.Sprintf("echo '%s/audio.webm'", media.URL)),
		FFmpegPath:   writeScript(t, bin, "ffmpeg", fakeFFmpegIdle),
		StartupGrace: 50 * time.Millisecond,
		HTTPClient:   media.Client(),
	})

	s, err := strategy.Attempt(context.Background(), testTrack("https://soundcloud.com/artist/song"))
	require.NoError(t, err)

	buf := make([]byte, 3)
	_, err = io.ReadFull(s, buf)
	require.NoError(t, err)
	assert.Equal(t, "pcm", string(buf))

	require.NoError(t, s.Close())
}

func TestDirectStrategy_RejectsDeadURL(t *testing.T) {
	requireShell(t)
	defer testutil.VerifyNoLeaks(t, testutil.IgnoreHTTPGoroutines()...)

	media := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer media.Close()

	bin := t.TempDir()
	strategy := NewDirectStrategy(Options{
		YtdlpPath:  writeScript(t, bin, "yt-dlp", fmt.Sprintf("echo '%s/audio.webm'", media.URL)),
		FFmpegPath: writeScript(t, bin, "ffmpeg", fakeFFmpegIdle),
		HTTPClient: media.Client(),
	})

	s, err := strategy.Attempt(context.Background(), testTrack("https://soundcloud.com/artist/song"))
	require.Error(t, err)
	assert.Nil(t, s)
	assert.Contains(t, err.Error(), "403")
}
