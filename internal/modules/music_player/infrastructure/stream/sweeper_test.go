package stream

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sglre6355/jukebot/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweeper_SweepOnce(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	write := func(name string, age time.Duration) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
		mtime := now.Add(-age)
		require.NoError(t, os.Chtimes(path, mtime, mtime))
		return path
	}

	stale := write("song_1_aaaaaaaa.mp3", time.Hour)
	fresh := write("song_2_bbbbbbbb.webm", time.Minute)
	unrelated := write("notes.txt", time.Hour)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "song_dir"), 0o755))

	sweeper := NewSweeper(dir, 30*time.Minute, time.Minute)
	removed, err := sweeper.SweepOnce(now)
	require.NoError(t, err)

	assert.Equal(t, 1, removed)
	assert.NoFileExists(t, stale)
	assert.FileExists(t, fresh)
	assert.FileExists(t, unrelated)
	assert.DirExists(t, filepath.Join(dir, "song_dir"))
}

func TestSweeper_MissingDirectory(t *testing.T) {
	sweeper := NewSweeper(filepath.Join(t.TempDir(), "missing"), 0, 0)

	removed, err := sweeper.SweepOnce(time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestSweeper_RunStopsOnCancel(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		NewSweeper(t.TempDir(), time.Minute, 10*time.Millisecond).Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
