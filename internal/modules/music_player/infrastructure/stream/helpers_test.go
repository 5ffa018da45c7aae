package stream

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeScript writes an executable shell script standing in for yt-dlp or ffmpeg.
func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func requireShell(t *testing.T) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

// fakeYtdlpOutput is a yt-dlp stand-in that writes to the path given by --output.
const fakeYtdlpOutput = `out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "--output" ]; then out="$2"; shift; fi
  shift
done
case "$out" in
  *'.%(ext)s') out="${out%.%(ext)s}.mp3" ;;
esac
printf 'audio-bytes' > "$out"`

// fakeFFmpegIdle writes some PCM and keeps running until killed.
const fakeFFmpegIdle = `printf 'pcm'
exec sleep 30`

// fakeYtdlpNoMp3 fails every mp3 extraction and writes the --output path
// otherwise. Each invocation's arguments are appended to the file named by $ARGS_LOG.
const fakeYtdlpNoMp3 = `echo "$@" >> "$ARGS_LOG"
out=""
for arg in "$@"; do
  if [ "$arg" = "mp3" ]; then echo "ERROR: Postprocessing: audio conversion failed" >&2; exit 1; fi
done
while [ $# -gt 0 ]; do
  if [ "$1" = "--output" ]; then out="$2"; shift; fi
  shift
done
printf 'webm-bytes' > "$out"`

// fakeFFmpegCat copies the -i input to stdout and keeps running until killed.
const fakeFFmpegCat = `while [ $# -gt 0 ]; do
  if [ "$1" = "-i" ]; then cat "$2"; fi
  shift
done
exec sleep 30`
