package stream

import (
	"bytes"
	"strings"
	"sync"
)

// maxLineBuffer bounds the partial line kept between writes.
const maxLineBuffer = 64 * 1024

// criticalMarkers are diagnostic fragments that mean the stream cannot continue.
var criticalMarkers = []string{
	"error reading",
	"read error",
	"invalidated",
	"i/o error",
	"input/output error",
	"connection reset",
	"server returned 403",
	"http error 403",
	"error opening input",
	"invalid data found",
}

// isCriticalLine reports whether a diagnostic line from yt-dlp or ffmpeg means
// the stream is broken.
func isCriticalLine(line string) bool {
	if strings.HasPrefix(line, "ERROR:") {
		return true
	}

	lower := strings.ToLower(line)
	for _, marker := range criticalMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// lineWriter splits written bytes into lines and hands each non-empty line to onLine.
type lineWriter struct {
	mu     sync.Mutex
	buf    []byte
	onLine func(string)
}

func newLineWriter(onLine func(string)) *lineWriter {
	return &lineWriter{onLine: onLine}
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		line := strings.TrimSpace(string(w.buf[:i]))
		w.buf = w.buf[i+1:]
		if line != "" {
			w.onLine(line)
		}
	}

	if len(w.buf) > maxLineBuffer {
		w.buf = w.buf[len(w.buf)-maxLineBuffer:]
	}
	return len(p), nil
}

// tail keeps the last few lines written to it.
type tail struct {
	mu    sync.Mutex
	lines []string
	limit int
}

func newTail(limit int) *tail {
	return &tail{limit: limit}
}

func (t *tail) add(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lines = append(t.lines, line)
	if len(t.lines) > t.limit {
		t.lines = t.lines[len(t.lines)-t.limit:]
	}
}

func (t *tail) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return strings.Join(t.lines, "; ")
}
