package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCriticalLine(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"ERROR: [youtube] abc: Video unavailable", true},
		{"[https @ 0x1] Error reading header", true},
		{"av_interleaved_write_frame(): Input/output error", true},
		{"Server returned 403 Forbidden (access denied)", true},
		{"HTTP Error 403: Forbidden", true},
		{"Connection reset by peer", true},
		{"pipe:0: Invalid data found when processing input", true},
		{"The session has been invalidated", true},
		{"[download] 45.0% of 3.20MiB", false},
		{"size=     512kB time=00:00:02.97", false},
		{"WARNING: [youtube] unable to extract yt initial data", false},
		{"error: lowercase prefix alone is not critical", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, isCriticalLine(tt.line))
		})
	}
}

func TestLineWriter(t *testing.T) {
	var lines []string
	w := newLineWriter(func(line string) {
		lines = append(lines, line)
	})

	n, err := w.Write([]byte("first li"))
	assert.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Empty(t, lines)

	_, _ = w.Write([]byte("ne\n\n  second line  \r\nthird"))
	assert.Equal(t, []string{"first line", "second line"}, lines)

	_, _ = w.Write([]byte("\n"))
	assert.Equal(t, []string{"first line", "second line", "third"}, lines)
}

func TestTailKeepsLastLines(t *testing.T) {
	tl := newTail(2)
	assert.Empty(t, tl.String())

	tl.add("a")
	tl.add("b")
	tl.add("c")

	assert.Equal(t, "b; c", tl.String())
}
