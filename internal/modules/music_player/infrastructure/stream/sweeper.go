package stream

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Sweeper defaults.
const (
	DefaultTempMaxAge    = 30 * time.Minute
	DefaultSweepInterval = 10 * time.Minute
)

// Sweeper periodically deletes downloaded files left behind by crashed sessions.
type Sweeper struct {
	dir      string
	maxAge   time.Duration
	interval time.Duration
}

// NewSweeper creates a Sweeper for the given directory.
func NewSweeper(dir string, maxAge, interval time.Duration) *Sweeper {
	if maxAge <= 0 {
		maxAge = DefaultTempMaxAge
	}
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{
		dir:      dir,
		maxAge:   maxAge,
		interval: interval,
	}
}

// Run sweeps on every interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed, err := s.SweepOnce(now)
			if err != nil {
				slog.Warn("failed to sweep temp files", "dir", s.dir, "error", err)
			}
			if removed > 0 {
				slog.Info("swept temp files", "dir", s.dir, "removed", removed)
			}
		}
	}
}

// SweepOnce deletes downloaded files older than the retention window and
// returns how many were removed. A missing directory is not an error.
func (s *Sweeper) SweepOnce(now time.Time) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := now.Add(-s.maxAge)
	removed := 0
	var errs []error

	for _, entry := range entries {
		if !entry.Type().IsRegular() || !strings.HasPrefix(entry.Name(), TempFilePrefix) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				errs = append(errs, err)
			}
			continue
		}
		removed++
	}

	return removed, errors.Join(errs...)
}
