package domain

import (
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

func TestNewTrack(t *testing.T) {
	track := NewTrack(
		"Test Song",
		"https://www.youtube.com/watch?v=abc",
		3*time.Minute+30*time.Second,
		"https://i.ytimg.com/vi/abc/hqdefault.jpg",
		TrackSourceSpotify,
		"Test Song Test Artist",
	)

	if track.Title != "Test Song" {
		t.Errorf("expected Title 'Test Song', got %q", track.Title)
	}
	if track.URL != "https://www.youtube.com/watch?v=abc" {
		t.Errorf("unexpected URL %q", track.URL)
	}
	if track.Duration != 3*time.Minute+30*time.Second {
		t.Errorf("expected Duration 3m30s, got %v", track.Duration)
	}
	if track.Source != TrackSourceSpotify {
		t.Errorf("expected Source spotify, got %q", track.Source)
	}
	if track.SearchQuery != "Test Song Test Artist" {
		t.Errorf("unexpected SearchQuery %q", track.SearchQuery)
	}
	if track.RequesterID != 0 {
		t.Errorf("expected no requester, got %d", track.RequesterID)
	}
}

func TestTrack_WithRequester(t *testing.T) {
	original := NewTrack("Song", "https://example.com", 0, "", TrackSourceYouTube, "")
	requested := original.WithRequester(snowflake.ID(42))

	if requested.RequesterID != 42 {
		t.Errorf("expected RequesterID 42, got %d", requested.RequesterID)
	}
	if original.RequesterID != 0 {
		t.Error("expected original track to be left untouched")
	}
}

func TestTrack_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		track    *Track
		expected bool
	}{
		{"nil track", nil, false},
		{"missing title", &Track{URL: "https://example.com"}, false},
		{"missing url", &Track{Title: "Song"}, false},
		{"valid", &Track{Title: "Song", URL: "https://example.com"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.track.IsValid(); got != tt.expected {
				t.Errorf("IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestTrack_FormattedDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{"unknown", 0, "Unknown"},
		{"seconds only", 45 * time.Second, "00:45"},
		{"minutes and seconds", 3*time.Minute + 5*time.Second, "03:05"},
		{"hours", 1*time.Hour + 2*time.Minute + 3*time.Second, "01:02:03"},
		{"double digit hours", 12*time.Hour + 34*time.Minute + 56*time.Second, "12:34:56"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			track := &Track{Duration: tt.duration}
			if got := track.FormattedDuration(); got != tt.expected {
				t.Errorf("FormattedDuration() = %q, want %q", got, tt.expected)
			}
		})
	}
}
