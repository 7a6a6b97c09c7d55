package models

import (
	"encoding/json"
	"fmt"
	"testing"
)

func makeTracks(n int) []Track {
	tracks := make([]Track, n)
	for i := range tracks {
		tracks[i] = NewTrack(fmt.Sprintf("vid%03d", i), fmt.Sprintf("Video %d", i), "Channel", "3:00")
	}
	return tracks
}

func TestThumbnailURL(t *testing.T) {
	want := "https://img.youtube.com/vi/dQw4w9WgXcQ/mqdefault.jpg"
	if got := ThumbnailURL("dQw4w9WgXcQ"); got != want {
		t.Errorf("ThumbnailURL() = %s, want %s", got, want)
	}
}

func TestNewTrack(t *testing.T) {
	t.Run("fills defaults", func(t *testing.T) {
		track := NewTrack("abc", "", "NA", "")
		if track.Title != UntitledTrack {
			t.Errorf("expected title %q, got %q", UntitledTrack, track.Title)
		}
		if track.Channel != UnknownChannel {
			t.Errorf("expected channel %q, got %q", UnknownChannel, track.Channel)
		}
		if track.Duration != "" {
			t.Errorf("expected empty duration, got %q", track.Duration)
		}
		if track.Thumbnail != ThumbnailURL("abc") {
			t.Errorf("unexpected thumbnail %s", track.Thumbnail)
		}
	})

	t.Run("omits empty duration from JSON", func(t *testing.T) {
		data, err := json.Marshal(NewTrack("abc", "Song", "Artist", ""))
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}

		var fields map[string]any
		if err := json.Unmarshal(data, &fields); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if _, ok := fields["duration"]; ok {
			t.Errorf("expected duration to be omitted, got %s", data)
		}
	})
}

func TestNewPlaylist(t *testing.T) {
	t.Run("cover image is first thumbnail", func(t *testing.T) {
		p := NewPlaylist(PlaylistMeta{ID: "PL1", Name: "Mix"}, makeTracks(3))
		if p.CoverImage == nil {
			t.Fatal("expected cover image")
		}
		if *p.CoverImage != p.Tracks[0].Thumbnail {
			t.Errorf("expected cover %s, got %s", p.Tracks[0].Thumbnail, *p.CoverImage)
		}
		if !p.IsYouTube {
			t.Error("expected isYouTube to be true")
		}
	})

	t.Run("cover image is null without tracks", func(t *testing.T) {
		p := NewPlaylist(PlaylistMeta{ID: "PL1"}, nil)
		data, err := json.Marshal(p)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if v, ok := decoded["coverImage"]; !ok || v != nil {
			t.Errorf("expected coverImage null, got %v", v)
		}
		if tracks, ok := decoded["tracks"].([]any); !ok || len(tracks) != 0 {
			t.Errorf("expected empty tracks array, got %v", decoded["tracks"])
		}
	})

	t.Run("caps tracks and keeps order", func(t *testing.T) {
		p := NewPlaylist(PlaylistMeta{ID: "PL1"}, makeTracks(75))
		if len(p.Tracks) != MaxPlaylistTracks {
			t.Fatalf("expected %d tracks, got %d", MaxPlaylistTracks, len(p.Tracks))
		}
		for i, track := range p.Tracks {
			if want := fmt.Sprintf("vid%03d", i); track.ID != want {
				t.Fatalf("track %d: expected %s, got %s", i, want, track.ID)
			}
		}
	})

	t.Run("defaults", func(t *testing.T) {
		p := NewPlaylist(PlaylistMeta{ID: "PL1"}, nil)
		if p.Name != DefaultPlaylistName {
			t.Errorf("expected name %q, got %q", DefaultPlaylistName, p.Name)
		}
		if p.Author != UnknownAuthor {
			t.Errorf("expected author %q, got %q", UnknownAuthor, p.Author)
		}
		if p.Description != "by Unknown" {
			t.Errorf("expected description 'by Unknown', got %q", p.Description)
		}
	})

	t.Run("description from author", func(t *testing.T) {
		p := NewPlaylist(PlaylistMeta{ID: "PL1", Author: "Lofi Girl"}, nil)
		if p.Description != "by Lofi Girl" {
			t.Errorf("expected 'by Lofi Girl', got %q", p.Description)
		}
	})
}

func TestSearchResults(t *testing.T) {
	t.Run("nil marshals as empty array", func(t *testing.T) {
		var results SearchResults
		data, err := json.Marshal(results)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if string(data) != "[]" {
			t.Errorf("expected [], got %s", data)
		}
	})

	t.Run("NewSearchResults caps at limit", func(t *testing.T) {
		if got := NewSearchResults(makeTracks(25)); len(got) != MaxSearchResults {
			t.Errorf("expected %d results, got %d", MaxSearchResults, len(got))
		}
	})

	t.Run("NewSearchResults never returns nil", func(t *testing.T) {
		if got := NewSearchResults(nil); got == nil {
			t.Error("expected non-nil results")
		}
	})
}

func TestFormatDuration(t *testing.T) {
	tt := []struct {
		seconds int
		want    string
	}{
		{0, UnknownDuration},
		{-5, UnknownDuration},
		{7, "0:07"},
		{212, "3:32"},
		{3723, "1:02:03"},
	}

	for _, tc := range tt {
		t.Run(tc.want, func(t *testing.T) {
			if got := FormatDuration(tc.seconds); got != tc.want {
				t.Errorf("FormatDuration(%d) = %s, want %s", tc.seconds, got, tc.want)
			}
		})
	}
}
