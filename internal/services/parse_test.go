package services

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/ytfetch/internal/models"
	"github.com/desertthunder/ytfetch/internal/shared"
	tu "github.com/desertthunder/ytfetch/internal/testing"
)

func TestParseTrackLine(t *testing.T) {
	tt := []struct {
		name    string
		line    string
		want    models.Track
		wantErr error
	}{
		{
			name: "all fields",
			line: "dQw4w9WgXcQ|||Never Gonna Give You Up|||Rick Astley|||3:33",
			want: models.NewTrack("dQw4w9WgXcQ", "Never Gonna Give You Up", "Rick Astley", "3:33"),
		},
		{
			name: "title containing pipes",
			line: "abc|||A | B|||Channel|||1:00",
			want: models.NewTrack("abc", "A | B", "Channel", "1:00"),
		},
		{
			name: "id and title only",
			line: "abc|||Song",
			want: models.NewTrack("abc", "Song", models.UnknownChannel, models.UnknownDuration),
		},
		{
			name: "sentinel uploader and duration",
			line: "abc|||Song|||NA|||NA",
			want: models.NewTrack("abc", "Song", models.UnknownChannel, models.UnknownDuration),
		},
		{name: "single field", line: "abc", wantErr: shared.ErrMalformedLine},
		{name: "empty line", line: "", wantErr: shared.ErrMalformedLine},
		{name: "sentinel id", line: "NA|||Song|||Channel|||1:00", wantErr: shared.ErrSentinelID},
		{name: "empty id", line: "|||Song|||Channel|||1:00", wantErr: shared.ErrSentinelID},
		{name: "empty title", line: "abc||||||Channel|||1:00", wantErr: shared.ErrMalformedLine},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseTrackLine(tc.line)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("ParseTrackLine() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestParseTrackLines(t *testing.T) {
	t.Run("skips malformed line", func(t *testing.T) {
		out := strings.Join([]string{
			"id1|||One|||Chan|||1:00",
			"id2|||Two|||Chan|||2:00",
			"garbage",
			"id4|||Four|||Chan|||4:00",
			"id5|||Five|||Chan|||5:00",
		}, "\n")

		var logs bytes.Buffer
		tracks := ParseTrackLines([]byte(out), tu.NewLogger(&logs))
		if len(tracks) != 4 {
			t.Fatalf("expected 4 tracks, got %d", len(tracks))
		}
		for i, want := range []string{"id1", "id2", "id4", "id5"} {
			if tracks[i].ID != want {
				t.Errorf("track %d: expected %s, got %s", i, want, tracks[i].ID)
			}
		}
		if !strings.Contains(logs.String(), "line=3") {
			t.Errorf("expected skipped line to be logged, got %q", logs.String())
		}
	})

	t.Run("empty output is an empty slice", func(t *testing.T) {
		tracks := ParseTrackLines(nil, nil)
		if tracks == nil || len(tracks) != 0 {
			t.Errorf("expected empty non-nil slice, got %#v", tracks)
		}
	})

	t.Run("blank lines and CRLF", func(t *testing.T) {
		tracks := ParseTrackLines([]byte("\r\nid1|||One|||Chan|||1:00\r\n\r\n"), nil)
		if len(tracks) != 1 || tracks[0].Duration != "1:00" {
			t.Errorf("unexpected tracks %+v", tracks)
		}
	})
}

func TestParsePlaylistLine(t *testing.T) {
	t.Run("fields", func(t *testing.T) {
		meta, err := ParsePlaylistLine("Lofi Beats|||Lofi Girl|||PL123")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if meta.Name != "Lofi Beats" || meta.Author != "Lofi Girl" || meta.ID != "PL123" {
			t.Errorf("unexpected meta %+v", meta)
		}
	})

	t.Run("sentinel values are dropped", func(t *testing.T) {
		meta, err := ParsePlaylistLine("NA|||NA|||PL123")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if meta.Name != "" || meta.Author != "" {
			t.Errorf("expected empty name and author, got %+v", meta)
		}
	})

	t.Run("too few fields", func(t *testing.T) {
		if _, err := ParsePlaylistLine("only|||two"); !errors.Is(err, shared.ErrMalformedLine) {
			t.Errorf("expected ErrMalformedLine, got %v", err)
		}
	})
}
