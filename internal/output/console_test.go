package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestConsoleFormatter_Build(t *testing.T) {
	tests := []struct {
		name     string
		quiet    bool
		verbose  bool
		contains []string
		excludes []string
	}{
		{
			name: "default",
			contains: []string{
				"✓ Built 2 series from 2 file(s) in 1.5s",
				"p35 3.50  p50 3.80  p65 4.10  (derived, 120 samples)",
				"build-42",
				"wrote     data/stats.json",
				"1 error(s), 1 warning(s)",
				"✘ anime.json#3 (bad): episodes.0.score: out of range",
				"⚠ anime.json#4 (dup): duplicate episode 2 dropped",
				"1 added, 0 removed, 0 changed, 1 unchanged",
			},
			excludes: []string{"no episode scores"},
		},
		{
			name:     "verbose shows info",
			verbose:  true,
			contains: []string{"· anime.json#5 (movie): no episode scores"},
		},
		{
			name:     "quiet",
			quiet:    true,
			excludes: []string{"Built"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := NewConsoleFormatter(&buf, tt.quiet, tt.verbose, true).Build(sampleBuild()); err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			out := buf.String()
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(out, unwanted) {
					t.Errorf("output should not contain %q:\n%s", unwanted, out)
				}
			}
		})
	}
}

func TestConsoleFormatter_Stats(t *testing.T) {
	var buf bytes.Buffer
	r := &StatsReport{ID: "collapse", Title: "Collapse", CommunityScore: ptr(7.2), Stats: sampleStats()}
	if err := NewConsoleFormatter(&buf, false, false, false).Stats(r); err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Collapse (collapse)", "community score", "7.2", "episodes                 12", "shark jump               ep 7, 4.50 to 2.00", "trend                    declining"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "rolling average") {
		t.Errorf("rolling average should only show in verbose mode:\n%s", out)
	}
}

func TestConsoleFormatter_StatsWithoutEpisodes(t *testing.T) {
	var buf bytes.Buffer
	r := &StatsReport{ID: "movie", Title: "Movie", CommunityScore: ptr(8.4)}
	if err := NewConsoleFormatter(&buf, false, false, false).Stats(r); err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if !strings.Contains(buf.String(), "no episode scores") {
		t.Errorf("output = %q, want a no-episodes note", buf.String())
	}
}

func TestConsoleFormatter_Recommendations(t *testing.T) {
	var buf bytes.Buffer
	if err := NewConsoleFormatter(&buf, false, false, false).Recommendations(sampleRecommendations()); err != nil {
		t.Fatalf("Recommendations() error = %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	if len(lines) < 2 {
		t.Fatalf("got %d lines, want at least 2:\n%s", len(lines), buf.String())
	}
	if want := " 1. Frieren        91.2  High retention · Low drop-off risk"; lines[0] != want {
		t.Errorf("line 0 = %q, want %q", lines[0], want)
	}
	if want := " 2. Pipe | Dream   70.0  " + "Solid all-round pick"; lines[1] != want {
		t.Errorf("line 1 = %q, want %q", lines[1], want)
	}
	if !strings.Contains(buf.String(), "2 of 5 series") {
		t.Errorf("missing footer:\n%s", buf.String())
	}

	buf.Reset()
	if err := NewConsoleFormatter(&buf, false, false, false).Recommendations(&RecommendReport{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No recommendations") {
		t.Errorf("empty list output = %q", buf.String())
	}
}

func TestConsoleFormatter_Check(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(&buf, false, false, false)

	if err := f.Check(sampleCheck(false)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "✓ stats.json is up to date (3 series)") {
		t.Errorf("fresh output = %q", buf.String())
	}

	buf.Reset()
	if err := f.Check(sampleCheck(true)); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"✗ stats.json is stale", "scoring tuning changed", "changed: x"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("stale output missing %q:\n%s", want, buf.String())
		}
	}
}

func TestConsoleFormatter_Profile(t *testing.T) {
	var buf bytes.Buffer
	r := &ProfileReport{Profile: sampleBuild().Payload.ScoreProfile, Series: 9}
	if err := NewConsoleFormatter(&buf, false, false, false).Profile(r); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Score profile", "derived from 120 episode scores across 9 series", "p50  3.80"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q:\n%s", want, buf.String())
		}
	}
}
