package output

import (
	"time"

	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/recommend"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/scoring"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/snapshot"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/types"
)

func ptr(v float64) *float64 { return &v }

func sampleStats() scoring.StatsResult {
	eps := []scoring.Episode{}
	for i, s := range []float64{4.5, 4.5, 4.5, 4.5, 4.5, 4.5, 2, 2, 2, 2, 2, 2} {
		eps = append(eps, scoring.Episode{Index: i + 1, Score: s})
	}
	return scoring.ComputeStats(scoring.Series{ID: "collapse", Episodes: eps}, nil)
}

func sampleBuild() *BuildReport {
	return &BuildReport{
		Payload: &snapshot.Payload{
			FormulaVersion: snapshot.FormulaVersion,
			BuildID:        "build-42",
			GeneratedAt:    time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC),
			ScoreProfile:   scoring.ScoreProfile{P35: 3.5, P50: 3.8, P65: 4.1, SampleSize: 120, Source: scoring.ProfileSourceDerived},
			Tuning:         scoring.DefaultTuning(),
			Series:         []snapshot.Entry{{ID: "a"}, {ID: "b"}},
		},
		Files: 2,
		Problems: []types.ValidationError{
			{File: "anime.json", Record: 3, ID: "bad", Message: "episodes.0.score: out of range", Severity: types.SeverityError, Source: types.SourceSchema},
			{File: "anime.json", Record: 4, ID: "dup", Message: "duplicate episode 2 dropped", Severity: types.SeverityWarning, Source: types.SourceLoader},
			{File: "anime.json", Record: 5, ID: "movie", Message: "no episode scores", Severity: types.SeverityInfo, Source: types.SourceLoader},
		},
		Diff:         &snapshot.StaleReport{Added: []string{"b"}, Removed: []string{}, Changed: []string{}, Unchanged: 1},
		SnapshotPath: "data/stats.json",
		Duration:     1500 * time.Millisecond,
	}
}

func sampleRecommendations() *RecommendReport {
	return &RecommendReport{
		Entries: []recommend.Entry{
			{ID: "a", Title: "Frieren", Score: 91.2, Reason: "High retention · Low drop-off risk"},
			{ID: "b", Title: "Pipe | Dream", Score: 70, Reason: recommend.FallbackReason},
		},
		Candidates: 5,
	}
}

func sampleCheck(stale bool) *CheckReport {
	r := snapshot.StaleReport{Added: []string{}, Removed: []string{}, Changed: []string{}, Unchanged: 3}
	if stale {
		r.TuningChanged = true
		r.Changed = []string{"x"}
		r.Unchanged = 2
	}
	return &CheckReport{Path: "stats.json", BuildID: "build-42", GeneratedAt: time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC), Report: r}
}
