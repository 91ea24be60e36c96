package build

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/config"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/scoring"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/snapshot"
)

const catalogJSON = `[
  {"id": "steady", "title": "Steady", "score": 7.9,
   "episodes": [{"episode": 1, "score": 4.0}, {"episode": 2, "score": 4.1}, {"episode": 3, "score": 4.0}, {"episode": 4, "score": 4.2}]},
  {"id": "sag", "title": "Sag", "score": 6.1,
   "episodes": [{"episode": 1, "score": 3.9}, {"episode": 2, "score": 3.2}, {"episode": 3, "score": 2.8}]},
  {"id": "movie", "title": "Movie", "score": 8.4}
]`

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "data"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data", "anime.json"), []byte(body), 0o644))
	return dir
}

func testConfig(root string) *config.Config {
	return &config.Config{
		Root:        root,
		Catalog:     []string{"data/anime.json"},
		Format:      "console",
		LogFormat:   "console",
		Concurrency: 2,
		Limit:       10,
		Scoring:     scoring.DefaultTuning(),
	}
}

func fixedOptions() Options {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))
	return Options{
		Now:   func() time.Time { return at },
		NewID: func() string { return "build-1" },
	}
}

func TestRunBuildsPayload(t *testing.T) {
	root := writeCatalog(t, catalogJSON)
	res, err := NewOrchestrator(testConfig(root), fixedOptions()).Run(context.Background())
	require.NoError(t, err)

	p := res.Payload
	assert.Equal(t, snapshot.FormulaVersion, p.FormulaVersion)
	assert.Equal(t, "build-1", p.BuildID)
	assert.Equal(t, time.UTC, p.GeneratedAt.Location())
	assert.Equal(t, 1, res.Files)
	assert.Nil(t, res.Diff)

	require.Len(t, p.Series, 3)
	series := res.Catalog.Series()
	profile := scoring.BuildScoreProfile(series)
	assert.Equal(t, profile, p.ScoreProfile)
	for i, s := range series {
		assert.Equal(t, s.ID, p.Series[i].ID)
		assert.Equal(t, snapshot.Fingerprint(s), p.Series[i].Fingerprint)
		assert.Equal(t, scoring.ComputeStats(s, &profile), p.Series[i].Stats, "series %s", s.ID)
	}
}

func TestRunDiffsAgainstPrevious(t *testing.T) {
	root := writeCatalog(t, catalogJSON)
	cfg := testConfig(root)

	first, err := NewOrchestrator(cfg, fixedOptions()).Run(context.Background())
	require.NoError(t, err)
	prevPath := filepath.Join(root, "prev.json")
	require.NoError(t, snapshot.Save(prevPath, first.Payload))

	opts := fixedOptions()
	opts.PreviousPath = prevPath
	second, err := NewOrchestrator(cfg, opts).Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, second.Diff)
	assert.False(t, second.Diff.Stale())
	assert.Equal(t, 3, second.Diff.Unchanged)
}

func TestRunMissingCatalog(t *testing.T) {
	_, err := NewOrchestrator(testConfig(t.TempDir()), fixedOptions()).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog not found")
}

func TestRunPatternsOverrideConfig(t *testing.T) {
	root := writeCatalog(t, catalogJSON)
	opts := fixedOptions()
	opts.Patterns = []string{"data"}
	res, err := NewOrchestrator(testConfig(root), opts).Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Payload.Series, 3)
}

func TestRunCancelled(t *testing.T) {
	root := writeCatalog(t, catalogJSON)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewOrchestrator(testConfig(root), fixedOptions()).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestComputeAllKeepsOrder(t *testing.T) {
	var series []scoring.Series
	for i := 0; i < 40; i++ {
		eps := make([]scoring.Episode, 3+i%7)
		for j := range eps {
			eps[j] = scoring.Episode{Index: j + 1, Score: 1 + float64((i+j)%5)}
		}
		series = append(series, scoring.Series{ID: string(rune('a' + i%26)), Episodes: eps})
	}
	engine := scoring.Default()
	profile := scoring.BuildScoreProfile(series)

	for _, workers := range []int{0, 1, 4, 64} {
		got, err := ComputeAll(context.Background(), engine, series, profile, workers)
		require.NoError(t, err)
		require.Len(t, got, len(series))
		for i, s := range series {
			assert.Equal(t, engine.ComputeStats(s, &profile), got[i], "workers=%d index=%d", workers, i)
		}
	}
}

func TestResultCandidates(t *testing.T) {
	root := writeCatalog(t, catalogJSON)
	res, err := NewOrchestrator(testConfig(root), fixedOptions()).Run(context.Background())
	require.NoError(t, err)

	cands := res.Candidates()
	require.Len(t, cands, 3)
	for i, c := range cands {
		assert.Equal(t, res.Payload.Series[i].ID, c.Series.ID)
		assert.Equal(t, res.Payload.Series[i].Stats, c.Stats)
	}
}
