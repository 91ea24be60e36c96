// Package build runs the catalog pipeline: discover and load the catalog,
// derive the shared score profile, compute every series' stats in parallel
// and assemble a versioned payload.
package build

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/catalog"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/config"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/discovery"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/logging"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/recommend"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/scoring"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/snapshot"
)

// Options holds per-run settings that are not part of the configuration.
type Options struct {
	// Patterns overrides the configured catalog globs when non-empty.
	Patterns []string

	// PreviousPath is a payload to diff the new build against.
	PreviousPath string

	// Now and NewID default to time.Now and a random UUID.
	Now   func() time.Time
	NewID func() string
}

// Orchestrator coordinates one catalog build.
type Orchestrator struct {
	cfg    *config.Config
	opts   Options
	engine scoring.Engine
}

// NewOrchestrator creates a new build orchestrator.
func NewOrchestrator(cfg *config.Config, opts Options) *Orchestrator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.NewString() }
	}
	return &Orchestrator{
		cfg:    cfg,
		opts:   opts,
		engine: scoring.NewEngine(cfg.Scoring),
	}
}

// Engine returns the scoring engine built from the configured tuning.
func (o *Orchestrator) Engine() scoring.Engine {
	return o.engine
}

// Result holds the outcome of a build.
type Result struct {
	Payload  *snapshot.Payload
	Catalog  *catalog.Catalog
	Files    int
	Diff     *snapshot.StaleReport
	Duration time.Duration
}

// Candidates pairs each catalog record with its computed stats for ranking.
func (r *Result) Candidates() []recommend.Candidate {
	out := make([]recommend.Candidate, len(r.Catalog.Records))
	for i, rec := range r.Catalog.Records {
		out[i] = recommend.Candidate{Series: rec.Series(), Stats: r.Payload.Series[i].Stats}
	}
	return out
}

// LoadCatalog discovers and loads the catalog files. It returns the number
// of files read.
func (o *Orchestrator) LoadCatalog(ctx context.Context) (*catalog.Catalog, int, error) {
	patterns := o.opts.Patterns
	if len(patterns) == 0 {
		patterns = o.cfg.Catalog
	}

	files, err := discovery.NewFileDiscovery(o.cfg.Root, o.cfg.FollowSymlinks).DiscoverFiles(patterns)
	if err != nil {
		return nil, 0, fmt.Errorf("error discovering catalog: %w", err)
	}
	if len(files) == 0 {
		return nil, 0, fmt.Errorf("no catalog files matched %v", patterns)
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	loader, err := catalog.NewLoader(o.cfg.Strict)
	if err != nil {
		return nil, 0, err
	}
	cat, err := loader.Load(files)
	if err != nil {
		return nil, 0, fmt.Errorf("error loading catalog: %w", err)
	}

	logging.Info().Int("files", len(files)).Int("series", len(cat.Records)).Int("problems", len(cat.Problems)).Msg("catalog loaded")
	return cat, len(files), nil
}

// Run executes the full build.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	start := o.opts.Now()

	cat, nFiles, err := o.LoadCatalog(ctx)
	if err != nil {
		return nil, err
	}

	series := cat.Series()
	profile := scoring.BuildScoreProfile(series)
	logging.Debug().
		Float64("p35", profile.P35).Float64("p50", profile.P50).Float64("p65", profile.P65).
		Int("samples", profile.SampleSize).Str("source", profile.Source).
		Msg("score profile")

	stats, err := ComputeAll(ctx, o.engine, series, profile, o.cfg.Concurrency)
	if err != nil {
		return nil, err
	}

	payload := &snapshot.Payload{
		FormulaVersion: snapshot.FormulaVersion,
		BuildID:        o.opts.NewID(),
		GeneratedAt:    start.UTC(),
		ScoreProfile:   profile,
		Tuning:         o.engine.Tuning(),
		Series:         make([]snapshot.Entry, len(series)),
	}
	for i, s := range series {
		payload.Series[i] = snapshot.Entry{
			ID:             s.ID,
			Title:          s.Title,
			CommunityScore: s.CommunityScore,
			Fingerprint:    snapshot.Fingerprint(s),
			Stats:          stats[i],
		}
	}

	result := &Result{Payload: payload, Catalog: cat, Files: nFiles}

	if o.opts.PreviousPath != "" {
		prev, err := snapshot.Load(o.opts.PreviousPath)
		if err != nil {
			return nil, fmt.Errorf("error loading previous payload: %w", err)
		}
		diff := snapshot.Diff(prev, payload)
		result.Diff = &diff
	}

	result.Duration = o.opts.Now().Sub(start)
	logging.Info().Str("build", payload.BuildID).Int("series", len(series)).Dur("took", result.Duration).Msg("build complete")
	return result, nil
}

// ComputeAll computes stats for every series with at most concurrency
// workers. Results are in input order. Cancelling ctx stops scheduling new
// series and returns ctx.Err().
func ComputeAll(ctx context.Context, engine scoring.Engine, series []scoring.Series, profile scoring.ScoreProfile, concurrency int) ([]scoring.StatsResult, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	results := make([]scoring.StatsResult, len(series))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i := range series {
		if err := gctx.Err(); err != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = engine.ComputeStats(series[i], &profile)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
