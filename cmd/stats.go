package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/build"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/output"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/scoring"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/snapshot"
)

var statsFrom string

var statsCmd = &cobra.Command{
	Use:   "stats <id|title> [catalog...]",
	Short: "Show every metric for one series",
	Long: `Stats computes the full metric set for one series, matched by id or by
title. The score profile is derived from the whole catalog. With --from the
stored stats of a snapshot are shown instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := statsReport(cmd, args[0], args[1:])
		if err != nil {
			return err
		}
		if err := newOutputter(cmd).Emit(func(f output.Formatter) error { return f.Stats(report) }); err != nil {
			return fmt.Errorf("error formatting output: %w", err)
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsFrom, "from", "", "Read stats from a snapshot instead of the catalog")
	rootCmd.AddCommand(statsCmd)
}

func statsReport(cmd *cobra.Command, key string, patterns []string) (*output.StatsReport, error) {
	if statsFrom != "" {
		p, err := snapshot.Load(statsFrom)
		if err != nil {
			return nil, err
		}
		e, ok := p.Find(key)
		if !ok {
			return nil, fmt.Errorf("series %q not found in %s", key, statsFrom)
		}
		return &output.StatsReport{ID: e.ID, Title: e.Title, CommunityScore: e.CommunityScore, Stats: e.Stats}, nil
	}

	orch := build.NewOrchestrator(cfg, build.Options{Patterns: patterns})
	cat, _, err := orch.LoadCatalog(cmd.Context())
	if err != nil {
		return nil, err
	}
	rec, ok := cat.Find(key)
	if !ok {
		return nil, fmt.Errorf("series %q not found in the catalog", key)
	}

	profile := scoring.BuildScoreProfile(cat.Series())
	s := rec.Series()
	return &output.StatsReport{
		ID:             s.ID,
		Title:          s.Title,
		CommunityScore: s.CommunityScore,
		Stats:          orch.Engine().ComputeStats(s, &profile),
	}, nil
}
