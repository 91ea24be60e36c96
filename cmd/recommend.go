package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/build"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/output"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/recommend"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/scoring"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/snapshot"
)

var recommendFrom string

var recommendCmd = &cobra.Command{
	Use:   "recommend [catalog...]",
	Short: "Rank the catalog into a top-N list",
	Long: `Recommend blends each series' retention score with its community rating
and prints the best picks with a short reason for each. Series without
episode scores are ranked on their community rating alone.

With --from the stats stored in a snapshot are ranked without rebuilding.`,
	Example: `  rekonime recommend --limit 5
  rekonime recommend --from data/stats.json -f markdown`,
	RunE: func(cmd *cobra.Command, args []string) error {
		candidates, err := recommendCandidates(cmd, args)
		if err != nil {
			return err
		}
		report := &output.RecommendReport{
			Entries:    recommend.Rank(candidates, cfg.Limit),
			Candidates: len(candidates),
		}
		if err := newOutputter(cmd).Emit(func(f output.Formatter) error { return f.Recommendations(report) }); err != nil {
			return fmt.Errorf("error formatting output: %w", err)
		}
		return nil
	},
}

func init() {
	recommendCmd.Flags().IntP("limit", "n", 10, "Number of picks, 0 for all")
	recommendCmd.Flags().StringVar(&recommendFrom, "from", "", "Rank the stats stored in a snapshot")
	rootCmd.AddCommand(recommendCmd)
}

func recommendCandidates(cmd *cobra.Command, patterns []string) ([]recommend.Candidate, error) {
	if recommendFrom != "" {
		p, err := snapshot.Load(recommendFrom)
		if err != nil {
			return nil, err
		}
		out := make([]recommend.Candidate, len(p.Series))
		for i, e := range p.Series {
			out[i] = recommend.Candidate{
				Series: scoring.Series{ID: e.ID, Title: e.Title, CommunityScore: e.CommunityScore},
				Stats:  e.Stats,
			}
		}
		return out, nil
	}

	res, err := build.NewOrchestrator(cfg, build.Options{Patterns: patterns}).Run(cmd.Context())
	if err != nil {
		return nil, err
	}
	return res.Candidates(), nil
}
