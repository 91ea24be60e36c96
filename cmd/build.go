package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/build"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/logging"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/output"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/snapshot"
)

var buildPrevious string

var buildCmd = &cobra.Command{
	Use:   "build [catalog...]",
	Short: "Compute stats for the whole catalog",
	Long: `Build loads the catalog, derives the score profile and computes every
series' stats. With --snapshot the payload is written to disk; with
--previous it is compared against an earlier payload.

Arguments are files, directories or globs and replace the configured catalog.`,
	Example: `  rekonime build --snapshot data/stats.json
  rekonime build data/ --previous data/stats.json -f json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBuild(cmd, args)
	},
}

func init() {
	buildCmd.Flags().String("snapshot", "", "Write the payload to this file")
	buildCmd.Flags().StringVar(&buildPrevious, "previous", "", "Diff against a previously written payload")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	orch := build.NewOrchestrator(cfg, build.Options{
		Patterns:     args,
		PreviousPath: buildPrevious,
	})
	res, err := orch.Run(cmd.Context())
	if err != nil {
		return err
	}

	if cfg.Snapshot != "" {
		if err := snapshot.Save(cfg.Snapshot, res.Payload); err != nil {
			return err
		}
		logging.Info().Str("path", cfg.Snapshot).Msg("snapshot written")
	}

	report := &output.BuildReport{
		Payload:      res.Payload,
		Files:        res.Files,
		Problems:     res.Catalog.Problems,
		Diff:         res.Diff,
		SnapshotPath: cfg.Snapshot,
		Duration:     res.Duration,
	}
	if err := newOutputter(cmd).Emit(func(f output.Formatter) error { return f.Build(report) }); err != nil {
		return fmt.Errorf("error formatting output: %w", err)
	}
	return nil
}
