package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/build"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/output"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/snapshot"
)

var checkCmd = &cobra.Command{
	Use:   "check [snapshot] [catalog...]",
	Short: "Report whether a stored snapshot is stale",
	Long: `Check compares a snapshot against the current catalog, formula version and
scoring tuning. It exits with status 1 when the snapshot would change if
rebuilt. The snapshot defaults to the configured snapshot path.`,
	Run: func(cmd *cobra.Command, args []string) {
		stale, err := runCheck(cmd, args)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			exitFunc(1)
			return
		}
		if stale {
			exitFunc(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) (bool, error) {
	path := cfg.Snapshot
	if len(args) > 0 {
		path, args = args[0], args[1:]
	}
	if path == "" {
		return false, fmt.Errorf("no snapshot given: pass a path or set snapshot in the config")
	}

	p, err := snapshot.Load(path)
	if err != nil {
		return false, err
	}
	orch := build.NewOrchestrator(cfg, build.Options{Patterns: args})
	cat, _, err := orch.LoadCatalog(cmd.Context())
	if err != nil {
		return false, err
	}

	report := &output.CheckReport{
		Path:        path,
		BuildID:     p.BuildID,
		GeneratedAt: p.GeneratedAt,
		Report:      snapshot.CheckStale(p, cat.Series(), orch.Engine().Tuning()),
	}
	if err := newOutputter(cmd).Emit(func(f output.Formatter) error { return f.Check(report) }); err != nil {
		return false, fmt.Errorf("error formatting output: %w", err)
	}
	return report.Report.Stale(), nil
}
