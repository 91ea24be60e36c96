package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/build"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/output"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/scoring"
)

var profileCmd = &cobra.Command{
	Use:   "profile [catalog...]",
	Short: "Show the catalog score profile",
	Long: `Profile prints the 35th, 50th and 65th percentiles of every episode score
in the catalog. Catalogs with fewer than 5 episode scores fall back to the
default baseline.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, _, err := build.NewOrchestrator(cfg, build.Options{Patterns: args}).LoadCatalog(cmd.Context())
		if err != nil {
			return err
		}
		report := &output.ProfileReport{
			Profile: scoring.BuildScoreProfile(cat.Series()),
			Series:  len(cat.Records),
		}
		if err := newOutputter(cmd).Emit(func(f output.Formatter) error { return f.Profile(report) }); err != nil {
			return fmt.Errorf("error formatting output: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
}
