package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/snapshot"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and formula version",
	// Skip config loading so version works anywhere.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "rekonime %s (formula v%d)\n", Version, snapshot.FormulaVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
