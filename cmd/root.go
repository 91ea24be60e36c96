package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/config"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/logging"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/outputters"
	"github.com/daffaghiffarykusuma/rekonime-sub000/internal/project"
)

// Version is set at build time.
var Version = "dev"

// exitFunc is swapped out in tests.
var exitFunc = os.Exit

var (
	configFile string
	cfg        *config.Config
)

// flagKeys maps command-line flags onto config keys.
var flagKeys = map[string]string{
	"root":            "root",
	"quiet":           "quiet",
	"verbose":         "verbose",
	"format":          "format",
	"output":          "output",
	"concurrency":     "concurrency",
	"strict":          "strict",
	"follow-symlinks": "followSymlinks",
	"log-format":      "logFormat",
	"limit":           "limit",
	"snapshot":        "snapshot",
}

var rootCmd = &cobra.Command{
	Use:   "rekonime",
	Short: "Rank anime series by how well their episodes hold an audience",
	Long: `Rekonime scores anime series from their per-episode audience ratings.

It loads a catalog of series, derives a score profile from every episode
score in it, and computes retention, churn, pacing, comfort and quality
metrics for each series. The results can be stored as a snapshot, checked
for staleness and turned into ranked recommendations.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return loadConfig(cmd) },
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitFunc(1)
	}
}

func init() {
	rootCmd.Version = Version

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "Config file (default: .rekonimerc.{json,yaml,yml} in the working directory)")
	pf.StringP("root", "r", ".", "Directory catalog patterns are resolved against (default: nearest directory with a config file or data/anime.json)")
	pf.BoolP("quiet", "q", false, "Suppress non-essential output")
	pf.BoolP("verbose", "v", false, "Enable verbose output")
	pf.StringP("format", "f", "console", "Output format for reports (console|json|markdown)")
	pf.StringP("output", "o", "", "Write the report to a file instead of stdout")
	pf.Int("concurrency", 10, "Series scored in parallel")
	pf.Bool("strict", false, "Fail when any catalog record is invalid")
	pf.Bool("follow-symlinks", false, "Follow symlinks while expanding catalog globs")
	pf.String("log-format", "console", "Log format (console|json)")
}

// loadConfig binds the flags of the running command to viper, loads the
// configuration and sets up logging.
func loadConfig(cmd *cobra.Command) error {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			_ = viper.BindPFlag(key, f)
		}
	})

	c, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	cfg = c

	// The default root climbs to the nearest directory holding a config
	// file or a default catalog.
	if cfg.Root == "." {
		root, err := project.FindProjectRoot(".")
		if err != nil {
			return fmt.Errorf("error detecting project root: %w", err)
		}
		cfg.Root = root
	}

	logging.Init(logging.Config{
		Level:  logging.LevelFor(cfg.Quiet, cfg.Verbose),
		Format: cfg.LogFormat,
		Output: cmd.ErrOrStderr(),
	})
	info := project.Detect(cfg.Root)
	logging.Debug().Str("root", cfg.Root).Str("configFile", info.ConfigFile).Strs("catalog", cfg.Catalog).Str("format", cfg.Format).Msg("configuration loaded")
	return nil
}

func newOutputter(cmd *cobra.Command) *outputters.Outputter {
	return outputters.NewOutputter(cfg, cmd.OutOrStdout())
}
