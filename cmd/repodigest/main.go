// Package main implements the repodigest CLI for flattening codebases into
// LLM-ready textual digests.
package main

import (
	"os"

	"github.com/fyrsmithlabs/repodigest/internal/config"
	"github.com/fyrsmithlabs/repodigest/internal/logging"
	"github.com/fyrsmithlabs/repodigest/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

// version is set at build time.
var version = "dev"

// Global flags shared by all commands.
var (
	configPath string
	logLevel   string
	noColor    bool
	quiet      bool
)

// cfg and log are populated by setup before any command runs.
var (
	cfg *config.Config
	log *logging.Logger
)

func main() {
	defer func() {
		if log != nil {
			_ = log.Sync()
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		ui.Errorf("%v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "repodigest",
	Short: "Flatten codebases into LLM-ready digests",
	Long: `repodigest ingests a local directory, a remote repository, or every
repository of a platform user, and flattens the result into a single
textual digest with a summary, a file tree, and the full content.`,
	Version:           version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress and informational output")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(reposCmd)
}

// setup loads configuration and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	ui.InitColors(noColor)

	if configPath == "" {
		if err := config.EnsureConfigDir(); err != nil {
			return err
		}
	}

	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}

	logCfg := logging.NewDefaultConfig()
	if quiet {
		logCfg.Level = zapcore.ErrorLevel
	}
	if logLevel != "" {
		level, err := logging.LevelFromString(logLevel)
		if err != nil {
			return err
		}
		logCfg.Level = level
	}

	log, err = logging.NewLogger(logCfg, nil)
	return err
}
