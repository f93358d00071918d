package cli

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

var (
	flagVerbose bool
	flagNoColor bool
)

// RootCmd is the base command.
var RootCmd = &cobra.Command{
	Use:     "swarm",
	Short:   "Load-test driver for the resilience-demo order service",
	Version: version,
	Long: `Swarm drives simulated client traffic against an order service that
demonstrates resilience patterns (circuit breaker, bulkhead, fail-fast
validation). It ships the scenario profiles and ramp shapes the demo is
exercised with, plus helpers to flip chaos injection in the collaborating
inventory and payment services.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the CLI.
func Execute() error {
	return RootCmd.Execute()
}

func setupLogging() {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    flagNoColor,
	})))
}

func init() {
	RootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	RootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")

	RootCmd.AddCommand(runCmd)
	RootCmd.AddCommand(chaosCmd)
	RootCmd.AddCommand(statusCmd)
	RootCmd.AddCommand(profilesCmd)
}
