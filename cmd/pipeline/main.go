package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/aristath/newsintel/internal/config"
	"github.com/aristath/newsintel/pkg/logger"
)

var (
	logLevel  string
	logPretty bool
)

func main() {
	root := &cobra.Command{
		Use:   "pipeline",
		Short: "newsintel content pipeline",
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override NEWSINTEL_LOG_LEVEL")
	root.PersistentFlags().BoolVar(&logPretty, "pretty", false, "console-formatted log output")

	root.AddCommand(serveCmd())
	root.AddCommand(runCmd())
	root.AddCommand(backfillCmd())
	root.AddCommand(seedIndicatorsCmd())
	root.AddCommand(learnCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfigAndLogger is the shared prelude every subcommand starts with:
// load env config, then build a logger honoring both the env var and the
// --log-level/--pretty flag overrides.
func loadConfigAndLogger() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Logger{}, fmt.Errorf("loading configuration: %w", err)
	}
	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	log := logger.New(logger.Config{Level: level, Pretty: logPretty || cfg.DevMode})
	return cfg, log, nil
}
