package main

import (
	"context"

	"github.com/spf13/cobra"
)

// learnCmd runs one adaptive learning cycle immediately, outside the
// serve command's cron schedule. Useful for operators who want to trigger
// a cycle manually (after a bulk backfill, say) without waiting for the
// next scheduled tick.
func learnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "learn",
		Short: "run one adaptive learning cycle",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfigAndLogger()
			if err != nil {
				return err
			}

			ctx := context.Background()
			a, err := buildApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.learningOrchestrator.RunCycle(ctx); err != nil {
				return err
			}
			log.Info().Str("mode", string(cfg.Learning.Mode)).Msg("learning cycle complete")
			return nil
		},
	}
}
