package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aristath/newsintel/internal/presentation"
)

// serveCmd starts the L5 HTTP read surface and the adaptive learning
// cron, and blocks until SIGINT/SIGTERM, mirroring the teacher's
// cmd/server/main.go shutdown sequence.
func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "run the HTTP API and the adaptive learning loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfigAndLogger()
			if err != nil {
				return err
			}
			log.Info().Msg("starting newsintel pipeline")

			ctx := context.Background()
			a, err := buildApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			srv := presentation.New(presentation.Config{
				Port:        cfg.Port,
				Log:         log,
				Insights:    a.store.Insights(),
				Values:      a.store.Values(),
				Events:      a.store.Events(),
				Definitions: a.store.Definitions(),
				Reputation:  a.store.Reputations(),
				DevMode:     cfg.DevMode,
			})

			go func() {
				if err := srv.Start(); err != nil {
					log.Error().Err(err).Msg("HTTP server stopped")
				}
			}()

			if err := a.learningOrchestrator.Start(ctx, cfg.Learning.CycleInterval); err != nil {
				return err
			}
			defer a.learningOrchestrator.Stop()

			log.Info().Int("port", cfg.Port).Str("learning_mode", string(cfg.Learning.Mode)).Msg("pipeline started")

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}
