package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aristath/newsintel/internal/domain"
)

// seedIndicatorsCmd upserts a batch of indicator definitions from a JSON
// file, the Go equivalent of the original project's
// populate_indicator_definitions.py one-shot seeding script.
func seedIndicatorsCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "seed-indicators",
		Short: "upsert indicator definitions from a JSON file",
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

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			var defs []domain.IndicatorDefinition
			if err := json.Unmarshal(data, &defs); err != nil {
				return fmt.Errorf("parsing %s: %w", path, err)
			}

			for _, def := range defs {
				if err := a.store.Definitions().Upsert(ctx, def); err != nil {
					return fmt.Errorf("upserting %s: %w", def.IndicatorID, err)
				}
			}
			log.Info().Int("count", len(defs)).Msg("seeded indicator definitions")
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "definitions", "", "path to a JSON array of indicator definitions")
	_ = cmd.MarkFlagRequired("definitions")
	return cmd
}
