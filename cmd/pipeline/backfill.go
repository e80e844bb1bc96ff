package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

// backfillCmd replays a directory of day-chunked raw-article JSON files
// through the pipeline in chronological order, one Orchestrator.Run per
// day, so the indicator time series and insight bundles build up the way
// they would have from live ingestion. Grounded on the original project's
// historical-data generation scripts, which populate the same tables in
// bulk ahead of a demo rather than waiting for days of live scraping.
func backfillCmd() *cobra.Command {
	var dir, companiesPath string

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "replay a directory of day-chunked raw-article files through the pipeline",
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

			entries, err := os.ReadDir(dir)
			if err != nil {
				return fmt.Errorf("reading %s: %w", dir, err)
			}
			var files []string
			for _, e := range entries {
				if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
					continue
				}
				files = append(files, filepath.Join(dir, e.Name()))
			}
			sort.Strings(files)
			if len(files) == 0 {
				return fmt.Errorf("no .json files found in %s", dir)
			}

			companies, err := loadCompanyProfiles(companiesPath)
			if err != nil {
				return err
			}

			defs, err := a.store.Definitions().ListActive(ctx)
			if err != nil {
				return fmt.Errorf("loading indicator definitions: %w", err)
			}

			for i, path := range files {
				articles, err := loadRawArticles(path)
				if err != nil {
					return err
				}

				now := dayStampFor(len(files) - 1 - i)
				since := now.Add(-24 * time.Hour)

				snapshots, err := buildSnapshots(ctx, a, defs, companies, now)
				if err != nil {
					return err
				}

				outcome, err := a.orchestrator.Run(ctx, articles, defs, since, companies, snapshots, now)
				if err != nil {
					return fmt.Errorf("backfilling %s: %w", path, err)
				}

				log.Info().
					Str("file", path).
					Int("submitted", len(articles)).
					Int("accepted", len(outcome.Accepted)).
					Int("duplicates", outcome.Duplicates).
					Msg("backfilled one day")
			}

			log.Info().Int("days", len(files)).Msg("backfill complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "directory of day-chunked raw-article JSON files, one file per day")
	cmd.Flags().StringVar(&companiesPath, "companies", "", "path to a JSON array of company profiles")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}

// dayStampFor returns midnight UTC i days before today, letting a
// backfill's synthetic "now" walk forward one day per file regardless of
// the files' own naming.
func dayStampFor(daysAgo int) time.Time {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	return today.AddDate(0, 0, -daysAgo)
}
