package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aristath/newsintel/internal/domain"
	"github.com/aristath/newsintel/internal/insights"
)

// loadRawArticles reads a JSON array of domain.RawArticle from path. There
// is no scraper implementation wired into this binary (no adapter
// implements repository.Scraper yet), so ingestion is file-driven: an
// upstream collector writes raw articles out as JSON and this command
// consumes them.
func loadRawArticles(path string) ([]domain.RawArticle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var articles []domain.RawArticle
	if err := json.Unmarshal(data, &articles); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return articles, nil
}

// loadCompanyProfiles reads a JSON array of domain.CompanyProfile from
// path, or returns an empty slice if path is empty.
func loadCompanyProfiles(path string) ([]domain.CompanyProfile, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var profiles []domain.CompanyProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return profiles, nil
}

func runCmd() *cobra.Command {
	var articlesPath, companiesPath string
	var since string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "run one pipeline cycle over a batch of raw articles",
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

			articles, err := loadRawArticles(articlesPath)
			if err != nil {
				return err
			}
			companies, err := loadCompanyProfiles(companiesPath)
			if err != nil {
				return err
			}

			defs, err := a.store.Definitions().ListActive(ctx)
			if err != nil {
				return fmt.Errorf("loading indicator definitions: %w", err)
			}

			now := time.Now().UTC()
			sinceTime := now.Add(-24 * time.Hour)
			if since != "" {
				sinceTime, err = time.Parse(time.RFC3339, since)
				if err != nil {
					return fmt.Errorf("--since must be RFC3339: %w", err)
				}
			}

			snapshots, err := buildSnapshots(ctx, a, defs, companies, now)
			if err != nil {
				return err
			}

			outcome, err := a.orchestrator.Run(ctx, articles, defs, sinceTime, companies, snapshots, now)
			if err != nil {
				return fmt.Errorf("pipeline run failed: %w", err)
			}

			log.Info().
				Int("submitted", len(articles)).
				Int("accepted", len(outcome.Accepted)).
				Int("duplicates", outcome.Duplicates).
				Int("rejected", outcome.Rejected).
				Int("indicators_updated", len(outcome.Indicators.Values)).
				Int("insight_bundles", len(outcome.Insights)).
				Msg("pipeline cycle complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&articlesPath, "articles", "", "path to a JSON array of raw articles")
	cmd.Flags().StringVar(&companiesPath, "companies", "", "path to a JSON array of company profiles")
	cmd.Flags().StringVar(&since, "since", "", "RFC3339 timestamp; indicator aggregation looks back to here (default 24h ago)")
	_ = cmd.MarkFlagRequired("articles")
	return cmd
}

// buildSnapshots assembles each company's current indicator snapshot from
// the store, the shape insights.Engine.Generate needs to score risks and
// opportunities against the business's live indicator state.
func buildSnapshots(ctx context.Context, a *app, defs []domain.IndicatorDefinition, companies []domain.CompanyProfile, now time.Time) (map[string]insights.IndicatorSnapshot, error) {
	if len(companies) == 0 {
		return nil, nil
	}

	values := make(map[string]domain.IndicatorValue, len(defs))
	for _, def := range defs {
		v, ok, err := a.store.Values().Latest(ctx, def.IndicatorID)
		if err != nil {
			return nil, fmt.Errorf("loading latest value for %s: %w", def.IndicatorID, err)
		}
		if ok {
			values[def.IndicatorID] = v
		}
	}

	snap := insights.IndicatorSnapshot{Values: values, Trends: map[string]domain.TrendResult{}}

	snapshots := make(map[string]insights.IndicatorSnapshot, len(companies))
	for _, c := range companies {
		snapshots[c.CompanyID] = snap
	}
	return snapshots, nil
}
