package indicators

import (
	"context"
	"time"

	"github.com/aristath/newsintel/internal/domain"
)

// ValueRepo is the minimal time-series persistence surface Aggregator needs.
type ValueRepo interface {
	Append(ctx context.Context, value domain.IndicatorValue) error
	Range(ctx context.Context, indicatorID string, from, to time.Time) ([]domain.IndicatorValue, error)
	Latest(ctx context.Context, indicatorID string) (domain.IndicatorValue, bool, error)
}

// ArticleSource supplies the enriched-article surface Aggregator matches
// keywords against: Candidates returns the articles (with their sentiment),
// and Body returns one article's text by ID. Run fetches every candidate's
// body up front and keeps them all in memory for the rest of the run.
type ArticleSource interface {
	Candidates(ctx context.Context, since time.Time) ([]MatchedArticle, error)
	Body(ctx context.Context, articleID string) (string, error)
}

// Aggregator runs one L3 cycle: match articles to every active indicator,
// calculate values, roll up composites, and persist. Composite/ratio/
// weighted_average indicators are calculated after every leaf indicator so
// they can read sibling values from the same run.
type Aggregator struct {
	repo    ValueRepo
	source  ArticleSource
	trend   *TrendDetector
	forecast *Forecaster
}

func NewAggregator(repo ValueRepo, source ArticleSource) *Aggregator {
	return &Aggregator{repo: repo, source: source, trend: NewTrendDetector(), forecast: NewForecaster()}
}

// RunResult is the per-indicator outcome plus the roll-up for one cycle.
type RunResult struct {
	Values         map[string]domain.IndicatorValue
	CategoryScores map[domain.PESTELCategory]float64
	NAIValue       float64
	NAIBand        domain.NAIBand
}

// Run executes one L3 aggregation cycle over every active definition.
// Definitions with a leaf calculation type are computed first (they have
// no dependency on this run's other values); composite/ratio/
// weighted_average definitions are computed second so CompositeOf lookups
// resolve against fresh values (spec.md 4.6: "emit one IndicatorValue per
// active indicator per run, even when article_count=0").
func (a *Aggregator) Run(ctx context.Context, defs []domain.IndicatorDefinition, since time.Time, now time.Time) (RunResult, error) {
	candidates, err := a.source.Candidates(ctx, since)
	if err != nil {
		return RunResult{}, err
	}

	bodies := make(map[string]string, len(candidates))
	for _, c := range candidates {
		body, err := a.source.Body(ctx, c.ArticleID)
		if err != nil {
			continue
		}
		bodies[c.ArticleID] = body
	}

	values := make(map[string]domain.IndicatorValue, len(defs))
	defsByID := make(map[string]domain.IndicatorDefinition, len(defs))

	var leaf, composite []domain.IndicatorDefinition
	for _, def := range defs {
		if !def.IsActive {
			continue
		}
		defsByID[def.IndicatorID] = def
		switch def.CalculationType {
		case domain.CalcComposite, domain.CalcRatio, domain.CalcWeightedAverage:
			composite = append(composite, def)
		default:
			leaf = append(leaf, def)
		}
	}

	for _, def := range leaf {
		matched := MatchArticles(def, candidates, bodies)
		value := Calculate(def, matched, nil, now)
		values[def.IndicatorID] = value
	}
	for _, def := range composite {
		value := Calculate(def, nil, values, now)
		values[def.IndicatorID] = value
	}

	for _, value := range values {
		if err := a.enforceMonotonicAndAppend(ctx, value); err != nil {
			return RunResult{}, err
		}
	}

	categoryScores := CategoryScores(defsByID, values)
	naiValue, naiBand := NAI(categoryScores)

	return RunResult{Values: values, CategoryScores: categoryScores, NAIValue: naiValue, NAIBand: naiBand}, nil
}

// enforceMonotonicAndAppend drops a value if a newer one is already stored
// for this indicator (spec.md 5: "a stale value arriving after a newer one
// is dropped").
func (a *Aggregator) enforceMonotonicAndAppend(ctx context.Context, value domain.IndicatorValue) error {
	latest, found, err := a.repo.Latest(ctx, value.IndicatorID)
	if err != nil {
		return err
	}
	if found && !value.Timestamp.After(latest.Timestamp) {
		return nil
	}
	return a.repo.Append(ctx, value)
}

// Trend runs trend detection for one indicator over its full stored
// window.
func (a *Aggregator) Trend(ctx context.Context, indicatorID string, now time.Time) (domain.TrendResult, error) {
	series, err := a.repo.Range(ctx, indicatorID, now.Add(-60*24*time.Hour), now)
	if err != nil {
		return domain.TrendResult{}, err
	}
	return a.trend.Detect(indicatorID, series), nil
}

// Forecast runs the ensemble forecaster for one indicator over the given
// horizon.
func (a *Aggregator) Forecast(ctx context.Context, indicatorID string, horizonDays int, now time.Time) ([]domain.ForecastPoint, error) {
	series, err := a.repo.Range(ctx, indicatorID, now.Add(-60*24*time.Hour), now)
	if err != nil {
		return nil, err
	}
	return a.forecast.Forecast(series, horizonDays), nil
}
