package relstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aristath/newsintel/internal/domain"
)

// DefinitionRepo implements repository.IndicatorDefinitionRepo.
type DefinitionRepo struct {
	db *sqlx.DB
}

type indicatorDefRow struct {
	IndicatorID     string  `db:"indicator_id"`
	IndicatorName   string  `db:"indicator_name"`
	PESTELCategory  string  `db:"pestel_category"`
	CalculationType string  `db:"calculation_type"`
	Keywords        []byte  `db:"keywords"`
	BaseWeight      float64 `db:"base_weight"`
	ThresholdLow    float64 `db:"threshold_low"`
	ThresholdHigh   float64 `db:"threshold_high"`
	IsActive        bool    `db:"is_active"`
	CompositeOf     []byte  `db:"composite_of"`
}

func (r indicatorDefRow) toDomain() (domain.IndicatorDefinition, error) {
	var keywords []string
	if err := json.Unmarshal(r.Keywords, &keywords); err != nil {
		return domain.IndicatorDefinition{}, fmt.Errorf("unmarshal keywords: %w", err)
	}
	var compositeOf map[string]float64
	if err := json.Unmarshal(r.CompositeOf, &compositeOf); err != nil {
		return domain.IndicatorDefinition{}, fmt.Errorf("unmarshal composite_of: %w", err)
	}
	return domain.IndicatorDefinition{
		IndicatorID:     r.IndicatorID,
		IndicatorName:   r.IndicatorName,
		PESTELCategory:  domain.PESTELCategory(r.PESTELCategory),
		CalculationType: domain.CalculationType(r.CalculationType),
		Keywords:        keywords,
		BaseWeight:      r.BaseWeight,
		Thresholds:      domain.IndicatorThresholds{Low: r.ThresholdLow, High: r.ThresholdHigh},
		IsActive:        r.IsActive,
		CompositeOf:     compositeOf,
	}, nil
}

const definitionColumns = `indicator_id, indicator_name, pestel_category, calculation_type, keywords, base_weight, threshold_low, threshold_high, is_active, composite_of`

// Get returns one indicator definition by ID.
func (r *DefinitionRepo) Get(ctx context.Context, indicatorID string) (domain.IndicatorDefinition, error) {
	var row indicatorDefRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`SELECT `+definitionColumns+` FROM indicator_definitions WHERE indicator_id = ?`), indicatorID)
	if err != nil {
		return domain.IndicatorDefinition{}, fmt.Errorf("get indicator definition: %w", err)
	}
	return row.toDomain()
}

// ListActive returns every indicator definition with is_active = true.
func (r *DefinitionRepo) ListActive(ctx context.Context) ([]domain.IndicatorDefinition, error) {
	var rows []indicatorDefRow
	err := r.db.SelectContext(ctx, &rows, `SELECT `+definitionColumns+` FROM indicator_definitions WHERE is_active = true`)
	if err != nil {
		return nil, fmt.Errorf("list active indicator definitions: %w", err)
	}
	out := make([]domain.IndicatorDefinition, 0, len(rows))
	for _, row := range rows {
		def, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, def)
	}
	return out, nil
}

// Upsert inserts or replaces one indicator definition.
func (r *DefinitionRepo) Upsert(ctx context.Context, def domain.IndicatorDefinition) error {
	keywords, err := jsonColumn(def.Keywords)
	if err != nil {
		return fmt.Errorf("marshal keywords: %w", err)
	}
	compositeOf, err := jsonColumn(def.CompositeOf)
	if err != nil {
		return fmt.Errorf("marshal composite_of: %w", err)
	}

	conflictTable := "excluded"
	if r.db.DriverName() == "pgx" {
		conflictTable = "EXCLUDED"
	}
	query := `INSERT INTO indicator_definitions (` + definitionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (indicator_id) DO UPDATE SET
			indicator_name = ` + conflictTable + `.indicator_name,
			pestel_category = ` + conflictTable + `.pestel_category,
			calculation_type = ` + conflictTable + `.calculation_type,
			keywords = ` + conflictTable + `.keywords,
			base_weight = ` + conflictTable + `.base_weight,
			threshold_low = ` + conflictTable + `.threshold_low,
			threshold_high = ` + conflictTable + `.threshold_high,
			is_active = ` + conflictTable + `.is_active,
			composite_of = ` + conflictTable + `.composite_of`

	_, err = r.db.ExecContext(ctx, r.db.Rebind(query),
		def.IndicatorID, def.IndicatorName, string(def.PESTELCategory), string(def.CalculationType),
		keywords, def.BaseWeight, def.Thresholds.Low, def.Thresholds.High, def.IsActive, compositeOf)
	if err != nil {
		return fmt.Errorf("upsert indicator definition: %w", err)
	}
	return nil
}

// ValueRepo implements repository.IndicatorValueRepo (and
// internal/indicators.ValueRepo, an identical shape).
type ValueRepo struct {
	db *sqlx.DB
}

type indicatorValueRow struct {
	IndicatorID    string    `db:"indicator_id"`
	TS             time.Time `db:"ts"`
	Value          float64   `db:"value"`
	Confidence     float64   `db:"confidence"`
	ArticleCount   int       `db:"article_count"`
	SourceArticles []byte    `db:"source_articles"`
	RawCount       int       `db:"raw_count"`
	SentimentScore *float64  `db:"sentiment_score"`
}

func (r indicatorValueRow) toDomain() (domain.IndicatorValue, error) {
	var sourceArticles []string
	if err := json.Unmarshal(r.SourceArticles, &sourceArticles); err != nil {
		return domain.IndicatorValue{}, fmt.Errorf("unmarshal source_articles: %w", err)
	}
	return domain.IndicatorValue{
		IndicatorID:    r.IndicatorID,
		Timestamp:      r.TS,
		Value:          r.Value,
		Confidence:     r.Confidence,
		ArticleCount:   r.ArticleCount,
		SourceArticles: sourceArticles,
		RawCount:       r.RawCount,
		SentimentScore: r.SentimentScore,
	}, nil
}

const valueColumns = `indicator_id, ts, value, confidence, article_count, source_articles, raw_count, sentiment_score`

// Append persists one time-series point. Append-only; never mutated.
func (r *ValueRepo) Append(ctx context.Context, v domain.IndicatorValue) error {
	sourceArticles, err := jsonColumn(v.SourceArticles)
	if err != nil {
		return fmt.Errorf("marshal source_articles: %w", err)
	}
	_, err = r.db.ExecContext(ctx, r.db.Rebind(`INSERT INTO indicator_values (`+valueColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		v.IndicatorID, v.Timestamp, v.Value, v.Confidence, v.ArticleCount, sourceArticles, v.RawCount, v.SentimentScore)
	if err != nil {
		return fmt.Errorf("append indicator value: %w", err)
	}
	return nil
}

// Range returns every IndicatorValue for indicatorID within [from, to].
func (r *ValueRepo) Range(ctx context.Context, indicatorID string, from, to time.Time) ([]domain.IndicatorValue, error) {
	var rows []indicatorValueRow
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`SELECT `+valueColumns+` FROM indicator_values WHERE indicator_id = ? AND ts >= ? AND ts <= ? ORDER BY ts ASC`),
		indicatorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("range indicator values: %w", err)
	}
	out := make([]domain.IndicatorValue, 0, len(rows))
	for _, row := range rows {
		v, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Latest returns the most recent IndicatorValue for indicatorID.
func (r *ValueRepo) Latest(ctx context.Context, indicatorID string) (domain.IndicatorValue, bool, error) {
	var row indicatorValueRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`SELECT `+valueColumns+` FROM indicator_values WHERE indicator_id = ? ORDER BY ts DESC LIMIT 1`), indicatorID)
	if err != nil {
		if isNoRows(err) {
			return domain.IndicatorValue{}, false, nil
		}
		return domain.IndicatorValue{}, false, fmt.Errorf("latest indicator value: %w", err)
	}
	v, err := row.toDomain()
	if err != nil {
		return domain.IndicatorValue{}, false, err
	}
	return v, true, nil
}

// EventRepo implements repository.IndicatorEventRepo.
type EventRepo struct {
	db *sqlx.DB
}

// Append persists one indicator-level event.
func (r *EventRepo) Append(ctx context.Context, e domain.IndicatorEvent) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`INSERT INTO indicator_events (event_id, indicator_id, ts, event_type, severity, value_before, value_after, acknowledged)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		e.EventID, e.IndicatorID, e.Timestamp, string(e.EventType), e.Severity, e.ValueBefore, e.ValueAfter, e.Acknowledged)
	if err != nil {
		return fmt.Errorf("append indicator event: %w", err)
	}
	return nil
}

// Range returns indicator events for indicatorID within [from, to].
func (r *EventRepo) Range(ctx context.Context, indicatorID string, from, to time.Time) ([]domain.IndicatorEvent, error) {
	type row struct {
		EventID      string    `db:"event_id"`
		IndicatorID  string    `db:"indicator_id"`
		TS           time.Time `db:"ts"`
		EventType    string    `db:"event_type"`
		Severity     string    `db:"severity"`
		ValueBefore  float64   `db:"value_before"`
		ValueAfter   float64   `db:"value_after"`
		Acknowledged bool      `db:"acknowledged"`
	}
	var rows []row
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`SELECT event_id, indicator_id, ts, event_type, severity, value_before, value_after, acknowledged FROM indicator_events WHERE indicator_id = ? AND ts >= ? AND ts <= ? ORDER BY ts ASC`),
		indicatorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("range indicator events: %w", err)
	}
	out := make([]domain.IndicatorEvent, len(rows))
	for i, rr := range rows {
		out[i] = domain.IndicatorEvent{
			EventID: rr.EventID, IndicatorID: rr.IndicatorID, Timestamp: rr.TS,
			EventType: domain.IndicatorEventType(rr.EventType), Severity: rr.Severity,
			ValueBefore: rr.ValueBefore, ValueAfter: rr.ValueAfter, Acknowledged: rr.Acknowledged,
		}
	}
	return out, nil
}

// Acknowledge marks one indicator event as acknowledged.
func (r *EventRepo) Acknowledge(ctx context.Context, eventID string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE indicator_events SET acknowledged = true WHERE event_id = ?`), eventID)
	if err != nil {
		return fmt.Errorf("acknowledge indicator event: %w", err)
	}
	return nil
}
