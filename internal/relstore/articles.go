package relstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aristath/newsintel/internal/domain"
	"github.com/aristath/newsintel/internal/indicators"
)

// ArticleRepo persists L2 output (EnrichedArticle) and serves it back
// through indicators.ArticleSource, the seam internal/pipeline.
// Orchestrator.Run uses to hand L2's work to L3.
type ArticleRepo struct {
	db *sqlx.DB
}

// Save satisfies internal/pipeline.EnrichedArticleStore.
func (r *ArticleRepo) Save(ctx context.Context, a domain.EnrichedArticle) error {
	categoryConfidences, err := jsonColumn(a.CategoryConfidences)
	if err != nil {
		return fmt.Errorf("marshal category_confidences: %w", err)
	}
	entities, err := jsonColumn(a.Entities)
	if err != nil {
		return fmt.Errorf("marshal entities: %w", err)
	}
	metadata, err := jsonColumn(a.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	conflictTable := "excluded"
	if r.db.DriverName() == "pgx" {
		conflictTable = "EXCLUDED"
	}
	query := `INSERT INTO enriched_articles
		(article_id, source_id, scrape_time, title, body, author, publish_date, url, pestel_category, category_confidences, urgency_level, business_relevance, sentiment_score, entities, topic_id, quality_score, quality_band, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (article_id) DO UPDATE SET
			source_id = ` + conflictTable + `.source_id, scrape_time = ` + conflictTable + `.scrape_time,
			title = ` + conflictTable + `.title, body = ` + conflictTable + `.body,
			author = ` + conflictTable + `.author, publish_date = ` + conflictTable + `.publish_date,
			url = ` + conflictTable + `.url, pestel_category = ` + conflictTable + `.pestel_category,
			category_confidences = ` + conflictTable + `.category_confidences, urgency_level = ` + conflictTable + `.urgency_level,
			business_relevance = ` + conflictTable + `.business_relevance, sentiment_score = ` + conflictTable + `.sentiment_score,
			entities = ` + conflictTable + `.entities, topic_id = ` + conflictTable + `.topic_id,
			quality_score = ` + conflictTable + `.quality_score, quality_band = ` + conflictTable + `.quality_band,
			metadata = ` + conflictTable + `.metadata`

	_, err = r.db.ExecContext(ctx, r.db.Rebind(query),
		a.ArticleID, a.SourceID, a.ScrapeTime, a.Title, a.Body, a.Author, a.PublishDate, a.URL,
		string(a.PESTELCategory), categoryConfidences, string(a.UrgencyLevel), a.BusinessRelevance,
		a.Sentiment.Score, entities, a.TopicID, a.QualityScore, string(a.QualityBand), metadata)
	if err != nil {
		return fmt.Errorf("save enriched article: %w", err)
	}
	return nil
}

// Candidates satisfies indicators.ArticleSource: every enriched article
// scraped at or after since, carrying just the fields MatchArticles and
// Calculate need before MatchArticles rescans the full body.
func (r *ArticleRepo) Candidates(ctx context.Context, since time.Time) ([]indicators.MatchedArticle, error) {
	type row struct {
		ArticleID string  `db:"article_id"`
		Sentiment float64 `db:"sentiment_score"`
	}
	var rows []row
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`SELECT article_id, sentiment_score FROM enriched_articles WHERE scrape_time >= ?`), since)
	if err != nil {
		return nil, fmt.Errorf("article candidates: %w", err)
	}
	out := make([]indicators.MatchedArticle, len(rows))
	for i, row := range rows {
		out[i] = indicators.MatchedArticle{ArticleID: row.ArticleID, Sentiment: row.Sentiment}
	}
	return out, nil
}

// Body satisfies indicators.ArticleSource.
func (r *ArticleRepo) Body(ctx context.Context, articleID string) (string, error) {
	var body string
	err := r.db.GetContext(ctx, &body, r.db.Rebind(`SELECT body FROM enriched_articles WHERE article_id = ?`), articleID)
	if err != nil {
		if isNoRows(err) {
			return "", nil
		}
		return "", fmt.Errorf("article body: %w", err)
	}
	return body, nil
}
