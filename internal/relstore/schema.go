package relstore

// schemaStatements returns the DDL for one backend. SQLite and Postgres
// diverge on timestamp and JSON column types; everything else is kept
// identical on purpose so the two backends can be reasoned about as one
// schema.
func schemaStatements(driver string) []string {
	boolType, tsType, jsonType, pk := "BOOLEAN", "TIMESTAMP", "TEXT", "TEXT PRIMARY KEY"
	if driver == "pgx" {
		tsType = "TIMESTAMPTZ"
		jsonType = "JSONB"
	}

	return []string{
		`CREATE TABLE IF NOT EXISTS source_reputation (
			source_id ` + pk + `,
			tier TEXT NOT NULL,
			reputation_score DOUBLE PRECISION NOT NULL,
			quality_score DOUBLE PRECISION NOT NULL,
			accepted_count INTEGER NOT NULL,
			rejected_count INTEGER NOT NULL,
			auto_disabled ` + boolType + ` NOT NULL,
			last_updated ` + tsType + ` NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS reputation_history (
			source_id TEXT NOT NULL,
			ts ` + tsType + ` NOT NULL,
			score DOUBLE PRECISION NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reputation_history_source_ts ON reputation_history(source_id, ts)`,

		`CREATE TABLE IF NOT EXISTS indicator_definitions (
			indicator_id ` + pk + `,
			indicator_name TEXT NOT NULL,
			pestel_category TEXT NOT NULL,
			calculation_type TEXT NOT NULL,
			keywords ` + jsonType + ` NOT NULL,
			base_weight DOUBLE PRECISION NOT NULL,
			threshold_low DOUBLE PRECISION NOT NULL,
			threshold_high DOUBLE PRECISION NOT NULL,
			is_active ` + boolType + ` NOT NULL,
			composite_of ` + jsonType + ` NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS indicator_values (
			indicator_id TEXT NOT NULL,
			ts ` + tsType + ` NOT NULL,
			value DOUBLE PRECISION NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			article_count INTEGER NOT NULL,
			source_articles ` + jsonType + ` NOT NULL,
			raw_count INTEGER NOT NULL,
			sentiment_score DOUBLE PRECISION
		)`,
		`CREATE INDEX IF NOT EXISTS idx_indicator_values_id_ts ON indicator_values(indicator_id, ts)`,

		`CREATE TABLE IF NOT EXISTS indicator_events (
			event_id ` + pk + `,
			indicator_id TEXT NOT NULL,
			ts ` + tsType + ` NOT NULL,
			event_type TEXT NOT NULL,
			severity TEXT NOT NULL,
			value_before DOUBLE PRECISION NOT NULL,
			value_after DOUBLE PRECISION NOT NULL,
			acknowledged ` + boolType + ` NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_indicator_events_id_ts ON indicator_events(indicator_id, ts)`,

		`CREATE TABLE IF NOT EXISTS business_risks (
			code TEXT NOT NULL,
			company_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			category TEXT NOT NULL,
			probability DOUBLE PRECISION NOT NULL,
			impact DOUBLE PRECISION NOT NULL,
			urgency INTEGER NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			final_score DOUBLE PRECISION NOT NULL,
			severity_level TEXT NOT NULL,
			triggering_indicators ` + jsonType + ` NOT NULL,
			detection_method TEXT NOT NULL,
			reasoning TEXT NOT NULL,
			requires_immediate_action ` + boolType + ` NOT NULL,
			narrative TEXT NOT NULL,
			recommendations ` + jsonType + ` NOT NULL,
			detected_at ` + tsType + ` NOT NULL,
			PRIMARY KEY (company_id, code)
		)`,

		`CREATE TABLE IF NOT EXISTS business_opportunities (
			code TEXT NOT NULL,
			company_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			category TEXT NOT NULL,
			probability DOUBLE PRECISION NOT NULL,
			impact DOUBLE PRECISION NOT NULL,
			urgency INTEGER NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			final_score DOUBLE PRECISION NOT NULL,
			severity_level TEXT NOT NULL,
			triggering_indicators ` + jsonType + ` NOT NULL,
			detection_method TEXT NOT NULL,
			reasoning TEXT NOT NULL,
			feasibility DOUBLE PRECISION NOT NULL,
			value DOUBLE PRECISION NOT NULL,
			narrative TEXT NOT NULL,
			recommendations ` + jsonType + ` NOT NULL,
			detected_at ` + tsType + ` NOT NULL,
			PRIMARY KEY (company_id, code)
		)`,

		`CREATE TABLE IF NOT EXISTS enriched_articles (
			article_id ` + pk + `,
			source_id TEXT NOT NULL,
			scrape_time ` + tsType + ` NOT NULL,
			title TEXT NOT NULL,
			body TEXT NOT NULL,
			author TEXT NOT NULL,
			publish_date ` + tsType + ` NOT NULL,
			url TEXT NOT NULL,
			pestel_category TEXT NOT NULL,
			category_confidences ` + jsonType + ` NOT NULL,
			urgency_level TEXT NOT NULL,
			business_relevance DOUBLE PRECISION NOT NULL,
			sentiment_score DOUBLE PRECISION NOT NULL,
			entities ` + jsonType + ` NOT NULL,
			topic_id TEXT NOT NULL,
			quality_score DOUBLE PRECISION NOT NULL,
			quality_band TEXT NOT NULL,
			metadata ` + jsonType + ` NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_enriched_articles_scrape_time ON enriched_articles(scrape_time)`,
	}
}
