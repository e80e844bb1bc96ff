// Package relstore implements the relational repository interfaces from
// internal/repository against two backends: SQLite (modernc.org/sqlite,
// pure Go, for local development and tests) and Postgres (jackc/pgx/v5's
// database/sql driver, for production), sharing one set of SQL statements
// through jmoiron/sqlx so the two backends stay in lockstep. Nested
// domain structures (recommendations, triggering indicators, category
// confidences) are stored as JSON columns, the same tradeoff
// internal/insights.SnapshotCache already makes for its cached bundles.
package relstore

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	_ "modernc.org/sqlite"             // registers the "sqlite" database/sql driver
)

// Store owns the connection pool. Each repository interface is
// implemented by its own thin wrapper type (ReputationRepo,
// DefinitionRepo, ValueRepo, EventRepo, InsightRepo, ArticleRepo)
// because several of those interfaces share a method name (Get, Append,
// Range) with incompatible signatures and so cannot live on one type.
type Store struct {
	db  *sqlx.DB
	log zerolog.Logger
}

// OpenSQLite opens (creating if absent) a local SQLite database file.
func OpenSQLite(path string, log zerolog.Logger) (*Store, error) {
	db, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &Store{db: db, log: log.With().Str("component", "relstore").Str("driver", "sqlite").Logger()}, nil
}

// OpenPostgres opens a connection pool against a Postgres DSN.
func OpenPostgres(dsn string, log zerolog.Logger) (*Store, error) {
	db, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	return &Store{db: db, log: log.With().Str("component", "relstore").Str("driver", "postgres").Logger()}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates every table this store needs if it does not already
// exist. Safe to call repeatedly.
func (s *Store) Migrate() error {
	for _, stmt := range schemaStatements(s.db.DriverName()) {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Reputations returns the repository.SourceReputationRepo view of this store.
func (s *Store) Reputations() *ReputationRepo { return &ReputationRepo{db: s.db} }

// Definitions returns the repository.IndicatorDefinitionRepo view.
func (s *Store) Definitions() *DefinitionRepo { return &DefinitionRepo{db: s.db} }

// Values returns the repository.IndicatorValueRepo view.
func (s *Store) Values() *ValueRepo { return &ValueRepo{db: s.db} }

// Events returns the repository.IndicatorEventRepo view.
func (s *Store) Events() *EventRepo { return &EventRepo{db: s.db} }

// Insights returns the repository.BusinessInsightRepo view.
func (s *Store) Insights() *InsightRepo { return &InsightRepo{db: s.db} }

// Articles returns the combined EnrichedArticleStore / indicators.
// ArticleSource view used by internal/pipeline and internal/indicators.
func (s *Store) Articles() *ArticleRepo { return &ArticleRepo{db: s.db} }
