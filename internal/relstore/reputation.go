package relstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aristath/newsintel/internal/domain"
)

// ReputationRepo implements repository.SourceReputationRepo.
type ReputationRepo struct {
	db *sqlx.DB
}

type reputationRow struct {
	SourceID        string    `db:"source_id"`
	Tier            string    `db:"tier"`
	ReputationScore float64   `db:"reputation_score"`
	QualityScore    float64   `db:"quality_score"`
	AcceptedCount   int       `db:"accepted_count"`
	RejectedCount   int       `db:"rejected_count"`
	AutoDisabled    bool      `db:"auto_disabled"`
	LastUpdated     time.Time `db:"last_updated"`
}

// Get returns a source's current reputation row.
func (r *ReputationRepo) Get(ctx context.Context, sourceID string) (domain.SourceReputation, bool, error) {
	var row reputationRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`SELECT source_id, tier, reputation_score, quality_score, accepted_count, rejected_count, auto_disabled, last_updated FROM source_reputation WHERE source_id = ?`), sourceID)
	if err != nil {
		if isNoRows(err) {
			return domain.SourceReputation{}, false, nil
		}
		return domain.SourceReputation{}, false, fmt.Errorf("get reputation: %w", err)
	}
	return domain.SourceReputation{
		SourceID:        row.SourceID,
		Tier:            domain.ReputationTier(row.Tier),
		ReputationScore: row.ReputationScore,
		QualityScore:    row.QualityScore,
		AcceptedCount:   row.AcceptedCount,
		RejectedCount:   row.RejectedCount,
		AutoDisabled:    row.AutoDisabled,
		LastUpdated:     row.LastUpdated,
	}, true, nil
}

// Update upserts a source's reputation row inside a transaction, per
// spec.md section 6's ACID requirement for reputation writes.
func (r *ReputationRepo) Update(ctx context.Context, rep domain.SourceReputation) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("update reputation: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, r.db.Rebind(r.upsertSQL()),
		rep.SourceID, string(rep.Tier), rep.ReputationScore, rep.QualityScore,
		rep.AcceptedCount, rep.RejectedCount, rep.AutoDisabled, rep.LastUpdated); err != nil {
		return fmt.Errorf("update reputation: exec: %w", err)
	}
	return tx.Commit()
}

func (r *ReputationRepo) upsertSQL() string {
	conflictTable := "excluded"
	if r.db.DriverName() == "pgx" {
		conflictTable = "EXCLUDED"
	}
	return `INSERT INTO source_reputation (source_id, tier, reputation_score, quality_score, accepted_count, rejected_count, auto_disabled, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (source_id) DO UPDATE SET
			tier = ` + conflictTable + `.tier, reputation_score = ` + conflictTable + `.reputation_score,
			quality_score = ` + conflictTable + `.quality_score, accepted_count = ` + conflictTable + `.accepted_count,
			rejected_count = ` + conflictTable + `.rejected_count, auto_disabled = ` + conflictTable + `.auto_disabled,
			last_updated = ` + conflictTable + `.last_updated`
}

// AppendHistory appends one immutable reputation-history point.
func (r *ReputationRepo) AppendHistory(ctx context.Context, sourceID string, point domain.ReputationHistoryPoint) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`INSERT INTO reputation_history (source_id, ts, score) VALUES (?, ?, ?)`),
		sourceID, point.Timestamp, point.Score)
	if err != nil {
		return fmt.Errorf("append reputation history: %w", err)
	}
	return nil
}

// History returns a source's reputation-history points in [from, to].
func (r *ReputationRepo) History(ctx context.Context, sourceID string, from, to time.Time) ([]domain.ReputationHistoryPoint, error) {
	type row struct {
		TS    time.Time `db:"ts"`
		Score float64   `db:"score"`
	}
	var rows []row
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`SELECT ts, score FROM reputation_history WHERE source_id = ? AND ts >= ? AND ts <= ? ORDER BY ts ASC`),
		sourceID, from, to)
	if err != nil {
		return nil, fmt.Errorf("reputation history: %w", err)
	}
	out := make([]domain.ReputationHistoryPoint, len(rows))
	for i, row := range rows {
		out[i] = domain.ReputationHistoryPoint{Timestamp: row.TS, Score: row.Score}
	}
	return out, nil
}

// jsonColumn marshals v for storage in a TEXT/JSONB column; both backends
// accept a JSON string literal for JSONB via the driver's []byte path.
func jsonColumn(v any) ([]byte, error) {
	return json.Marshal(v)
}
