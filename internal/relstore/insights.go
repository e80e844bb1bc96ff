package relstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aristath/newsintel/internal/domain"
)

// InsightRepo implements repository.BusinessInsightRepo. Narrative and
// reasoning text travel with the structured row here too (unlike
// internal/insights.Engine's document-store path for the long-form
// versions); LatestBundle only needs what is already in this table to
// answer cheaply without a document-store round trip.
type InsightRepo struct {
	db *sqlx.DB
}

type riskRow struct {
	Code                    string    `db:"code"`
	CompanyID               string    `db:"company_id"`
	Title                   string    `db:"title"`
	Description             string    `db:"description"`
	Category                string    `db:"category"`
	Probability             float64   `db:"probability"`
	Impact                  float64   `db:"impact"`
	Urgency                 int       `db:"urgency"`
	Confidence              float64   `db:"confidence"`
	FinalScore              float64   `db:"final_score"`
	SeverityLevel           string    `db:"severity_level"`
	TriggeringIndicators    []byte    `db:"triggering_indicators"`
	DetectionMethod         string    `db:"detection_method"`
	Reasoning               string    `db:"reasoning"`
	RequiresImmediateAction bool      `db:"requires_immediate_action"`
	Narrative               string    `db:"narrative"`
	Recommendations         []byte    `db:"recommendations"`
	DetectedAt              time.Time `db:"detected_at"`
}

func (r riskRow) toDomain() (domain.DetectedRisk, error) {
	var triggering map[string]float64
	if err := json.Unmarshal(r.TriggeringIndicators, &triggering); err != nil {
		return domain.DetectedRisk{}, fmt.Errorf("unmarshal triggering_indicators: %w", err)
	}
	var recs []domain.Recommendation
	if err := json.Unmarshal(r.Recommendations, &recs); err != nil {
		return domain.DetectedRisk{}, fmt.Errorf("unmarshal recommendations: %w", err)
	}
	return domain.DetectedRisk{
		Code: r.Code, CompanyID: r.CompanyID, Title: r.Title, Description: r.Description,
		Category: r.Category, Probability: r.Probability, Impact: r.Impact, Urgency: r.Urgency,
		Confidence: r.Confidence, FinalScore: r.FinalScore, SeverityLevel: domain.SeverityLevel(r.SeverityLevel),
		TriggeringIndicators: triggering, DetectionMethod: domain.DetectionMethod(r.DetectionMethod),
		Reasoning: r.Reasoning, RequiresImmediateAction: r.RequiresImmediateAction,
		Narrative: r.Narrative, Recommendations: recs, DetectedAt: r.DetectedAt,
	}, nil
}

type oppRow struct {
	Code                 string    `db:"code"`
	CompanyID            string    `db:"company_id"`
	Title                string    `db:"title"`
	Description          string    `db:"description"`
	Category             string    `db:"category"`
	Probability          float64   `db:"probability"`
	Impact               float64   `db:"impact"`
	Urgency              int       `db:"urgency"`
	Confidence           float64   `db:"confidence"`
	FinalScore           float64   `db:"final_score"`
	SeverityLevel        string    `db:"severity_level"`
	TriggeringIndicators []byte    `db:"triggering_indicators"`
	DetectionMethod      string    `db:"detection_method"`
	Reasoning            string    `db:"reasoning"`
	Feasibility          float64   `db:"feasibility"`
	Value                float64   `db:"value"`
	Narrative            string    `db:"narrative"`
	Recommendations      []byte    `db:"recommendations"`
	DetectedAt           time.Time `db:"detected_at"`
}

func (r oppRow) toDomain() (domain.DetectedOpportunity, error) {
	var triggering map[string]float64
	if err := json.Unmarshal(r.TriggeringIndicators, &triggering); err != nil {
		return domain.DetectedOpportunity{}, fmt.Errorf("unmarshal triggering_indicators: %w", err)
	}
	var recs []domain.Recommendation
	if err := json.Unmarshal(r.Recommendations, &recs); err != nil {
		return domain.DetectedOpportunity{}, fmt.Errorf("unmarshal recommendations: %w", err)
	}
	return domain.DetectedOpportunity{
		Code: r.Code, CompanyID: r.CompanyID, Title: r.Title, Description: r.Description,
		Category: r.Category, Probability: r.Probability, Impact: r.Impact, Urgency: r.Urgency,
		Confidence: r.Confidence, FinalScore: r.FinalScore, SeverityLevel: domain.SeverityLevel(r.SeverityLevel),
		TriggeringIndicators: triggering, DetectionMethod: domain.DetectionMethod(r.DetectionMethod),
		Reasoning: r.Reasoning, Feasibility: r.Feasibility, Value: r.Value,
		Narrative: r.Narrative, Recommendations: recs, DetectedAt: r.DetectedAt,
	}, nil
}

// SaveRisks replaces a company's stored risk set with risks (full
// replace, not merge: a company's latest bundle is always the full set
// from its most recent L4 run).
func (r *InsightRepo) SaveRisks(ctx context.Context, companyID string, risks []domain.DetectedRisk) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save risks: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM business_risks WHERE company_id = ?`), companyID); err != nil {
		return fmt.Errorf("save risks: clear: %w", err)
	}
	for _, risk := range risks {
		triggering, err := jsonColumn(risk.TriggeringIndicators)
		if err != nil {
			return fmt.Errorf("marshal triggering_indicators: %w", err)
		}
		recs, err := jsonColumn(risk.Recommendations)
		if err != nil {
			return fmt.Errorf("marshal recommendations: %w", err)
		}
		_, err = tx.ExecContext(ctx, r.db.Rebind(`INSERT INTO business_risks
			(code, company_id, title, description, category, probability, impact, urgency, confidence, final_score, severity_level, triggering_indicators, detection_method, reasoning, requires_immediate_action, narrative, recommendations, detected_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			risk.Code, companyID, risk.Title, risk.Description, risk.Category, risk.Probability, risk.Impact,
			risk.Urgency, risk.Confidence, risk.FinalScore, string(risk.SeverityLevel), triggering,
			string(risk.DetectionMethod), risk.Reasoning, risk.RequiresImmediateAction, risk.Narrative, recs, risk.DetectedAt)
		if err != nil {
			return fmt.Errorf("save risks: insert %s: %w", risk.Code, err)
		}
	}
	return tx.Commit()
}

// SaveOpportunities replaces a company's stored opportunity set.
func (r *InsightRepo) SaveOpportunities(ctx context.Context, companyID string, opps []domain.DetectedOpportunity) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save opportunities: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM business_opportunities WHERE company_id = ?`), companyID); err != nil {
		return fmt.Errorf("save opportunities: clear: %w", err)
	}
	for _, opp := range opps {
		triggering, err := jsonColumn(opp.TriggeringIndicators)
		if err != nil {
			return fmt.Errorf("marshal triggering_indicators: %w", err)
		}
		recs, err := jsonColumn(opp.Recommendations)
		if err != nil {
			return fmt.Errorf("marshal recommendations: %w", err)
		}
		_, err = tx.ExecContext(ctx, r.db.Rebind(`INSERT INTO business_opportunities
			(code, company_id, title, description, category, probability, impact, urgency, confidence, final_score, severity_level, triggering_indicators, detection_method, reasoning, feasibility, value, narrative, recommendations, detected_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			opp.Code, companyID, opp.Title, opp.Description, opp.Category, opp.Probability, opp.Impact,
			opp.Urgency, opp.Confidence, opp.FinalScore, string(opp.SeverityLevel), triggering,
			string(opp.DetectionMethod), opp.Reasoning, opp.Feasibility, opp.Value, opp.Narrative, recs, opp.DetectedAt)
		if err != nil {
			return fmt.Errorf("save opportunities: insert %s: %w", opp.Code, err)
		}
	}
	return tx.Commit()
}

const riskColumns = `code, company_id, title, description, category, probability, impact, urgency, confidence, final_score, severity_level, triggering_indicators, detection_method, reasoning, requires_immediate_action, narrative, recommendations, detected_at`
const oppColumns = `code, company_id, title, description, category, probability, impact, urgency, confidence, final_score, severity_level, triggering_indicators, detection_method, reasoning, feasibility, value, narrative, recommendations, detected_at`

// LatestBundle reassembles the most recently saved risks/opportunities
// for a company. Portfolio is left zero-valued: it is a pure function of
// risks+opportunities (internal/insights.BuildPortfolio) that callers
// needing it can recompute from the returned bundle rather than have this
// store duplicate that rollup logic.
func (r *InsightRepo) LatestBundle(ctx context.Context, companyID string) (domain.InsightBundle, bool, error) {
	var riskRows []riskRow
	if err := r.db.SelectContext(ctx, &riskRows, r.db.Rebind(`SELECT `+riskColumns+` FROM business_risks WHERE company_id = ?`), companyID); err != nil {
		return domain.InsightBundle{}, false, fmt.Errorf("latest bundle: risks: %w", err)
	}
	var oppRows []oppRow
	if err := r.db.SelectContext(ctx, &oppRows, r.db.Rebind(`SELECT `+oppColumns+` FROM business_opportunities WHERE company_id = ?`), companyID); err != nil {
		return domain.InsightBundle{}, false, fmt.Errorf("latest bundle: opportunities: %w", err)
	}
	if len(riskRows) == 0 && len(oppRows) == 0 {
		return domain.InsightBundle{}, false, nil
	}

	risks := make([]domain.DetectedRisk, 0, len(riskRows))
	var generatedAt time.Time
	for _, row := range riskRows {
		risk, err := row.toDomain()
		if err != nil {
			return domain.InsightBundle{}, false, err
		}
		if risk.DetectedAt.After(generatedAt) {
			generatedAt = risk.DetectedAt
		}
		risks = append(risks, risk)
	}
	opportunities := make([]domain.DetectedOpportunity, 0, len(oppRows))
	for _, row := range oppRows {
		opp, err := row.toDomain()
		if err != nil {
			return domain.InsightBundle{}, false, err
		}
		if opp.DetectedAt.After(generatedAt) {
			generatedAt = opp.DetectedAt
		}
		opportunities = append(opportunities, opp)
	}

	return domain.InsightBundle{
		CompanyID:     companyID,
		GeneratedAt:   generatedAt,
		Risks:         risks,
		Opportunities: opportunities,
	}, true, nil
}
