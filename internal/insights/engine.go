package insights

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aristath/newsintel/internal/domain"
	"github.com/aristath/newsintel/internal/repository"
)

// Engine orchestrates the full per-company L4 pipeline: detect, score,
// narrate, recommend, and roll up into an InsightBundle (spec.md 4.7).
type Engine struct {
	ruleDetector    *RuleDetector
	patternDetector *PatternDetector
	oppDetector     *OpportunityDetector
	riskScorer      *RiskScorer
	oppScorer       *OpportunityScorer
	narrator        *NarrativeGenerator
	recommender     *RecommendationEngine

	insights repository.BusinessInsightRepo
	docs     repository.DocumentStore
	cache    *SnapshotCache
}

// NewEngine wires the default rule/pattern/opportunity catalogs. insights,
// docs and cache may be nil (the engine degrades gracefully, matching
// spec.md 7's "pipeline degrades, never fails").
func NewEngine(llm repository.LLM, insights repository.BusinessInsightRepo, docs repository.DocumentStore, cache *SnapshotCache) *Engine {
	return &Engine{
		ruleDetector:    NewRuleDetector(nil),
		patternDetector: NewPatternDetector(nil),
		oppDetector:     NewOpportunityDetector(nil),
		riskScorer:      NewRiskScorer(DefaultRiskRules, DefaultHistoricalPatterns),
		oppScorer:       NewOpportunityScorer(DefaultOpportunityRules),
		narrator:        NewNarrativeGenerator(llm),
		recommender:     NewRecommendationEngine(),
		insights:        insights,
		docs:            docs,
		cache:           cache,
	}
}

// Generate runs detection, scoring, narration and recommendation for one
// company and persists the result. It never returns an error for
// downstream-storage failures: those set InsightBundle.Degraded instead, so
// the caller still gets a usable (if partially unpersisted) bundle.
func (e *Engine) Generate(ctx context.Context, profile domain.CompanyProfile, snap IndicatorSnapshot, now time.Time) domain.InsightBundle {
	ruleRisks := e.ruleDetector.Detect(profile.CompanyID, snap)
	patternRisks := e.patternDetector.Detect(profile.CompanyID, snap)
	risks := MergeRisks(ruleRisks, patternRisks)

	for i := range risks {
		risks[i] = e.riskScorer.Score(risks[i], profile, snap)
		risks[i].Recommendations = e.recommender.ForRisk(risks[i])
		risks[i].Narrative = e.narrator.GenerateRisk(ctx, risks[i], profile)
		risks[i].DetectedAt = now
	}

	opportunities := e.oppDetector.Detect(profile, snap)
	for i := range opportunities {
		opportunities[i] = e.oppScorer.Score(opportunities[i])
		opportunities[i].Recommendations = e.recommender.ForOpportunity(opportunities[i])
		opportunities[i].Narrative = e.narrator.GenerateOpportunity(ctx, opportunities[i], profile)
		opportunities[i].DetectedAt = now
	}

	portfolio := BuildPortfolio(profile.CompanyID, risks, opportunities)

	bundle := domain.InsightBundle{
		CompanyID:     profile.CompanyID,
		GeneratedAt:   now,
		Risks:         risks,
		Opportunities: opportunities,
		Portfolio:     portfolio,
	}

	degraded := false
	if e.insights != nil {
		if err := e.insights.SaveRisks(ctx, profile.CompanyID, risks); err != nil {
			degraded = true
		}
		if err := e.insights.SaveOpportunities(ctx, profile.CompanyID, opportunities); err != nil {
			degraded = true
		}
	}
	if e.docs != nil {
		for _, r := range risks {
			if !e.putReasoningDoc(ctx, "risk", profile.CompanyID, r.Code, r.Narrative, r.Reasoning) {
				degraded = true
			}
		}
		for _, o := range opportunities {
			if !e.putReasoningDoc(ctx, "opportunity", profile.CompanyID, o.Code, o.Narrative, o.Reasoning) {
				degraded = true
			}
		}
	}
	bundle.Degraded = degraded

	if e.cache != nil {
		_ = e.cache.Put(ctx, bundle)
	}

	return bundle
}

func (e *Engine) putReasoningDoc(ctx context.Context, kind, companyID, code, narrative, reasoning string) bool {
	payload, err := json.Marshal(struct {
		Narrative string `json:"narrative"`
		Reasoning string `json:"reasoning"`
	}{narrative, reasoning})
	if err != nil {
		return false
	}
	key := "insight:" + kind + ":" + companyID + ":" + code
	return e.docs.Put(ctx, key, payload) == nil
}
