package insights

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/newsintel/internal/domain"
)

func TestNarrativeGenerator_RiskTemplateWithoutLLMIncludesKeySections(t *testing.T) {
	g := NewNarrativeGenerator(nil)
	risk := domain.DetectedRisk{
		Title: "Supply chain disruption", Category: "operational", Description: "Transport indicators have deteriorated.",
		SeverityLevel: domain.SeverityHigh, Probability: 0.75, Impact: 7.0, Confidence: 0.8, Urgency: 4,
		DetectionMethod: domain.DetectionRuleBased, TriggeringIndicators: map[string]float64{"OPS_TRANSPORT": 35},
		RequiresImmediateAction: true,
	}
	profile := domain.CompanyProfile{Name: "Acme Retail", Scale: domain.ScaleMedium, Sector: "retail"}

	narrative := g.GenerateRisk(context.Background(), risk, profile)

	assert.Contains(t, narrative, "HIGH RISK: Supply chain disruption")
	assert.Contains(t, narrative, "Acme Retail")
	assert.Contains(t, narrative, "Key Indicators")
	assert.Contains(t, narrative, "OPS_TRANSPORT")
	assert.Contains(t, narrative, "IMMEDIATE ACTION REQUIRED")
}

func TestNarrativeGenerator_PatternRiskIncludesHistoricalPrecedent(t *testing.T) {
	g := NewNarrativeGenerator(nil)
	risk := domain.DetectedRisk{
		Title: "Currency volatility", Category: "financial", SeverityLevel: domain.SeverityMedium,
		DetectionMethod: domain.DetectionPattern, Reasoning: "2022-03: firms with hedged exposure fared better.",
		TriggeringIndicators: map[string]float64{"ECO_CURRENCY": 40},
	}
	profile := domain.CompanyProfile{Name: "Acme", Scale: domain.ScaleSmall}

	narrative := g.GenerateRisk(context.Background(), risk, profile)
	assert.Contains(t, narrative, "Historical Precedent")
	assert.Contains(t, narrative, "hedged exposure")
}

func TestNarrativeGenerator_OpportunityTemplateWithoutLLM(t *testing.T) {
	g := NewNarrativeGenerator(nil)
	opp := domain.DetectedOpportunity{
		Title: "Tourism demand upswing", Category: "market", Description: "Tourism indicator is strong.",
		SeverityLevel: domain.SeverityMedium, Value: 7.5, Feasibility: 0.65, Urgency: 3,
		TriggeringIndicators: map[string]float64{"ECO_TOURISM": 70},
	}
	profile := domain.CompanyProfile{Name: "Acme Hospitality"}

	narrative := g.GenerateOpportunity(context.Background(), opp, profile)
	assert.Contains(t, narrative, "PRIORITY OPPORTUNITY: Tourism demand upswing")
	assert.True(t, strings.Contains(narrative, "PLAN AND EXECUTE") || strings.Contains(narrative, "ACT NOW"))
}

func TestNarrativeGenerator_NilLLMNeverCallsEnhancement(t *testing.T) {
	g := NewNarrativeGenerator(nil)
	risk := domain.DetectedRisk{Title: "X", SeverityLevel: domain.SeverityLow}
	narrative := g.GenerateRisk(context.Background(), risk, domain.CompanyProfile{})
	assert.NotContains(t, narrative, "LLM Summary")
}
