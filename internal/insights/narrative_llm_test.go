package insights

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/newsintel/internal/domain"
	"github.com/aristath/newsintel/internal/repository"
)

type stubLLM struct {
	result repository.LLMResult
	err    error
}

func (s stubLLM) Invoke(context.Context, string, string) (repository.LLMResult, error) {
	return s.result, s.err
}

func TestNarrativeGenerator_LLMEnhancementAppendsSummaryOnValidJSON(t *testing.T) {
	llm := stubLLM{result: repository.LLMResult{
		JSON:   map[string]any{"summary": "Tailored executive summary."},
		Source: "model",
	}}
	g := NewNarrativeGenerator(llm)
	risk := domain.DetectedRisk{Title: "Supply chain disruption", SeverityLevel: domain.SeverityHigh}

	narrative := g.GenerateRisk(context.Background(), risk, domain.CompanyProfile{Name: "Acme"})
	assert.Contains(t, narrative, "LLM Summary")
	assert.Contains(t, narrative, "Tailored executive summary.")
}

func TestNarrativeGenerator_LLMFallbackSourceKeepsTemplateOnly(t *testing.T) {
	llm := stubLLM{result: repository.LLMResult{Source: "fallback"}}
	g := NewNarrativeGenerator(llm)
	risk := domain.DetectedRisk{Title: "Supply chain disruption", SeverityLevel: domain.SeverityHigh}

	narrative := g.GenerateRisk(context.Background(), risk, domain.CompanyProfile{Name: "Acme"})
	assert.NotContains(t, narrative, "LLM Summary")
}

func TestNarrativeGenerator_LLMErrorKeepsTemplateOnly(t *testing.T) {
	llm := stubLLM{err: assert.AnError}
	g := NewNarrativeGenerator(llm)
	opp := domain.DetectedOpportunity{Title: "Tourism demand upswing", SeverityLevel: domain.SeverityLow}

	narrative := g.GenerateOpportunity(context.Background(), opp, domain.CompanyProfile{Name: "Acme"})
	assert.NotContains(t, narrative, "LLM Summary")
}
