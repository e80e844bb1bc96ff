package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/newsintel/internal/domain"
)

func TestBuildPortfolio_WeightedScoreAndTopPrioritySort(t *testing.T) {
	risks := []domain.DetectedRisk{
		{Code: "R1", Category: "operational", FinalScore: 42, SeverityLevel: domain.SeverityCritical, Urgency: 5, RequiresImmediateAction: true},
		{Code: "R2", Category: "financial", FinalScore: 32, SeverityLevel: domain.SeverityHigh, Urgency: 2},
		{Code: "R3", Category: "operational", FinalScore: 10, SeverityLevel: domain.SeverityLow, Urgency: 1},
	}
	opportunities := []domain.DetectedOpportunity{
		{Code: "O1", Category: "market", Value: 8, Feasibility: 0.9},
		{Code: "O2", Category: "market", Value: 5, Feasibility: 0.5},
	}

	portfolio := BuildPortfolio("co-1", risks, opportunities)

	assert.Equal(t, 1, portfolio.SeverityBreakdown[domain.SeverityCritical])
	assert.Equal(t, 2, portfolio.CategoryBreakdown["operational"])
	// (42*4 + 32*3 + 10*1) / (4+3+1) = 274/8 = 34.25
	assert.InDelta(t, 34.25, portfolio.PortfolioRiskScore, 1e-9)

	if assert.Len(t, portfolio.TopRisks, 3) {
		assert.Equal(t, "R1", portfolio.TopRisks[0].Code) // priority 1425
		assert.Equal(t, "R2", portfolio.TopRisks[1].Code) // priority 322
		assert.Equal(t, "R3", portfolio.TopRisks[2].Code) // priority 101
	}

	if assert.Len(t, portfolio.TopOpportunities, 2) {
		assert.Equal(t, "O1", portfolio.TopOpportunities[0].Code) // 7.2
		assert.Equal(t, "O2", portfolio.TopOpportunities[1].Code) // 2.5
	}
}

func TestBuildPortfolio_EmptyInputsProduceZeroScoreNoErrors(t *testing.T) {
	portfolio := BuildPortfolio("co-1", nil, nil)
	assert.Equal(t, 0.0, portfolio.PortfolioRiskScore)
	assert.Empty(t, portfolio.TopRisks)
	assert.Empty(t, portfolio.TopOpportunities)
}

func TestTopRisks_CapsAtFiveEvenWithMoreCandidates(t *testing.T) {
	var risks []domain.DetectedRisk
	for i := 0; i < 8; i++ {
		risks = append(risks, domain.DetectedRisk{Code: "R", FinalScore: float64(i), SeverityLevel: domain.SeverityLow})
	}
	assert.Len(t, topRisks(risks, 5), 5)
}
