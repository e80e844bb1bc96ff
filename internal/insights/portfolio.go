package insights

import (
	"sort"

	"github.com/aristath/newsintel/internal/domain"
)

// BuildPortfolio computes severity/category breakdowns, the weighted
// portfolio risk score, and the top-5 priority lists (spec.md 4.7 item 6).
func BuildPortfolio(companyID string, risks []domain.DetectedRisk, opportunities []domain.DetectedOpportunity) domain.PortfolioMetrics {
	severityBreakdown := make(map[domain.SeverityLevel]int)
	categoryBreakdown := make(map[string]int)

	var weightedSum, weightSum float64
	for _, r := range risks {
		severityBreakdown[r.SeverityLevel]++
		categoryBreakdown[r.Category]++

		w := domain.SeverityWeight(r.SeverityLevel)
		weightedSum += r.FinalScore * w
		weightSum += w
	}

	portfolioRiskScore := 0.0
	if weightSum > 0 {
		portfolioRiskScore = weightedSum / weightSum
	}

	return domain.PortfolioMetrics{
		CompanyID:          companyID,
		SeverityBreakdown:  severityBreakdown,
		CategoryBreakdown:  categoryBreakdown,
		PortfolioRiskScore: portfolioRiskScore,
		TopRisks:           topRisks(risks, 5),
		TopOpportunities:   topOpportunities(opportunities, 5),
	}
}

// riskPriority is (immediate_action ? 1000 : 0) + score*10 + urgency.
func riskPriority(r domain.DetectedRisk) float64 {
	immediate := 0.0
	if r.RequiresImmediateAction {
		immediate = 1000
	}
	return immediate + r.FinalScore*10 + float64(r.Urgency)
}

func topRisks(risks []domain.DetectedRisk, n int) []domain.DetectedRisk {
	sorted := make([]domain.DetectedRisk, len(risks))
	copy(sorted, risks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return riskPriority(sorted[i]) > riskPriority(sorted[j])
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// opportunityPriority is value*feasibility.
func opportunityPriority(o domain.DetectedOpportunity) float64 {
	return o.Value * o.Feasibility
}

func topOpportunities(opportunities []domain.DetectedOpportunity, n int) []domain.DetectedOpportunity {
	sorted := make([]domain.DetectedOpportunity, len(opportunities))
	copy(sorted, opportunities)
	sort.SliceStable(sorted, func(i, j int) bool {
		return opportunityPriority(sorted[i]) > opportunityPriority(sorted[j])
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
