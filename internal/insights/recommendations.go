package insights

import (
	"fmt"

	"github.com/aristath/newsintel/internal/domain"
)

// RecommendationEngine turns a scored risk/opportunity into prioritized
// actions, bucketed by time horizon (spec.md 4.7 item 5).
type RecommendationEngine struct{}

func NewRecommendationEngine() *RecommendationEngine { return &RecommendationEngine{} }

// ForRisk returns recommendations chosen by the risk's urgency, priority 1
// highest: two for a risk requiring immediate action or with urgency >= 3,
// one otherwise.
func (e *RecommendationEngine) ForRisk(risk domain.DetectedRisk) []domain.Recommendation {
	switch {
	case risk.RequiresImmediateAction:
		return []domain.Recommendation{
			{
				Category:  domain.RecommendationImmediate,
				Priority:  1,
				Action:    fmt.Sprintf("Convene a response team today to address %s.", risk.Title),
				Rationale: fmt.Sprintf("%s severity with urgency %d/5 requires same-day mitigation.", risk.SeverityLevel, risk.Urgency),
			},
			{
				Category:  domain.RecommendationShortTerm,
				Priority:  2,
				Action:    "Implement contingency measures and monitor triggering indicators daily.",
				Rationale: "Sustains the response while root causes are addressed.",
			},
		}
	case risk.Urgency >= 3:
		return []domain.Recommendation{
			{
				Category:  domain.RecommendationShortTerm,
				Priority:  2,
				Action:    fmt.Sprintf("Schedule a response plan for %s within the next two weeks.", risk.Title),
				Rationale: fmt.Sprintf("Urgency %d/5 does not require same-day action but cannot wait a quarter.", risk.Urgency),
			},
			{
				Category:  domain.RecommendationMediumTerm,
				Priority:  3,
				Action:    "Build contingency budget for this risk category.",
				Rationale: "Reduces exposure if the indicator continues to deteriorate.",
			},
		}
	default:
		return []domain.Recommendation{
			{
				Category:  domain.RecommendationLongTerm,
				Priority:  4,
				Action:    fmt.Sprintf("Add %s to the quarterly risk review.", risk.Title),
				Rationale: "Low urgency; monitoring is sufficient for now.",
			},
		}
	}
}

// ForOpportunity yields one recommendation scaled to the opportunity's
// urgency (derived from its time window).
func (e *RecommendationEngine) ForOpportunity(opp domain.DetectedOpportunity) []domain.Recommendation {
	switch {
	case opp.Urgency >= 4:
		return []domain.Recommendation{
			{
				Category:  domain.RecommendationImmediate,
				Priority:  1,
				Action:    fmt.Sprintf("Begin implementation planning for %s this week.", opp.Title),
				Rationale: fmt.Sprintf("Window is closing; feasibility %.0f%% supports fast execution.", opp.Feasibility*100),
			},
		}
	case opp.Urgency == 3:
		return []domain.Recommendation{
			{
				Category:  domain.RecommendationShortTerm,
				Priority:  2,
				Action:    fmt.Sprintf("Allocate resources to evaluate %s within two weeks.", opp.Title),
				Rationale: "Moderate window; early evaluation preserves optionality.",
			},
		}
	default:
		return []domain.Recommendation{
			{
				Category:  domain.RecommendationMediumTerm,
				Priority:  3,
				Action:    fmt.Sprintf("Track %s as a candidate for the next planning cycle.", opp.Title),
				Rationale: "Wide window allows deferred evaluation.",
			},
		}
	}
}
