package impact

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/newsintel/internal/domain"
)

func TestScorer_CrisisArticleScoresHigh(t *testing.T) {
	scorer := NewScorer(domain.ProfileBalanced)
	now := time.Now()
	a := ArticleInput{
		ArticleID:    "a1",
		Title:        "Breaking: nationwide fuel shortage triggers curfew",
		Body:         "The government declared a state of emergency as the fuel shortage worsened across the country, disrupting transport and manufacturing nationwide.",
		Source:       "government",
		PublishedAt:  now,
		MentionCount: 40,
		EventType:    domain.EventFuelShortage,
	}

	result := scorer.Score(a, now)
	assert.GreaterOrEqual(t, result.FinalScore, 50.0)
	assert.LessOrEqual(t, result.PriorityRank, 3)
	assert.Equal(t, domain.ProfileBalanced, result.Profile)
}

func TestScorer_RoutineArticleScoresLow(t *testing.T) {
	scorer := NewScorer(domain.ProfileBalanced)
	now := time.Now()
	a := ArticleInput{
		ArticleID:    "a2",
		Title:        "Local school holds annual science exhibition",
		Body:         "Students presented science projects at a town exhibition with modest turnout.",
		Source:       "unverified",
		PublishedAt:  now.Add(-10 * 24 * time.Hour),
		MentionCount: 1,
	}

	result := scorer.Score(a, now)
	assert.Less(t, result.FinalScore, 40.0)
	assert.Equal(t, 5, result.PriorityRank)
}

func TestScorer_UrgencyFocusedProfileWeightsBreakingNewsMoreHeavily(t *testing.T) {
	now := time.Now()
	a := ArticleInput{
		ArticleID:   "a3",
		Title:       "Breaking: urgent alert issued",
		Body:        "Authorities issued an urgent alert moments ago.",
		Source:      "unverified",
		PublishedAt: now,
	}

	balanced := NewScorer(domain.ProfileBalanced).Score(a, now)
	urgency := NewScorer(domain.ProfileUrgencyFocused).Score(a, now)
	assert.Greater(t, urgency.FinalScore, balanced.FinalScore)
}

func TestCredibility_DirectAndPartialMatchAndDefault(t *testing.T) {
	assert.Equal(t, 100.0, credibility("Government"))
	assert.Equal(t, 85.0, credibility("Reuters Asia"))
	assert.Equal(t, 30.0, credibility("some-random-blog"))
}

func TestGeographicScope_DistrictCountEscalatesToNational(t *testing.T) {
	assert.Equal(t, 90.0, geographicScope("an ordinary update", 5))
	assert.Equal(t, 60.0, geographicScope("an ordinary update", 2))
	assert.Equal(t, 30.0, geographicScope("an ordinary update", 0))
}

func TestSectorRelevanceAndCascades_EnergyEventCascadesToManufacturing(t *testing.T) {
	fullText := "power cut blackout electricity ceb hydro solar energy crisis nationwide"
	overall, cascades := sectorRelevanceAndCascades(fullText, fullText, domain.EventPowerCrisis)
	assert.Greater(t, overall, 0.0)
	found := false
	for k := range cascades {
		if k == "energy->manufacturing" {
			found = true
		}
	}
	assert.True(t, found, "expected an energy->manufacturing cascade, got %v", cascades)
}

func TestValidateSectorDAGAcyclic_PassesOnPackageGraph(t *testing.T) {
	assert.NoError(t, ValidateSectorDAGAcyclic())
}
