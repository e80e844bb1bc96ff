package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/newsintel/internal/domain"
)

func TestMatchScore_Bands(t *testing.T) {
	keywords := []string{"fuel", "shortage", "queue", "transport"}

	_, score3 := MatchScore("fuel shortage caused long queue lines nationwide", keywords)
	assert.Equal(t, 1.0, score3)

	_, score2 := MatchScore("fuel shortage reported in the capital", keywords)
	assert.Equal(t, 0.8, score2)

	_, score1 := MatchScore("fuel prices rose slightly", keywords)
	assert.Equal(t, 0.4, score1)

	_, score0 := MatchScore("the weather was pleasant today", keywords)
	assert.Equal(t, 0.0, score0)
}

func TestMatchArticles_FiltersBelowMatchFloor(t *testing.T) {
	def := domain.IndicatorDefinition{
		IndicatorID: "ECO_INFLATION",
		Keywords:    []string{"inflation", "price hike", "cost of living"},
	}
	candidates := []MatchedArticle{
		{ArticleID: "a1"}, // three keyword hits
		{ArticleID: "a2"}, // zero hits
	}
	bodies := map[string]string{
		"a1": "inflation and price hike pushed the cost of living higher this month",
		"a2": "the football match ended in a draw",
	}

	matched := MatchArticles(def, candidates, bodies)
	assert.Len(t, matched, 1)
	assert.Equal(t, "a1", matched[0].ArticleID)
	assert.Equal(t, 1.0, matched[0].MatchScore)
}
