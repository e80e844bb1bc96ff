package enrichment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/newsintel/internal/domain"
)

func TestQualityScorer_CompleteFreshHighTrustArticleScoresWell(t *testing.T) {
	s := NewQualityScorer()
	now := time.Now()

	in := QualityInput{
		Title:       "Government announces new fuel subsidy programme",
		Body:        "The government announced a new fuel subsidy programme today covering households across the country, aiming to ease the burden of the fuel shortage on working families nationwide. " +
			"Officials said the subsidy programme would take effect within the week and be reviewed quarterly, with the fuel subsidy extending to public transport operators as well.",
		SourceID:    "government",
		PublishDate: now.Add(-30 * time.Minute),
		ScrapeTime:  now,
		SourceTrust: 95,
		Features: domain.ArticleFeatures{
			TokenCount: 50,
			ReadabilityInput: domain.ReadabilityInput{
				Words: 50, Sentences: 3, Syllables: 70,
			},
		},
	}

	score, band := s.Score(in, now)
	assert.Greater(t, score, 60.0)
	assert.Contains(t, []domain.QualityBand{domain.QualityGood, domain.QualityExcellent}, band)
}

func TestQualityScorer_ThinStaleArticleScoresPoorly(t *testing.T) {
	s := NewQualityScorer()
	now := time.Now()

	in := QualityInput{
		Title:       "Update",
		Body:        "Short note.",
		SourceID:    "unverified",
		PublishDate: now.Add(-30 * 24 * time.Hour),
		ScrapeTime:  now,
		SourceTrust: 20,
		Features: domain.ArticleFeatures{
			TokenCount: 2,
			ReadabilityInput: domain.ReadabilityInput{
				Words: 2, Sentences: 1, Syllables: 3,
			},
		},
	}

	score, band := s.Score(in, now)
	assert.Less(t, score, 50.0)
	assert.Contains(t, []domain.QualityBand{domain.QualityFair, domain.QualityPoor}, band)
}

func TestConsistencyScore_MismatchedTitleScoresLowerThanMatchedTitle(t *testing.T) {
	matched := consistencyScore(QualityInput{
		Title: "fuel shortage worsens nationwide",
		Body:  "The fuel shortage has worsened across the country as queues lengthen nationwide.",
	})
	mismatched := consistencyScore(QualityInput{
		Title: "fuel shortage worsens nationwide",
		Body:  "Students celebrated graduation day with a ceremony downtown.",
	})
	assert.Greater(t, matched, mismatched)
}

func TestRecencyScore_DecaysWithAge(t *testing.T) {
	now := time.Now()
	fresh := recencyScore(QualityInput{PublishDate: now.Add(-10 * time.Minute)}, now)
	stale := recencyScore(QualityInput{PublishDate: now.Add(-10 * 24 * time.Hour)}, now)
	assert.Greater(t, fresh, stale)
}
