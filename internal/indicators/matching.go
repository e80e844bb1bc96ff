// Package indicators implements L3 Indicator Aggregation (spec.md 4.6):
// keyword-matching indicator values, category/NAI composites, trend
// detection, and forecasting.
package indicators

import (
	"regexp"
	"strings"

	"github.com/aristath/newsintel/internal/domain"
)

var nonWord = regexp.MustCompile(`[^a-z0-9]+`)

func normalize(text string) string {
	return " " + nonWord.ReplaceAllString(strings.ToLower(text), " ") + " "
}

// MatchScore is the band-scored keyword match against one indicator's
// keyword list (spec.md 4.6: >=3 matches -> 1.0, >=2 -> 0.8, >=1 -> 0.4,
// below that -> 0 i.e. no match).
func MatchScore(text string, keywords []string) (matches int, score float64) {
	normalized := normalize(text)
	for _, kw := range keywords {
		needle := " " + strings.ToLower(kw) + " "
		if strings.Contains(normalized, needle) {
			matches++
		}
	}
	switch {
	case matches >= 3:
		score = 1.0
	case matches >= 2:
		score = 0.8
	case matches >= 1:
		score = 0.4
	default:
		score = 0
	}
	return matches, score
}

// MatchedArticle is one article's contribution toward an indicator's value
// for the current run.
type MatchedArticle struct {
	ArticleID      string
	MatchScore     float64
	Matches        int
	Sentiment      float64 // [-1,1]; only read by sentiment_aggregate
	NumericValue   float64 // only read by numeric_extraction, when HasNumeric is true
	HasNumeric     bool
}

// MatchArticles scores every candidate against one indicator's keyword
// list, keeping only those scoring above the 0.3 match floor.
func MatchArticles(def domain.IndicatorDefinition, candidates []MatchedArticle, bodies map[string]string) []MatchedArticle {
	var out []MatchedArticle
	for _, c := range candidates {
		body := bodies[c.ArticleID]
		matches, score := MatchScore(body, def.Keywords)
		if score < 0.3 {
			continue
		}
		c.Matches = matches
		c.MatchScore = score
		out = append(out, c)
	}
	return out
}
