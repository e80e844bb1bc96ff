package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/aristath/newsintel/internal/dedup"
	"github.com/aristath/newsintel/internal/domain"
	"github.com/aristath/newsintel/internal/impact"
)

// IntakeResult is the L1 decision for one raw article: duplicate routing
// plus a business-impact score, before the article may proceed to L2
// enrichment.
type IntakeResult struct {
	Article   domain.RawArticle
	Duplicate domain.DuplicateCheckResult
	Impact    domain.ImpactScore
	Accept    bool // false when the article is a duplicate and routes to the cluster-update path instead
}

// eventKeywords maps each closed EventType to the keywords that identify
// it in article text, mirroring the containsAny/matchCount keyword-scan
// idiom used throughout internal/impact and internal/enrichment. Articles
// matching none of these default to EventPolicyChange, the catch-all
// bucket for general news that still carries a sector impact.
var eventKeywords = map[domain.EventType][]string{
	domain.EventFuelShortage:    {"fuel shortage", "petrol queue", "diesel shortage", "fuel rationing"},
	domain.EventPowerCrisis:     {"power cut", "blackout", "load shedding", "power crisis"},
	domain.EventCurrencyCrisis:  {"currency devaluation", "rupee falls", "forex crisis", "currency crisis"},
	domain.EventNaturalDisaster: {"flood", "cyclone", "landslide", "earthquake"},
}

func classifyEventType(title, body string) domain.EventType {
	text := strings.ToLower(title + " " + body)
	for eventType, keywords := range eventKeywords {
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				return eventType
			}
		}
	}
	return domain.EventPolicyChange
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}

// Intake runs dedup then (if the article is not a duplicate) business
// impact scoring for one raw article. The dedup call carries ctx (impact
// scoring is local and takes none), so a caller
// enforcing spec.md 5's per-call timeout (10s network-equivalent for the
// embedding call inside dedup) need only derive ctx with a deadline.
func Intake(ctx context.Context, dd *dedup.Deduplicator, scorer *impact.Scorer, credibility float64, districtCount int, raw domain.RawArticle, now time.Time) (IntakeResult, error) {
	dup, err := dd.CheckDuplicate(ctx, raw.ArticleID, raw.Title, raw.Body, raw.URL, raw.SourceID, credibility, raw.ScrapeTime, wordCount(raw.Body))
	if err != nil {
		return IntakeResult{}, err
	}
	if dup.Status != domain.DuplicateUnique {
		return IntakeResult{Article: raw, Duplicate: dup, Accept: false}, nil
	}

	score := scorer.Score(impact.ArticleInput{
		ArticleID:     raw.ArticleID,
		Title:         raw.Title,
		Body:          raw.Body,
		Source:        raw.SourceID,
		PublishedAt:   raw.PublishDate,
		MentionCount:  1,
		EventType:     classifyEventType(raw.Title, raw.Body),
		DistrictCount: districtCount,
	}, now)

	return IntakeResult{Article: raw, Duplicate: dup, Impact: score, Accept: true}, nil
}
