package domain

import "time"

// ClusterMember is one article within a DuplicateCluster.
type ClusterMember struct {
	ArticleID         string
	SourceID          string
	SimilarityToPrime float64 // cosine similarity to the cluster's primary, in [0,1]
	CredibilityScore  float64
	ScrapedAt         time.Time
	WordCount         int
	IsPrimary         bool
}

// DuplicateCluster groups articles judged duplicates or near-duplicates of
// a common story. Exactly one member has IsPrimary=true at all times; the
// primary is re-elected whenever membership changes (spec.md 4.2).
type DuplicateCluster struct {
	ClusterID     string
	TopicSummary  string
	PrimaryID     string
	Members       []ClusterMember
	UniqueSources map[string]struct{}
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// MemberByArticle returns the member with the given article ID, or nil.
func (c *DuplicateCluster) MemberByArticle(articleID string) *ClusterMember {
	for i := range c.Members {
		if c.Members[i].ArticleID == articleID {
			return &c.Members[i]
		}
	}
	return nil
}

// PrimaryScore computes the primary-selection score for a member:
// credibility*40 + (word_count/max_word_count)*30 + max(0, 30 - age_hours*2).
func PrimaryScore(m ClusterMember, maxWordCount int, now time.Time) float64 {
	wordRatio := 0.0
	if maxWordCount > 0 {
		wordRatio = float64(m.WordCount) / float64(maxWordCount)
	}
	ageHours := now.Sub(m.ScrapedAt).Hours()
	recency := 30.0 - ageHours*2.0
	if recency < 0 {
		recency = 0
	}
	return m.CredibilityScore*40.0 + wordRatio*30.0 + recency
}

// DuplicateType classifies the outcome of a deduplication check.
type DuplicateType string

const (
	DuplicateExact   DuplicateType = "exact_duplicate"
	DuplicateNear    DuplicateType = "near_duplicate"
	DuplicateRelated DuplicateType = "related"
	DuplicateUnique  DuplicateType = "unique"
)

// DuplicateCheckResult is the outcome of Deduplicator.CheckDuplicate.
type DuplicateCheckResult struct {
	Status           DuplicateType // == DuplicateType; kept as a separate field to mirror the wire contract in spec.md 4.2
	SimilarityScore  float64
	MatchedArticleID string // empty if no match
	ClusterID        string // empty if no cluster was created or matched
	DuplicateType    DuplicateType
}
