package impact

import (
	"fmt"
	"strings"
	"time"

	"github.com/aristath/newsintel/internal/domain"
)

func init() {
	if err := ValidateSectorDAGAcyclic(); err != nil {
		panic(fmt.Sprintf("impact: sector dependency graph is not acyclic: %v", err))
	}
}

// ArticleInput is the minimal article surface the scorer needs; callers
// adapt domain.RawArticle/domain.ArticleFeatures into this shape.
type ArticleInput struct {
	ArticleID     string
	Title         string
	Body          string
	Source        string
	PublishedAt   time.Time
	MentionCount  int
	EventType     domain.EventType
	DistrictCount int
}

// Scorer computes a Business Impact Scorer result (spec.md 4.4) for one
// article under a named weight profile.
type Scorer struct {
	profile domain.ScoringProfile
}

// NewScorer builds a Scorer using the given weight profile.
func NewScorer(profile domain.ScoringProfile) *Scorer {
	return &Scorer{profile: profile}
}

// Score computes the six factor axes, the weighted aggregate, the
// confidence adjustment, and the priority rank.
func (s *Scorer) Score(a ArticleInput, now time.Time) domain.ImpactScore {
	title := strings.ToLower(a.Title)
	fullText := strings.ToLower(a.Title + " " + a.Body)

	sev := severity(fullText, title)
	cred := credibility(a.Source)
	geo := geographicScope(fullText, a.DistrictCount)
	temporal := temporalUrgency(fullText, title, a.PublishedAt, now)
	volume := volumeMomentum(a.MentionCount, fullText)
	sectorRel, cascades := sectorRelevanceAndCascades(fullText, title, a.EventType)

	factors := domain.ImpactFactors{
		Severity:        sev,
		Credibility:     cred,
		GeographicScope: geo,
		TemporalUrgency: temporal,
		VolumeMomentum:  volume,
		SectorRelevance: sectorRel,
	}

	weights := domain.WeightsForProfile(s.profile)
	raw := factors.Severity*weights.Severity +
		factors.Credibility*weights.Credibility +
		factors.GeographicScope*weights.GeographicScope +
		factors.TemporalUrgency*weights.TemporalUrgency +
		factors.VolumeMomentum*weights.VolumeMomentum +
		factors.SectorRelevance*weights.SectorRelevance
	weighted := raw / weights.Sum()

	confidence := confidenceAdjustment(sev, cred)
	final := weighted * confidence

	return domain.ImpactScore{
		ArticleID:      a.ArticleID,
		Factors:        factors,
		Profile:        s.profile,
		Confidence:     confidence,
		FinalScore:     final,
		PriorityRank:   domain.PriorityRankFor(final),
		CascadeEffects: cascades,
	}
}

// confidenceAdjustment implements spec.md 4.4's
// `0.4*credibility + 0.3*signal_density + 0.3*severity_factor`. signal_density
// is approximated from severity/credibility strength since this layer does
// not track a separate detected-signal list the way enrichment does;
// severity_factor maps [0,100] severity onto [0.5,1.0].
func confidenceAdjustment(severityScore, credibilityScore float64) float64 {
	credibilityFactor := credibilityScore / 100
	signalDensity := min((severityScore+credibilityScore)/200, 1.0)
	severityFactor := 0.5 + severityScore/200

	confidence := 0.4*credibilityFactor + 0.3*signalDensity + 0.3*severityFactor
	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}
