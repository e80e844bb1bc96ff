package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/newsintel/internal/domain"
)

func claim(fp, sourceID string) domain.Claim {
	return domain.Claim{Kind: domain.ClaimEvent, Fingerprint: fp, SourceID: sourceID}
}

func TestCorroborationEngine_NoPriorMatchesIsNone(t *testing.T) {
	e := NewCorroborationEngine(48 * time.Hour)
	now := time.Now()
	result := e.Evaluate([]domain.Claim{claim("fp1", "src-1")}, "src-1", false, now)
	assert.Equal(t, domain.CorroborationNone, result.Level)
}

func TestCorroborationEngine_SingleMatchIsWeak(t *testing.T) {
	e := NewCorroborationEngine(48 * time.Hour)
	now := time.Now()
	e.Evaluate([]domain.Claim{claim("fp1", "src-1")}, "src-1", false, now)

	result := e.Evaluate([]domain.Claim{claim("fp1", "src-2")}, "src-2", false, now)
	assert.Equal(t, domain.CorroborationWeak, result.Level)
	assert.Equal(t, 1, result.MatchCount)
}

func TestCorroborationEngine_MultiSourceMatchesAreModerate(t *testing.T) {
	e := NewCorroborationEngine(48 * time.Hour)
	now := time.Now()
	e.Evaluate([]domain.Claim{claim("fp1", "src-1")}, "src-1", false, now)
	e.Evaluate([]domain.Claim{claim("fp1", "src-2")}, "src-2", false, now)

	result := e.Evaluate([]domain.Claim{claim("fp1", "src-3")}, "src-3", false, now)
	assert.Equal(t, domain.CorroborationModerate, result.Level)
	assert.Equal(t, 2, result.MatchCount)
	assert.Equal(t, 2, result.SourceCount)
}

func TestCorroborationEngine_FourPlusMatchesAcrossThreeSourcesIsStrong(t *testing.T) {
	e := NewCorroborationEngine(48 * time.Hour)
	now := time.Now()
	e.Evaluate([]domain.Claim{claim("fp1", "src-1")}, "src-1", false, now)
	e.Evaluate([]domain.Claim{claim("fp1", "src-2")}, "src-2", false, now)
	e.Evaluate([]domain.Claim{claim("fp1", "src-3")}, "src-3", false, now)
	e.Evaluate([]domain.Claim{claim("fp1", "src-4")}, "src-4", false, now)

	result := e.Evaluate([]domain.Claim{claim("fp1", "src-5")}, "src-5", false, now)
	assert.Equal(t, domain.CorroborationStrong, result.Level)
}

func TestCorroborationEngine_OfficialSourceAmongFourPlusMatchesIsVerified(t *testing.T) {
	e := NewCorroborationEngine(48 * time.Hour)
	now := time.Now()
	e.Evaluate([]domain.Claim{claim("fp1", "src-1")}, "src-1", true, now)
	e.Evaluate([]domain.Claim{claim("fp1", "src-2")}, "src-2", false, now)
	e.Evaluate([]domain.Claim{claim("fp1", "src-3")}, "src-3", false, now)
	e.Evaluate([]domain.Claim{claim("fp1", "src-4")}, "src-4", false, now)

	result := e.Evaluate([]domain.Claim{claim("fp1", "src-5")}, "src-5", false, now)
	assert.Equal(t, domain.CorroborationVerified, result.Level)
	assert.True(t, result.HasOfficial)
}

func TestCorroborationEngine_SameSourceDoesNotCorroborateItself(t *testing.T) {
	e := NewCorroborationEngine(48 * time.Hour)
	now := time.Now()
	e.Evaluate([]domain.Claim{claim("fp1", "src-1")}, "src-1", false, now)

	result := e.Evaluate([]domain.Claim{claim("fp1", "src-1")}, "src-1", false, now)
	assert.Equal(t, domain.CorroborationNone, result.Level)
}

func TestCorroborationEngine_EntriesOutsideWindowAreEvicted(t *testing.T) {
	e := NewCorroborationEngine(1 * time.Hour)
	past := time.Now().Add(-2 * time.Hour)
	e.Evaluate([]domain.Claim{claim("fp1", "src-1")}, "src-1", false, past)

	result := e.Evaluate([]domain.Claim{claim("fp1", "src-2")}, "src-2", false, time.Now())
	assert.Equal(t, domain.CorroborationNone, result.Level)
}
