package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/newsintel/internal/domain"
)

func TestClaimExtractor_ExtractsNumericClaim(t *testing.T) {
	e := NewClaimExtractor()
	claims := e.Extract("Inflation rose to 4.2% last quarter according to analysts.", "a1", "src-1")

	var found bool
	for _, c := range claims {
		if c.Kind == domain.ClaimNumeric {
			found = true
			assert.Contains(t, c.Subject, "Inflation")
			assert.Contains(t, c.Value, "4.2")
		}
	}
	assert.True(t, found, "expected a numeric claim")
}

func TestClaimExtractor_ExtractsAttributionClaim(t *testing.T) {
	e := NewClaimExtractor()
	claims := e.Extract("The Finance Ministry said that the measures would take effect immediately.", "a1", "src-1")

	var found bool
	for _, c := range claims {
		if c.Kind == domain.ClaimAttribution && c.Predicate == "said_that" {
			found = true
		}
	}
	assert.True(t, found, "expected an attribution claim")
}

func TestClaimExtractor_ExtractsAccordingToClaim(t *testing.T) {
	e := NewClaimExtractor()
	claims := e.Extract("According to Reuters, the talks have collapsed entirely.", "a1", "src-1")

	var found bool
	for _, c := range claims {
		if c.Kind == domain.ClaimAttribution && c.Predicate == "according_to" {
			found = true
		}
	}
	assert.True(t, found, "expected an according-to claim")
}

func TestClaimExtractor_ExtractsEventClaim(t *testing.T) {
	e := NewClaimExtractor()
	claims := e.Extract("The Workers Union announced a nationwide strike starting Monday.", "a1", "src-1")

	var found bool
	for _, c := range claims {
		if c.Kind == domain.ClaimEvent {
			found = true
			assert.Equal(t, "announced", c.Predicate)
		}
	}
	assert.True(t, found, "expected an event claim")
}

func TestClaimExtractor_SameUnderlyingClaimProducesSameFingerprint(t *testing.T) {
	e := NewClaimExtractor()
	c1 := e.Extract("The Finance Ministry said that rates would rise.", "a1", "src-1")
	c2 := e.Extract("The Finance Ministry said that rates would rise again soon.", "a2", "src-2")

	require.NotEmpty(t, c1)
	require.NotEmpty(t, c2)
	assert.Equal(t, c1[0].Fingerprint, c2[0].Fingerprint)
}
