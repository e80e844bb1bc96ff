package enrichment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/newsintel/internal/domain"
)

func TestEntityExtractor_FindsGovernmentBodyAndCurrency(t *testing.T) {
	e := NewEntityExtractor()
	entities := e.Extract("The Central Bank raised rates as the rupee weakened against the dollar.")

	var types []domain.EntityType
	for _, ent := range entities {
		types = append(types, ent.Type)
	}
	assert.Contains(t, types, domain.EntityGovernment)
	assert.Contains(t, types, domain.EntityCurrency)
}

func TestEntityExtractor_FindsPersonByTitle(t *testing.T) {
	e := NewEntityExtractor()
	entities := e.Extract("President Wickremesinghe addressed the nation on Friday.")

	var found bool
	for _, ent := range entities {
		if ent.Type == domain.EntityPerson {
			found = true
		}
	}
	assert.True(t, found, "expected a person entity, got %v", entities)
}

func TestEntityExtractor_FindsOrganizationBySuffix(t *testing.T) {
	e := NewEntityExtractor()
	entities := e.Extract("SriLankan Airlines announced new routes this quarter.")

	var found bool
	for _, ent := range entities {
		if ent.Type == domain.EntityOrganization {
			found = true
		}
	}
	assert.True(t, found, "expected an organization entity, got %v", entities)
}

func TestEntityExtractor_EmptyTextReturnsEmptyNotError(t *testing.T) {
	e := NewEntityExtractor()
	entities := e.Extract("")
	assert.Empty(t, entities)
}

func TestEntityExtractor_DeduplicatesRepeatedMentions(t *testing.T) {
	e := NewEntityExtractor()
	entities := e.Extract("The Central Bank said rates would rise. The Central Bank confirmed the decision.")

	count := 0
	for _, ent := range entities {
		if ent.Type == domain.EntityGovernment {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
