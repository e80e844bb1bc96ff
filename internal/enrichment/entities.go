package enrichment

import (
	"regexp"
	"sort"
	"strings"

	"github.com/aristath/newsintel/internal/domain"
)

var (
	governmentBodies = []string{
		"ministry of finance", "ministry of health", "ministry of defence",
		"central bank", "cbsl", "parliament", "cabinet", "presidential secretariat",
		"disaster management centre", "dmc", "ceylon electricity board", "ceb",
	}
	currencyTerms = []string{"rupee", "dollar", "usd", "lkr", "euro", "pound sterling"}
	eventTerms    = []string{"election", "summit", "referendum", "ceasefire", "protest", "strike", "cabinet reshuffle"}

	capitalizedRun = regexp.MustCompile(`\b([A-Z][a-zA-Z.'-]*(?:\s+[A-Z][a-zA-Z.'-]*){0,3})\b`)

	personTitles = []string{"president", "minister", "prime minister", "governor", "secretary", "mr.", "mrs.", "dr."}
	orgSuffixes  = []string{"ltd", "inc", "corp", "plc", "board", "authority", "commission", "bank", "airlines", "holdings"}
	locationHints = []string{"province", "district", "colombo", "kandy", "galle", "jaffna", "negombo", "city", "town"}
)

// EntityExtractor recognizes entities from the closed domain.EntityType
// ontology using keyword lookups for closed categories and a
// capitalization heuristic (title/suffix/location cue scored) for the
// open-ended person/organization/location categories. It never errors;
// a text it cannot parse simply yields no entities (spec.md 4.5).
type EntityExtractor struct{}

func NewEntityExtractor() *EntityExtractor { return &EntityExtractor{} }

func (e *EntityExtractor) Extract(text string) []domain.Entity {
	defer func() { recover() }() // extraction never fails the pipeline

	lower := strings.ToLower(text)
	var entities []domain.Entity
	seen := make(map[string]struct{})

	add := func(value string, typ domain.EntityType, importance float64) {
		dedupeKey := string(typ) + "|" + strings.ToLower(value)
		if _, ok := seen[dedupeKey]; ok {
			return
		}
		seen[dedupeKey] = struct{}{}
		entities = append(entities, domain.Entity{Text: value, Type: typ, Importance: importance})
	}

	for _, body := range governmentBodies {
		if strings.Contains(lower, body) {
			add(body, domain.EntityGovernment, 0.8)
		}
	}
	for _, cur := range currencyTerms {
		if strings.Contains(lower, cur) {
			add(cur, domain.EntityCurrency, 0.5)
		}
	}
	for _, ev := range eventTerms {
		if strings.Contains(lower, ev) {
			add(ev, domain.EntityEvent, 0.5)
		}
	}

	for _, match := range capitalizedRun.FindAllString(text, -1) {
		candidate := strings.TrimSpace(match)
		if len(candidate) < 3 {
			continue
		}
		candidateLower := strings.ToLower(candidate)

		switch {
		case containsAny(candidateLower, personTitles):
			add(candidate, domain.EntityPerson, 0.6)
		case hasSuffix(candidateLower, orgSuffixes):
			add(candidate, domain.EntityOrganization, 0.6)
		case containsAny(candidateLower, locationHints):
			add(candidate, domain.EntityLocation, 0.5)
		}
	}

	sort.SliceStable(entities, func(i, j int) bool { return entities[i].Importance > entities[j].Importance })
	return entities
}

func hasSuffix(text string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(text, s) {
			return true
		}
	}
	return false
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
