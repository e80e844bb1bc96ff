package impact

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aristath/newsintel/internal/domain"
)

// Sector is one of the 17 closed business sectors spec.md 4.4 scores
// against.
type Sector string

const (
	SectorTourism         Sector = "tourism"
	SectorFinance         Sector = "finance"
	SectorRetail          Sector = "retail"
	SectorManufacturing   Sector = "manufacturing"
	SectorAgriculture     Sector = "agriculture"
	SectorTransport       Sector = "transport"
	SectorEnergy          Sector = "energy"
	SectorHealthcare      Sector = "healthcare"
	SectorConstruction    Sector = "construction"
	SectorITServices      Sector = "it_services"
	SectorTelecom         Sector = "telecommunications"
	SectorApparel         Sector = "apparel"
	SectorTeaExport       Sector = "tea_export"
	SectorSeafood         Sector = "seafood"
	SectorRealEstate      Sector = "real_estate"
	SectorEducation       Sector = "education"
	SectorGeneral         Sector = "general"
)

var sectorKeywords = map[Sector][]string{
	SectorTourism:       {"tourist", "tourism", "hotel", "resort", "travel", "airline", "visitor", "hospitality", "booking"},
	SectorFinance:       {"bank", "banking", "finance", "loan", "interest rate", "investment", "stock", "share", "credit", "deposit", "insurance", "forex"},
	SectorRetail:        {"retail", "shop", "store", "supermarket", "consumer", "shopping", "mall", "price", "goods", "fmcg"},
	SectorManufacturing: {"factory", "manufacturing", "production", "industrial", "plant", "assembly", "machinery", "export"},
	SectorAgriculture:   {"farmer", "agriculture", "crop", "harvest", "fertilizer", "irrigation", "farming", "yield", "cultivation", "plantation"},
	SectorTransport:     {"transport", "logistics", "shipping", "port", "road", "highway", "bus", "rail", "railway", "trucking", "cargo", "freight", "container"},
	SectorEnergy:        {"power", "electricity", "fuel", "petrol", "diesel", "gas", "energy", "solar", "wind", "hydro", "power cut", "load shedding"},
	SectorHealthcare:    {"hospital", "health", "medical", "pharma", "pharmaceutical", "clinic", "doctor", "patient", "medicine", "drug", "vaccine", "epidemic"},
	SectorConstruction:  {"construction", "building", "infrastructure", "project", "cement", "steel", "property", "development", "contractor"},
	SectorITServices:    {"software", "technology", "digital", "startup", "bpo", "outsourcing", "data center", "cloud", "fintech", "e-commerce"},
	SectorTelecom:       {"telecom", "mobile", "network", "broadband", "5g", "4g", "internet", "fiber"},
	SectorApparel:       {"garment", "apparel", "textile", "clothing", "fashion", "sewing"},
	SectorTeaExport:     {"tea", "ceylon tea", "tea export", "tea auction", "tea factory", "tea board"},
	SectorSeafood:       {"fish", "fishing", "seafood", "trawler", "fishery", "fish market", "prawn", "lobster"},
	SectorRealEstate:    {"real estate", "property", "land", "apartment", "housing", "residential", "commercial property"},
	SectorEducation:     {"education", "school", "university", "student", "exam", "admission", "scholarship", "tuition", "college"},
	SectorGeneral:       {},
}

// dependency is one directed, weighted edge in the sector dependency DAG:
// if the "from" sector is disrupted, "to" is affected at the given
// strength in [0,1].
type dependency struct {
	to       Sector
	strength float64
}

var sectorDependencies = map[Sector][]dependency{
	SectorEnergy: {
		{SectorManufacturing, 0.9}, {SectorRetail, 0.7}, {SectorITServices, 0.8}, {SectorTransport, 0.6},
	},
	SectorTransport: {
		{SectorRetail, 0.8}, {SectorManufacturing, 0.7}, {SectorAgriculture, 0.6}, {SectorTourism, 0.5},
	},
	SectorFinance: {
		{SectorRealEstate, 0.8}, {SectorConstruction, 0.7}, {SectorRetail, 0.6},
	},
	SectorTourism: {
		{SectorTransport, 0.7}, {SectorRetail, 0.6}, {SectorHealthcare, 0.3},
	},
	SectorAgriculture: {
		{SectorRetail, 0.7}, {SectorManufacturing, 0.5},
	},
	SectorConstruction: {
		{SectorRealEstate, 0.8}, {SectorManufacturing, 0.6},
	},
	SectorTelecom: {
		{SectorITServices, 0.8}, {SectorFinance, 0.5}, {SectorRetail, 0.4},
	},
}

var eventTypeMultipliers = map[domain.EventType]map[Sector]float64{
	domain.EventFuelShortage: {
		SectorTransport: 1.5, SectorManufacturing: 1.3, SectorAgriculture: 1.2, SectorTourism: 1.2,
	},
	domain.EventPowerCrisis: {
		SectorManufacturing: 1.5, SectorITServices: 1.4, SectorRetail: 1.2, SectorHealthcare: 1.3,
	},
	domain.EventCurrencyCrisis: {
		SectorFinance: 1.5, SectorRetail: 1.3, SectorManufacturing: 1.2, SectorApparel: 1.1,
	},
	domain.EventNaturalDisaster: {
		SectorAgriculture: 1.5, SectorConstruction: 1.3, SectorTourism: 1.4, SectorTransport: 1.2,
	},
	domain.EventPolicyChange: {
		SectorFinance: 1.3, SectorRetail: 1.2, SectorManufacturing: 1.2,
	},
}

var specificSeverityKeywords = []string{"crisis", "shortage", "closure", "strike", "collapse"}

type sectorMatch struct {
	sector Sector
	impact float64
}

// sectorRelevanceAndCascades returns the overall sector-relevance factor
// (the mean impact across the top-3 matched sectors, spec.md 4.4: "multi-sector
// keyword match ... apply event-type multipliers ... compute cascade effects
// from a sector-dependency graph") plus the per-sector cascade effects.
func sectorRelevanceAndCascades(fullText, title string, eventType domain.EventType) (float64, map[string]float64) {
	var matches []sectorMatch

	for sector, keywords := range sectorKeywords {
		if len(keywords) == 0 {
			continue
		}
		matched := matchedKeywords(fullText, keywords)
		if len(matched) == 0 {
			continue
		}
		relevance := sectorRelevance(matched, keywords, title)
		impact := sectorImpact(sector, relevance, matched, eventType)
		matches = append(matches, sectorMatch{sector: sector, impact: impact})
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].impact > matches[j].impact })

	primary := matches
	if len(primary) > 3 {
		primary = primary[:3]
	}

	var overall float64
	for _, m := range primary {
		overall += m.impact
	}
	if len(primary) > 0 {
		overall /= float64(len(primary))
	}

	cascades := cascadeEffects(primary)
	return overall, cascades
}

func matchedKeywords(text string, keywords []string) []string {
	var out []string
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			out = append(out, kw)
		}
	}
	return out
}

// sectorRelevance computes `min(100, match_ratio*100 + title_boost +
// multi_match_boost)` (spec.md 4.4), capping the match-ratio denominator at
// 10 keywords as the original source does.
func sectorRelevance(matched, all []string, title string) float64 {
	denom := len(all)
	if denom > 10 {
		denom = 10
	}
	matchRatio := float64(len(matched)) / float64(denom)
	base := min(matchRatio*100, 100)

	titleMatches := 0
	for _, kw := range matched {
		if strings.Contains(title, kw) {
			titleMatches++
		}
	}
	titleBoost := float64(titleMatches) * 15

	var multiMatchBoost float64
	if len(matched) > 1 {
		multiMatchBoost = min(float64(len(matched)-1)*10, 30)
	}

	return min(base+titleBoost+multiMatchBoost, 100)
}

func sectorImpact(sector Sector, relevance float64, matched []string, eventType domain.EventType) float64 {
	impact := relevance * 0.7

	if multipliers, ok := eventTypeMultipliers[eventType]; ok {
		if m, ok := multipliers[sector]; ok {
			impact *= m
		}
	}

	joined := strings.Join(matched, " ")
	if containsAny(joined, specificSeverityKeywords) {
		impact *= 1.3
	}

	return min(impact, 100)
}

// CascadeEffect describes one dependency-graph propagation from a directly
// matched sector to a downstream one.
type CascadeEffect struct {
	FromSector string
	ToSector   string
	Strength   float64
	Impact     float64
}

// cascadeEffects walks the dependency DAG from each primary (top-3) sector,
// keeping only cascades estimated at >=20 impact, matching the original
// source's significance cutoff.
func cascadeEffects(primary []sectorMatch) map[string]float64 {
	out := make(map[string]float64)
	var ordered []CascadeEffect

	for _, p := range primary {
		for _, dep := range sectorDependencies[p.sector] {
			cascadeImpact := p.impact * dep.strength * 0.7
			if cascadeImpact < 20 {
				continue
			}
			ordered = append(ordered, CascadeEffect{
				FromSector: string(p.sector),
				ToSector:   string(dep.to),
				Strength:   dep.strength,
				Impact:     cascadeImpact,
			})
		}
	}

	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Impact > ordered[j].Impact })
	if len(ordered) > 5 {
		ordered = ordered[:5]
	}

	for _, c := range ordered {
		key := fmt.Sprintf("%s->%s", c.FromSector, c.ToSector)
		out[key] = c.Impact
	}
	return out
}

// ValidateSectorDAGAcyclic walks sectorDependencies with DFS coloring and
// returns an error if any cycle is found. Called once at package init
// (spec.md 9: "implementations must validate acyclicity on load").
func ValidateSectorDAGAcyclic() error {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[Sector]int)

	var visit func(s Sector) error
	visit = func(s Sector) error {
		color[s] = gray
		for _, dep := range sectorDependencies[s] {
			switch color[dep.to] {
			case gray:
				return fmt.Errorf("sector dependency cycle detected at %s -> %s", s, dep.to)
			case white:
				if err := visit(dep.to); err != nil {
					return err
				}
			}
		}
		color[s] = black
		return nil
	}

	for s := range sectorDependencies {
		if color[s] == white {
			if err := visit(s); err != nil {
				return err
			}
		}
	}
	return nil
}
