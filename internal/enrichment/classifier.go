// Package enrichment implements the L2 Enrichment Pipeline (spec.md 4.5):
// hybrid indicator classification, sentiment, entity extraction, and
// quality scoring, run in parallel across articles and sequentially across
// an article's own sub-stages.
package enrichment

import (
	"regexp"
	"sort"
	"strings"

	"github.com/aristath/newsintel/internal/domain"
)

// IndicatorLabel is one of the closed set of 10 indicator-level labels the
// classifier assigns (spec.md 4.5).
type IndicatorLabel string

const (
	IndicatorPoliticalUnrest   IndicatorLabel = "POL_UNREST"
	IndicatorInflation         IndicatorLabel = "ECO_INFLATION"
	IndicatorCurrency          IndicatorLabel = "ECO_CURRENCY"
	IndicatorConsumerConf      IndicatorLabel = "ECO_CONSUMER_CONF"
	IndicatorSupplyChain       IndicatorLabel = "ECO_SUPPLY_CHAIN"
	IndicatorTourism           IndicatorLabel = "ECO_TOURISM"
	IndicatorWeather           IndicatorLabel = "ENV_WEATHER"
	IndicatorTransport         IndicatorLabel = "OPS_TRANSPORT"
	IndicatorPower             IndicatorLabel = "TEC_POWER"
	IndicatorHealthcare        IndicatorLabel = "SOC_HEALTHCARE"
)

// AllIndicatorLabels lists the closed set in a stable order.
var AllIndicatorLabels = []IndicatorLabel{
	IndicatorPoliticalUnrest, IndicatorInflation, IndicatorCurrency,
	IndicatorConsumerConf, IndicatorSupplyChain, IndicatorTourism,
	IndicatorWeather, IndicatorTransport, IndicatorPower, IndicatorHealthcare,
}

// PESTELForIndicator maps each indicator label to its PESTEL category.
var PESTELForIndicator = map[IndicatorLabel]domain.PESTELCategory{
	IndicatorPoliticalUnrest: domain.PESTELPolitical,
	IndicatorInflation:       domain.PESTELEconomic,
	IndicatorCurrency:        domain.PESTELEconomic,
	IndicatorConsumerConf:    domain.PESTELEconomic,
	IndicatorSupplyChain:     domain.PESTELEconomic,
	IndicatorTourism:         domain.PESTELEconomic,
	IndicatorWeather:         domain.PESTELEnvironmental,
	IndicatorTransport:       domain.PESTELTechnological,
	IndicatorPower:           domain.PESTELTechnological,
	IndicatorHealthcare:      domain.PESTELSocial,
}

var indicatorKeywords = map[IndicatorLabel][]string{
	IndicatorPoliticalUnrest: {"protest", "unrest", "riot", "curfew", "martial law", "strike", "demonstration", "clash"},
	IndicatorInflation:       {"inflation", "price hike", "cost of living", "cpi", "price increase"},
	IndicatorCurrency:        {"currency", "exchange rate", "rupee", "depreciation", "forex reserve", "devaluation"},
	IndicatorConsumerConf:    {"consumer confidence", "retail sales", "spending", "consumer sentiment"},
	IndicatorSupplyChain:     {"supply chain", "shortage", "logistics disruption", "import restriction", "stockpile"},
	IndicatorTourism:         {"tourist arrival", "tourism", "hotel occupancy", "visitor numbers"},
	IndicatorWeather:         {"cyclone", "flood", "drought", "monsoon", "heatwave", "rainfall"},
	IndicatorTransport:       {"port congestion", "railway", "highway closure", "fuel queue", "transport strike"},
	IndicatorPower:           {"power cut", "load shedding", "blackout", "grid failure", "electricity shortage"},
	IndicatorHealthcare:      {"hospital", "outbreak", "epidemic", "vaccine", "healthcare", "disease"},
}

var wordBoundary = regexp.MustCompile(`[^a-z0-9]+`)

func normalizeForMatch(text string) string {
	return " " + wordBoundary.ReplaceAllString(strings.ToLower(text), " ") + " "
}

// RulePrediction is one indicator-level rule-classifier output.
type RulePrediction struct {
	Indicator  IndicatorLabel
	Confidence float64
}

// RuleClassifier assigns indicator confidences from word-boundary keyword
// matches, title matches doubling the effective hit count the way a
// keyword-driven classifier typically boosts title signal.
type RuleClassifier struct{}

func NewRuleClassifier() *RuleClassifier { return &RuleClassifier{} }

func (c *RuleClassifier) Classify(title, body string) []RulePrediction {
	fullText := normalizeForMatch(title + " " + body)
	titleText := normalizeForMatch(title)

	var preds []RulePrediction
	for _, ind := range AllIndicatorLabels {
		hits := 0
		for _, kw := range indicatorKeywords[ind] {
			needle := " " + kw + " "
			if strings.Contains(fullText, needle) {
				hits++
				if strings.Contains(titleText, needle) {
					hits++
				}
			}
		}
		if hits == 0 {
			continue
		}
		preds = append(preds, RulePrediction{Indicator: ind, Confidence: confidenceFromHits(hits)})
	}
	return preds
}

// confidenceFromHits maps a keyword hit count to a confidence in [0,1],
// saturating quickly since a handful of matches is already strong evidence
// for a short news article.
func confidenceFromHits(hits int) float64 {
	switch {
	case hits >= 4:
		return 0.95
	case hits == 3:
		return 0.85
	case hits == 2:
		return 0.65
	default:
		return 0.45
	}
}

// MLClassifier is the capability interface for an optional trained model
// stage. The training pipeline itself is out of scope (downstream-ML-framework
// territory); StubMLClassifier below is a deterministic placeholder good
// enough to exercise the blend formula.
type MLClassifier interface {
	Classify(title, body string, category domain.PESTELCategory) map[IndicatorLabel]float64
	Fitted() bool
}

// StubMLClassifier reports itself unfitted, so the hybrid blend degrades to
// rule-only (method="rule_only" in the original source's terms) until a real
// trained model is wired in.
type StubMLClassifier struct{}

func (StubMLClassifier) Classify(string, string, domain.PESTELCategory) map[IndicatorLabel]float64 {
	return nil
}
func (StubMLClassifier) Fitted() bool { return false }

// IndicatorPrediction is one hybrid-classifier output.
type IndicatorPrediction struct {
	Indicator      IndicatorLabel
	Confidence     float64
	Method         string // rule_only | ml_only | hybrid
	RuleConfidence float64
	MLConfidence   float64
}

// HybridClassifier blends RuleClassifier and MLClassifier output per
// spec.md 4.5's weighted-blend formula, with the rule-confidence-dependent
// weight override and a top-4 output limit.
type HybridClassifier struct {
	rule            *RuleClassifier
	ml              MLClassifier
	defaultWeightRule float64
	indicatorWeights  map[IndicatorLabel]float64
	minConfidence     float64
}

// NewHybridClassifier builds a classifier with the spec's default rule
// weight of 0.7 and per-indicator overrides (empty until tuned offline).
func NewHybridClassifier(ml MLClassifier, minConfidence float64) *HybridClassifier {
	if ml == nil {
		ml = StubMLClassifier{}
	}
	return &HybridClassifier{
		rule:              NewRuleClassifier(),
		ml:                ml,
		defaultWeightRule: 0.7,
		indicatorWeights:  make(map[IndicatorLabel]float64),
		minConfidence:     minConfidence,
	}
}

// SetIndicatorWeight overrides the rule-vs-ml blend weight for one
// indicator, e.g. from an offline grid-search tuning run.
func (c *HybridClassifier) SetIndicatorWeight(ind IndicatorLabel, weightRule float64) {
	c.indicatorWeights[ind] = weightRule
}

// Classify runs the rule classifier (always) and the ML classifier (if
// fitted), blends them, filters below minConfidence, and returns the top 4
// by confidence descending.
func (c *HybridClassifier) Classify(title, body string, category domain.PESTELCategory) []IndicatorPrediction {
	ruleConf := make(map[IndicatorLabel]float64)
	for _, p := range c.rule.Classify(title, body) {
		ruleConf[p.Indicator] = p.Confidence
	}

	var mlConf map[IndicatorLabel]float64
	if c.ml.Fitted() {
		mlConf = c.ml.Classify(title, body, category)
	}

	seen := make(map[IndicatorLabel]struct{}, len(ruleConf)+len(mlConf))
	for ind := range ruleConf {
		seen[ind] = struct{}{}
	}
	for ind := range mlConf {
		seen[ind] = struct{}{}
	}

	var out []IndicatorPrediction
	for ind := range seen {
		rc := ruleConf[ind]
		mc := mlConf[ind]

		weightRule := c.indicatorWeights[ind]
		if weightRule == 0 {
			weightRule = c.defaultWeightRule
		}
		switch {
		case rc > 0.8:
			weightRule = 0.9
		case rc < 0.3:
			weightRule = 0.4
		}
		weightML := 1 - weightRule

		var hybrid float64
		var method string
		switch {
		case rc > 0 && mc > 0:
			hybrid = rc*weightRule + mc*weightML
			method = "hybrid"
		case rc > 0:
			hybrid = rc * weightRule
			method = "rule_only"
		case mc > 0:
			hybrid = mc * weightML
			method = "ml_only"
		default:
			continue
		}

		if hybrid < c.minConfidence {
			continue
		}
		out = append(out, IndicatorPrediction{
			Indicator: ind, Confidence: hybrid, Method: method,
			RuleConfidence: rc, MLConfidence: mc,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	if len(out) > 4 {
		out = out[:4]
	}
	return out
}
