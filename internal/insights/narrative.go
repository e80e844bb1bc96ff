package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aristath/newsintel/internal/domain"
	"github.com/aristath/newsintel/internal/repository"
)

// riskEmoji/opportunityEmoji select a marker for the narrative headline.
func riskEmoji(severity domain.SeverityLevel) string {
	switch severity {
	case domain.SeverityCritical:
		return "\U0001F6A8" // rotating light
	case domain.SeverityHigh:
		return "⚠️" // warning sign
	case domain.SeverityMedium:
		return "⚡" // lightning bolt
	default:
		return "ℹ️" // information
	}
}

func opportunityEmoji(severity domain.SeverityLevel) string {
	switch severity {
	case domain.SeverityCritical, domain.SeverityHigh:
		return "\U0001F3AF" // direct hit
	case domain.SeverityMedium:
		return "\U0001F4A1" // light bulb
	default:
		return "\U0001F50D" // magnifying glass
	}
}

var riskTimeframeByUrgency = map[int]string{
	5: "within 24-48 hours",
	4: "within this week",
	3: "within the next two weeks",
	2: "in the near term",
	1: "over the coming period",
}

var methodNames = map[domain.DetectionMethod]string{
	domain.DetectionRuleBased: "rule-based detection",
	domain.DetectionPattern:   "historical pattern matching",
	domain.DetectionML:        "machine learning prediction",
	domain.DetectionCombined:  "multiple detection methods",
}

// NarrativeGenerator produces the multi-paragraph narrative attached to
// each risk/opportunity, with an optional LLM enhancement pass behind a
// strict JSON contract and a rule-based fallback (spec.md 4.7).
type NarrativeGenerator struct {
	llm repository.LLM
}

func NewNarrativeGenerator(llm repository.LLM) *NarrativeGenerator {
	return &NarrativeGenerator{llm: llm}
}

// GenerateRisk builds the templated narrative, then (if an LLM is wired)
// attempts a JSON-contracted rewrite of the summary paragraph; any failure
// or contract violation keeps the templated text.
func (g *NarrativeGenerator) GenerateRisk(ctx context.Context, risk domain.DetectedRisk, profile domain.CompanyProfile) string {
	narrative := g.templateRisk(risk, profile)
	if g.llm == nil {
		return narrative
	}
	if enhanced, ok := g.llmEnhanceRisk(ctx, risk, profile); ok {
		return enhanced
	}
	return narrative
}

func (g *NarrativeGenerator) GenerateOpportunity(ctx context.Context, opp domain.DetectedOpportunity, profile domain.CompanyProfile) string {
	narrative := g.templateOpportunity(opp, profile)
	if g.llm == nil {
		return narrative
	}
	if enhanced, ok := g.llmEnhanceOpportunity(ctx, opp, profile); ok {
		return enhanced
	}
	return narrative
}

func (g *NarrativeGenerator) templateRisk(risk domain.DetectedRisk, profile domain.CompanyProfile) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s RISK: %s\n\n", riskEmoji(risk.SeverityLevel), strings.ToUpper(string(risk.SeverityLevel)), risk.Title)

	companyName := profile.Name
	if companyName == "" {
		companyName = "Your company"
	}
	timeframe := riskTimeframeByUrgency[risk.Urgency]
	if timeframe == "" {
		timeframe = "in the foreseeable future"
	}
	fmt.Fprintf(&b, "%s's %s operations show %s signals. %d key indicator(s) have reached concerning levels. %.0f%% probability of impact %s.\n\n",
		companyName, risk.Category, risk.SeverityLevel, len(risk.TriggeringIndicators), risk.Probability*100, timeframe)

	b.WriteString("**Current Situation:**\n")
	b.WriteString(risk.Description)
	b.WriteString("\n\n**Key Indicators:**\n")
	for indicator, value := range risk.TriggeringIndicators {
		fmt.Fprintf(&b, "- %s: %.0f/100\n", indicator, value)
	}

	methodName := methodNames[risk.DetectionMethod]
	if methodName == "" {
		methodName = string(risk.DetectionMethod)
	}
	fmt.Fprintf(&b, "\n**Detection Method:** %s\n", methodName)
	fmt.Fprintf(&b, "\n**Company Context:** %s %s business\n", profile.Scale, profile.Sector)

	b.WriteString("\n**Potential Business Impact:**\n")
	fmt.Fprintf(&b, "- Severity: %s (%.1f/10)\n", strings.ToUpper(string(risk.SeverityLevel)), risk.Impact)
	fmt.Fprintf(&b, "- Probability: %.0f%%\n", risk.Probability*100)
	if profile.AnnualRevenue > 0 {
		estimatedPct := (risk.Impact / 10) * 0.20
		fmt.Fprintf(&b, "- Estimated revenue impact: %.1f%% (~%.0f)\n", estimatedPct*100, profile.AnnualRevenue*estimatedPct)
	}
	fmt.Fprintf(&b, "- Confidence: %.0f%%\n", risk.Confidence*100)

	if risk.DetectionMethod == domain.DetectionPattern || risk.DetectionMethod == domain.DetectionCombined {
		if risk.Reasoning != "" {
			fmt.Fprintf(&b, "\n**Historical Precedent:**\n%s\n", risk.Reasoning)
		}
	}

	b.WriteString("\n")
	switch {
	case risk.RequiresImmediateAction:
		b.WriteString("⏰ **IMMEDIATE ACTION REQUIRED** - Review recommendations and implement a response plan today.")
	case risk.Urgency >= 3:
		b.WriteString("\U0001F4C5 **ACTION NEEDED SOON** - Schedule response planning within the next few days.")
	default:
		b.WriteString("\U0001F441️ **MONITORING RECOMMENDED** - Track indicators and prepare contingency plans.")
	}

	return b.String()
}

func (g *NarrativeGenerator) templateOpportunity(opp domain.DetectedOpportunity, profile domain.CompanyProfile) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s PRIORITY OPPORTUNITY: %s\n\n", opportunityEmoji(opp.SeverityLevel), strings.ToUpper(string(opp.SeverityLevel)), opp.Title)

	companyName := profile.Name
	if companyName == "" {
		companyName = "Your company"
	}
	fmt.Fprintf(&b, "%s has a %s priority %s opportunity. Potential value score: %.1f/10, feasibility: %.0f%%.\n\n",
		companyName, opp.SeverityLevel, opp.Category, opp.Value, opp.Feasibility*100)

	b.WriteString("**Opportunity Description:**\n")
	b.WriteString(opp.Description)
	b.WriteString("\n\n**Triggering Factors:**\n")
	for factor, value := range opp.TriggeringIndicators {
		fmt.Fprintf(&b, "- %s: %.0f\n", factor, value)
	}
	fmt.Fprintf(&b, "\n**Company Context:** %s %s business\n", profile.Scale, profile.Sector)

	b.WriteString("\n**Potential Business Value:**\n")
	fmt.Fprintf(&b, "- Value Score: %.1f/10\n", opp.Value)
	fmt.Fprintf(&b, "- Feasibility: %.0f%%\n", opp.Feasibility*100)

	b.WriteString("\n")
	switch {
	case opp.SeverityLevel == domain.SeverityCritical || opp.SeverityLevel == domain.SeverityHigh:
		b.WriteString("\U0001F3AF **ACT NOW** - High-value opportunity with a limited window. Begin implementation immediately.")
	case opp.Urgency >= 3:
		b.WriteString("\U0001F4A1 **PLAN AND EXECUTE** - Develop an implementation plan and allocate resources soon.")
	default:
		b.WriteString("\U0001F50D **EVALUATE** - Assess feasibility and strategic alignment before committing resources.")
	}

	return b.String()
}

type riskEnhancement struct {
	Summary string `json:"summary"`
}

func (g *NarrativeGenerator) llmEnhanceRisk(ctx context.Context, risk domain.DetectedRisk, profile domain.CompanyProfile) (string, bool) {
	system := `You are an expert business risk analyst. Respond ONLY with JSON matching exactly:
{"summary": "a 2-3 sentence executive summary"}`
	user := fmt.Sprintf("Company: %s (%s, %s)\nRisk: %s\nCategory: %s\nSeverity: %s\nProbability: %.2f\nDescription: %s",
		profile.Name, profile.Scale, profile.Sector, risk.Title, risk.Category, risk.SeverityLevel, risk.Probability, risk.Description)

	result, err := g.llm.Invoke(ctx, system, user)
	if err != nil || result.Source == "fallback" {
		return "", false
	}

	var enh riskEnhancement
	if !decodeJSONResult(result, &enh) || enh.Summary == "" {
		return "", false
	}

	return g.templateRisk(risk, profile) + "\n\n**LLM Summary:**\n" + enh.Summary, true
}

func (g *NarrativeGenerator) llmEnhanceOpportunity(ctx context.Context, opp domain.DetectedOpportunity, profile domain.CompanyProfile) (string, bool) {
	system := `You are a strategic business advisor. Respond ONLY with JSON matching exactly:
{"summary": "a 2-3 sentence executive summary"}`
	user := fmt.Sprintf("Company: %s (%s, %s)\nOpportunity: %s\nCategory: %s\nValue: %.1f\nFeasibility: %.2f\nDescription: %s",
		profile.Name, profile.Scale, profile.Sector, opp.Title, opp.Category, opp.Value, opp.Feasibility, opp.Description)

	result, err := g.llm.Invoke(ctx, system, user)
	if err != nil || result.Source == "fallback" {
		return "", false
	}

	var enh riskEnhancement
	if !decodeJSONResult(result, &enh) || enh.Summary == "" {
		return "", false
	}

	return g.templateOpportunity(opp, profile) + "\n\n**LLM Summary:**\n" + enh.Summary, true
}

// decodeJSONResult re-marshals an already-parsed LLMResult.JSON map into a
// typed struct, enforcing the strict contract (unknown/missing fields
// simply fail the enhancement rather than panic).
func decodeJSONResult(result repository.LLMResult, out any) bool {
	if result.JSON == nil {
		return false
	}
	raw, err := json.Marshal(result.JSON)
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}
