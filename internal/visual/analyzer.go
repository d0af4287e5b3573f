// Package visual decides whether an AI response needs generated images and,
// when it does, which ones. Classification is pure keyword matching over a
// fixed vocabulary so the same input always yields the same requirements.
package visual

import (
	"strings"

	"github.com/Aadiprofessional/matrixai-stream/domain/entities"
)

const (
	// UnitCoinCost is charged per generated image.
	UnitCoinCost = 50

	// genericPosition is the insertion offset for the single fallback
	// requirement when no specific rule matched.
	genericPosition = 150

	// estimatedResponseLength approximates how long a chart-bearing
	// response runs, used to space chart positions evenly.
	estimatedResponseLength = 600
)

// imageKeywords gate the analyzer: if none of these appear anywhere in the
// combined text, no rule is consulted at all.
var imageKeywords = []string{
	"chart", "graph", "plot", "diagram", "visualization", "image", "picture",
	"show me", "create a", "generate", "draw", "illustrate", "design",
	"bar chart", "line chart", "pie chart", "scatter plot", "histogram",
	"flowchart", "tree diagram", "network diagram", "architecture",
}

// Rule is one entry in the analyzer's ordered rule chain. Match inspects the
// lowercased combined text; Build produces the canned requirements, given the
// original user message and the combined text.
type Rule struct {
	Name  string
	Match func(text string) bool
	Build func(userMessage, text string) []entities.ImageRequirement
}

// Decision is the analyzer verdict for one message.
type Decision struct {
	ShouldGenerate bool                        `json:"should_generate"`
	ContentType    string                      `json:"content_type"`
	Reasoning      string                      `json:"reasoning"`
	Requirements   []entities.ImageRequirement `json:"image_requirements"`
	TotalCoinCost  int                         `json:"total_coin_cost"`
}

// Analyzer classifies messages with an ordered rule chain. The zero value is
// not usable; construct with NewAnalyzer.
type Analyzer struct {
	rules []Rule
}

// NewAnalyzer returns an analyzer over the given rule chain, or the built-in
// chain when none is supplied.
func NewAnalyzer(rules ...Rule) *Analyzer {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Analyzer{rules: rules}
}

// Analyze inspects the user message plus whatever portion of the AI response
// has arrived so far and decides which images to generate. It is synchronous
// and deterministic; no network calls.
func (a *Analyzer) Analyze(userMessage, aiResponseSoFar string) Decision {
	combined := strings.ToLower(userMessage + " " + aiResponseSoFar)

	if !containsAnyKeyword(combined) {
		return Decision{Reasoning: "no visual content keywords detected"}
	}

	for _, rule := range a.rules {
		if !rule.Match(combined) {
			continue
		}
		reqs := rule.Build(userMessage, combined)
		if len(reqs) == 0 {
			continue
		}
		return Decision{
			ShouldGenerate: true,
			ContentType:    rule.Name,
			Reasoning:      "matched " + rule.Name + " rule",
			Requirements:   reqs,
			TotalCoinCost:  len(reqs) * UnitCoinCost,
		}
	}

	return Decision{Reasoning: "keywords present but no rule produced requirements"}
}

func containsAnyKeyword(text string) bool {
	for _, kw := range imageKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
