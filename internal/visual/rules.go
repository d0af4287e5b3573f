package visual

import (
	"fmt"
	"strings"

	"github.com/Aadiprofessional/matrixai-stream/domain/entities"
)

// chartPattern pairs a recognized chart keyword pair with the description
// template used for its generated image.
type chartPattern struct {
	keywords    []string
	description string
}

var chartPatterns = []chartPattern{
	{[]string{"bar chart", "bar graph"}, "Create a professional bar chart with clear labels, grid lines, and appropriate colors"},
	{[]string{"line chart", "line graph"}, "Create a clean line chart with smooth curves, data points, and professional styling"},
	{[]string{"pie chart"}, "Create a colorful pie chart with percentage labels and legend"},
	{[]string{"scatter plot"}, "Create a scatter plot with clear data points and trend lines if applicable"},
	{[]string{"flowchart", "flow chart"}, "Create a professional flowchart with clear boxes, arrows, and logical flow"},
	{[]string{"diagram", "architecture"}, "Create a detailed technical diagram with clear components and connections"},
}

var genericKeywords = []string{"create", "show", "generate", "visualize", "illustrate"}

// DefaultRules returns the built-in rule chain, ordered most specific first.
// The first rule whose Match fires decides the outcome.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name: "parabola",
			Match: func(text string) bool {
				return strings.Contains(text, "parabola")
			},
			Build: buildParabolaRequirements,
		},
		{
			Name: "trigonometric",
			Match: func(text string) bool {
				return strings.Contains(text, "sine") ||
					strings.Contains(text, "cosine") ||
					strings.Contains(text, "trigonometric")
			},
			Build: buildTrigonometricRequirements,
		},
		{
			Name: "linear-equation",
			Match: func(text string) bool {
				return strings.Contains(text, "linear") && strings.Contains(text, "equation")
			},
			Build: buildLinearRequirements,
		},
		{
			Name:  "chart",
			Match: matchesAnyChartPattern,
			Build: buildChartRequirements,
		},
		{
			Name: "generic",
			Match: func(text string) bool {
				for _, kw := range genericKeywords {
					if strings.Contains(text, kw) {
						return true
					}
				}
				return false
			},
			Build: buildGenericRequirement,
		},
	}
}

func buildParabolaRequirements(userMessage, _ string) []entities.ImageRequirement {
	return []entities.ImageRequirement{
		{
			ID:          "parabola-basic",
			Description: "Create a clear mathematical graph showing the parabola y = x². Use a coordinate grid with x-axis from -5 to 5 and y-axis from 0 to 25. The parabola should be drawn in blue color, opening upward with vertex at origin (0,0). Include axis labels, grid lines, and the equation y = x² prominently displayed.",
			Position:    80,
			CoinCost:    UnitCoinCost,
		},
		{
			ID:          "parabola-inverted",
			Description: "Create a mathematical graph showing the inverted parabola y = -x². Use a coordinate grid with x-axis from -5 to 5 and y-axis from -25 to 0. The parabola should be drawn in red color, opening downward with vertex at origin (0,0). Include axis labels, grid lines, and the equation y = -x² prominently displayed.",
			Position:    200,
			CoinCost:    UnitCoinCost,
		},
		{
			ID:          "parabola-shifted",
			Description: "Create a mathematical graph showing the shifted parabola y = (x-2)² + 1. Use a coordinate grid with x-axis from -2 to 6 and y-axis from 0 to 17. The parabola should be drawn in green color, opening upward with vertex at point (2,1). Include axis labels, grid lines, and the equation y = (x-2)² + 1 prominently displayed.",
			Position:    320,
			CoinCost:    UnitCoinCost,
		},
	}
}

func buildTrigonometricRequirements(userMessage, _ string) []entities.ImageRequirement {
	return []entities.ImageRequirement{
		{
			ID:          "sine-wave",
			Description: "Create a clear mathematical graph showing the sine function y = sin(x). Use a coordinate grid with x-axis from -2π to 2π and y-axis from -1.5 to 1.5. The sine wave should be drawn in blue color with smooth curves. Include axis labels, grid lines, and the equation y = sin(x) prominently displayed.",
			Position:    100,
			CoinCost:    UnitCoinCost,
		},
		{
			ID:          "cosine-wave",
			Description: "Create a mathematical graph showing the cosine function y = cos(x). Use a coordinate grid with x-axis from -2π to 2π and y-axis from -1.5 to 1.5. The cosine wave should be drawn in red color with smooth curves. Include axis labels, grid lines, and the equation y = cos(x) prominently displayed.",
			Position:    250,
			CoinCost:    UnitCoinCost,
		},
	}
}

func buildLinearRequirements(userMessage, _ string) []entities.ImageRequirement {
	return []entities.ImageRequirement{
		{
			ID:          "linear-basic",
			Description: "Create a clear mathematical graph showing a basic linear equation y = 2x + 1. Use a coordinate grid with x-axis from -5 to 5 and y-axis from -9 to 11. The line should be drawn in blue color with clear slope. Include axis labels, grid lines, and the equation y = 2x + 1 prominently displayed.",
			Position:    120,
			CoinCost:    UnitCoinCost,
		},
	}
}

func matchesAnyChartPattern(text string) bool {
	for _, p := range chartPatterns {
		for _, kw := range p.keywords {
			if strings.Contains(text, kw) {
				return true
			}
		}
	}
	return false
}

// buildChartRequirements emits one requirement per matched chart pattern.
// Positions are assigned by even spacing over the estimated response length
// so repeated calls with the same input produce identical requirements.
func buildChartRequirements(userMessage, fullText string) []entities.ImageRequirement {
	var matched []chartPattern
	for _, p := range chartPatterns {
		for _, kw := range p.keywords {
			if strings.Contains(fullText, kw) {
				matched = append(matched, p)
				break
			}
		}
	}

	positions := EstimatePositions(estimatedResponseLength, len(matched))
	out := make([]entities.ImageRequirement, len(matched))
	for i, p := range matched {
		out[i] = entities.ImageRequirement{
			ID:          fmt.Sprintf("chart-%d", i),
			Description: fmt.Sprintf("%s based on: %s", p.description, userMessage),
			Position:    positions[i],
			CoinCost:    UnitCoinCost,
		}
	}
	return out
}

func buildGenericRequirement(userMessage, _ string) []entities.ImageRequirement {
	return []entities.ImageRequirement{
		{
			ID:          "general-visualization",
			Description: fmt.Sprintf("Create a detailed visualization or illustration for: %s", userMessage),
			Position:    genericPosition,
			CoinCost:    UnitCoinCost,
		},
	}
}

// EstimatePositions spaces n insertion offsets evenly over a text of the
// given length, leaving equal margins at both ends.
func EstimatePositions(textLength, count int) []int {
	if count == 0 {
		return nil
	}
	interval := textLength / (count + 1)
	positions := make([]int, count)
	for i := 0; i < count; i++ {
		positions[i] = interval * (i + 1)
	}
	return positions
}
