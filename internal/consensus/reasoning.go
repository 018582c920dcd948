package consensus

import (
	"fmt"
	"math"
	"strings"

	"crypto-trading-bot/internal/types"
)

const reasoningExcerptLen = 100

// buildReasoning assembles the human-readable consensus rationale: agreement
// tier, technical bias, sentiment tier and a truncated excerpt per provider.
func buildReasoning(opinions []types.Opinion, signals []types.TechnicalSignal, sentiment types.SentimentSet, agreement float64) string {
	parts := make([]string, 0, 3+len(opinions))

	switch {
	case agreement > 0.8:
		parts = append(parts, "Strong agreement between model opinions")
	case agreement > 0.6:
		parts = append(parts, "Moderate agreement between model opinions")
	default:
		parts = append(parts, "Limited agreement between model opinions")
	}

	parts = append(parts, "Technical analysis: "+summarizeSignals(signals))

	if agg, ok := sentiment.Aggregate(); ok {
		switch {
		case agg.Score > 0.3:
			parts = append(parts, "Positive market sentiment")
		case agg.Score < -0.3:
			parts = append(parts, "Negative market sentiment")
		default:
			parts = append(parts, "Neutral market sentiment")
		}
	}

	for _, op := range opinions {
		parts = append(parts, fmt.Sprintf("%s: %s", op.Provider, excerpt(op.Reasoning)))
	}

	return strings.Join(parts, " | ")
}

func summarizeSignals(signals []types.TechnicalSignal) string {
	if len(signals) == 0 {
		return "No technical signals available"
	}

	buy, sell := countDirections(signals)
	switch {
	case buy > sell:
		return fmt.Sprintf("Bullish (%d buy signals)", buy)
	case sell > buy:
		return fmt.Sprintf("Bearish (%d sell signals)", sell)
	default:
		return "Mixed signals"
	}
}

func excerpt(s string) string {
	if len(s) <= reasoningExcerptLen {
		return s
	}
	return s[:reasoningExcerptLen] + "..."
}

// identifyRiskFactors flags conditions that weaken the recommendation without
// blocking it: provider disagreement, low confidence, crowded funding, thin
// volume and unclear sentiment.
func identifyRiskFactors(opinions []types.Opinion, market types.MarketSnapshot, sentiment types.SentimentSet) []string {
	factors := []string{}

	maxDiff := 0
	lowConfidence := false
	for i, a := range opinions {
		if a.Confidence < 0.6 {
			lowConfidence = true
		}
		for _, b := range opinions[i+1:] {
			if d := abs(a.Call.Score() - b.Call.Score()); d > maxDiff {
				maxDiff = d
			}
		}
	}

	if maxDiff > 1 {
		factors = append(factors, "Significant disagreement between model opinions")
	}
	if lowConfidence {
		factors = append(factors, "Low confidence from one or more opinion providers")
	}
	if market.FundingRate > 0.001 {
		factors = append(factors, "High funding rate may indicate crowded trade")
	}
	if market.Volume24h < 1_000_000 {
		factors = append(factors, "Low trading volume may impact liquidity")
	}
	if agg, ok := sentiment.Aggregate(); ok && math.Abs(agg.Score) < 0.1 {
		factors = append(factors, "Unclear market sentiment")
	}

	return factors
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
