package risk

import (
	"math"

	"crypto-trading-bot/internal/types"
)

// Fractional Kelly cap. Full Kelly is too aggressive for a single account.
const kellyCap = 0.25

// calculateSize returns the notional for a recommendation as the minimum of
// three ceilings: the recommendation's own capital fraction, the Kelly
// criterion, and the pure risk-per-trade budget against the stop distance.
// Caller holds the lock (the result feeds the cap check in ValidateTrade).
func (m *manager) calculateSize(rec *types.TradeRecommendation, currentPrice, accountBalance float64) float64 {
	baseSize := accountBalance * rec.PositionSizePct

	kellySize := accountBalance * kellyFraction(rec.Confidence, rec.RiskReward)

	size := math.Min(baseSize, kellySize)

	// Risk-per-trade ceiling: how much notional keeps the loss at the stop
	// within the per-trade risk budget.
	var maxLoss float64
	if rec.Action == types.ActionLong {
		maxLoss = currentPrice - rec.StopLoss
	} else {
		maxLoss = rec.StopLoss - currentPrice
	}
	if maxLoss > 0 {
		riskCapped := accountBalance * m.riskPerTrade / (maxLoss / currentPrice)
		size = math.Min(size, riskCapped)
	}

	return size
}

// kellyFraction computes the Kelly criterion fraction for win probability p
// and win/loss ratio b, clamped to [0, kellyCap]. A non-positive ratio means
// there is no edge to size against.
func kellyFraction(p, b float64) float64 {
	if b <= 0 {
		return 0
	}
	p = math.Max(0, math.Min(1, p))
	f := (p*b - (1 - p)) / b
	return math.Max(0, math.Min(f, kellyCap))
}
