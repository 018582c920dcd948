package consensus

import (
	"context"
	"errors"
	"math"
	"time"

	"crypto-trading-bot/internal/logger"
	"crypto-trading-bot/internal/types"
)

// Weights of the agreement-score components.
const (
	weightDirection  = 0.4
	weightConfidence = 0.2
	weightTarget     = 0.2
	weightStop       = 0.2
)

// Weights of the overall-confidence components. Opinion confidences share half
// of the total weight regardless of how many providers contributed.
const (
	weightOpinions  = 0.5
	weightAgreement = 0.25
	weightTechnical = 0.15
	weightSentiment = 0.10
)

// Price levels within 5% of each other count as full agreement; credit decays
// linearly to zero beyond that.
const priceAgreementBand = 0.05

// engine reconciles opinions, technical signals and sentiment into at most one
// trade recommendation. It holds only thresholds, never state: Generate is a
// pure function of its arguments and safe to call concurrently.
type engine struct {
	minConfidence float64
}

func newEngine(minConfidence float64) *engine {
	return &engine{minConfidence: minConfidence}
}

// Generate returns a recommendation, or nil to abstain. An error is returned
// only for contract violations (no opinions, non-positive price); partial or
// missing optional inputs degrade to documented neutral defaults instead.
func (e *engine) Generate(
	ctx context.Context,
	opinions []types.Opinion,
	signals []types.TechnicalSignal,
	sentiment types.SentimentSet,
	market types.MarketSnapshot,
	currentPrice float64,
) (*types.TradeRecommendation, error) {
	if len(opinions) == 0 {
		return nil, errors.New("consensus requires at least one opinion")
	}
	if currentPrice <= 0 {
		return nil, errors.New("consensus requires a positive current price")
	}

	agreement := agreementScore(opinions)
	technical := technicalValidation(signals)
	sentimentScore := sentimentValidation(sentiment)
	confidence := overallConfidence(opinions, agreement, technical, sentimentScore)

	action, decided := e.decideAction(opinions, signals, confidence)
	if !decided {
		logger.Debug(ctx, "Consensus abstained",
			"symbol", opinions[0].Symbol,
			"confidence", confidence,
			"agreement", agreement,
			"technical", technical,
			"sentiment", sentimentScore,
		)
		return nil, nil
	}

	params := tradeParameters(opinions, currentPrice, action)

	rec := &types.TradeRecommendation{
		Symbol:          opinions[0].Symbol,
		Action:          action,
		Confidence:      confidence,
		EntryPrice:      currentPrice,
		TargetPrice:     params.target,
		StopLoss:        params.stop,
		PositionSizePct: params.sizePct,
		ExpectedReturn:  params.expectedReturn,
		RiskReward:      params.riskReward,
		Reasoning:       buildReasoning(opinions, signals, sentiment, agreement),
		RiskFactors:     identifyRiskFactors(opinions, market, sentiment),
		Timestamp:       time.Now().UTC(),
	}
	return rec, nil
}

// agreementScore measures how closely the opinions line up, averaged over all
// provider pairs. With exactly two opinions this is the plain pairwise score.
// Fewer than two opinions carry no agreement information and score neutral.
func agreementScore(opinions []types.Opinion) float64 {
	if len(opinions) < 2 {
		return 0.5
	}

	var total float64
	var pairs int
	for i := 0; i < len(opinions); i++ {
		for j := i + 1; j < len(opinions); j++ {
			total += pairAgreement(opinions[i], opinions[j])
			pairs++
		}
	}
	return total / float64(pairs)
}

func pairAgreement(a, b types.Opinion) float64 {
	score := 0.0

	// Directional agreement on the 5-point scale.
	scaleDiff := math.Abs(float64(a.Call.Score() - b.Call.Score()))
	score += weightDirection * (1 - scaleDiff/4)

	// Confidence closeness.
	confA := clamp01(a.Confidence)
	confB := clamp01(b.Confidence)
	score += weightConfidence * (1 - math.Abs(confA-confB))

	// Proposed level closeness: zero credit when either level is missing.
	score += weightTarget * priceCloseness(a.TargetPrice, b.TargetPrice)
	score += weightStop * priceCloseness(a.StopLoss, b.StopLoss)

	return score
}

// priceCloseness gives full credit when two proposed levels are within 5% of
// each other, degrading linearly, and zero credit if either is non-positive.
func priceCloseness(a, b float64) float64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	diff := math.Abs(a-b) / a
	return math.Max(0, 1-diff/priceAgreementBand)
}

// technicalValidation scores how decisively the timeframe signals lean one
// way, scaled by their mean strength. No signals score neutral.
func technicalValidation(signals []types.TechnicalSignal) float64 {
	if len(signals) == 0 {
		return 0.5
	}

	buy, sell := countDirections(signals)
	total := float64(len(signals))

	score := 0.5
	if buy > sell {
		score = float64(buy) / total
	} else if sell > buy {
		score = float64(sell) / total
	}

	var strengthSum float64
	for _, s := range signals {
		strengthSum += clamp01(s.Strength)
	}
	return score * (strengthSum / total)
}

// sentimentValidation scores conviction from the aggregate sentiment: strong
// feeling either way plus mention volume. Missing aggregate scores neutral.
func sentimentValidation(sentiment types.SentimentSet) float64 {
	agg, ok := sentiment.Aggregate()
	if !ok {
		return 0.5
	}

	strength := math.Abs(clampSentiment(agg.Score))
	volumeFactor := math.Min(float64(agg.Volume)/100, 1.0)
	return strength*0.7 + volumeFactor*0.3
}

func overallConfidence(opinions []types.Opinion, agreement, technical, sentiment float64) float64 {
	var confSum float64
	for _, op := range opinions {
		confSum += clamp01(op.Confidence)
	}
	meanConf := confSum / float64(len(opinions))

	confidence := weightOpinions*meanConf +
		weightAgreement*agreement +
		weightTechnical*technical +
		weightSentiment*sentiment
	return clamp01(confidence)
}

// decideAction combines the averaged opinion scale with the technical bias.
// Returns false when confidence is below threshold or the combined score sits
// in the dead zone between the long and short cutoffs.
func (e *engine) decideAction(opinions []types.Opinion, signals []types.TechnicalSignal, confidence float64) (types.Action, bool) {
	if confidence < e.minConfidence {
		return "", false
	}

	var scaleSum float64
	for _, op := range opinions {
		scaleSum += float64(op.Call.Score())
	}
	avgScale := scaleSum / float64(len(opinions))

	buy, sell := countDirections(signals)
	techScore := float64(buy-sell) / math.Max(float64(len(signals)), 1)

	combined := avgScale*0.7 + techScore*0.3
	switch {
	case combined >= 0.5:
		return types.ActionLong, true
	case combined <= -0.5:
		return types.ActionShort, true
	default:
		return "", false
	}
}

type parameters struct {
	target         float64
	stop           float64
	sizePct        float64
	expectedReturn float64
	riskReward     float64
}

// tradeParameters averages the opinions' proposed levels and enforces logical
// sanity on them relative to the entry, then derives sizing and risk/reward.
func tradeParameters(opinions []types.Opinion, entry float64, action types.Action) parameters {
	var targetSum, stopSum, confSum float64
	for _, op := range opinions {
		targetSum += op.TargetPrice
		stopSum += op.StopLoss
		confSum += clamp01(op.Confidence)
	}
	n := float64(len(opinions))
	target := targetSum / n
	stop := stopSum / n
	avgConf := confSum / n

	if action == types.ActionLong {
		if target <= entry {
			target = entry * 2.0
		}
		if stop >= entry {
			stop = entry * 0.95
		}
	} else {
		if target >= entry {
			target = entry * 0.5
		}
		if stop <= entry {
			stop = entry * 1.05
		}
	}

	var risk, reward float64
	if action == types.ActionLong {
		risk = entry - stop
		reward = target - entry
	} else {
		risk = stop - entry
		reward = entry - target
	}

	riskReward := 0.0
	if risk > 0 {
		riskReward = reward / risk
	}

	return parameters{
		target:         target,
		stop:           stop,
		sizePct:        0.10 * avgConf,
		expectedReturn: reward / entry * 100,
		riskReward:     riskReward,
	}
}

func countDirections(signals []types.TechnicalSignal) (buy, sell int) {
	for _, s := range signals {
		switch s.Direction {
		case types.SignalBuy:
			buy++
		case types.SignalSell:
			sell++
		}
	}
	return buy, sell
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func clampSentiment(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}
