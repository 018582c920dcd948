package consensusobs

import (
	"context"

	"crypto-trading-bot/internal/interfaces"
	"crypto-trading-bot/internal/logger"
	"crypto-trading-bot/internal/metrics"
	"crypto-trading-bot/internal/trace"
	"crypto-trading-bot/internal/types"
)

// observableConsensus wraps a Consensus with observability (logging & tracing)
type observableConsensus struct {
	engine interfaces.Consensus
}

// Compile-time interface check
var _ interfaces.Consensus = (*observableConsensus)(nil)

// Wrap wraps a consensus engine with observability middleware
func Wrap(engine interfaces.Consensus) interfaces.Consensus {
	return &observableConsensus{
		engine: engine,
	}
}

func (oc *observableConsensus) Generate(
	ctx context.Context,
	opinions []types.Opinion,
	signals []types.TechnicalSignal,
	sentiment types.SentimentSet,
	market types.MarketSnapshot,
	currentPrice float64,
) (*types.TradeRecommendation, error) {
	ctx, span := trace.StartSpan(ctx, "consensus.Generate")
	defer span.End()

	symbol := market.Symbol
	if symbol == "" && len(opinions) > 0 {
		symbol = opinions[0].Symbol
	}

	// Use DebugSkip(1) to report the actual caller, not this middleware wrapper
	logger.DebugSkip(ctx, 1, "Generating consensus",
		"symbol", symbol,
		"opinions", len(opinions),
		"signals", len(signals),
		"price", currentPrice,
	)

	rec, err := oc.engine.Generate(ctx, opinions, signals, sentiment, market, currentPrice)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Consensus generation failed", err,
			"symbol", symbol,
		)
		return nil, err
	}

	if rec == nil {
		metrics.ConsensusDecisions.WithLabelValues("ABSTAIN").Inc()
		logger.InfoSkip(ctx, 1, "Consensus abstained", "symbol", symbol)
		return nil, nil
	}

	metrics.ConsensusDecisions.WithLabelValues(string(rec.Action)).Inc()
	logger.InfoSkip(ctx, 1, "Consensus recommendation generated",
		"symbol", rec.Symbol,
		"action", string(rec.Action),
		"confidence", rec.Confidence,
		"target", rec.TargetPrice,
		"stop_loss", rec.StopLoss,
		"risk_reward", rec.RiskReward,
		"risk_factors", len(rec.RiskFactors),
	)

	return rec, nil
}
