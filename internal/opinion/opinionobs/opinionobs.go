package opinionobs

import (
	"context"

	"crypto-trading-bot/internal/interfaces"
	"crypto-trading-bot/internal/logger"
	"crypto-trading-bot/internal/trace"
	"crypto-trading-bot/internal/types"
)

// observableProvider wraps an OpinionProvider with observability
type observableProvider struct {
	provider interfaces.OpinionProvider
}

// Compile-time interface check
var _ interfaces.OpinionProvider = (*observableProvider)(nil)

// Wrap wraps an opinion provider with observability middleware
func Wrap(provider interfaces.OpinionProvider) interfaces.OpinionProvider {
	return &observableProvider{
		provider: provider,
	}
}

func (op *observableProvider) Name() string {
	return op.provider.Name()
}

func (op *observableProvider) Analyze(
	ctx context.Context,
	symbol string,
	signals []types.TechnicalSignal,
	sentiment types.SentimentSet,
	market types.MarketSnapshot,
) (types.Opinion, error) {
	ctx, span := trace.StartSpan(ctx, "opinion.Analyze")
	defer span.End()

	// Use DebugSkip(1) to report the actual caller, not this middleware wrapper
	logger.DebugSkip(ctx, 1, "Requesting opinion",
		"provider", op.provider.Name(),
		"symbol", symbol,
		"price", market.Price,
	)

	opinion, err := op.provider.Analyze(ctx, symbol, signals, sentiment, market)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to get opinion", err,
			"provider", op.provider.Name(),
			"symbol", symbol,
		)
		return types.Opinion{}, err
	}

	logger.InfoSkip(ctx, 1, "Opinion received",
		"provider", opinion.Provider,
		"symbol", opinion.Symbol,
		"call", string(opinion.Call),
		"confidence", opinion.Confidence,
	)

	return opinion, nil
}
