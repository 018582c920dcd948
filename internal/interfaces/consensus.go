package interfaces

import (
	"context"

	"crypto-trading-bot/internal/types"
)

// Consensus reconciles independent opinions plus technical and sentiment
// validations into at most one trade recommendation. A nil recommendation with
// a nil error means the engine abstained.
type Consensus interface {
	Generate(ctx context.Context, opinions []types.Opinion, signals []types.TechnicalSignal, sentiment types.SentimentSet, market types.MarketSnapshot, currentPrice float64) (*types.TradeRecommendation, error)
}
