package interfaces

import (
	"context"

	"crypto-trading-bot/internal/types"
)

// OpinionProvider is the capability of producing one directional opinion for an
// asset. The consensus engine is provider-count-agnostic: it consumes whatever
// set of opinions the configured providers return.
type OpinionProvider interface {
	Name() string
	Analyze(ctx context.Context, symbol string, signals []types.TechnicalSignal, sentiment types.SentimentSet, market types.MarketSnapshot) (types.Opinion, error)
}
