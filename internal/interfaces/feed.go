package interfaces

import (
	"context"

	"crypto-trading-bot/internal/types"
)

// MarketFeed supplies current market context for a symbol. Live candle/ticker
// acquisition belongs to external collaborators; the core only consumes the
// already-computed snapshot.
type MarketFeed interface {
	Snapshot(ctx context.Context, symbol string) (types.MarketSnapshot, error)
	Prices(ctx context.Context, symbols []string) (map[string]float64, error)
}

// TechnicalFeed supplies the per-timeframe signals computed by the technical
// analysis collaborator.
type TechnicalFeed interface {
	Signals(ctx context.Context, symbol string) ([]types.TechnicalSignal, error)
}

// SentimentFeed supplies aggregated sentiment for a symbol.
type SentimentFeed interface {
	Sentiment(ctx context.Context, symbol string) (types.SentimentSet, error)
}
