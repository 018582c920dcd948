package noop

import (
	"context"

	"crypto-trading-bot/internal/logger"
	"crypto-trading-bot/internal/types"
)

// Provider is a fallback opinion source used when no model provider is
// configured. It always returns NEUTRAL with zero confidence, which keeps the
// consensus engine below its acceptance threshold.
type Provider struct {
	name string
}

// New returns a noop provider registered under the given name.
func New(name string) *Provider {
	return &Provider{name: name}
}

func (p *Provider) Name() string {
	return p.name
}

// Analyze implements the OpinionProvider interface.
func (p *Provider) Analyze(ctx context.Context, symbol string, _ []types.TechnicalSignal, _ types.SentimentSet, market types.MarketSnapshot) (types.Opinion, error) {
	logger.Debug(ctx, "Noop opinion provider called - always returns NEUTRAL", "provider", p.name, "symbol", symbol)
	return types.Opinion{
		Provider:   p.name,
		Symbol:     symbol,
		Call:       types.Neutral,
		Confidence: 0.0,
		Reasoning:  "noop_provider_fallback",
	}, nil
}
