package static

import (
	"context"
	"fmt"

	"crypto-trading-bot/internal/types"
)

// Default price used for symbols without a configured static price.
const defaultPrice = 100.0

// Feed serves deterministic market, technical and sentiment data so the bot
// runs end-to-end in DRY_RUN mode without any live collaborators. It
// implements MarketFeed, TechnicalFeed and SentimentFeed.
type Feed struct {
	prices map[string]float64
}

// New creates a static feed seeded with per-symbol prices.
func New(prices map[string]float64) *Feed {
	if prices == nil {
		prices = map[string]float64{}
	}
	return &Feed{prices: prices}
}

func (f *Feed) price(symbol string) float64 {
	if p, ok := f.prices[symbol]; ok {
		return p
	}
	return defaultPrice
}

// Snapshot returns a canned market snapshot with healthy volume and flat
// funding, so static runs are not dominated by liquidity risk factors.
func (f *Feed) Snapshot(ctx context.Context, symbol string) (types.MarketSnapshot, error) {
	if symbol == "" {
		return types.MarketSnapshot{}, fmt.Errorf("empty symbol")
	}
	return types.MarketSnapshot{
		Symbol:    symbol,
		Price:     f.price(symbol),
		Volume24h: 5_000_000,
	}, nil
}

func (f *Feed) Prices(ctx context.Context, symbols []string) (map[string]float64, error) {
	out := make(map[string]float64, len(symbols))
	for _, s := range symbols {
		out[s] = f.price(s)
	}
	return out, nil
}

// Signals returns one neutral signal per standard analysis timeframe.
func (f *Feed) Signals(ctx context.Context, symbol string) ([]types.TechnicalSignal, error) {
	timeframes := []string{"1h", "4h", "1d"}
	signals := make([]types.TechnicalSignal, 0, len(timeframes))
	for _, tf := range timeframes {
		signals = append(signals, types.TechnicalSignal{
			Symbol:    symbol,
			Timeframe: tf,
			Direction: types.SignalNeutral,
			Strength:  0,
			Reasoning: "static feed",
		})
	}
	return signals, nil
}

// Sentiment returns a neutral aggregate summary.
func (f *Feed) Sentiment(ctx context.Context, symbol string) (types.SentimentSet, error) {
	return types.SentimentSet{
		"aggregate": {
			Symbol: symbol,
			Source: "aggregate",
			Score:  0,
			Volume: 0,
		},
	}, nil
}
