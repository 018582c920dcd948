package interfaces

import (
	"context"

	"crypto-trading-bot/internal/types"
)

// Risk owns the open-position book and the historical return series. All
// mutating calls are serialized behind one mutual-exclusion boundary inside
// the implementation.
type Risk interface {
	// ValidateTrade checks a recommendation against balance and exposure and
	// returns the sized notional when accepted. The boolean/reason pair is the
	// sole rejection channel; err is reserved for contract violations such as
	// a non-positive account balance.
	ValidateTrade(ctx context.Context, rec *types.TradeRecommendation, currentPrice, accountBalance float64) (accepted bool, reason string, size float64, err error)

	AddPosition(ctx context.Context, rec *types.TradeRecommendation, size float64) *types.Position
	UpdatePositions(ctx context.Context, prices map[string]float64)
	CheckExitTriggers(ctx context.Context) []types.ExitTrigger
	ApplyTrailingStop(ctx context.Context)
	ClosePosition(ctx context.Context, pos *types.Position) error

	RiskMetrics(ctx context.Context) types.RiskMetrics
	OpenPositions() []types.Position
	HistoricalReturns() []float64
}
