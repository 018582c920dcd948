package risk

import (
	"crypto-trading-bot/internal/interfaces"
	"crypto-trading-bot/internal/store"
)

func New(cfg *store.Config) interfaces.Risk {
	return newManager(Params{
		MaxConcurrentPositions: cfg.Risk.MaxConcurrentPositions,
		MaxPositionSize:        cfg.Risk.MaxPositionSize,
		RiskPerTrade:           cfg.Risk.RiskPerTrade,
		MaxPortfolioRisk:       cfg.Risk.MaxPortfolioRisk,
		CorrelationThreshold:   cfg.Risk.CorrelationThreshold,
		TrailingStopPct:        cfg.Risk.TrailingStopPct,
		PortfolioValue:         cfg.AccountBalance,
	})
}
