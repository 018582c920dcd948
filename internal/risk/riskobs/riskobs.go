package riskobs

import (
	"context"

	"crypto-trading-bot/internal/interfaces"
	"crypto-trading-bot/internal/logger"
	"crypto-trading-bot/internal/metrics"
	"crypto-trading-bot/internal/trace"
	"crypto-trading-bot/internal/types"
)

// observableRisk wraps a Risk manager with observability (logging, tracing,
// Prometheus counters).
type observableRisk struct {
	risk interfaces.Risk
}

// Compile-time interface check
var _ interfaces.Risk = (*observableRisk)(nil)

// Wrap wraps a risk manager with observability middleware
func Wrap(risk interfaces.Risk) interfaces.Risk {
	return &observableRisk{
		risk: risk,
	}
}

func (or *observableRisk) ValidateTrade(ctx context.Context, rec *types.TradeRecommendation, currentPrice, accountBalance float64) (bool, string, float64, error) {
	ctx, span := trace.StartSpan(ctx, "risk.ValidateTrade")
	defer span.End()

	accepted, reason, size, err := or.risk.ValidateTrade(ctx, rec, currentPrice, accountBalance)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Trade validation failed", err,
			"price", currentPrice,
			"balance", accountBalance,
		)
		return false, "", 0, err
	}

	if accepted {
		metrics.TradeValidations.WithLabelValues("accepted").Inc()
		logger.InfoSkip(ctx, 1, "Trade validated",
			"symbol", rec.Symbol,
			"action", string(rec.Action),
			"size", size,
		)
	} else {
		metrics.TradeValidations.WithLabelValues("rejected").Inc()
		logger.WarnSkip(ctx, 1, "Trade rejected",
			"symbol", rec.Symbol,
			"action", string(rec.Action),
			"reason", reason,
		)
	}

	return accepted, reason, size, nil
}

func (or *observableRisk) AddPosition(ctx context.Context, rec *types.TradeRecommendation, size float64) *types.Position {
	ctx, span := trace.StartSpan(ctx, "risk.AddPosition")
	defer span.End()

	pos := or.risk.AddPosition(ctx, rec, size)
	metrics.PositionsOpen.Set(float64(len(or.risk.OpenPositions())))
	return pos
}

func (or *observableRisk) UpdatePositions(ctx context.Context, prices map[string]float64) {
	ctx, span := trace.StartSpan(ctx, "risk.UpdatePositions")
	defer span.End()

	or.risk.UpdatePositions(ctx, prices)
}

func (or *observableRisk) CheckExitTriggers(ctx context.Context) []types.ExitTrigger {
	ctx, span := trace.StartSpan(ctx, "risk.CheckExitTriggers")
	defer span.End()

	triggers := or.risk.CheckExitTriggers(ctx)
	for _, t := range triggers {
		logger.Risk(ctx, t.Position.Symbol, "EXIT_TRIGGERED",
			"reason", string(t.Reason),
			"current_price", t.Position.CurrentPrice,
			"stop_loss", t.Position.StopLoss,
			"take_profit", t.Position.TakeProfit,
		)
	}
	return triggers
}

func (or *observableRisk) ApplyTrailingStop(ctx context.Context) {
	ctx, span := trace.StartSpan(ctx, "risk.ApplyTrailingStop")
	defer span.End()

	or.risk.ApplyTrailingStop(ctx)
}

func (or *observableRisk) ClosePosition(ctx context.Context, pos *types.Position) error {
	ctx, span := trace.StartSpan(ctx, "risk.ClosePosition")
	defer span.End()

	if err := or.risk.ClosePosition(ctx, pos); err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to close position", err,
			"symbol", pos.Symbol,
		)
		return err
	}

	metrics.PositionsOpen.Set(float64(len(or.risk.OpenPositions())))
	return nil
}

func (or *observableRisk) RiskMetrics(ctx context.Context) types.RiskMetrics {
	ctx, span := trace.StartSpan(ctx, "risk.RiskMetrics")
	defer span.End()

	rm := or.risk.RiskMetrics(ctx)

	metrics.TotalExposure.Set(rm.TotalExposure)
	metrics.CurrentDrawdown.Set(rm.CurrentDrawdown)
	metrics.SharpeRatio.Set(rm.SharpeRatio)

	return rm
}

func (or *observableRisk) OpenPositions() []types.Position {
	return or.risk.OpenPositions()
}

func (or *observableRisk) HistoricalReturns() []float64 {
	return or.risk.HistoricalReturns()
}
