package risk

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"crypto-trading-bot/internal/logger"
	"crypto-trading-bot/internal/types"
)

// Positions smaller than this notional are not worth opening.
const minPositionNotional = 10.0

// Trailing stop activates once unrealized profit exceeds this fraction.
const trailingActivationPct = 0.05

// Correlation proxy scores per the symbol-prefix heuristic.
const (
	correlationSameSymbol = 1.0
	correlationSameBase   = 0.8
	correlationOther      = 0.3
)

// manager owns the open-position book and the historical return series for a
// single account. Every mutating operation locks the same mutex so that
// interleaved size calculations cannot breach the concurrency cap.
type manager struct {
	mu sync.Mutex

	maxConcurrentPositions int
	maxPositionSize        float64
	riskPerTrade           float64
	maxPortfolioRisk       float64
	correlationThreshold   float64
	trailingStopPct        float64
	portfolioValue         float64

	positions         []*types.Position
	historicalReturns []float64
}

type Params struct {
	MaxConcurrentPositions int
	MaxPositionSize        float64
	RiskPerTrade           float64
	MaxPortfolioRisk       float64
	CorrelationThreshold   float64
	TrailingStopPct        float64
	PortfolioValue         float64
}

func newManager(p Params) *manager {
	return &manager{
		maxConcurrentPositions: p.MaxConcurrentPositions,
		maxPositionSize:        p.MaxPositionSize,
		riskPerTrade:           p.RiskPerTrade,
		maxPortfolioRisk:       p.MaxPortfolioRisk,
		correlationThreshold:   p.CorrelationThreshold,
		trailingStopPct:        p.TrailingStopPct,
		portfolioValue:         p.PortfolioValue,
	}
}

// ValidateTrade runs the rejection checks in order; the first failing check
// wins. Rejections are reported through the boolean/reason pair, never as
// errors. Errors are reserved for contract violations the caller must fix.
func (m *manager) ValidateTrade(ctx context.Context, rec *types.TradeRecommendation, currentPrice, accountBalance float64) (bool, string, float64, error) {
	if rec == nil {
		return false, "", 0, errors.New("nil recommendation")
	}
	if currentPrice <= 0 {
		return false, "", 0, fmt.Errorf("non-positive current price: %f", currentPrice)
	}
	if accountBalance <= 0 {
		return false, "", 0, fmt.Errorf("non-positive account balance: %f", accountBalance)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// 1. Concurrency cap.
	if len(m.positions) >= m.maxConcurrentPositions {
		return false, "Maximum concurrent positions reached", 0, nil
	}

	// 2. Size the trade, cap at the configured maximum, reject dust.
	size := m.calculateSize(rec, currentPrice, accountBalance)
	if size > m.maxPositionSize {
		size = m.maxPositionSize
	}
	if size < minPositionNotional {
		return false, "Position size too small", 0, nil
	}

	// 3. Portfolio risk ceiling.
	portfolioRisk := m.portfolioRiskWith(size, rec)
	if portfolioRisk > m.maxPortfolioRisk {
		return false, fmt.Sprintf("Portfolio risk too high: %.2f%%", portfolioRisk*100), 0, nil
	}

	// 4. Correlation with existing positions.
	correlation := m.correlationWith(rec.Symbol)
	if correlation > m.correlationThreshold {
		return false, fmt.Sprintf("High correlation with existing positions: %.2f", correlation), 0, nil
	}

	// 5. Stop-loss distance.
	var riskPct float64
	if rec.Action == types.ActionLong {
		riskPct = (currentPrice - rec.StopLoss) / currentPrice
	} else {
		riskPct = (rec.StopLoss - currentPrice) / currentPrice
	}
	if riskPct > 0.1 {
		return false, fmt.Sprintf("Stop loss too far: %.2f%%", riskPct*100), 0, nil
	}

	return true, "Trade validated", size, nil
}

// portfolioRiskWith sums the risk-weighted exposure of the open book plus the
// proposed position, each weighted by its share of total portfolio value.
func (m *manager) portfolioRiskWith(newSize float64, rec *types.TradeRecommendation) float64 {
	total := 0.0

	for _, pos := range m.positions {
		var posRisk float64
		if pos.Side == types.SideLong {
			posRisk = (pos.CurrentPrice - pos.StopLoss) / pos.CurrentPrice
		} else {
			posRisk = (pos.StopLoss - pos.CurrentPrice) / pos.CurrentPrice
		}
		total += posRisk * (pos.Size / m.portfolioValue)
	}

	var newRisk float64
	if rec.Action == types.ActionLong {
		newRisk = (rec.EntryPrice - rec.StopLoss) / rec.EntryPrice
	} else {
		newRisk = (rec.StopLoss - rec.EntryPrice) / rec.EntryPrice
	}
	total += newRisk * (newSize / m.portfolioValue)

	return total
}

// correlationWith applies the symbol-prefix correlation proxy: same symbol is
// perfect correlation, same base currency prefix is high, anything else low.
// Returns the maximum over the open book, zero when the book is empty.
func (m *manager) correlationWith(symbol string) float64 {
	best := 0.0
	for _, pos := range m.positions {
		score := correlationOther
		switch {
		case pos.Symbol == symbol:
			score = correlationSameSymbol
		case baseCurrency(pos.Symbol) == baseCurrency(symbol):
			score = correlationSameBase
		}
		if score > best {
			best = score
		}
	}
	return best
}

func baseCurrency(symbol string) string {
	if len(symbol) < 3 {
		return strings.ToUpper(symbol)
	}
	return strings.ToUpper(symbol[:3])
}

// AddPosition opens a position for an accepted recommendation and returns it.
func (m *manager) AddPosition(ctx context.Context, rec *types.TradeRecommendation, size float64) *types.Position {
	pos := &types.Position{
		Symbol:       rec.Symbol,
		Side:         types.Side(rec.Action),
		EntryPrice:   rec.EntryPrice,
		CurrentPrice: rec.EntryPrice,
		Size:         size,
		StopLoss:     rec.StopLoss,
		TakeProfit:   rec.TargetPrice,
		EntryTime:    time.Now().UTC(),
	}

	m.mu.Lock()
	m.positions = append(m.positions, pos)
	open := len(m.positions)
	m.mu.Unlock()

	logger.Info(ctx, "Position opened",
		"symbol", pos.Symbol,
		"side", string(pos.Side),
		"entry_price", pos.EntryPrice,
		"size", pos.Size,
		"stop_loss", pos.StopLoss,
		"take_profit", pos.TakeProfit,
		"open_positions", open,
	)
	return pos
}

// UpdatePositions recomputes current price and unrealized PnL for every open
// position present in the price map.
func (m *manager) UpdatePositions(ctx context.Context, prices map[string]float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, pos := range m.positions {
		price, ok := prices[pos.Symbol]
		if !ok {
			continue
		}
		pos.CurrentPrice = price

		if pos.Side == types.SideLong {
			pos.PnL = (pos.CurrentPrice - pos.EntryPrice) * pos.Size / pos.EntryPrice
			pos.PnLPct = (pos.CurrentPrice - pos.EntryPrice) / pos.EntryPrice
		} else {
			pos.PnL = (pos.EntryPrice - pos.CurrentPrice) * pos.Size / pos.EntryPrice
			pos.PnLPct = (pos.EntryPrice - pos.CurrentPrice) / pos.EntryPrice
		}
	}
}

// CheckExitTriggers returns the positions whose current price has crossed
// their stop-loss or take-profit level. It does not close them; the caller
// decides when to call ClosePosition.
func (m *manager) CheckExitTriggers(ctx context.Context) []types.ExitTrigger {
	m.mu.Lock()
	defer m.mu.Unlock()

	var triggers []types.ExitTrigger
	for _, pos := range m.positions {
		if pos.Side == types.SideLong {
			if pos.CurrentPrice <= pos.StopLoss {
				triggers = append(triggers, types.ExitTrigger{Position: pos, Reason: types.ExitStopLoss})
			} else if pos.CurrentPrice >= pos.TakeProfit {
				triggers = append(triggers, types.ExitTrigger{Position: pos, Reason: types.ExitTakeProfit})
			}
		} else {
			if pos.CurrentPrice >= pos.StopLoss {
				triggers = append(triggers, types.ExitTrigger{Position: pos, Reason: types.ExitStopLoss})
			} else if pos.CurrentPrice <= pos.TakeProfit {
				triggers = append(triggers, types.ExitTrigger{Position: pos, Reason: types.ExitTakeProfit})
			}
		}
	}
	return triggers
}

// ApplyTrailingStop ratchets the stop of profitable positions toward price.
// The stop only moves in the profit-protecting direction, never loosens.
func (m *manager) ApplyTrailingStop(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, pos := range m.positions {
		if pos.PnLPct <= trailingActivationPct {
			continue
		}

		if pos.Side == types.SideLong {
			newStop := pos.CurrentPrice * (1 - m.trailingStopPct)
			if newStop > pos.StopLoss {
				old := pos.StopLoss
				pos.StopLoss = newStop
				logger.Risk(ctx, pos.Symbol, "TRAILING_STOP_UPDATED",
					"side", string(pos.Side),
					"old_stop", old,
					"new_stop", newStop,
					"current_price", pos.CurrentPrice,
				)
			}
		} else {
			newStop := pos.CurrentPrice * (1 + m.trailingStopPct)
			if newStop < pos.StopLoss {
				old := pos.StopLoss
				pos.StopLoss = newStop
				logger.Risk(ctx, pos.Symbol, "TRAILING_STOP_UPDATED",
					"side", string(pos.Side),
					"old_stop", old,
					"new_stop", newStop,
					"current_price", pos.CurrentPrice,
				)
			}
		}
	}
}

// ClosePosition removes a position from the open book and records its return
// in the historical series.
func (m *manager) ClosePosition(ctx context.Context, pos *types.Position) error {
	m.mu.Lock()

	idx := -1
	for i, p := range m.positions {
		if p == pos {
			idx = i
			break
		}
	}
	if idx < 0 {
		m.mu.Unlock()
		return fmt.Errorf("position not found in open book: %s", pos.Symbol)
	}

	m.positions = append(m.positions[:idx], m.positions[idx+1:]...)
	m.historicalReturns = append(m.historicalReturns, pos.PnLPct)
	remaining := len(m.positions)
	m.mu.Unlock()

	logger.Info(ctx, "Position closed",
		"symbol", pos.Symbol,
		"side", string(pos.Side),
		"entry_price", pos.EntryPrice,
		"exit_price", pos.CurrentPrice,
		"pnl", pos.PnL,
		"pnl_pct", pos.PnLPct,
		"open_positions", remaining,
	)
	return nil
}

// OpenPositions returns a snapshot copy of the open book.
func (m *manager) OpenPositions() []types.Position {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]types.Position, len(m.positions))
	for i, p := range m.positions {
		out[i] = *p
	}
	return out
}

// HistoricalReturns returns a snapshot copy of the closed-return series.
func (m *manager) HistoricalReturns() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]float64, len(m.historicalReturns))
	copy(out, m.historicalReturns)
	return out
}
