package risk

import (
	"context"
	"math"
	"sort"
	"time"

	"crypto-trading-bot/internal/types"
)

// Minimum closed-trade sample before the VaR percentile is considered stable.
const varMinSamples = 20

// Annualization factor for daily-equivalent returns.
const tradingDaysPerYear = 252

// RiskMetrics recomputes the portfolio risk snapshot from the open book and
// the historical return series. Purely derived; nothing is persisted.
func (m *manager) RiskMetrics(ctx context.Context) types.RiskMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	totalExposure := 0.0
	for _, pos := range m.positions {
		totalExposure += pos.Size
	}

	maxDD, currentDD := drawdownStats(m.historicalReturns)

	var95 := -m.riskPerTrade
	if len(m.historicalReturns) >= varMinSamples {
		var95 = percentile(m.historicalReturns, 5)
	}

	return types.RiskMetrics{
		TotalExposure:   totalExposure,
		MaxDrawdown:     maxDD,
		CurrentDrawdown: currentDD,
		RiskPerTrade:    m.riskPerTrade,
		PortfolioVaR:    var95,
		SharpeRatio:     sharpeRatio(m.historicalReturns),
		CorrelationRisk: m.portfolioCorrelation(),
		Timestamp:       time.Now().UTC(),
	}
}

// drawdownStats walks the cumulative-return curve (running product of 1+r)
// and measures the decline from its running maximum. Returns the worst and
// the latest drawdown; both zero for an empty series.
func drawdownStats(returns []float64) (maxDrawdown, currentDrawdown float64) {
	if len(returns) == 0 {
		return 0, 0
	}

	cumulative := 1.0
	runningMax := 1.0
	for _, r := range returns {
		cumulative *= 1 + r
		if cumulative > runningMax {
			runningMax = cumulative
		}
		currentDrawdown = (cumulative - runningMax) / runningMax
		if currentDrawdown < maxDrawdown {
			maxDrawdown = currentDrawdown
		}
	}
	return maxDrawdown, currentDrawdown
}

// percentile computes the pth percentile with linear interpolation between
// closest ranks, matching the conventional definition.
func percentile(values []float64, p float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// sharpeRatio annualizes mean/stddev of the return series. Fewer than two
// samples, or zero variance, yield zero rather than a blown-up ratio.
func sharpeRatio(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	m := mean(returns)
	sd := stddev(returns, m)
	if sd == 0 {
		return 0
	}
	return m / sd * math.Sqrt(tradingDaysPerYear)
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stddev is the population standard deviation.
func stddev(values []float64, m float64) float64 {
	var sq float64
	for _, v := range values {
		d := v - m
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)))
}

// portfolioCorrelation scores concentration in one base currency across the
// open book: (max same-base count - 1) / open positions. Fewer than two open
// positions score zero. Caller holds the lock.
func (m *manager) portfolioCorrelation() float64 {
	if len(m.positions) < 2 {
		return 0
	}

	counts := map[string]int{}
	maxCount := 0
	for _, pos := range m.positions {
		base := baseCurrency(pos.Symbol)
		counts[base]++
		if counts[base] > maxCount {
			maxCount = counts[base]
		}
	}
	return float64(maxCount-1) / float64(len(m.positions))
}
