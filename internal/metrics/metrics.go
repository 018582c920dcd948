package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Consensus metrics
	ConsensusDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_consensus_decisions_total",
			Help: "Total consensus outcomes by action (LONG, SHORT, ABSTAIN)",
		},
		[]string{"action"},
	)

	// Risk manager metrics
	TradeValidations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_trade_validations_total",
			Help: "Total trade validations by result (accepted|rejected)",
		},
		[]string{"result"},
	)

	PositionExits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_position_exits_total",
			Help: "Total position exits by reason (STOP_LOSS, TAKE_PROFIT, MANUAL)",
		},
		[]string{"reason"},
	)

	PositionsOpen = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_positions_open",
			Help: "Number of currently open positions",
		},
	)

	TotalExposure = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_total_exposure_quote",
			Help: "Total notional exposure of the open book in quote currency",
		},
	)

	CurrentDrawdown = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_current_drawdown",
			Help: "Current drawdown of the cumulative-return curve",
		},
	)

	SharpeRatio = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_sharpe_ratio",
			Help: "Annualized Sharpe ratio of the closed-return series",
		},
	)
)

// Init registers all metrics with the default registry.
func Init() {
	prometheus.MustRegister(ConsensusDecisions)
	prometheus.MustRegister(TradeValidations)
	prometheus.MustRegister(PositionExits)
	prometheus.MustRegister(PositionsOpen)
	prometheus.MustRegister(TotalExposure)
	prometheus.MustRegister(CurrentDrawdown)
	prometheus.MustRegister(SharpeRatio)
}

// Handler returns the HTTP handler exposing the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
