package types

import "time"

// Call is a 5-point directional recommendation coming from an opinion provider.
type Call string

const (
	StrongSell Call = "STRONG_SELL"
	Sell       Call = "SELL"
	Neutral    Call = "NEUTRAL"
	Buy        Call = "BUY"
	StrongBuy  Call = "STRONG_BUY"
)

// Score maps a call onto the integer scale {-2..2}. Unknown calls count as neutral.
func (c Call) Score() int {
	switch c {
	case StrongBuy:
		return 2
	case Buy:
		return 1
	case Sell:
		return -1
	case StrongSell:
		return -2
	default:
		return 0
	}
}

// Opinion is one independent directional judgment about an asset, produced by a
// model provider. Immutable once created.
type Opinion struct {
	Provider    string  `json:"provider"`
	Symbol      string  `json:"symbol"`
	Call        Call    `json:"call"`
	Confidence  float64 `json:"confidence"` // 0-1
	TargetPrice float64 `json:"target_price"`
	StopLoss    float64 `json:"stop_loss"`
	Reasoning   string  `json:"reasoning"`
}

// SignalDirection is the 3-point call a technical timeframe produces.
type SignalDirection string

const (
	SignalBuy     SignalDirection = "BUY"
	SignalSell    SignalDirection = "SELL"
	SignalNeutral SignalDirection = "NEUTRAL"
)

// TechnicalSignal is the per-timeframe output of the technical analysis collaborator.
type TechnicalSignal struct {
	Symbol     string             `json:"symbol"`
	Timeframe  string             `json:"timeframe"`
	Direction  SignalDirection    `json:"direction"`
	Strength   float64            `json:"strength"` // 0-1
	Indicators map[string]float64 `json:"indicators,omitempty"`
	Reasoning  string             `json:"reasoning,omitempty"`
}

// SentimentSummary aggregates social/news sentiment for an asset.
// Score is in [-1,1], Volume is the mention count feeding the volume factor.
type SentimentSummary struct {
	Symbol    string   `json:"symbol"`
	Source    string   `json:"source"`
	Score     float64  `json:"score"`
	Volume    int      `json:"volume"`
	TopTopics []string `json:"top_topics,omitempty"`
}

// SentimentSet holds per-source summaries keyed by source name. The "aggregate"
// entry, when present, drives consensus validation.
type SentimentSet map[string]SentimentSummary

// Aggregate returns the aggregate summary and whether one is present.
func (s SentimentSet) Aggregate() (SentimentSummary, bool) {
	agg, ok := s["aggregate"]
	return agg, ok
}

// MarketSnapshot carries the market-context fields the decision core reads.
// Missing fields stay zero; the core degrades them to documented defaults.
type MarketSnapshot struct {
	Symbol      string  `json:"symbol"`
	Price       float64 `json:"price"`
	Volume24h   float64 `json:"volume_24h"`
	FundingRate float64 `json:"funding_rate"`
	PriceChange float64 `json:"price_change_24h"`
}

// Action is the direction of a trade recommendation. Abstention is represented
// by the consensus engine returning no recommendation at all.
type Action string

const (
	ActionLong  Action = "LONG"
	ActionShort Action = "SHORT"
)

// TradeRecommendation is the consensus engine's output: one confidence-weighted
// trade per asset. Read-only after creation.
type TradeRecommendation struct {
	Symbol          string    `json:"symbol"`
	Action          Action    `json:"action"`
	Confidence      float64   `json:"confidence"`
	EntryPrice      float64   `json:"entry_price"`
	TargetPrice     float64   `json:"target_price"`
	StopLoss        float64   `json:"stop_loss"`
	PositionSizePct float64   `json:"position_size_pct"` // fraction of capital
	ExpectedReturn  float64   `json:"expected_return"`   // percent
	RiskReward      float64   `json:"risk_reward"`
	Reasoning       string    `json:"reasoning"`
	RiskFactors     []string  `json:"risk_factors"`
	Timestamp       time.Time `json:"timestamp"`
}

// Side of an open position.
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// Position is an open trade tracked by the risk manager. Entry price and
// take-profit are fixed at open; current price, stop-loss and PnL mutate as
// updates arrive. Owned exclusively by the risk manager.
type Position struct {
	Symbol       string    `json:"symbol"`
	Side         Side      `json:"side"`
	EntryPrice   float64   `json:"entry_price"`
	CurrentPrice float64   `json:"current_price"`
	Size         float64   `json:"size"` // notional in quote currency
	StopLoss     float64   `json:"stop_loss"`
	TakeProfit   float64   `json:"take_profit"`
	EntryTime    time.Time `json:"entry_time"`
	PnL          float64   `json:"pnl"`
	PnLPct       float64   `json:"pnl_pct"`
}

// ExitReason identifies why a position left the book.
type ExitReason string

const (
	ExitStopLoss   ExitReason = "STOP_LOSS"
	ExitTakeProfit ExitReason = "TAKE_PROFIT"
	ExitManual     ExitReason = "MANUAL"
)

// ExitTrigger pairs a position with the reason it should close.
type ExitTrigger struct {
	Position *Position
	Reason   ExitReason
}

// RiskMetrics is a derived snapshot of portfolio risk, recomputed on demand
// from the open book and the historical return series. Never persisted.
type RiskMetrics struct {
	TotalExposure   float64   `json:"total_exposure"`
	MaxDrawdown     float64   `json:"max_drawdown"`
	CurrentDrawdown float64   `json:"current_drawdown"`
	RiskPerTrade    float64   `json:"risk_per_trade"`
	PortfolioVaR    float64   `json:"portfolio_var"` // 95% value at risk
	SharpeRatio     float64   `json:"sharpe_ratio"`  // annualized
	CorrelationRisk float64   `json:"correlation_risk"`
	Timestamp       time.Time `json:"timestamp"`
}
