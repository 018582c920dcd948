package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"crypto-trading-bot/internal/interfaces"
	"crypto-trading-bot/internal/logger"
	"crypto-trading-bot/internal/metrics"
	"crypto-trading-bot/internal/store"
	"crypto-trading-bot/internal/trace"
	"crypto-trading-bot/internal/tradelog"
	"crypto-trading-bot/internal/types"
)

// drawdownAlert is the portfolio drawdown below which a risk event is logged.
const drawdownAlert = -0.10

type bot struct {
	cfg       *store.Config
	market    interfaces.MarketFeed
	technical interfaces.TechnicalFeed
	sentiment interfaces.SentimentFeed
	providers []interfaces.OpinionProvider
	consensus interfaces.Consensus
	risk      interfaces.Risk
}

func main() {
	if err := initializeSystem(); err != nil {
		fmt.Fprintf(os.Stderr, "Startup failed: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer func() { _ = trace.Shutdown(context.Background()) }()

	cfg, err := loadConfig(ctx)
	if err != nil {
		os.Exit(1)
	}
	compressOldLogs(ctx)

	feed, err := initializeFeeds(ctx, cfg)
	if err != nil {
		logger.ErrorWithErr(ctx, "Feed initialization failed", err)
		os.Exit(1)
	}

	b := &bot{
		cfg:       cfg,
		market:    feed,
		technical: feed,
		sentiment: feed,
		providers: initializeProviders(ctx, cfg),
		consensus: initializeConsensus(cfg),
		risk:      initializeRisk(cfg),
	}

	srv := initializeAPI(ctx, cfg, b.risk)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	analysisTick := time.NewTicker(time.Duration(cfg.AnalysisIntervalMinutes) * time.Minute)
	defer analysisTick.Stop()
	monitorTick := time.NewTicker(time.Duration(cfg.MonitorIntervalSeconds) * time.Second)
	defer monitorTick.Stop()
	summaryTick := time.NewTicker(60 * time.Second)
	defer summaryTick.Stop()

	logger.Info(ctx, "Bot started", "mode", cfg.Mode, "symbols", len(cfg.Symbols))
	b.runAnalysisCycle(ctx)

	lastSummaryDay := time.Now().UTC().Format("2006-01-02")
	for {
		select {
		case <-analysisTick.C:
			b.runAnalysisCycle(ctx)
		case <-monitorTick.C:
			b.monitorPositions(ctx)
		case <-summaryTick.C:
			// Summarize once per UTC day rollover
			if d := time.Now().UTC().Format("2006-01-02"); d != lastSummaryDay {
				b.logDailySummary(ctx)
				lastSummaryDay = d
			}
		case <-sigc:
			logger.Info(ctx, "Shutting down")
			b.logDailySummary(ctx)
			if srv != nil {
				shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
				_ = srv.Shutdown(shutdownCtx)
				stop()
			}
			return
		case <-ctx.Done():
			return
		}
	}
}

// runAnalysisCycle analyzes every configured symbol, then ranks and opens the
// strongest recommendations subject to risk validation.
func (b *bot) runAnalysisCycle(ctx context.Context) {
	op := logger.StartOperation(ctx, "analysis_cycle", "symbols", len(b.cfg.Symbols))
	ctx = op.GetContext()

	var candidates []*types.TradeRecommendation
	for _, sym := range b.cfg.Symbols {
		rec, err := b.analyzeSymbol(ctx, sym)
		if err != nil {
			logger.ErrorWithErr(ctx, "Symbol analysis failed", err, "symbol", sym)
			continue
		}
		if rec != nil {
			candidates = append(candidates, rec)
		}
	}

	accepted := b.openCandidates(ctx, candidates)
	op.End("candidates", len(candidates), "accepted", accepted)
}

// analyzeSymbol runs the full pipeline for one symbol: feeds, opinion
// providers, then consensus. A nil recommendation means consensus abstained.
func (b *bot) analyzeSymbol(ctx context.Context, symbol string) (*types.TradeRecommendation, error) {
	snapshot, err := b.market.Snapshot(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("market snapshot: %w", err)
	}
	signals, err := b.technical.Signals(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("technical signals: %w", err)
	}
	sentiment, err := b.sentiment.Sentiment(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("sentiment: %w", err)
	}

	opinions := make([]types.Opinion, 0, len(b.providers))
	for _, p := range b.providers {
		opn, err := p.Analyze(ctx, symbol, signals, sentiment, snapshot)
		if err != nil {
			logger.Warn(ctx, "Opinion provider failed", "provider", p.Name(), "symbol", symbol, "error", err)
			continue
		}
		opinions = append(opinions, opn)
	}
	if len(opinions) == 0 {
		return nil, fmt.Errorf("no opinions available for %s", symbol)
	}

	rec, err := b.consensus.Generate(ctx, opinions, signals, sentiment, snapshot, snapshot.Price)
	if err != nil {
		return nil, err
	}

	b.recordDecision(ctx, symbol, rec)
	return rec, nil
}

// recordDecision appends the consensus outcome to the daily decision log.
func (b *bot) recordDecision(ctx context.Context, symbol string, rec *types.TradeRecommendation) {
	e := tradelog.DecisionEntry{
		Symbol: symbol,
		Action: "ABSTAIN",
	}
	if rec != nil {
		e.Action = string(rec.Action)
		e.Confidence = rec.Confidence
		e.EntryPrice = rec.EntryPrice
		e.TargetPrice = rec.TargetPrice
		e.StopLoss = rec.StopLoss
		e.RiskReward = rec.RiskReward
		e.Reason = rec.Reasoning
		e.RiskFactors = rec.RiskFactors
	}
	if err := tradelog.AppendDecision(e); err != nil {
		logger.Warn(ctx, "Failed to append decision log", "symbol", symbol, "error", err)
	}
}

// openCandidates ranks recommendations by confidence-weighted expected return
// and opens at most max_trades_per_cycle of the top candidates_per_cycle.
func (b *bot) openCandidates(ctx context.Context, recs []*types.TradeRecommendation) int {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Confidence*recs[i].ExpectedReturn > recs[j].Confidence*recs[j].ExpectedReturn
	})
	if len(recs) > b.cfg.CandidatesPerCycle {
		recs = recs[:b.cfg.CandidatesPerCycle]
	}

	accepted := 0
	for _, rec := range recs {
		if accepted >= b.cfg.MaxTradesPerCycle {
			break
		}
		ok, reason, size, err := b.risk.ValidateTrade(ctx, rec, rec.EntryPrice, b.cfg.AccountBalance)
		if err != nil {
			logger.ErrorWithErr(ctx, "Trade validation failed", err, "symbol", rec.Symbol)
			continue
		}
		if !ok {
			logger.Decision(ctx, rec.Symbol, "SKIP", rec.Confidence, reason)
			continue
		}

		pos := b.risk.AddPosition(ctx, rec, size)
		logger.Decision(ctx, rec.Symbol, string(rec.Action), rec.Confidence, "Position opened",
			"entry", pos.EntryPrice,
			"size", pos.Size,
			"stop_loss", pos.StopLoss,
			"take_profit", pos.TakeProfit,
		)
		accepted++
	}
	return accepted
}

// monitorPositions refreshes prices for open positions, processes exit
// triggers, ratchets trailing stops, and checks portfolio-level drawdown.
func (b *bot) monitorPositions(ctx context.Context) {
	open := b.risk.OpenPositions()
	if len(open) == 0 {
		return
	}

	seen := make(map[string]bool, len(open))
	symbols := make([]string, 0, len(open))
	for _, p := range open {
		if !seen[p.Symbol] {
			seen[p.Symbol] = true
			symbols = append(symbols, p.Symbol)
		}
	}

	prices, err := b.market.Prices(ctx, symbols)
	if err != nil {
		logger.ErrorWithErr(ctx, "Price refresh failed", err)
		return
	}
	b.risk.UpdatePositions(ctx, prices)

	for _, trig := range b.risk.CheckExitTriggers(ctx) {
		pos := trig.Position
		if err := b.risk.ClosePosition(ctx, pos); err != nil {
			logger.ErrorWithErr(ctx, "Failed to close position", err, "symbol", pos.Symbol)
			continue
		}
		metrics.PositionExits.WithLabelValues(string(trig.Reason)).Inc()
		if err := tradelog.AppendClose(*pos, trig.Reason); err != nil {
			logger.Warn(ctx, "Failed to append close log", "symbol", pos.Symbol, "error", err)
		}
	}

	b.risk.ApplyTrailingStop(ctx)

	rm := b.risk.RiskMetrics(ctx)
	if rm.CurrentDrawdown < drawdownAlert {
		logger.Risk(ctx, "PORTFOLIO", "HIGH_DRAWDOWN",
			"current_drawdown", rm.CurrentDrawdown,
			"max_drawdown", rm.MaxDrawdown,
		)
	}
}

// logDailySummary emits a portfolio snapshot for the day that just ended.
func (b *bot) logDailySummary(ctx context.Context) {
	rm := b.risk.RiskMetrics(ctx)
	open := b.risk.OpenPositions()
	returns := b.risk.HistoricalReturns()

	var cumulative float64
	for _, r := range returns {
		cumulative += r
	}

	logger.Info(ctx, "Daily summary",
		"open_positions", len(open),
		"total_exposure", rm.TotalExposure,
		"portfolio_var", rm.PortfolioVaR,
		"sharpe_ratio", rm.SharpeRatio,
		"max_drawdown", rm.MaxDrawdown,
		"closed_trades", len(returns),
		"cumulative_return_pct", cumulative,
	)
}
