package risk

import (
	"context"
	"math"
	"strings"
	"testing"

	"crypto-trading-bot/internal/types"
)

func testParams() Params {
	return Params{
		MaxConcurrentPositions: 3,
		MaxPositionSize:        1000,
		RiskPerTrade:           0.02,
		MaxPortfolioRisk:       0.06,
		CorrelationThreshold:   0.7,
		TrailingStopPct:        0.03,
		PortfolioValue:         10000,
	}
}

func longRec(symbol string) *types.TradeRecommendation {
	return &types.TradeRecommendation{
		Symbol:          symbol,
		Action:          types.ActionLong,
		Confidence:      0.8,
		EntryPrice:      100,
		TargetPrice:     110,
		StopLoss:        95,
		PositionSizePct: 0.10,
		RiskReward:      2.0,
	}
}

func TestValidateTradeAccepts(t *testing.T) {
	m := newManager(testParams())
	ctx := context.Background()

	ok, reason, size, err := m.ValidateTrade(ctx, longRec("BTCUSDT"), 100, 10000)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !ok {
		t.Fatalf("Expected trade to be accepted, got rejection: %s", reason)
	}
	if reason != "Trade validated" {
		t.Errorf("Expected reason 'Trade validated', got %q", reason)
	}
	// base size 10000*0.10 = 1000, Kelly allows 2500, risk cap allows 4000:
	// the base fraction is the binding ceiling.
	if size != 1000 {
		t.Errorf("Expected size 1000, got %f", size)
	}
}

func TestValidateTradeConcurrencyCap(t *testing.T) {
	m := newManager(testParams())
	ctx := context.Background()

	for _, sym := range []string{"BTCUSDT", "ETHUSDT", "SOLUSDT"} {
		m.AddPosition(ctx, longRec(sym), 100)
	}

	ok, reason, _, err := m.ValidateTrade(ctx, longRec("ADAUSDT"), 100, 10000)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if ok {
		t.Fatal("Expected rejection at the concurrency cap")
	}
	if reason != "Maximum concurrent positions reached" {
		t.Errorf("Expected concurrency cap reason, got %q", reason)
	}
}

func TestValidateTradeRejectsDust(t *testing.T) {
	m := newManager(testParams())
	ctx := context.Background()

	rec := longRec("BTCUSDT")
	rec.PositionSizePct = 0.0001 // 1 unit of notional, below the minimum

	ok, reason, _, err := m.ValidateTrade(ctx, rec, 100, 10000)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if ok {
		t.Fatal("Expected rejection for dust-sized position")
	}
	if reason != "Position size too small" {
		t.Errorf("Expected dust rejection reason, got %q", reason)
	}
}

func TestValidateTradePortfolioRisk(t *testing.T) {
	m := newManager(testParams())
	ctx := context.Background()

	// Two open positions with 10% stops, risk-weighted exposure 0.04 + 0.03.
	wide := longRec("AAAUSDT")
	wide.StopLoss = 90
	m.AddPosition(ctx, wide, 4000)
	wide2 := longRec("BBBUSDT")
	wide2.StopLoss = 90
	m.AddPosition(ctx, wide2, 3000)

	ok, reason, _, err := m.ValidateTrade(ctx, longRec("CCCUSDT"), 100, 10000)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if ok {
		t.Fatal("Expected rejection on the portfolio risk ceiling")
	}
	if !strings.HasPrefix(reason, "Portfolio risk too high:") {
		t.Errorf("Expected portfolio risk reason, got %q", reason)
	}
}

func TestValidateTradeCorrelation(t *testing.T) {
	m := newManager(testParams())
	ctx := context.Background()

	// Small existing BTC position so earlier checks stay quiet.
	small := longRec("BTCUSDT")
	small.StopLoss = 99.5
	m.AddPosition(ctx, small, 100)

	// Same base currency trips the 0.8 proxy over the 0.7 threshold.
	ok, reason, _, err := m.ValidateTrade(ctx, longRec("BTCPERP"), 100, 10000)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if ok {
		t.Fatal("Expected rejection for correlated same-base symbol")
	}
	if !strings.HasPrefix(reason, "High correlation with existing positions:") {
		t.Errorf("Expected correlation reason, got %q", reason)
	}

	// Same symbol is perfect correlation.
	ok, _, _, err = m.ValidateTrade(ctx, longRec("BTCUSDT"), 100, 10000)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if ok {
		t.Error("Expected rejection for duplicate symbol")
	}

	// Unrelated base scores 0.3 and passes.
	ok, reason, _, err = m.ValidateTrade(ctx, longRec("ETHUSDT"), 100, 10000)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !ok {
		t.Errorf("Expected unrelated symbol to pass, got rejection: %s", reason)
	}
}

func TestValidateTradeStopDistance(t *testing.T) {
	m := newManager(testParams())
	ctx := context.Background()

	rec := longRec("BTCUSDT")
	rec.StopLoss = 85 // 15% away from entry

	ok, reason, _, err := m.ValidateTrade(ctx, rec, 100, 10000)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if ok {
		t.Fatal("Expected rejection for distant stop loss")
	}
	if !strings.HasPrefix(reason, "Stop loss too far:") {
		t.Errorf("Expected stop distance reason, got %q", reason)
	}

	// Shorts measure the distance above entry.
	short := &types.TradeRecommendation{
		Symbol:          "ETHUSDT",
		Action:          types.ActionShort,
		Confidence:      0.8,
		EntryPrice:      100,
		TargetPrice:     90,
		StopLoss:        115,
		PositionSizePct: 0.10,
		RiskReward:      2.0,
	}
	ok, reason, _, err = m.ValidateTrade(ctx, short, 100, 10000)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if ok {
		t.Fatal("Expected rejection for distant short stop")
	}
	if !strings.HasPrefix(reason, "Stop loss too far:") {
		t.Errorf("Expected stop distance reason, got %q", reason)
	}
}

func TestValidateTradeContractViolations(t *testing.T) {
	m := newManager(testParams())
	ctx := context.Background()

	if _, _, _, err := m.ValidateTrade(ctx, nil, 100, 10000); err == nil {
		t.Error("Expected error for nil recommendation")
	}
	if _, _, _, err := m.ValidateTrade(ctx, longRec("BTCUSDT"), 0, 10000); err == nil {
		t.Error("Expected error for non-positive price")
	}
	if _, _, _, err := m.ValidateTrade(ctx, longRec("BTCUSDT"), 100, 0); err == nil {
		t.Error("Expected error for non-positive balance")
	}
}

func TestUpdatePositionsAndExitTriggers(t *testing.T) {
	m := newManager(testParams())
	ctx := context.Background()

	long := m.AddPosition(ctx, longRec("BTCUSDT"), 1000)

	shortRec := &types.TradeRecommendation{
		Symbol:      "ETHUSDT",
		Action:      types.ActionShort,
		EntryPrice:  100,
		TargetPrice: 90,
		StopLoss:    105,
	}
	m.AddPosition(ctx, shortRec, 1000)

	// No triggers at entry.
	if triggers := m.CheckExitTriggers(ctx); len(triggers) != 0 {
		t.Fatalf("Expected no triggers at entry, got %d", len(triggers))
	}

	// Long stop breached, short in profit but not yet at target.
	m.UpdatePositions(ctx, map[string]float64{"BTCUSDT": 94, "ETHUSDT": 95})

	if !almost(long.PnL, (94.0-100.0)*1000/100) {
		t.Errorf("Expected long PnL %f, got %f", (94.0-100.0)*1000/100, long.PnL)
	}
	if !almost(long.PnLPct, -0.06) {
		t.Errorf("Expected long PnLPct -0.06, got %f", long.PnLPct)
	}

	triggers := m.CheckExitTriggers(ctx)
	if len(triggers) != 1 {
		t.Fatalf("Expected exactly one trigger, got %d", len(triggers))
	}
	if triggers[0].Position.Symbol != "BTCUSDT" || triggers[0].Reason != types.ExitStopLoss {
		t.Errorf("Expected BTCUSDT stop-loss trigger, got %s %s", triggers[0].Position.Symbol, triggers[0].Reason)
	}

	// Short take-profit and short stop-loss.
	m.UpdatePositions(ctx, map[string]float64{"BTCUSDT": 100, "ETHUSDT": 89})
	triggers = m.CheckExitTriggers(ctx)
	if len(triggers) != 1 || triggers[0].Reason != types.ExitTakeProfit {
		t.Fatalf("Expected short take-profit trigger, got %v", triggers)
	}

	m.UpdatePositions(ctx, map[string]float64{"BTCUSDT": 100, "ETHUSDT": 106})
	triggers = m.CheckExitTriggers(ctx)
	if len(triggers) != 1 || triggers[0].Reason != types.ExitStopLoss {
		t.Fatalf("Expected short stop-loss trigger, got %v", triggers)
	}
}

func TestApplyTrailingStopRatchet(t *testing.T) {
	m := newManager(testParams())
	ctx := context.Background()

	pos := m.AddPosition(ctx, longRec("BTCUSDT"), 1000)

	// Below the 5% activation profit: stop untouched.
	m.UpdatePositions(ctx, map[string]float64{"BTCUSDT": 104})
	m.ApplyTrailingStop(ctx)
	if pos.StopLoss != 95 {
		t.Errorf("Expected stop unchanged below activation, got %f", pos.StopLoss)
	}

	// 10% profit ratchets the stop to price*(1-3%).
	m.UpdatePositions(ctx, map[string]float64{"BTCUSDT": 110})
	m.ApplyTrailingStop(ctx)
	if !almost(pos.StopLoss, 110*0.97) {
		t.Errorf("Expected stop ratcheted to %f, got %f", 110*0.97, pos.StopLoss)
	}

	// A pullback must never loosen the stop.
	m.UpdatePositions(ctx, map[string]float64{"BTCUSDT": 108})
	m.ApplyTrailingStop(ctx)
	if !almost(pos.StopLoss, 110*0.97) {
		t.Errorf("Expected stop held at %f on pullback, got %f", 110*0.97, pos.StopLoss)
	}

	// New highs keep ratcheting.
	m.UpdatePositions(ctx, map[string]float64{"BTCUSDT": 120})
	m.ApplyTrailingStop(ctx)
	if !almost(pos.StopLoss, 120*0.97) {
		t.Errorf("Expected stop ratcheted to %f, got %f", 120*0.97, pos.StopLoss)
	}
}

func TestApplyTrailingStopShort(t *testing.T) {
	m := newManager(testParams())
	ctx := context.Background()

	shortRec := &types.TradeRecommendation{
		Symbol:      "ETHUSDT",
		Action:      types.ActionShort,
		EntryPrice:  100,
		TargetPrice: 80,
		StopLoss:    105,
	}
	pos := m.AddPosition(ctx, shortRec, 1000)

	// 10% profit on a short moves the stop down toward price.
	m.UpdatePositions(ctx, map[string]float64{"ETHUSDT": 90})
	m.ApplyTrailingStop(ctx)
	if !almost(pos.StopLoss, 90*1.03) {
		t.Errorf("Expected short stop ratcheted to %f, got %f", 90*1.03, pos.StopLoss)
	}

	// A bounce must not raise it back.
	m.UpdatePositions(ctx, map[string]float64{"ETHUSDT": 94})
	m.ApplyTrailingStop(ctx)
	if !almost(pos.StopLoss, 90*1.03) {
		t.Errorf("Expected short stop held at %f on bounce, got %f", 90*1.03, pos.StopLoss)
	}
}

func TestClosePosition(t *testing.T) {
	m := newManager(testParams())
	ctx := context.Background()

	pos := m.AddPosition(ctx, longRec("BTCUSDT"), 1000)
	m.UpdatePositions(ctx, map[string]float64{"BTCUSDT": 110})

	if err := m.ClosePosition(ctx, pos); err != nil {
		t.Fatalf("Expected close to succeed, got %v", err)
	}
	if open := m.OpenPositions(); len(open) != 0 {
		t.Errorf("Expected empty book after close, got %d positions", len(open))
	}

	returns := m.HistoricalReturns()
	if len(returns) != 1 || !almost(returns[0], 0.10) {
		t.Errorf("Expected historical return of 0.10, got %v", returns)
	}

	// Closing the same position twice is an error.
	if err := m.ClosePosition(ctx, pos); err == nil {
		t.Error("Expected error closing an already-closed position")
	}
}

func TestBaseCurrency(t *testing.T) {
	cases := map[string]string{
		"BTCUSDT": "BTC",
		"btcperp": "BTC",
		"ETHUSDT": "ETH",
		"XR":      "XR",
	}
	for symbol, want := range cases {
		if got := baseCurrency(symbol); got != want {
			t.Errorf("baseCurrency(%q): expected %q, got %q", symbol, want, got)
		}
	}
}

func almost(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
