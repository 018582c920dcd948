package tradelog

import (
	"testing"
	"time"

	"crypto-trading-bot/internal/types"
)

func TestDecisionRoundTrip(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())

	now := time.Now().UTC()
	entries := []DecisionEntry{
		{Symbol: "BTCUSDT", Action: "LONG", Confidence: 0.82, EntryPrice: 65000, TargetPrice: 70000, StopLoss: 63000, RiskReward: 2.5},
		{Symbol: "ETHUSDT", Action: "ABSTAIN"},
	}
	for _, e := range entries {
		if err := AppendDecision(e); err != nil {
			t.Fatalf("Expected append to succeed, got %v", err)
		}
	}

	got, err := ReadDecisions(now)
	if err != nil {
		t.Fatalf("Expected read to succeed, got %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 decisions, got %d", len(got))
	}
	if got[0].Symbol != "BTCUSDT" || got[0].Action != "LONG" || got[0].Confidence != 0.82 {
		t.Errorf("Unexpected first decision: %+v", got[0])
	}
	if got[1].Action != "ABSTAIN" {
		t.Errorf("Expected second decision ABSTAIN, got %s", got[1].Action)
	}
}

func TestCloseRoundTrip(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())

	pos := types.Position{
		Symbol:       "BTCUSDT",
		Side:         types.SideLong,
		EntryPrice:   65000,
		CurrentPrice: 68000,
		Size:         1000,
		PnL:          46.15,
		PnLPct:       0.04615,
	}
	if err := AppendClose(pos, types.ExitTakeProfit); err != nil {
		t.Fatalf("Expected append to succeed, got %v", err)
	}

	got, err := ReadCloses(time.Now().UTC())
	if err != nil {
		t.Fatalf("Expected read to succeed, got %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 close, got %d", len(got))
	}
	c := got[0]
	if c.Symbol != "BTCUSDT" || c.Side != string(types.SideLong) || c.Reason != string(types.ExitTakeProfit) {
		t.Errorf("Unexpected close entry: %+v", c)
	}
	if c.EntryPrice != 65000 || c.ExitPrice != 68000 {
		t.Errorf("Expected entry 65000 exit 68000, got %f %f", c.EntryPrice, c.ExitPrice)
	}
}

func TestReadMissingDayIsEmpty(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())

	decisions, err := ReadDecisions(time.Now().UTC().AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("Expected no error for missing day, got %v", err)
	}
	if len(decisions) != 0 {
		t.Errorf("Expected no decisions, got %d", len(decisions))
	}
}
