package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestApplyDefaults(t *testing.T) {
	c := &Config{Symbols: []string{"BTCUSDT"}}
	c.ApplyDefaults()

	if c.Mode != "DRY_RUN" {
		t.Errorf("Expected default mode DRY_RUN, got %s", c.Mode)
	}
	if c.AnalysisIntervalMinutes != 240 {
		t.Errorf("Expected default analysis interval 240, got %d", c.AnalysisIntervalMinutes)
	}
	if c.MonitorIntervalSeconds != 300 {
		t.Errorf("Expected default monitor interval 300, got %d", c.MonitorIntervalSeconds)
	}
	if c.AccountBalance != 10000 {
		t.Errorf("Expected default balance 10000, got %f", c.AccountBalance)
	}
	if c.Consensus.MinConfidence != 0.7 {
		t.Errorf("Expected default min confidence 0.7, got %f", c.Consensus.MinConfidence)
	}
	if c.Risk.MaxConcurrentPositions != 3 {
		t.Errorf("Expected default max positions 3, got %d", c.Risk.MaxConcurrentPositions)
	}
	if c.Risk.MaxPositionSize != 1000 {
		t.Errorf("Expected default max position size 1000, got %f", c.Risk.MaxPositionSize)
	}
	if c.Risk.RiskPerTrade != 0.02 {
		t.Errorf("Expected default risk per trade 0.02, got %f", c.Risk.RiskPerTrade)
	}
	if c.Risk.MaxPortfolioRisk != 0.06 {
		t.Errorf("Expected default portfolio risk 0.06, got %f", c.Risk.MaxPortfolioRisk)
	}
	if c.Risk.CorrelationThreshold != 0.7 {
		t.Errorf("Expected default correlation threshold 0.7, got %f", c.Risk.CorrelationThreshold)
	}
	if c.Risk.TrailingStopPct != 0.03 {
		t.Errorf("Expected default trailing stop 0.03, got %f", c.Risk.TrailingStopPct)
	}
	if len(c.Opinion.Providers) != 2 {
		t.Errorf("Expected two default providers, got %v", c.Opinion.Providers)
	}
	if c.API.ListenAddr != ":8080" {
		t.Errorf("Expected default listen addr :8080, got %s", c.API.ListenAddr)
	}
}

func TestValidate(t *testing.T) {
	valid := &Config{Symbols: []string{"BTCUSDT"}}
	valid.ApplyDefaults()
	if err := valid.Validate(); err != nil {
		t.Errorf("Expected defaulted config to validate, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad mode", func(c *Config) { c.Mode = "PAPER" }},
		{"no symbols", func(c *Config) { c.Symbols = nil }},
		{"confidence out of range", func(c *Config) { c.Consensus.MinConfidence = 1.5 }},
		{"risk per trade out of range", func(c *Config) { c.Risk.RiskPerTrade = 2 }},
		{"zero max positions", func(c *Config) { c.Risk.MaxConcurrentPositions = -1 }},
		{"trailing stop out of range", func(c *Config) { c.Risk.TrailingStopPct = 1 }},
		{"negative balance", func(c *Config) { c.AccountBalance = -100 }},
	}
	for _, tc := range cases {
		c := &Config{Symbols: []string{"BTCUSDT"}}
		c.ApplyDefaults()
		tc.mutate(c)
		if err := c.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `
mode: DRY_RUN
symbols:
  - BTCUSDT
  - ETHUSDT
account_balance: 25000
consensus:
  min_confidence: 0.8
risk:
  max_concurrent_positions: 5
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Expected config to load, got %v", err)
	}

	if len(cfg.Symbols) != 2 {
		t.Errorf("Expected 2 symbols, got %d", len(cfg.Symbols))
	}
	if cfg.AccountBalance != 25000 {
		t.Errorf("Expected balance 25000, got %f", cfg.AccountBalance)
	}
	if cfg.Consensus.MinConfidence != 0.8 {
		t.Errorf("Expected min confidence 0.8, got %f", cfg.Consensus.MinConfidence)
	}
	if cfg.Risk.MaxConcurrentPositions != 5 {
		t.Errorf("Expected max positions 5, got %d", cfg.Risk.MaxConcurrentPositions)
	}
	// Unset options still receive defaults.
	if cfg.Risk.RiskPerTrade != 0.02 {
		t.Errorf("Expected defaulted risk per trade 0.02, got %f", cfg.Risk.RiskPerTrade)
	}

	if _, err := LoadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Expected error for missing config file")
	}
}
