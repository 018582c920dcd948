package store

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Mode                    string   `yaml:"mode"`
	Symbols                 []string `yaml:"symbols"`
	AnalysisIntervalMinutes int      `yaml:"analysis_interval_minutes"`
	MonitorIntervalSeconds  int      `yaml:"monitor_interval_seconds"`
	AccountBalance          float64  `yaml:"account_balance"`
	MaxTradesPerCycle       int      `yaml:"max_trades_per_cycle"`
	CandidatesPerCycle      int      `yaml:"candidates_per_cycle"`
	Consensus               struct {
		MinConfidence float64 `yaml:"min_confidence"`
	} `yaml:"consensus"`
	Risk struct {
		MaxConcurrentPositions int     `yaml:"max_concurrent_positions"`
		MaxPositionSize        float64 `yaml:"max_position_size"`
		RiskPerTrade           float64 `yaml:"risk_per_trade"`
		MaxPortfolioRisk       float64 `yaml:"max_portfolio_risk"`
		CorrelationThreshold   float64 `yaml:"correlation_threshold"`
		TrailingStopPct        float64 `yaml:"trailing_stop_pct"`
	} `yaml:"risk"`
	Opinion struct {
		Providers []string `yaml:"providers"`
	} `yaml:"opinion"`
	Feeds struct {
		StaticPrices map[string]float64 `yaml:"static_prices"`
	} `yaml:"feeds"`
	API struct {
		Enabled    bool   `yaml:"enabled"`
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"api"`
}

func (c *Config) Validate() error {
	if c.Mode != "DRY_RUN" && c.Mode != "LIVE" {
		return fmt.Errorf("invalid mode '%s': must be 'DRY_RUN' or 'LIVE'", c.Mode)
	}
	if len(c.Symbols) == 0 {
		return errors.New("symbols cannot be empty")
	}
	if c.Consensus.MinConfidence < 0 || c.Consensus.MinConfidence > 1 {
		return fmt.Errorf("consensus.min_confidence must be between 0-1, got %.2f", c.Consensus.MinConfidence)
	}
	if c.Risk.RiskPerTrade <= 0 || c.Risk.RiskPerTrade > 1 {
		return fmt.Errorf("risk.risk_per_trade must be between 0-1, got %.4f", c.Risk.RiskPerTrade)
	}
	if c.Risk.MaxConcurrentPositions < 1 {
		return fmt.Errorf("risk.max_concurrent_positions must be at least 1, got %d", c.Risk.MaxConcurrentPositions)
	}
	if c.Risk.TrailingStopPct <= 0 || c.Risk.TrailingStopPct >= 1 {
		return fmt.Errorf("risk.trailing_stop_pct must be between 0-1, got %.4f", c.Risk.TrailingStopPct)
	}
	if c.AccountBalance <= 0 {
		return fmt.Errorf("account_balance must be positive, got %.2f", c.AccountBalance)
	}
	return nil
}

// ApplyDefaults fills in defaults for every recognized option that was left
// unset. Called by LoadConfig before validation.
func (c *Config) ApplyDefaults() {
	if c.Mode == "" {
		c.Mode = "DRY_RUN"
	}
	if c.AnalysisIntervalMinutes == 0 {
		c.AnalysisIntervalMinutes = 240
	}
	if c.MonitorIntervalSeconds == 0 {
		c.MonitorIntervalSeconds = 300
	}
	if c.AccountBalance == 0 {
		c.AccountBalance = 10000
	}
	if c.MaxTradesPerCycle == 0 {
		c.MaxTradesPerCycle = 3
	}
	if c.CandidatesPerCycle == 0 {
		c.CandidatesPerCycle = 10
	}
	if c.Consensus.MinConfidence == 0 {
		c.Consensus.MinConfidence = 0.7
	}
	if c.Risk.MaxConcurrentPositions == 0 {
		c.Risk.MaxConcurrentPositions = 3
	}
	if c.Risk.MaxPositionSize == 0 {
		c.Risk.MaxPositionSize = 1000
	}
	if c.Risk.RiskPerTrade == 0 {
		c.Risk.RiskPerTrade = 0.02
	}
	if c.Risk.MaxPortfolioRisk == 0 {
		c.Risk.MaxPortfolioRisk = 0.06
	}
	if c.Risk.CorrelationThreshold == 0 {
		c.Risk.CorrelationThreshold = 0.7
	}
	if c.Risk.TrailingStopPct == 0 {
		c.Risk.TrailingStopPct = 0.03
	}
	if len(c.Opinion.Providers) == 0 {
		c.Opinion.Providers = []string{"alpha", "beta"}
	}
	if c.API.ListenAddr == "" {
		c.API.ListenAddr = ":8080"
	}
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	c.ApplyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}
