package consensus

import (
	"crypto-trading-bot/internal/interfaces"
	"crypto-trading-bot/internal/store"
)

func New(cfg *store.Config) interfaces.Consensus {
	return newEngine(cfg.Consensus.MinConfidence)
}
