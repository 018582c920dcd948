package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"crypto-trading-bot/internal/interfaces"
	"crypto-trading-bot/internal/logger"
	"crypto-trading-bot/internal/metrics"
)

// Server exposes read-only status endpoints plus the Prometheus registry.
// It never mutates the position book; all handlers read snapshots.
type Server struct {
	risk interfaces.Risk
	srv  *http.Server
}

func NewServer(addr string, risk interfaces.Risk) *Server {
	s := &Server{risk: risk}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/positions", s.handlePositions)
	mux.HandleFunc("/risk-metrics", s.handleRiskMetrics)
	mux.Handle("/metrics", metrics.Handler())

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start(ctx context.Context) {
	go func() {
		logger.Info(ctx, "Status API listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.ErrorWithErr(ctx, "Status API stopped", err)
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	positions := s.risk.OpenPositions()
	writeJSON(w, map[string]any{
		"count":     len(positions),
		"positions": positions,
	})
}

func (s *Server) handleRiskMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.risk.RiskMetrics(r.Context()))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
