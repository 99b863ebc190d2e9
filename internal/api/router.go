// Package api exposes the HTTP surface: alert management, on-demand
// evaluation sweeps, indicator computation, single quotes, and the
// live stream over WebSocket or SSE.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stockpulse/internal/alerts"
	"stockpulse/internal/history"
	"stockpulse/internal/metrics"
	"stockpulse/internal/quotes"
	redisstore "stockpulse/internal/store/redis"
	"stockpulse/internal/stream"
)

// Server bundles the handler dependencies.
type Server struct {
	Alerts      *alerts.Service
	Evaluator   *alerts.Evaluator
	Broadcaster *stream.Broadcaster
	Quotes      quotes.Source
	Cache       *redisstore.Cache // nil-safe
	History     *history.Window
	Metrics     *metrics.Metrics
	Log         *slog.Logger
}

// NewRouter mounts all routes on a fresh mux.
func (s *Server) NewRouter() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	mux.HandleFunc("/api/alerts", s.handleAlerts)
	mux.HandleFunc("/api/alerts/check", s.handleSweep)
	mux.HandleFunc("/api/alerts/", s.handleAlertByID)

	mux.HandleFunc("/api/indicators", s.handleIndicators)
	mux.HandleFunc("/api/quote", s.handleQuote)
	mux.HandleFunc("/api/history", s.handleHistory)

	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/api/stream", s.handleSSE)

	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

// setCORS sets CORS headers for REST endpoints.
func setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
