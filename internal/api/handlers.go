package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"stockpulse/internal/alerts"
	"stockpulse/internal/indicator"
	"stockpulse/internal/model"
	"stockpulse/internal/quotes"
)

type createAlertRequest struct {
	Symbol      string  `json:"symbol"`
	Name        string  `json:"name"`
	AlertType   string  `json:"alertType"`
	TargetValue float64 `json:"targetValue"`
}

// handleAlerts serves POST (create) and GET (list) on /api/alerts.
func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)

	case http.MethodPost:
		var req createAlertRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		a, err := s.Alerts.Create(r.Context(), req.Symbol, req.Name, model.AlertType(req.AlertType), req.TargetValue)
		if err != nil {
			if alerts.IsValidation(err) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			s.Log.Error("create alert failed", "err", err)
			writeError(w, http.StatusInternalServerError, "create failed")
			return
		}
		writeJSON(w, http.StatusCreated, a)

	case http.MethodGet:
		f := alerts.ParseFilter(r.URL.Query().Get("status"))
		list, err := s.Alerts.List(r.Context(), f)
		if err != nil {
			s.Log.Error("list alerts failed", "err", err)
			writeError(w, http.StatusInternalServerError, "list failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"alerts": list})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleSweep runs one evaluation sweep on demand.
func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	res, err := s.Evaluator.Sweep(r.Context())
	if err != nil {
		s.Log.Error("sweep failed", "err", err)
		writeError(w, http.StatusInternalServerError, "sweep failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type updateAlertRequest struct {
	IsActive *bool `json:"isActive"`
}

// handleAlertByID serves PATCH (pause/resume) and DELETE on
// /api/alerts/{id}.
func (s *Server) handleAlertByID(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	id := strings.TrimPrefix(r.URL.Path, "/api/alerts/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)

	case http.MethodPatch, http.MethodPost:
		var req updateAlertRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IsActive == nil {
			writeError(w, http.StatusBadRequest, "isActive is required")
			return
		}
		a, err := s.Alerts.SetActive(r.Context(), id, *req.IsActive)
		if err != nil {
			s.writeAlertError(w, err, "update")
			return
		}
		writeJSON(w, http.StatusOK, a)

	case http.MethodDelete:
		if err := s.Alerts.Delete(r.Context(), id); err != nil {
			s.writeAlertError(w, err, "delete")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) writeAlertError(w http.ResponseWriter, err error, op string) {
	if errors.Is(err, alerts.ErrNotFound) {
		writeError(w, http.StatusNotFound, "alert not found")
		return
	}
	s.Log.Error("alert "+op+" failed", "err", err)
	writeError(w, http.StatusInternalServerError, op+" failed")
}

type indicatorsRequest struct {
	Points []model.PricePoint `json:"points"`
}

// handleIndicators computes the full indicator set over a posted price
// series and returns the index-aligned merge.
func (s *Server) handleIndicators(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req indicatorsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.Points) == 0 {
		writeError(w, http.StatusBadRequest, "points are required")
		return
	}

	set := indicator.ComputeAll(req.Points)
	merged, err := indicator.MergeWithSeries(req.Points, set)
	if err != nil {
		// Alignment violations are a defect, not a client error.
		s.Log.Error("indicator merge failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"indicators": set,
		"data":       merged,
	})
}

// handleHistory serves the polled price history of one symbol, with
// the indicator set computed over whatever points the window holds.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	symbol := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("symbol")))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol parameter required")
		return
	}

	points := s.History.Points(symbol)
	if len(points) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{
			"symbol": symbol,
			"data":   []model.PricePoint{},
		})
		return
	}

	set := indicator.ComputeAll(points)
	merged, err := indicator.MergeWithSeries(points, set)
	if err != nil {
		s.Log.Error("history merge failed", "symbol", symbol, "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"symbol": symbol,
		"data":   merged,
	})
}

// handleQuote serves a single symbol's latest quote, reading through
// the cache before hitting upstream.
func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	symbol := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("symbol")))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol parameter required")
		return
	}

	if q, ok := s.Cache.Get(r.Context(), symbol); ok {
		s.Metrics.CacheHits.Inc()
		writeJSON(w, http.StatusOK, q)
		return
	}
	s.Metrics.CacheMisses.Inc()

	q, err := s.Quotes.Fetch(r.Context(), symbol)
	if err != nil {
		if errors.Is(err, quotes.ErrUnavailable) {
			writeError(w, http.StatusBadGateway, "quote unavailable")
			return
		}
		writeError(w, http.StatusInternalServerError, "fetch failed")
		return
	}
	if err := s.Cache.Put(r.Context(), q); err != nil {
		s.Log.Debug("quote cache write failed", "symbol", symbol, "err", err)
	}
	writeJSON(w, http.StatusOK, q)
}
