package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vhoang/mx-sentinel/internal/alerting"
	"github.com/vhoang/mx-sentinel/internal/core/domain"
	"github.com/vhoang/mx-sentinel/internal/registry"
)

type addContractRequest struct {
	Address string   `json:"address" validate:"required,min=8"`
	Name    string   `json:"name" validate:"max=128"`
	Tags    []string `json:"tags" validate:"max=16,dive,min=1,max=64"`
}

type analyzeContractRequest struct {
	Code     string `json:"code"`
	FileName string `json:"file_name" validate:"max=256"`
}

type resolveAlertRequest struct {
	Notes string `json:"notes" validate:"max=2048"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	gateway := "ok"
	if _, err := s.provider.GetNetworkStatus(ctx); err != nil {
		gateway = "unreachable"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"gateway":   gateway,
		"contracts": len(s.registry.List()),
	})
}

func (s *Server) handleAddContract(w http.ResponseWriter, r *http.Request) {
	var req addContractRequest
	if !s.decode(w, r, &req) {
		return
	}

	contract, err := s.registry.Add(r.Context(), req.Address, req.Name, req.Tags)
	if err != nil {
		slog.Error("Failed to add contract", "address", req.Address, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to register contract")
		return
	}
	writeJSON(w, http.StatusCreated, contract)
}

func (s *Server) handleListContracts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"data": s.registry.List()})
}

func (s *Server) handleGetContract(w http.ResponseWriter, r *http.Request) {
	contract, err := s.registry.Get(chi.URLParam(r, "address"))
	if err != nil {
		if errors.Is(err, registry.ErrContractNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Contract is not monitored")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load contract")
		return
	}
	writeJSON(w, http.StatusOK, contract)
}

func (s *Server) handleRemoveContract(w http.ResponseWriter, r *http.Request) {
	err := s.registry.Remove(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		if errors.Is(err, registry.ErrContractNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Contract is not monitored")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to remove contract")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAnalyzeContract runs the on-demand contract-level analysis.
// Code may be supplied in the body; otherwise it is fetched from the
// gateway.
func (s *Server) handleAnalyzeContract(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	if _, err := s.registry.Get(address); err != nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Contract is not monitored")
		return
	}

	var req analyzeContractRequest
	if r.ContentLength > 0 && !s.decode(w, r, &req) {
		return
	}

	code := req.Code
	if code == "" {
		fetched, err := s.provider.GetAccountCode(r.Context(), address)
		if err != nil {
			slog.Warn("Code fetch failed for analysis", "address", address, "error", err)
			writeError(w, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "Could not fetch contract code")
			return
		}
		code = fetched
	}

	result, err := s.analyzer.AnalyzeContract(r.Context(), address, code, req.FileName)
	if err != nil {
		slog.Error("Contract analysis failed", "address", address, "error", err)
		writeError(w, http.StatusBadGateway, "ANALYSIS_UNAVAILABLE", "Contract analysis is temporarily unavailable")
		return
	}
	s.registry.UpdateAfterAnalysis(r.Context(), address, result)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	filter := domain.AlertFilter{
		ContractAddress: r.URL.Query().Get("contract"),
	}
	if v := r.URL.Query().Get("resolved"); v != "" {
		resolved, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_FILTER", "resolved must be a boolean")
			return
		}
		filter.Resolved = &resolved
	}
	if v := r.URL.Query().Get("min_score"); v != "" {
		min, err := strconv.Atoi(v)
		if err != nil || min < 0 || min > 100 {
			writeError(w, http.StatusBadRequest, "INVALID_FILTER", "min_score must be 0-100")
			return
		}
		filter.MinRiskScore = &min
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": s.alerts.List(filter)})
}

func (s *Server) handleGetAlert(w http.ResponseWriter, r *http.Request) {
	alert, err := s.alerts.Get(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, alerting.ErrAlertNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Unknown alert id")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load alert")
		return
	}
	writeJSON(w, http.StatusOK, alert)
}

func (s *Server) handleResolveAlert(w http.ResponseWriter, r *http.Request) {
	var req resolveAlertRequest
	if r.ContentLength > 0 && !s.decode(w, r, &req) {
		return
	}

	alert, err := s.alerts.Resolve(r.Context(), chi.URLParam(r, "id"), req.Notes)
	if err != nil {
		if errors.Is(err, alerting.ErrAlertNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Unknown alert id")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to resolve alert")
		return
	}
	writeJSON(w, http.StatusOK, alert)
}

func (s *Server) handleAlertStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.alerts.Stats())
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 || parsed > 500 {
			writeError(w, http.StatusBadRequest, "INVALID_FILTER", "limit must be 1-500")
			return
		}
		limit = parsed
	}
	records := s.analyses.List(r.URL.Query().Get("contract"), limit)
	writeJSON(w, http.StatusOK, map[string]any{"data": records})
}

// handleDashboard aggregates the registry, alert and analysis state
// into one overview payload.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats := s.alerts.Stats()
	contracts := s.registry.List()

	highRisk := 0
	for _, c := range contracts {
		if c.SecurityScore != nil && c.SecurityScore.Score < 40 {
			highRisk++
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"contracts": map[string]any{
			"monitored": len(contracts),
			"high_risk": highRisk,
		},
		"alerts": map[string]any{
			"total":    stats.Total,
			"open":     stats.Open,
			"by_level": stats.ByLevel,
		},
		"top_contracts":   stats.TopContracts,
		"top_patterns":    stats.TopPatterns,
		"recent_analyses": s.analyses.List("", 10),
	})
}

// decode parses and validates a JSON request body. On failure it
// writes the error response and reports false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Request body is not valid JSON")
		return false
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
