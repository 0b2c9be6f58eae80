package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jackzampolin/docshard/internal/aggregate"
	"github.com/jackzampolin/docshard/internal/chunking"
	"github.com/jackzampolin/docshard/internal/cleanup"
	"github.com/jackzampolin/docshard/internal/types"
)

// registerRoutes sets up all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /v0/plan", s.handlePlan)
	mux.HandleFunc("POST /v0/aggregate", s.handleAggregate)
	mux.HandleFunc("POST /v0/cleanup", s.handleCleanup)
}

// HealthResponse is the response for the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the JSON error body for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// handlePlan analyzes a document and materializes chunks when needed.
func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req types.ChunkingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.planner.Plan(r.Context(), req)
	if err != nil {
		s.logger.Warn("plan request failed", "documentId", req.DocumentID, "error", err)
		var perr *chunking.PlanningError
		if errors.As(err, &perr) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleAggregate merges per-chunk results into a document result.
func (s *Server) handleAggregate(w http.ResponseWriter, r *http.Request) {
	var req types.AggregationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := aggregate.Aggregate(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleCleanup removes chunk artifacts, best effort.
func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	var req types.CleanupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.DocumentID == "" {
		writeError(w, http.StatusBadRequest, "missing required field: documentId")
		return
	}

	writeJSON(w, http.StatusOK, cleanup.Remove(s.logger, req))
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
