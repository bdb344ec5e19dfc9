// Package api provides the HTTP surface the host engine calls to plan splits.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pinot-bridge/internal/domain"
	"pinot-bridge/internal/middleware"
	"pinot-bridge/internal/planner"
)

// Handler serves split planning and metadata passthrough endpoints.
type Handler struct {
	planner        *planner.Planner
	metadata       domain.ClusterMetadata
	defaultSession domain.Session
	logger         *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(p *planner.Planner, metadata domain.ClusterMetadata, defaults domain.Session, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{planner: p, metadata: metadata, defaultSession: defaults, logger: logger}
}

// planRequest is the wire shape of a planning call.
type planRequest struct {
	Table string `json:"table"`
	Query *struct {
		SQL       string `json:"sql"`
		HasFilter bool   `json:"hasFilter"`
	} `json:"query,omitempty"`
	Pushdown string `json:"pushdown"`

	// Session overrides; zero values fall back to configured defaults.
	SegmentsPerSplit  *int  `json:"segmentsPerSplit,omitempty"`
	ForbidSegmentScan *bool `json:"forbidSegmentScan,omitempty"`
}

// planResponse carries the planned splits back to the engine.
type planResponse struct {
	RequestID string         `json:"requestId,omitempty"`
	Splits    []domain.Split `json:"splits"`
}

// PlanSplits handles POST /v1/splits.
func (h *Handler) PlanSplits(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, domain.ErrValidation("decode request: %v", err))
		return
	}
	if req.Table == "" {
		h.writeError(w, r, domain.ErrValidation("table is required"))
		return
	}

	pushdown, err := domain.ParsePushdownStatus(req.Pushdown)
	if err != nil {
		h.writeError(w, r, domain.ErrValidation("%v", err))
		return
	}

	handle := domain.TableHandle{Table: req.Table, Pushdown: pushdown}
	if req.Query != nil {
		handle.Query = &domain.GeneratedQuery{SQL: req.Query.SQL, HasFilter: req.Query.HasFilter}
	}

	session := h.defaultSession
	if req.SegmentsPerSplit != nil {
		session.SegmentsPerSplit = *req.SegmentsPerSplit
	}
	if req.ForbidSegmentScan != nil {
		session.ForbidSegmentScan = *req.ForbidSegmentScan
	}

	splits, err := h.planner.PlanSplits(r.Context(), handle, session)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, planResponse{
		RequestID: middleware.RequestIDFromContext(r.Context()),
		Splits:    splits,
	})
}

// GetRoutingTable handles GET /v1/tables/{table}/routing.
func (h *Handler) GetRoutingTable(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	routing, err := h.metadata.RoutingTable(r.Context(), table)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, routing)
}

// GetTimeBoundary handles GET /v1/tables/{table}/timeBoundary.
func (h *Handler) GetTimeBoundary(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	boundary, err := h.metadata.TimeBoundary(r.Context(), table)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{
		"online":  boundary.Online,
		"offline": boundary.Offline,
	})
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatusFromDomainError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "path", r.URL.Path, "error", err)
	} else {
		h.logger.Debug("request rejected", "path", r.URL.Path, "error", err)
	}
	h.writeJSON(w, status, map[string]interface{}{
		"code":    status,
		"message": err.Error(),
	})
}
