package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/comedor-pos/api/internal/service"
	"github.com/go-chi/chi/v5"
)

// DashboardServicer computes the admin dashboard.
// Satisfied by *service.DashboardService; narrow interface for testability.
type DashboardServicer interface {
	Summary(ctx context.Context, start, end time.Time) (*service.DashboardSummary, error)
}

// DashboardHandler serves the ADMIN dashboard.
type DashboardHandler struct {
	svc DashboardServicer
	loc *time.Location
	now func() time.Time
}

// NewDashboardHandler creates a new DashboardHandler. Dates are read in loc.
func NewDashboardHandler(svc DashboardServicer, loc *time.Location) *DashboardHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardHandler{svc: svc, loc: loc, now: time.Now}
}

// RegisterRoutes registers the dashboard endpoint. Expected to be mounted at /dashboard.
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Summary)
}

// Summary handles GET /dashboard?start_date=YYYY-MM-DD&end_date=YYYY-MM-DD.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseDateRange(r, h.loc, h.now())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	summary, err := h.svc.Summary(r.Context(), start, end)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDateRange) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: dashboard summary: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
