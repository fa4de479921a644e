// Package consoleapi exposes the console view over a local HTTP API.
package consoleapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/cityline/internal/cityapi"
	"github.com/linnemanlabs/cityline/internal/complaint"
	"github.com/linnemanlabs/cityline/internal/console"
	"github.com/linnemanlabs/cityline/internal/facet"
)

// API holds dependencies for HTTP handlers.
type API struct {
	logger log.Logger
	view   *console.Console
}

// New creates a new API handler.
func New(logger log.Logger, view *console.Console) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if view == nil {
		panic(xerrors.New("console view is required"))
	}
	return &API{
		logger: logger,
		view:   view,
	}
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/complaints", a.handleListComplaints)
		r.Get("/complaints/{id}", a.handleGetComplaint)
		r.Patch("/complaints/{id}/status", a.handleUpdateStatus)
		r.Get("/stats", a.handleStats)
		r.Put("/filters", a.handlePutFilters)
		r.Post("/refresh", a.handleRefresh)
	})
}

type listResponse struct {
	Complaints []complaint.Complaint `json:"complaints"`
	LastSync   time.Time             `json:"last_sync"`
	Error      string                `json:"error,omitempty"`
}

func (a *API) handleListComplaints(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	// Query parameters override the stored selection for this request only.
	sel := a.view.Selection()
	if v := q.Get("department"); v != "" {
		if err := sel.SetDepartment(a.view.Scope(), v); err != nil {
			if errors.Is(err, facet.ErrDepartmentLocked) {
				writeErr(w, http.StatusUnprocessableEntity, "department facet is locked by your role")
				return
			}
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if v := q.Get("urgency"); v != "" {
		sel.SetUrgency(v)
	}
	if v := q.Get("status"); v != "" {
		sel.SetStatus(v)
	}

	view := a.view.ViewWith(sel)

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.Int("cityline.complaints.visible", len(view)))

	writeJSON(w, http.StatusOK, listResponse{
		Complaints: view,
		LastSync:   a.view.Stats().LastSync,
		Error:      a.view.LastError(),
	})
}

func (a *API) handleGetComplaint(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("cityline.complaint.id", id))

	rec, ok := a.view.Lookup(id)
	if !ok {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}

	span.SetAttributes(attribute.String("cityline.complaint.status", string(rec.Status)))
	writeJSON(w, http.StatusOK, rec)
}

type statusRequest struct {
	Status          string `json:"status"`
	RejectionReason string `json:"rejection_reason,omitempty"`
}

func (a *API) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid payload")
		return
	}

	to, err := complaint.ParseStatus(req.Status)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.String("cityline.complaint.id", id),
		attribute.String("cityline.command.to", string(to)),
	)

	err = a.view.UpdateStatus(r.Context(), id, to, req.RejectionReason)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{"applied": true})
	case errors.Is(err, console.ErrUnknownComplaint):
		writeErr(w, http.StatusNotFound, "not found")
	case errors.Is(err, complaint.ErrInvalidTransition),
		errors.Is(err, complaint.ErrReasonRequired):
		writeErr(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, cityapi.ErrAuth):
		writeErr(w, http.StatusBadGateway, "session token rejected upstream; sign in again")
	default:
		a.logger.Error(r.Context(), err, "status update failed", "id", id)
		writeErr(w, http.StatusBadGateway, "upstream update failed")
	}
}

func (a *API) handleStats(w http.ResponseWriter, r *http.Request) {
	sv := a.view.Stats()

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.Int("cityline.stats.total", sv.Summary.Total))

	writeJSON(w, http.StatusOK, sv)
}

type filtersRequest struct {
	Department *string `json:"department,omitempty"`
	Urgency    *string `json:"urgency,omitempty"`
	Status     *string `json:"status,omitempty"`
}

type filtersResponse struct {
	Department string `json:"department"`
	Urgency    string `json:"urgency"`
	Status     string `json:"status"`
}

func (a *API) handlePutFilters(w http.ResponseWriter, r *http.Request) {
	var req filtersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid payload")
		return
	}

	if req.Department != nil {
		if err := a.view.SetDepartment(*req.Department); err != nil {
			if errors.Is(err, facet.ErrDepartmentLocked) {
				writeErr(w, http.StatusUnprocessableEntity, "department facet is locked by your role")
				return
			}
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.Urgency != nil {
		a.view.SetUrgency(*req.Urgency)
	}
	if req.Status != nil {
		a.view.SetStatus(*req.Status)
	}

	sel := a.view.Selection()
	writeJSON(w, http.StatusOK, filtersResponse{
		Department: sel.Department(),
		Urgency:    sel.Urgency(),
		Status:     sel.Status(),
	})
}

func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := a.view.Refresh(r.Context()); err != nil {
		if errors.Is(err, cityapi.ErrAuth) {
			writeErr(w, http.StatusBadGateway, "session token rejected upstream; sign in again")
			return
		}
		a.logger.Error(r.Context(), err, "manual refresh failed")
		writeErr(w, http.StatusBadGateway, "refresh failed; showing cached data")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"last_sync": a.view.Stats().LastSync,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
