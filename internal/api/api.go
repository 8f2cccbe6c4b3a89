/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/friendsincode/matchday/internal/logbuffer"
	"github.com/friendsincode/matchday/internal/matchplan"
	"github.com/friendsincode/matchday/internal/params"
	"github.com/friendsincode/matchday/internal/plans"
	"github.com/friendsincode/matchday/internal/schedule"
	"github.com/friendsincode/matchday/internal/sweep"
)

// maxBodyBytes bounds request bodies; parameter files are small.
const maxBodyBytes = 1 << 20

// API exposes HTTP handlers.
type API struct {
	db     *gorm.DB
	plans  *plans.Service
	sweeps *sweep.Service
	export *schedule.ExportService
	logs   *logbuffer.Buffer
	logger zerolog.Logger
}

// New creates the API handler set.
func New(db *gorm.DB, planSvc *plans.Service, sweepSvc *sweep.Service, exportSvc *schedule.ExportService, logger zerolog.Logger) *API {
	return &API{
		db:     db,
		plans:  planSvc,
		sweeps: sweepSvc,
		export: exportSvc,
		logger: logger.With().Str("component", "api").Logger(),
	}
}

// SetLogBuffer enables the log endpoints.
func (a *API) SetLogBuffer(buf *logbuffer.Buffer) {
	a.logs = buf
}

// Routes registers all endpoints on r.
func (a *API) Routes(r chi.Router) {
	r.Get("/healthz", a.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/plans", func(r chi.Router) {
			r.Get("/", a.handlePlansList)
			r.Post("/", a.handlePlansCreate)
			r.Route("/{planID}", func(r chi.Router) {
				r.Get("/", a.handlePlansGet)
				r.Delete("/", a.handlePlansDelete)
				r.Get("/activities", a.handlePlanActivities)
				r.Get("/match-plan", a.handlePlanMatchPlan)
				r.Get("/ical", a.handlePlanICal)
			})
		})

		r.Route("/sweeps", func(r chi.Router) {
			r.Get("/", a.handleSweepsList)
			r.Post("/", a.handleSweepsCreate)
			r.Route("/{runID}", func(r chi.Router) {
				r.Get("/", a.handleSweepsGet)
				r.Get("/items", a.handleSweepItems)
				r.Get("/report", a.handleSweepReport)
				r.Post("/cancel", a.handleSweepCancel)
			})
		})

		r.Get("/logs", a.handleLogs)
		r.Get("/logs/stats", a.handleLogStats)
	})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	sqlDB, err := a.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		a.logger.Warn().Err(err).Msg("health check database ping failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "database": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeErrorDetail(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

// writeServiceError maps domain errors to HTTP statuses.
func (a *API) writeServiceError(w http.ResponseWriter, err error, what string) {
	switch {
	case errors.Is(err, plans.ErrPlanNotFound), errors.Is(err, sweep.ErrRunNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, matchplan.ErrUnsupportedPlan):
		writeErrorDetail(w, http.StatusUnprocessableEntity, "unsupported_plan", err.Error())
	case errors.Is(err, params.ErrMissingParameter), errors.Is(err, params.ErrInvalidParameter), errors.Is(err, sweep.ErrEmptySweep):
		writeErrorDetail(w, http.StatusUnprocessableEntity, "invalid_parameters", err.Error())
	case errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, "cancelled")
	default:
		a.logger.Error().Err(err).Msg(what + " failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
	}
}

func queryInt(r *http.Request, key string, def int) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

func writeErrorDetail(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, map[string]string{"error": code, "detail": detail})
}
