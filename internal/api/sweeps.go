/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/friendsincode/matchday/internal/sweep"
)

func (a *API) handleSweepsCreate(w http.ResponseWriter, r *http.Request) {
	var req sweep.CreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	run, err := a.sweeps.Create(r.Context(), req)
	if err != nil {
		a.writeServiceError(w, err, "create sweep")
		return
	}
	writeJSON(w, http.StatusAccepted, run)
}

func (a *API) handleSweepsList(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit", 50)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_limit")
		return
	}
	runs, err := a.sweeps.List(r.Context(), limit)
	if err != nil {
		a.writeServiceError(w, err, "list sweeps")
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (a *API) handleSweepsGet(w http.ResponseWriter, r *http.Request) {
	run, err := a.sweeps.Get(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		a.writeServiceError(w, err, "get sweep")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (a *API) handleSweepItems(w http.ResponseWriter, r *http.Request) {
	items, err := a.sweeps.Items(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		a.writeServiceError(w, err, "list sweep items")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (a *API) handleSweepReport(w http.ResponseWriter, r *http.Request) {
	format, err := sweep.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeErrorDetail(w, http.StatusBadRequest, "invalid_format", err.Error())
		return
	}
	runID := chi.URLParam(r, "runID")
	data, err := a.sweeps.Report(r.Context(), runID, format)
	if err != nil {
		a.writeServiceError(w, err, "render sweep report")
		return
	}

	contentType := "text/csv; charset=utf-8"
	if format == sweep.FormatJSON {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"sweep-%s.%s\"", runID, format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (a *API) handleSweepCancel(w http.ResponseWriter, r *http.Request) {
	if err := a.sweeps.Cancel(r.Context(), chi.URLParam(r, "runID")); err != nil {
		a.writeServiceError(w, err, "cancel sweep")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
