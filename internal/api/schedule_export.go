/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handlePlanICal exports a plan, or one team's part of it, to iCal format.
func (a *API) handlePlanICal(w http.ResponseWriter, r *http.Request) {
	team, ok := queryInt(r, "team", 0)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_team")
		return
	}

	planID := chi.URLParam(r, "planID")
	if _, err := a.plans.Get(r.Context(), planID); err != nil {
		a.writeServiceError(w, err, "load plan")
		return
	}

	result, err := a.export.ExportToICal(r.Context(), planID, team)
	if err != nil {
		writeErrorDetail(w, http.StatusBadRequest, "export_failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", result.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Data)
}
