/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/friendsincode/matchday/internal/plans"
)

func (a *API) handlePlansCreate(w http.ResponseWriter, r *http.Request) {
	var req plans.Request
	if !decodeJSON(w, r, &req) {
		return
	}
	plan, err := a.plans.Generate(r.Context(), req)
	if err != nil {
		a.writeServiceError(w, err, "generate plan")
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

func (a *API) handlePlansList(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit", 50)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_limit")
		return
	}
	list, err := a.plans.List(r.Context(), limit)
	if err != nil {
		a.writeServiceError(w, err, "list plans")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) handlePlansGet(w http.ResponseWriter, r *http.Request) {
	plan, err := a.plans.Get(r.Context(), chi.URLParam(r, "planID"))
	if err != nil {
		a.writeServiceError(w, err, "get plan")
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (a *API) handlePlansDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.plans.Delete(r.Context(), chi.URLParam(r, "planID")); err != nil {
		a.writeServiceError(w, err, "delete plan")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handlePlanActivities(w http.ResponseWriter, r *http.Request) {
	acts, err := a.plans.Activities(r.Context(), chi.URLParam(r, "planID"))
	if err != nil {
		a.writeServiceError(w, err, "list activities")
		return
	}
	team, ok := queryInt(r, "team", 0)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_team")
		return
	}
	if kind := r.URL.Query().Get("kind"); kind != "" || team > 0 {
		filtered := acts[:0:0]
		for _, act := range acts {
			if kind != "" && act.Kind != kind {
				continue
			}
			if team > 0 && act.Team1 != team && act.Team2 != team {
				continue
			}
			filtered = append(filtered, act)
		}
		acts = filtered
	}
	writeJSON(w, http.StatusOK, acts)
}

func (a *API) handlePlanMatchPlan(w http.ResponseWriter, r *http.Request) {
	rows, err := a.plans.MatchPlan(r.Context(), chi.URLParam(r, "planID"))
	if err != nil {
		a.writeServiceError(w, err, "load match plan")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
