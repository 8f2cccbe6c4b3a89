/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"net/http"
	"time"

	"github.com/friendsincode/matchday/internal/logbuffer"
)

func (a *API) handleLogs(w http.ResponseWriter, r *http.Request) {
	if a.logs == nil {
		writeError(w, http.StatusNotFound, "logs_disabled")
		return
	}
	limit, ok := queryInt(r, "limit", 200)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_limit")
		return
	}

	q := r.URL.Query()
	query := logbuffer.Query{
		Level:      q.Get("level"),
		Component:  q.Get("component"),
		Search:     q.Get("search"),
		Limit:      limit,
		Descending: q.Get("order") != "asc",
		Fields:     map[string]string{},
	}
	for _, key := range []string{"plan_id", "run_id", "item_id"} {
		if v := q.Get(key); v != "" {
			query.Fields[key] = v
		}
	}
	if since := q.Get("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_since")
			return
		}
		query.Since = t
	}

	entries := a.logs.Find(query)
	if entries == nil {
		entries = []logbuffer.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (a *API) handleLogStats(w http.ResponseWriter, r *http.Request) {
	if a.logs == nil {
		writeError(w, http.StatusNotFound, "logs_disabled")
		return
	}
	writeJSON(w, http.StatusOK, a.logs.Stats())
}
