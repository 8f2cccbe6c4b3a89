/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// API metrics
var (
	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "matchday_api_request_duration_seconds",
		Help:    "HTTP request latency by method, route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint", "status"})

	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matchday_api_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "endpoint", "status"})

	APIActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "matchday_api_active_connections",
		Help: "HTTP requests currently in flight.",
	})
)

// Generation metrics
var (
	GenerationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "matchday_generation_duration_seconds",
		Help:    "Time to generate one timetable, by table count.",
		Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"tables"})

	ActivitiesGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "matchday_activities_generated_total",
		Help: "Activities written by successful generations.",
	})

	GenerationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matchday_generation_errors_total",
		Help: "Failed generations by stage (params, plan, write, persist).",
	}, []string{"stage"})

	PlanCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matchday_plan_cache_lookups_total",
		Help: "Plan cache lookups by result (hit, miss).",
	}, []string{"result"})
)

// Sweep metrics
var (
	SweepItemsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matchday_sweep_items_total",
		Help: "Sweep items processed by final status.",
	}, []string{"status"})

	SweepQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "matchday_sweep_queue_depth",
		Help: "Pending sweep items across all runs.",
	})

	SweepRunsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "matchday_sweep_runs_active",
		Help: "Sweep runs currently being worked on.",
	})
)

// Database metrics
var (
	DatabaseQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "matchday_database_query_duration_seconds",
		Help:    "Database operation latency by operation and table.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	DatabaseErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matchday_database_errors_total",
		Help: "Database errors by operation and type.",
	}, []string{"operation", "type"})

	DatabaseConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "matchday_database_connections_active",
		Help: "Open database connections.",
	})
)

// Handler exposes metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
