// TagQuest - Music Catalog Tag Inference
// Copyright 2026 M. Racine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mracine/tagquest

// Package metrics defines TagQuest's Prometheus collectors: HTTP traffic,
// DuckDB query performance, inference engine activity, external metadata
// lookups, and cache efficiency. All collectors register through promauto on
// the default registry and are served at /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tagquest_http_requests_total",
			Help: "Total HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tagquest_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Database metrics.
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tagquest_duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tagquest_duckdb_query_errors_total",
			Help: "Total DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// Engine metrics.
	QuestionsGenerated = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tagquest_questions_queued",
			Help: "Questions in the most recently generated queue",
		},
	)

	AnswersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tagquest_answers_total",
			Help: "Recorded answers by response",
		},
		[]string{"answer"},
	)

	RulesApplied = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tagquest_rules_applied_total",
			Help: "Rule applications that changed at least one certainty entry",
		},
	)

	CertaintyEntriesRaised = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tagquest_certainty_entries_raised_total",
			Help: "Certainty entries created or raised by rule application",
		},
	)

	// External metadata lookup metrics.
	MetadataLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tagquest_metadata_lookups_total",
			Help: "External metadata lookups by provider and outcome",
		},
		[]string{"provider", "outcome"}, // outcome: hit, miss, error, cached
	)

	MetadataLookupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tagquest_metadata_lookup_duration_seconds",
			Help:    "External metadata lookup latency by provider",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tagquest_circuit_breaker_state",
			Help: "Circuit breaker state by provider (0=closed, 1=half-open, 2=open)",
		},
		[]string{"provider"},
	)

	// Cache metrics.
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tagquest_cache_hits_total",
			Help: "Cache hits by cache name",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tagquest_cache_misses_total",
			Help: "Cache misses by cache name",
		},
		[]string{"cache"},
	)

	// Catalog metrics.
	CatalogProducts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tagquest_catalog_products",
			Help: "Products currently in the catalog",
		},
	)

	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tagquest_sessions_total",
			Help: "Persisted tagging sessions",
		},
	)
)

// ObserveHTTPRequest records one completed HTTP request.
func ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveDBQuery records one database query, counting errors separately.
func ObserveDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// ObserveMetadataLookup records one external provider call.
func ObserveMetadataLookup(provider, outcome string, duration time.Duration) {
	MetadataLookupsTotal.WithLabelValues(provider, outcome).Inc()
	MetadataLookupDuration.WithLabelValues(provider).Observe(duration.Seconds())
}
