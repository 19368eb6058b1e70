// Sentinel - Abuse Mitigation and Security Telemetry for IndieVault
// Copyright 2026 IndieVault Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/indievault/sentinel

// Package metrics provides Prometheus instrumentation for Sentinel.
//
// Collectors cover the three decision paths (rate limiter, content guard,
// abuse scorer), audit log volume, and the HTTP surface. All collectors are
// registered via promauto at package load.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Rate limiter metrics
	RateLimitChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_ratelimit_checks_total",
			Help: "Total number of rate limiter checks",
		},
		[]string{"scope", "allowed"}, // scope: "login_ip", "login_identity", "registration"
	)

	// Content guard metrics
	ContentGuardChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_contentguard_checks_total",
			Help: "Total number of content guard checks",
		},
		[]string{"content_type", "outcome"}, // outcome: "allowed", "cooldown", "tier_exhausted"
	)

	ContentGuardRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_contentguard_records_total",
			Help: "Total number of recorded (quota-consuming) content actions",
		},
		[]string{"content_type"},
	)

	// Abuse scorer metrics
	ScorerClassifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_scorer_classifications_total",
			Help: "Total number of abuse scorer classifications by category",
		},
		[]string{"category"}, // "clean", "suspicious", "likely_abuse", "definite_abuse"
	)

	ScorerDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sentinel_scorer_duration_seconds",
			Help:    "Duration of full scoring passes in seconds",
			Buckets: []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01},
		},
	)

	// Audit log metrics
	AuditEventsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_audit_events_total",
			Help: "Total number of audit events recorded",
		},
		[]string{"severity"},
	)

	AuditEventsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_audit_events_evicted_total",
			Help: "Total number of audit events evicted by the capacity bound",
		},
	)

	AuditLogSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sentinel_audit_log_entries",
			Help: "Current number of entries held by the audit log",
		},
	)

	// Sweep metrics
	SweepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sentinel_sweep_duration_seconds",
			Help:    "Duration of background sweep passes in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"component"}, // "ratelimit", "contentguard", "audit"
	)

	SweepEntriesRemoved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_sweep_entries_removed_total",
			Help: "Total number of stale entries removed by background sweeps",
		},
		[]string{"component"},
	)

	// HTTP surface metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sentinel_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "endpoint"},
	)
)

// RecordRateLimitCheck increments the rate limiter check counter.
func RecordRateLimitCheck(scope string, allowed bool) {
	RateLimitChecks.WithLabelValues(scope, strconv.FormatBool(allowed)).Inc()
}

// RecordSweep observes a completed sweep pass.
func RecordSweep(component string, removed int, elapsed time.Duration) {
	SweepDuration.WithLabelValues(component).Observe(elapsed.Seconds())
	if removed > 0 {
		SweepEntriesRemoved.WithLabelValues(component).Add(float64(removed))
	}
}

// RecordAPIRequest observes a completed HTTP request.
func RecordAPIRequest(method, endpoint string, statusCode int, elapsed time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(elapsed.Seconds())
}
