// Sentinel - Abuse Mitigation and Security Telemetry for IndieVault
// Copyright 2026 IndieVault Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/indievault/sentinel

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig tunes the HTTP surface.
type RouterConfig struct {
	// CORSOrigins lists allowed origins; empty means same-origin only.
	CORSOrigins []string

	// GlobalRateLimit caps requests per client IP per minute before any
	// handler runs. Zero disables the transport limit.
	GlobalRateLimit int
}

// NewRouter assembles the Chi router with the full middleware stack.
func NewRouter(handler *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	if cfg.GlobalRateLimit > 0 {
		r.Use(httprate.LimitByIP(cfg.GlobalRateLimit, time.Minute))
	}

	r.Get("/api/v1/health", handler.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(SecurityHeaders())
		r.Use(Metrics())

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login/check", handler.LoginCheck)
			r.Post("/registration/check", handler.RegistrationCheck)
		})

		r.Route("/content", func(r chi.Router) {
			r.Post("/check", handler.ContentCheck)
			r.Post("/record", handler.ContentRecord)
			r.Get("/limits", handler.ContentLimits)
		})

		r.Post("/score", handler.ScoreText)

		r.Route("/audit", func(r chi.Router) {
			r.Get("/events", handler.AuditEvents)
			r.Post("/events", handler.RecordEvent)
			r.Get("/summary", handler.AuditSummary)
			r.Get("/suspicious", handler.AuditSuspicious)
			r.Get("/export", handler.AuditExport)
		})
	})

	return r
}
