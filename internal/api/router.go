// TagQuest - Music Catalog Tag Inference
// Copyright 2026 M. Racine
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mracine/tagquest

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mracine/tagquest/internal/auth"
	"github.com/mracine/tagquest/internal/middleware"
)

const (
	healthRateLimit = 1000
	loginRateLimit  = 5
	loginRateWindow = 5 * time.Minute
)

// Router builds the full HTTP surface around a Handler.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.config.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           86400,
	}))

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(httprate.LimitByIP(healthRateLimit, time.Minute))
		r.Use(middleware.SecurityHeaders)
		r.Get("/", h.Health)
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(middleware.SecurityHeaders)
		r.With(httprate.LimitByIP(loginRateLimit, loginRateWindow)).Post("/login", h.Login)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(h.config.Auth.RateLimitReqs, h.config.Auth.RateLimitWindow))
		r.Use(middleware.SecurityHeaders)
		r.Use(middleware.PrometheusMetrics)
		r.Use(auth.Middleware(h.jwtManager, h.config.Auth.Enabled))

		r.Get("/products", h.ListProducts)
		r.Post("/products/import", h.ImportProducts)
		r.Delete("/products", h.ClearProducts)

		r.Post("/audit", h.Audit)
		r.Post("/audit/export", h.AuditExport)

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", h.ListSessions)
			r.Post("/", h.CreateSession)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetSession)
				r.Patch("/", h.RenameSession)
				r.Delete("/", h.DeleteSession)

				r.Get("/questions", h.Questions)
				r.Get("/meta-questions", h.MetaQuestions)
				r.Post("/answers", h.AnswerQuestion)
				r.Patch("/answers", h.EditAnswer)
				r.Post("/meta-answers", h.AnswerMetaQuestion)

				r.Get("/stats", h.Stats)
				r.Get("/stats/detailed", h.DetailedStats)
				r.Get("/playbook", h.Playbook)
				r.Get("/explorer", h.Explorer)
			})
		})

		r.Route("/verify", func(r chi.Router) {
			r.Get("/discogs", h.VerifyDiscogs)
			r.Post("/discogs/batch", h.VerifyDiscogsBatch)
			r.Post("/discogs/vendor", h.VerifyDiscogsVendor)
			r.Get("/deezer", h.VerifyDeezer)
			r.Post("/deezer/batch", h.VerifyDeezerBatch)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
